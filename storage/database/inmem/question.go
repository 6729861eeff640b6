package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/TanishSen/Learn-Scope/core"
	"github.com/TanishSen/Learn-Scope/core/activity"
	"github.com/TanishSen/Learn-Scope/core/question"
	"github.com/TanishSen/Learn-Scope/core/user"
)

type questionRepository struct {
	db *DB
}

func NewQuestionRepository(db *DB) question.Repository {
	return &questionRepository{db: db}
}

// filter returns the questions matching keep, newest first.
func (repo *questionRepository) filter(keep func(q *question.Question) bool) []question.Question {
	qs := make([]question.Question, 0)
	for _, q := range repo.db.question.table {
		if keep == nil || keep(q) {
			qs = append(qs, *q)
		}
	}
	sort.Slice(qs, func(i, j int) bool { return newer(qs[i].CreatedAt, qs[i].ID, qs[j].CreatedAt, qs[j].ID) })
	return qs
}

func (repo *questionRepository) CreateQuestion(_ context.Context, q question.Question, act activity.Activity) (question.Question, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	author, ok := repo.db.user.table[q.UserID]
	if !ok {
		return question.Question{}, user.ErrNotFound
	}

	q.ID = repo.db.question.seq.next()
	q.CreatedAt = stamp(q.CreatedAt)
	if q.UpdatedAt.IsZero() {
		q.UpdatedAt = q.CreatedAt
	}
	q.AnswersCount = 0
	q.ViewCount = 0
	q.IsResolved = false
	repo.db.question.table[q.ID] = &q

	author.TotalQuestions++
	repo.db.insertActivity(act, q.ID)
	return q, nil
}

func (repo *questionRepository) GetQuestionByID(_ context.Context, id int) (question.Question, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if q, ok := repo.db.question.table[id]; ok {
		return *q, nil
	}
	return question.Question{}, question.ErrNotFound
}

func (repo *questionRepository) QueryQuestions(_ context.Context, page core.Pagination) ([]question.Question, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	qs := repo.filter(nil)
	start, end := page.Bounds(len(qs))
	return qs[start:end], nil
}

func (repo *questionRepository) QueryQuestionsBySubject(_ context.Context, subjectID int) ([]question.Question, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.filter(func(q *question.Question) bool { return q.SubjectID == subjectID }), nil
}

func (repo *questionRepository) QueryQuestionsByUser(_ context.Context, userID, limit int) ([]question.Question, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	qs := repo.filter(func(q *question.Question) bool { return q.UserID == userID })
	return limitTo(qs, limit), nil
}

func (repo *questionRepository) UpdateQuestion(_ context.Context, id int, upd question.QuestionUpdate, at time.Time) (question.Question, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	q, ok := repo.db.question.table[id]
	if !ok {
		return question.Question{}, question.ErrNotFound
	}
	upd.Apply(q, at)
	return *q, nil
}

func (repo *questionRepository) CreateAnswer(_ context.Context, a question.Answer, act activity.Activity) (question.Answer, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	q, ok := repo.db.question.table[a.QuestionID]
	if !ok {
		return question.Answer{}, question.ErrNotFound
	}
	author, ok := repo.db.user.table[a.UserID]
	if !ok {
		return question.Answer{}, user.ErrNotFound
	}

	a.ID = repo.db.answer.seq.next()
	a.CreatedAt = stamp(a.CreatedAt)
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = a.CreatedAt
	}
	a.IsAccepted = false
	a.VotesCount = 0
	repo.db.answer.table[a.ID] = &a

	q.AnswersCount++
	q.UpdatedAt = a.CreatedAt
	author.TotalAnswers++
	repo.db.insertActivity(act, a.ID)
	return a, nil
}

func (repo *questionRepository) GetAnswerByID(_ context.Context, id int) (question.Answer, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if a, ok := repo.db.answer.table[id]; ok {
		return *a, nil
	}
	return question.Answer{}, question.ErrAnswerNotFound
}

func (repo *questionRepository) QueryAnswersByQuestion(_ context.Context, questionID int) ([]question.Answer, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	answers := make([]question.Answer, 0)
	for _, a := range repo.db.answer.table {
		if a.QuestionID == questionID {
			answers = append(answers, *a)
		}
	}
	sort.Slice(answers, func(i, j int) bool {
		return newer(answers[i].CreatedAt, answers[i].ID, answers[j].CreatedAt, answers[j].ID)
	})
	return answers, nil
}

func (repo *questionRepository) AcceptAnswer(_ context.Context, id, points int, at time.Time) (question.Answer, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	a, ok := repo.db.answer.table[id]
	if !ok {
		return question.Answer{}, question.ErrAnswerNotFound
	}
	if a.IsAccepted {
		return *a, nil
	}
	q, ok := repo.db.question.table[a.QuestionID]
	if !ok {
		return question.Answer{}, question.ErrNotFound
	}
	for _, other := range repo.db.answer.table {
		if other.QuestionID == q.ID && other.IsAccepted {
			return question.Answer{}, question.ErrAlreadyAccepted
		}
	}

	a.IsAccepted = true
	a.UpdatedAt = at
	q.IsResolved = true
	q.UpdatedAt = at
	if author, ok := repo.db.user.table[a.UserID]; ok {
		author.RewardPoints += points
		author.UpdatedAt = at
	}
	return *a, nil
}
