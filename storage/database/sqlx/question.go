package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/TanishSen/Learn-Scope/core"
	"github.com/TanishSen/Learn-Scope/core/activity"
	"github.com/TanishSen/Learn-Scope/core/question"
	"github.com/TanishSen/Learn-Scope/core/user"
)

const (
	questionColumns = `id, user_id, subject_id, title, description, is_urgent, is_resolved, view_count, answers_count, created_at, updated_at`
	answerColumns   = `id, question_id, user_id, content, is_accepted, votes_count, created_at, updated_at`
	newestFirst     = ` ORDER BY created_at DESC, id DESC`
)

type questionRow struct {
	ID           int       `db:"id"`
	UserID       int       `db:"user_id"`
	SubjectID    int       `db:"subject_id"`
	Title        string    `db:"title"`
	Description  string    `db:"description"`
	IsUrgent     bool      `db:"is_urgent"`
	IsResolved   bool      `db:"is_resolved"`
	ViewCount    int       `db:"view_count"`
	AnswersCount int       `db:"answers_count"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r questionRow) toQuestion() question.Question {
	return question.Question{
		ID:           r.ID,
		UserID:       r.UserID,
		SubjectID:    r.SubjectID,
		Title:        r.Title,
		Description:  r.Description,
		IsUrgent:     r.IsUrgent,
		IsResolved:   r.IsResolved,
		ViewCount:    r.ViewCount,
		AnswersCount: r.AnswersCount,
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
	}
}

type answerRow struct {
	ID         int       `db:"id"`
	QuestionID int       `db:"question_id"`
	UserID     int       `db:"user_id"`
	Content    string    `db:"content"`
	IsAccepted bool      `db:"is_accepted"`
	VotesCount int       `db:"votes_count"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (r answerRow) toAnswer() question.Answer {
	return question.Answer{
		ID:         r.ID,
		QuestionID: r.QuestionID,
		UserID:     r.UserID,
		Content:    r.Content,
		IsAccepted: r.IsAccepted,
		VotesCount: r.VotesCount,
		CreatedAt:  r.CreatedAt.UTC(),
		UpdatedAt:  r.UpdatedAt.UTC(),
	}
}

type questionRepository struct {
	db *sqlx.DB
}

func NewQuestionRepository(db *sqlx.DB) question.Repository {
	return &questionRepository{db: db}
}

func (repo *questionRepository) selectQuestions(ctx context.Context, query string, args ...interface{}) ([]question.Question, error) {
	rows := make([]questionRow, 0)
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying questions")
	}
	qs := make([]question.Question, 0, len(rows))
	for _, r := range rows {
		qs = append(qs, r.toQuestion())
	}
	return qs, nil
}

func (repo *questionRepository) CreateQuestion(ctx context.Context, q question.Question, act activity.Activity) (question.Question, error) {
	q.AnswersCount, q.ViewCount, q.IsResolved = 0, 0, false
	q.CreatedAt = stamp(q.CreatedAt)
	if q.UpdatedAt.IsZero() {
		q.UpdatedAt = q.CreatedAt
	}
	err := withTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, &q.ID,
			`INSERT INTO questions (user_id, subject_id, title, description, is_urgent, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
			q.UserID, q.SubjectID, q.Title, q.Description, q.IsUrgent, q.CreatedAt, q.UpdatedAt,
		)
		if err != nil {
			return errors.Wrap(err, "inserting question")
		}
		res, err := tx.ExecContext(ctx, `UPDATE users SET total_questions = total_questions + 1 WHERE id = $1`, q.UserID)
		if err != nil {
			return errors.Wrap(err, "incrementing total_questions")
		}
		if err = mustAffect(res, user.ErrNotFound); err != nil {
			return err
		}
		return insertActivity(ctx, tx, act, q.ID)
	})
	if err != nil {
		return question.Question{}, err
	}
	return q, nil
}

func (repo *questionRepository) GetQuestionByID(ctx context.Context, id int) (question.Question, error) {
	var row questionRow
	err := repo.db.GetContext(ctx, &row, `SELECT `+questionColumns+` FROM questions WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return question.Question{}, question.ErrNotFound
		}
		return question.Question{}, errors.Wrap(err, "getting question")
	}
	return row.toQuestion(), nil
}

func (repo *questionRepository) QueryQuestions(ctx context.Context, page core.Pagination) ([]question.Question, error) {
	page = core.NewPagination(page.Limit, page.Offset)
	return repo.selectQuestions(ctx, `SELECT `+questionColumns+` FROM questions`+newestFirst+` LIMIT $1 OFFSET $2`, page.Limit, page.Offset)
}

func (repo *questionRepository) QueryQuestionsBySubject(ctx context.Context, subjectID int) ([]question.Question, error) {
	return repo.selectQuestions(ctx, `SELECT `+questionColumns+` FROM questions WHERE subject_id = $1`+newestFirst, subjectID)
}

func (repo *questionRepository) QueryQuestionsByUser(ctx context.Context, userID, limit int) ([]question.Question, error) {
	if limit > 0 {
		return repo.selectQuestions(ctx, `SELECT `+questionColumns+` FROM questions WHERE user_id = $1`+newestFirst+` LIMIT $2`, userID, limit)
	}
	return repo.selectQuestions(ctx, `SELECT `+questionColumns+` FROM questions WHERE user_id = $1`+newestFirst, userID)
}

func (repo *questionRepository) UpdateQuestion(ctx context.Context, id int, upd question.QuestionUpdate, at time.Time) (question.Question, error) {
	var q question.Question
	err := withTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		var row questionRow
		if err := tx.GetContext(ctx, &row, `SELECT `+questionColumns+` FROM questions WHERE id = $1 FOR UPDATE`, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return question.ErrNotFound
			}
			return errors.Wrap(err, "locking question")
		}
		q = row.toQuestion()
		upd.Apply(&q, at)
		_, err := tx.ExecContext(ctx,
			`UPDATE questions SET title = $2, description = $3, is_urgent = $4, is_resolved = $5, updated_at = $6 WHERE id = $1`,
			id, q.Title, q.Description, q.IsUrgent, q.IsResolved, q.UpdatedAt,
		)
		return errors.Wrap(err, "updating question")
	})
	if err != nil {
		return question.Question{}, err
	}
	return q, nil
}

func (repo *questionRepository) CreateAnswer(ctx context.Context, a question.Answer, act activity.Activity) (question.Answer, error) {
	a.IsAccepted, a.VotesCount = false, 0
	a.CreatedAt = stamp(a.CreatedAt)
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = a.CreatedAt
	}
	err := withTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE questions SET answers_count = answers_count + 1, updated_at = $2 WHERE id = $1`, a.QuestionID, a.CreatedAt)
		if err != nil {
			return errors.Wrap(err, "incrementing answers_count")
		}
		if err = mustAffect(res, question.ErrNotFound); err != nil {
			return err
		}

		err = tx.GetContext(ctx, &a.ID,
			`INSERT INTO answers (question_id, user_id, content, created_at, updated_at) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
			a.QuestionID, a.UserID, a.Content, a.CreatedAt, a.UpdatedAt,
		)
		if err != nil {
			return errors.Wrap(err, "inserting answer")
		}

		res, err = tx.ExecContext(ctx, `UPDATE users SET total_answers = total_answers + 1 WHERE id = $1`, a.UserID)
		if err != nil {
			return errors.Wrap(err, "incrementing total_answers")
		}
		if err = mustAffect(res, user.ErrNotFound); err != nil {
			return err
		}
		return insertActivity(ctx, tx, act, a.ID)
	})
	if err != nil {
		return question.Answer{}, err
	}
	return a, nil
}

func (repo *questionRepository) GetAnswerByID(ctx context.Context, id int) (question.Answer, error) {
	var row answerRow
	err := repo.db.GetContext(ctx, &row, `SELECT `+answerColumns+` FROM answers WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return question.Answer{}, question.ErrAnswerNotFound
		}
		return question.Answer{}, errors.Wrap(err, "getting answer")
	}
	return row.toAnswer(), nil
}

func (repo *questionRepository) QueryAnswersByQuestion(ctx context.Context, questionID int) ([]question.Answer, error) {
	rows := make([]answerRow, 0)
	err := repo.db.SelectContext(ctx, &rows, `SELECT `+answerColumns+` FROM answers WHERE question_id = $1`+newestFirst, questionID)
	if err != nil {
		return nil, errors.Wrap(err, "querying answers")
	}
	answers := make([]question.Answer, 0, len(rows))
	for _, r := range rows {
		answers = append(answers, r.toAnswer())
	}
	return answers, nil
}

func (repo *questionRepository) AcceptAnswer(ctx context.Context, id, points int, at time.Time) (question.Answer, error) {
	var a question.Answer
	err := withTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		var row answerRow
		if err := tx.GetContext(ctx, &row, `SELECT `+answerColumns+` FROM answers WHERE id = $1 FOR UPDATE`, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return question.ErrAnswerNotFound
			}
			return errors.Wrap(err, "locking answer")
		}
		a = row.toAnswer()
		if a.IsAccepted {
			return nil
		}

		var accepted bool
		err := tx.GetContext(ctx, &accepted,
			`SELECT EXISTS (SELECT 1 FROM answers WHERE question_id = $1 AND is_accepted)`, a.QuestionID)
		if err != nil {
			return errors.Wrap(err, "checking accepted answers")
		}
		if accepted {
			return question.ErrAlreadyAccepted
		}

		if _, err = tx.ExecContext(ctx, `UPDATE answers SET is_accepted = TRUE, updated_at = $2 WHERE id = $1`, id, at); err != nil {
			return errors.Wrap(err, "accepting answer")
		}
		if _, err = tx.ExecContext(ctx, `UPDATE questions SET is_resolved = TRUE, updated_at = $2 WHERE id = $1`, a.QuestionID, at); err != nil {
			return errors.Wrap(err, "resolving question")
		}
		if _, err = tx.ExecContext(ctx,
			`UPDATE users SET reward_points = reward_points + $2, updated_at = $3 WHERE id = $1`, a.UserID, points, at); err != nil {
			return errors.Wrap(err, "rewarding answer author")
		}
		a.IsAccepted = true
		a.UpdatedAt = at
		return nil
	})
	if err != nil {
		return question.Answer{}, err
	}
	return a, nil
}
