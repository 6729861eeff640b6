package question

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/TanishSen/Learn-Scope/core"
	"github.com/TanishSen/Learn-Scope/core/activity"
	"github.com/TanishSen/Learn-Scope/core/subject"
)

var (
	// errors
	ErrNotFound        = errors.New("question not found")
	ErrAnswerNotFound  = errors.New("answer not found")
	ErrAlreadyAccepted = errors.New("this question already has an accepted answer")
	errSubjectNotFound = errors.New("subject not found")
)

// activity feed descriptions
const (
	questionAskedPrefix = "Asked a question: "
	answerGivenDesc     = "Answered a question"
)

type (
	Repository interface {
		// CreateQuestion stores q, increments its author's totalQuestions and appends act, atomically.
		CreateQuestion(ctx context.Context, q Question, act activity.Activity) (Question, error)
		GetQuestionByID(ctx context.Context, id int) (Question, error)
		QueryQuestions(ctx context.Context, page core.Pagination) ([]Question, error)
		QueryQuestionsBySubject(ctx context.Context, subjectID int) ([]Question, error)
		QueryQuestionsByUser(ctx context.Context, userID, limit int) ([]Question, error)
		UpdateQuestion(ctx context.Context, id int, upd QuestionUpdate, at time.Time) (Question, error)

		// CreateAnswer stores a, increments the question answersCount and the author totalAnswers
		// and appends act, atomically. Unknown questions yield ErrNotFound.
		CreateAnswer(ctx context.Context, a Answer, act activity.Activity) (Answer, error)
		GetAnswerByID(ctx context.Context, id int) (Answer, error)
		QueryAnswersByQuestion(ctx context.Context, questionID int) ([]Answer, error)
		// AcceptAnswer marks the answer accepted, resolves its question and rewards the answer author.
		AcceptAnswer(ctx context.Context, id, points int, at time.Time) (Answer, error)
	}

	Service struct {
		repo     Repository
		subjects *subject.Service
	}
)

func NewService(repo Repository, subjects *subject.Service) *Service {
	return &Service{repo: repo, subjects: subjects}
}

func (svc *Service) checkSubject(ctx context.Context, id int) error {
	ok, err := svc.subjects.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return core.NewValidationError(errSubjectNotFound, core.FieldError{Field: "subjectId", Error: errSubjectNotFound.Error()})
	}
	return nil
}

// Ask stores a new question authored by userID.
func (svc *Service) Ask(ctx context.Context, userID int, nq NewQuestion) (Question, error) {
	if err := svc.checkSubject(ctx, nq.SubjectID); err != nil {
		return Question{}, err
	}
	now := time.Now().UTC()
	q := Question{
		UserID:      userID,
		SubjectID:   nq.SubjectID,
		Title:       nq.Title,
		Description: nq.Description,
		IsUrgent:    nq.IsUrgent,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	act := activity.Activity{
		UserID:      userID,
		Type:        activity.TypeQuestionAsked,
		Description: questionAskedPrefix + nq.Title,
		CreatedAt:   now,
	}
	return svc.repo.CreateQuestion(ctx, q, act)
}

// Answer stores a new answer to questionID authored by userID.
func (svc *Service) Answer(ctx context.Context, userID, questionID int, na NewAnswer) (Answer, error) {
	now := time.Now().UTC()
	a := Answer{
		QuestionID: questionID,
		UserID:     userID,
		Content:    na.Content,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	act := activity.Activity{
		UserID:      userID,
		Type:        activity.TypeAnswerGiven,
		Description: answerGivenDesc,
		CreatedAt:   now,
	}
	return svc.repo.CreateAnswer(ctx, a, act)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Question, error) {
	return svc.repo.GetQuestionByID(ctx, id)
}

func (svc *Service) Query(ctx context.Context, page core.Pagination) ([]Question, error) {
	return svc.repo.QueryQuestions(ctx, core.NewPagination(page.Limit, page.Offset))
}

func (svc *Service) QueryBySubject(ctx context.Context, subjectID int) ([]Question, error) {
	return svc.repo.QueryQuestionsBySubject(ctx, subjectID)
}

// QueryByUser lists the questions of userID, newest first. A non-positive limit lists them all.
func (svc *Service) QueryByUser(ctx context.Context, userID, limit int) ([]Question, error) {
	return svc.repo.QueryQuestionsByUser(ctx, userID, limit)
}

// Update applies upd to the question; only its author may do so.
func (svc *Service) Update(ctx context.Context, callerID, id int, upd QuestionUpdate) (Question, error) {
	q, err := svc.repo.GetQuestionByID(ctx, id)
	if err != nil {
		return Question{}, err
	}
	if q.UserID != callerID {
		return Question{}, core.ErrForbidden
	}
	return svc.repo.UpdateQuestion(ctx, id, upd, time.Now().UTC())
}

func (svc *Service) QueryAnswers(ctx context.Context, questionID int) ([]Answer, error) {
	return svc.repo.QueryAnswersByQuestion(ctx, questionID)
}

// Accept marks an answer as the accepted one; only the question author may do so.
func (svc *Service) Accept(ctx context.Context, callerID, answerID int) (Answer, error) {
	a, err := svc.repo.GetAnswerByID(ctx, answerID)
	if err != nil {
		return Answer{}, err
	}
	q, err := svc.repo.GetQuestionByID(ctx, a.QuestionID)
	if err != nil {
		return Answer{}, err
	}
	if q.UserID != callerID {
		return Answer{}, core.ErrForbidden
	}
	if a.IsAccepted {
		return a, nil
	}
	a, err = svc.repo.AcceptAnswer(ctx, answerID, AcceptedAnswerPoints, time.Now().UTC())
	if errors.Cause(err) == ErrAlreadyAccepted {
		return Answer{}, core.NewValidationError(ErrAlreadyAccepted)
	}
	return a, err
}
