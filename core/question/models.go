package question

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/TanishSen/Learn-Scope/core"
)

// AcceptedAnswerPoints are granted to the author of an accepted answer.
const AcceptedAnswerPoints = 10

type Question struct {
	ID           int       `json:"id"`
	UserID       int       `json:"userId"`
	SubjectID    int       `json:"subjectId"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	IsUrgent     bool      `json:"isUrgent"`
	IsResolved   bool      `json:"isResolved"`
	ViewCount    int       `json:"viewCount"`
	AnswersCount int       `json:"answersCount"`
	CreatedAt    time.Time `json:"createdAt"` // UTC
	UpdatedAt    time.Time `json:"updatedAt"` // UTC
}

type Answer struct {
	ID         int       `json:"id"`
	QuestionID int       `json:"questionId"`
	UserID     int       `json:"userId"`
	Content    string    `json:"content"`
	IsAccepted bool      `json:"isAccepted"`
	VotesCount int       `json:"votesCount"`
	CreatedAt  time.Time `json:"createdAt"` // UTC
	UpdatedAt  time.Time `json:"updatedAt"` // UTC
}

// NewQuestion contains information needed to ask a Question.
type NewQuestion struct {
	SubjectID   int    `json:"subjectId" validate:"required,gt=0"`
	Title       string `json:"title" validate:"required,notblank,max=200"`
	Description string `json:"description" validate:"required,notblank"`
	IsUrgent    bool   `json:"isUrgent"`
}

func (nq *NewQuestion) Validate(validate *validator.Validate) error {
	nq.Title = core.CleanString(nq.Title)
	nq.Description = core.CleanString(nq.Description)
	return validate.Struct(nq)
}

// NewAnswer contains information needed to answer a Question.
type NewAnswer struct {
	Content string `json:"content" validate:"required,notblank"`
}

func (na *NewAnswer) Validate(validate *validator.Validate) error {
	na.Content = core.CleanString(na.Content)
	return validate.Struct(na)
}

// QuestionUpdate defines what an author may modify on a Question. Nil fields are left untouched.
type QuestionUpdate struct {
	Title       *string `json:"title" validate:"omitempty,notblank,max=200"`
	Description *string `json:"description" validate:"omitempty,notblank"`
	IsUrgent    *bool   `json:"isUrgent"`
	IsResolved  *bool   `json:"isResolved"`
}

var errEmptyUpdate = errors.New("nothing to update")

func (qu *QuestionUpdate) IsEmpty() bool {
	return qu.Title == nil && qu.Description == nil && qu.IsUrgent == nil && qu.IsResolved == nil
}

func (qu *QuestionUpdate) Validate(validate *validator.Validate) error {
	if qu.IsEmpty() {
		return core.NewValidationError(errEmptyUpdate)
	}
	if qu.Title != nil {
		title := core.CleanString(*qu.Title)
		qu.Title = &title
	}
	if qu.Description != nil {
		desc := core.CleanString(*qu.Description)
		qu.Description = &desc
	}
	return validate.Struct(qu)
}

// Apply copies the set fields of qu onto q.
func (qu QuestionUpdate) Apply(q *Question, at time.Time) {
	if qu.Title != nil {
		q.Title = *qu.Title
	}
	if qu.Description != nil {
		q.Description = *qu.Description
	}
	if qu.IsUrgent != nil {
		q.IsUrgent = *qu.IsUrgent
	}
	if qu.IsResolved != nil {
		q.IsResolved = *qu.IsResolved
	}
	q.UpdatedAt = at
}
