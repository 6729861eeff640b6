package livehelp

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/TanishSen/Learn-Scope/core"
	"github.com/TanishSen/Learn-Scope/core/activity"
)

// HelpSessionPoints are granted to the helper of a completed session.
const HelpSessionPoints = 15

type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

var ErrInvalidStatus = errors.New("invalid status")

// transitions maps a status to the statuses it may move to.
var transitions = map[Status][]Status{
	StatusPending: {StatusActive, StatusCancelled},
	StatusActive:  {StatusCompleted, StatusCancelled},
}

// ParseStatus validates a client provided status.
func ParseStatus(s string) (Status, error) {
	switch st := Status(core.CleanString(s, true /* lower */)); st {
	case StatusPending, StatusActive, StatusCompleted, StatusCancelled:
		return st, nil
	}
	return "", ErrInvalidStatus
}

// CanTransition reports whether a session may move from one status to another.
func CanTransition(from, to Status) bool {
	for _, st := range transitions[from] {
		if st == to {
			return true
		}
	}
	return false
}

// IsFinal reports whether no transition leaves st.
func (st Status) IsFinal() bool {
	return len(transitions[st]) == 0
}

type Session struct {
	ID          int        `json:"id"`
	RequesterID int        `json:"requesterId"`
	HelperID    *int       `json:"helperId"`
	SubjectID   int        `json:"subjectId"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	IsUrgent    bool       `json:"isUrgent"`
	Status      Status     `json:"status"`
	StartedAt   *time.Time `json:"startedAt"`
	EndedAt     *time.Time `json:"endedAt"`
	Duration    *int       `json:"duration"` // minutes
	CreatedAt   time.Time  `json:"createdAt"` // UTC
}

// IsParticipant reports whether userID is the requester or the helper of the session.
func (s Session) IsParticipant(userID int) bool {
	return s.RequesterID == userID || (s.HelperID != nil && *s.HelperID == userID)
}

// NewSession contains information needed to request live help. The status is always pending.
type NewSession struct {
	SubjectID   int    `json:"subjectId" validate:"required,gt=0"`
	Title       string `json:"title" validate:"required,notblank,max=200"`
	Description string `json:"description" validate:"max=2000"`
	IsUrgent    bool   `json:"isUrgent"`
}

func (ns *NewSession) Validate(validate *validator.Validate) error {
	ns.Title = core.CleanString(ns.Title)
	ns.Description = core.CleanString(ns.Description)
	return validate.Struct(ns)
}

// StatusChange is the body of a status transition request.
type StatusChange struct {
	Status Status `json:"status" validate:"required,oneof=active completed cancelled"`
}

func (sc *StatusChange) Validate(validate *validator.Validate) error {
	sc.Status = Status(core.CleanString(string(sc.Status), true /* lower */))
	return validate.Struct(sc)
}

// Completion holds the side effects applied when a session completes.
type Completion struct {
	Points   int
	Activity activity.Activity
}

// Mutator edits a session in place, under the store's lock or transaction.
// A non-nil Completion is applied in the same critical section.
type Mutator func(s *Session) (*Completion, error)
