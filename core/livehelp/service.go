package livehelp

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/TanishSen/Learn-Scope/core"
	"github.com/TanishSen/Learn-Scope/core/activity"
	"github.com/TanishSen/Learn-Scope/core/subject"
)

var (
	// errors
	ErrNotFound          = errors.New("live help session not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrOwnSession        = errors.New("you cannot help with your own session")
	errSubjectNotFound   = errors.New("subject not found")
)

const helpCompletedPrefix = "Completed a live help session: "

type (
	Repository interface {
		CreateSession(ctx context.Context, s Session) (Session, error)
		GetSessionByID(ctx context.Context, id int) (Session, error)
		// QuerySessions lists sessions newest first; an empty status lists them all.
		QuerySessions(ctx context.Context, status Status) ([]Session, error)
		// UpdateSession applies mut and its Completion side effects atomically.
		UpdateSession(ctx context.Context, id int, mut Mutator) (Session, error)
	}

	Service struct {
		repo     Repository
		subjects *subject.Service
	}
)

func NewService(repo Repository, subjects *subject.Service) *Service {
	return &Service{repo: repo, subjects: subjects}
}

// Request opens a pending session for requesterID.
func (svc *Service) Request(ctx context.Context, requesterID int, ns NewSession) (Session, error) {
	ok, err := svc.subjects.Exists(ctx, ns.SubjectID)
	if err != nil {
		return Session{}, err
	}
	if !ok {
		return Session{}, core.NewValidationError(errSubjectNotFound, core.FieldError{Field: "subjectId", Error: errSubjectNotFound.Error()})
	}
	return svc.repo.CreateSession(ctx, Session{
		RequesterID: requesterID,
		SubjectID:   ns.SubjectID,
		Title:       ns.Title,
		Description: core.StringPtr(ns.Description),
		IsUrgent:    ns.IsUrgent,
		Status:      StatusPending,
		CreatedAt:   time.Now().UTC(),
	})
}

func (svc *Service) GetByID(ctx context.Context, id int) (Session, error) {
	return svc.repo.GetSessionByID(ctx, id)
}

func (svc *Service) Query(ctx context.Context, status Status) ([]Session, error) {
	return svc.repo.QuerySessions(ctx, status)
}

func statusError(err error, text string) error {
	return core.NewValidationError(err, core.FieldError{Field: "status", Error: text})
}

// ChangeStatus moves a session to a new status on behalf of callerID:
// - active: callerID becomes the helper; the requester cannot help themselves
// - completed: by a participant; the helper is rewarded
// - cancelled: by a participant
func (svc *Service) ChangeStatus(ctx context.Context, callerID, id int, to Status) (Session, error) {
	return svc.repo.UpdateSession(ctx, id, func(s *Session) (*Completion, error) {
		if !CanTransition(s.Status, to) {
			return nil, statusError(ErrInvalidTransition, fmt.Sprintf("cannot move from %s to %s", s.Status, to))
		}

		now := time.Now().UTC()
		switch to {
		case StatusActive:
			if s.RequesterID == callerID {
				return nil, statusError(ErrOwnSession, ErrOwnSession.Error())
			}
			helperID := callerID
			s.HelperID = &helperID
			s.StartedAt = &now
		case StatusCompleted, StatusCancelled:
			if !s.IsParticipant(callerID) {
				return nil, core.ErrForbidden
			}
			s.EndedAt = &now
		}
		s.Status = to

		if to != StatusCompleted {
			return nil, nil
		}
		var duration int
		if s.StartedAt != nil {
			duration = int(now.Sub(*s.StartedAt).Minutes())
		}
		s.Duration = &duration

		sid := s.ID
		return &Completion{
			Points: HelpSessionPoints,
			Activity: activity.Activity{
				UserID:      *s.HelperID,
				Type:        activity.TypeHelpSessionCompleted,
				EntityID:    &sid,
				Description: helpCompletedPrefix + s.Title,
				CreatedAt:   now,
			},
		}, nil
	})
}
