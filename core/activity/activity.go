package activity

import (
	"context"
	"time"
)

// DefaultLimit is the number of activities listed when the client does not ask for a limit.
const DefaultLimit = 10

type Type string

const (
	TypeQuestionAsked        Type = "question_asked"
	TypeAnswerGiven          Type = "answer_given"
	TypeHelpSessionCompleted Type = "help_session_completed"
)

// Activity is an entry of the append-only activity feed.
type Activity struct {
	ID          int       `json:"id"`
	UserID      int       `json:"userId"`
	Type        Type      `json:"type"`
	EntityID    *int      `json:"entityId"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"` // UTC
}

type (
	// Repository only reads the feed; activities are written by the repositories
	// of the events they record, in the same transaction.
	Repository interface {
		// QueryRecentActivities returns the newest activities first.
		QueryRecentActivities(ctx context.Context, limit int) ([]Activity, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Recent lists the latest activities; non-positive limits fall back to DefaultLimit.
func (svc *Service) Recent(ctx context.Context, limit int) ([]Activity, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return svc.repo.QueryRecentActivities(ctx, limit)
}
