package dashboard

import (
	"context"

	"github.com/TanishSen/Learn-Scope/core/activity"
	"github.com/TanishSen/Learn-Scope/core/question"
	"github.com/TanishSen/Learn-Scope/core/user"
)

const (
	recentQuestionsLimit  = 3
	recentActivitiesLimit = 5
	onlineUsersLimit      = 6
)

// Stats is the composed view shown on a user's dashboard.
type Stats struct {
	User             user.PublicUser     `json:"user"`
	RecentQuestions  []question.Question `json:"recentQuestions"`
	RecentActivities []activity.Activity `json:"recentActivities"`
	OnlineUsers      []user.PublicUser   `json:"onlineUsers"`
}

type Service struct {
	users      *user.Service
	questions  *question.Service
	activities *activity.Service
}

func NewService(users *user.Service, questions *question.Service, activities *activity.Service) *Service {
	return &Service{users: users, questions: questions, activities: activities}
}

// Stats composes the dashboard of userID. Activities are global, not scoped to the user.
func (svc *Service) Stats(ctx context.Context, userID int) (Stats, error) {
	usr, err := svc.users.GetByID(ctx, userID)
	if err != nil {
		return Stats{}, err
	}
	questions, err := svc.questions.QueryByUser(ctx, userID, recentQuestionsLimit)
	if err != nil {
		return Stats{}, err
	}
	activities, err := svc.activities.Recent(ctx, recentActivitiesLimit)
	if err != nil {
		return Stats{}, err
	}
	online, err := svc.users.QueryOnline(ctx, onlineUsersLimit)
	if err != nil {
		return Stats{}, err
	}

	return Stats{
		User:             usr.Public(),
		RecentQuestions:  questions,
		RecentActivities: activities,
		OnlineUsers:      user.PublicUsers(online),
	}, nil
}
