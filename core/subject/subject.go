package subject

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("subject not found")

type Subject struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Icon      string    `json:"icon"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"createdAt"` // UTC
}

// Defaults is the subject taxonomy seeded into every new store.
var Defaults = []Subject{
	{Name: "Computer Science", Icon: "fas fa-laptop", Color: "blue"},
	{Name: "Mathematics", Icon: "fas fa-calculator", Color: "purple"},
	{Name: "Chemistry", Icon: "fas fa-flask", Color: "green"},
	{Name: "Physics", Icon: "fas fa-atom", Color: "red"},
	{Name: "English", Icon: "fas fa-book", Color: "yellow"},
	{Name: "Biology", Icon: "fas fa-dna", Color: "indigo"},
}

type (
	Repository interface {
		// QueryAllSubjects returns the subjects in taxonomy (id) order.
		QueryAllSubjects(ctx context.Context) ([]Subject, error)
		GetSubjectByID(ctx context.Context, id int) (Subject, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) QueryAll(ctx context.Context) ([]Subject, error) {
	return svc.repo.QueryAllSubjects(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Subject, error) {
	return svc.repo.GetSubjectByID(ctx, id)
}

// Exists reports whether id names a known subject.
func (svc *Service) Exists(ctx context.Context, id int) (bool, error) {
	if _, err := svc.repo.GetSubjectByID(ctx, id); err != nil {
		if errors.Cause(err) == ErrNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
