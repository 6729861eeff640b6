package expertise

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/TanishSen/Learn-Scope/core"
	"github.com/TanishSen/Learn-Scope/core/subject"
)

type Proficiency string

const (
	Beginner     Proficiency = "beginner"
	Intermediate Proficiency = "intermediate"
	Advanced     Proficiency = "advanced"
)

var (
	// errors
	ErrAlreadyDeclared = errors.New("subject already declared")
	errSubjectNotFound = errors.New("subject not found")
)

// UserSubject declares a user's proficiency in a subject.
type UserSubject struct {
	ID               int         `json:"id"`
	UserID           int         `json:"userId"`
	SubjectID        int         `json:"subjectId"`
	ProficiencyLevel Proficiency `json:"proficiencyLevel"`
	CanHelp          bool        `json:"canHelp"`
	CreatedAt        time.Time   `json:"createdAt"` // UTC
}

// NewUserSubject contains information needed to declare an expertise.
type NewUserSubject struct {
	SubjectID        int         `json:"subjectId" validate:"required,gt=0"`
	ProficiencyLevel Proficiency `json:"proficiencyLevel" validate:"omitempty,oneof=beginner intermediate advanced"`
	CanHelp          *bool       `json:"canHelp"`
}

func (nus *NewUserSubject) Validate(validate *validator.Validate) error {
	nus.ProficiencyLevel = Proficiency(core.CleanString(string(nus.ProficiencyLevel), true /* lower */))
	return validate.Struct(nus)
}

type (
	Repository interface {
		// CreateUserSubject fails with ErrAlreadyDeclared when the user already declared the subject.
		CreateUserSubject(ctx context.Context, us UserSubject) (UserSubject, error)
		// QueryUserSubjects lists the user's declarations, newest first.
		QueryUserSubjects(ctx context.Context, userID int) ([]UserSubject, error)
	}

	Service struct {
		repo     Repository
		subjects *subject.Service
	}
)

func NewService(repo Repository, subjects *subject.Service) *Service {
	return &Service{repo: repo, subjects: subjects}
}

// Declare records userID's expertise, defaulting to a beginner able to help.
func (svc *Service) Declare(ctx context.Context, userID int, nus NewUserSubject) (UserSubject, error) {
	ok, err := svc.subjects.Exists(ctx, nus.SubjectID)
	if err != nil {
		return UserSubject{}, err
	}
	if !ok {
		return UserSubject{}, core.NewValidationError(errSubjectNotFound, core.FieldError{Field: "subjectId", Error: errSubjectNotFound.Error()})
	}

	us := UserSubject{
		UserID:           userID,
		SubjectID:        nus.SubjectID,
		ProficiencyLevel: nus.ProficiencyLevel,
		CanHelp:          true,
		CreatedAt:        time.Now().UTC(),
	}
	if us.ProficiencyLevel == "" {
		us.ProficiencyLevel = Beginner
	}
	if nus.CanHelp != nil {
		us.CanHelp = *nus.CanHelp
	}

	us, err = svc.repo.CreateUserSubject(ctx, us)
	if errors.Cause(err) == ErrAlreadyDeclared {
		return UserSubject{}, core.NewValidationError(ErrAlreadyDeclared, core.FieldError{Field: "subjectId", Error: ErrAlreadyDeclared.Error()})
	}
	return us, err
}

func (svc *Service) QueryByUser(ctx context.Context, userID int) ([]UserSubject, error) {
	return svc.repo.QueryUserSubjects(ctx, userID)
}
