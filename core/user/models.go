package user

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/TanishSen/Learn-Scope/core"
)

type User struct {
	ID              int       `json:"id"`
	Username        string    `json:"username"`
	Email           string    `json:"email"`
	PasswordHash    string    `json:"-"`
	FirstName       *string   `json:"firstName"`
	LastName        *string   `json:"lastName"`
	ProfileImageURL *string   `json:"profileImageUrl"`
	College         *string   `json:"college"`
	RewardPoints    int       `json:"rewardPoints"`
	TotalAnswers    int       `json:"totalAnswers"`
	TotalQuestions  int       `json:"totalQuestions"`
	Following       int       `json:"following"`
	Followers       int       `json:"followers"`
	IsOnline        bool      `json:"isOnline"`
	LastSeen        time.Time `json:"lastSeen"`  // UTC
	CreatedAt       time.Time `json:"createdAt"` // UTC
	UpdatedAt       time.Time `json:"updatedAt"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := HashPassword(pwd)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) bool {
	return VerifyPassword(pwd, u.PasswordHash)
}

// Public returns the user as exposed to API clients.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:              u.ID,
		Username:        u.Username,
		Email:           u.Email,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		ProfileImageURL: u.ProfileImageURL,
		College:         u.College,
		RewardPoints:    u.RewardPoints,
		TotalAnswers:    u.TotalAnswers,
		TotalQuestions:  u.TotalQuestions,
		Following:       u.Following,
		Followers:       u.Followers,
		IsOnline:        u.IsOnline,
		LastSeen:        u.LastSeen,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

// PublicUser is a User without its credentials.
type PublicUser struct {
	ID              int       `json:"id"`
	Username        string    `json:"username"`
	Email           string    `json:"email"`
	FirstName       *string   `json:"firstName"`
	LastName        *string   `json:"lastName"`
	ProfileImageURL *string   `json:"profileImageUrl"`
	College         *string   `json:"college"`
	RewardPoints    int       `json:"rewardPoints"`
	TotalAnswers    int       `json:"totalAnswers"`
	TotalQuestions  int       `json:"totalQuestions"`
	Following       int       `json:"following"`
	Followers       int       `json:"followers"`
	IsOnline        bool      `json:"isOnline"`
	LastSeen        time.Time `json:"lastSeen"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// PublicUsers projects a list of users.
func PublicUsers(users []User) []PublicUser {
	pubs := make([]PublicUser, 0, len(users))
	for _, usr := range users {
		pubs = append(pubs, usr.Public())
	}
	return pubs
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Username        string `json:"username" validate:"required,min=3,max=30"`
	Email           string `json:"email" validate:"required,email,max=254"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"confirmPassword" validate:"omitempty,eqfield=Password"`
	FirstName       string `json:"firstName" validate:"max=50"`
	LastName        string `json:"lastName" validate:"max=50"`
	College         string `json:"college" validate:"max=100"`
}

func (nu *NewUser) Clean() {
	nu.Username = core.CleanString(nu.Username)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.FirstName = core.CleanString(nu.FirstName)
	nu.LastName = core.CleanString(nu.LastName)
	nu.College = core.CleanString(nu.College)
}

func (nu *NewUser) Validate(ctx context.Context, validate *validator.Validate, svc *Service) error {
	nu.Clean()
	if err := validate.Struct(nu); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, nu.Username, nu.Email)
}

// LoginCredentials are the fields posted to the login endpoint.
type LoginCredentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (lc *LoginCredentials) Validate(validate *validator.Validate) error {
	lc.Username = core.CleanString(lc.Username)
	return validate.Struct(lc)
}

// ResetPassword is used by admins to replace a user's password. Username may also be an email.
type ResetPassword struct {
	Username        string `json:"username" validate:"required"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

func (rp *ResetPassword) Validate(validate *validator.Validate) error {
	rp.Username = core.CleanString(rp.Username)
	return validate.Struct(rp)
}
