package user

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/TanishSen/Learn-Scope/core"
)

var (
	// errors
	ErrNotFound           = errors.New("user not found")
	ErrEmailExists        = errors.New("Email already exists")
	ErrUsernameExists     = errors.New("Username already exists")
	ErrInvalidCredentials = errors.New("Invalid username or password")
)

type (
	Repository interface {
		// CheckUniqueness returns ErrUsernameExists or ErrEmailExists, username being checked first.
		CheckUniqueness(ctx context.Context, username, email string) error
		// CreateUser re-checks uniqueness atomically with the insert.
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUserByID(ctx context.Context, id int) (User, error)
		GetUserByUsername(ctx context.Context, username string) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		// QueryOnlineUsers returns online users, most recently seen first.
		QueryOnlineUsers(ctx context.Context, limit int) ([]User, error)
		CountUsers(ctx context.Context) (int, error)
		SetPresence(ctx context.Context, id int, online bool, at time.Time) error
		UpdatePassword(ctx context.Context, id int, hash string, at time.Time) error
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
	}
)

func NewService(repo Repository, mailSvc core.EmailService) *Service {
	return &Service{repo: repo, mailSvc: mailSvc}
}

func uniquenessError(err error) error {
	var field string
	switch errors.Cause(err) {
	case ErrUsernameExists:
		field = "username"
	case ErrEmailExists:
		field = "email"
	default:
		return err
	}
	return core.NewValidationError(errors.Cause(err), core.FieldError{Field: field, Error: errors.Cause(err).Error()})
}

func (svc *Service) CheckUniqueness(ctx context.Context, uname, email string) error {
	return uniquenessError(svc.repo.CheckUniqueness(ctx, uname, email))
}

// Create stores a new user from already validated data.
func (svc *Service) Create(ctx context.Context, nu NewUser) (User, error) {
	now := time.Now().UTC()
	usr := User{
		Username:  core.CleanString(nu.Username),
		Email:     core.CleanString(nu.Email, true /* lower */),
		FirstName: core.StringPtr(nu.FirstName),
		LastName:  core.StringPtr(nu.LastName),
		College:   core.StringPtr(nu.College),
		LastSeen:  now,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, err
	}
	usr, err := svc.repo.CreateUser(ctx, usr)
	if err != nil {
		return User{}, uniquenessError(err)
	}
	return usr, nil
}

// Register creates the user, marks it online and sends the welcome email.
func (svc *Service) Register(ctx context.Context, nu NewUser) (User, error) {
	usr, err := svc.Create(ctx, nu)
	if err != nil {
		return User{}, err
	}
	if err = svc.repo.SetPresence(ctx, usr.ID, true, usr.CreatedAt); err != nil {
		return User{}, err
	}
	usr.IsOnline = true
	svc.sendWelcomeMail(usr)
	return usr, nil
}

func (svc *Service) sendWelcomeMail(usr User) {
	if svc.mailSvc == nil {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Address: usr.Email, Name: usr.Username}},
		Subject:      "Welcome to Learn-Scope",
		TemplateName: "welcome",
		TemplateData: usr.Public(),
	})
}

// Authenticate checks the credentials and marks the user online.
// Unknown usernames and wrong passwords both yield ErrInvalidCredentials.
func (svc *Service) Authenticate(ctx context.Context, uname, pwd string) (User, error) {
	usr, err := svc.repo.GetUserByUsername(ctx, core.CleanString(uname))
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			VerifyPassword(pwd, dummyRecord)
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if !usr.CheckPassword(pwd) {
		return User{}, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	if err = svc.repo.SetPresence(ctx, usr.ID, true, now); err != nil {
		return User{}, err
	}
	usr.IsOnline = true
	usr.LastSeen = now
	return usr, nil
}

// PresenceInterval is how stale lastSeen may get before an authenticated request stamps it again.
const PresenceInterval = time.Minute

// Touch marks an authenticated user online and refreshes lastSeen, at most once per PresenceInterval.
func (svc *Service) Touch(ctx context.Context, usr User) (User, error) {
	now := time.Now().UTC()
	if usr.IsOnline && now.Sub(usr.LastSeen) < PresenceInterval {
		return usr, nil
	}
	if err := svc.repo.SetPresence(ctx, usr.ID, true, now); err != nil {
		return User{}, err
	}
	usr.IsOnline = true
	usr.LastSeen = now
	return usr, nil
}

// Logout marks the user offline.
func (svc *Service) Logout(ctx context.Context, id int) error {
	return svc.repo.SetPresence(ctx, id, false, time.Now().UTC())
}

// ResetPassword replaces the password of the user whose username or email is rp.Username.
func (svc *Service) ResetPassword(ctx context.Context, rp ResetPassword) error {
	usr, err := svc.GetByUsername(ctx, rp.Username)
	if errors.Cause(err) == ErrNotFound {
		usr, err = svc.GetByEmail(ctx, rp.Username)
	}
	if err != nil {
		return err
	}
	if err = usr.SetPassword(rp.Password); err != nil {
		return err
	}
	return svc.repo.UpdatePassword(ctx, usr.ID, usr.PasswordHash, time.Now().UTC())
}

func (svc *Service) GetByID(ctx context.Context, id int) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *Service) GetByUsername(ctx context.Context, uname string) (User, error) {
	return svc.repo.GetUserByUsername(ctx, core.CleanString(uname))
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *Service) QueryOnline(ctx context.Context, limit int) ([]User, error) {
	return svc.repo.QueryOnlineUsers(ctx, limit)
}

func (svc *Service) Count(ctx context.Context) (int, error) {
	return svc.repo.CountUsers(ctx)
}
