package user_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TanishSen/Learn-Scope/core"
	"github.com/TanishSen/Learn-Scope/core/user"
	emailsvc "github.com/TanishSen/Learn-Scope/services/email"
	inmemdb "github.com/TanishSen/Learn-Scope/storage/database/inmem"
	"github.com/TanishSen/Learn-Scope/testutil"
)

const pwd = "s3cure-Pass"

func setup(t *testing.T) (*user.Service, user.Repository, *emailsvc.ConsoleServiceMock) {
	t.Helper()
	repo := inmemdb.NewUserRepository(inmemdb.Open())
	mailSvc := emailsvc.NewConsoleServiceMock(testutil.NewConfig())
	return user.NewService(repo, mailSvc), repo, mailSvc
}

func TestService_Register(t *testing.T) {
	svc, _, mailSvc := setup(t)
	ctx := context.Background()

	usr, err := svc.Register(ctx, user.NewUser{
		Username:  "  Alice ",
		Email:     "ALICE@example.com",
		Password:  pwd,
		FirstName: "Alice",
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice", usr.Username, "usernames are trimmed, case is kept")
	assert.Equal(t, "alice@example.com", usr.Email)
	assert.True(t, usr.IsOnline)
	require.NotNil(t, usr.FirstName)
	assert.Equal(t, "Alice", *usr.FirstName)
	assert.Nil(t, usr.LastName)
	assert.NotEqual(t, pwd, usr.PasswordHash)
	assert.True(t, usr.CheckPassword(pwd))

	msgs := mailSvc.SentMessages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "alice@example.com", msgs[0].To[0].Address)
	assert.Equal(t, "welcome", msgs[0].TemplateName)

	tests := []struct {
		name      string
		uname     string
		email     string
		wantCause error
	}{
		{name: "duplicate username", uname: " Alice", email: "other@example.com", wantCause: user.ErrUsernameExists},
		{name: "duplicate email", uname: "other", email: "alice@EXAMPLE.com", wantCause: user.ErrEmailExists},
		{name: "both taken reports the username", uname: "Alice", email: "alice@example.com", wantCause: user.ErrUsernameExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, user.NewUser{Username: tt.uname, Email: tt.email, Password: pwd})
			require.True(t, core.IsValidationError(err), "got %v", err)
			assert.True(t, errors.Is(err, tt.wantCause), "got %v", err)
		})
	}

	count, err := svc.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Len(t, mailSvc.SentMessages(), 1)

	// usernames match exactly, so a different case is another user
	other, err := svc.Register(ctx, user.NewUser{Username: "alice", Email: "alice2@example.com", Password: "123456"})
	require.NoError(t, err)
	assert.NotEqual(t, usr.ID, other.ID)
	assert.Equal(t, "alice", other.Username)
	_, err = svc.Authenticate(ctx, "alice", "123456")
	assert.NoError(t, err)
}

func TestService_Authenticate(t *testing.T) {
	svc, repo, _ := setup(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, repo, "alice", "alice@example.com", pwd)

	tests := []struct {
		name    string
		uname   string
		pwd     string
		wantErr error
	}{
		{name: "unknown user", uname: "bob", pwd: pwd, wantErr: user.ErrInvalidCredentials},
		{name: "wrong password", uname: "alice", pwd: "s3cure-pass", wantErr: user.ErrInvalidCredentials},
		{name: "valid", uname: "alice", pwd: pwd},
		{name: "trimmed username", uname: " alice ", pwd: pwd},
		{name: "case sensitive username", uname: "Alice", pwd: pwd, wantErr: user.ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			usr, err := svc.Authenticate(ctx, tt.uname, tt.pwd)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, alice.ID, usr.ID)
			assert.True(t, usr.IsOnline)
		})
	}

	online, err := svc.QueryOnline(ctx, 5)
	require.NoError(t, err)
	require.Len(t, online, 1)
	assert.Equal(t, alice.ID, online[0].ID)

	require.NoError(t, svc.Logout(ctx, alice.ID))
	online, err = svc.QueryOnline(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, online)
}

func TestService_Touch(t *testing.T) {
	svc, repo, _ := setup(t)
	ctx := context.Background()
	stale := time.Now().UTC().Add(-time.Hour)
	alice := testutil.CreateUser(t, repo, "alice", "alice@example.com", pwd, stale)
	require.NoError(t, repo.SetPresence(ctx, alice.ID, false, stale))
	alice, _ = repo.GetUserByID(ctx, alice.ID)

	touched, err := svc.Touch(ctx, alice)
	require.NoError(t, err)
	assert.True(t, touched.IsOnline)
	assert.True(t, touched.LastSeen.After(stale))

	stored, err := repo.GetUserByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsOnline)
	assert.Equal(t, touched.LastSeen, stored.LastSeen)

	// fresh presence is not written again
	again, err := svc.Touch(ctx, touched)
	require.NoError(t, err)
	assert.Equal(t, touched.LastSeen, again.LastSeen)
}

func TestService_ResetPassword(t *testing.T) {
	svc, repo, _ := setup(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, repo, "alice", "alice@example.com", pwd)

	require.NoError(t, svc.ResetPassword(ctx, user.ResetPassword{Username: "alice", Password: "n3w-Secret"}))
	usr, err := svc.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.True(t, usr.CheckPassword("n3w-Secret"))
	assert.False(t, usr.CheckPassword(pwd))

	require.NoError(t, svc.ResetPassword(ctx, user.ResetPassword{Username: "alice@example.com", Password: "an0ther-Secret"}))
	usr, err = svc.GetByEmail(ctx, "ALICE@example.com")
	require.NoError(t, err)
	assert.True(t, usr.CheckPassword("an0ther-Secret"))

	err = svc.ResetPassword(ctx, user.ResetPassword{Username: "bob", Password: "n3w-Secret"})
	assert.Equal(t, user.ErrNotFound, errors.Cause(err))
}
