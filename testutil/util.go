// Package testutil holds the fixtures shared by the test suites.
package testutil

import (
	"context"
	"io"
	"log"
	"net/mail"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/TanishSen/Learn-Scope/core"
	"github.com/TanishSen/Learn-Scope/core/activity"
	"github.com/TanishSen/Learn-Scope/core/question"
	"github.com/TanishSen/Learn-Scope/core/user"
)

// NewConfig returns the configuration used by tests.
func NewConfig() *core.Config {
	return &core.Config{
		AppName:         "Learn-Scope",
		Env:             "TEST",
		TestMode:        true,
		SecretKey:       "test-secret-key",
		FrontendBaseURL: "http://localhost:5173",
		Server: core.ServerConfig{
			Address:         ":0",
			ShutdownTimeout: time.Second,
			SessionLifetime: 7 * 24 * time.Hour,
			SessionSweep:    time.Hour,
		},
		Database: core.DatabaseConfig{Engine: "inmem"},
		Email: core.EmailConfig{
			DefaultFrom: mail.Address{Name: "Learn-Scope", Address: "noreply@localhost"},
		},
	}
}

// DiscardLogger is a std logger printing nothing.
func DiscardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

// NewValidator returns a validator with every custom validation registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate, translator := core.NewValidator()
	user.InitValidators(validate, translator)
	return validate, translator
}

func CreateUser(t *testing.T, repo user.Repository, uname, email, pwd string, createdAt ...time.Time) user.User {
	t.Helper()
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Username:  uname,
		Email:     email,
		LastSeen:  tstamp,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("createUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}

func CreateQuestion(t *testing.T, repo question.Repository, userID, subjectID int, title string, createdAt ...time.Time) question.Question {
	t.Helper()
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	q := question.Question{
		UserID:      userID,
		SubjectID:   subjectID,
		Title:       title,
		Description: title + "?",
		CreatedAt:   tstamp,
		UpdatedAt:   tstamp,
	}
	act := activity.Activity{
		UserID:      userID,
		Type:        activity.TypeQuestionAsked,
		Description: "Asked a question: " + title,
		CreatedAt:   tstamp,
	}
	q, err := repo.CreateQuestion(context.Background(), q, act)
	if err != nil {
		t.Fatalf("createQuestion() failed: %v", err)
	}
	return q
}
