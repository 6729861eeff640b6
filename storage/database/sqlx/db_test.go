package sqlxrepos

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TanishSen/Learn-Scope/core"
	"github.com/TanishSen/Learn-Scope/core/activity"
	"github.com/TanishSen/Learn-Scope/core/expertise"
	"github.com/TanishSen/Learn-Scope/core/livehelp"
	"github.com/TanishSen/Learn-Scope/core/question"
	"github.com/TanishSen/Learn-Scope/core/user"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = mockDB.Close()
	})
	return sqlx.NewDb(mockDB, "postgres"), mock
}

func q(s string) string {
	return regexp.QuoteMeta(s)
}

func TestUserRepository_CreateUser(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("inserts and returns the new id", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectQuery(q("INSERT INTO users")).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))

		usr, err := NewUserRepository(db).CreateUser(ctx, user.User{Username: "alice", Email: "a@x.io", LastSeen: now, CreatedAt: now, UpdatedAt: now})
		require.NoError(t, err)
		assert.Equal(t, 42, usr.ID)
		assert.True(t, usr.IsOnline)
	})

	tests := []struct {
		constraint string
		wantErr    error
	}{
		{"users_username_key", user.ErrUsernameExists},
		{"users_email_key", user.ErrEmailExists},
	}
	for _, tt := range tests {
		t.Run("maps "+tt.constraint, func(t *testing.T) {
			db, mock := newMock(t)
			mock.ExpectQuery(q("INSERT INTO users")).
				WillReturnError(&pq.Error{Code: uniqueViolation, Constraint: tt.constraint})

			_, err := NewUserRepository(db).CreateUser(ctx, user.User{Username: "alice", Email: "a@x.io"})
			assert.Equal(t, tt.wantErr, err)
		})
	}
}

func TestUserRepository_CheckUniqueness(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name    string
		rows    *sqlmock.Rows
		wantErr error
	}{
		{"free", sqlmock.NewRows([]string{"taken"}), nil},
		{"username taken", sqlmock.NewRows([]string{"taken"}).AddRow(false).AddRow(true), user.ErrUsernameExists},
		{"email taken", sqlmock.NewRows([]string{"taken"}).AddRow(false), user.ErrEmailExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMock(t)
			mock.ExpectQuery(q("FROM users WHERE username = $1 OR email = $2")).
				WithArgs("alice", "a@x.io").
				WillReturnRows(tt.rows)

			err := NewUserRepository(db).CheckUniqueness(ctx, "alice", "a@x.io")
			assert.Equal(t, tt.wantErr, err)
		})
	}
}

func TestUserRepository_NotFound(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(q("FROM users WHERE username = $1")).WithArgs("ghost").WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(q("UPDATE users SET is_online")).WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewUserRepository(db)
	_, err := repo.GetUserByUsername(context.Background(), "ghost")
	assert.Equal(t, user.ErrNotFound, err)
	err = repo.SetPresence(context.Background(), 99, false, time.Now())
	assert.Equal(t, user.ErrNotFound, err)
}

func TestQuestionRepository_CreateQuestion(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(q("INSERT INTO questions")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	mock.ExpectExec(q("UPDATE users SET total_questions = total_questions + 1")).
		WithArgs(1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q("INSERT INTO activities")).
		WithArgs(1, string(activity.TypeQuestionAsked), 3, "Asked a question: Limits", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	qn, err := NewQuestionRepository(db).CreateQuestion(context.Background(),
		question.Question{UserID: 1, SubjectID: 2, Title: "Limits", Description: "?", CreatedAt: now, UpdatedAt: now},
		activity.Activity{UserID: 1, Type: activity.TypeQuestionAsked, Description: "Asked a question: Limits", CreatedAt: now},
	)
	require.NoError(t, err)
	assert.Equal(t, 3, qn.ID)
	assert.Zero(t, qn.AnswersCount)
}

func TestQuestionRepository_CreateAnswer(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	newAnswer := question.Answer{QuestionID: 3, UserID: 2, Content: "Use L'Hopital", CreatedAt: now, UpdatedAt: now}
	act := activity.Activity{UserID: 2, Type: activity.TypeAnswerGiven, Description: "Answered a question", CreatedAt: now}

	t.Run("counts and records in one transaction", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectExec(q("UPDATE questions SET answers_count = answers_count + 1")).
			WithArgs(3, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(q("INSERT INTO answers")).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(8))
		mock.ExpectExec(q("UPDATE users SET total_answers = total_answers + 1")).
			WithArgs(2).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(q("INSERT INTO activities")).
			WithArgs(2, string(activity.TypeAnswerGiven), 8, "Answered a question", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		a, err := NewQuestionRepository(db).CreateAnswer(ctx, newAnswer, act)
		require.NoError(t, err)
		assert.Equal(t, 8, a.ID)
		assert.False(t, a.IsAccepted)
	})

	t.Run("rolls back on unknown question", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectExec(q("UPDATE questions SET answers_count")).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		_, err := NewQuestionRepository(db).CreateAnswer(ctx, newAnswer, act)
		assert.Equal(t, question.ErrNotFound, err)
	})

	t.Run("rolls back on failing activity insert", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectExec(q("UPDATE questions SET answers_count")).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(q("INSERT INTO answers")).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(8))
		mock.ExpectExec(q("UPDATE users SET total_answers")).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(q("INSERT INTO activities")).
			WillReturnError(errors.New("connection reset"))
		mock.ExpectRollback()

		_, err := NewQuestionRepository(db).CreateAnswer(ctx, newAnswer, act)
		assert.Error(t, err)
	})
}

func TestQuestionRepository_QueryQuestions(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now().UTC()
	cols := []string{"id", "user_id", "subject_id", "title", "description", "is_urgent", "is_resolved", "view_count", "answers_count", "created_at", "updated_at"}

	mock.ExpectQuery(q("FROM questions ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2")).
		WithArgs(core.MaxPageLimit, 20).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(2, 1, 1, "B", "b", false, false, 0, 1, now, now).
			AddRow(1, 1, 1, "A", "a", true, false, 0, 0, now, now))

	qs, err := NewQuestionRepository(db).QueryQuestions(context.Background(), core.Pagination{Limit: 500, Offset: 20})
	require.NoError(t, err)
	require.Len(t, qs, 2)
	assert.Equal(t, 2, qs[0].ID)
	assert.True(t, qs[1].IsUrgent)
}

func TestQuestionRepository_AcceptAnswer(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	cols := []string{"id", "question_id", "user_id", "content", "is_accepted", "votes_count", "created_at", "updated_at"}

	t.Run("rewards the author", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery(q("FROM answers WHERE id = $1 FOR UPDATE")).WithArgs(8).
			WillReturnRows(sqlmock.NewRows(cols).AddRow(8, 3, 2, "x", false, 0, now, now))
		mock.ExpectQuery(q("SELECT EXISTS")).WithArgs(3).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectExec(q("UPDATE answers SET is_accepted = TRUE")).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(q("UPDATE questions SET is_resolved = TRUE")).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(q("UPDATE users SET reward_points = reward_points + $2")).
			WithArgs(2, question.AcceptedAnswerPoints, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		a, err := NewQuestionRepository(db).AcceptAnswer(ctx, 8, question.AcceptedAnswerPoints, now)
		require.NoError(t, err)
		assert.True(t, a.IsAccepted)
	})

	t.Run("refuses a second accepted answer", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery(q("FROM answers WHERE id = $1 FOR UPDATE")).WithArgs(9).
			WillReturnRows(sqlmock.NewRows(cols).AddRow(9, 3, 4, "y", false, 0, now, now))
		mock.ExpectQuery(q("SELECT EXISTS")).WithArgs(3).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectRollback()

		_, err := NewQuestionRepository(db).AcceptAnswer(ctx, 9, question.AcceptedAnswerPoints, now)
		assert.Equal(t, question.ErrAlreadyAccepted, err)
	})
}

func TestLiveHelpRepository_UpdateSession(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	started := now.Add(-30 * time.Minute)
	cols := []string{"id", "requester_id", "helper_id", "subject_id", "title", "description", "is_urgent", "status", "started_at", "ended_at", "duration", "created_at"}

	t.Run("completion rewards the helper", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery(q("FROM live_help_sessions WHERE id = $1 FOR UPDATE")).WithArgs(5).
			WillReturnRows(sqlmock.NewRows(cols).AddRow(5, 1, 2, 1, "Recursion", nil, false, "active", started, nil, nil, started))
		mock.ExpectExec(q("UPDATE live_help_sessions SET")).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(q("UPDATE users SET reward_points = reward_points + $2")).
			WithArgs(2, livehelp.HelpSessionPoints).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(q("INSERT INTO activities")).WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		s, err := NewLiveHelpRepository(db).UpdateSession(ctx, 5, func(s *livehelp.Session) (*livehelp.Completion, error) {
			s.Status = livehelp.StatusCompleted
			s.EndedAt = &now
			return &livehelp.Completion{
				Points:   livehelp.HelpSessionPoints,
				Activity: activity.Activity{UserID: *s.HelperID, Type: activity.TypeHelpSessionCompleted, CreatedAt: now},
			}, nil
		})
		require.NoError(t, err)
		assert.Equal(t, livehelp.StatusCompleted, s.Status)
		require.NotNil(t, s.HelperID)
		assert.Equal(t, 2, *s.HelperID)
	})

	t.Run("failing mutator rolls back", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery(q("FROM live_help_sessions WHERE id = $1 FOR UPDATE")).WithArgs(5).
			WillReturnRows(sqlmock.NewRows(cols).AddRow(5, 1, nil, 1, "Recursion", nil, false, "cancelled", nil, now, nil, started))
		mock.ExpectRollback()

		_, err := NewLiveHelpRepository(db).UpdateSession(ctx, 5, func(*livehelp.Session) (*livehelp.Completion, error) {
			return nil, livehelp.ErrInvalidTransition
		})
		assert.Equal(t, livehelp.ErrInvalidTransition, err)
	})

	t.Run("unknown session", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery(q("FROM live_help_sessions WHERE id = $1 FOR UPDATE")).WithArgs(404).
			WillReturnRows(sqlmock.NewRows(cols))
		mock.ExpectRollback()

		_, err := NewLiveHelpRepository(db).UpdateSession(ctx, 404, func(*livehelp.Session) (*livehelp.Completion, error) {
			t.Fatal("mutator must not run")
			return nil, nil
		})
		assert.Equal(t, livehelp.ErrNotFound, err)
	})
}

func TestUserSubjectRepository_Duplicate(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(q("INSERT INTO user_subjects")).
		WillReturnError(&pq.Error{Code: uniqueViolation, Constraint: "user_subjects_user_id_subject_id_key"})

	_, err := NewUserSubjectRepository(db).CreateUserSubject(context.Background(), expertise.UserSubject{UserID: 1, SubjectID: 1})
	assert.Equal(t, expertise.ErrAlreadyDeclared, err)
}

func TestLiveHelpRepository_CreateSessionStampsCreatedAt(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(q("INSERT INTO live_help_sessions")).
		WithArgs(1, 2, "Recursion", sqlmock.AnyArg(), false, string(livehelp.StatusPending), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))

	s, err := NewLiveHelpRepository(db).CreateSession(context.Background(), livehelp.Session{RequesterID: 1, SubjectID: 2, Title: "Recursion"})
	require.NoError(t, err)
	assert.Equal(t, 5, s.ID)
	assert.False(t, s.CreatedAt.IsZero())
}
