package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/TanishSen/Learn-Scope/core/livehelp"
)

const liveHelpColumns = `id, requester_id, helper_id, subject_id, title, description, is_urgent, status,
	started_at, ended_at, duration, created_at`

type liveHelpRow struct {
	ID          int         `db:"id"`
	RequesterID int         `db:"requester_id"`
	HelperID    null.Int    `db:"helper_id"`
	SubjectID   int         `db:"subject_id"`
	Title       string      `db:"title"`
	Description null.String `db:"description"`
	IsUrgent    bool        `db:"is_urgent"`
	Status      string      `db:"status"`
	StartedAt   null.Time   `db:"started_at"`
	EndedAt     null.Time   `db:"ended_at"`
	Duration    null.Int    `db:"duration"`
	CreatedAt   time.Time   `db:"created_at"`
}

func utcPtr(t null.Time) *time.Time {
	if !t.Valid {
		return nil
	}
	utc := t.Time.UTC()
	return &utc
}

func (r liveHelpRow) toSession() livehelp.Session {
	return livehelp.Session{
		ID:          r.ID,
		RequesterID: r.RequesterID,
		HelperID:    r.HelperID.Ptr(),
		SubjectID:   r.SubjectID,
		Title:       r.Title,
		Description: r.Description.Ptr(),
		IsUrgent:    r.IsUrgent,
		Status:      livehelp.Status(r.Status),
		StartedAt:   utcPtr(r.StartedAt),
		EndedAt:     utcPtr(r.EndedAt),
		Duration:    r.Duration.Ptr(),
		CreatedAt:   r.CreatedAt.UTC(),
	}
}

type liveHelpRepository struct {
	db *sqlx.DB
}

func NewLiveHelpRepository(db *sqlx.DB) livehelp.Repository {
	return &liveHelpRepository{db: db}
}

func (repo *liveHelpRepository) CreateSession(ctx context.Context, s livehelp.Session) (livehelp.Session, error) {
	s.Status = livehelp.StatusPending
	s.HelperID, s.StartedAt, s.EndedAt, s.Duration = nil, nil, nil, nil
	s.CreatedAt = stamp(s.CreatedAt)
	err := repo.db.GetContext(ctx, &s.ID,
		`INSERT INTO live_help_sessions (requester_id, subject_id, title, description, is_urgent, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		s.RequesterID, s.SubjectID, s.Title, null.StringFromPtr(s.Description), s.IsUrgent, string(s.Status), s.CreatedAt,
	)
	if err != nil {
		return livehelp.Session{}, errors.Wrap(err, "inserting live help session")
	}
	return s, nil
}

func (repo *liveHelpRepository) GetSessionByID(ctx context.Context, id int) (livehelp.Session, error) {
	var row liveHelpRow
	err := repo.db.GetContext(ctx, &row, `SELECT `+liveHelpColumns+` FROM live_help_sessions WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return livehelp.Session{}, livehelp.ErrNotFound
		}
		return livehelp.Session{}, errors.Wrap(err, "getting live help session")
	}
	return row.toSession(), nil
}

func (repo *liveHelpRepository) QuerySessions(ctx context.Context, status livehelp.Status) ([]livehelp.Session, error) {
	rows := make([]liveHelpRow, 0)
	var err error
	if status == "" {
		err = repo.db.SelectContext(ctx, &rows, `SELECT `+liveHelpColumns+` FROM live_help_sessions`+newestFirst)
	} else {
		err = repo.db.SelectContext(ctx, &rows,
			`SELECT `+liveHelpColumns+` FROM live_help_sessions WHERE status = $1`+newestFirst, string(status))
	}
	if err != nil {
		return nil, errors.Wrap(err, "querying live help sessions")
	}
	sessions := make([]livehelp.Session, 0, len(rows))
	for _, r := range rows {
		sessions = append(sessions, r.toSession())
	}
	return sessions, nil
}

func (repo *liveHelpRepository) UpdateSession(ctx context.Context, id int, mut livehelp.Mutator) (livehelp.Session, error) {
	var s livehelp.Session
	err := withTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		var row liveHelpRow
		if err := tx.GetContext(ctx, &row, `SELECT `+liveHelpColumns+` FROM live_help_sessions WHERE id = $1 FOR UPDATE`, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return livehelp.ErrNotFound
			}
			return errors.Wrap(err, "locking live help session")
		}
		s = row.toSession()

		completion, err := mut(&s)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE live_help_sessions SET helper_id = $2, status = $3, started_at = $4, ended_at = $5, duration = $6 WHERE id = $1`,
			id, null.IntFromPtr(s.HelperID), string(s.Status),
			null.TimeFromPtr(s.StartedAt), null.TimeFromPtr(s.EndedAt), null.IntFromPtr(s.Duration),
		)
		if err != nil {
			return errors.Wrap(err, "updating live help session")
		}
		if completion == nil {
			return nil
		}

		if s.HelperID != nil {
			_, err = tx.ExecContext(ctx,
				`UPDATE users SET reward_points = reward_points + $2 WHERE id = $1`, *s.HelperID, completion.Points)
			if err != nil {
				return errors.Wrap(err, "rewarding helper")
			}
		}
		return insertActivity(ctx, tx, completion.Activity, id)
	})
	if err != nil {
		return livehelp.Session{}, err
	}
	return s, nil
}
