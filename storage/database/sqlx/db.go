package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/TanishSen/Learn-Scope/core/activity"
)

const uniqueViolation = "23505"

// withTx runs fn in a transaction, rolled back when fn fails.
func withTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	if err = fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}

// constraintViolated returns the name of the unique constraint err violates, if any.
func constraintViolated(err error) (string, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return pqErr.Constraint, true
	}
	return "", false
}

// mustAffect turns an update that touched no row into notFound.
func mustAffect(res interface{ RowsAffected() (int64, error) }, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "counting affected rows")
	}
	if n == 0 {
		return notFound
	}
	return nil
}

type activityRow struct {
	ID          int       `db:"id"`
	UserID      int       `db:"user_id"`
	Type        string    `db:"type"`
	EntityID    null.Int  `db:"entity_id"`
	Description string    `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
}

func (r activityRow) toActivity() activity.Activity {
	return activity.Activity{
		ID:          r.ID,
		UserID:      r.UserID,
		Type:        activity.Type(r.Type),
		EntityID:    r.EntityID.Ptr(),
		Description: r.Description,
		CreatedAt:   r.CreatedAt.UTC(),
	}
}

// insertActivity appends act to the feed within tx.
// stamp returns t, or the current time when t is unset.
func stamp(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}

func insertActivity(ctx context.Context, tx *sqlx.Tx, act activity.Activity, entityID int) error {
	act.CreatedAt = stamp(act.CreatedAt)
	if act.EntityID == nil && entityID > 0 {
		act.EntityID = &entityID
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO activities (user_id, type, entity_id, description, created_at) VALUES ($1, $2, $3, $4, $5)`,
		act.UserID, string(act.Type), null.IntFromPtr(act.EntityID), act.Description, act.CreatedAt,
	)
	return errors.Wrap(err, "inserting activity")
}

type activityRepository struct {
	db *sqlx.DB
}

func NewActivityRepository(db *sqlx.DB) activity.Repository {
	return &activityRepository{db: db}
}

func (repo *activityRepository) QueryRecentActivities(ctx context.Context, limit int) ([]activity.Activity, error) {
	rows := make([]activityRow, 0)
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT id, user_id, type, entity_id, description, created_at FROM activities
		ORDER BY created_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "querying activities")
	}
	acts := make([]activity.Activity, 0, len(rows))
	for _, r := range rows {
		acts = append(acts, r.toActivity())
	}
	return acts, nil
}
