package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/TanishSen/Learn-Scope/core/subject"
)

type subjectRow struct {
	ID        int       `db:"id"`
	Name      string    `db:"name"`
	Icon      string    `db:"icon"`
	Color     string    `db:"color"`
	CreatedAt time.Time `db:"created_at"`
}

func (r subjectRow) toSubject() subject.Subject {
	return subject.Subject{ID: r.ID, Name: r.Name, Icon: r.Icon, Color: r.Color, CreatedAt: r.CreatedAt.UTC()}
}

type subjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository reads the subjects seeded by the initial migration.
func NewSubjectRepository(db *sqlx.DB) subject.Repository {
	return &subjectRepository{db: db}
}

func (repo *subjectRepository) QueryAllSubjects(ctx context.Context) ([]subject.Subject, error) {
	rows := make([]subjectRow, 0)
	if err := repo.db.SelectContext(ctx, &rows, `SELECT id, name, icon, color, created_at FROM subjects ORDER BY id`); err != nil {
		return nil, errors.Wrap(err, "querying subjects")
	}
	subjects := make([]subject.Subject, 0, len(rows))
	for _, r := range rows {
		subjects = append(subjects, r.toSubject())
	}
	return subjects, nil
}

func (repo *subjectRepository) GetSubjectByID(ctx context.Context, id int) (subject.Subject, error) {
	var row subjectRow
	err := repo.db.GetContext(ctx, &row, `SELECT id, name, icon, color, created_at FROM subjects WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return subject.Subject{}, subject.ErrNotFound
		}
		return subject.Subject{}, errors.Wrap(err, "getting subject")
	}
	return row.toSubject(), nil
}
