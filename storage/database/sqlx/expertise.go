package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/TanishSen/Learn-Scope/core/expertise"
)

type userSubjectRow struct {
	ID               int       `db:"id"`
	UserID           int       `db:"user_id"`
	SubjectID        int       `db:"subject_id"`
	ProficiencyLevel string    `db:"proficiency_level"`
	CanHelp          bool      `db:"can_help"`
	CreatedAt        time.Time `db:"created_at"`
}

type userSubjectRepository struct {
	db *sqlx.DB
}

func NewUserSubjectRepository(db *sqlx.DB) expertise.Repository {
	return &userSubjectRepository{db: db}
}

func (repo *userSubjectRepository) CreateUserSubject(ctx context.Context, us expertise.UserSubject) (expertise.UserSubject, error) {
	us.CreatedAt = stamp(us.CreatedAt)
	err := repo.db.GetContext(ctx, &us.ID,
		`INSERT INTO user_subjects (user_id, subject_id, proficiency_level, can_help, created_at)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		us.UserID, us.SubjectID, string(us.ProficiencyLevel), us.CanHelp, us.CreatedAt,
	)
	if err != nil {
		if _, ok := constraintViolated(err); ok {
			return expertise.UserSubject{}, expertise.ErrAlreadyDeclared
		}
		return expertise.UserSubject{}, errors.Wrap(err, "inserting user subject")
	}
	return us, nil
}

func (repo *userSubjectRepository) QueryUserSubjects(ctx context.Context, userID int) ([]expertise.UserSubject, error) {
	rows := make([]userSubjectRow, 0)
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT id, user_id, subject_id, proficiency_level, can_help, created_at FROM user_subjects
		WHERE user_id = $1`+newestFirst, userID)
	if err != nil {
		return nil, errors.Wrap(err, "querying user subjects")
	}
	uss := make([]expertise.UserSubject, 0, len(rows))
	for _, r := range rows {
		uss = append(uss, expertise.UserSubject{
			ID:               r.ID,
			UserID:           r.UserID,
			SubjectID:        r.SubjectID,
			ProficiencyLevel: expertise.Proficiency(r.ProficiencyLevel),
			CanHelp:          r.CanHelp,
			CreatedAt:        r.CreatedAt.UTC(),
		})
	}
	return uss, nil
}
