package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/TanishSen/Learn-Scope/core/user"
)

const userColumns = `id, username, email, password, first_name, last_name, profile_image_url, college,
	reward_points, total_answers, total_questions, following, followers, is_online, last_seen, created_at, updated_at`

type userRow struct {
	ID              int         `db:"id"`
	Username        string      `db:"username"`
	Email           string      `db:"email"`
	Password        string      `db:"password"`
	FirstName       null.String `db:"first_name"`
	LastName        null.String `db:"last_name"`
	ProfileImageURL null.String `db:"profile_image_url"`
	College         null.String `db:"college"`
	RewardPoints    int         `db:"reward_points"`
	TotalAnswers    int         `db:"total_answers"`
	TotalQuestions  int         `db:"total_questions"`
	Following       int         `db:"following"`
	Followers       int         `db:"followers"`
	IsOnline        bool        `db:"is_online"`
	LastSeen        time.Time   `db:"last_seen"`
	CreatedAt       time.Time   `db:"created_at"`
	UpdatedAt       time.Time   `db:"updated_at"`
}

func (r userRow) toUser() user.User {
	return user.User{
		ID:              r.ID,
		Username:        r.Username,
		Email:           r.Email,
		PasswordHash:    r.Password,
		FirstName:       r.FirstName.Ptr(),
		LastName:        r.LastName.Ptr(),
		ProfileImageURL: r.ProfileImageURL.Ptr(),
		College:         r.College.Ptr(),
		RewardPoints:    r.RewardPoints,
		TotalAnswers:    r.TotalAnswers,
		TotalQuestions:  r.TotalQuestions,
		Following:       r.Following,
		Followers:       r.Followers,
		IsOnline:        r.IsOnline,
		LastSeen:        r.LastSeen.UTC(),
		CreatedAt:       r.CreatedAt.UTC(),
		UpdatedAt:       r.UpdatedAt.UTC(),
	}
}

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) getBy(ctx context.Context, column string, value interface{}) (user.User, error) {
	var row userRow
	err := repo.db.GetContext(ctx, &row, `SELECT `+userColumns+` FROM users WHERE `+column+` = $1`, value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrapf(err, "getting user by %s", column)
	}
	return row.toUser(), nil
}

func (repo *userRepository) CheckUniqueness(ctx context.Context, username, email string) error {
	taken := make([]bool, 0)
	err := repo.db.SelectContext(ctx, &taken,
		`SELECT username = $1 FROM users WHERE username = $1 OR email = $2`, username, email)
	if err != nil {
		return errors.Wrap(err, "checking uniqueness")
	}
	if len(taken) == 0 {
		return nil
	}
	for _, usernameTaken := range taken {
		if usernameTaken {
			return user.ErrUsernameExists
		}
	}
	return user.ErrEmailExists
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.IsOnline = true
	usr.CreatedAt = stamp(usr.CreatedAt)
	if usr.UpdatedAt.IsZero() {
		usr.UpdatedAt = usr.CreatedAt
	}
	if usr.LastSeen.IsZero() {
		usr.LastSeen = usr.CreatedAt
	}
	err := repo.db.GetContext(ctx, &usr.ID,
		`INSERT INTO users (username, email, password, first_name, last_name, profile_image_url, college,
			is_online, last_seen, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id`,
		usr.Username, usr.Email, usr.PasswordHash,
		null.StringFromPtr(usr.FirstName), null.StringFromPtr(usr.LastName),
		null.StringFromPtr(usr.ProfileImageURL), null.StringFromPtr(usr.College),
		usr.IsOnline, usr.LastSeen, usr.CreatedAt, usr.UpdatedAt,
	)
	if err != nil {
		if constraint, ok := constraintViolated(err); ok {
			if strings.Contains(constraint, "username") {
				return user.User{}, user.ErrUsernameExists
			}
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id int) (user.User, error) {
	return repo.getBy(ctx, "id", id)
}

func (repo *userRepository) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	return repo.getBy(ctx, "username", username)
}

func (repo *userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	return repo.getBy(ctx, "email", email)
}

func (repo *userRepository) QueryOnlineUsers(ctx context.Context, limit int) ([]user.User, error) {
	rows := make([]userRow, 0)
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT `+userColumns+` FROM users WHERE is_online ORDER BY last_seen DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "querying online users")
	}
	users := make([]user.User, 0, len(rows))
	for _, r := range rows {
		users = append(users, r.toUser())
	}
	return users, nil
}

func (repo *userRepository) CountUsers(ctx context.Context) (int, error) {
	var n int
	err := repo.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM users`)
	return n, errors.Wrap(err, "counting users")
}

func (repo *userRepository) SetPresence(ctx context.Context, id int, online bool, at time.Time) error {
	res, err := repo.db.ExecContext(ctx, `UPDATE users SET is_online = $2, last_seen = $3 WHERE id = $1`, id, online, at)
	if err != nil {
		return errors.Wrap(err, "setting presence")
	}
	return mustAffect(res, user.ErrNotFound)
}

func (repo *userRepository) UpdatePassword(ctx context.Context, id int, hash string, at time.Time) error {
	res, err := repo.db.ExecContext(ctx, `UPDATE users SET password = $2, updated_at = $3 WHERE id = $1`, id, hash, at)
	if err != nil {
		return errors.Wrap(err, "updating password")
	}
	return mustAffect(res, user.ErrNotFound)
}
