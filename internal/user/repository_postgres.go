package user

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/filipal/fitspace-backend-radno/internal/database"
)

type PostgresRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const (
	userColumns = `id, name, email, phone, bio, created_at, updated_at`

	listUsersQuery = `
		SELECT id, name, email, phone, bio, created_at, updated_at
		FROM users
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	searchUsersQuery = `
		SELECT id, name, email, phone, bio, created_at, updated_at
		FROM users
		WHERE name ILIKE $1 OR email ILIKE $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	countUsersQuery       = `SELECT COUNT(*) FROM users`
	countSearchUsersQuery = `SELECT COUNT(*) FROM users WHERE name ILIKE $1 OR email ILIKE $1`

	getUserByIDQuery    = `SELECT id, name, email, phone, bio, created_at, updated_at FROM users WHERE id = $1`
	getUserByEmailQuery = `SELECT id, name, email, phone, bio, created_at, updated_at FROM users WHERE email = $1`

	insertUserQuery = `
		INSERT INTO users (name, email, phone, bio, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id, name, email, phone, bio, created_at, updated_at
	`
	deleteUserQuery = `DELETE FROM users WHERE id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context, params ListParams) ([]User, error) {
	ctx, cancel := database.QueryContext(ctx)
	defer cancel()

	var rows *sql.Rows
	var err error
	if params.Search != "" {
		rows, err = r.db.QueryContext(ctx, searchUsersQuery, likePattern(params.Search), params.Limit, params.Offset)
	} else {
		rows, err = r.db.QueryContext(ctx, listUsersQuery, params.Limit, params.Offset)
	}
	if err != nil {
		logrus.WithError(err).Error("Error listing users")
		return nil, database.TranslateError(err)
	}
	defer rows.Close()

	users := make([]User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, database.TranslateError(err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, database.TranslateError(err)
	}
	return users, nil
}

func (r *PostgresRepository) Count(ctx context.Context, search string) (int, error) {
	ctx, cancel := database.QueryContext(ctx)
	defer cancel()

	var row *sql.Row
	if search != "" {
		row = r.db.QueryRowContext(ctx, countSearchUsersQuery, likePattern(search))
	} else {
		row = r.db.QueryRowContext(ctx, countUsersQuery)
	}

	var total int
	if err := row.Scan(&total); err != nil {
		logrus.WithError(err).Error("Error counting users")
		return 0, database.TranslateError(err)
	}
	return total, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int) (User, error) {
	ctx, cancel := database.QueryContext(ctx)
	defer cancel()

	u, err := scanUser(r.db.QueryRowContext(ctx, getUserByIDQuery, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return User{}, ErrNotFound
		}
		logrus.WithError(err).WithField("user_id", id).Error("Error getting user")
		return User{}, database.TranslateError(err)
	}
	return u, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (User, error) {
	ctx, cancel := database.QueryContext(ctx)
	defer cancel()

	u, err := scanUser(r.db.QueryRowContext(ctx, getUserByEmailQuery, email))
	if err != nil {
		if err == sql.ErrNoRows {
			return User{}, ErrNotFound
		}
		logrus.WithError(err).WithField("email", email).Error("Error getting user by email")
		return User{}, database.TranslateError(err)
	}
	return u, nil
}

func (r *PostgresRepository) Create(ctx context.Context, nu NewUser) (User, error) {
	ctx, cancel := database.QueryContext(ctx)
	defer cancel()

	u, err := scanUser(r.db.QueryRowContext(ctx, insertUserQuery, nu.Name, nu.Email, nu.Phone, nu.Bio))
	if err != nil {
		logrus.WithError(err).WithField("email", nu.Email).Error("Error creating user")
		return User{}, database.TranslateError(err)
	}
	logrus.WithField("email", u.Email).Info("Created user")
	return u, nil
}

// Update assembles the SET clause from the patch's fixed field enumeration so
// only supplied columns change; the updated_at trigger refreshes the
// timestamp server-side.
func (r *PostgresRepository) Update(ctx context.Context, id int, patch Patch) (User, error) {
	clauses := make([]string, 0, 4)
	args := make([]any, 0, 5)

	appendClause := func(column string, value any) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Name != nil {
		appendClause("name", *patch.Name)
	}
	if patch.Email != nil {
		appendClause("email", *patch.Email)
	}
	if patch.Phone != nil {
		appendClause("phone", *patch.Phone)
	}
	if patch.Bio != nil {
		appendClause("bio", *patch.Bio)
	}
	if len(clauses) == 0 {
		return User{}, fmt.Errorf("no fields to update")
	}

	args = append(args, id)
	query := fmt.Sprintf(
		"UPDATE users SET %s, updated_at = NOW() WHERE id = $%d RETURNING %s",
		strings.Join(clauses, ", "),
		len(args),
		userColumns,
	)

	ctx, cancel := database.QueryContext(ctx)
	defer cancel()

	u, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if err == sql.ErrNoRows {
			return User{}, ErrNotFound
		}
		logrus.WithError(err).WithField("user_id", id).Error("Error updating user")
		return User{}, database.TranslateError(err)
	}
	return u, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int) error {
	ctx, cancel := database.QueryContext(ctx)
	defer cancel()

	result, err := r.db.ExecContext(ctx, deleteUserQuery, id)
	if err != nil {
		logrus.WithError(err).WithField("user_id", id).Error("Error deleting user")
		return database.TranslateError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return database.TranslateError(err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func likePattern(search string) string {
	return "%" + search + "%"
}

func scanUser(scanner rowScanner) (User, error) {
	u := User{}
	var phone sql.NullString
	var bio sql.NullString

	if err := scanner.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&phone,
		&bio,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		return User{}, err
	}

	u.Phone = nullableString(phone)
	u.Bio = nullableString(bio)
	return u, nil
}
