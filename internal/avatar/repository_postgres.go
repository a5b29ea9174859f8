package avatar

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
	avatarColumns = `id, user_id, display_name, age, gender, height_cm, weight_kg,
		body_fat_percent, shoulder_circumference_cm, waist_cm, hips_cm,
		notes, created_at, updated_at`

	listAvatarsQuery = `
		SELECT id, user_id, display_name, age, gender, height_cm, weight_kg,
			body_fat_percent, shoulder_circumference_cm, waist_cm, hips_cm,
			notes, created_at, updated_at
		FROM avatars
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`
	getAvatarQuery = `
		SELECT id, user_id, display_name, age, gender, height_cm, weight_kg,
			body_fat_percent, shoulder_circumference_cm, waist_cm, hips_cm,
			notes, created_at, updated_at
		FROM avatars
		WHERE user_id = $1 AND id = $2
	`
	insertAvatarQuery = `
		INSERT INTO avatars (
			user_id, display_name, age, gender, height_cm, weight_kg,
			body_fat_percent, shoulder_circumference_cm, waist_cm, hips_cm, notes
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, user_id, display_name, age, gender, height_cm, weight_kg,
			body_fat_percent, shoulder_circumference_cm, waist_cm, hips_cm,
			notes, created_at, updated_at
	`
	deleteAvatarQuery = `DELETE FROM avatars WHERE user_id = $1 AND id = $2`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListForUser(ctx context.Context, userID int) ([]Avatar, error) {
	ctx, cancel := database.QueryContext(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, listAvatarsQuery, userID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", userID).Error("Error listing avatars")
		return nil, database.TranslateError(err)
	}
	defer rows.Close()

	avatars := make([]Avatar, 0)
	for rows.Next() {
		a, err := scanAvatar(rows)
		if err != nil {
			return nil, database.TranslateError(err)
		}
		avatars = append(avatars, a)
	}
	if err := rows.Err(); err != nil {
		return nil, database.TranslateError(err)
	}
	return avatars, nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID, avatarID int) (Avatar, error) {
	ctx, cancel := database.QueryContext(ctx)
	defer cancel()

	a, err := scanAvatar(r.db.QueryRowContext(ctx, getAvatarQuery, userID, avatarID))
	if err != nil {
		if err == sql.ErrNoRows {
			return Avatar{}, ErrNotFound
		}
		logrus.WithError(err).WithFields(logrus.Fields{
			"user_id":   userID,
			"avatar_id": avatarID,
		}).Error("Error retrieving avatar")
		return Avatar{}, database.TranslateError(err)
	}
	return a, nil
}

func (r *PostgresRepository) Create(ctx context.Context, userID int, fields Fields) (Avatar, error) {
	ctx, cancel := database.QueryContext(ctx)
	defer cancel()

	a, err := scanAvatar(r.db.QueryRowContext(ctx, insertAvatarQuery,
		userID,
		nullStringArg(fields.DisplayName),
		nullIntArg(fields.Age),
		nullStringArg(fields.Gender),
		nullFloatArg(fields.HeightCm),
		nullFloatArg(fields.WeightKg),
		nullFloatArg(fields.BodyFatPercent),
		nullFloatArg(fields.ShoulderCircumferenceCm),
		nullFloatArg(fields.WaistCm),
		nullFloatArg(fields.HipsCm),
		nullStringArg(fields.Notes),
	))
	if err != nil {
		logrus.WithError(err).WithField("user_id", userID).Error("Error creating avatar")
		return Avatar{}, database.TranslateError(err)
	}
	logrus.WithFields(logrus.Fields{
		"user_id":   userID,
		"avatar_id": a.ID,
	}).Info("Created avatar")
	return a, nil
}

// Update assembles the SET clause from the fixed field enumeration; the WHERE
// clause keeps the operation scoped to the parent user.
func (r *PostgresRepository) Update(ctx context.Context, userID, avatarID int, fields Fields) (Avatar, error) {
	clauses := make([]string, 0, 10)
	args := make([]any, 0, 12)

	appendClause := func(column string, value any) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if fields.DisplayName != nil {
		appendClause("display_name", *fields.DisplayName)
	}
	if fields.Age != nil {
		appendClause("age", *fields.Age)
	}
	if fields.Gender != nil {
		appendClause("gender", *fields.Gender)
	}
	if fields.HeightCm != nil {
		appendClause("height_cm", *fields.HeightCm)
	}
	if fields.WeightKg != nil {
		appendClause("weight_kg", *fields.WeightKg)
	}
	if fields.BodyFatPercent != nil {
		appendClause("body_fat_percent", *fields.BodyFatPercent)
	}
	if fields.ShoulderCircumferenceCm != nil {
		appendClause("shoulder_circumference_cm", *fields.ShoulderCircumferenceCm)
	}
	if fields.WaistCm != nil {
		appendClause("waist_cm", *fields.WaistCm)
	}
	if fields.HipsCm != nil {
		appendClause("hips_cm", *fields.HipsCm)
	}
	if fields.Notes != nil {
		appendClause("notes", *fields.Notes)
	}
	if len(clauses) == 0 {
		return Avatar{}, fmt.Errorf("no fields to update")
	}

	args = append(args, userID, avatarID)
	query := fmt.Sprintf(
		"UPDATE avatars SET %s, updated_at = NOW() WHERE user_id = $%d AND id = $%d RETURNING %s",
		strings.Join(clauses, ", "),
		len(args)-1,
		len(args),
		avatarColumns,
	)

	ctx, cancel := database.QueryContext(ctx)
	defer cancel()

	a, err := scanAvatar(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if err == sql.ErrNoRows {
			return Avatar{}, ErrNotFound
		}
		logrus.WithError(err).WithFields(logrus.Fields{
			"user_id":   userID,
			"avatar_id": avatarID,
		}).Error("Error updating avatar")
		return Avatar{}, database.TranslateError(err)
	}
	return a, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, avatarID int) error {
	ctx, cancel := database.QueryContext(ctx)
	defer cancel()

	result, err := r.db.ExecContext(ctx, deleteAvatarQuery, userID, avatarID)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"user_id":   userID,
			"avatar_id": avatarID,
		}).Error("Error deleting avatar")
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

func nullStringArg(p *sql.NullString) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullIntArg(p *sql.NullInt64) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullFloatArg(p *sql.NullFloat64) any {
	if p == nil {
		return nil
	}
	return *p
}

func scanAvatar(scanner rowScanner) (Avatar, error) {
	a := Avatar{}
	var (
		displayName sql.NullString
		age         sql.NullInt64
		gender      sql.NullString
		height      sql.NullFloat64
		weight      sql.NullFloat64
		bodyFat     sql.NullFloat64
		shoulder    sql.NullFloat64
		waist       sql.NullFloat64
		hips        sql.NullFloat64
		notes       sql.NullString
	)

	if err := scanner.Scan(
		&a.ID,
		&a.UserID,
		&displayName,
		&age,
		&gender,
		&height,
		&weight,
		&bodyFat,
		&shoulder,
		&waist,
		&hips,
		&notes,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return Avatar{}, err
	}

	a.DisplayName = fromNullString(displayName)
	a.Age = fromNullInt(age)
	a.Gender = fromNullString(gender)
	a.HeightCm = fromNullFloat(height)
	a.WeightKg = fromNullFloat(weight)
	a.BodyFatPercent = fromNullFloat(bodyFat)
	a.ShoulderCircumferenceCm = fromNullFloat(shoulder)
	a.WaistCm = fromNullFloat(waist)
	a.HipsCm = fromNullFloat(hips)
	a.Notes = fromNullString(notes)
	return a, nil
}
