package avatar

import (
	"database/sql"
	"time"
)

// Avatar maps to the `avatars` table. Every descriptive column is nullable.
type Avatar struct {
	ID                      int       `json:"id"`
	UserID                  int       `json:"user_id"`
	DisplayName             *string   `json:"display_name"`
	Age                     *int      `json:"age"`
	Gender                  *string   `json:"gender"`
	HeightCm                *float64  `json:"height_cm"`
	WeightKg                *float64  `json:"weight_kg"`
	BodyFatPercent          *float64  `json:"body_fat_percent"`
	ShoulderCircumferenceCm *float64  `json:"shoulder_circumference_cm"`
	WaistCm                 *float64  `json:"waist_cm"`
	HipsCm                  *float64  `json:"hips_cm"`
	Notes                   *string   `json:"notes"`
	CreatedAt               time.Time `json:"created_at"`
	UpdatedAt               time.Time `json:"updated_at"`
}

// Fields is the typed field set shared by create and partial update. A nil
// field was not supplied; a non-nil Null* value with Valid=false sets the
// column to NULL. SQL column names come from the fixed enumeration in the
// repository, never from request keys.
type Fields struct {
	DisplayName             *sql.NullString
	Age                     *sql.NullInt64
	Gender                  *sql.NullString
	HeightCm                *sql.NullFloat64
	WeightKg                *sql.NullFloat64
	BodyFatPercent          *sql.NullFloat64
	ShoulderCircumferenceCm *sql.NullFloat64
	WaistCm                 *sql.NullFloat64
	HipsCm                  *sql.NullFloat64
	Notes                   *sql.NullString
}

// IsEmpty reports whether no field was supplied.
func (f Fields) IsEmpty() bool {
	return f.DisplayName == nil &&
		f.Age == nil &&
		f.Gender == nil &&
		f.HeightCm == nil &&
		f.WeightKg == nil &&
		f.BodyFatPercent == nil &&
		f.ShoulderCircumferenceCm == nil &&
		f.WaistCm == nil &&
		f.HipsCm == nil &&
		f.Notes == nil
}

// Genders is the accepted gender vocabulary, matched after lower-casing.
var Genders = []string{"male", "female", "non-binary", "other", "prefer_not_to_say"}
