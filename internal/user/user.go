package user

import (
	"database/sql"
	"time"
)

// User maps to the `users` table. Phone and bio are nullable.
type User struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone"`
	Bio       *string   `json:"bio"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUser carries the normalized fields of a create request.
type NewUser struct {
	Name  string
	Email string
	Phone *string
	Bio   *string
}

// Patch is the typed partial-update structure. A nil field is "not supplied";
// a non-nil sql.NullString with Valid=false sets the column to NULL. The SET
// clause is assembled from this fixed field enumeration only, never from
// request keys.
type Patch struct {
	Name  *string
	Email *string
	Phone *sql.NullString
	Bio   *sql.NullString
}

// IsEmpty reports whether no field was supplied.
func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.Phone == nil && p.Bio == nil
}

// ListParams bounds a paginated listing. Search, when non-empty, matches name
// or email case-insensitively.
type ListParams struct {
	Limit  int
	Offset int
	Search string
}

func nullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}
