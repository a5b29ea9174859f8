package avatar

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"sync"
	"time"
)

var ErrNotFound = errors.New("avatar not found")

// Repository operations are always scoped by the parent user; an avatar id
// belonging to a different user behaves as not found.
type Repository interface {
	ListForUser(ctx context.Context, userID int) ([]Avatar, error)
	Get(ctx context.Context, userID, avatarID int) (Avatar, error)
	Create(ctx context.Context, userID int, fields Fields) (Avatar, error)
	Update(ctx context.Context, userID, avatarID int, fields Fields) (Avatar, error)
	Delete(ctx context.Context, userID, avatarID int) error
}

// InMemoryRepository backs handler tests.
type InMemoryRepository struct {
	mu      sync.RWMutex
	storage []Avatar
	nextID  int
}

func NewInMemoryRepository(seed []Avatar) *InMemoryRepository {
	r := &InMemoryRepository{
		storage: make([]Avatar, 0, len(seed)),
		nextID:  1,
	}
	maxID := 0
	for _, a := range seed {
		r.storage = append(r.storage, a)
		if a.ID > maxID {
			maxID = a.ID
		}
	}
	r.nextID = maxID + 1
	return r
}

func (r *InMemoryRepository) ListForUser(_ context.Context, userID int) ([]Avatar, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Avatar, 0)
	for _, a := range r.storage {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *InMemoryRepository) Get(_ context.Context, userID, avatarID int) (Avatar, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.storage {
		if a.UserID == userID && a.ID == avatarID {
			return a, nil
		}
	}
	return Avatar{}, ErrNotFound
}

func (r *InMemoryRepository) Create(_ context.Context, userID int, fields Fields) (Avatar, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	a := Avatar{
		ID:        r.nextID,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	apply(&a, fields)
	r.nextID++
	r.storage = append(r.storage, a)
	return a, nil
}

func (r *InMemoryRepository) Update(_ context.Context, userID, avatarID int, fields Fields) (Avatar, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.storage {
		if r.storage[i].UserID != userID || r.storage[i].ID != avatarID {
			continue
		}
		a := r.storage[i]
		apply(&a, fields)
		a.UpdatedAt = time.Now().UTC()
		r.storage[i] = a
		return a, nil
	}
	return Avatar{}, ErrNotFound
}

func (r *InMemoryRepository) Delete(_ context.Context, userID, avatarID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.storage {
		if r.storage[i].UserID == userID && r.storage[i].ID == avatarID {
			r.storage = append(r.storage[:i], r.storage[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func apply(a *Avatar, fields Fields) {
	if fields.DisplayName != nil {
		a.DisplayName = fromNullString(*fields.DisplayName)
	}
	if fields.Age != nil {
		a.Age = fromNullInt(*fields.Age)
	}
	if fields.Gender != nil {
		a.Gender = fromNullString(*fields.Gender)
	}
	if fields.HeightCm != nil {
		a.HeightCm = fromNullFloat(*fields.HeightCm)
	}
	if fields.WeightKg != nil {
		a.WeightKg = fromNullFloat(*fields.WeightKg)
	}
	if fields.BodyFatPercent != nil {
		a.BodyFatPercent = fromNullFloat(*fields.BodyFatPercent)
	}
	if fields.ShoulderCircumferenceCm != nil {
		a.ShoulderCircumferenceCm = fromNullFloat(*fields.ShoulderCircumferenceCm)
	}
	if fields.WaistCm != nil {
		a.WaistCm = fromNullFloat(*fields.WaistCm)
	}
	if fields.HipsCm != nil {
		a.HipsCm = fromNullFloat(*fields.HipsCm)
	}
	if fields.Notes != nil {
		a.Notes = fromNullString(*fields.Notes)
	}
}

func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

func fromNullInt(ni sql.NullInt64) *int {
	if !ni.Valid {
		return nil
	}
	v := int(ni.Int64)
	return &v
}

func fromNullFloat(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	return &nf.Float64
}
