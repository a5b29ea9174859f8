package user

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"
)

var (
	ErrNotFound    = errors.New("user not found")
	ErrEmailExists = errors.New("email already exists")
)

type Repository interface {
	List(ctx context.Context, params ListParams) ([]User, error)
	Count(ctx context.Context, search string) (int, error)
	GetByID(ctx context.Context, id int) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	Create(ctx context.Context, u NewUser) (User, error)
	Update(ctx context.Context, id int, patch Patch) (User, error)
	Delete(ctx context.Context, id int) error
}

// InMemoryRepository is a simple in-memory implementation used by handler
// tests and local experiments.
type InMemoryRepository struct {
	mu      sync.RWMutex
	storage []User
	nextID  int
}

func NewInMemoryRepository(seed []User) *InMemoryRepository {
	r := &InMemoryRepository{
		storage: make([]User, 0, len(seed)),
		nextID:  1,
	}

	maxID := 0
	for _, u := range seed {
		r.storage = append(r.storage, u)
		if u.ID > maxID {
			maxID = u.ID
		}
	}
	r.nextID = maxID + 1
	return r
}

func (r *InMemoryRepository) matches(u User, search string) bool {
	if search == "" {
		return true
	}
	needle := strings.ToLower(search)
	return strings.Contains(strings.ToLower(u.Name), needle) ||
		strings.Contains(strings.ToLower(u.Email), needle)
}

func (r *InMemoryRepository) List(_ context.Context, params ListParams) ([]User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	filtered := make([]User, 0, len(r.storage))
	for _, u := range r.storage {
		if r.matches(u, params.Search) {
			filtered = append(filtered, u)
		}
	}
	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})

	if params.Offset >= len(filtered) {
		return []User{}, nil
	}
	end := params.Offset + params.Limit
	if end > len(filtered) {
		end = len(filtered)
	}
	out := make([]User, end-params.Offset)
	copy(out, filtered[params.Offset:end])
	return out, nil
}

func (r *InMemoryRepository) Count(_ context.Context, search string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, u := range r.storage {
		if r.matches(u, search) {
			count++
		}
	}
	return count, nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id int) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.storage {
		if u.ID == id {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *InMemoryRepository) GetByEmail(_ context.Context, email string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.storage {
		if u.Email == email {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *InMemoryRepository) Create(_ context.Context, nu NewUser) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	u := User{
		ID:        r.nextID,
		Name:      nu.Name,
		Email:     nu.Email,
		Phone:     nu.Phone,
		Bio:       nu.Bio,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.nextID++
	r.storage = append(r.storage, u)
	return u, nil
}

func (r *InMemoryRepository) Update(_ context.Context, id int, patch Patch) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.storage {
		if r.storage[i].ID != id {
			continue
		}
		u := r.storage[i]
		if patch.Name != nil {
			u.Name = *patch.Name
		}
		if patch.Email != nil {
			u.Email = *patch.Email
		}
		if patch.Phone != nil {
			u.Phone = nullableString(*patch.Phone)
		}
		if patch.Bio != nil {
			u.Bio = nullableString(*patch.Bio)
		}
		u.UpdatedAt = time.Now().UTC()
		r.storage[i] = u
		return u, nil
	}
	return User{}, ErrNotFound
}

func (r *InMemoryRepository) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.storage {
		if r.storage[i].ID == id {
			r.storage = append(r.storage[:i], r.storage[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
