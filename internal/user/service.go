package user

import "context"

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns one page of users together with the total match count.
func (s *Service) List(ctx context.Context, params ListParams) ([]User, int, error) {
	users, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx, params.Search)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (s *Service) GetByID(ctx context.Context, id int) (User, error) {
	return s.repo.GetByID(ctx, id)
}

// Exists reports whether a user with the given id is present. Used by the
// avatar handler to validate the parent before touching avatar rows.
func (s *Service) Exists(ctx context.Context, id int) (bool, error) {
	_, err := s.repo.GetByID(ctx, id)
	if err == ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Create rejects duplicate emails with a lookup before any insert is
// attempted.
func (s *Service) Create(ctx context.Context, nu NewUser) (User, error) {
	_, err := s.repo.GetByEmail(ctx, nu.Email)
	if err == nil {
		return User{}, ErrEmailExists
	}
	if err != ErrNotFound {
		return User{}, err
	}
	return s.repo.Create(ctx, nu)
}

func (s *Service) Update(ctx context.Context, id int, patch Patch) (User, error) {
	return s.repo.Update(ctx, id, patch)
}

func (s *Service) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}
