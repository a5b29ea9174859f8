package avatar

import "context"

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListForUser(ctx context.Context, userID int) ([]Avatar, error) {
	return s.repo.ListForUser(ctx, userID)
}

func (s *Service) Get(ctx context.Context, userID, avatarID int) (Avatar, error) {
	return s.repo.Get(ctx, userID, avatarID)
}

func (s *Service) Create(ctx context.Context, userID int, fields Fields) (Avatar, error) {
	return s.repo.Create(ctx, userID, fields)
}

func (s *Service) Update(ctx context.Context, userID, avatarID int, fields Fields) (Avatar, error) {
	return s.repo.Update(ctx, userID, avatarID, fields)
}

func (s *Service) Delete(ctx context.Context, userID, avatarID int) error {
	return s.repo.Delete(ctx, userID, avatarID)
}
