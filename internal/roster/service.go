package roster

import (
	"context"
	"strings"
)

type CreateRequest struct {
	Name        string
	MaxCapacity *int32 // nil for unlimited
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Roster, error)
	GetByID(ctx context.Context, id string) (*Roster, error)
	GetByIDs(ctx context.Context, ids []string) ([]*Roster, error)
	List(ctx context.Context, filter Filter) ([]*Roster, int, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Roster, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrEmptyName
	}
	if req.MaxCapacity != nil && *req.MaxCapacity < 1 {
		return nil, ErrInvalidCapacity
	}

	ros := &Roster{
		Name:        strings.TrimSpace(req.Name),
		MaxCapacity: req.MaxCapacity,
	}
	if err := s.repo.Create(ctx, ros); err != nil {
		return nil, err
	}
	return ros, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Roster, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetByIDs(ctx context.Context, ids []string) ([]*Roster, error) {
	return s.repo.GetByIDs(ctx, ids)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Roster, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
