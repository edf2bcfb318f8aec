package resource

import (
	"context"
	"strings"
)

type CreateRequest struct {
	Name string
	Kind string
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Resource, error)
	GetByID(ctx context.Context, id string) (*Resource, error)
	GetByIDs(ctx context.Context, ids []string) ([]*Resource, error)
	List(ctx context.Context, filter Filter) ([]*Resource, int, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Resource, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrEmptyName
	}

	kind := Kind(req.Kind)
	if !kind.Valid() {
		return nil, ErrInvalidKind
	}

	res := &Resource{
		Name: strings.TrimSpace(req.Name),
		Kind: kind,
	}
	if err := s.repo.Create(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Resource, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetByIDs(ctx context.Context, ids []string) ([]*Resource, error) {
	return s.repo.GetByIDs(ctx, ids)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Resource, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
