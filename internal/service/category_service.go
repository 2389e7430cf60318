package service

import (
	"context"

	"novacrm/internal/dto"
	"novacrm/internal/model"
	"novacrm/internal/repository"

	"github.com/google/uuid"
)

// CategoryService exposes the read-only taxonomy lookups the engine and its
// dashboards need. Taxonomy CRUD lives outside this core.
type CategoryService interface {
	List(ctx context.Context, tenantID uuid.UUID) ([]dto.CategoryResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.CategoryResponse, error)
}

type categoryService struct {
	repo repository.CategoryRepository
}

func NewCategoryService(repo repository.CategoryRepository) CategoryService {
	return &categoryService{repo: repo}
}

func (s *categoryService) List(ctx context.Context, tenantID uuid.UUID) ([]dto.CategoryResponse, error) {
	categories, err := s.repo.List(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CategoryResponse, 0, len(categories))
	for i := range categories {
		out = append(out, *categoryToResponse(&categories[i]))
	}
	return out, nil
}

func (s *categoryService) Get(ctx context.Context, id uuid.UUID) (*dto.CategoryResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	return categoryToResponse(c), nil
}

func categoryToResponse(c *model.Category) *dto.CategoryResponse {
	subs := make([]dto.SubcategoryResponse, 0, len(c.Subcategories))
	for _, sub := range c.Subcategories {
		subs = append(subs, dto.SubcategoryResponse{ID: sub.ID.String(), Name: sub.Name})
	}
	return &dto.CategoryResponse{
		ID:            c.ID.String(),
		Name:          c.Name,
		Description:   c.Description,
		Subcategories: subs,
	}
}
