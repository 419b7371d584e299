package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"shoplite/internal/models"
	"shoplite/internal/repositories"
)

// CategoryService manages product categories.
type CategoryService struct {
	repo repositories.CategoryRepository
}

func NewCategoryService(repo repositories.CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

func categoryErr(id uint, err error) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return fmt.Errorf("%w: %d", ErrCategoryNotFound, id)
	case errors.Is(err, repositories.ErrDuplicate):
		return fmt.Errorf("%w: %v", ErrCategoryExists, err)
	}
	return err
}

func (s *CategoryService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.repo.GetAll(ctx)
}

func (s *CategoryService) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, categoryErr(id, err)
	}
	return category, nil
}

func (s *CategoryService) CreateCategory(ctx context.Context, name, description string) (*models.Category, error) {
	category := &models.Category{Name: strings.TrimSpace(name), Description: description}
	if category.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidCategory)
	}
	if err := s.repo.Create(ctx, category); err != nil {
		return nil, categoryErr(0, err)
	}
	return category, nil
}

func (s *CategoryService) UpdateCategory(ctx context.Context, id uint, name, description string) (*models.Category, error) {
	category := &models.Category{ID: id, Name: strings.TrimSpace(name), Description: description}
	if category.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidCategory)
	}
	if err := s.repo.Update(ctx, category); err != nil {
		return nil, categoryErr(id, err)
	}
	return s.GetCategory(ctx, id)
}

// DeleteCategory removes the category; its products become uncategorized.
func (s *CategoryService) DeleteCategory(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return categoryErr(id, err)
	}
	return nil
}
