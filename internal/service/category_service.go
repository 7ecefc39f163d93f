package service

import (
	"context"

	"nutricoach/coach-app/internal/domain"
	"nutricoach/coach-app/internal/repository"
)

// CategoryService exposes the coaching verticals users can enroll in.
// Category management (create/update/delete) is external admin tooling;
// this service only lists what exists.
type CategoryService interface {
	GetCategories(ctx context.Context) ([]domain.Category, error)
}

type categoryService struct {
	categoryRepo repository.CategoryRepository
}

// NewCategoryService creates a new instance of categoryService.
func NewCategoryService(categoryRepo repository.CategoryRepository) CategoryService {
	return &categoryService{categoryRepo: categoryRepo}
}

func (s *categoryService) GetCategories(ctx context.Context) ([]domain.Category, error) {
	return s.categoryRepo.GetAll(ctx)
}
