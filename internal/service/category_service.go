package service

import (
	"time"

	"github.com/google/uuid"

	"github.com/adamsuskin/grocery-sub012/internal/domain"
	"github.com/adamsuskin/grocery-sub012/internal/repository"
)

type CategoryService struct {
	repo repository.CategoryRepository
}

func NewCategoryService(repo repository.CategoryRepository) *CategoryService {
	return &CategoryService{
		repo: repo,
	}
}

func (s *CategoryService) Create(ownerID string, req *domain.CreateCategoryRequest) (*domain.Category, error) {
	category := &domain.Category{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		Name:      req.Name,
		Color:     req.Color,
		SortOrder: req.SortOrder,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := s.repo.Create(category); err != nil {
		return nil, err
	}

	return category, nil
}

func (s *CategoryService) List(ownerID string) ([]*domain.Category, error) {
	return s.repo.ListByOwner(ownerID)
}

func (s *CategoryService) Update(userID, categoryID string, req *domain.UpdateCategoryRequest) (*domain.Category, error) {
	category, err := s.repo.Get(categoryID)
	if err != nil {
		return nil, err
	}

	if category.OwnerID != userID {
		return nil, ErrAccessDenied
	}

	if req.Name != nil {
		category.Name = *req.Name
	}
	if req.Color != nil {
		category.Color = *req.Color
	}
	if req.SortOrder != nil {
		category.SortOrder = *req.SortOrder
	}
	category.UpdatedAt = time.Now()

	if err := s.repo.Update(category); err != nil {
		return nil, err
	}

	return category, nil
}

func (s *CategoryService) Delete(userID, categoryID string) error {
	category, err := s.repo.Get(categoryID)
	if err != nil {
		return err
	}

	if category.OwnerID != userID {
		return ErrAccessDenied
	}

	return s.repo.Delete(categoryID)
}
