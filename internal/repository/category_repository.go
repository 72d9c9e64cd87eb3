package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-kivik/kivik/v4"

	"github.com/adamsuskin/grocery-sub012/internal/domain"
)

var ErrCategoryNotFound = errors.New("category not found")

type CategoryRepository interface {
	Create(category *domain.Category) error
	Get(id string) (*domain.Category, error)
	ListByOwner(ownerID string) ([]*domain.Category, error)
	Update(category *domain.Category) error
	Delete(id string) error
}

type categoryRepository struct {
	db *kivik.DB
}

func NewCategoryRepository(client *kivik.Client, dbName string) CategoryRepository {
	return &categoryRepository{db: client.DB(dbName)}
}

func (r *categoryRepository) Create(category *domain.Category) error {
	docID := fmt.Sprintf("category:%s", category.ID)
	if _, err := r.db.Put(context.Background(), docID, category); err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

func (r *categoryRepository) Get(id string) (*domain.Category, error) {
	row := r.db.Get(context.Background(), fmt.Sprintf("category:%s", id))

	var category domain.Category
	if err := row.ScanDoc(&category); err != nil {
		return nil, ErrCategoryNotFound
	}

	return &category, nil
}

func (r *categoryRepository) ListByOwner(ownerID string) ([]*domain.Category, error) {
	query := map[string]interface{}{
		"selector": map[string]interface{}{
			"owner_id":   ownerID,
			"sort_order": map[string]interface{}{"$exists": true},
		},
	}

	rows := r.db.Find(context.Background(), query)
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []*domain.Category
	for rows.Next() {
		var category domain.Category
		if err := rows.ScanDoc(&category); err != nil {
			continue
		}
		categories = append(categories, &category)
	}

	return categories, nil
}

func (r *categoryRepository) Update(category *domain.Category) error {
	docID := fmt.Sprintf("category:%s", category.ID)

	var existingDoc map[string]interface{}
	row := r.db.Get(context.Background(), docID)
	if err := row.ScanDoc(&existingDoc); err != nil {
		return ErrCategoryNotFound
	}

	existingDoc["name"] = category.Name
	existingDoc["color"] = category.Color
	existingDoc["sort_order"] = category.SortOrder
	existingDoc["updated_at"] = time.Now()

	if _, err := r.db.Put(context.Background(), docID, existingDoc); err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}

	return nil
}

func (r *categoryRepository) Delete(id string) error {
	docID := fmt.Sprintf("category:%s", id)

	row := r.db.Get(context.Background(), docID)

	var doc map[string]interface{}
	if err := row.ScanDoc(&doc); err != nil {
		return ErrCategoryNotFound
	}

	rev, _ := doc["_rev"].(string)
	if _, err := r.db.Delete(context.Background(), docID, rev); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	return nil
}
