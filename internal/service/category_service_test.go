package service

import (
	"errors"
	"testing"

	"github.com/adamsuskin/grocery-sub012/internal/domain"
)

func TestCategoryService_CreateAndList(t *testing.T) {
	categoryService := NewCategoryService(newMockCategoryRepo())

	created, err := categoryService.Create("user-1", &domain.CreateCategoryRequest{
		Name:      "Dairy",
		Color:     "#ffffff",
		SortOrder: 1,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.ID == "" {
		t.Error("expected category ID to be generated")
	}
	if created.OwnerID != "user-1" {
		t.Errorf("OwnerID = %s, want user-1", created.OwnerID)
	}

	categories, err := categoryService.List("user-1")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(categories) != 1 {
		t.Errorf("List() returned %d categories, want 1", len(categories))
	}

	other, err := categoryService.List("user-2")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(other) != 0 {
		t.Errorf("List() for another user returned %d categories, want 0", len(other))
	}
}

func TestCategoryService_Update(t *testing.T) {
	categoryService := NewCategoryService(newMockCategoryRepo())

	created, err := categoryService.Create("user-1", &domain.CreateCategoryRequest{Name: "Dairy"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	updated, err := categoryService.Update("user-1", created.ID, &domain.UpdateCategoryRequest{
		Name: strPtr("Dairy & Eggs"),
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Name != "Dairy & Eggs" {
		t.Errorf("Name = %s, want Dairy & Eggs", updated.Name)
	}

	if _, err := categoryService.Update("user-2", created.ID, &domain.UpdateCategoryRequest{
		Name: strPtr("Hijacked"),
	}); !errors.Is(err, ErrAccessDenied) {
		t.Errorf("Update() by non-owner error = %v, want ErrAccessDenied", err)
	}
}

func TestCategoryService_Delete(t *testing.T) {
	categoryService := NewCategoryService(newMockCategoryRepo())

	created, err := categoryService.Create("user-1", &domain.CreateCategoryRequest{Name: "Dairy"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := categoryService.Delete("user-2", created.ID); !errors.Is(err, ErrAccessDenied) {
		t.Errorf("Delete() by non-owner error = %v, want ErrAccessDenied", err)
	}

	if err := categoryService.Delete("user-1", created.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	categories, _ := categoryService.List("user-1")
	if len(categories) != 0 {
		t.Errorf("List() returned %d categories after delete, want 0", len(categories))
	}
}
