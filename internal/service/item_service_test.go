package service

import (
	"errors"
	"testing"
	"time"

	"github.com/adamsuskin/grocery-sub012/internal/conflict"
	"github.com/adamsuskin/grocery-sub012/internal/domain"
)

type itemTestEnv struct {
	itemService     *ItemService
	conflictService *ConflictService
	itemRepo        *mockItemRepo
	versionRepo     *mockVersionRepo
	logRepo         *mockConflictLogRepo
}

func newItemTestEnv() *itemTestEnv {
	itemRepo := newMockItemRepo()
	listRepo := newMockListRepo()
	userRepo := newMockUserRepo()
	versionRepo := newMockVersionRepo()
	logRepo := newMockConflictLogRepo()

	userRepo.Create(&domain.User{ID: "user-1", Username: "alice", Email: "alice@example.com", DisplayName: "Alice"})
	userRepo.Create(&domain.User{ID: "user-2", Username: "bob", Email: "bob@example.com"})

	listRepo.Create(&domain.GroceryList{
		ID:            "list-1",
		OwnerID:       "user-1",
		Name:          "Groceries",
		Collaborators: []string{"user-2"},
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	})

	listService := NewListService(listRepo, itemRepo, userRepo)

	status := conflict.NewStatusTracker(nil)
	status.MarkSynced()

	conflictService := NewConflictService(itemRepo, versionRepo, logRepo, listService, nil, status, conflict.FeedConfig{MaxVisible: 5})
	itemService := NewItemService(itemRepo, versionRepo, userRepo, listService, conflictService, nil)

	return &itemTestEnv{
		itemService:     itemService,
		conflictService: conflictService,
		itemRepo:        itemRepo,
		versionRepo:     versionRepo,
		logRepo:         logRepo,
	}
}

func (e *itemTestEnv) createItem(t *testing.T) *domain.Item {
	t.Helper()

	item, err := e.itemService.Create("user-1", &domain.CreateItemRequest{
		ListID:   "list-1",
		Name:     "Milk",
		Quantity: 1,
		Unit:     "l",
		ClientID: "client-a",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return item
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func int64Ptr(v int64) *int64 { return &v }

func boolPtr(b bool) *bool { return &b }

func TestItemService_Create(t *testing.T) {
	env := newItemTestEnv()

	item := env.createItem(t)

	if item.ID == "" {
		t.Error("expected item ID to be generated")
	}
	if item.Version != 1 {
		t.Errorf("Version = %d, want 1", item.Version)
	}
	if item.AddedBy != "user-1" {
		t.Errorf("AddedBy = %s, want user-1", item.AddedBy)
	}
	if item.LastEditClient != "client-a" {
		t.Errorf("LastEditClient = %s, want client-a", item.LastEditClient)
	}

	if _, err := env.versionRepo.GetVersion(item.ID, 1); err != nil {
		t.Error("expected version 1 snapshot to be retained")
	}
}

func TestItemService_Create_NotAMember(t *testing.T) {
	env := newItemTestEnv()

	_, err := env.itemService.Create("user-3", &domain.CreateItemRequest{
		ListID:   "list-1",
		Name:     "Milk",
		ClientID: "client-c",
	})
	if !errors.Is(err, ErrAccessDenied) {
		t.Errorf("Create() error = %v, want ErrAccessDenied", err)
	}
}

func TestItemService_Update(t *testing.T) {
	env := newItemTestEnv()
	item := env.createItem(t)

	updated, err := env.itemService.Update("user-2", item.ID, &domain.UpdateItemRequest{
		Quantity:        floatPtr(2),
		ExpectedVersion: int64Ptr(1),
		ClientID:        "client-b",
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if updated.Version != 2 {
		t.Errorf("Version = %d, want 2", updated.Version)
	}
	if updated.Quantity != 2 {
		t.Errorf("Quantity = %v, want 2", updated.Quantity)
	}
	if updated.Name != "Milk" {
		t.Errorf("Name = %s, untouched field must survive", updated.Name)
	}
	if updated.LastEditClient != "client-b" {
		t.Errorf("LastEditClient = %s, want client-b", updated.LastEditClient)
	}

	stored, _ := env.itemRepo.FindByID(item.ID)
	if stored.Version != 2 {
		t.Errorf("stored Version = %d, want 2", stored.Version)
	}
}

func TestItemService_Update_StaleVersionRaisesConflict(t *testing.T) {
	env := newItemTestEnv()
	item := env.createItem(t)

	// First writer commits quantity on top of version 1.
	if _, err := env.itemService.Update("user-1", item.ID, &domain.UpdateItemRequest{
		Quantity:        floatPtr(2),
		ExpectedVersion: int64Ptr(1),
		ClientID:        "client-a",
	}); err != nil {
		t.Fatalf("first Update() error = %v", err)
	}

	// Second writer also based their quantity edit on version 1.
	_, err := env.itemService.Update("user-2", item.ID, &domain.UpdateItemRequest{
		Quantity:        floatPtr(3),
		ExpectedVersion: int64Ptr(1),
		ClientID:        "client-b",
	})

	var conflictErr *ConflictError
	if !errors.As(err, &conflictErr) {
		t.Fatalf("Update() error = %v, want *ConflictError", err)
	}

	c := conflictErr.Conflict
	if c.Type != domain.ConflictTypeConcurrentEdit {
		t.Errorf("Type = %s, want %s", c.Type, domain.ConflictTypeConcurrentEdit)
	}
	if c.AutoResolvable {
		t.Error("overlapping field edits must not be auto-resolvable")
	}
	if c.LocalVersion.ActorName != "bob" {
		t.Errorf("LocalVersion.ActorName = %s, want bob", c.LocalVersion.ActorName)
	}

	if env.conflictService.Get(c.ID) == nil {
		t.Error("conflict must stay open in the registry")
	}
	if len(env.logRepo.entries) != 1 {
		t.Errorf("recorded %d log entries, want 1", len(env.logRepo.entries))
	}

	// The losing write must not have been applied.
	stored, _ := env.itemRepo.FindByID(item.ID)
	if stored.Version != 2 || stored.Quantity != 2 {
		t.Errorf("stored item = v%d quantity %v, conflicting write must not commit", stored.Version, stored.Quantity)
	}
}

func TestItemService_Update_DisjointFieldsAutoResolvable(t *testing.T) {
	env := newItemTestEnv()
	item := env.createItem(t)

	if _, err := env.itemService.Update("user-1", item.ID, &domain.UpdateItemRequest{
		Quantity:        floatPtr(2),
		ExpectedVersion: int64Ptr(1),
		ClientID:        "client-a",
	}); err != nil {
		t.Fatalf("first Update() error = %v", err)
	}

	_, err := env.itemService.Update("user-2", item.ID, &domain.UpdateItemRequest{
		Notes:           strPtr("the lactose free one"),
		ExpectedVersion: int64Ptr(1),
		ClientID:        "client-b",
	})

	var conflictErr *ConflictError
	if !errors.As(err, &conflictErr) {
		t.Fatalf("Update() error = %v, want *ConflictError", err)
	}

	c := conflictErr.Conflict
	if c.Type != domain.ConflictTypeEditEdit {
		t.Errorf("Type = %s, want %s", c.Type, domain.ConflictTypeEditEdit)
	}
	if !c.AutoResolvable {
		t.Error("disjoint field edits must be auto-resolvable")
	}
	if c.Priority != domain.PriorityLow {
		t.Errorf("Priority = %d, want %d", c.Priority, domain.PriorityLow)
	}
}

func TestItemService_Update_CleanContinuationAppliesOnTop(t *testing.T) {
	env := newItemTestEnv()
	item := env.createItem(t)

	if _, err := env.itemService.Update("user-1", item.ID, &domain.UpdateItemRequest{
		Quantity:        floatPtr(2),
		ExpectedVersion: int64Ptr(1),
		ClientID:        "client-a",
	}); err != nil {
		t.Fatalf("first Update() error = %v", err)
	}

	// Based on the committed version 2: no conflict, the write lands as
	// version 3.
	updated, err := env.itemService.Update("user-2", item.ID, &domain.UpdateItemRequest{
		Gotten:          boolPtr(true),
		ExpectedVersion: int64Ptr(2),
		ClientID:        "client-b",
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Version != 3 {
		t.Errorf("Version = %d, want 3", updated.Version)
	}
	if len(env.conflictService.ListOpen()) != 0 {
		t.Errorf("open conflicts = %d, want 0", len(env.conflictService.ListOpen()))
	}
}

func TestItemService_Update_DeletedItem(t *testing.T) {
	env := newItemTestEnv()
	item := env.createItem(t)

	if err := env.itemService.Delete("user-1", item.ID, "client-a"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	// An edit against the deleted item surfaces a delete-edit conflict.
	_, err := env.itemService.Update("user-2", item.ID, &domain.UpdateItemRequest{
		Name:            strPtr("Oat milk"),
		ExpectedVersion: int64Ptr(1),
		ClientID:        "client-b",
	})

	var conflictErr *ConflictError
	if !errors.As(err, &conflictErr) {
		t.Fatalf("Update() error = %v, want *ConflictError", err)
	}
	if conflictErr.Conflict.Type != domain.ConflictTypeDeleteEdit {
		t.Errorf("Type = %s, want %s", conflictErr.Conflict.Type, domain.ConflictTypeDeleteEdit)
	}
	if conflictErr.Conflict.Priority != domain.PriorityHigh {
		t.Errorf("Priority = %d, want %d", conflictErr.Conflict.Priority, domain.PriorityHigh)
	}
	if conflictErr.Conflict.AutoResolvable {
		t.Error("delete-edit must never be auto-resolvable")
	}

	// Without pending field edits the deletion is simply reported.
	_, err = env.itemService.Update("user-2", item.ID, &domain.UpdateItemRequest{
		ExpectedVersion: int64Ptr(1),
		ClientID:        "client-b",
	})
	if !errors.Is(err, ErrItemDeleted) {
		t.Errorf("Update() error = %v, want ErrItemDeleted", err)
	}
}

func TestItemService_Delete(t *testing.T) {
	env := newItemTestEnv()
	item := env.createItem(t)

	if err := env.itemService.Delete("user-1", item.ID, "client-a"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	stored, err := env.itemRepo.FindByID(item.ID)
	if err != nil {
		t.Fatalf("deleted item must stay findable as a tombstone: %v", err)
	}
	if !stored.IsDeleted {
		t.Error("expected IsDeleted to be set")
	}
	if stored.Version != 2 {
		t.Errorf("Version = %d, tombstone must bump the version", stored.Version)
	}

	items, err := env.itemService.List("user-1", "list-1")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(items) != 0 {
		t.Errorf("List() returned %d items, deleted items must be hidden", len(items))
	}
}
