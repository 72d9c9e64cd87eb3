package service

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/adamsuskin/grocery-sub012/internal/domain"
	"github.com/adamsuskin/grocery-sub012/internal/repository"
)

var ErrItemDeleted = errors.New("item has been deleted")

type ItemService struct {
	repo            repository.ItemRepository
	versionRepo     repository.ItemVersionRepository
	userRepo        repository.UserRepository
	listService     *ListService
	conflictService *ConflictService
	syncService     *SyncService
}

func NewItemService(
	repo repository.ItemRepository,
	versionRepo repository.ItemVersionRepository,
	userRepo repository.UserRepository,
	listService *ListService,
	conflictService *ConflictService,
	syncService *SyncService,
) *ItemService {
	return &ItemService{
		repo:            repo,
		versionRepo:     versionRepo,
		userRepo:        userRepo,
		listService:     listService,
		conflictService: conflictService,
		syncService:     syncService,
	}
}

func (s *ItemService) Create(userID string, req *domain.CreateItemRequest) (*domain.Item, error) {
	if _, err := s.listService.ValidateAccess(userID, req.ListID); err != nil {
		return nil, err
	}

	now := time.Now()
	item := &domain.Item{
		ID:             uuid.New().String(),
		ListID:         req.ListID,
		Name:           req.Name,
		Quantity:       req.Quantity,
		Unit:           req.Unit,
		Category:       req.Category,
		Notes:          req.Notes,
		Gotten:         false,
		CreatedAt:      now,
		UpdatedAt:      now,
		IsDeleted:      false,
		Version:        1,
		LastEditClient: req.ClientID,
		AddedBy:        userID,
	}

	if err := s.repo.Create(item); err != nil {
		return nil, err
	}

	if s.versionRepo != nil {
		s.versionRepo.SaveVersion(item)
	}

	if s.syncService != nil {
		s.syncService.BroadcastItemUpdate(item, req.ClientID)
	}

	return item, nil
}

func (s *ItemService) List(userID, listID string) ([]*domain.Item, error) {
	if _, err := s.listService.ValidateAccess(userID, listID); err != nil {
		return nil, err
	}

	items, err := s.repo.ListByList(listID)
	if err != nil {
		return nil, err
	}

	visible := make([]*domain.Item, 0, len(items))
	for _, item := range items {
		if !item.IsDeleted {
			visible = append(visible, item)
		}
	}

	return visible, nil
}

func (s *ItemService) GetByID(userID, itemID string) (*domain.Item, error) {
	item, err := s.repo.FindByID(itemID)
	if err != nil {
		return nil, err
	}

	if _, err := s.listService.ValidateAccess(userID, item.ListID); err != nil {
		return nil, err
	}

	return item, nil
}

// Update applies an optimistic write. When the expected version has
// moved on, the write is routed through conflict detection; the caller
// gets a ConflictError holding the open conflict instead of a result.
func (s *ItemService) Update(userID, itemID string, req *domain.UpdateItemRequest) (*domain.Item, error) {
	item, err := s.repo.FindByID(itemID)
	if err != nil {
		return nil, err
	}

	if _, err := s.listService.ValidateAccess(userID, item.ListID); err != nil {
		return nil, err
	}

	if item.IsDeleted {
		if len(req.ChangedFields()) == 0 {
			return nil, ErrItemDeleted
		}

		local := s.localVersion(userID, item, req)
		remote := s.remoteVersion(item, req)

		c, err := s.conflictService.RaiseRemoteDelete(userID, itemID, item.ListID, local, remote)
		if err != nil {
			return nil, err
		}
		if c != nil {
			return nil, &ConflictError{Conflict: c}
		}
		return nil, ErrItemDeleted
	}

	if req.ExpectedVersion != nil && *req.ExpectedVersion != item.Version {
		local := s.localVersion(userID, item, req)
		remote := s.remoteVersion(item, req)

		c, err := s.conflictService.RaiseVersionMismatch(userID, itemID, item.ListID, local, remote)
		if err != nil {
			return nil, err
		}
		if c != nil {
			return nil, &ConflictError{Conflict: c}
		}
		// Ordering was unambiguous; the write applies on top of the
		// current version.
	}

	if s.versionRepo != nil {
		s.versionRepo.SaveVersion(item)
	}

	next := req.ApplyTo(item)
	next.UpdatedAt = time.Now()
	next.Version = item.Version + 1
	next.LastEditClient = req.ClientID

	if err := s.repo.Update(next); err != nil {
		return nil, err
	}

	if s.syncService != nil {
		s.syncService.BroadcastItemUpdate(next, req.ClientID)
	}

	return next, nil
}

func (s *ItemService) Delete(userID, itemID, clientID string) error {
	item, err := s.repo.FindByID(itemID)
	if err != nil {
		return err
	}

	if _, err := s.listService.ValidateAccess(userID, item.ListID); err != nil {
		return err
	}

	if s.versionRepo != nil {
		s.versionRepo.SaveVersion(item)
	}

	if err := s.repo.Delete(itemID, clientID); err != nil {
		return err
	}

	if s.syncService != nil {
		s.syncService.BroadcastItemDelete(item.ListID, itemID, item.Version+1, clientID)
	}

	return nil
}

func (s *ItemService) History(userID, itemID string, limit int) ([]*domain.ItemVersion, error) {
	item, err := s.repo.FindByID(itemID)
	if err != nil {
		return nil, err
	}

	if _, err := s.listService.ValidateAccess(userID, item.ListID); err != nil {
		return nil, err
	}

	return s.versionRepo.GetVersions(itemID, limit)
}

// localVersion builds the provenance snapshot of the incoming write:
// the request applied to the version the client based it on.
func (s *ItemService) localVersion(userID string, item *domain.Item, req *domain.UpdateItemRequest) domain.VersionedItem {
	base := item
	baseVersion := item.Version
	if req.ExpectedVersion != nil {
		baseVersion = *req.ExpectedVersion
		if snap := s.snapshotAt(item, baseVersion); snap != nil {
			base = snap
		}
	}

	actorName := ""
	if user, err := s.userRepo.FindByID(userID); err == nil {
		actorName = user.DisplayName
		if actorName == "" {
			actorName = user.Username
		}
	}

	return domain.VersionedItem{
		Value:         req.ApplyTo(base),
		Timestamp:     time.Now(),
		ActorID:       userID,
		ActorName:     actorName,
		BaseVersion:   baseVersion,
		ChangedFields: req.ChangedFields(),
	}
}

// remoteVersion builds the provenance snapshot of the committed state
// the write collided with. The remote changed-field set is recovered by
// diffing the client's base snapshot against the current item; without
// a retained snapshot it stays empty and classification falls back to
// the conservative concurrent-edit type.
func (s *ItemService) remoteVersion(item *domain.Item, req *domain.UpdateItemRequest) domain.VersionedItem {
	var changed []string
	if req.ExpectedVersion != nil {
		if base := s.snapshotAt(item, *req.ExpectedVersion); base != nil {
			for _, field := range domain.ItemFields() {
				if base.FieldValue(field) != item.FieldValue(field) {
					changed = append(changed, field)
				}
			}
		}
	}

	return domain.VersionedItem{
		Value:         item.Clone(),
		Timestamp:     item.UpdatedAt,
		ActorID:       item.LastEditClient,
		BaseVersion:   item.Version - 1,
		ChangedFields: changed,
	}
}

func (s *ItemService) snapshotAt(item *domain.Item, version int64) *domain.Item {
	if s.versionRepo == nil {
		return nil
	}

	snap, err := s.versionRepo.GetVersion(item.ID, version)
	if err != nil || snap == nil {
		return nil
	}

	restored := item.Clone()
	restored.Name = snap.Name
	restored.Quantity = snap.Quantity
	restored.Unit = snap.Unit
	restored.Category = snap.Category
	restored.Notes = snap.Notes
	restored.Gotten = snap.Gotten
	restored.Version = snap.Version
	restored.UpdatedAt = snap.CreatedAt
	restored.LastEditClient = snap.ClientID
	restored.IsDeleted = false
	return restored
}
