package service

import (
	"encoding/json"
	"log"
	"time"

	"github.com/adamsuskin/grocery-sub012/internal/domain"
	"github.com/adamsuskin/grocery-sub012/internal/repository"
	"github.com/adamsuskin/grocery-sub012/internal/websocket"
)

type SyncService struct {
	itemRepo     repository.ItemRepository
	listRepo     repository.ListRepository
	metadataRepo repository.SyncMetadataRepository
	wsManager    *websocket.Manager
}

func NewSyncService(
	itemRepo repository.ItemRepository,
	listRepo repository.ListRepository,
	metadataRepo repository.SyncMetadataRepository,
	wsManager *websocket.Manager,
) *SyncService {
	return &SyncService{
		itemRepo:     itemRepo,
		listRepo:     listRepo,
		metadataRepo: metadataRepo,
		wsManager:    wsManager,
	}
}

func (s *SyncService) ProcessSyncRequest(userID string, req *domain.SyncRequest) (*domain.SyncResponse, error) {
	items, err := s.allItems(userID)
	if err != nil {
		return nil, err
	}

	var changes []*domain.ItemChange

	for _, item := range items {
		clientVersion, exists := req.ItemVersions[item.ID]

		if !exists || clientVersion < item.Version {
			operation := "update"
			if item.IsDeleted {
				operation = "delete"
			}

			changes = append(changes, &domain.ItemChange{
				ItemID:    item.ID,
				Operation: operation,
				Version:   item.Version,
				Item:      item,
			})
		}
	}

	syncTime := time.Now()
	if err := s.metadataRepo.UpdateLastSync(userID, req.ClientID, syncTime); err != nil {
		return nil, err
	}

	for itemID, version := range req.ItemVersions {
		if err := s.metadataRepo.UpdateItemVersion(userID, req.ClientID, itemID, version); err != nil {
			continue
		}
	}

	return &domain.SyncResponse{
		Changes:  changes,
		SyncTime: syncTime,
		HasMore:  false,
	}, nil
}

func (s *SyncService) GetChangesSince(userID string, since time.Time) ([]*domain.ItemChange, error) {
	items, err := s.allItems(userID)
	if err != nil {
		return nil, err
	}

	var changes []*domain.ItemChange

	for _, item := range items {
		if item.UpdatedAt.After(since) {
			operation := "update"
			if item.IsDeleted {
				operation = "delete"
			}

			changes = append(changes, &domain.ItemChange{
				ItemID:    item.ID,
				Operation: operation,
				Version:   item.Version,
				Item:      item,
			})
		}
	}

	return changes, nil
}

// GetManifest returns a compact version listing for cheap sync
// comparison. If listID is provided, only that list is covered.
func (s *SyncService) GetManifest(userID, listID string) (*domain.ManifestResponse, error) {
	var items []*domain.Item
	var err error

	if listID != "" {
		items, err = s.itemRepo.ListByList(listID)
	} else {
		items, err = s.allItems(userID)
	}
	if err != nil {
		return nil, err
	}

	entries := make([]domain.ManifestEntry, 0, len(items))
	for _, item := range items {
		entries = append(entries, domain.ManifestEntry{
			ID:        item.ID,
			Version:   item.Version,
			UpdatedAt: item.UpdatedAt,
			IsDeleted: item.IsDeleted,
		})
	}

	return &domain.ManifestResponse{
		Items:    entries,
		SyncTime: time.Now(),
	}, nil
}

// ProcessBatchDiff compares the client's local state against the
// server and sorts every item into download, upload, delete or
// conflict buckets. An item lands in the conflict bucket only when the
// client reports pending local edits on a version the server has since
// moved past.
func (s *SyncService) ProcessBatchDiff(userID string, req *domain.BatchDiffRequest) (*domain.BatchDiffResponse, error) {
	serverItems, err := s.itemRepo.ListByList(req.ListID)
	if err != nil {
		return nil, err
	}

	clientMap := make(map[string]*domain.LocalItemInfo)
	for i := range req.LocalItems {
		clientMap[req.LocalItems[i].ID] = &req.LocalItems[i]
	}

	response := &domain.BatchDiffResponse{
		ToDownload: []domain.Item{},
		ToUpload:   []string{},
		ToDelete:   []string{},
		Conflicts:  []domain.ConflictInfo{},
		SyncTime:   time.Now(),
	}

	for _, serverItem := range serverItems {
		clientItem, existsOnClient := clientMap[serverItem.ID]

		if serverItem.IsDeleted {
			if !existsOnClient {
				continue
			}
			if len(clientItem.ChangedFields) > 0 {
				// Pending local edit on a deleted item surfaces as a
				// conflict rather than a silent delete.
				response.Conflicts = append(response.Conflicts, domain.ConflictInfo{
					ItemID:        serverItem.ID,
					LocalVersion:  clientItem.Version,
					ServerVersion: serverItem.Version,
				})
			} else {
				response.ToDelete = append(response.ToDelete, serverItem.ID)
			}
			continue
		}

		if !existsOnClient {
			response.ToDownload = append(response.ToDownload, *serverItem)
			continue
		}

		if clientItem.Version == serverItem.Version {
			if len(clientItem.ChangedFields) > 0 {
				response.ToUpload = append(response.ToUpload, serverItem.ID)
			}
			continue
		}

		if clientItem.Version < serverItem.Version {
			if len(clientItem.ChangedFields) > 0 && clientItem.BaseVersion != serverItem.Version {
				response.Conflicts = append(response.Conflicts, domain.ConflictInfo{
					ItemID:        serverItem.ID,
					LocalVersion:  clientItem.Version,
					ServerVersion: serverItem.Version,
				})
			} else {
				response.ToDownload = append(response.ToDownload, *serverItem)
			}
			continue
		}

		// Client ahead of server: the write never arrived.
		response.ToUpload = append(response.ToUpload, serverItem.ID)
	}

	return response, nil
}

func (s *SyncService) BroadcastItemUpdate(item *domain.Item, clientID string) error {
	itemJSON, err := json.Marshal(item)
	if err != nil {
		return err
	}

	msg, err := websocket.NewMessage(websocket.TypeItemUpdate, &websocket.ItemUpdatePayload{
		ItemID:    item.ID,
		ListID:    item.ListID,
		Version:   item.Version,
		Item:      itemJSON,
		UpdatedAt: item.UpdatedAt,
		ClientID:  clientID,
	})
	if err != nil {
		return err
	}

	return s.wsManager.BroadcastToUsers(s.members(item.ListID), msg, clientID)
}

func (s *SyncService) BroadcastItemDelete(listID, itemID string, version int64, clientID string) error {
	msg, err := websocket.NewMessage(websocket.TypeItemDelete, &websocket.ItemDeletePayload{
		ItemID:   itemID,
		ListID:   listID,
		Version:  version,
		ClientID: clientID,
	})
	if err != nil {
		return err
	}

	return s.wsManager.BroadcastToUsers(s.members(listID), msg, clientID)
}

func (s *SyncService) allItems(userID string) ([]*domain.Item, error) {
	lists, err := s.listRepo.GetByMember(userID)
	if err != nil {
		return nil, err
	}

	var items []*domain.Item
	for _, list := range lists {
		listItems, err := s.itemRepo.ListByList(list.ID)
		if err != nil {
			log.Printf("failed to list items of %s: %v", list.ID, err)
			continue
		}
		items = append(items, listItems...)
	}

	return items, nil
}

func (s *SyncService) members(listID string) []string {
	list, err := s.listRepo.Get(listID)
	if err != nil {
		return nil
	}

	members := make([]string, 0, len(list.Collaborators)+1)
	members = append(members, list.OwnerID)
	members = append(members, list.Collaborators...)
	return members
}
