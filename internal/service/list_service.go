package service

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/adamsuskin/grocery-sub012/internal/domain"
	"github.com/adamsuskin/grocery-sub012/internal/repository"
)

var (
	ErrListNotFound = errors.New("list not found")
	ErrAccessDenied = errors.New("access denied")
)

type ListService struct {
	listRepo repository.ListRepository
	itemRepo repository.ItemRepository
	userRepo repository.UserRepository
}

func NewListService(listRepo repository.ListRepository, itemRepo repository.ItemRepository, userRepo repository.UserRepository) *ListService {
	return &ListService{
		listRepo: listRepo,
		itemRepo: itemRepo,
		userRepo: userRepo,
	}
}

// Create creates a new list owned by the user
func (s *ListService) Create(ownerID string, req *domain.CreateListRequest) (*domain.ListResponse, error) {
	list := &domain.GroceryList{
		ID:            uuid.New().String(),
		OwnerID:       ownerID,
		Name:          req.Name,
		Collaborators: []string{},
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
		IsDefault:     false,
	}

	if err := s.listRepo.Create(list); err != nil {
		return nil, err
	}

	return s.listToResponse(list), nil
}

// List returns all lists the user owns or collaborates on
func (s *ListService) List(userID string) ([]*domain.ListResponse, error) {
	lists, err := s.listRepo.GetByMember(userID)
	if err != nil {
		return nil, err
	}

	responses := make([]*domain.ListResponse, len(lists))
	for i, l := range lists {
		responses[i] = s.listToResponse(l)
	}

	return responses, nil
}

// Get returns a specific list if the user has access
func (s *ListService) Get(userID, listID string) (*domain.ListResponse, error) {
	list, err := s.ValidateAccess(userID, listID)
	if err != nil {
		return nil, err
	}

	return s.listToResponse(list), nil
}

// Update renames a list; only the owner may do so
func (s *ListService) Update(userID, listID string, req *domain.UpdateListRequest) (*domain.ListResponse, error) {
	list, err := s.listRepo.Get(listID)
	if err != nil {
		return nil, ErrListNotFound
	}

	if list.OwnerID != userID {
		return nil, ErrAccessDenied
	}

	if req.Name != "" {
		list.Name = req.Name
	}
	list.UpdatedAt = time.Now()

	if err := s.listRepo.Update(list); err != nil {
		return nil, err
	}

	return s.listToResponse(list), nil
}

// Delete deletes a list; only the owner may do so
func (s *ListService) Delete(userID, listID string) error {
	list, err := s.listRepo.Get(listID)
	if err != nil {
		return ErrListNotFound
	}

	if list.OwnerID != userID {
		return ErrAccessDenied
	}

	if list.IsDefault {
		return errors.New("cannot delete default list")
	}

	return s.listRepo.Delete(listID)
}

// Share adds a collaborator by email; only the owner may share
func (s *ListService) Share(userID, listID string, req *domain.ShareListRequest) (*domain.ListResponse, error) {
	list, err := s.listRepo.Get(listID)
	if err != nil {
		return nil, ErrListNotFound
	}

	if list.OwnerID != userID {
		return nil, ErrAccessDenied
	}

	collaborator, err := s.userRepo.FindByEmail(req.Email)
	if err != nil {
		return nil, errors.New("user not found")
	}

	if list.HasMember(collaborator.ID) {
		return s.listToResponse(list), nil
	}

	list.Collaborators = append(list.Collaborators, collaborator.ID)
	list.UpdatedAt = time.Now()

	if err := s.listRepo.Update(list); err != nil {
		return nil, err
	}

	return s.listToResponse(list), nil
}

// Unshare removes a collaborator; only the owner may unshare
func (s *ListService) Unshare(userID, listID, collaboratorID string) (*domain.ListResponse, error) {
	list, err := s.listRepo.Get(listID)
	if err != nil {
		return nil, ErrListNotFound
	}

	if list.OwnerID != userID {
		return nil, ErrAccessDenied
	}

	remaining := make([]string, 0, len(list.Collaborators))
	for _, id := range list.Collaborators {
		if id != collaboratorID {
			remaining = append(remaining, id)
		}
	}
	list.Collaborators = remaining
	list.UpdatedAt = time.Now()

	if err := s.listRepo.Update(list); err != nil {
		return nil, err
	}

	return s.listToResponse(list), nil
}

// ValidateAccess checks whether the user owns or collaborates on the
// list and returns it.
func (s *ListService) ValidateAccess(userID, listID string) (*domain.GroceryList, error) {
	list, err := s.listRepo.Get(listID)
	if err != nil {
		return nil, ErrListNotFound
	}

	if !list.HasMember(userID) {
		return nil, ErrAccessDenied
	}

	return list, nil
}

// Members returns every user that should see changes to the list.
func (s *ListService) Members(listID string) ([]string, error) {
	list, err := s.listRepo.Get(listID)
	if err != nil {
		return nil, ErrListNotFound
	}

	members := make([]string, 0, len(list.Collaborators)+1)
	members = append(members, list.OwnerID)
	members = append(members, list.Collaborators...)
	return members, nil
}

// CreateDefaultForUser creates the default list for a new user
func (s *ListService) CreateDefaultForUser(userID string) (*domain.ListResponse, error) {
	list := &domain.GroceryList{
		ID:            uuid.New().String(),
		OwnerID:       userID,
		Name:          "Groceries",
		Collaborators: []string{},
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
		IsDefault:     true,
	}

	if err := s.listRepo.Create(list); err != nil {
		return nil, err
	}

	return s.listToResponse(list), nil
}

// GetDefaultList returns the default list for a user
func (s *ListService) GetDefaultList(userID string) (*domain.ListResponse, error) {
	list, err := s.listRepo.GetDefault(userID)
	if err != nil {
		return nil, err
	}

	return s.listToResponse(list), nil
}

func (s *ListService) listToResponse(list *domain.GroceryList) *domain.ListResponse {
	itemCount := 0
	if items, err := s.itemRepo.ListByList(list.ID); err == nil {
		for _, item := range items {
			if !item.IsDeleted {
				itemCount++
			}
		}
	}

	return &domain.ListResponse{
		ID:            list.ID,
		OwnerID:       list.OwnerID,
		Name:          list.Name,
		Collaborators: list.Collaborators,
		CreatedAt:     list.CreatedAt,
		UpdatedAt:     list.UpdatedAt,
		IsDefault:     list.IsDefault,
		ItemCount:     itemCount,
	}
}
