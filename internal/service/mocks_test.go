package service

import (
	"errors"
	"time"

	"github.com/adamsuskin/grocery-sub012/internal/domain"
)

type mockItemRepo struct {
	items map[string]*domain.Item
}

func newMockItemRepo() *mockItemRepo {
	return &mockItemRepo{
		items: make(map[string]*domain.Item),
	}
}

func (m *mockItemRepo) Create(item *domain.Item) error {
	m.items[item.ID] = item.Clone()
	return nil
}

func (m *mockItemRepo) FindByID(id string) (*domain.Item, error) {
	if item, exists := m.items[id]; exists {
		return item.Clone(), nil
	}
	return nil, errors.New("item not found")
}

func (m *mockItemRepo) ListByList(listID string) ([]*domain.Item, error) {
	var items []*domain.Item
	for _, item := range m.items {
		if item.ListID == listID {
			items = append(items, item.Clone())
		}
	}
	return items, nil
}

func (m *mockItemRepo) Update(item *domain.Item) error {
	if _, exists := m.items[item.ID]; exists {
		m.items[item.ID] = item.Clone()
		return nil
	}
	return errors.New("item not found")
}

func (m *mockItemRepo) Delete(id string, clientID string) error {
	item, exists := m.items[id]
	if !exists {
		return errors.New("item not found")
	}
	item.IsDeleted = true
	item.Version++
	item.LastEditClient = clientID
	item.UpdatedAt = time.Now()
	return nil
}

type mockListRepo struct {
	lists map[string]*domain.GroceryList
}

func newMockListRepo() *mockListRepo {
	return &mockListRepo{
		lists: make(map[string]*domain.GroceryList),
	}
}

func (m *mockListRepo) Create(list *domain.GroceryList) error {
	m.lists[list.ID] = list
	return nil
}

func (m *mockListRepo) Get(id string) (*domain.GroceryList, error) {
	if list, exists := m.lists[id]; exists {
		return list, nil
	}
	return nil, errors.New("list not found")
}

func (m *mockListRepo) GetByMember(userID string) ([]*domain.GroceryList, error) {
	var lists []*domain.GroceryList
	for _, list := range m.lists {
		if list.HasMember(userID) {
			lists = append(lists, list)
		}
	}
	return lists, nil
}

func (m *mockListRepo) GetDefault(ownerID string) (*domain.GroceryList, error) {
	for _, list := range m.lists {
		if list.OwnerID == ownerID && list.IsDefault {
			return list, nil
		}
	}
	return nil, errors.New("default list not found")
}

func (m *mockListRepo) Update(list *domain.GroceryList) error {
	if _, exists := m.lists[list.ID]; exists {
		m.lists[list.ID] = list
		return nil
	}
	return errors.New("list not found")
}

func (m *mockListRepo) Delete(id string) error {
	if _, exists := m.lists[id]; exists {
		delete(m.lists, id)
		return nil
	}
	return errors.New("list not found")
}

type mockUserRepo struct {
	users map[string]*domain.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		users: make(map[string]*domain.User),
	}
}

func (m *mockUserRepo) Create(user *domain.User) error {
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) FindByID(id string) (*domain.User, error) {
	if user, exists := m.users[id]; exists {
		copied := *user
		return &copied, nil
	}
	return nil, errors.New("user not found")
}

func (m *mockUserRepo) FindByEmail(email string) (*domain.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, errors.New("user not found")
}

func (m *mockUserRepo) FindByUsername(username string) (*domain.User, error) {
	for _, user := range m.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, errors.New("user not found")
}

func (m *mockUserRepo) Update(user *domain.User) error {
	if _, exists := m.users[user.ID]; exists {
		m.users[user.ID] = user
		return nil
	}
	return errors.New("user not found")
}

func (m *mockUserRepo) EmailExists(email string) (bool, error) {
	for _, user := range m.users {
		if user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepo) UsernameExists(username string) (bool, error) {
	for _, user := range m.users {
		if user.Username == username {
			return true, nil
		}
	}
	return false, nil
}

type mockVersionRepo struct {
	versions map[string]map[int64]*domain.ItemVersion
}

func newMockVersionRepo() *mockVersionRepo {
	return &mockVersionRepo{
		versions: make(map[string]map[int64]*domain.ItemVersion),
	}
}

func (m *mockVersionRepo) SaveVersion(item *domain.Item) error {
	if m.versions[item.ID] == nil {
		m.versions[item.ID] = make(map[int64]*domain.ItemVersion)
	}
	m.versions[item.ID][item.Version] = &domain.ItemVersion{
		ItemID:    item.ID,
		Version:   item.Version,
		Name:      item.Name,
		Quantity:  item.Quantity,
		Unit:      item.Unit,
		Category:  item.Category,
		Notes:     item.Notes,
		Gotten:    item.Gotten,
		ClientID:  item.LastEditClient,
		CreatedAt: item.UpdatedAt,
	}
	return nil
}

func (m *mockVersionRepo) GetVersions(itemID string, limit int) ([]*domain.ItemVersion, error) {
	var versions []*domain.ItemVersion
	for _, v := range m.versions[itemID] {
		versions = append(versions, v)
	}
	return versions, nil
}

func (m *mockVersionRepo) GetVersion(itemID string, version int64) (*domain.ItemVersion, error) {
	if v, exists := m.versions[itemID][version]; exists {
		return v, nil
	}
	return nil, errors.New("version not found")
}

type mockConflictLogRepo struct {
	entries   []*domain.ConflictLogEntry
	resolved  map[string]domain.ResolutionChoice
	dismissed map[string]bool
}

func newMockConflictLogRepo() *mockConflictLogRepo {
	return &mockConflictLogRepo{
		resolved:  make(map[string]domain.ResolutionChoice),
		dismissed: make(map[string]bool),
	}
}

func (m *mockConflictLogRepo) Record(entry *domain.ConflictLogEntry) error {
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockConflictLogRepo) MarkResolved(conflictID string, choice domain.ResolutionChoice) error {
	m.resolved[conflictID] = choice
	return nil
}

func (m *mockConflictLogRepo) MarkDismissed(conflictID string) error {
	m.dismissed[conflictID] = true
	return nil
}

func (m *mockConflictLogRepo) ListByUser(userID string) ([]*domain.ConflictLogEntry, error) {
	var entries []*domain.ConflictLogEntry
	for _, e := range m.entries {
		if e.UserID == userID {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

func (m *mockConflictLogRepo) ListByItem(itemID string) ([]*domain.ConflictLogEntry, error) {
	var entries []*domain.ConflictLogEntry
	for _, e := range m.entries {
		if e.ItemID == itemID {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

type mockSyncMetadataRepo struct {
	lastSync     map[string]time.Time
	itemVersions map[string]map[string]int64
}

func newMockSyncMetadataRepo() *mockSyncMetadataRepo {
	return &mockSyncMetadataRepo{
		lastSync:     make(map[string]time.Time),
		itemVersions: make(map[string]map[string]int64),
	}
}

func (m *mockSyncMetadataRepo) Get(userID, clientID string) (*domain.SyncMetadata, error) {
	key := userID + ":" + clientID
	return &domain.SyncMetadata{
		UserID:       userID,
		ClientID:     clientID,
		LastSyncTime: m.lastSync[key],
		ItemVersions: m.itemVersions[key],
	}, nil
}

func (m *mockSyncMetadataRepo) Upsert(metadata *domain.SyncMetadata) error {
	key := metadata.UserID + ":" + metadata.ClientID
	m.lastSync[key] = metadata.LastSyncTime
	m.itemVersions[key] = metadata.ItemVersions
	return nil
}

func (m *mockSyncMetadataRepo) UpdateLastSync(userID, clientID string, timestamp time.Time) error {
	m.lastSync[userID+":"+clientID] = timestamp
	return nil
}

func (m *mockSyncMetadataRepo) UpdateItemVersion(userID, clientID, itemID string, version int64) error {
	key := userID + ":" + clientID
	if m.itemVersions[key] == nil {
		m.itemVersions[key] = make(map[string]int64)
	}
	m.itemVersions[key][itemID] = version
	return nil
}

type mockCategoryRepo struct {
	categories map[string]*domain.Category
}

func newMockCategoryRepo() *mockCategoryRepo {
	return &mockCategoryRepo{
		categories: make(map[string]*domain.Category),
	}
}

func (m *mockCategoryRepo) Create(category *domain.Category) error {
	m.categories[category.ID] = category
	return nil
}

func (m *mockCategoryRepo) Get(id string) (*domain.Category, error) {
	if c, exists := m.categories[id]; exists {
		return c, nil
	}
	return nil, errors.New("category not found")
}

func (m *mockCategoryRepo) ListByOwner(ownerID string) ([]*domain.Category, error) {
	var categories []*domain.Category
	for _, c := range m.categories {
		if c.OwnerID == ownerID {
			categories = append(categories, c)
		}
	}
	return categories, nil
}

func (m *mockCategoryRepo) Update(category *domain.Category) error {
	if _, exists := m.categories[category.ID]; exists {
		m.categories[category.ID] = category
		return nil
	}
	return errors.New("category not found")
}

func (m *mockCategoryRepo) Delete(id string) error {
	if _, exists := m.categories[id]; exists {
		delete(m.categories, id)
		return nil
	}
	return errors.New("category not found")
}
