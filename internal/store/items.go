package store

import (
	"context"
	"sort"
	"sync"

	"taskd/internal/models"
)

// ItemStore keeps catalog items in memory with auto-incrementing IDs.
type ItemStore struct {
	mu     sync.RWMutex
	items  map[int]*models.Item
	nextID int
}

// NewItemStore creates an empty item store. IDs start at 1.
func NewItemStore() *ItemStore {
	return &ItemStore{items: make(map[int]*models.Item), nextID: 1}
}

// Create assigns the next ID to item and stores it.
func (s *ItemStore) Create(ctx context.Context, item *models.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	item.ID = s.nextID
	s.nextID++
	cp := *item
	s.items[item.ID] = &cp
	return nil
}

// Get retrieves an item by ID.
func (s *ItemStore) Get(ctx context.Context, id int) (*models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *item
	return &cp, nil
}

// Update replaces an existing item.
func (s *ItemStore) Update(ctx context.Context, item *models.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[item.ID]; !ok {
		return ErrNotFound
	}
	cp := *item
	s.items[item.ID] = &cp
	return nil
}

// Delete removes an item by ID.
func (s *ItemStore) Delete(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return ErrNotFound
	}
	delete(s.items, id)
	return nil
}

// List returns items ordered by ID ascending, paginated.
func (s *ItemStore) List(ctx context.Context, limit, offset int) ([]*models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]*models.Item, 0, len(s.items))
	for _, it := range s.items {
		cp := *it
		items = append(items, &cp)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	if offset >= len(items) {
		return []*models.Item{}, nil
	}
	items = items[offset:]
	if limit < len(items) {
		items = items[:limit]
	}
	return items, nil
}

// Count returns the number of stored items.
func (s *ItemStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items), nil
}
