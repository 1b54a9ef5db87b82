package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/rl1809/workshop-parts/internal/core/domain"
	"github.com/rl1809/workshop-parts/internal/port"
)

// Mock InventoryRepository
type mockInventoryRepo struct {
	mu        sync.Mutex
	items     map[string]domain.InventoryItem
	conflicts int // UpdateInventoryItem fails with a lock conflict this many times
	createErr error
	creates   int
	failIDs   map[string]error // UpdateInventoryItem fails for these item ids
}

func newMockInventoryRepo(items ...domain.InventoryItem) *mockInventoryRepo {
	m := &mockInventoryRepo{items: make(map[string]domain.InventoryItem)}
	for _, it := range items {
		m.items[it.ID] = it.Refresh()
	}
	return m
}

func (m *mockInventoryRepo) LoadInventoryItems(ctx context.Context) ([]domain.InventoryItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.InventoryItem, 0, len(m.items))
	for _, it := range m.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (m *mockInventoryRepo) SaveInventoryItems(ctx context.Context, items []domain.InventoryItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range items {
		m.items[it.ID] = it
	}
	return nil
}

func (m *mockInventoryRepo) GetInventoryItem(ctx context.Context, id string) (*domain.InventoryItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	return &it, nil
}

func (m *mockInventoryRepo) CreateInventoryItem(ctx context.Context, item domain.InventoryItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil && m.creates > 0 {
		return m.createErr
	}
	m.creates++
	m.items[item.ID] = item
	return nil
}

func (m *mockInventoryRepo) UpdateInventoryItem(ctx context.Context, item domain.InventoryItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conflicts > 0 {
		m.conflicts--
		return port.ErrOptimisticLock
	}
	if err, ok := m.failIDs[item.ID]; ok {
		return err
	}
	current, ok := m.items[item.ID]
	if !ok || current.Version != item.Version {
		return port.ErrOptimisticLock
	}
	item.Version++
	m.items[item.ID] = item
	return nil
}

// Mock OrderRepository
type mockOrderRepo struct {
	mu        sync.Mutex
	orders    []domain.Order
	createErr error
}

func (m *mockOrderRepo) LoadOrders(ctx context.Context) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Order, len(m.orders))
	copy(out, m.orders)
	return out, nil
}

func (m *mockOrderRepo) SaveOrders(ctx context.Context, orders []domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range orders {
		replaced := false
		for i := range m.orders {
			if m.orders[i].ID == o.ID {
				m.orders[i] = o
				replaced = true
			}
		}
		if !replaced {
			m.orders = append(m.orders, o)
		}
	}
	return nil
}

func (m *mockOrderRepo) CreateOrder(ctx context.Context, order domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	for _, o := range m.orders {
		if o.ID == order.ID {
			return errors.New("duplicate order id")
		}
	}
	m.orders = append(m.orders, order)
	return nil
}

// Mock DraftRepository
type mockDraftRepo struct {
	mu             sync.Mutex
	draft          *domain.Order
	idempotencySet map[string]bool
}

func newMockDraftRepo() *mockDraftRepo {
	return &mockDraftRepo{idempotencySet: make(map[string]bool)}
}

func (m *mockDraftRepo) LoadCurrentDraftOrder(ctx context.Context) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.draft == nil {
		return nil, nil
	}
	d := *m.draft
	return &d, nil
}

func (m *mockDraftRepo) SaveCurrentDraftOrder(ctx context.Context, order *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if order == nil {
		m.draft = nil
		return nil
	}
	d := *order
	m.draft = &d
	return nil
}

func (m *mockDraftRepo) SetIdempotency(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.idempotencySet[key] {
		return false, nil
	}
	m.idempotencySet[key] = true
	return true, nil
}

func (m *mockDraftRepo) ReleaseIdempotency(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.idempotencySet, key)
	return nil
}

// Mock StockReceiver
type mockReceiver struct {
	received []domain.Order
	err      error
}

func (m *mockReceiver) ReceiveOrder(ctx context.Context, order domain.Order) error {
	m.received = append(m.received, order)
	return m.err
}
