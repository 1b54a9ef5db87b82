package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rl1809/workshop-parts/internal/core/catalog"
	"github.com/rl1809/workshop-parts/internal/core/domain"
	"github.com/rl1809/workshop-parts/internal/port"
)

const defaultUpdateRetries = 3

type InventoryService struct {
	repo    port.InventoryRepository
	mapper  *catalog.Mapper
	logger  *zap.Logger
	retries int
	now     func() time.Time
}

func NewInventoryService(repo port.InventoryRepository, mapper *catalog.Mapper, logger *zap.Logger) *InventoryService {
	if mapper == nil {
		mapper = catalog.NewMapper(catalog.DefaultConfig())
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryService{
		repo:    repo,
		mapper:  mapper,
		logger:  logger,
		retries: defaultUpdateRetries,
		now:     time.Now,
	}
}

type CreateItemInput struct {
	Code        string             `json:"code"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Category    string             `json:"category"`
	Supplier    domain.SupplierRef `json:"supplier"`
	InStock     int                `json:"inStock"`
	MinStock    int                `json:"minStock"`
	Price       decimal.Decimal    `json:"price"`
	Location    *string            `json:"location,omitempty"`
	ImageURL    *string            `json:"imageUrl,omitempty"`
}

func (in CreateItemInput) validate() error {
	switch {
	case strings.TrimSpace(in.Code) == "":
		return fmt.Errorf("%w: code is required", ErrInvalidItem)
	case strings.TrimSpace(in.Name) == "":
		return fmt.Errorf("%w: name is required", ErrInvalidItem)
	case in.InStock < 0 || in.MinStock < 0:
		return fmt.Errorf("%w: stock quantities must not be negative", ErrInvalidItem)
	case in.Price.IsNegative():
		return fmt.Errorf("%w: price must not be negative", ErrInvalidItem)
	}
	return nil
}

func (s *InventoryService) List(ctx context.Context) ([]domain.InventoryItem, error) {
	items, err := s.repo.LoadInventoryItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("load inventory: %w", err)
	}
	return items, nil
}

// LowStock lists items at or below their reorder threshold, critical first.
func (s *InventoryService) LowStock(ctx context.Context) ([]domain.InventoryItem, error) {
	items, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	low := make([]domain.InventoryItem, 0)
	for _, it := range items {
		if it.NeedsReorder() {
			low = append(low, it)
		}
	}
	sort.SliceStable(low, func(i, j int) bool {
		if low[i].Status != low[j].Status {
			return low[i].Status == domain.StockStatusCritical
		}
		return low[i].InStock < low[j].InStock
	})
	return low, nil
}

func (s *InventoryService) Get(ctx context.Context, id string) (domain.InventoryItem, error) {
	item, err := s.repo.GetInventoryItem(ctx, id)
	if err != nil {
		return domain.InventoryItem{}, fmt.Errorf("get inventory item: %w", err)
	}
	if item == nil {
		return domain.InventoryItem{}, ErrItemNotFound
	}
	return *item, nil
}

func (s *InventoryService) Create(ctx context.Context, in CreateItemInput) (domain.InventoryItem, error) {
	if err := in.validate(); err != nil {
		return domain.InventoryItem{}, err
	}

	now := s.now()
	item := domain.InventoryItem{
		ID:          uuid.NewString(),
		Code:        strings.TrimSpace(in.Code),
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Category:    in.Category,
		Supplier:    in.Supplier,
		InStock:     in.InStock,
		MinStock:    in.MinStock,
		Price:       in.Price,
		Location:    in.Location,
		ImageURL:    in.ImageURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}.Refresh()

	if err := s.repo.CreateInventoryItem(ctx, item); err != nil {
		return domain.InventoryItem{}, fmt.Errorf("create inventory item: %w", err)
	}

	s.logger.Info("inventory item created",
		zap.String("item_id", item.ID),
		zap.String("code", item.Code),
		zap.String("status", string(item.Status)),
	)
	return item, nil
}

// AdjustStock adds delta (which may be negative) to the on-hand count.
func (s *InventoryService) AdjustStock(ctx context.Context, itemID string, delta int) (domain.InventoryItem, error) {
	return s.update(ctx, itemID, func(item domain.InventoryItem) (domain.InventoryItem, error) {
		next := item.InStock + delta
		if next < 0 {
			return item, fmt.Errorf("adjust %s by %d: %w", item.Code, delta, ErrInsufficientStock)
		}
		return item.WithStock(next), nil
	})
}

func (s *InventoryService) SetMinStock(ctx context.Context, itemID string, minStock int) (domain.InventoryItem, error) {
	if minStock < 0 {
		return domain.InventoryItem{}, fmt.Errorf("%w: min stock must not be negative", ErrInvalidItem)
	}
	return s.update(ctx, itemID, func(item domain.InventoryItem) (domain.InventoryItem, error) {
		return item.WithMinStock(minStock), nil
	})
}

// ImportQuote persists every part of an EzyParts quote as a new inventory
// item. A nil or empty quote imports nothing and is not an error. Parts with
// a negative quantity or price are skipped.
func (s *InventoryService) ImportQuote(ctx context.Context, quote *catalog.Quote) ([]domain.InventoryItem, error) {
	candidates := s.mapper.MapQuoteToInventoryItems(quote)
	if len(candidates) == 0 {
		return candidates, nil
	}

	now := s.now()
	created := make([]domain.InventoryItem, 0, len(candidates))
	for _, c := range candidates {
		if c.InStock < 0 || c.Price.IsNegative() {
			s.logger.Warn("skipping quoted part with negative quantity or price",
				zap.String("code", c.Code),
				zap.Int("qty", c.InStock),
				zap.String("price", c.Price.String()),
			)
			continue
		}
		c.ID = uuid.NewString()
		c.LastOrderDate = &now
		c.CreatedAt = now
		c.UpdatedAt = now
		item := c.Refresh()

		if err := s.repo.CreateInventoryItem(ctx, item); err != nil {
			s.logger.Error("quote import aborted",
				zap.String("code", item.Code),
				zap.Int("imported", len(created)),
				zap.Error(err),
			)
			return created, fmt.Errorf("import %s: %w", item.Code, err)
		}
		created = append(created, item)
	}

	s.logger.Info("quote imported",
		zap.String("rego", quote.Headers.Rego),
		zap.Int("items", len(created)),
	)
	return created, nil
}

// ReceiveOrder books the quantities of a fulfilled order into stock. Lines
// whose inventory item no longer exists are skipped. When a line fails, the
// lines already booked are taken back out so the receipt can be retried.
func (s *InventoryService) ReceiveOrder(ctx context.Context, order domain.Order) error {
	booked := make([]domain.OrderItem, 0, len(order.Items))
	for _, line := range order.Items {
		orderDate := order.OrderDate
		_, err := s.update(ctx, line.ItemID, func(item domain.InventoryItem) (domain.InventoryItem, error) {
			item.LastOrderDate = &orderDate
			return item.WithStock(item.InStock + line.Quantity), nil
		})
		if errors.Is(err, ErrItemNotFound) {
			s.logger.Warn("received line for unknown item",
				zap.String("order_id", order.ID),
				zap.String("item_id", line.ItemID),
			)
			continue
		}
		if err != nil {
			s.revertReceipt(ctx, order.ID, booked)
			return fmt.Errorf("receive order %s: %w", order.ID, err)
		}
		booked = append(booked, line)
	}

	s.logger.Info("order received into stock",
		zap.String("order_id", order.ID),
		zap.Int("lines", len(booked)),
	)
	return nil
}

func (s *InventoryService) revertReceipt(ctx context.Context, orderID string, booked []domain.OrderItem) {
	ctx = context.WithoutCancel(ctx)
	for _, line := range booked {
		_, err := s.update(ctx, line.ItemID, func(item domain.InventoryItem) (domain.InventoryItem, error) {
			return item.WithStock(item.InStock - line.Quantity), nil
		})
		if err != nil {
			s.logger.Error("CRITICAL receipt rollback failed",
				zap.String("order_id", orderID),
				zap.String("item_id", line.ItemID),
				zap.Int("quantity", line.Quantity),
				zap.Error(err),
			)
		}
	}
}

func (s *InventoryService) update(ctx context.Context, itemID string, mutate func(domain.InventoryItem) (domain.InventoryItem, error)) (domain.InventoryItem, error) {
	for attempt := 1; attempt <= s.retries; attempt++ {
		current, err := s.Get(ctx, itemID)
		if err != nil {
			return domain.InventoryItem{}, err
		}

		next, err := mutate(current)
		if err != nil {
			return current, err
		}
		next.UpdatedAt = s.now()

		err = s.repo.UpdateInventoryItem(ctx, next)
		if err == nil {
			next.Version++
			return next, nil
		}
		if !errors.Is(err, port.ErrOptimisticLock) {
			return current, fmt.Errorf("update inventory item: %w", err)
		}

		s.logger.Debug("inventory version conflict, retrying",
			zap.String("item_id", itemID),
			zap.Int("attempt", attempt),
		)
	}
	return domain.InventoryItem{}, ErrConcurrentUpdate
}
