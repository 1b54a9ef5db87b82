package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rl1809/workshop-parts/internal/core/domain"
	"github.com/rl1809/workshop-parts/internal/port"
)

// StockReceiver books a completed order into stock.
type StockReceiver interface {
	ReceiveOrder(ctx context.Context, order domain.Order) error
}

type OrderService struct {
	orders     port.OrderRepository
	drafts     port.DraftRepository
	inventory  port.InventoryRepository
	receiver   StockReceiver
	orderQueue chan domain.Order
	logger     *zap.Logger
	now        func() time.Time
}

func NewOrderService(
	orders port.OrderRepository,
	drafts port.DraftRepository,
	inventory port.InventoryRepository,
	receiver StockReceiver,
	queueSize int,
	logger *zap.Logger,
) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		orders:     orders,
		drafts:     drafts,
		inventory:  inventory,
		receiver:   receiver,
		orderQueue: make(chan domain.Order, queueSize),
		logger:     logger,
		now:        time.Now,
	}
}

func (s *OrderService) Draft(ctx context.Context) (domain.Order, error) {
	draft, err := s.loadDraft(ctx)
	if err != nil {
		return domain.Order{}, err
	}
	if draft == nil {
		return domain.Order{}, ErrNoDraftOrder
	}
	return *draft, nil
}

func (s *OrderService) StartDraft(ctx context.Context, supplier domain.SupplierRef) (domain.Order, error) {
	existing, err := s.loadDraft(ctx)
	if err != nil {
		return domain.Order{}, err
	}
	if existing != nil {
		return *existing, ErrDraftExists
	}

	draft := domain.NewDraftOrder(uuid.NewString(), supplier, s.now())
	if err := s.saveDraft(ctx, &draft); err != nil {
		return domain.Order{}, err
	}

	s.logger.Info("draft order started", zap.String("order_id", draft.ID), zap.String("supplier", supplier.Name))
	return draft, nil
}

func (s *OrderService) DiscardDraft(ctx context.Context) error {
	return s.saveDraft(ctx, nil)
}

// AddItem snapshots the inventory item into the draft, starting a draft for
// the item's supplier when none is in progress.
func (s *OrderService) AddItem(ctx context.Context, itemID string, quantity int) (domain.Order, error) {
	if quantity < 1 {
		return domain.Order{}, ErrInvalidQuantity
	}

	item, err := s.inventory.GetInventoryItem(ctx, itemID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("get inventory item: %w", err)
	}
	if item == nil {
		return domain.Order{}, ErrItemNotFound
	}

	draft, err := s.loadDraft(ctx)
	if err != nil {
		return domain.Order{}, err
	}
	if draft == nil {
		d := domain.NewDraftOrder(uuid.NewString(), item.Supplier, s.now())
		draft = &d
	}

	next := domain.AddOrUpdateItem(*draft, domain.NewOrderItem(*item, quantity))
	return s.storeDraft(ctx, next)
}

func (s *OrderService) RemoveItem(ctx context.Context, itemID string) (domain.Order, error) {
	draft, err := s.Draft(ctx)
	if err != nil {
		return domain.Order{}, err
	}
	return s.storeDraft(ctx, domain.RemoveItem(draft, itemID))
}

func (s *OrderService) UpdateItemQuantity(ctx context.Context, itemID string, quantity int) (domain.Order, error) {
	draft, err := s.Draft(ctx)
	if err != nil {
		return domain.Order{}, err
	}
	if quantity < 1 {
		return draft, ErrInvalidQuantity
	}
	return s.storeDraft(ctx, domain.UpdateItemQuantity(draft, itemID, quantity))
}

// SubmitDraft freezes the current draft and hands it to the order workers.
// The order id doubles as idempotency key so a draft is never created twice
// downstream.
func (s *OrderService) SubmitDraft(ctx context.Context, notes *string) (domain.Order, error) {
	draft, err := s.Draft(ctx)
	if err != nil {
		return domain.Order{}, err
	}
	if len(draft.Items) == 0 {
		return draft, ErrEmptyOrder
	}

	order, err := domain.SubmitOrder(draft, notes)
	if err != nil {
		return draft, err
	}

	key := "order:" + order.ID
	ok, err := s.drafts.SetIdempotency(ctx, key)
	if err != nil {
		return draft, fmt.Errorf("idempotency check failed: %w", err)
	}
	if !ok {
		return draft, ErrDuplicateSubmission
	}

	order.UpdatedAt = s.now()

	select {
	case s.orderQueue <- order:
	case <-ctx.Done():
		// never queued, so the draft must stay submittable
		if err := s.drafts.ReleaseIdempotency(context.WithoutCancel(ctx), key); err != nil {
			s.logger.Error("failed to release submission key", zap.String("order_id", order.ID), zap.Error(err))
		}
		return draft, ctx.Err()
	}

	if err := s.saveDraft(ctx, nil); err != nil {
		s.logger.Warn("submitted order but could not clear draft", zap.String("order_id", order.ID), zap.Error(err))
	}

	s.logger.Info("order submitted",
		zap.String("order_id", order.ID),
		zap.Int("lines", len(order.Items)),
		zap.String("total", order.Total.StringFixed(2)),
	)
	return order, nil
}

func (s *OrderService) List(ctx context.Context) ([]domain.Order, error) {
	orders, err := s.orders.LoadOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus moves a stored order to status. Terminal orders and moves back
// to draft are rejected; completing an order receives it into stock.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) (domain.Order, error) {
	if !status.Valid() {
		return domain.Order{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	orders, err := s.List(ctx)
	if err != nil {
		return domain.Order{}, err
	}

	idx := -1
	for i, o := range orders {
		if o.ID == orderID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return domain.Order{}, ErrOrderNotFound
	}

	prev := orders[idx]
	if prev.IsTerminal() || status == domain.OrderStatusDraft {
		return prev, fmt.Errorf("order %s from %s to %s: %w", orderID, prev.Status, status, domain.ErrInvalidTransition)
	}

	updated := domain.UpdateStatus(orders, orderID, status)[idx]
	updated.UpdatedAt = s.now()

	// Stock is booked before the order turns terminal so a failed receipt
	// leaves the order open for another attempt.
	if status == domain.OrderStatusCompleted && s.receiver != nil {
		if err := s.receiver.ReceiveOrder(ctx, updated); err != nil {
			return prev, err
		}
	}

	if err := s.orders.SaveOrders(ctx, []domain.Order{updated}); err != nil {
		if status == domain.OrderStatusCompleted && s.receiver != nil {
			s.logger.Error("CRITICAL order received into stock but not marked completed",
				zap.String("order_id", orderID), zap.Error(err))
		}
		return prev, fmt.Errorf("save order: %w", err)
	}

	s.logger.Info("order status changed",
		zap.String("order_id", orderID),
		zap.String("from", string(prev.Status)),
		zap.String("to", string(status)),
	)
	return updated, nil
}

func (s *OrderService) GetOrderQueue() <-chan domain.Order {
	return s.orderQueue
}

func (s *OrderService) Close() {
	close(s.orderQueue)
}

func (s *OrderService) storeDraft(ctx context.Context, order domain.Order) (domain.Order, error) {
	order.UpdatedAt = s.now()
	if err := s.saveDraft(ctx, &order); err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

func (s *OrderService) loadDraft(ctx context.Context) (*domain.Order, error) {
	draft, err := s.drafts.LoadCurrentDraftOrder(ctx)
	if err != nil {
		return nil, fmt.Errorf("load draft order: %w", err)
	}
	return draft, nil
}

func (s *OrderService) saveDraft(ctx context.Context, order *domain.Order) error {
	if err := s.drafts.SaveCurrentDraftOrder(ctx, order); err != nil {
		return fmt.Errorf("save draft order: %w", err)
	}
	return nil
}
