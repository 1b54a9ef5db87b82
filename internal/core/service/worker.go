package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rl1809/workshop-parts/internal/core/domain"
	"github.com/rl1809/workshop-parts/internal/port"
)

const persistTimeout = 5 * time.Second

// WorkerLoop persists submitted orders until queue is closed. An order that
// cannot be stored is handed back as the current draft, under a fresh id so
// it can be submitted again.
func WorkerLoop(id int, queue <-chan domain.Order, orders port.OrderRepository, drafts port.DraftRepository, logger *zap.Logger) {
	log := logger.With(zap.Int("worker", id))

	for order := range queue {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)

		if err := orders.CreateOrder(ctx, order); err != nil {
			log.Error("failed to save order", zap.String("order_id", order.ID), zap.Error(err))
			restoreDraft(ctx, log, drafts, order)
		} else {
			log.Info("saved order", zap.String("order_id", order.ID))
		}

		cancel()
	}
}

func restoreDraft(ctx context.Context, log *zap.Logger, drafts port.DraftRepository, order domain.Order) {
	current, err := drafts.LoadCurrentDraftOrder(ctx)
	if err != nil {
		log.Error("CRITICAL rollback failed", zap.String("order_id", order.ID), zap.Error(err))
		return
	}
	if current != nil {
		log.Error("CRITICAL rollback skipped, another draft is in progress",
			zap.String("order_id", order.ID),
			zap.String("draft_id", current.ID),
		)
		return
	}

	restored := order
	restored.ID = uuid.NewString()
	restored.Status = domain.OrderStatusDraft
	if err := drafts.SaveCurrentDraftOrder(ctx, &restored); err != nil {
		log.Error("CRITICAL rollback failed", zap.String("order_id", order.ID), zap.Error(err))
		return
	}
	log.Info("restored order as draft", zap.String("order_id", order.ID), zap.String("draft_id", restored.ID))
}
