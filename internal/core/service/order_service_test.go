package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/rl1809/workshop-parts/internal/core/domain"
)

type orderFixture struct {
	inventory *mockInventoryRepo
	orders    *mockOrderRepo
	drafts    *mockDraftRepo
	receiver  *mockReceiver
	svc       *OrderService
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	f := &orderFixture{
		inventory: newMockInventoryRepo(
			stockItem("pad", "BRK-1", 2, 5),
			stockItem("filter", "FLT-9", 8, 5),
		),
		orders:   &mockOrderRepo{},
		drafts:   newMockDraftRepo(),
		receiver: &mockReceiver{},
	}
	f.svc = NewOrderService(f.orders, f.drafts, f.inventory, f.receiver, 100, nil)
	return f
}

func TestAddItem_StartsDraftForItemSupplier(t *testing.T) {
	f := newOrderFixture(t)

	order, err := f.svc.AddItem(context.Background(), "pad", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.Status != domain.OrderStatusDraft {
		t.Errorf("expected draft, got %s", order.Status)
	}
	if order.Supplier.Name != "Repco" {
		t.Errorf("expected supplier Repco, got %s", order.Supplier.Name)
	}
	if len(order.Items) != 1 || order.Items[0].Code != "BRK-1" {
		t.Fatalf("expected BRK-1 line, got %+v", order.Items)
	}
	if !order.Total.Equal(decimal.NewFromInt(25)) {
		t.Errorf("expected total 25, got %s", order.Total)
	}
	if f.drafts.draft == nil || f.drafts.draft.ID != order.ID {
		t.Error("expected draft persisted")
	}
}

func TestAddItem_MergesAndKeepsFirstPrice(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	if _, err := f.svc.AddItem(ctx, "pad", 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// price changes in inventory after the first add
	changed := f.inventory.items["pad"]
	changed.Price = decimal.NewFromInt(99)
	f.inventory.items["pad"] = changed

	order, err := f.svc.AddItem(ctx, "pad", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(order.Items) != 1 || order.Items[0].Quantity != 5 {
		t.Fatalf("expected one line with quantity 5, got %+v", order.Items)
	}
	if !order.Total.Equal(decimal.RequireFromString("62.5")) {
		t.Errorf("expected total 62.5, got %s", order.Total)
	}
}

func TestAddItem_Errors(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	if _, err := f.svc.AddItem(ctx, "pad", 0); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("expected ErrInvalidQuantity, got: %v", err)
	}
	if _, err := f.svc.AddItem(ctx, "missing", 1); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound, got: %v", err)
	}
	if f.drafts.draft != nil {
		t.Error("expected no draft created on error")
	}
}

func TestStartDraft(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	order, err := f.svc.StartDraft(ctx, domain.SupplierRef{ID: "s2", Name: "Burson"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.ID == "" || order.Status != domain.OrderStatusDraft {
		t.Errorf("unexpected draft %+v", order)
	}

	if _, err := f.svc.StartDraft(ctx, domain.SupplierRef{ID: "s3"}); !errors.Is(err, ErrDraftExists) {
		t.Errorf("expected ErrDraftExists, got: %v", err)
	}

	if err := f.svc.DiscardDraft(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.svc.Draft(ctx); !errors.Is(err, ErrNoDraftOrder) {
		t.Errorf("expected ErrNoDraftOrder, got: %v", err)
	}
}

func TestRemoveAndUpdateItem(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	f.svc.AddItem(ctx, "pad", 2)
	f.svc.AddItem(ctx, "filter", 1)

	order, err := f.svc.UpdateItemQuantity(ctx, "filter", 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !order.Total.Equal(decimal.NewFromInt(75)) {
		t.Errorf("expected 75, got %s", order.Total)
	}

	unchanged, err := f.svc.UpdateItemQuantity(ctx, "filter", 0)
	if !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("expected ErrInvalidQuantity, got: %v", err)
	}
	if !unchanged.Total.Equal(order.Total) {
		t.Errorf("expected draft unchanged, got total %s", unchanged.Total)
	}

	order, err = f.svc.RemoveItem(ctx, "pad")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(order.Items) != 1 || !order.Total.Equal(decimal.NewFromInt(50)) {
		t.Errorf("expected filter only at 50, got %+v / %s", order.Items, order.Total)
	}

	order, err = f.svc.RemoveItem(ctx, "not-in-order")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(order.Items) != 1 {
		t.Errorf("expected removal of unknown line to be a no-op")
	}
}

func TestRemoveItem_NoDraft(t *testing.T) {
	f := newOrderFixture(t)
	if _, err := f.svc.RemoveItem(context.Background(), "pad"); !errors.Is(err, ErrNoDraftOrder) {
		t.Errorf("expected ErrNoDraftOrder, got: %v", err)
	}
}

func TestSubmitDraft(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	draft, _ := f.svc.AddItem(ctx, "pad", 2)
	notes := "deliver to bay 3"

	order, err := f.svc.SubmitDraft(ctx, &notes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.Status != domain.OrderStatusSubmitted {
		t.Errorf("expected submitted, got %s", order.Status)
	}
	if order.ID != draft.ID || !order.Total.Equal(draft.Total) {
		t.Errorf("expected id and total preserved")
	}
	if order.Notes == nil || *order.Notes != notes {
		t.Errorf("expected notes %q, got %v", notes, order.Notes)
	}
	if f.drafts.draft != nil {
		t.Error("expected draft cleared")
	}

	queued := <-f.svc.GetOrderQueue()
	if queued.ID != order.ID || queued.Status != domain.OrderStatusSubmitted {
		t.Errorf("expected submitted order queued, got %s/%s", queued.ID, queued.Status)
	}

	if _, err := f.svc.SubmitDraft(ctx, nil); !errors.Is(err, ErrNoDraftOrder) {
		t.Errorf("expected ErrNoDraftOrder, got: %v", err)
	}
}

func TestSubmitDraft_Empty(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	f.svc.StartDraft(ctx, domain.SupplierRef{ID: "s"})

	if _, err := f.svc.SubmitDraft(ctx, nil); !errors.Is(err, ErrEmptyOrder) {
		t.Errorf("expected ErrEmptyOrder, got: %v", err)
	}
}

func TestSubmitDraft_DuplicateSubmission(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	draft, _ := f.svc.AddItem(ctx, "pad", 1)
	f.drafts.idempotencySet["order:"+draft.ID] = true

	_, err := f.svc.SubmitDraft(ctx, nil)
	if !errors.Is(err, ErrDuplicateSubmission) {
		t.Errorf("expected ErrDuplicateSubmission, got: %v", err)
	}
	if f.drafts.draft == nil {
		t.Error("expected draft kept on rejected submission")
	}
}

func TestSubmitDraft_NonDraftStatus(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	draft, _ := f.svc.AddItem(ctx, "pad", 1)
	draft.Status = domain.OrderStatusSubmitted
	f.drafts.SaveCurrentDraftOrder(ctx, &draft)

	if _, err := f.svc.SubmitDraft(ctx, nil); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got: %v", err)
	}
}

func TestSubmitDraft_CancelledBeforeQueued(t *testing.T) {
	f := newOrderFixture(t)
	f.svc = NewOrderService(f.orders, f.drafts, f.inventory, f.receiver, 0, nil)
	draft, _ := f.svc.AddItem(context.Background(), "pad", 1)

	// Unbuffered queue with no reader: the send can never win
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := f.svc.SubmitDraft(cancelled, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got: %v", err)
	}
	if f.drafts.draft == nil || f.drafts.draft.Status != domain.OrderStatusDraft {
		t.Fatalf("expected draft kept as draft, got %+v", f.drafts.draft)
	}
	if f.drafts.idempotencySet["order:"+draft.ID] {
		t.Error("expected submission key released")
	}

	done := make(chan domain.Order, 1)
	go func() { done <- <-f.svc.GetOrderQueue() }()

	order, err := f.svc.SubmitDraft(context.Background(), nil)
	if err != nil {
		t.Fatalf("expected resubmission to succeed, got: %v", err)
	}
	if queued := <-done; queued.ID != draft.ID || order.ID != draft.ID {
		t.Errorf("expected %s queued, got %s", draft.ID, queued.ID)
	}
}

func TestSubmitDraft_Concurrent(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	f.svc.AddItem(ctx, "pad", 1)

	go func() {
		for range f.svc.GetOrderQueue() {
		}
	}()
	defer f.svc.Close()

	var successCount atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.svc.SubmitDraft(ctx, nil); err == nil {
				successCount.Add(1)
			}
		}()
	}
	wg.Wait()

	if successCount.Load() != 1 {
		t.Errorf("expected exactly 1 submission, got %d", successCount.Load())
	}
}

func submittedOrder(id string, status domain.OrderStatus) domain.Order {
	o := domain.NewDraftOrder(id, domain.SupplierRef{ID: "sup-1"}, testTime)
	o = domain.AddOrUpdateItem(o, domain.OrderItem{ItemID: "pad", Quantity: 2, Price: decimal.NewFromInt(3)})
	o.Status = status
	return o
}

func TestUpdateStatus(t *testing.T) {
	f := newOrderFixture(t)
	f.orders.orders = []domain.Order{
		submittedOrder("o1", domain.OrderStatusSubmitted),
		submittedOrder("o2", domain.OrderStatusSubmitted),
	}
	ctx := context.Background()

	order, err := f.svc.UpdateStatus(ctx, "o2", domain.OrderStatusProcessing)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.Status != domain.OrderStatusProcessing {
		t.Errorf("expected processing, got %s", order.Status)
	}
	if f.orders.orders[0].Status != domain.OrderStatusSubmitted {
		t.Errorf("expected o1 untouched, got %s", f.orders.orders[0].Status)
	}
	if f.orders.orders[1].Status != domain.OrderStatusProcessing {
		t.Errorf("expected o2 stored as processing, got %s", f.orders.orders[1].Status)
	}
	if len(f.receiver.received) != 0 {
		t.Error("expected nothing received yet")
	}

	if _, err := f.svc.UpdateStatus(ctx, "o2", domain.OrderStatusCompleted); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.receiver.received) != 1 || f.receiver.received[0].ID != "o2" {
		t.Errorf("expected o2 received into stock, got %+v", f.receiver.received)
	}

	_, err = f.svc.UpdateStatus(ctx, "o2", domain.OrderStatusCancelled)
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition from terminal state, got: %v", err)
	}
}

func TestUpdateStatus_ReceiptFailureKeepsOrderOpen(t *testing.T) {
	f := newOrderFixture(t)
	f.orders.orders = []domain.Order{submittedOrder("o1", domain.OrderStatusProcessing)}
	f.receiver.err = errors.New("mysql down")
	ctx := context.Background()

	if _, err := f.svc.UpdateStatus(ctx, "o1", domain.OrderStatusCompleted); err == nil {
		t.Fatal("expected receipt error")
	}
	if f.orders.orders[0].Status != domain.OrderStatusProcessing {
		t.Fatalf("expected o1 still processing, got %s", f.orders.orders[0].Status)
	}

	f.receiver.err = nil
	order, err := f.svc.UpdateStatus(ctx, "o1", domain.OrderStatusCompleted)
	if err != nil {
		t.Fatalf("expected retry to succeed, got: %v", err)
	}
	if order.Status != domain.OrderStatusCompleted || f.orders.orders[0].Status != domain.OrderStatusCompleted {
		t.Errorf("expected o1 completed, got %s", f.orders.orders[0].Status)
	}
	if len(f.receiver.received) != 2 {
		t.Errorf("expected two receipt attempts, got %d", len(f.receiver.received))
	}
}

func TestUpdateStatus_Errors(t *testing.T) {
	f := newOrderFixture(t)
	f.orders.orders = []domain.Order{submittedOrder("o1", domain.OrderStatusSubmitted)}
	ctx := context.Background()

	if _, err := f.svc.UpdateStatus(ctx, "missing", domain.OrderStatusCancelled); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("expected ErrOrderNotFound, got: %v", err)
	}
	if _, err := f.svc.UpdateStatus(ctx, "o1", "shipped"); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("expected ErrInvalidStatus, got: %v", err)
	}
	if _, err := f.svc.UpdateStatus(ctx, "o1", domain.OrderStatusDraft); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got: %v", err)
	}
}
