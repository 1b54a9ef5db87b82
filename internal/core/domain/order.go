package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusDraft      OrderStatus = "draft"
	OrderStatusSubmitted  OrderStatus = "submitted"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusDraft, OrderStatusSubmitted, OrderStatusProcessing,
		OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

func (s OrderStatus) Terminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

type OrderItem struct {
	ItemID   string          `json:"itemId"`
	Code     string          `json:"code"`
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Total    decimal.Decimal `json:"total"`
}

func NewOrderItem(item InventoryItem, quantity int) OrderItem {
	return OrderItem{
		ItemID:   item.ID,
		Code:     item.Code,
		Name:     item.Name,
		Quantity: quantity,
		Price:    item.Price,
		Total:    lineTotal(quantity, item.Price),
	}
}

type Order struct {
	ID        string          `json:"id"`
	Supplier  SupplierRef     `json:"supplier"`
	OrderDate time.Time       `json:"orderDate"`
	Status    OrderStatus     `json:"status"`
	Items     []OrderItem     `json:"items"`
	Total     decimal.Decimal `json:"total"`
	Notes     *string         `json:"notes,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

func NewDraftOrder(id string, supplier SupplierRef, orderDate time.Time) Order {
	return Order{
		ID:        id,
		Supplier:  supplier,
		OrderDate: orderDate,
		Status:    OrderStatusDraft,
		Items:     []OrderItem{},
		Total:     decimal.Zero,
		CreatedAt: orderDate,
		UpdatedAt: orderDate,
	}
}

func (o Order) IsTerminal() bool {
	return o.Status.Terminal()
}

func (o Order) FindItem(itemID string) (OrderItem, bool) {
	for _, it := range o.Items {
		if it.ItemID == itemID {
			return it, true
		}
	}
	return OrderItem{}, false
}
