package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type SupplierRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type InventoryItem struct {
	ID            string          `json:"id"`
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Category      string          `json:"category"`
	Supplier      SupplierRef     `json:"supplier"`
	InStock       int             `json:"inStock"`
	MinStock      int             `json:"minStock"`
	Price         decimal.Decimal `json:"price"`
	Location      *string         `json:"location,omitempty"`
	LastOrderDate *time.Time      `json:"lastOrderDate,omitempty"`
	ImageURL      *string         `json:"imageUrl,omitempty"`
	Status        StockStatus     `json:"status"`
	Version       int             `json:"-"` // optimistic locking
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// WithStock returns a copy holding the new on-hand count and its status.
func (i InventoryItem) WithStock(inStock int) InventoryItem {
	i.InStock = inStock
	return i.Refresh()
}

// WithMinStock returns a copy holding the new reorder threshold and its status.
func (i InventoryItem) WithMinStock(minStock int) InventoryItem {
	i.MinStock = minStock
	return i.Refresh()
}

func (i InventoryItem) Refresh() InventoryItem {
	i.Status = EvaluateStatus(i.InStock, i.MinStock)
	return i
}

func (i InventoryItem) NeedsReorder() bool {
	return i.Status == StockStatusLow || i.Status == StockStatusCritical
}
