package storage

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rl1809/workshop-parts/internal/core/domain"
)

type inventoryRow struct {
	ID            string          `db:"id"`
	Code          string          `db:"code"`
	Name          string          `db:"name"`
	Description   string          `db:"description"`
	Category      string          `db:"category"`
	SupplierID    string          `db:"supplier_id"`
	SupplierName  string          `db:"supplier_name"`
	InStock       int             `db:"in_stock"`
	MinStock      int             `db:"min_stock"`
	Price         decimal.Decimal `db:"price"`
	Location      *string         `db:"location"`
	LastOrderDate *time.Time      `db:"last_order_date"`
	ImageURL      *string         `db:"image_url"`
	Status        string          `db:"status"`
	Version       int             `db:"version"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`
}

func toInventoryRow(item domain.InventoryItem) inventoryRow {
	item = item.Refresh()
	return inventoryRow{
		ID:            item.ID,
		Code:          item.Code,
		Name:          item.Name,
		Description:   item.Description,
		Category:      item.Category,
		SupplierID:    item.Supplier.ID,
		SupplierName:  item.Supplier.Name,
		InStock:       item.InStock,
		MinStock:      item.MinStock,
		Price:         item.Price,
		Location:      item.Location,
		LastOrderDate: item.LastOrderDate,
		ImageURL:      item.ImageURL,
		Status:        string(item.Status),
		Version:       item.Version,
		CreatedAt:     item.CreatedAt,
		UpdatedAt:     item.UpdatedAt,
	}
}

// toDomain recomputes the status instead of trusting the stored column.
func (r inventoryRow) toDomain() domain.InventoryItem {
	return domain.InventoryItem{
		ID:            r.ID,
		Code:          r.Code,
		Name:          r.Name,
		Description:   r.Description,
		Category:      r.Category,
		Supplier:      domain.SupplierRef{ID: r.SupplierID, Name: r.SupplierName},
		InStock:       r.InStock,
		MinStock:      r.MinStock,
		Price:         r.Price,
		Location:      r.Location,
		LastOrderDate: r.LastOrderDate,
		ImageURL:      r.ImageURL,
		Version:       r.Version,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}.Refresh()
}

type orderRow struct {
	ID           string          `db:"id"`
	SupplierID   string          `db:"supplier_id"`
	SupplierName string          `db:"supplier_name"`
	OrderDate    time.Time       `db:"order_date"`
	Status       string          `db:"status"`
	Total        decimal.Decimal `db:"total"`
	Notes        *string         `db:"notes"`
	CreatedAt    time.Time       `db:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at"`
}

type orderItemRow struct {
	OrderID  string          `db:"order_id"`
	Position int             `db:"position"`
	ItemID   string          `db:"item_id"`
	Code     string          `db:"code"`
	Name     string          `db:"name"`
	Quantity int             `db:"quantity"`
	Price    decimal.Decimal `db:"price"`
	Total    decimal.Decimal `db:"total"`
}

func toOrderRows(order domain.Order) (orderRow, []orderItemRow) {
	row := orderRow{
		ID:           order.ID,
		SupplierID:   order.Supplier.ID,
		SupplierName: order.Supplier.Name,
		OrderDate:    order.OrderDate,
		Status:       string(order.Status),
		Total:        domain.OrderTotal(order.Items),
		Notes:        order.Notes,
		CreatedAt:    order.CreatedAt,
		UpdatedAt:    order.UpdatedAt,
	}
	items := make([]orderItemRow, len(order.Items))
	for i, it := range order.Items {
		items[i] = orderItemRow{
			OrderID:  order.ID,
			Position: i,
			ItemID:   it.ItemID,
			Code:     it.Code,
			Name:     it.Name,
			Quantity: it.Quantity,
			Price:    it.Price,
			Total:    it.Total,
		}
	}
	return row, items
}

func (r orderRow) toDomain(items []orderItemRow) domain.Order {
	order := domain.Order{
		ID:        r.ID,
		Supplier:  domain.SupplierRef{ID: r.SupplierID, Name: r.SupplierName},
		OrderDate: r.OrderDate,
		Status:    domain.OrderStatus(r.Status),
		Items:     make([]domain.OrderItem, 0, len(items)),
		Notes:     r.Notes,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	for _, it := range items {
		order.Items = append(order.Items, domain.OrderItem{
			ItemID:   it.ItemID,
			Code:     it.Code,
			Name:     it.Name,
			Quantity: it.Quantity,
			Price:    it.Price,
			Total:    it.Total,
		})
	}
	order.Total = domain.OrderTotal(order.Items)
	return order
}
