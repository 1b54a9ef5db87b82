package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/rl1809/workshop-parts/internal/core/domain"
	"github.com/rl1809/workshop-parts/internal/port"
)

var ErrOptimisticLock = port.ErrOptimisticLock

const inventoryColumns = `id, code, name, description, category, supplier_id, supplier_name,
	in_stock, min_stock, price, location, last_order_date, image_url, status, version,
	created_at, updated_at`

type MySQLAdapter struct {
	db *sqlx.DB
}

func NewMySQLAdapter(db *sqlx.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

func (m *MySQLAdapter) Ping(ctx context.Context) error {
	return m.db.PingContext(ctx)
}

func (m *MySQLAdapter) LoadInventoryItems(ctx context.Context) ([]domain.InventoryItem, error) {
	var rows []inventoryRow
	err := m.db.SelectContext(ctx, &rows, `SELECT `+inventoryColumns+` FROM inventory_items ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("query inventory items: %w", err)
	}

	items := make([]domain.InventoryItem, len(rows))
	for i, r := range rows {
		items[i] = r.toDomain()
	}
	return items, nil
}

func (m *MySQLAdapter) GetInventoryItem(ctx context.Context, id string) (*domain.InventoryItem, error) {
	var row inventoryRow
	err := m.db.GetContext(ctx, &row, `SELECT `+inventoryColumns+` FROM inventory_items WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query inventory item: %w", err)
	}

	item := row.toDomain()
	return &item, nil
}

func (m *MySQLAdapter) CreateInventoryItem(ctx context.Context, item domain.InventoryItem) error {
	_, err := m.db.NamedExecContext(ctx, `
		INSERT INTO inventory_items (`+inventoryColumns+`)
		VALUES (:id, :code, :name, :description, :category, :supplier_id, :supplier_name,
			:in_stock, :min_stock, :price, :location, :last_order_date, :image_url, :status, :version,
			:created_at, :updated_at)`,
		toInventoryRow(item),
	)
	if err != nil {
		return fmt.Errorf("insert inventory item: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) SaveInventoryItems(ctx context.Context, items []domain.InventoryItem) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, item := range items {
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO inventory_items (`+inventoryColumns+`)
			VALUES (:id, :code, :name, :description, :category, :supplier_id, :supplier_name,
				:in_stock, :min_stock, :price, :location, :last_order_date, :image_url, :status, :version,
				:created_at, :updated_at)
			ON DUPLICATE KEY UPDATE
				code = VALUES(code), name = VALUES(name), description = VALUES(description),
				category = VALUES(category), supplier_id = VALUES(supplier_id),
				supplier_name = VALUES(supplier_name), in_stock = VALUES(in_stock),
				min_stock = VALUES(min_stock), price = VALUES(price), location = VALUES(location),
				last_order_date = VALUES(last_order_date), image_url = VALUES(image_url),
				status = VALUES(status), version = version + 1, updated_at = VALUES(updated_at)`,
			toInventoryRow(item),
		)
		if err != nil {
			return fmt.Errorf("upsert inventory item %s: %w", item.ID, err)
		}
	}

	return tx.Commit()
}

func (m *MySQLAdapter) UpdateInventoryItem(ctx context.Context, item domain.InventoryItem) error {
	result, err := m.db.NamedExecContext(ctx, `
		UPDATE inventory_items
		SET name = :name, description = :description, category = :category,
			in_stock = :in_stock, min_stock = :min_stock, price = :price, location = :location,
			last_order_date = :last_order_date, image_url = :image_url, status = :status,
			version = version + 1, updated_at = :updated_at
		WHERE id = :id AND version = :version`,
		toInventoryRow(item),
	)
	if err != nil {
		return fmt.Errorf("update inventory item: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrOptimisticLock
	}

	return nil
}

func (m *MySQLAdapter) LoadOrders(ctx context.Context) ([]domain.Order, error) {
	var orderRows []orderRow
	err := m.db.SelectContext(ctx, &orderRows, `
		SELECT id, supplier_id, supplier_name, order_date, status, total, notes, created_at, updated_at
		FROM orders WHERE status <> ? ORDER BY order_date DESC, id`, domain.OrderStatusDraft)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	if len(orderRows) == 0 {
		return []domain.Order{}, nil
	}

	ids := make([]string, len(orderRows))
	for i, r := range orderRows {
		ids[i] = r.ID
	}

	query, args, err := sqlx.In(`
		SELECT order_id, position, item_id, code, name, quantity, price, total
		FROM order_items WHERE order_id IN (?) ORDER BY order_id, position`, ids)
	if err != nil {
		return nil, fmt.Errorf("build order items query: %w", err)
	}

	var itemRows []orderItemRow
	if err := m.db.SelectContext(ctx, &itemRows, m.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}

	byOrder := make(map[string][]orderItemRow, len(orderRows))
	for _, it := range itemRows {
		byOrder[it.OrderID] = append(byOrder[it.OrderID], it)
	}

	orders := make([]domain.Order, len(orderRows))
	for i, r := range orderRows {
		orders[i] = r.toDomain(byOrder[r.ID])
	}
	return orders, nil
}

func (m *MySQLAdapter) CreateOrder(ctx context.Context, order domain.Order) error {
	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	row, items := toOrderRows(order)
	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO orders (id, supplier_id, supplier_name, order_date, status, total, notes, created_at, updated_at)
		VALUES (:id, :supplier_id, :supplier_name, :order_date, :status, :total, :notes, :created_at, :updated_at)`,
		row,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	if err := insertOrderItems(ctx, tx, items); err != nil {
		return err
	}

	return tx.Commit()
}

func (m *MySQLAdapter) SaveOrders(ctx context.Context, orders []domain.Order) error {
	if len(orders) == 0 {
		return nil
	}

	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, order := range orders {
		row, items := toOrderRows(order)
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO orders (id, supplier_id, supplier_name, order_date, status, total, notes, created_at, updated_at)
			VALUES (:id, :supplier_id, :supplier_name, :order_date, :status, :total, :notes, :created_at, :updated_at)
			ON DUPLICATE KEY UPDATE
				supplier_id = VALUES(supplier_id), supplier_name = VALUES(supplier_name),
				order_date = VALUES(order_date), status = VALUES(status), total = VALUES(total),
				notes = VALUES(notes), updated_at = VALUES(updated_at)`,
			row,
		)
		if err != nil {
			return fmt.Errorf("upsert order %s: %w", order.ID, err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = ?`, order.ID); err != nil {
			return fmt.Errorf("clear order items %s: %w", order.ID, err)
		}
		if err := insertOrderItems(ctx, tx, items); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func insertOrderItems(ctx context.Context, tx *sqlx.Tx, items []orderItemRow) error {
	if len(items) == 0 {
		return nil
	}
	_, err := tx.NamedExecContext(ctx, `
		INSERT INTO order_items (order_id, position, item_id, code, name, quantity, price, total)
		VALUES (:order_id, :position, :item_id, :code, :name, :quantity, :price, :total)`,
		items,
	)
	if err != nil {
		return fmt.Errorf("insert order items: %w", err)
	}
	return nil
}
