package storage

import (
	"context"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS inventory_items (
		id              VARCHAR(36)   NOT NULL PRIMARY KEY,
		code            VARCHAR(64)   NOT NULL,
		name            VARCHAR(255)  NOT NULL,
		description     TEXT          NOT NULL,
		category        VARCHAR(128)  NOT NULL,
		supplier_id     VARCHAR(64)   NOT NULL,
		supplier_name   VARCHAR(255)  NOT NULL,
		in_stock        INT           NOT NULL DEFAULT 0,
		min_stock       INT           NOT NULL DEFAULT 0,
		price           DECIMAL(12,4) NOT NULL DEFAULT 0,
		location        VARCHAR(255)  NULL,
		last_order_date DATETIME      NULL,
		image_url       VARCHAR(1024) NULL,
		status          VARCHAR(16)   NOT NULL,
		version         INT           NOT NULL DEFAULT 0,
		created_at      DATETIME      NOT NULL,
		updated_at      DATETIME      NOT NULL,
		UNIQUE KEY uq_inventory_items_code (code),
		KEY idx_inventory_items_status (status)
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id            VARCHAR(36)   NOT NULL PRIMARY KEY,
		supplier_id   VARCHAR(64)   NOT NULL,
		supplier_name VARCHAR(255)  NOT NULL,
		order_date    DATETIME      NOT NULL,
		status        VARCHAR(16)   NOT NULL,
		total         DECIMAL(16,4) NOT NULL DEFAULT 0,
		notes         TEXT          NULL,
		created_at    DATETIME      NOT NULL,
		updated_at    DATETIME      NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		order_id VARCHAR(36)   NOT NULL,
		position INT           NOT NULL,
		item_id  VARCHAR(36)   NOT NULL,
		code     VARCHAR(64)   NOT NULL,
		name     VARCHAR(255)  NOT NULL,
		quantity INT           NOT NULL,
		price    DECIMAL(12,4) NOT NULL,
		total    DECIMAL(16,4) NOT NULL,
		PRIMARY KEY (order_id, item_id),
		KEY idx_order_items_position (order_id, position)
	)`,
}

// Migrate creates the tables when they are missing.
func (m *MySQLAdapter) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
