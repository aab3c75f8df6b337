package store

import (
	"context"
	"fmt"

	"github.com/opsdeskhq/opsdesk/internal/opsdesk/domain"
)

// UpsertProduct inserts or replaces a stockable product.
func (s *Store) UpsertProduct(ctx context.Context, p *domain.InventoryProduct) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO inventory_products (id, name, sku, unit, min_stock)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name, sku = excluded.sku,
			unit = excluded.unit, min_stock = excluded.min_stock
	`, p.ID, p.Name, p.SKU, p.Unit, p.MinStock)
	if err != nil {
		return fmt.Errorf("failed to upsert product: %w", err)
	}
	return nil
}

// SetStock records the quantity of a product at a location.
func (s *Store) SetStock(ctx context.Context, r *domain.InventoryRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO inventory_records (product_id, location, quantity)
		VALUES (?, ?, ?)
		ON CONFLICT(product_id, location) DO UPDATE SET quantity = excluded.quantity
	`, r.ProductID, r.Location, r.Quantity)
	if err != nil {
		return fmt.Errorf("failed to set stock: %w", err)
	}
	return nil
}

// ListProducts returns all stockable products.
func (s *Store) ListProducts(ctx context.Context) ([]*domain.InventoryProduct, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, sku, unit, min_stock FROM inventory_products ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []*domain.InventoryProduct
	for rows.Next() {
		var p domain.InventoryProduct
		if err := rows.Scan(&p.ID, &p.Name, &p.SKU, &p.Unit, &p.MinStock); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, &p)
	}
	return products, rows.Err()
}

// ListStock returns all per-location stock records.
func (s *Store) ListStock(ctx context.Context) ([]*domain.InventoryRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT product_id, location, quantity FROM inventory_records
		ORDER BY product_id, location
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock: %w", err)
	}
	defer rows.Close()

	var records []*domain.InventoryRecord
	for rows.Next() {
		var r domain.InventoryRecord
		if err := rows.Scan(&r.ProductID, &r.Location, &r.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan stock record: %w", err)
		}
		records = append(records, &r)
	}
	return records, rows.Err()
}
