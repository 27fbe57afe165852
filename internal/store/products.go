package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rjpc/storefront/internal/models"
)

const productColumns = `id, name, description, price, image_url, category, brand, created_at, updated_at`

func scanProduct(row interface{ Scan(...any) error }, p *models.Product) error {
	return row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.ImageURL, &p.Category, &p.Brand, &p.CreatedAt, &p.UpdatedAt)
}

// ListProducts returns every product ordered by name, variations expanded.
func (s *Store) ListProducts(ctx context.Context) ([]models.Product, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT `+productColumns+` FROM products ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	index := map[int64]int{}
	for rows.Next() {
		var p models.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		p.Variations = []models.Variation{}
		index[p.ID] = len(products)
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return products, nil
	}

	vrows, err := s.DB.QueryContext(ctx, `
		SELECT id, product_id, label, price, stock_count
		FROM product_variations
		ORDER BY product_id ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query variations: %w", err)
	}
	defer vrows.Close()

	for vrows.Next() {
		var v models.Variation
		if err := vrows.Scan(&v.ID, &v.ProductID, &v.Label, &v.Price, &v.Stock); err != nil {
			return nil, fmt.Errorf("scan variation: %w", err)
		}
		if i, ok := index[v.ProductID]; ok {
			products[i].Variations = append(products[i].Variations, v)
		}
	}
	return products, vrows.Err()
}

func (s *Store) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	var p models.Product
	err := scanProduct(s.DB.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?`, id), &p)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query product %d: %w", id, err)
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, product_id, label, price, stock_count
		FROM product_variations
		WHERE product_id = ?
		ORDER BY id ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("query variations: %w", err)
	}
	defer rows.Close()

	p.Variations = []models.Variation{}
	for rows.Next() {
		var v models.Variation
		if err := rows.Scan(&v.ID, &v.ProductID, &v.Label, &v.Price, &v.Stock); err != nil {
			return nil, fmt.Errorf("scan variation: %w", err)
		}
		p.Variations = append(p.Variations, v)
	}
	return &p, rows.Err()
}

// CreateProduct inserts the product and its variations in one transaction.
func (s *Store) CreateProduct(ctx context.Context, p *models.Product) (int64, error) {
	// 1. --- Begin Transaction ---
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() // Safety net

	// 2. --- Insert product ---
	res, err := tx.ExecContext(ctx, `
		INSERT INTO products (name, description, price, image_url, category, brand)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.Name, p.Description, p.Price, p.ImageURL, p.Category, p.Brand)
	if err != nil {
		return 0, fmt.Errorf("insert product: %w", err)
	}
	productID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	// 3. --- Insert variations ---
	for i := range p.Variations {
		v := &p.Variations[i]
		if err := insertVariation(ctx, tx, productID, v); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	p.ID = productID
	return productID, nil
}

func insertVariation(ctx context.Context, tx *sql.Tx, productID int64, v *models.Variation) error {
	res, err := tx.ExecContext(ctx, `
		INSERT INTO product_variations (product_id, label, price, stock_count)
		VALUES (?, ?, ?, ?)`,
		productID, v.Label, v.Price, v.Stock)
	if err != nil {
		return fmt.Errorf("insert variation %q: %w", v.Label, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	v.ID = id
	v.ProductID = productID
	return nil
}

// UpdateProduct saves the product fields and reconciles its variations:
// rows whose id is gone are deleted, rows with an id are updated in place
// and rows without one are inserted. Everything happens in one transaction.
func (s *Store) UpdateProduct(ctx context.Context, p *models.Product) error {
	// 1. --- Begin Transaction ---
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	// 2. --- Lock the product row ---
	var exists int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM products WHERE id = ? FOR UPDATE`, p.ID).Scan(&exists)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		return fmt.Errorf("lock product: %w", err)
	}

	// 3. --- Update product fields ---
	_, err = tx.ExecContext(ctx, `
		UPDATE products
		SET name = ?, description = ?, price = ?, image_url = ?, category = ?, brand = ?
		WHERE id = ?`,
		p.Name, p.Description, p.Price, p.ImageURL, p.Category, p.Brand, p.ID)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}

	// 4. --- Delete variations no longer present ---
	keep := []any{p.ID}
	for _, v := range p.Variations {
		if v.ID != 0 {
			keep = append(keep, v.ID)
		}
	}
	deleteQuery := `DELETE FROM product_variations WHERE product_id = ?`
	if len(keep) > 1 {
		deleteQuery += ` AND id NOT IN (?` + strings.Repeat(", ?", len(keep)-2) + `)`
	}
	if _, err := tx.ExecContext(ctx, deleteQuery, keep...); err != nil {
		return fmt.Errorf("delete stale variations: %w", err)
	}

	// 5. --- Update or insert the rest ---
	for i := range p.Variations {
		v := &p.Variations[i]
		if v.ID == 0 {
			if err := insertVariation(ctx, tx, p.ID, v); err != nil {
				return err
			}
			continue
		}
		_, err := tx.ExecContext(ctx, `
			UPDATE product_variations
			SET label = ?, price = ?, stock_count = ?
			WHERE id = ? AND product_id = ?`,
			v.Label, v.Price, v.Stock, v.ID, p.ID)
		if err != nil {
			return fmt.Errorf("update variation %d: %w", v.ID, err)
		}
	}

	return tx.Commit()
}

// DeleteProduct removes the product; its variations go with it.
func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
