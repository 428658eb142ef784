package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const productColumns = `id, category_id, name, unit_price, stock_quantity, min_stock_level, stock_reset_date, is_active, created_at, updated_at`

func scanProduct(row interface{ Scan(dest ...any) error }) (Product, error) {
	var p Product
	err := row.Scan(
		&p.ID, &p.CategoryID, &p.Name, &p.UnitPrice, &p.StockQuantity,
		&p.MinStockLevel, &p.StockResetDate, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

const createProduct = `
INSERT INTO products (category_id, name, unit_price, stock_quantity, min_stock_level, stock_reset_date)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + productColumns

type CreateProductParams struct {
	CategoryID     uuid.UUID
	Name           string
	UnitPrice      pgtype.Numeric
	StockQuantity  int32
	MinStockLevel  int32
	StockResetDate pgtype.Date
}

func (q *Queries) CreateProduct(ctx context.Context, arg CreateProductParams) (Product, error) {
	row := q.db.QueryRow(ctx, createProduct,
		arg.CategoryID, arg.Name, arg.UnitPrice, arg.StockQuantity, arg.MinStockLevel, arg.StockResetDate)
	return scanProduct(row)
}

const getProduct = `
SELECT ` + productColumns + `
FROM products
WHERE id = $1 AND is_active
`

func (q *Queries) GetProduct(ctx context.Context, id uuid.UUID) (Product, error) {
	return scanProduct(q.db.QueryRow(ctx, getProduct, id))
}

const productExists = `
SELECT EXISTS (SELECT 1 FROM products WHERE id = $1 AND is_active)
`

func (q *Queries) ProductExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := q.db.QueryRow(ctx, productExists, id).Scan(&exists)
	return exists, err
}

const listProducts = `
SELECT ` + productColumns + `
FROM products
WHERE is_active
ORDER BY name
`

func (q *Queries) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := q.db.Query(ctx, listProducts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

const listLowStockProducts = `
SELECT ` + productColumns + `
FROM products
WHERE is_active AND stock_quantity < min_stock_level
ORDER BY name
`

func (q *Queries) ListLowStockProducts(ctx context.Context) ([]Product, error) {
	rows, err := q.db.Query(ctx, listLowStockProducts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

const updateProduct = `
UPDATE products
SET category_id = $2, name = $3, unit_price = $4, min_stock_level = $5,
    stock_reset_date = $6, updated_at = now()
WHERE id = $1 AND is_active
RETURNING ` + productColumns

type UpdateProductParams struct {
	ID             uuid.UUID
	CategoryID     uuid.UUID
	Name           string
	UnitPrice      pgtype.Numeric
	MinStockLevel  int32
	StockResetDate pgtype.Date
}

// UpdateProduct deliberately leaves stock_quantity alone: the stock ledger
// owns that column.
func (q *Queries) UpdateProduct(ctx context.Context, arg UpdateProductParams) (Product, error) {
	row := q.db.QueryRow(ctx, updateProduct,
		arg.ID, arg.CategoryID, arg.Name, arg.UnitPrice, arg.MinStockLevel, arg.StockResetDate)
	return scanProduct(row)
}

const softDeleteProduct = `
UPDATE products
SET is_active = FALSE, updated_at = now()
WHERE id = $1 AND is_active
RETURNING id
`

func (q *Queries) SoftDeleteProduct(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var deleted uuid.UUID
	err := q.db.QueryRow(ctx, softDeleteProduct, id).Scan(&deleted)
	return deleted, err
}

const decrementStock = `
UPDATE products
SET stock_quantity = stock_quantity - $2, updated_at = now()
WHERE id = $1 AND is_active AND stock_quantity >= $2
RETURNING stock_quantity
`

type AdjustStockParams struct {
	ID       uuid.UUID
	Quantity int32
}

// DecrementStock is the conditional decrement behind stock reservation.
// pgx.ErrNoRows means the product is missing, inactive, or short on stock;
// the row is never driven below zero.
func (q *Queries) DecrementStock(ctx context.Context, arg AdjustStockParams) (int32, error) {
	var remaining int32
	err := q.db.QueryRow(ctx, decrementStock, arg.ID, arg.Quantity).Scan(&remaining)
	return remaining, err
}

const incrementStock = `
UPDATE products
SET stock_quantity = stock_quantity + $2, updated_at = now()
WHERE id = $1
RETURNING stock_quantity
`

func (q *Queries) IncrementStock(ctx context.Context, arg AdjustStockParams) (int32, error) {
	var remaining int32
	err := q.db.QueryRow(ctx, incrementStock, arg.ID, arg.Quantity).Scan(&remaining)
	return remaining, err
}

const resetDueStocks = `
UPDATE products
SET stock_quantity = min_stock_level, stock_reset_date = NULL, updated_at = now()
WHERE is_active AND stock_reset_date = CURRENT_DATE
`

// ResetDueStocks rolls every product scheduled for today back to its minimum
// stock level. Returns the number of products touched.
func (q *Queries) ResetDueStocks(ctx context.Context) (int64, error) {
	tag, err := q.db.Exec(ctx, resetDueStocks)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
