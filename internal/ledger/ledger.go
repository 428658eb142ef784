// Package ledger guards product stock counts. Every reservation is a set of
// conditional single-row decrements; there is no multi-row transaction, so a
// partial failure is undone with compensating increments rather than a
// rollback.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dapur-pos/api/internal/database"
)

var (
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrProductUnavailable = errors.New("product unavailable")
)

// Line is one product/quantity pair to reserve or release.
type Line struct {
	ProductID uuid.UUID
	Quantity  int32
}

type stockStore interface {
	DecrementStock(ctx context.Context, arg database.AdjustStockParams) (int32, error)
	IncrementStock(ctx context.Context, arg database.AdjustStockParams) (int32, error)
	GetProduct(ctx context.Context, id uuid.UUID) (database.Product, error)
}

type Ledger struct {
	store stockStore
}

func New(store stockStore) *Ledger {
	return &Ledger{store: store}
}

// Reserve decrements stock for every line, in order. The decrement only
// succeeds when the product is active and holds enough stock, so a count can
// never go negative. If any line fails, the lines already taken are restored
// and the caller gets ErrInsufficientStock naming the product that was short,
// or ErrProductUnavailable when the product itself is gone.
func (l *Ledger) Reserve(ctx context.Context, lines []Line) error {
	for i, line := range lines {
		_, err := l.store.DecrementStock(ctx, database.AdjustStockParams{
			ID:       line.ProductID,
			Quantity: line.Quantity,
		})
		if err == nil {
			continue
		}

		l.compensate(ctx, lines[:i])

		if errors.Is(err, pgx.ErrNoRows) {
			return l.shortageError(ctx, line.ProductID)
		}
		return fmt.Errorf("reserving stock for product %s: %w", line.ProductID, err)
	}
	return nil
}

// shortageError tells a short count apart from a product that is gone. The
// decrement matches only active rows, so a missing or deactivated product
// raises the same no-rows result as an insufficient count.
func (l *Ledger) shortageError(ctx context.Context, id uuid.UUID) error {
	p, err := l.store.GetProduct(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrProductUnavailable, id)
	}
	return fmt.Errorf("%w for product %s", ErrInsufficientStock, p.Name)
}

// Release returns previously reserved stock. Failures are logged and the
// remaining lines still run; a missed increment leans stock low, never
// negative, and is left to out-of-band reconciliation.
func (l *Ledger) Release(ctx context.Context, lines []Line) {
	l.compensate(ctx, lines)
}

func (l *Ledger) compensate(ctx context.Context, lines []Line) {
	for _, line := range lines {
		if _, err := l.store.IncrementStock(ctx, database.AdjustStockParams{
			ID:       line.ProductID,
			Quantity: line.Quantity,
		}); err != nil {
			log.Printf("ERROR: failed to restore stock for product %s (qty %d): %v", line.ProductID, line.Quantity, err)
		}
	}
}
