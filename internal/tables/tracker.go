// Package tables derives table occupancy from live tickets and orders.
package tables

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dapur-pos/api/internal/database"
	"github.com/dapur-pos/api/internal/enum"
)

type tableStore interface {
	CountActiveTableRefs(ctx context.Context, tableID uuid.UUID) (int64, error)
	SetDerivedTableStatus(ctx context.Context, arg database.SetDerivedTableStatusParams) error
}

type Tracker struct {
	store tableStore
}

func New(store tableStore) *Tracker {
	return &Tracker{store: store}
}

// Recompute re-derives a table's occupancy from how many open tickets and
// active orders reference it. The write only ever moves a table between
// AVAILABLE and OCCUPIED; RESERVED and OUT_OF_SERVICE are operator-held and
// never overwritten here. Recompute is idempotent, so callers fire it after
// every ticket or order mutation without checking whether anything changed.
func (t *Tracker) Recompute(ctx context.Context, tableID uuid.UUID) error {
	refs, err := t.store.CountActiveTableRefs(ctx, tableID)
	if err != nil {
		return fmt.Errorf("counting table references: %w", err)
	}

	status := enum.TableStatusAvailable
	if refs > 0 {
		status = enum.TableStatusOccupied
	}

	if err := t.store.SetDerivedTableStatus(ctx, database.SetDerivedTableStatusParams{
		ID:     tableID,
		Status: status,
	}); err != nil {
		return fmt.Errorf("updating table status: %w", err)
	}
	return nil
}
