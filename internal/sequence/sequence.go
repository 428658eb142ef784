// Package sequence hands out ticket numbers that restart at 1 every day.
package sequence

import (
	"context"
	"fmt"
	"time"
)

type sequenceStore interface {
	NextDailySequence(ctx context.Context, seqDate time.Time) (int32, error)
}

type Generator struct {
	store sequenceStore
	now   func() time.Time
}

func New(store sequenceStore) *Generator {
	return &Generator{store: store, now: time.Now}
}

// NextTicketNumber returns the next number for today, formatted as
// KOT-YYYYMMDD-NNN. The counter lives in a per-date row upserted in a single
// statement, so concurrent callers never see the same value and a midnight
// rollover lands on a fresh row. Past 999 the numeric part simply widens.
func (g *Generator) NextTicketNumber(ctx context.Context) (string, error) {
	day := g.now()
	seqDate := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)

	counter, err := g.store.NextDailySequence(ctx, seqDate)
	if err != nil {
		return "", fmt.Errorf("advancing daily sequence: %w", err)
	}
	return fmt.Sprintf("KOT-%s-%03d", day.Format("20060102"), counter), nil
}
