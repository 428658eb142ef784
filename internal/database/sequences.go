package database

import (
	"context"
	"time"
)

const nextDailySequence = `
INSERT INTO daily_sequences (seq_date, counter)
VALUES ($1, 1)
ON CONFLICT (seq_date)
DO UPDATE SET counter = daily_sequences.counter + 1, updated_at = now()
RETURNING counter
`

// NextDailySequence increments and reads the per-date counter in one
// statement, creating the row on the first ticket of the day. Concurrent
// callers for the same date serialize on the row and each get a distinct
// value.
func (q *Queries) NextDailySequence(ctx context.Context, seqDate time.Time) (int32, error) {
	var counter int32
	err := q.db.QueryRow(ctx, nextDailySequence, seqDate).Scan(&counter)
	return counter, err
}
