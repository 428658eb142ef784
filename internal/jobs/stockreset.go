// Package jobs runs the scheduled maintenance sweeps.
package jobs

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

type stockResetStore interface {
	ResetDueStocks(ctx context.Context) (int64, error)
}

// StockResetJob rolls scheduled products back to their minimum stock level
// once a day at midnight.
type StockResetJob struct {
	store stockResetStore
	cron  *cron.Cron
}

func NewStockResetJob(store stockResetStore) *StockResetJob {
	return &StockResetJob{store: store, cron: cron.New()}
}

// Start schedules the sweep and runs it once immediately so a restart never
// skips a day.
func (j *StockResetJob) Start() error {
	if _, err := j.cron.AddFunc("0 0 * * *", j.run); err != nil {
		return err
	}
	j.cron.Start()
	go j.run()
	return nil
}

func (j *StockResetJob) Stop() {
	j.cron.Stop()
}

func (j *StockResetJob) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	reset, err := j.store.ResetDueStocks(ctx)
	if err != nil {
		log.Printf("ERROR: stock reset sweep failed: %v", err)
		return
	}
	if reset > 0 {
		log.Printf("stock reset sweep: %d products restored to minimum level", reset)
	}
}
