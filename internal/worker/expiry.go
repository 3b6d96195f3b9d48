package worker

import (
	"context"
	"time"

	"go-maids-backend/internal/usecase"
	"go-maids-backend/pkg/logger"

	"github.com/robfig/cron/v3"
)

// ExpiryWorker runs the expiry sweep on a cron schedule. Postings past
// their expiry date are closed even if nobody ever requests them again.
type ExpiryWorker struct {
	expiryUC *usecase.ExpiryUsecase
	spec     string
	cron     *cron.Cron
}

func NewExpiryWorker(expiryUC *usecase.ExpiryUsecase, spec string) *ExpiryWorker {
	return &ExpiryWorker{
		expiryUC: expiryUC,
		spec:     spec,
		cron:     cron.New(),
	}
}

// Start schedules the sweep and runs one immediately so a restart does
// not leave overdue postings open until the next tick.
func (w *ExpiryWorker) Start() error {
	if _, err := w.cron.AddFunc(w.spec, w.sweep); err != nil {
		return err
	}
	w.cron.Start()
	go w.sweep()
	logger.Log.Info("expiry worker started", "schedule", w.spec)
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (w *ExpiryWorker) Stop() {
	ctx := w.cron.Stop()
	<-ctx.Done()
	logger.Log.Info("expiry worker stopped")
}

func (w *ExpiryWorker) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if _, err := w.expiryUC.ExpireDueJobs(ctx); err != nil {
		logger.Log.Error("expiry sweep failed", "error", err)
	}
}
