package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

const commissionBatchSize = 50

// CommissionWorker re-drives pending commission jobs on a ticker. A transfer
// is allowed to be visible before its commission is applied; this worker
// bounds how long that window stays open when the synchronous attempt fails.
type CommissionWorker struct {
	engine   *CommissionEngine
	interval time.Duration
	log      *logrus.Entry
}

func NewCommissionWorker(engine *CommissionEngine, interval time.Duration) *CommissionWorker {
	return &CommissionWorker{
		engine:   engine,
		interval: interval,
		log:      logrus.WithField("component", "commission_worker"),
	}
}

func (w *CommissionWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.log.WithField("interval", w.interval).Info("commission worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info("commission worker stopped")
			return
		case <-ticker.C:
			if err := w.engine.ProcessPending(ctx, commissionBatchSize); err != nil {
				w.log.WithError(err).Error("failed to process pending commissions")
			}
		}
	}
}
