package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/payvault/backend/internal/model"
	"github.com/payvault/backend/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type CommissionStore interface {
	GetCommissionJob(ctx context.Context, transferID uuid.UUID) (*model.CommissionJob, error)
	GetReferralEdgeByReferred(ctx context.Context, referredID string) (*model.ReferralEdge, error)
	ApplyCommission(ctx context.Context, job *model.CommissionJob, referrerID string, commission decimal.Decimal) (bool, error)
	CloseCommissionJob(ctx context.Context, id uuid.UUID) error
	FailCommissionJob(ctx context.Context, id uuid.UUID, attemptErr string, maxAttempts int) error
	PendingCommissionJobs(ctx context.Context, limit int) ([]model.CommissionJob, error)
}

// CommissionEngine pays lifetime referral commission on completed transfers.
// Only the recipient's single direct referrer is credited; there is no
// multi-level chaining. Crediting is idempotent per transfer: the commission
// ledger record is keyed by the triggering transfer's id, so a duplicate
// trigger is detected and suppressed.
type CommissionEngine struct {
	store       CommissionStore
	rate        decimal.Decimal
	maxAttempts int
	log         *logrus.Entry
}

func NewCommissionEngine(store CommissionStore, rate decimal.Decimal, maxAttempts int) *CommissionEngine {
	return &CommissionEngine{
		store:       store,
		rate:        rate,
		maxAttempts: maxAttempts,
		log:         logrus.WithField("component", "commission"),
	}
}

// ApplyForTransfer processes the outbox job enqueued by a transfer.
func (e *CommissionEngine) ApplyForTransfer(ctx context.Context, transferID uuid.UUID) error {
	job, err := e.store.GetCommissionJob(ctx, transferID)
	if err != nil {
		return err
	}
	return e.Process(ctx, job)
}

func (e *CommissionEngine) Process(ctx context.Context, job *model.CommissionJob) error {
	if job.Status == model.CommissionJobStatusDone {
		return nil
	}

	edge, err := e.store.GetReferralEdgeByReferred(ctx, job.RecipientID)
	if err != nil {
		if errors.Is(err, repository.ErrReferralEdgeNotFound) {
			return e.store.CloseCommissionJob(ctx, job.ID)
		}
		return e.fail(ctx, job, err)
	}

	commission := job.Amount.Mul(e.rate)
	applied, err := e.store.ApplyCommission(ctx, job, edge.ReferrerID, commission)
	if err != nil {
		return e.fail(ctx, job, err)
	}

	if applied {
		e.log.WithFields(logrus.Fields{
			"transfer_id": job.TransferID,
			"referrer_id": edge.ReferrerID,
			"commission":  commission.String(),
		}).Info("commission credited")
	} else {
		e.log.WithField("transfer_id", job.TransferID).
			Info("duplicate commission trigger suppressed")
	}
	return nil
}

// fail records the attempt so the failure is never silently dropped, then
// returns the original error to the caller.
func (e *CommissionEngine) fail(ctx context.Context, job *model.CommissionJob, cause error) error {
	if err := e.store.FailCommissionJob(ctx, job.ID, cause.Error(), e.maxAttempts); err != nil {
		e.log.WithError(err).WithField("job_id", job.ID).Error("failed to record commission failure")
	}
	return cause
}

// ProcessPending re-drives jobs whose synchronous attempt did not complete.
func (e *CommissionEngine) ProcessPending(ctx context.Context, limit int) error {
	jobs, err := e.store.PendingCommissionJobs(ctx, limit)
	if err != nil {
		return err
	}
	for i := range jobs {
		if err := e.Process(ctx, &jobs[i]); err != nil {
			e.log.WithError(err).WithField("job_id", jobs[i].ID).Warn("commission retry failed")
		}
	}
	return nil
}
