package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/payvault/backend/internal/model"
	"github.com/shopspring/decimal"
)

// ApplyCommission credits a lifetime commission to the referrer and marks the
// job done, in one transaction. The partial unique index on
// transactions(transfer_id) for commission rows makes the credit idempotent:
// if a record for this transfer already exists the job is closed without
// paying again. Returns false when the credit was suppressed as a duplicate.
func (r *Repository) ApplyCommission(ctx context.Context, job *model.CommissionJob, referrerID string, commission decimal.Decimal) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO transactions (account_id, kind, amount, status, transfer_id)
		VALUES ($1, 'commission', $2, 'completed', $3)
		ON CONFLICT (transfer_id) WHERE kind = 'commission' DO NOTHING`,
		referrerID, commission, job.TransferID)
	if err != nil {
		return false, fmt.Errorf("failed to record commission: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	if inserted > 0 {
		if _, err = tx.ExecContext(ctx, `
			UPDATE accounts SET
				balance = balance + $2,
				total_earning = total_earning + $2,
				todays_earning = CASE WHEN aggregates_date = CURRENT_DATE THEN todays_earning + $2 ELSE $2 END,
				aggregates_date = CURRENT_DATE,
				updated_at = NOW()
			WHERE id = $1`,
			referrerID, commission); err != nil {
			return false, fmt.Errorf("failed to credit referrer: %w", err)
		}
	}

	if _, err = tx.ExecContext(ctx, `
		UPDATE commission_jobs
		SET status = 'done', attempts = attempts + 1, updated_at = NOW()
		WHERE id = $1`,
		job.ID); err != nil {
		return false, fmt.Errorf("failed to close commission job: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return false, err
	}
	return inserted > 0, nil
}

// CloseCommissionJob marks a job done without a credit (recipient has no
// referrer).
func (r *Repository) CloseCommissionJob(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE commission_jobs
		SET status = 'done', attempts = attempts + 1, updated_at = NOW()
		WHERE id = $1`,
		id)
	return err
}

// FailCommissionJob records a failed attempt. Jobs past maxAttempts are
// parked as failed so they stop being retried but stay visible.
func (r *Repository) FailCommissionJob(ctx context.Context, id uuid.UUID, attemptErr string, maxAttempts int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE commission_jobs
		SET attempts = attempts + 1,
			last_error = $2,
			status = CASE WHEN attempts + 1 >= $3 THEN 'failed' ELSE 'pending' END,
			updated_at = NOW()
		WHERE id = $1`,
		id, attemptErr, maxAttempts)
	return err
}

func (r *Repository) GetCommissionJob(ctx context.Context, transferID uuid.UUID) (*model.CommissionJob, error) {
	var job model.CommissionJob
	err := r.db.GetContext(ctx, &job,
		"SELECT * FROM commission_jobs WHERE transfer_id = $1", transferID)
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *Repository) PendingCommissionJobs(ctx context.Context, limit int) ([]model.CommissionJob, error) {
	var jobs []model.CommissionJob
	err := r.db.SelectContext(ctx, &jobs, `
		SELECT * FROM commission_jobs
		WHERE status = 'pending'
		ORDER BY updated_at
		LIMIT $1`,
		limit)
	return jobs, err
}
