package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/payvault/backend/internal/model"
	"github.com/shopspring/decimal"
)

var ErrReferralEdgeNotFound = errors.New("referral edge not found")

// GetReferralEdgeByReferred returns the single direct referrer of an account.
func (r *Repository) GetReferralEdgeByReferred(ctx context.Context, referredID string) (*model.ReferralEdge, error) {
	var edge model.ReferralEdge
	err := r.db.GetContext(ctx, &edge,
		"SELECT * FROM referral_edges WHERE referred_id = $1", referredID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReferralEdgeNotFound
		}
		return nil, err
	}
	return &edge, nil
}

// CreditSignupBonus records the referral edge and pays the signup bonus to
// the referrer in one transaction. The edge insert is the idempotency gate:
// if the (referrer, referred) pair already exists nothing is credited, so a
// retried registration cannot double-pay. Returns false when the bonus was
// already paid.
func (r *Repository) CreditSignupBonus(ctx context.Context, referrerID, referredID string, bonus decimal.Decimal) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO referral_edges (referrer_id, referred_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`,
		referrerID, referredID)
	if err != nil {
		return false, fmt.Errorf("failed to create referral edge: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if inserted == 0 {
		return false, nil
	}

	if _, err = tx.ExecContext(ctx, `
		UPDATE accounts SET
			balance = balance + $2,
			total_earning = total_earning + $2,
			total_referral = total_referral + 1,
			todays_earning = CASE WHEN aggregates_date = CURRENT_DATE THEN todays_earning + $2 ELSE $2 END,
			todays_referral = CASE WHEN aggregates_date = CURRENT_DATE THEN todays_referral + 1 ELSE 1 END,
			aggregates_date = CURRENT_DATE,
			updated_at = NOW()
		WHERE id = $1`,
		referrerID, bonus); err != nil {
		return false, fmt.Errorf("failed to credit referrer: %w", err)
	}

	bonusTx := &model.Transaction{
		AccountID: referrerID,
		Kind:      model.TransactionKindReferral,
		Amount:    bonus,
		Status:    model.TransactionStatusCompleted,
	}
	if err = insertTransaction(ctx, tx, bonusTx); err != nil {
		return false, fmt.Errorf("failed to record referral bonus: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

func (r *Repository) GetReferralStats(ctx context.Context, accountID string) (*model.ReferralStats, error) {
	var stats model.ReferralStats
	err := r.db.GetContext(ctx, &stats, `
		SELECT total_referral, todays_referral, total_earning::TEXT AS total_earning,
			todays_earning::TEXT AS todays_earning, referral_code
		FROM accounts WHERE id = $1`,
		accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &stats, nil
}
