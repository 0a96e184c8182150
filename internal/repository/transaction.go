package repository

import (
	"context"

	"github.com/payvault/backend/internal/model"
	"github.com/shopspring/decimal"
)

// GetTransactions returns an account's ledger history, newest first.
func (r *Repository) GetTransactions(ctx context.Context, accountID string, limit, offset int) ([]model.Transaction, error) {
	var transactions []model.Transaction
	err := r.db.SelectContext(ctx, &transactions, `
		SELECT * FROM transactions
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		accountID, limit, offset)
	return transactions, err
}

// LedgerSum returns the signed sum of an account's ledger records: credits
// minus debits. By invariant it equals the account's balance. Pending and
// rejected withdrawal records still count as debits because the funds are
// reserved at request time and never credited back.
func (r *Repository) LedgerSum(ctx context.Context, accountID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.db.GetContext(ctx, &sum, `
		SELECT COALESCE(SUM(CASE WHEN kind IN ('send', 'withdrawal') THEN -amount ELSE amount END), 0)
		FROM transactions
		WHERE account_id = $1`,
		accountID)
	return sum, err
}
