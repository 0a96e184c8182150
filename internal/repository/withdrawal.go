package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/payvault/backend/internal/model"
	"github.com/shopspring/decimal"
)

var ErrWithdrawalNotPending = errors.New("withdrawal request is not pending")

// Withdraw reserves the full requested amount immediately: balance debit,
// withdrawal request and pending ledger record commit as one transaction.
// Settlement is left to administrative approval.
func (r *Repository) Withdraw(ctx context.Context, accountID string, amount decimal.Decimal, network model.Network, address string) (*model.WithdrawalRequest, decimal.Decimal, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, decimal.Zero, err
	}
	defer tx.Rollback()

	var balance decimal.Decimal
	err = tx.GetContext(ctx, &balance,
		"SELECT balance FROM accounts WHERE id = $1 FOR UPDATE", accountID)
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("failed to lock account: %w", err)
	}

	if balance.LessThan(amount) {
		return nil, decimal.Zero, ErrInsufficientBalance
	}
	newBalance := balance.Sub(amount)

	if _, err = tx.ExecContext(ctx,
		"UPDATE accounts SET balance = $2, updated_at = NOW() WHERE id = $1",
		accountID, newBalance); err != nil {
		return nil, decimal.Zero, fmt.Errorf("failed to debit account: %w", err)
	}

	request := &model.WithdrawalRequest{
		AccountID: accountID,
		Amount:    amount,
		Network:   network,
		Address:   address,
		Status:    model.WithdrawalStatusPending,
	}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO withdrawal_requests (account_id, amount, network, address)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		accountID, amount, network, address,
	).Scan(&request.ID, &request.CreatedAt)
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("failed to create withdrawal request: %w", err)
	}

	networkStr := string(network)
	record := &model.Transaction{
		AccountID:    accountID,
		Kind:         model.TransactionKindWithdrawal,
		Amount:       amount,
		Status:       model.TransactionStatusPending,
		WithdrawalID: &request.ID,
		Network:      &networkStr,
		Address:      &address,
	}
	if err = insertTransaction(ctx, tx, record); err != nil {
		return nil, decimal.Zero, fmt.Errorf("failed to record withdrawal: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, decimal.Zero, err
	}
	return request, newBalance, nil
}

func (r *Repository) GetWithdrawals(ctx context.Context, accountID string, limit, offset int) ([]model.WithdrawalRequest, error) {
	var requests []model.WithdrawalRequest
	err := r.db.SelectContext(ctx, &requests, `
		SELECT * FROM withdrawal_requests
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		accountID, limit, offset)
	return requests, err
}

func (r *Repository) ListPendingWithdrawals(ctx context.Context, limit int) ([]model.WithdrawalRequest, error) {
	var requests []model.WithdrawalRequest
	err := r.db.SelectContext(ctx, &requests, `
		SELECT * FROM withdrawal_requests
		WHERE status = 'pending'
		ORDER BY created_at
		LIMIT $1`,
		limit)
	return requests, err
}

// SettleWithdrawal moves a pending request to approved or rejected and flips
// the linked ledger record. Rejection does not credit the funds back.
func (r *Repository) SettleWithdrawal(ctx context.Context, id uuid.UUID, status model.WithdrawalStatus, notes string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE withdrawal_requests
		SET status = $2, admin_notes = $3, processed_at = NOW()
		WHERE id = $1 AND status = 'pending'`,
		id, status, notes)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrWithdrawalNotPending
	}

	recordStatus := model.TransactionStatusCompleted
	if status == model.WithdrawalStatusRejected {
		recordStatus = model.TransactionStatusRejected
	}
	if _, err = tx.ExecContext(ctx,
		"UPDATE transactions SET status = $2 WHERE withdrawal_id = $1", id, recordStatus); err != nil {
		return fmt.Errorf("failed to update withdrawal record: %w", err)
	}

	return tx.Commit()
}
