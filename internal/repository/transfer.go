package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/payvault/backend/internal/model"
	"github.com/shopspring/decimal"
)

var ErrInsufficientBalance = errors.New("insufficient balance")

// Transfer moves amount from sender to recipient as a single all-or-nothing
// transaction: both balances, both ledger records and the commission outbox
// row commit together or not at all. Both account rows are locked in id order
// so concurrent transfers between the same pair cannot deadlock, and the
// sender's balance is re-read under the lock to prevent lost updates.
func (r *Repository) Transfer(ctx context.Context, senderID, recipientID string, amount decimal.Decimal) (*model.TransferResult, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var locked []model.Account
	err = tx.SelectContext(ctx, &locked,
		"SELECT * FROM accounts WHERE id IN ($1, $2) ORDER BY id FOR UPDATE",
		senderID, recipientID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock accounts: %w", err)
	}
	if len(locked) != 2 {
		return nil, ErrAccountNotFound
	}

	var sender, recipient *model.Account
	for i := range locked {
		switch locked[i].ID {
		case senderID:
			sender = &locked[i]
		case recipientID:
			recipient = &locked[i]
		}
	}
	if sender == nil || recipient == nil {
		return nil, ErrAccountNotFound
	}

	if sender.Balance.LessThan(amount) {
		return nil, ErrInsufficientBalance
	}

	newSenderBalance := sender.Balance.Sub(amount)
	newRecipientBalance := recipient.Balance.Add(amount)

	if _, err = tx.ExecContext(ctx,
		"UPDATE accounts SET balance = $2, updated_at = NOW() WHERE id = $1",
		senderID, newSenderBalance); err != nil {
		return nil, fmt.Errorf("failed to debit sender: %w", err)
	}
	if _, err = tx.ExecContext(ctx,
		"UPDATE accounts SET balance = $2, updated_at = NOW() WHERE id = $1",
		recipientID, newRecipientBalance); err != nil {
		return nil, fmt.Errorf("failed to credit recipient: %w", err)
	}

	transferID := uuid.New()

	sent := &model.Transaction{
		AccountID:         senderID,
		Kind:              model.TransactionKindSend,
		Amount:            amount,
		CounterpartyCode:  &recipient.WalletCode,
		CounterpartyEmail: &recipient.Email,
		Status:            model.TransactionStatusCompleted,
		TransferID:        &transferID,
	}
	if err = insertTransaction(ctx, tx, sent); err != nil {
		return nil, fmt.Errorf("failed to record send: %w", err)
	}

	received := &model.Transaction{
		AccountID:         recipientID,
		Kind:              model.TransactionKindReceive,
		Amount:            amount,
		CounterpartyCode:  &sender.WalletCode,
		CounterpartyEmail: &sender.Email,
		Status:            model.TransactionStatusCompleted,
		TransferID:        &transferID,
	}
	if err = insertTransaction(ctx, tx, received); err != nil {
		return nil, fmt.Errorf("failed to record receive: %w", err)
	}

	// Outbox row for the commission credit; the worker re-drives it if the
	// synchronous attempt after commit fails.
	if _, err = tx.ExecContext(ctx, `
		INSERT INTO commission_jobs (transfer_id, recipient_id, amount)
		VALUES ($1, $2, $3)`,
		transferID, recipientID, amount); err != nil {
		return nil, fmt.Errorf("failed to enqueue commission job: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	return &model.TransferResult{
		TransferID: transferID,
		Sent:       sent,
		Received:   received,
		NewBalance: newSenderBalance,
	}, nil
}

func insertTransaction(ctx context.Context, tx *sqlx.Tx, t *model.Transaction) error {
	if t.Status == "" {
		t.Status = model.TransactionStatusCompleted
	}
	return tx.QueryRowContext(ctx, `
		INSERT INTO transactions (account_id, kind, amount, counterparty_code, counterparty_email,
			status, transfer_id, withdrawal_id, network, address)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at`,
		t.AccountID,
		t.Kind,
		t.Amount,
		t.CounterpartyCode,
		t.CounterpartyEmail,
		t.Status,
		t.TransferID,
		t.WithdrawalID,
		t.Network,
		t.Address,
	).Scan(&t.ID, &t.CreatedAt)
}
