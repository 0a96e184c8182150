package service

import (
	"context"
	"errors"

	"github.com/payvault/backend/internal/apperr"
	"github.com/payvault/backend/internal/model"
	"github.com/payvault/backend/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type TransferStore interface {
	GetAccount(ctx context.Context, id string) (*model.Account, error)
	GetAccountByWalletCode(ctx context.Context, code string) (*model.Account, error)
	Transfer(ctx context.Context, senderID, recipientID string, amount decimal.Decimal) (*model.TransferResult, error)
}

// TransferEngine executes peer-to-peer transfers. Precondition checks run in
// a fixed order and the first failure wins; the store transfer itself is
// atomic with both ledger records.
type TransferEngine struct {
	store       TransferStore
	commissions *CommissionEngine
	log         *logrus.Entry
}

func NewTransferEngine(store TransferStore, commissions *CommissionEngine) *TransferEngine {
	return &TransferEngine{
		store:       store,
		commissions: commissions,
		log:         logrus.WithField("component", "transfer"),
	}
}

type TransferInput struct {
	RecipientWalletCode string
	Amount              decimal.Decimal
	PIN                 string
}

func (e *TransferEngine) Transfer(ctx context.Context, senderID string, in TransferInput) (*model.TransferResult, error) {
	if !in.Amount.IsPositive() {
		return nil, apperr.New(apperr.Validation, "amount must be positive")
	}

	sender, err := e.store.GetAccount(ctx, senderID)
	if err != nil {
		return nil, err
	}

	if !sender.HasPIN() {
		return nil, apperr.New(apperr.Policy, "transaction password not configured")
	}
	if *sender.TransactionPassword != in.PIN {
		return nil, apperr.New(apperr.Policy, "invalid transaction password")
	}
	if sender.Balance.LessThan(in.Amount) {
		return nil, apperr.New(apperr.Policy, "insufficient balance")
	}

	recipient, err := e.store.GetAccountByWalletCode(ctx, in.RecipientWalletCode)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, apperr.New(apperr.NotFound, "no account with this wallet code")
		}
		return nil, err
	}
	if recipient.ID == sender.ID {
		return nil, apperr.New(apperr.Policy, "cannot send money to yourself")
	}

	result, err := e.store.Transfer(ctx, sender.ID, recipient.ID, in.Amount)
	if err != nil {
		// Balance is re-checked under the row lock; a concurrent transfer
		// may have drained it after the check above.
		if errors.Is(err, repository.ErrInsufficientBalance) {
			return nil, apperr.New(apperr.Policy, "insufficient balance")
		}
		return nil, apperr.Wrap(apperr.Consistency, "transfer aborted, retry the operation", err)
	}

	e.log.WithFields(logrus.Fields{
		"transfer_id": result.TransferID,
		"sender_id":   sender.ID,
		"recipient":   recipient.WalletCode,
		"amount":      in.Amount.String(),
	}).Info("transfer completed")

	// The transfer is committed; a commission failure must never surface to
	// the sender. The worker re-drives the outbox row if this attempt fails.
	if err := e.commissions.ApplyForTransfer(ctx, result.TransferID); err != nil {
		e.log.WithError(err).WithField("transfer_id", result.TransferID).
			Warn("commission credit deferred to worker")
	}

	return result, nil
}
