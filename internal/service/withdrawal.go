package service

import (
	"context"
	"errors"
	"strings"

	"github.com/payvault/backend/internal/apperr"
	"github.com/payvault/backend/internal/config"
	"github.com/payvault/backend/internal/model"
	"github.com/payvault/backend/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type WithdrawalStore interface {
	GetAccount(ctx context.Context, id string) (*model.Account, error)
	Withdraw(ctx context.Context, accountID string, amount decimal.Decimal, network model.Network, address string) (*model.WithdrawalRequest, decimal.Decimal, error)
	GetWithdrawals(ctx context.Context, accountID string, limit, offset int) ([]model.WithdrawalRequest, error)
}

// WithdrawalEngine validates and records external withdrawal requests. Funds
// are reserved at request time; settlement is manual. The 1% fee is disclosed
// on the receipt but the full requested amount is what gets debited.
type WithdrawalEngine struct {
	store    WithdrawalStore
	platform config.PlatformConfig
	log      *logrus.Entry
}

func NewWithdrawalEngine(store WithdrawalStore, platform config.PlatformConfig) *WithdrawalEngine {
	return &WithdrawalEngine{
		store:    store,
		platform: platform,
		log:      logrus.WithField("component", "withdrawal"),
	}
}

type WithdrawInput struct {
	Amount  decimal.Decimal
	Network model.Network
	Address string
	PIN     string
}

func (e *WithdrawalEngine) Request(ctx context.Context, accountID string, in WithdrawInput) (*model.WithdrawalReceipt, error) {
	if !in.Amount.IsPositive() {
		return nil, apperr.New(apperr.Validation, "amount must be positive")
	}
	if !in.Network.Valid() {
		return nil, apperr.New(apperr.Validation, "unsupported network")
	}
	if in.Amount.LessThan(e.platform.MinWithdrawal) {
		return nil, apperr.Newf(apperr.Policy, "minimum withdrawal amount is %s", e.platform.MinWithdrawal.String())
	}

	account, err := e.store.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !account.HasPIN() {
		return nil, apperr.New(apperr.Policy, "transaction password not configured")
	}
	if *account.TransactionPassword != in.PIN {
		return nil, apperr.New(apperr.Policy, "invalid transaction password")
	}
	if account.Balance.LessThan(in.Amount) {
		return nil, apperr.New(apperr.Policy, "insufficient balance")
	}

	in.Address = strings.TrimSpace(in.Address)
	if !strings.HasPrefix(in.Address, in.Network.AddressPrefix()) || len(in.Address) <= len(in.Network.AddressPrefix()) {
		return nil, apperr.Newf(apperr.Policy, "invalid %s address format", in.Network)
	}

	request, newBalance, err := e.store.Withdraw(ctx, accountID, in.Amount, in.Network, in.Address)
	if err != nil {
		if errors.Is(err, repository.ErrInsufficientBalance) {
			return nil, apperr.New(apperr.Policy, "insufficient balance")
		}
		return nil, apperr.Wrap(apperr.Consistency, "withdrawal aborted, retry the operation", err)
	}

	e.log.WithFields(logrus.Fields{
		"withdrawal_id": request.ID,
		"account_id":    accountID,
		"amount":        in.Amount.String(),
		"network":       in.Network,
	}).Info("withdrawal requested")

	fee := in.Amount.Mul(e.platform.WithdrawalFeeRate)
	return &model.WithdrawalReceipt{
		Request:    request,
		Fee:        fee,
		NetAmount:  in.Amount.Sub(fee),
		NewBalance: newBalance,
	}, nil
}

func (e *WithdrawalEngine) History(ctx context.Context, accountID string, limit, offset int) ([]model.WithdrawalRequest, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return e.store.GetWithdrawals(ctx, accountID, limit, offset)
}
