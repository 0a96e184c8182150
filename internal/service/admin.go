package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/payvault/backend/internal/apperr"
	"github.com/payvault/backend/internal/model"
	"github.com/payvault/backend/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type AdminStore interface {
	GetAccount(ctx context.Context, id string) (*model.Account, error)
	SetAccountApproval(ctx context.Context, id string, approved bool, reason *string) error
	ListPendingAccounts(ctx context.Context, limit int) ([]model.Account, error)
	ListPendingWithdrawals(ctx context.Context, limit int) ([]model.WithdrawalRequest, error)
	SettleWithdrawal(ctx context.Context, id uuid.UUID, status model.WithdrawalStatus, notes string) error
	GetPlatformStats(ctx context.Context) (*repository.PlatformStats, error)
	LedgerSum(ctx context.Context, accountID string) (decimal.Decimal, error)
}

// AdminService carries the administrative override operations: account
// approval for fraud review and withdrawal settlement. It only flips status
// fields; rejecting a withdrawal does not credit the reserved funds back.
type AdminService struct {
	store AdminStore
	log   *logrus.Entry
}

func NewAdminService(store AdminStore) *AdminService {
	return &AdminService{
		store: store,
		log:   logrus.WithField("component", "admin"),
	}
}

func (s *AdminService) ApproveAccount(ctx context.Context, accountID string) error {
	err := s.store.SetAccountApproval(ctx, accountID, true, nil)
	if errors.Is(err, repository.ErrAccountNotFound) {
		return apperr.New(apperr.NotFound, "account not found")
	}
	if err == nil {
		s.log.WithField("account_id", accountID).Info("account approved")
	}
	return err
}

func (s *AdminService) RejectAccount(ctx context.Context, accountID, reason string) error {
	if reason == "" {
		reason = "manual rejection by admin"
	}
	err := s.store.SetAccountApproval(ctx, accountID, false, &reason)
	if errors.Is(err, repository.ErrAccountNotFound) {
		return apperr.New(apperr.NotFound, "account not found")
	}
	if err == nil {
		s.log.WithField("account_id", accountID).Info("account rejected")
	}
	return err
}

func (s *AdminService) PendingAccounts(ctx context.Context) ([]model.Account, error) {
	return s.store.ListPendingAccounts(ctx, 100)
}

func (s *AdminService) ApproveWithdrawal(ctx context.Context, id uuid.UUID, notes string) error {
	return s.settleWithdrawal(ctx, id, model.WithdrawalStatusApproved, notes)
}

func (s *AdminService) RejectWithdrawal(ctx context.Context, id uuid.UUID, notes string) error {
	return s.settleWithdrawal(ctx, id, model.WithdrawalStatusRejected, notes)
}

func (s *AdminService) settleWithdrawal(ctx context.Context, id uuid.UUID, status model.WithdrawalStatus, notes string) error {
	err := s.store.SettleWithdrawal(ctx, id, status, notes)
	if errors.Is(err, repository.ErrWithdrawalNotPending) {
		return apperr.New(apperr.Policy, "withdrawal request is not pending")
	}
	if err == nil {
		s.log.WithFields(logrus.Fields{
			"withdrawal_id": id,
			"status":        status,
		}).Info("withdrawal settled")
	}
	return err
}

func (s *AdminService) PendingWithdrawals(ctx context.Context) ([]model.WithdrawalRequest, error) {
	return s.store.ListPendingWithdrawals(ctx, 100)
}

// AccountAudit compares a stored balance against the signed sum of the
// account's ledger records. The two are written in the same transactions, so
// a mismatch means corruption and needs manual investigation.
type AccountAudit struct {
	AccountID  string          `json:"account_id"`
	Balance    decimal.Decimal `json:"balance"`
	LedgerSum  decimal.Decimal `json:"ledger_sum"`
	Consistent bool            `json:"consistent"`
}

func (s *AdminService) AuditAccount(ctx context.Context, accountID string) (*AccountAudit, error) {
	account, err := s.store.GetAccount(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, apperr.New(apperr.NotFound, "account not found")
		}
		return nil, err
	}

	sum, err := s.store.LedgerSum(ctx, accountID)
	if err != nil {
		return nil, err
	}

	audit := &AccountAudit{
		AccountID:  accountID,
		Balance:    account.Balance,
		LedgerSum:  sum,
		Consistent: account.Balance.Equal(sum),
	}
	if !audit.Consistent {
		s.log.WithFields(logrus.Fields{
			"account_id": accountID,
			"balance":    account.Balance.String(),
			"ledger_sum": sum.String(),
		}).Error("balance does not match ledger sum")
	}
	return audit, nil
}

func (s *AdminService) Stats(ctx context.Context) (*repository.PlatformStats, error) {
	return s.store.GetPlatformStats(ctx)
}
