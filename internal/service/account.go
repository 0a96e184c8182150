package service

import (
	"context"
	"errors"

	"github.com/payvault/backend/internal/apperr"
	"github.com/payvault/backend/internal/model"
	"github.com/payvault/backend/internal/repository"
)

type AccountStore interface {
	GetAccount(ctx context.Context, id string) (*model.Account, error)
	SetTransactionPassword(ctx context.Context, id, pin string) error
	SetBalanceVisibility(ctx context.Context, id string, visible bool) error
	GetTransactions(ctx context.Context, accountID string, limit, offset int) ([]model.Transaction, error)
	GetReferralStats(ctx context.Context, accountID string) (*model.ReferralStats, error)
}

// AccountService covers the read side and account preferences: profile,
// ledger history, referral stats, PIN and balance visibility.
type AccountService struct {
	store AccountStore
}

func NewAccountService(store AccountStore) *AccountService {
	return &AccountService{store: store}
}

func (s *AccountService) Get(ctx context.Context, id string) (*model.Account, error) {
	account, err := s.store.GetAccount(ctx, id)
	if errors.Is(err, repository.ErrAccountNotFound) {
		return nil, apperr.New(apperr.NotFound, "account not found")
	}
	return account, err
}

// SetTransactionPassword configures the 6-digit PIN that authorizes outbound
// balance movement. It is distinct from the login credential, which lives
// with the identity provider.
func (s *AccountService) SetTransactionPassword(ctx context.Context, id, pin string) error {
	if !validPIN(pin) {
		return apperr.New(apperr.Validation, "transaction password must be exactly 6 digits")
	}
	err := s.store.SetTransactionPassword(ctx, id, pin)
	if errors.Is(err, repository.ErrAccountNotFound) {
		return apperr.New(apperr.NotFound, "account not found")
	}
	return err
}

func (s *AccountService) SetBalanceVisibility(ctx context.Context, id string, visible bool) error {
	err := s.store.SetBalanceVisibility(ctx, id, visible)
	if errors.Is(err, repository.ErrAccountNotFound) {
		return apperr.New(apperr.NotFound, "account not found")
	}
	return err
}

func (s *AccountService) History(ctx context.Context, id string, limit, offset int) ([]model.Transaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.GetTransactions(ctx, id, limit, offset)
}

func (s *AccountService) ReferralStats(ctx context.Context, id string) (*model.ReferralStats, error) {
	stats, err := s.store.GetReferralStats(ctx, id)
	if errors.Is(err, repository.ErrAccountNotFound) {
		return nil, apperr.New(apperr.NotFound, "account not found")
	}
	return stats, err
}

func validPIN(pin string) bool {
	if len(pin) != 6 {
		return false
	}
	for _, ch := range pin {
		if ch < '0' || ch > '9' {
			return false
		}
	}
	return true
}
