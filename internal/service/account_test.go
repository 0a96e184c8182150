package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/payvault/backend/internal/apperr"
	"github.com/payvault/backend/internal/model"
	"github.com/payvault/backend/internal/repository"
)

type fakeAccountStore struct {
	accounts   map[string]*model.Account
	pins       map[string]string
	visibility map[string]bool
	lastLimit  int
	lastOffset int
}

func newFakeAccountStore() *fakeAccountStore {
	return &fakeAccountStore{
		accounts:   map[string]*model.Account{"alice": {ID: "alice", ReferralCode: "ALICEREF"}},
		pins:       make(map[string]string),
		visibility: make(map[string]bool),
	}
}

func (s *fakeAccountStore) GetAccount(_ context.Context, id string) (*model.Account, error) {
	account, ok := s.accounts[id]
	if !ok {
		return nil, repository.ErrAccountNotFound
	}
	return account, nil
}

func (s *fakeAccountStore) SetTransactionPassword(_ context.Context, id, pin string) error {
	if _, ok := s.accounts[id]; !ok {
		return repository.ErrAccountNotFound
	}
	s.pins[id] = pin
	return nil
}

func (s *fakeAccountStore) SetBalanceVisibility(_ context.Context, id string, visible bool) error {
	if _, ok := s.accounts[id]; !ok {
		return repository.ErrAccountNotFound
	}
	s.visibility[id] = visible
	return nil
}

func (s *fakeAccountStore) GetTransactions(_ context.Context, _ string, limit, offset int) ([]model.Transaction, error) {
	s.lastLimit = limit
	s.lastOffset = offset
	return nil, nil
}

func (s *fakeAccountStore) GetReferralStats(_ context.Context, id string) (*model.ReferralStats, error) {
	account, ok := s.accounts[id]
	if !ok {
		return nil, repository.ErrAccountNotFound
	}
	return &model.ReferralStats{ReferralCode: account.ReferralCode}, nil
}

func TestGetUnknownAccountIsNotFound(t *testing.T) {
	svc := NewAccountService(newFakeAccountStore())

	_, err := svc.Get(context.Background(), "nobody")
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestSetTransactionPasswordRequiresSixDigits(t *testing.T) {
	store := newFakeAccountStore()
	svc := NewAccountService(store)

	for _, bad := range []string{"", "12345", "1234567", "12345a", "abcdef", "12 456"} {
		err := svc.SetTransactionPassword(context.Background(), "alice", bad)
		assert.Equal(t, apperr.Validation, apperr.KindOf(err), "pin %q", bad)
	}
	assert.Empty(t, store.pins)

	require.NoError(t, svc.SetTransactionPassword(context.Background(), "alice", "007123"))
	assert.Equal(t, "007123", store.pins["alice"])
}

func TestSetBalanceVisibility(t *testing.T) {
	store := newFakeAccountStore()
	svc := NewAccountService(store)

	require.NoError(t, svc.SetBalanceVisibility(context.Background(), "alice", false))
	assert.False(t, store.visibility["alice"])

	err := svc.SetBalanceVisibility(context.Background(), "nobody", true)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestHistoryClampsPaging(t *testing.T) {
	store := newFakeAccountStore()
	svc := NewAccountService(store)

	_, err := svc.History(context.Background(), "alice", -1, -1)
	require.NoError(t, err)
	assert.Equal(t, 20, store.lastLimit)
	assert.Equal(t, 0, store.lastOffset)

	_, err = svc.History(context.Background(), "alice", 101, 60)
	require.NoError(t, err)
	assert.Equal(t, 20, store.lastLimit)
	assert.Equal(t, 60, store.lastOffset)

	_, err = svc.History(context.Background(), "alice", 50, 0)
	require.NoError(t, err)
	assert.Equal(t, 50, store.lastLimit)
}

func TestReferralStats(t *testing.T) {
	svc := NewAccountService(newFakeAccountStore())

	stats, err := svc.ReferralStats(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "ALICEREF", stats.ReferralCode)

	_, err = svc.ReferralStats(context.Background(), "nobody")
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}
