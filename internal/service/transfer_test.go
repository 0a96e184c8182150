package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/payvault/backend/internal/apperr"
	"github.com/payvault/backend/internal/model"
	"github.com/payvault/backend/internal/repository"
)

type fakeTransferStore struct {
	accounts    map[string]*model.Account // keyed by account id
	commissions *fakeCommissionStore
	transferErr error
	transfers   int
}

func (s *fakeTransferStore) GetAccount(_ context.Context, id string) (*model.Account, error) {
	account, ok := s.accounts[id]
	if !ok {
		return nil, repository.ErrAccountNotFound
	}
	return account, nil
}

func (s *fakeTransferStore) GetAccountByWalletCode(_ context.Context, code string) (*model.Account, error) {
	for _, account := range s.accounts {
		if account.WalletCode == code {
			return account, nil
		}
	}
	return nil, repository.ErrAccountNotFound
}

// Transfer mirrors the store contract: both balances move, both ledger
// records are written, and a commission job is enqueued for the recipient.
func (s *fakeTransferStore) Transfer(_ context.Context, senderID, recipientID string, amount decimal.Decimal) (*model.TransferResult, error) {
	if s.transferErr != nil {
		return nil, s.transferErr
	}
	sender := s.accounts[senderID]
	recipient := s.accounts[recipientID]
	if sender.Balance.LessThan(amount) {
		return nil, repository.ErrInsufficientBalance
	}

	sender.Balance = sender.Balance.Sub(amount)
	recipient.Balance = recipient.Balance.Add(amount)
	s.transfers++

	transferID := uuid.New()
	job := &model.CommissionJob{
		ID:          uuid.New(),
		TransferID:  transferID,
		RecipientID: recipientID,
		Amount:      amount,
		Status:      model.CommissionJobStatusPending,
	}
	s.commissions.jobs[transferID] = job

	now := time.Now()
	return &model.TransferResult{
		TransferID: transferID,
		Sent: &model.Transaction{
			ID: uuid.New(), AccountID: senderID, Kind: model.TransactionKindSend,
			Amount: amount, Status: model.TransactionStatusCompleted, CreatedAt: now,
		},
		Received: &model.Transaction{
			ID: uuid.New(), AccountID: recipientID, Kind: model.TransactionKindReceive,
			Amount: amount, Status: model.TransactionStatusCompleted, CreatedAt: now,
		},
		NewBalance: sender.Balance,
	}, nil
}

func pin(s string) *string { return &s }

func newTransferFixture() (*fakeTransferStore, *TransferEngine) {
	commissions := newFakeCommissionStore()
	commissions.edges["bob"] = &model.ReferralEdge{ReferrerID: "carol", ReferredID: "bob"}

	store := &fakeTransferStore{
		accounts: map[string]*model.Account{
			"alice": {ID: "alice", WalletCode: "111111111", Balance: dec("100.00"), TransactionPassword: pin("123456")},
			"bob":   {ID: "bob", WalletCode: "222222222", Balance: dec("0")},
			"carol": {ID: "carol", WalletCode: "333333333", Balance: dec("0")},
		},
		commissions: commissions,
	}
	engine := NewTransferEngine(store, NewCommissionEngine(commissions, dec("0.025"), 3))
	return store, engine
}

func TestTransferMovesBalancesAndPaysCommission(t *testing.T) {
	store, engine := newTransferFixture()

	result, err := engine.Transfer(context.Background(), "alice", TransferInput{
		RecipientWalletCode: "222222222",
		Amount:              dec("30.00"),
		PIN:                 "123456",
	})
	require.NoError(t, err)

	assert.True(t, result.NewBalance.Equal(dec("70")), "got %s", result.NewBalance)
	assert.True(t, store.accounts["alice"].Balance.Equal(dec("70")))
	assert.True(t, store.accounts["bob"].Balance.Equal(dec("30")))
	assert.Equal(t, model.TransactionKindSend, result.Sent.Kind)
	assert.Equal(t, model.TransactionKindReceive, result.Received.Kind)

	// Bob was referred by Carol: 2.5% of 30.00.
	require.Len(t, store.commissions.credits, 1)
	assert.Equal(t, "carol", store.commissions.credits[0].referrerID)
	assert.True(t, store.commissions.credits[0].amount.Equal(dec("0.75")),
		"got %s", store.commissions.credits[0].amount)
}

func TestTransferRejectsNonPositiveAmount(t *testing.T) {
	store, engine := newTransferFixture()

	for _, amount := range []string{"0", "-5"} {
		_, err := engine.Transfer(context.Background(), "alice", TransferInput{
			RecipientWalletCode: "222222222",
			Amount:              dec(amount),
			PIN:                 "123456",
		})
		assert.Equal(t, apperr.Validation, apperr.KindOf(err))
	}
	assert.Zero(t, store.transfers, "no ledger records on rejected transfer")
}

func TestTransferRequiresConfiguredPIN(t *testing.T) {
	store, engine := newTransferFixture()
	store.accounts["alice"].TransactionPassword = nil

	_, err := engine.Transfer(context.Background(), "alice", TransferInput{
		RecipientWalletCode: "222222222",
		Amount:              dec("10"),
		PIN:                 "123456",
	})
	assert.Equal(t, apperr.Policy, apperr.KindOf(err))
	assert.Zero(t, store.transfers)
}

func TestTransferRejectsWrongPIN(t *testing.T) {
	store, engine := newTransferFixture()

	_, err := engine.Transfer(context.Background(), "alice", TransferInput{
		RecipientWalletCode: "222222222",
		Amount:              dec("10"),
		PIN:                 "654321",
	})
	assert.Equal(t, apperr.Policy, apperr.KindOf(err))
	assert.Zero(t, store.transfers)
}

func TestTransferInsufficientBalanceLeavesStateUntouched(t *testing.T) {
	store, engine := newTransferFixture()

	_, err := engine.Transfer(context.Background(), "alice", TransferInput{
		RecipientWalletCode: "222222222",
		Amount:              dec("100.01"),
		PIN:                 "123456",
	})
	assert.Equal(t, apperr.Policy, apperr.KindOf(err))
	assert.True(t, store.accounts["alice"].Balance.Equal(dec("100.00")))
	assert.True(t, store.accounts["bob"].Balance.Equal(dec("0")))
	assert.Zero(t, store.transfers)
}

func TestTransferUnknownRecipient(t *testing.T) {
	_, engine := newTransferFixture()

	_, err := engine.Transfer(context.Background(), "alice", TransferInput{
		RecipientWalletCode: "999999999",
		Amount:              dec("10"),
		PIN:                 "123456",
	})
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestTransferToSelfRejected(t *testing.T) {
	store, engine := newTransferFixture()

	_, err := engine.Transfer(context.Background(), "alice", TransferInput{
		RecipientWalletCode: "111111111",
		Amount:              dec("10"),
		PIN:                 "123456",
	})
	assert.Equal(t, apperr.Policy, apperr.KindOf(err))
	assert.Zero(t, store.transfers)
}

func TestTransferLostRaceMapsToPolicy(t *testing.T) {
	// Balance drained between the precondition check and the row lock.
	store, engine := newTransferFixture()
	store.transferErr = repository.ErrInsufficientBalance

	_, err := engine.Transfer(context.Background(), "alice", TransferInput{
		RecipientWalletCode: "222222222",
		Amount:              dec("10"),
		PIN:                 "123456",
	})
	assert.Equal(t, apperr.Policy, apperr.KindOf(err))
}

func TestTransferStoreFailureMapsToConsistency(t *testing.T) {
	store, engine := newTransferFixture()
	store.transferErr = errors.New("tx aborted")

	_, err := engine.Transfer(context.Background(), "alice", TransferInput{
		RecipientWalletCode: "222222222",
		Amount:              dec("10"),
		PIN:                 "123456",
	})
	assert.Equal(t, apperr.Consistency, apperr.KindOf(err))
}

func TestTransferSurvivesCommissionFailure(t *testing.T) {
	store, engine := newTransferFixture()
	store.commissions.applyErr = errors.New("connection reset")

	result, err := engine.Transfer(context.Background(), "alice", TransferInput{
		RecipientWalletCode: "222222222",
		Amount:              dec("30.00"),
		PIN:                 "123456",
	})
	require.NoError(t, err, "commission failure must not surface to the sender")
	assert.True(t, result.NewBalance.Equal(dec("70")))

	// The outbox job stays pending for the worker.
	assert.Len(t, store.commissions.failures, 1)
	assert.Equal(t, model.CommissionJobStatusPending,
		store.commissions.jobs[result.TransferID].Status)
}
