package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionKind string

const (
	TransactionKindSend       TransactionKind = "send"
	TransactionKindReceive    TransactionKind = "receive"
	TransactionKindWithdrawal TransactionKind = "withdrawal"
	TransactionKindReferral   TransactionKind = "referral"
	TransactionKindCommission TransactionKind = "commission"
)

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusRejected  TransactionStatus = "rejected"
)

// Transaction is an append-only ledger record. Every balance mutation writes
// exactly one record from the perspective of the account whose balance changed.
type Transaction struct {
	ID                uuid.UUID         `json:"id" db:"id"`
	AccountID         string            `json:"account_id" db:"account_id"`
	Kind              TransactionKind   `json:"kind" db:"kind"`
	Amount            decimal.Decimal   `json:"amount" db:"amount"`
	CounterpartyCode  *string           `json:"counterparty_code,omitempty" db:"counterparty_code"`
	CounterpartyEmail *string           `json:"counterparty_email,omitempty" db:"counterparty_email"`
	Status            TransactionStatus `json:"status" db:"status"`
	TransferID        *uuid.UUID        `json:"transfer_id,omitempty" db:"transfer_id"`
	WithdrawalID      *uuid.UUID        `json:"withdrawal_id,omitempty" db:"withdrawal_id"`
	Network           *string           `json:"network,omitempty" db:"network"`
	Address           *string           `json:"address,omitempty" db:"address"`
	CreatedAt         time.Time         `json:"created_at" db:"created_at"`
}

// Signed returns the amount with the sign it contributes to the owning
// account's balance: debits negative, credits positive.
func (t *Transaction) Signed() decimal.Decimal {
	switch t.Kind {
	case TransactionKindSend, TransactionKindWithdrawal:
		return t.Amount.Neg()
	default:
		return t.Amount
	}
}

// TransferResult is what TransferEngine returns: both sides of a completed
// peer-to-peer transfer.
type TransferResult struct {
	TransferID uuid.UUID       `json:"transfer_id"`
	Sent       *Transaction    `json:"sent"`
	Received   *Transaction    `json:"received"`
	NewBalance decimal.Decimal `json:"new_balance"`
}
