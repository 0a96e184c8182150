package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Network string

const (
	NetworkBEP20 Network = "BEP-20"
	NetworkTRC20 Network = "TRC-20"
)

// AddressPrefix returns the address prefix convention for the network.
func (n Network) AddressPrefix() string {
	switch n {
	case NetworkBEP20:
		return "0x"
	case NetworkTRC20:
		return "T"
	default:
		return ""
	}
}

func (n Network) Valid() bool {
	return n == NetworkBEP20 || n == NetworkTRC20
}

type WithdrawalStatus string

const (
	WithdrawalStatusPending  WithdrawalStatus = "pending"
	WithdrawalStatusApproved WithdrawalStatus = "approved"
	WithdrawalStatusRejected WithdrawalStatus = "rejected"
)

type WithdrawalRequest struct {
	ID          uuid.UUID        `json:"id" db:"id"`
	AccountID   string           `json:"account_id" db:"account_id"`
	Amount      decimal.Decimal  `json:"amount" db:"amount"`
	Network     Network          `json:"network" db:"network"`
	Address     string           `json:"address" db:"address"`
	Status      WithdrawalStatus `json:"status" db:"status"`
	AdminNotes  string           `json:"admin_notes" db:"admin_notes"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
	ProcessedAt *time.Time       `json:"processed_at,omitempty" db:"processed_at"`
}

// WithdrawalReceipt is returned to the caller. The fee is disclosed for
// display; the full requested amount is what gets debited.
type WithdrawalReceipt struct {
	Request    *WithdrawalRequest `json:"request"`
	Fee        decimal.Decimal    `json:"fee"`
	NetAmount  decimal.Decimal    `json:"net_amount"`
	NewBalance decimal.Decimal    `json:"new_balance"`
}
