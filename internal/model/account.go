package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Account struct {
	ID                  string          `json:"id" db:"id"`
	Email               string          `json:"email" db:"email"`
	Phone               string          `json:"phone" db:"phone"`
	WalletCode          string          `json:"wallet_code" db:"wallet_code"`
	ReferralCode        string          `json:"referral_code" db:"referral_code"`
	Balance             decimal.Decimal `json:"balance" db:"balance"`
	TransactionPassword *string         `json:"-" db:"transaction_password"`
	Approved            bool            `json:"approved" db:"approved"`
	RegistrationHash    string          `json:"registration_hash" db:"registration_hash"`
	PaymentAmount       decimal.Decimal `json:"payment_amount" db:"payment_amount"`
	PaymentFrom         string          `json:"payment_from" db:"payment_from"`
	BalanceVisible      bool            `json:"balance_visible" db:"balance_visible"`
	TotalEarning        decimal.Decimal `json:"total_earning" db:"total_earning"`
	TotalReferral       int             `json:"total_referral" db:"total_referral"`
	TodaysEarning       decimal.Decimal `json:"todays_earning" db:"todays_earning"`
	TodaysReferral      int             `json:"todays_referral" db:"todays_referral"`
	AggregatesDate      time.Time       `json:"-" db:"aggregates_date"`
	RejectionReason     *string         `json:"rejection_reason,omitempty" db:"rejection_reason"`
	CreatedAt           time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at" db:"updated_at"`
}

// HasPIN reports whether the account has configured a transaction password.
func (a *Account) HasPIN() bool {
	return a.TransactionPassword != nil && *a.TransactionPassword != ""
}
