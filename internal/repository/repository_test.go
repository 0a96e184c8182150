package repository

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewWithDB(db), mock
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var accountColumns = []string{
	"id", "email", "phone", "wallet_code", "referral_code", "balance",
	"transaction_password", "approved", "registration_hash", "payment_amount",
	"payment_from", "balance_visible", "total_earning", "total_referral",
	"todays_earning", "todays_referral", "aggregates_date", "rejection_reason",
	"created_at", "updated_at",
}

func accountRows() *sqlmock.Rows {
	return sqlmock.NewRows(accountColumns)
}

func addAccountRow(rows *sqlmock.Rows, id, walletCode, email, balance string) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(
		id, email, "", walletCode, "REF"+walletCode[:5], balance,
		"123456", true, "0xhash-"+id, "10", "0xsender",
		true, "0", 0, "0", 0, now, nil, now, now,
	)
}
