package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/payvault/backend/internal/model"
	"github.com/shopspring/decimal"
)

var (
	ErrAccountNotFound           = errors.New("account not found")
	ErrDuplicateWalletCode       = errors.New("wallet code already assigned")
	ErrDuplicateReferralCode     = errors.New("referral code already assigned")
	ErrDuplicateRegistrationHash = errors.New("registration hash already consumed")
	ErrDuplicateEmail            = errors.New("email already registered")
)

func (r *Repository) GetAccount(ctx context.Context, id string) (*model.Account, error) {
	var account model.Account
	err := r.db.GetContext(ctx, &account, "SELECT * FROM accounts WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

func (r *Repository) GetAccountByWalletCode(ctx context.Context, code string) (*model.Account, error) {
	var account model.Account
	err := r.db.GetContext(ctx, &account, "SELECT * FROM accounts WHERE wallet_code = $1", code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

func (r *Repository) GetAccountByReferralCode(ctx context.Context, code string) (*model.Account, error) {
	var account model.Account
	err := r.db.GetContext(ctx, &account, "SELECT * FROM accounts WHERE referral_code = $1", code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

// RegistrationHashConsumed reports whether a deposit hash was already used by
// a previous signup. The unique constraint on accounts.registration_hash is
// the authoritative guard; this is the fast pre-check.
func (r *Repository) RegistrationHashConsumed(ctx context.Context, txHash string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		"SELECT EXISTS (SELECT 1 FROM accounts WHERE registration_hash = $1)", txHash)
	return exists, err
}

// CreateAccount inserts a new account. Uniqueness races on wallet code,
// referral code, email and registration hash surface as the sentinel errors
// above so the registry can regenerate codes or refuse the signup.
func (r *Repository) CreateAccount(ctx context.Context, account *model.Account) error {
	query := `
		INSERT INTO accounts (id, email, phone, wallet_code, referral_code, balance,
			approved, registration_hash, payment_amount, payment_from)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		account.ID,
		account.Email,
		account.Phone,
		account.WalletCode,
		account.ReferralCode,
		account.Balance,
		account.Approved,
		account.RegistrationHash,
		account.PaymentAmount,
		account.PaymentFrom,
	).Scan(&account.CreatedAt, &account.UpdatedAt)
	switch {
	case uniqueViolation(err, "accounts_wallet_code_key"):
		return ErrDuplicateWalletCode
	case uniqueViolation(err, "accounts_referral_code_key"):
		return ErrDuplicateReferralCode
	case uniqueViolation(err, "accounts_registration_hash_key"):
		return ErrDuplicateRegistrationHash
	case uniqueViolation(err, "accounts_email_key"):
		return ErrDuplicateEmail
	}
	return err
}

func (r *Repository) SetTransactionPassword(ctx context.Context, id, pin string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE accounts SET transaction_password = $2, updated_at = NOW() WHERE id = $1", id, pin)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *Repository) SetBalanceVisibility(ctx context.Context, id string, visible bool) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE accounts SET balance_visible = $2, updated_at = NOW() WHERE id = $1", id, visible)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *Repository) SetAccountApproval(ctx context.Context, id string, approved bool, reason *string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE accounts SET approved = $2, rejection_reason = $3, updated_at = NOW() WHERE id = $1",
		id, approved, reason)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *Repository) ListPendingAccounts(ctx context.Context, limit int) ([]model.Account, error) {
	var accounts []model.Account
	err := r.db.SelectContext(ctx, &accounts,
		"SELECT * FROM accounts WHERE approved = false ORDER BY created_at LIMIT $1", limit)
	return accounts, err
}

type PlatformStats struct {
	TotalAccounts      int             `db:"total_accounts"`
	PendingApprovals   int             `db:"pending_approvals"`
	PendingWithdrawals int             `db:"pending_withdrawals"`
	TotalBalance       decimal.Decimal `db:"total_balance"`
}

func (r *Repository) GetPlatformStats(ctx context.Context) (*PlatformStats, error) {
	var stats PlatformStats
	err := r.db.GetContext(ctx, &stats, `
		SELECT
			(SELECT COUNT(*) FROM accounts) AS total_accounts,
			(SELECT COUNT(*) FROM accounts WHERE approved = false) AS pending_approvals,
			(SELECT COUNT(*) FROM withdrawal_requests WHERE status = 'pending') AS pending_withdrawals,
			(SELECT COALESCE(SUM(balance), 0) FROM accounts) AS total_balance`)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAccountNotFound
	}
	return nil
}
