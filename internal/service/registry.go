package service

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"strings"

	"github.com/payvault/backend/internal/apperr"
	"github.com/payvault/backend/internal/config"
	"github.com/payvault/backend/internal/explorer"
	"github.com/payvault/backend/internal/identity"
	"github.com/payvault/backend/internal/model"
	"github.com/payvault/backend/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// codeAttempts bounds the regeneration loop for wallet and referral codes.
// The 9-digit space makes collisions rare but the birthday bound keeps them
// possible, so regeneration is mandatory and exhaustion is an error.
const codeAttempts = 5

const referralAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Verifier confirms a claimed deposit hash pays the platform. Implemented by
// explorer.Client.
type Verifier interface {
	VerifyDeposit(ctx context.Context, txHash string, expectedAmount decimal.Decimal) (*explorer.Deposit, error)
}

type RegistryStore interface {
	RegistrationHashConsumed(ctx context.Context, txHash string) (bool, error)
	CreateAccount(ctx context.Context, account *model.Account) error
	GetAccountByReferralCode(ctx context.Context, code string) (*model.Account, error)
	CreditSignupBonus(ctx context.Context, referrerID, referredID string, bonus decimal.Decimal) (bool, error)
}

// AccountRegistry creates accounts: it gates signup on a verified deposit,
// enforces one account per deposit hash, and pays the referrer's signup
// bonus.
type AccountRegistry struct {
	store    RegistryStore
	verifier Verifier
	ids      identity.Provider
	platform config.PlatformConfig
	log      *logrus.Entry
}

func NewAccountRegistry(store RegistryStore, verifier Verifier, ids identity.Provider, platform config.PlatformConfig) *AccountRegistry {
	return &AccountRegistry{
		store:    store,
		verifier: verifier,
		ids:      ids,
		platform: platform,
		log:      logrus.WithField("component", "registry"),
	}
}

type RegisterInput struct {
	Email         string
	Password      string
	Phone         string
	ReferralCode  string // optional, someone else's code
	DepositTxHash string
}

func (r *AccountRegistry) Register(ctx context.Context, in RegisterInput) (*model.Account, error) {
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	in.DepositTxHash = strings.TrimSpace(in.DepositTxHash)

	if in.Email == "" || !strings.Contains(in.Email, "@") {
		return nil, apperr.New(apperr.Validation, "a valid email is required")
	}
	if len(in.Password) < 6 {
		return nil, apperr.New(apperr.Validation, "password must be at least 6 characters")
	}
	if in.DepositTxHash == "" {
		return nil, apperr.New(apperr.Validation, "deposit transaction hash is required")
	}

	deposit, err := r.verifier.VerifyDeposit(ctx, in.DepositTxHash, r.platform.SignupDeposit)
	if err != nil {
		if errors.Is(err, explorer.ErrExplorerUnavailable) {
			return nil, apperr.Wrap(apperr.External, "payment verification unavailable, try again", err)
		}
		return nil, apperr.Wrap(apperr.Policy, "payment not verified", err)
	}

	// A deposit hash may be consumed by at most one account. The unique
	// constraint at insert is the authoritative guard; this check fails fast
	// before an identity record gets created.
	consumed, err := r.store.RegistrationHashConsumed(ctx, in.DepositTxHash)
	if err != nil {
		return nil, err
	}
	if consumed {
		return nil, apperr.New(apperr.Policy, "deposit transaction already used by another signup")
	}

	subjectID, err := r.ids.CreateUser(ctx, in.Email, in.Password)
	if err != nil {
		if errors.Is(err, identity.ErrEmailTaken) {
			return nil, apperr.Wrap(apperr.Policy, "email already registered", err)
		}
		return nil, apperr.Wrap(apperr.External, "identity creation failed", err)
	}

	account := &model.Account{
		ID:               subjectID,
		Email:            in.Email,
		Phone:            in.Phone,
		Balance:          decimal.Zero,
		Approved:         true, // payment verified; approval gate stays for fraud review
		RegistrationHash: in.DepositTxHash,
		PaymentAmount:    deposit.Amount,
		PaymentFrom:      deposit.FromAddress,
	}

	if err := r.createWithUniqueCodes(ctx, account); err != nil {
		return nil, err
	}

	r.log.WithFields(logrus.Fields{
		"account_id":  account.ID,
		"wallet_code": account.WalletCode,
		"tx_hash":     in.DepositTxHash,
	}).Info("account registered")

	// Best-effort: a bonus failure never rolls back the account. The edge
	// insert makes crediting idempotent per (referrer, referred) pair.
	if in.ReferralCode != "" {
		if err := r.creditSignupBonus(ctx, in.ReferralCode, account.ID); err != nil {
			r.log.WithError(err).WithField("referral_code", in.ReferralCode).
				Warn("failed to credit signup bonus")
		}
	}

	return account, nil
}

// createWithUniqueCodes inserts the account, regenerating whichever code
// collided until the store accepts both or the attempts run out.
func (r *AccountRegistry) createWithUniqueCodes(ctx context.Context, account *model.Account) error {
	var err error
	for attempt := 0; attempt < codeAttempts; attempt++ {
		if account.WalletCode == "" {
			account.WalletCode, err = generateWalletCode()
			if err != nil {
				return err
			}
		}
		if account.ReferralCode == "" {
			account.ReferralCode, err = generateReferralCode()
			if err != nil {
				return err
			}
		}

		err = r.store.CreateAccount(ctx, account)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, repository.ErrDuplicateWalletCode):
			account.WalletCode = ""
		case errors.Is(err, repository.ErrDuplicateReferralCode):
			account.ReferralCode = ""
		case errors.Is(err, repository.ErrDuplicateRegistrationHash):
			return apperr.Wrap(apperr.Policy, "deposit transaction already used by another signup", err)
		case errors.Is(err, repository.ErrDuplicateEmail):
			return apperr.Wrap(apperr.Policy, "email already registered", err)
		default:
			return err
		}
	}
	return apperr.Wrap(apperr.Consistency, "could not generate unique codes", err)
}

func (r *AccountRegistry) creditSignupBonus(ctx context.Context, referralCode, newAccountID string) error {
	referrer, err := r.store.GetAccountByReferralCode(ctx, referralCode)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			// Unknown code is not an error for the signup itself.
			return nil
		}
		return err
	}

	credited, err := r.store.CreditSignupBonus(ctx, referrer.ID, newAccountID, r.platform.ReferralBonus)
	if err != nil {
		return err
	}
	if credited {
		r.log.WithFields(logrus.Fields{
			"referrer_id": referrer.ID,
			"referred_id": newAccountID,
			"bonus":       r.platform.ReferralBonus.String(),
		}).Info("signup bonus credited")
	}
	return nil
}

// generateWalletCode returns a random 9-digit numeric handle.
func generateWalletCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000000))
	if err != nil {
		return "", err
	}
	return n.Add(n, big.NewInt(100000000)).String(), nil
}

// generateReferralCode returns a random 8-character alphanumeric code.
func generateReferralCode() (string, error) {
	code := make([]byte, 8)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(referralAlphabet))))
		if err != nil {
			return "", err
		}
		code[i] = referralAlphabet[n.Int64()]
	}
	return string(code), nil
}
