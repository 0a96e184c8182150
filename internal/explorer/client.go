// Package explorer verifies claimed deposit transactions against a
// BscScan-style block-explorer API. It is a pure query layer: it never marks
// a hash as consumed, that is the registry's job.
package explorer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrTransactionFailed   = errors.New("transaction not confirmed or failed")
	ErrWrongRecipient      = errors.New("transaction destination does not match receiving address")
	ErrAmountMismatch      = errors.New("transaction amount does not match expected deposit")
	ErrExplorerUnavailable = errors.New("explorer api unavailable")
)

type Client struct {
	baseURL          string
	apiKey           string
	receivingAddress string
	tokenDecimals    int32
	tolerance        decimal.Decimal
	maxRetries       int
	client           *http.Client
	log              *logrus.Entry
}

// Deposit holds the verified on-chain details of a registration deposit.
type Deposit struct {
	TxHash      string
	Amount      decimal.Decimal
	FromAddress string
	ToAddress   string
}

func NewClient(baseURL, apiKey, receivingAddress string, tokenDecimals int32, tolerance decimal.Decimal, timeout time.Duration, maxRetries int) *Client {
	return &Client{
		baseURL:          baseURL,
		apiKey:           apiKey,
		receivingAddress: receivingAddress,
		tokenDecimals:    tokenDecimals,
		tolerance:        tolerance,
		maxRetries:       maxRetries,
		client:           &http.Client{Timeout: timeout},
		log:              logrus.WithField("component", "explorer"),
	}
}

type apiResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

type receiptStatus struct {
	Status string `json:"status"`
}

type rawTransaction struct {
	Hash  string `json:"hash"`
	From  string `json:"from"`
	To    string `json:"to"`
	Value string `json:"value"`
}

// VerifyDeposit confirms that txHash is a successful transaction paying the
// platform's receiving address an amount within tolerance of expectedAmount.
func (c *Client) VerifyDeposit(ctx context.Context, txHash string, expectedAmount decimal.Decimal) (*Deposit, error) {
	var receipt receiptStatus
	if err := c.query(ctx, url.Values{
		"module": {"transaction"},
		"action": {"gettxreceiptstatus"},
		"txhash": {txHash},
	}, &receipt); err != nil {
		return nil, err
	}
	if receipt.Status != "1" {
		return nil, ErrTransactionFailed
	}

	var tx rawTransaction
	if err := c.query(ctx, url.Values{
		"module": {"proxy"},
		"action": {"eth_getTransactionByHash"},
		"txhash": {txHash},
	}, &tx); err != nil {
		return nil, err
	}
	if tx.Hash == "" {
		return nil, ErrTransactionNotFound
	}

	if !strings.EqualFold(tx.To, c.receivingAddress) {
		return nil, ErrWrongRecipient
	}

	amount, err := c.baseUnitsToAmount(tx.Value)
	if err != nil {
		return nil, fmt.Errorf("%w: bad value field: %v", ErrExplorerUnavailable, err)
	}

	if amount.Sub(expectedAmount).Abs().GreaterThan(c.tolerance) {
		c.log.WithFields(logrus.Fields{
			"tx_hash":  txHash,
			"paid":     amount.String(),
			"expected": expectedAmount.String(),
		}).Warn("deposit amount out of tolerance")
		return nil, ErrAmountMismatch
	}

	return &Deposit{
		TxHash:      txHash,
		Amount:      amount,
		FromAddress: tx.From,
		ToAddress:   tx.To,
	}, nil
}

// query performs one explorer API call, retrying transport-level failures up
// to maxRetries. A null result is decoded as the zero value so callers can
// distinguish "not found" from transport errors.
func (c *Client) query(ctx context.Context, params url.Values, result interface{}) error {
	params.Set("apikey", c.apiKey)
	endpoint := c.baseURL + "?" + params.Encode()

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}

		body, err := c.get(ctx, endpoint)
		if err != nil {
			lastErr = err
			c.log.WithError(err).WithField("attempt", attempt).Warn("explorer request failed")
			continue
		}

		var resp apiResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return fmt.Errorf("%w: malformed response: %v", ErrExplorerUnavailable, err)
		}
		if len(resp.Result) == 0 || string(resp.Result) == "null" {
			return ErrTransactionNotFound
		}
		if err := json.Unmarshal(resp.Result, result); err != nil {
			return fmt.Errorf("%w: malformed result: %v", ErrExplorerUnavailable, err)
		}
		return nil
	}
	return fmt.Errorf("%w: %v", ErrExplorerUnavailable, lastErr)
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("explorer returned status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// baseUnitsToAmount converts a hex-encoded on-chain integer value to currency
// units using the token's declared decimal precision. Exact arithmetic only;
// floating point would drift at precision boundaries.
func (c *Client) baseUnitsToAmount(hexValue string) (decimal.Decimal, error) {
	s := strings.TrimPrefix(hexValue, "0x")
	if s == "" {
		return decimal.Zero, errors.New("empty value")
	}
	v, ok := new(big.Int).SetString(s, 16)
	if !ok {
		return decimal.Zero, fmt.Errorf("invalid hex value %q", hexValue)
	}
	return decimal.NewFromBigInt(v, -c.tokenDecimals), nil
}
