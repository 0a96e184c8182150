package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSignedAmountByKind(t *testing.T) {
	amount := decimal.RequireFromString("30.00")
	cases := []struct {
		kind TransactionKind
		want string
	}{
		{TransactionKindSend, "-30"},
		{TransactionKindWithdrawal, "-30"},
		{TransactionKindReceive, "30"},
		{TransactionKindReferral, "30"},
		{TransactionKindCommission, "30"},
	}
	for _, tc := range cases {
		tx := Transaction{Kind: tc.kind, Amount: amount}
		assert.True(t, tx.Signed().Equal(decimal.RequireFromString(tc.want)),
			"%s: got %s", tc.kind, tx.Signed())
	}
}

func TestNetworkAddressPrefix(t *testing.T) {
	assert.Equal(t, "0x", NetworkBEP20.AddressPrefix())
	assert.Equal(t, "T", NetworkTRC20.AddressPrefix())
	assert.Empty(t, Network("ERC-20").AddressPrefix())

	assert.True(t, NetworkBEP20.Valid())
	assert.True(t, NetworkTRC20.Valid())
	assert.False(t, Network("").Valid())
	assert.False(t, Network("ERC-20").Valid())
}

func TestAccountHasPIN(t *testing.T) {
	var a Account
	assert.False(t, a.HasPIN())

	empty := ""
	a.TransactionPassword = &empty
	assert.False(t, a.HasPIN())

	pin := "123456"
	a.TransactionPassword = &pin
	assert.True(t, a.HasPIN())
}
