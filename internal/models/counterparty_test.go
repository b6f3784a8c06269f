package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounterparty_UsableAccount(t *testing.T) {
	inactive := &BankAccount{ID: "a1", Active: false, IBAN: "DE89370400440532013000", SupportsDirectDebit: true}
	noIBAN := &BankAccount{ID: "a2", Active: true, IBAN: " ", SupportsDirectDebit: true}
	depositOnly := &BankAccount{ID: "a3", Active: true, IBAN: "DE89370400440532013000", SupportsDirectDeposit: true}
	debit := &BankAccount{ID: "a4", Active: true, IBAN: "DE89370400440532013000", SupportsDirectDebit: true}
	debit2 := &BankAccount{ID: "a5", Active: true, IBAN: "DE89370400440532013000", SupportsDirectDebit: true}

	cp := &Counterparty{ID: "BP-1", Name: "Meier", Accounts: []*BankAccount{nil, inactive, noIBAN, depositOnly, debit, debit2}}

	acct, ok := cp.UsableAccount(DirectDebit)
	require.True(t, ok)
	assert.Equal(t, "a4", acct.ID)

	acct, ok = cp.UsableAccount(DirectDeposit)
	require.True(t, ok)
	assert.Equal(t, "a3", acct.ID)

	_, ok = (&Counterparty{Accounts: []*BankAccount{inactive, noIBAN}}).UsableAccount(DirectDebit)
	assert.False(t, ok)

	found, ok := cp.Account("a5")
	require.True(t, ok)
	assert.Same(t, debit2, found)
	assert.Equal(t, "Meier (BP-1)", cp.String())
}

func TestBankAccount_MarkUsed(t *testing.T) {
	acct := &BankAccount{}
	assert.True(t, acct.MarkUsed())
	assert.True(t, acct.AlreadyUsed)
	assert.False(t, acct.MarkUsed())
	assert.True(t, acct.AlreadyUsed)
}

func TestParseScheme(t *testing.T) {
	tests := []struct {
		in   string
		want Scheme
		ok   bool
	}{
		{"B2B", SchemeB2B, true},
		{" cor1 ", SchemeCOR1, true},
		{"CORE", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseScheme(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestBatchMetadata_InitiatingPartyName(t *testing.T) {
	assert.Equal(t, "Org GmbH", BatchMetadata{OrgName: "Org GmbH", ClientName: "Client"}.InitiatingPartyName())
	assert.Equal(t, "Client", BatchMetadata{OrgName: "  ", ClientName: "Client"}.InitiatingPartyName())
}
