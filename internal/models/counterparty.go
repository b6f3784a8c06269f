package models

import (
	"fmt"
	"strings"
	"time"
)

// BankAccount is one account of a counterparty. AlreadyUsed is the only
// field the export mutates.
type BankAccount struct {
	ID                    string    `json:"id" yaml:"id"`
	Active                bool      `json:"active" yaml:"active"`
	IBAN                  string    `json:"iban" yaml:"iban"`
	BIC                   string    `json:"bic,omitempty" yaml:"bic,omitempty"`
	SupportsDirectDebit   bool      `json:"supports_direct_debit" yaml:"supports_direct_debit"`
	SupportsDirectDeposit bool      `json:"supports_direct_deposit" yaml:"supports_direct_deposit"`
	Scheme                string    `json:"scheme,omitempty" yaml:"scheme,omitempty"`
	MandateID             string    `json:"mandate_id,omitempty" yaml:"mandate_id,omitempty"`
	MandateSignedOn       time.Time `json:"mandate_signed_on,omitempty" yaml:"mandate_signed_on,omitempty"`
	AlreadyUsed           bool      `json:"already_used" yaml:"already_used"`
}

// Supports reports whether the account may be used for rule.
func (a *BankAccount) Supports(rule PaymentRule) bool {
	switch rule {
	case DirectDebit:
		return a.SupportsDirectDebit
	case DirectDeposit:
		return a.SupportsDirectDeposit
	}
	return false
}

// MarkUsed flips AlreadyUsed to true. It returns false when the flag
// was already set, so callers persist only real transitions.
func (a *BankAccount) MarkUsed() bool {
	if a.AlreadyUsed {
		return false
	}
	a.AlreadyUsed = true
	return true
}

// Counterparty is the business partner paid or collected from.
type Counterparty struct {
	ID          string         `json:"id" yaml:"id"`
	Name        string         `json:"name" yaml:"name"`
	ReferenceNo string         `json:"reference_no,omitempty" yaml:"reference_no,omitempty"`
	Accounts    []*BankAccount `json:"accounts" yaml:"accounts"`
}

// UsableAccount returns the first active account supporting rule with a
// non-empty IBAN, in account order.
func (c *Counterparty) UsableAccount(rule PaymentRule) (*BankAccount, bool) {
	for _, acct := range c.Accounts {
		if acct == nil || !acct.Active || !acct.Supports(rule) {
			continue
		}
		if strings.TrimSpace(acct.IBAN) == "" {
			continue
		}
		return acct, true
	}
	return nil, false
}

// Account looks an account up by id.
func (c *Counterparty) Account(id string) (*BankAccount, bool) {
	for _, acct := range c.Accounts {
		if acct != nil && acct.ID == id {
			return acct, true
		}
	}
	return nil, false
}

func (c *Counterparty) String() string {
	if c.Name == "" {
		return c.ID
	}
	return fmt.Sprintf("%s (%s)", c.Name, c.ID)
}
