package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentRule selects the SEPA message family of an export.
type PaymentRule string

const (
	// DirectDebit collects money from counterparties (pain.008).
	DirectDebit PaymentRule = "direct-debit"
	// DirectDeposit pays counterparties by credit transfer (pain.001).
	DirectDeposit PaymentRule = "direct-deposit"
)

// Scheme is the direct-debit mandate scheme of an account.
type Scheme string

const (
	SchemeB2B  Scheme = "B2B"
	SchemeCOR1 Scheme = "COR1"
)

// ParseScheme normalizes a stored scheme value. It reports false for
// anything other than B2B or COR1.
func ParseScheme(s string) (Scheme, bool) {
	switch Scheme(strings.ToUpper(strings.TrimSpace(s))) {
	case SchemeB2B:
		return SchemeB2B, true
	case SchemeCOR1:
		return SchemeCOR1, true
	}
	return "", false
}

// SequenceType distinguishes first from recurring collections.
type SequenceType string

const (
	SequenceFirst     SequenceType = "FRST"
	SequenceRecurring SequenceType = "RCUR"
)

// LineItem is one invoiced document settled by a payment instruction.
type LineItem struct {
	DocumentNo     string          `json:"document_no" yaml:"document_no"`
	DocumentDate   time.Time       `json:"document_date" yaml:"document_date"`
	OrderNo        string          `json:"order_no,omitempty" yaml:"order_no,omitempty"`
	POReference    string          `json:"po_reference,omitempty" yaml:"po_reference,omitempty"`
	LineAmount     decimal.Decimal `json:"line_amount" yaml:"line_amount"`
	DiscountAmount decimal.Decimal `json:"discount_amount" yaml:"discount_amount"`
	GrandTotal     decimal.Decimal `json:"grand_total" yaml:"grand_total"`
}

// HasDocument reports whether the item carries a document number.
func (li LineItem) HasDocument() bool {
	return strings.TrimSpace(li.DocumentNo) != ""
}

// Invoiced reports whether the item refers to an invoice at all.
func (li LineItem) Invoiced() bool {
	return li.HasDocument() || !li.DocumentDate.IsZero()
}

// PaymentInstruction is one approved payment of a batch.
type PaymentInstruction struct {
	ID             string `json:"id" yaml:"id"`
	Amount         Money  `json:"amount" yaml:"amount"`
	CounterpartyID string `json:"counterparty_id" yaml:"counterparty_id"`
	OrgID          string `json:"org_id" yaml:"org_id"`
	BatchID        string `json:"batch_id" yaml:"batch_id"`
}

// OriginatorAccount is the house bank account the batch is paid from
// or collected into.
type OriginatorAccount struct {
	IBAN string `json:"iban" yaml:"iban"`
	BIC  string `json:"bic" yaml:"bic"`
}

// BatchMetadata describes the batch an export belongs to.
type BatchMetadata struct {
	ID         string            `json:"id" yaml:"id"`
	CreatedAt  time.Time         `json:"created_at" yaml:"created_at"`
	OrgID      string            `json:"org_id" yaml:"org_id"`
	OrgName    string            `json:"org_name" yaml:"org_name"`
	ClientName string            `json:"client_name" yaml:"client_name"`
	PayDate    time.Time         `json:"pay_date" yaml:"pay_date"`
	Currency   string            `json:"currency" yaml:"currency"`
	Originator OriginatorAccount `json:"originator" yaml:"originator"`
}

// InitiatingPartyName is the organization name, falling back to the
// client name when no organization is set.
func (b BatchMetadata) InitiatingPartyName() string {
	if strings.TrimSpace(b.OrgName) != "" {
		return b.OrgName
	}
	return b.ClientName
}
