package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InstructionBuilder provides a fluent API for constructing payment
// instructions. The first error sticks and is returned by Build.
type InstructionBuilder struct {
	pi  PaymentInstruction
	err error
}

// NewInstructionBuilder starts a builder with a random id and EUR currency.
func NewInstructionBuilder() *InstructionBuilder {
	return &InstructionBuilder{
		pi: PaymentInstruction{
			ID:     uuid.NewString(),
			Amount: ZeroMoney("EUR"),
		},
	}
}

func (b *InstructionBuilder) WithID(id string) *InstructionBuilder {
	if b.err != nil {
		return b
	}
	if strings.TrimSpace(id) == "" {
		b.err = errors.New("instruction id cannot be empty")
		return b
	}
	b.pi.ID = id
	return b
}

// WithAmount sets amount and currency.
func (b *InstructionBuilder) WithAmount(amount decimal.Decimal, currency string) *InstructionBuilder {
	if b.err != nil {
		return b
	}
	b.pi.Amount = NewMoney(amount, strings.ToUpper(currency))
	return b
}

// WithAmountFromString parses amount with a dot decimal separator.
func (b *InstructionBuilder) WithAmountFromString(amount, currency string) *InstructionBuilder {
	if b.err != nil {
		return b
	}
	m, err := NewMoneyFromString(amount, strings.ToUpper(currency))
	if err != nil {
		b.err = err
		return b
	}
	b.pi.Amount = m
	return b
}

func (b *InstructionBuilder) WithCounterparty(id string) *InstructionBuilder {
	if b.err != nil {
		return b
	}
	b.pi.CounterpartyID = id
	return b
}

func (b *InstructionBuilder) WithOrg(id string) *InstructionBuilder {
	if b.err != nil {
		return b
	}
	b.pi.OrgID = id
	return b
}

func (b *InstructionBuilder) WithBatch(id string) *InstructionBuilder {
	if b.err != nil {
		return b
	}
	b.pi.BatchID = id
	return b
}

// Build validates and returns the instruction.
func (b *InstructionBuilder) Build() (PaymentInstruction, error) {
	if b.err != nil {
		return PaymentInstruction{}, b.err
	}
	if !b.pi.Amount.IsPositive() {
		return PaymentInstruction{}, fmt.Errorf("instruction %s: amount must be positive, got %s", b.pi.ID, b.pi.Amount)
	}
	if !b.pi.Amount.HasWholeCents() {
		return PaymentInstruction{}, fmt.Errorf("instruction %s: amount %s has more than two fraction digits", b.pi.ID, b.pi.Amount.Amount)
	}
	if len(b.pi.Amount.Currency) != 3 {
		return PaymentInstruction{}, fmt.Errorf("instruction %s: invalid currency code %q", b.pi.ID, b.pi.Amount.Currency)
	}
	if b.pi.CounterpartyID == "" {
		return PaymentInstruction{}, fmt.Errorf("instruction %s: counterparty is required", b.pi.ID)
	}
	return b.pi, nil
}
