package store

import (
	"fmt"

	"fjacquet/sepa-export/internal/dateutils"
	"fjacquet/sepa-export/internal/models"
)

// MockRepository is an in-memory Source for tests.
type MockRepository struct {
	Meta                models.BatchMetadata
	Instructions        []models.PaymentInstruction
	Counterparties      map[string]*models.Counterparty
	Items               map[string][]models.LineItem
	CreditorIdentifiers map[string]string
	Holidays            []NonBusinessDay

	// Marked records persisted mandate flags in call order.
	Marked []string

	// Error flags for testing error conditions
	BatchError        error
	CounterpartyError error
	MarkError         error
	Closed            bool
}

// Batch returns the configured batch.
func (m *MockRepository) Batch(id string) (models.BatchMetadata, []models.PaymentInstruction, error) {
	if m.BatchError != nil {
		return models.BatchMetadata{}, nil, m.BatchError
	}
	if id != "" && id != m.Meta.ID {
		return models.BatchMetadata{}, nil, fmt.Errorf("batch %s not found", id)
	}
	return m.Meta, m.Instructions, nil
}

// Counterparty returns the configured counterparty.
func (m *MockRepository) Counterparty(id string) (*models.Counterparty, error) {
	if m.CounterpartyError != nil {
		return nil, m.CounterpartyError
	}
	cp, ok := m.Counterparties[id]
	if !ok {
		return nil, fmt.Errorf("counterparty %s not found", id)
	}
	return cp, nil
}

// LineItems returns the configured line items.
func (m *MockRepository) LineItems(instructionID string) ([]models.LineItem, error) {
	return m.Items[instructionID], nil
}

// CreditorIdentifier returns the configured creditor id.
func (m *MockRepository) CreditorIdentifier(orgID string) (string, error) {
	return m.CreditorIdentifiers[orgID], nil
}

// MarkMandateUsed records the account id.
func (m *MockRepository) MarkMandateUsed(accountID string) error {
	if m.MarkError != nil {
		return m.MarkError
	}
	m.Marked = append(m.Marked, accountID)
	return nil
}

// HolidayLookup matches the configured holidays by name.
func (m *MockRepository) HolidayLookup(keyword string) (dateutils.NonBusinessDayLookup, error) {
	if keyword == "" {
		return nil, nil
	}
	return holidaysLike(m.Holidays, keyword), nil
}

// Close marks the mock closed.
func (m *MockRepository) Close() error {
	m.Closed = true
	return nil
}

var (
	_ Source = (*MockRepository)(nil)
	_ Source = (*YAMLRepository)(nil)
)
