package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/sepa-export/internal/logging"
)

// copyBatch copies the sample batch file into a temp dir so tests may
// rewrite it.
func copyBatch(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", "batch.yaml"))
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "batch.yaml")
	require.NoError(t, os.WriteFile(path, data, 0600))
	return path
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
}

func TestOpenYAML_Batch(t *testing.T) {
	repo, err := OpenYAML(copyBatch(t), logging.NewMockLogger())
	require.NoError(t, err)
	defer repo.Close()

	meta, instructions, err := repo.Batch("")
	require.NoError(t, err)
	assert.Equal(t, "batch-2024-03", meta.ID)
	assert.Equal(t, "Sportverein Nord e.V.", meta.InitiatingPartyName())
	assert.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), meta.PayDate)
	assert.Equal(t, "COBADEFFXXX", meta.Originator.BIC)

	require.Len(t, instructions, 2)
	assert.Equal(t, "pi-1", instructions[0].ID)
	assert.True(t, instructions[0].Amount.Amount.Equal(decimal.RequireFromString("120.50")))
	assert.Equal(t, "EUR", instructions[0].Amount.Currency)
	assert.Equal(t, "org-1", instructions[0].OrgID)
	assert.Equal(t, "batch-2024-03", instructions[1].BatchID)

	_, _, err = repo.Batch("other")
	assert.ErrorContains(t, err, "batch other not found")
}

func TestYAMLRepository_BatchRejectsInvalidInstructions(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		wantErr string
	}{
		{name: "sub-cent amount", amount: "0.005", wantErr: "more than two fraction digits"},
		{name: "zero amount", amount: "0", wantErr: "amount must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := copyBatch(t)
			data, err := os.ReadFile(path)
			require.NoError(t, err)
			edited := strings.Replace(string(data), "\n    amount: 35\n", "\n    amount: "+tt.amount+"\n", 1)
			require.NotEqual(t, string(data), edited)
			writeFile(t, path, edited)

			repo, err := OpenYAML(path, logging.NewMockLogger())
			require.NoError(t, err)
			defer repo.Close()

			_, _, err = repo.Batch("")
			require.Error(t, err)
			assert.Contains(t, err.Error(), "pi-2")
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestOpenYAML_Lookups(t *testing.T) {
	repo, err := OpenYAML(copyBatch(t), logging.NewMockLogger())
	require.NoError(t, err)

	cp, err := repo.Counterparty("cp-mueller")
	require.NoError(t, err)
	assert.Equal(t, "Müller & Söhne GmbH", cp.Name)
	require.Len(t, cp.Accounts, 1)
	assert.Equal(t, "B2B", cp.Accounts[0].Scheme)
	assert.Equal(t, time.Date(2023, time.November, 15, 0, 0, 0, 0, time.UTC), cp.Accounts[0].MandateSignedOn)

	_, err = repo.Counterparty("missing")
	assert.Error(t, err)

	items, err := repo.LineItems("pi-1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "SO-17", items[0].OrderNo)
	assert.True(t, items[1].DiscountAmount.Equal(decimal.RequireFromString("-0.50")))

	_, err = repo.LineItems("missing")
	assert.Error(t, err)

	id, err := repo.CreditorIdentifier("org-1")
	require.NoError(t, err)
	assert.Equal(t, "DE98ZZZ09999999999", id)

	id, err = repo.CreditorIdentifier("org-2")
	require.NoError(t, err)
	assert.Empty(t, id)
}

func TestYAMLRepository_MarkMandateUsedPersists(t *testing.T) {
	path := copyBatch(t)
	repo, err := OpenYAML(path, logging.NewMockLogger())
	require.NoError(t, err)

	require.NoError(t, repo.MarkMandateUsed("acct-mueller"))
	assert.Error(t, repo.MarkMandateUsed("missing"))

	reopened, err := OpenYAML(path, logging.NewMockLogger())
	require.NoError(t, err)
	cp, err := reopened.Counterparty("cp-mueller")
	require.NoError(t, err)
	assert.True(t, cp.Accounts[0].AlreadyUsed)

	// Amounts and dates survive the rewrite.
	_, instructions, err := reopened.Batch("")
	require.NoError(t, err)
	assert.True(t, instructions[0].Amount.Amount.Equal(decimal.RequireFromString("120.5")))
	items, err := reopened.LineItems("pi-1")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), items[0].DocumentDate)
}

func TestYAMLRepository_HolidayLookup(t *testing.T) {
	repo, err := OpenYAML(copyBatch(t), logging.NewMockLogger())
	require.NoError(t, err)

	lookup, err := repo.HolidayLookup("")
	require.NoError(t, err)
	assert.Nil(t, lookup)

	lookup, err = repo.HolidayLookup("%Bank%")
	require.NoError(t, err)
	require.NotNil(t, lookup)
	assert.True(t, lookup(time.Date(2024, time.March, 1, 15, 0, 0, 0, time.UTC)))
	assert.False(t, lookup(time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)))

	lookup, err = repo.HolidayLookup("Betriebs%")
	require.NoError(t, err)
	assert.True(t, lookup(time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)))
}

func TestOpenYAML_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := OpenYAML(filepath.Join(dir, "missing.yaml"), logging.NewMockLogger())
	assert.ErrorContains(t, err, "error reading batch file")

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"invalid yaml", "batch: [", "error parsing batch file"},
		{"duplicate counterparty", "counterparties:\n  - id: a\n  - id: a\n", "duplicate counterparty a"},
		{"duplicate account", "counterparties:\n  - id: a\n    accounts: [{id: x}]\n  - id: b\n    accounts: [{id: x}]\n", "duplicate account x"},
		{"instruction without id", "instructions:\n  - counterparty_id: a\n", "instruction without id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "bad.yaml")
			writeFile(t, path, tt.content)
			_, err := OpenYAML(path, logging.NewMockLogger())
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestMockRepository(t *testing.T) {
	m := &MockRepository{Holidays: []NonBusinessDay{{Date: time.Date(2024, 12, 24, 0, 0, 0, 0, time.UTC), Name: "Bank holiday"}}}
	lookup, err := m.HolidayLookup("Bank%")
	require.NoError(t, err)
	assert.True(t, lookup(time.Date(2024, 12, 24, 0, 0, 0, 0, time.UTC)))

	require.NoError(t, m.MarkMandateUsed("a"))
	assert.Equal(t, []string{"a"}, m.Marked)
	require.NoError(t, m.Close())
	assert.True(t, m.Closed)
}
