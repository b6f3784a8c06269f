// Package store loads payment batches from YAML batch files and
// persists the mandate "already used" flag back into them.
package store

import (
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"fjacquet/sepa-export/internal/dateutils"
	"fjacquet/sepa-export/internal/exporter"
	"fjacquet/sepa-export/internal/fileutils"
	"fjacquet/sepa-export/internal/logging"
	"fjacquet/sepa-export/internal/models"
	"fjacquet/sepa-export/internal/textutils"
)

// Source is what the export command needs from any backing store.
type Source interface {
	exporter.Repository
	// Batch returns the metadata and approved instructions of a batch.
	// An empty id selects the only batch of a single-batch source.
	Batch(id string) (models.BatchMetadata, []models.PaymentInstruction, error)
	// HolidayLookup matches non-business days whose name is LIKE keyword.
	HolidayLookup(keyword string) (dateutils.NonBusinessDayLookup, error)
	Close() error
}

// NonBusinessDay is a configured bank holiday.
type NonBusinessDay struct {
	Date time.Time `yaml:"date"`
	Name string    `yaml:"name"`
}

// InstructionRecord is the on-disk form of a payment instruction with
// the line items it settles.
type InstructionRecord struct {
	ID             string            `yaml:"id"`
	CounterpartyID string            `yaml:"counterparty_id"`
	Amount         decimal.Decimal   `yaml:"amount"`
	Currency       string            `yaml:"currency,omitempty"`
	LineItems      []models.LineItem `yaml:"line_items"`
}

// BatchFile is the layout of a YAML batch file.
type BatchFile struct {
	Batch               models.BatchMetadata   `yaml:"batch"`
	CreditorIdentifiers map[string]string      `yaml:"creditor_identifiers,omitempty"`
	NonBusinessDays     []NonBusinessDay       `yaml:"non_business_days,omitempty"`
	Counterparties      []*models.Counterparty `yaml:"counterparties"`
	Instructions        []InstructionRecord    `yaml:"instructions"`
}

// YAMLRepository serves one batch file.
type YAMLRepository struct {
	path   string
	logger logging.Logger

	mu             sync.Mutex
	file           *BatchFile
	counterparties map[string]*models.Counterparty
	accounts       map[string]*models.BankAccount
	items          map[string][]models.LineItem
}

// OpenYAML reads and indexes the batch file at path.
func OpenYAML(path string, logger logging.Logger) (*YAMLRepository, error) {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	file, err := LoadBatchFile(path)
	if err != nil {
		return nil, err
	}

	r := &YAMLRepository{path: path, logger: logger.WithField(logging.FieldStore, "yaml")}
	if err := r.index(file); err != nil {
		return nil, fmt.Errorf("error indexing batch file %s: %w", path, err)
	}

	r.logger.Debug("Loaded batch file",
		logging.F(logging.FieldInputFile, path),
		logging.F(logging.FieldCount, len(file.Instructions)))
	return r, nil
}

// LoadBatchFile reads and parses a YAML batch file without indexing it.
func LoadBatchFile(path string) (*BatchFile, error) {
	data, err := fileutils.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading batch file: %w", err)
	}
	var file BatchFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("error parsing batch file %s: %w", path, err)
	}
	return &file, nil
}

func (r *YAMLRepository) index(file *BatchFile) error {
	r.file = file
	r.counterparties = make(map[string]*models.Counterparty, len(file.Counterparties))
	r.accounts = make(map[string]*models.BankAccount)
	r.items = make(map[string][]models.LineItem, len(file.Instructions))

	for _, cp := range file.Counterparties {
		if cp == nil || cp.ID == "" {
			return fmt.Errorf("counterparty without id")
		}
		if _, dup := r.counterparties[cp.ID]; dup {
			return fmt.Errorf("duplicate counterparty %s", cp.ID)
		}
		r.counterparties[cp.ID] = cp
		for _, acct := range cp.Accounts {
			if acct == nil || acct.ID == "" {
				return fmt.Errorf("account without id on counterparty %s", cp.ID)
			}
			if _, dup := r.accounts[acct.ID]; dup {
				return fmt.Errorf("duplicate account %s", acct.ID)
			}
			r.accounts[acct.ID] = acct
		}
	}

	for _, rec := range file.Instructions {
		if rec.ID == "" {
			return fmt.Errorf("instruction without id")
		}
		if _, dup := r.items[rec.ID]; dup {
			return fmt.Errorf("duplicate instruction %s", rec.ID)
		}
		r.items[rec.ID] = rec.LineItems
	}
	return nil
}

// Batch returns the batch of the file. id must be empty or match.
func (r *YAMLRepository) Batch(id string) (models.BatchMetadata, []models.PaymentInstruction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	meta := r.file.Batch
	if id != "" && id != meta.ID {
		return models.BatchMetadata{}, nil, fmt.Errorf("batch %s not found in %s", id, r.path)
	}

	instructions := make([]models.PaymentInstruction, 0, len(r.file.Instructions))
	for _, rec := range r.file.Instructions {
		currency := rec.Currency
		if currency == "" {
			currency = meta.Currency
		}
		pi, err := models.NewInstructionBuilder().
			WithID(rec.ID).
			WithAmount(rec.Amount, currency).
			WithCounterparty(rec.CounterpartyID).
			WithOrg(meta.OrgID).
			WithBatch(meta.ID).
			Build()
		if err != nil {
			return models.BatchMetadata{}, nil, fmt.Errorf("batch %s in %s: %w", meta.ID, r.path, err)
		}
		instructions = append(instructions, pi)
	}
	return meta, instructions, nil
}

// Counterparty returns the counterparty with the given id.
func (r *YAMLRepository) Counterparty(id string) (*models.Counterparty, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp, ok := r.counterparties[id]
	if !ok {
		return nil, fmt.Errorf("counterparty %s not found", id)
	}
	return cp, nil
}

// LineItems returns the items settled by an instruction.
func (r *YAMLRepository) LineItems(instructionID string) ([]models.LineItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items, ok := r.items[instructionID]
	if !ok {
		return nil, fmt.Errorf("instruction %s not found", instructionID)
	}
	return items, nil
}

// CreditorIdentifier returns the SEPA creditor id of an organization,
// or "" when none is configured.
func (r *YAMLRepository) CreditorIdentifier(orgID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.file.CreditorIdentifiers[orgID], nil
}

// MarkMandateUsed flags the account and rewrites the batch file.
func (r *YAMLRepository) MarkMandateUsed(accountID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	acct, ok := r.accounts[accountID]
	if !ok {
		return fmt.Errorf("account %s not found", accountID)
	}
	acct.AlreadyUsed = true

	data, err := yaml.Marshal(r.file)
	if err != nil {
		return fmt.Errorf("error marshaling batch file: %w", err)
	}
	if err := fileutils.WriteFileAtomic(r.path, data, 0644); err != nil {
		return fmt.Errorf("error writing batch file: %w", err)
	}

	r.logger.Debug("Persisted mandate flag", logging.F(logging.FieldAccountID, accountID))
	return nil
}

// HolidayLookup returns the non-business days named LIKE keyword. An
// empty keyword matches nothing and yields a nil lookup.
func (r *YAMLRepository) HolidayLookup(keyword string) (dateutils.NonBusinessDayLookup, error) {
	if keyword == "" {
		return nil, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	return holidaysLike(r.file.NonBusinessDays, keyword), nil
}

func holidaysLike(days []NonBusinessDay, keyword string) dateutils.NonBusinessDayLookup {
	pattern := textutils.CompileLike(keyword)
	var dates []time.Time
	for _, d := range days {
		if pattern.Match(d.Name) {
			dates = append(dates, d.Date)
		}
	}
	return dateutils.NewHolidaySet(dates...).Lookup()
}

// Close is a no-op; every write is flushed immediately.
func (r *YAMLRepository) Close() error {
	return nil
}

