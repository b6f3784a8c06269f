// Package exporter turns an approved payment batch into SEPA files.
//
// A credit-transfer export yields one pain.001 document. A direct-debit
// export classifies the instructions by mandate scheme and sequence,
// persists the "already used" flags of first collections, and packs one
// pain.008 document per non-empty sub-batch into a zip archive.
package exporter

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"fjacquet/sepa-export/internal/dateutils"
	"fjacquet/sepa-export/internal/exporterror"
	"fjacquet/sepa-export/internal/fileutils"
	"fjacquet/sepa-export/internal/logging"
	"fjacquet/sepa-export/internal/models"
	"fjacquet/sepa-export/internal/reference"
	"fjacquet/sepa-export/internal/sepa"
)

const (
	// ContentTypeXML is the content type of a credit-transfer artifact.
	ContentTypeXML = "text/xml"
	// ContentTypeZip is the content type of a direct-debit artifact.
	ContentTypeZip = "application/zip"

	// PrefixCreditTransfer and PrefixDirectDebit start every artifact name.
	PrefixCreditTransfer = "SEPA-Credit-Transfer-"
	PrefixDirectDebit    = "SEPA-Direct-Debit-"
)

// Repository is the data the exporter reads and the one flag it writes.
type Repository interface {
	Counterparty(id string) (*models.Counterparty, error)
	LineItems(instructionID string) ([]models.LineItem, error)
	CreditorIdentifier(orgID string) (string, error)
	MarkMandateUsed(accountID string) error
}

// Recorder receives export counters. metrics.Recorder implements it.
type Recorder interface {
	MessageWritten(rule models.PaymentRule, variant string, count int, sum models.Money)
	MandatesMarked(n int)
	ExportSucceeded(rule models.PaymentRule)
	ExportFailed(rule models.PaymentRule, kind string)
}

// Options tune an exporter. Zero values are usable.
type Options struct {
	// ShiftDays is added to the pay date before looking for a banking day.
	ShiftDays int
	// Holidays marks configured non-business days. Nil means weekends only.
	Holidays dateutils.NonBusinessDayLookup
	// Style selects the remittance line format.
	Style reference.Style
	// Now stamps CreDtTm, PmtInfId and the artifact names.
	Now func() time.Time
	// NewRunID correlates the log lines of one export.
	NewRunID func() string
	Logger   logging.Logger
	Recorder Recorder
}

// Artifact is the single output file of an export.
type Artifact struct {
	Name        string
	ContentType string
	Data        []byte
}

// Message is one generated pain document.
type Message struct {
	// Name is the file name of the document (the zip entry for direct debits).
	Name string
	// Variant is "TRF" or the sub-batch key such as "B2B-FRST".
	Variant    string
	Scheme     models.Scheme
	Sequence   models.SequenceType
	Count      int
	ControlSum models.Money
	Document   *sepa.Document
	Data       []byte
}

// Result describes a successful export.
type Result struct {
	RunID          string
	Rule           models.PaymentRule
	Count          int
	ControlSum     models.Money
	SettlementDate time.Time
	// MandatesMarked counts accounts flagged as used by this run.
	MandatesMarked int
	Artifact       Artifact
	Documents      []Message
}

// WriteArtifact writes the artifact into dir and returns its path. The
// file appears complete or not at all.
func (r *Result) WriteArtifact(dir string) (string, error) {
	if r == nil || r.Artifact.Name == "" {
		return "", fmt.Errorf("no artifact to write")
	}
	path := filepath.Join(dir, r.Artifact.Name)
	if err := fileutils.WriteFileAtomic(path, r.Artifact.Data, 0644); err != nil {
		return "", err
	}
	return path, nil
}

// ParsePaymentRule maps a rule selector to a payment rule. "D" and
// "direct-debit" select direct debit; "T", "direct-deposit" and
// "credit-transfer" select credit transfer.
func ParsePaymentRule(s string) (models.PaymentRule, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "d", string(models.DirectDebit):
		return models.DirectDebit, nil
	case "t", string(models.DirectDeposit), "credit-transfer":
		return models.DirectDeposit, nil
	}
	return "", exporterror.UnsupportedPaymentRule(s)
}

// BatchExporter runs exports against one repository.
type BatchExporter struct {
	repo     Repository
	shift    int
	holidays dateutils.NonBusinessDayLookup
	style    reference.Style
	now      func() time.Time
	runID    func() string
	logger   logging.Logger
	recorder Recorder
}

// New creates a BatchExporter.
func New(repo Repository, opts Options) *BatchExporter {
	e := &BatchExporter{
		repo:     repo,
		shift:    opts.ShiftDays,
		holidays: opts.Holidays,
		style:    opts.Style,
		now:      opts.Now,
		runID:    opts.NewRunID,
		logger:   opts.Logger,
		recorder: opts.Recorder,
	}
	if e.style == "" {
		e.style = reference.StyleStructured
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.runID == nil {
		e.runID = uuid.NewString
	}
	if e.logger == nil {
		e.logger = logging.NewLogrusAdapter("info", "text")
	}
	if e.recorder == nil {
		e.recorder = nopRecorder{}
	}
	return e
}

// WithStyle returns a copy of e that formats remittance lines in style.
func (e *BatchExporter) WithStyle(style reference.Style) *BatchExporter {
	c := *e
	c.style = style
	return &c
}

// Export generates the artifact for instructions of batch under rule.
// Any failure aborts the export and nothing is returned but the error.
func (e *BatchExporter) Export(rule models.PaymentRule, batch models.BatchMetadata, instructions []models.PaymentInstruction) (*Result, error) {
	started := time.Now()
	run := &exportRun{
		exporter: e,
		rule:     rule,
		batch:    batch,
		now:      e.now(),
		result:   &Result{RunID: e.runID(), Rule: rule},
	}
	run.logger = e.logger.WithFields(
		logging.F(logging.FieldRunID, run.result.RunID),
		logging.F(logging.FieldRule, string(rule)),
	)
	run.logger.Info("Starting SEPA export", logging.F(logging.FieldCount, len(instructions)))

	err := run.execute(instructions)
	if err != nil {
		e.recorder.ExportFailed(rule, failureKind(err))
		run.logger.WithError(err).Error("SEPA export aborted")
		return nil, err
	}

	e.recorder.ExportSucceeded(rule)
	run.logger.Info("SEPA export finished",
		logging.F(logging.FieldCount, run.result.Count),
		logging.F(logging.FieldControlSum, run.result.ControlSum.SEPAAmount()),
		logging.F(logging.FieldOutputFile, run.result.Artifact.Name),
		logging.F(logging.FieldDuration, time.Since(started).Milliseconds()),
	)
	return run.result, nil
}

// exportRun holds the state of one Export call.
type exportRun struct {
	exporter *BatchExporter
	rule     models.PaymentRule
	batch    models.BatchMetadata
	now      time.Time
	logger   logging.Logger
	result   *Result
}

func (r *exportRun) execute(instructions []models.PaymentInstruction) error {
	switch r.rule {
	case models.DirectDebit, models.DirectDeposit:
	default:
		return exporterror.UnsupportedPaymentRule(string(r.rule))
	}

	currency, err := checkBatch(r.batch, instructions)
	if err != nil {
		return err
	}
	r.result.ControlSum = models.ZeroMoney(currency)

	r.result.SettlementDate, err = dateutils.ShiftToValidSettlementDate(r.batch.PayDate, r.exporter.shift, r.exporter.holidays)
	if err != nil {
		return err
	}
	r.logger.Debug("Settlement date resolved",
		logging.F(logging.FieldSettlement, dateutils.ToISODate(r.result.SettlementDate)))

	if r.rule == models.DirectDebit {
		return r.directDebit(instructions)
	}
	return r.creditTransfer(instructions)
}

// stamp is the creation timestamp used in every file name of the run.
func (r *exportRun) stamp() string {
	return r.now.Format(dateutils.DateLayoutFileStamp)
}

// transaction resolves the references of one instruction into builder input.
func (r *exportRun) transaction(pi models.PaymentInstruction, cp *models.Counterparty, acct *models.BankAccount) (sepa.Transaction, error) {
	items, err := r.exporter.repo.LineItems(pi.ID)
	if err != nil {
		return sepa.Transaction{}, fmt.Errorf("loading line items of instruction %s: %w", pi.ID, err)
	}
	e2e, err := reference.EndToEndID(pi.ID, items)
	if err != nil {
		return sepa.Transaction{}, err
	}
	return sepa.Transaction{
		EndToEndID:   e2e,
		Amount:       pi.Amount,
		Counterparty: cp.Name,
		IBAN:         acct.IBAN,
		BIC:          acct.BIC,
		Remittance:   reference.RemittanceLine(cp, items, r.exporter.style),
	}, nil
}

func (r *exportRun) header() sepa.Header {
	return sepa.Header{
		BatchCreatedAt:  r.batch.CreatedAt,
		InitiatingParty: r.batch.InitiatingPartyName(),
	}
}

func (r *exportRun) paymentInfo(scheme models.Scheme, seq models.SequenceType) sepa.PaymentInfo {
	return sepa.PaymentInfo{
		RequestedDate:  r.result.SettlementDate,
		OriginatorName: r.batch.InitiatingPartyName(),
		IBAN:           r.batch.Originator.IBAN,
		BIC:            r.batch.Originator.BIC,
		Scheme:         scheme,
		Sequence:       seq,
	}
}

// finish marshals a completed builder and appends the message.
func (r *exportRun) finish(b *sepa.Builder, msg Message) error {
	doc, err := b.Done()
	if err != nil {
		return err
	}
	data, err := sepa.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshalling %s message: %w", msg.Variant, err)
	}

	msg.Count = b.Count()
	msg.ControlSum = models.NewMoney(b.ControlSum(), r.result.ControlSum.Currency)
	msg.Document = doc
	msg.Data = data

	sum, err := r.result.ControlSum.Add(msg.ControlSum)
	if err != nil {
		return err
	}
	r.result.ControlSum = sum
	r.result.Count += msg.Count
	r.result.Documents = append(r.result.Documents, msg)

	r.exporter.recorder.MessageWritten(r.rule, msg.Variant, msg.Count, msg.ControlSum)
	r.logger.Debug("Message generated",
		logging.F(logging.FieldVariant, msg.Variant),
		logging.F(logging.FieldCount, msg.Count),
		logging.F(logging.FieldControlSum, msg.ControlSum.SEPAAmount()),
	)
	return nil
}

// checkBatch rejects batches that cannot form one consistent export and
// returns the common currency.
func checkBatch(batch models.BatchMetadata, instructions []models.PaymentInstruction) (string, error) {
	subject := "batch " + batch.ID
	if len(instructions) == 0 {
		return "", exporterror.New(exporterror.ErrEmptyBatch, subject, "no payment instructions")
	}
	if batch.PayDate.IsZero() {
		return "", exporterror.New(exporterror.ErrInconsistentBatch, subject, "pay date not set")
	}

	currency := strings.ToUpper(strings.TrimSpace(batch.Currency))
	if currency == "" {
		currency = instructions[0].Amount.Currency
	}

	for _, pi := range instructions {
		instr := "instruction " + pi.ID
		switch {
		case !pi.Amount.IsPositive():
			return "", &exporterror.ExportError{Kind: exporterror.ErrInconsistentBatch, Subject: instr, Value: pi.Amount.String(), Reason: "amount must be positive"}
		case !pi.Amount.HasWholeCents():
			return "", &exporterror.ExportError{Kind: exporterror.ErrInconsistentBatch, Subject: instr, Value: pi.Amount.Amount.String(), Reason: "amount has more than two fraction digits"}
		case pi.Amount.Currency != currency:
			return "", &exporterror.ExportError{Kind: exporterror.ErrInconsistentBatch, Subject: instr, Value: pi.Amount.Currency, Reason: "currency differs from " + currency}
		case pi.BatchID != "" && batch.ID != "" && pi.BatchID != batch.ID:
			return "", &exporterror.ExportError{Kind: exporterror.ErrInconsistentBatch, Subject: instr, Value: pi.BatchID, Reason: "belongs to another batch"}
		case pi.OrgID != "" && batch.OrgID != "" && pi.OrgID != batch.OrgID:
			return "", &exporterror.ExportError{Kind: exporterror.ErrInconsistentBatch, Subject: instr, Value: pi.OrgID, Reason: "belongs to another originator"}
		}
	}
	return currency, nil
}

func failureKind(err error) string {
	var ee *exporterror.ExportError
	if errors.As(err, &ee) && ee.Kind != nil {
		return ee.Kind.Error()
	}
	return "internal"
}

type nopRecorder struct{}

func (nopRecorder) MessageWritten(models.PaymentRule, string, int, models.Money) {}
func (nopRecorder) MandatesMarked(int)                                          {}
func (nopRecorder) ExportSucceeded(models.PaymentRule)                          {}
func (nopRecorder) ExportFailed(models.PaymentRule, string)                     {}
