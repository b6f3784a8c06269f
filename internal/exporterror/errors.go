// Package exporterror defines the failure taxonomy of a SEPA export.
//
// Every failure aborts the export. Callers match on the sentinel values
// with errors.Is; the *ExportError wrapper carries the subject (account
// owner, instruction id, rule selector) for the human-readable message.
package exporterror

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/multierr"
)

var (
	// ErrUnsupportedPaymentRule is returned for a rule selector other than
	// direct debit or direct deposit.
	ErrUnsupportedPaymentRule = errors.New("unsupported payment rule")
	// ErrInvalidIdentifier covers bad IBANs and malformed or oversized BICs.
	ErrInvalidIdentifier = errors.New("invalid identifier")
	// ErrNoUsableAccount means the counterparty has no active, IBAN-bearing
	// account with the required capability.
	ErrNoUsableAccount = errors.New("no usable bank account")
	// ErrMissingScheme means a direct-debit account has no B2B/COR1 scheme.
	ErrMissingScheme = errors.New("missing mandate scheme")
	// ErrEmptyReference means no line item carries a document number.
	ErrEmptyReference = errors.New("empty end-to-end reference")
	// ErrEmptyBatch means there is nothing to export.
	ErrEmptyBatch = errors.New("empty batch")
	// ErrInconsistentBatch flags instructions that cannot share a message.
	ErrInconsistentBatch = errors.New("inconsistent batch")
	// ErrNoBankingDay means no settlement date could be found.
	ErrNoBankingDay = errors.New("no banking day found")
)

// ExportError attaches context to one of the sentinel kinds.
type ExportError struct {
	Kind    error
	Subject string
	Value   string
	Reason  string
	Err     error
}

func (e *ExportError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Subject != "" {
		b.WriteString(" for ")
		b.WriteString(e.Subject)
	}
	if e.Value != "" {
		fmt.Fprintf(&b, " ('%s')", e.Value)
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Is matches the sentinel kind.
func (e *ExportError) Is(target error) bool {
	return e.Kind == target
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// New builds an ExportError of the given kind.
func New(kind error, subject, reason string) *ExportError {
	return &ExportError{Kind: kind, Subject: subject, Reason: reason}
}

// InvalidIdentifier reports a rejected IBAN or BIC of a named owner.
func InvalidIdentifier(owner, field, value, reason string) *ExportError {
	return &ExportError{
		Kind:    ErrInvalidIdentifier,
		Subject: fmt.Sprintf("%s of %s", field, owner),
		Value:   value,
		Reason:  reason,
	}
}

// UnsupportedPaymentRule reports an unknown rule selector.
func UnsupportedPaymentRule(rule string) *ExportError {
	return &ExportError{Kind: ErrUnsupportedPaymentRule, Value: rule}
}

// Log accumulates failures into the single message handed back to the
// host application.
type Log struct {
	err error
}

// Add appends err; nil is ignored.
func (l *Log) Add(err error) {
	l.err = multierr.Append(l.err, err)
}

// Addf appends a formatted message.
func (l *Log) Addf(format string, args ...interface{}) {
	l.Add(fmt.Errorf(format, args...))
}

// Err returns the combined error or nil.
func (l *Log) Err() error {
	return l.err
}

// Empty reports whether nothing was recorded.
func (l *Log) Empty() bool {
	return l.err == nil
}

// String renders one failure per line.
func (l *Log) String() string {
	errs := multierr.Errors(l.err)
	lines := make([]string, 0, len(errs))
	for _, err := range errs {
		lines = append(lines, err.Error())
	}
	return strings.Join(lines, "\n")
}
