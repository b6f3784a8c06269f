// Package mandate splits direct-debit instructions into the sub-batches
// SEPA requires: one per mandate scheme (B2B, COR1) and sequence type
// (FRST, RCUR).
//
// Classify is pure. It returns the buckets together with the "mark
// used" requests for mandates collected for the first time; Apply
// executes those requests against the store.
package mandate

import (
	"fmt"

	"fjacquet/sepa-export/internal/exporterror"
	"fjacquet/sepa-export/internal/models"
)

// CounterpartySource resolves the payer of an instruction.
type CounterpartySource interface {
	Counterparty(id string) (*models.Counterparty, error)
}

// Marker persists the "already used" flag of a mandate account.
type Marker interface {
	MarkMandateUsed(accountID string) error
}

// Entry is an instruction together with its resolved payer account.
type Entry struct {
	Instruction  models.PaymentInstruction
	Counterparty *models.Counterparty
	Account      *models.BankAccount
}

// Bucket is one (scheme, sequence) sub-batch, entries in input order.
type Bucket struct {
	Scheme   models.Scheme
	Sequence models.SequenceType
	Entries  []Entry
}

// Key renders the bucket as "B2B-FRST" etc.
func (b Bucket) Key() string {
	return fmt.Sprintf("%s-%s", b.Scheme, b.Sequence)
}

// MarkRequest asks for an account to be flagged as used.
type MarkRequest struct {
	Account        *models.BankAccount
	CounterpartyID string
	MandateID      string
}

// Result holds the non-empty buckets in B2B/FRST, B2B/RCUR, COR1/FRST,
// COR1/RCUR order and the pending mark requests.
type Result struct {
	Buckets []Bucket
	Marks   []MarkRequest
}

// Count is the number of classified instructions.
func (r *Result) Count() int {
	n := 0
	for _, b := range r.Buckets {
		n += len(b.Entries)
	}
	return n
}

// Bucket returns the bucket for scheme and sequence, if non-empty.
func (r *Result) Bucket(scheme models.Scheme, seq models.SequenceType) (Bucket, bool) {
	for _, b := range r.Buckets {
		if b.Scheme == scheme && b.Sequence == seq {
			return b, true
		}
	}
	return Bucket{}, false
}

var bucketOrder = []struct {
	scheme models.Scheme
	seq    models.SequenceType
}{
	{models.SchemeB2B, models.SequenceFirst},
	{models.SchemeB2B, models.SequenceRecurring},
	{models.SchemeCOR1, models.SequenceFirst},
	{models.SchemeCOR1, models.SequenceRecurring},
}

// Classify routes every instruction into its bucket. The first failure
// aborts classification. An account routed FRST earlier in the same
// call counts as used for later instructions.
func Classify(instructions []models.PaymentInstruction, source CounterpartySource) (*Result, error) {
	grouped := make(map[string][]Entry, len(bucketOrder))
	firstInCall := make(map[string]bool)
	result := &Result{}

	for _, pi := range instructions {
		cp, err := source.Counterparty(pi.CounterpartyID)
		if err != nil {
			return nil, fmt.Errorf("resolving counterparty of instruction %s: %w", pi.ID, err)
		}

		acct, ok := cp.UsableAccount(models.DirectDebit)
		if !ok {
			return nil, &exporterror.ExportError{
				Kind:    exporterror.ErrNoUsableAccount,
				Subject: cp.String(),
				Reason:  "no active direct-debit account with IBAN",
			}
		}

		scheme, ok := models.ParseScheme(acct.Scheme)
		if !ok {
			reason := "scheme not set"
			if acct.Scheme != "" {
				reason = fmt.Sprintf("unknown scheme %q", acct.Scheme)
			}
			return nil, &exporterror.ExportError{
				Kind:    exporterror.ErrMissingScheme,
				Subject: fmt.Sprintf("account %s of %s", acct.ID, cp.String()),
				Reason:  reason,
			}
		}

		seq := models.SequenceRecurring
		if !acct.AlreadyUsed && !firstInCall[acct.ID] {
			seq = models.SequenceFirst
			firstInCall[acct.ID] = true
			result.Marks = append(result.Marks, MarkRequest{
				Account:        acct,
				CounterpartyID: cp.ID,
				MandateID:      acct.MandateID,
			})
		}

		key := string(scheme) + "-" + string(seq)
		grouped[key] = append(grouped[key], Entry{Instruction: pi, Counterparty: cp, Account: acct})
	}

	for _, o := range bucketOrder {
		entries := grouped[string(o.scheme)+"-"+string(o.seq)]
		if len(entries) == 0 {
			continue
		}
		result.Buckets = append(result.Buckets, Bucket{Scheme: o.scheme, Sequence: o.seq, Entries: entries})
	}
	return result, nil
}

// Apply executes the mark requests one by one: the in-memory flag is
// set and persisted before the next request. It stops at the first
// persistence failure.
func Apply(marks []MarkRequest, marker Marker) (int, error) {
	applied := 0
	for _, m := range marks {
		if !m.Account.MarkUsed() {
			continue
		}
		if err := marker.MarkMandateUsed(m.Account.ID); err != nil {
			return applied, fmt.Errorf("persisting mandate %s of account %s: %w", m.MandateID, m.Account.ID, err)
		}
		applied++
	}
	return applied, nil
}
