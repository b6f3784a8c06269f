package exporter

import (
	"fmt"

	"fjacquet/sepa-export/internal/exporterror"
	"fjacquet/sepa-export/internal/fileutils"
	"fjacquet/sepa-export/internal/logging"
	"fjacquet/sepa-export/internal/mandate"
	"fjacquet/sepa-export/internal/models"
	"fjacquet/sepa-export/internal/sepa"
)

// directDebit classifies, persists first-use marks, then builds one
// pain.008 message per non-empty bucket and zips them.
func (r *exportRun) directDebit(instructions []models.PaymentInstruction) error {
	repo := r.exporter.repo

	classified, err := mandate.Classify(instructions, repo)
	if err != nil {
		return err
	}

	creditorID, err := repo.CreditorIdentifier(r.batch.OrgID)
	if err != nil {
		return fmt.Errorf("loading creditor identifier of %s: %w", r.batch.OrgID, err)
	}
	if creditorID == "" {
		return exporterror.New(exporterror.ErrMissingScheme, "organization "+r.batch.OrgID, "creditor identifier not set")
	}

	marked, err := mandate.Apply(classified.Marks, repo)
	r.result.MandatesMarked = marked
	r.exporter.recorder.MandatesMarked(marked)
	if err != nil {
		return err
	}
	for _, m := range classified.Marks {
		r.logger.Debug("Mandate marked as used",
			logging.F(logging.FieldAccountID, m.Account.ID),
			logging.F(logging.FieldCounterparty, m.CounterpartyID),
			logging.F(logging.FieldMandateID, m.MandateID))
	}

	stamp := r.stamp()
	var entries []fileutils.ArchiveEntry
	for _, bucket := range classified.Buckets {
		name := fmt.Sprintf("%s%s-%s-%s.xml", PrefixDirectDebit, stamp, bucket.Scheme, bucket.Sequence)
		if err := r.bucket(bucket, creditorID, name); err != nil {
			return err
		}
		msg := r.result.Documents[len(r.result.Documents)-1]
		entries = append(entries, fileutils.ArchiveEntry{Name: msg.Name, Data: msg.Data})
	}

	data, err := fileutils.BuildZip(entries, r.now)
	if err != nil {
		return err
	}
	r.result.Artifact = Artifact{
		Name:        PrefixDirectDebit + stamp + ".zip",
		ContentType: ContentTypeZip,
		Data:        data,
	}
	return nil
}

func (r *exportRun) bucket(bucket mandate.Bucket, creditorID, name string) error {
	b := sepa.NewBuilder(sepa.DirectDebit, r.now)
	if err := b.Header(r.header()); err != nil {
		return err
	}
	if err := b.PaymentInfo(r.paymentInfo(bucket.Scheme, bucket.Sequence)); err != nil {
		return err
	}

	for _, entry := range bucket.Entries {
		tx, err := r.transaction(entry.Instruction, entry.Counterparty, entry.Account)
		if err != nil {
			return err
		}
		tx.Mandate = &sepa.Mandate{
			ID:                 entry.Account.MandateID,
			SignedOn:           entry.Account.MandateSignedOn,
			CreditorIdentifier: creditorID,
		}
		if err := b.Transaction(tx); err != nil {
			return err
		}
	}

	return r.finish(b, Message{
		Name:     name,
		Variant:  bucket.Key(),
		Scheme:   bucket.Scheme,
		Sequence: bucket.Sequence,
	})
}
