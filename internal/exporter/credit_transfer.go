package exporter

import (
	"fmt"

	"fjacquet/sepa-export/internal/exporterror"
	"fjacquet/sepa-export/internal/models"
	"fjacquet/sepa-export/internal/sepa"
)

const variantTransfer = "TRF"

// creditTransfer builds one pain.001 message over all instructions.
func (r *exportRun) creditTransfer(instructions []models.PaymentInstruction) error {
	b := sepa.NewBuilder(sepa.CreditTransfer, r.now)
	if err := b.Header(r.header()); err != nil {
		return err
	}
	if err := b.PaymentInfo(r.paymentInfo("", "")); err != nil {
		return err
	}

	for _, pi := range instructions {
		cp, err := r.exporter.repo.Counterparty(pi.CounterpartyID)
		if err != nil {
			return fmt.Errorf("resolving counterparty of instruction %s: %w", pi.ID, err)
		}
		acct, ok := cp.UsableAccount(models.DirectDeposit)
		if !ok {
			return &exporterror.ExportError{
				Kind:    exporterror.ErrNoUsableAccount,
				Subject: cp.String(),
				Reason:  "no active direct-deposit account with IBAN",
			}
		}
		tx, err := r.transaction(pi, cp, acct)
		if err != nil {
			return err
		}
		if err := b.Transaction(tx); err != nil {
			return err
		}
	}

	name := PrefixCreditTransfer + r.stamp() + ".xml"
	if err := r.finish(b, Message{Name: name, Variant: variantTransfer}); err != nil {
		return err
	}
	r.result.Artifact = Artifact{
		Name:        name,
		ContentType: ContentTypeXML,
		Data:        r.result.Documents[0].Data,
	}
	return nil
}
