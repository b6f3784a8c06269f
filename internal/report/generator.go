// Package report renders a per-transaction summary of an export for
// reconciliation by the accounts team.
package report

import (
	"encoding/json"
	"fmt"
	"html"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"

	"fjacquet/sepa-export/internal/exporter"
	"fjacquet/sepa-export/internal/fileutils"
	"fjacquet/sepa-export/internal/logging"
)

// Row is one transaction of an export.
type Row struct {
	RunID         string `csv:"run_id" json:"run_id"`
	Message       string `csv:"message" json:"message"`
	Variant       string `csv:"variant" json:"variant"`
	RequestedDate string `csv:"requested_date" json:"requested_date"`
	EndToEndID    string `csv:"end_to_end_id" json:"end_to_end_id"`
	Counterparty  string `csv:"counterparty" json:"counterparty"`
	IBAN          string `csv:"iban" json:"iban"`
	MandateID     string `csv:"mandate_id" json:"mandate_id,omitempty"`
	Amount        string `csv:"amount" json:"amount"`
	Currency      string `csv:"currency" json:"currency"`
	Remittance    string `csv:"remittance" json:"remittance"`
}

// ReportGenerator renders export summaries.
type ReportGenerator struct {
	logger logging.Logger
}

// NewReportGenerator creates a new instance of ReportGenerator.
func NewReportGenerator(logger logging.Logger) *ReportGenerator {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &ReportGenerator{logger: logger.WithField("component", "ReportGenerator")}
}

// Rows flattens the documents of result in message and transaction order.
func Rows(result *exporter.Result) []Row {
	var rows []Row
	for _, msg := range result.Documents {
		doc := msg.Document
		if doc == nil {
			continue
		}
		base := Row{RunID: result.RunID, Message: msg.Name, Variant: msg.Variant}
		if doc.CreditTransfer != nil {
			pi := doc.CreditTransfer.PaymentInfo
			for _, tx := range pi.Transactions {
				row := base
				row.RequestedDate = pi.RequestedDate
				row.EndToEndID = plain(tx.EndToEndID.Value)
				row.Counterparty = plain(tx.Creditor.Name.Value)
				row.IBAN = tx.CreditorAccount.IBAN
				row.Amount = tx.Amount.Value
				row.Currency = tx.Amount.Currency
				row.Remittance = plain(tx.Remittance.Unstructured.Value)
				rows = append(rows, row)
			}
		}
		if doc.DirectDebit != nil {
			pi := doc.DirectDebit.PaymentInfo
			for _, tx := range pi.Transactions {
				row := base
				row.RequestedDate = pi.RequestedDate
				row.EndToEndID = plain(tx.EndToEndID.Value)
				row.Counterparty = plain(tx.Debtor.Name.Value)
				row.IBAN = tx.DebtorAccount.IBAN
				row.MandateID = plain(tx.DirectDebit.Mandate.MandateID.Value)
				row.Amount = tx.Amount.Value
				row.Currency = tx.Amount.Currency
				row.Remittance = plain(tx.Remittance.Unstructured.Value)
				rows = append(rows, row)
			}
		}
	}
	return rows
}

// plain reverts the XML entities the sanitizer emits.
func plain(s string) string {
	return html.UnescapeString(s)
}

// GenerateReport renders result as "csv" or "json".
func (g *ReportGenerator) GenerateReport(result *exporter.Result, format string) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("cannot report a nil export result")
	}
	rows := Rows(result)
	switch strings.ToLower(format) {
	case "csv":
		out, err := gocsv.MarshalBytes(&rows)
		if err != nil {
			g.logger.WithError(err).Error("Failed to marshal CSV report")
			return nil, fmt.Errorf("failed to marshal CSV report: %w", err)
		}
		return out, nil
	case "json":
		out, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			g.logger.WithError(err).Error("Failed to marshal JSON report")
			return nil, fmt.Errorf("failed to marshal JSON report: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}
}

// WriteReport writes the CSV report next to the artifact, named after
// it with a ".csv" suffix, and returns the path.
func (g *ReportGenerator) WriteReport(result *exporter.Result, dir string) (string, error) {
	data, err := g.GenerateReport(result, "csv")
	if err != nil {
		return "", err
	}
	name := strings.TrimSuffix(result.Artifact.Name, filepath.Ext(result.Artifact.Name)) + ".csv"
	path := filepath.Join(dir, name)
	if err := fileutils.WriteFileAtomic(path, data, 0644); err != nil {
		return "", err
	}
	g.logger.Info("Wrote export report",
		logging.F(logging.FieldOutputFile, path),
		logging.F(logging.FieldCount, result.Count))
	return path, nil
}
