// Package sepaexport is the entry point for host applications that hand
// over a payment batch and expect a SEPA file on disk in return.
//
// The contract follows the classic payment-export plugin shape: the call
// returns the number of exported transactions, or Failed together with a
// human-readable message describing every problem found.
package sepaexport

import (
	"fmt"
	"time"

	"fjacquet/sepa-export/internal/container"
	"fjacquet/sepa-export/internal/dateutils"
	"fjacquet/sepa-export/internal/exporter"
	"fjacquet/sepa-export/internal/exporterror"
	"fjacquet/sepa-export/internal/logging"
	"fjacquet/sepa-export/internal/models"
	"fjacquet/sepa-export/internal/reference"
	"fjacquet/sepa-export/internal/store"
	"fjacquet/sepa-export/internal/validation"
)

// Failed is the count returned when an export did not produce a file.
const Failed = -1

// Request selects what to export and where to put it.
type Request struct {
	// Rule is a payment rule selector such as "D" or "direct-deposit".
	Rule string
	// BatchID may be empty when the source holds a single batch.
	BatchID string
	// OutputDir receives the artifact. Empty means the configured directory.
	OutputDir string
	// Style overrides the configured remittance style when set.
	Style string
	// Report also writes the CSV summary next to the artifact.
	Report bool
}

// Outcome is what the host gets back.
type Outcome struct {
	Count      int
	Message    string
	Path       string
	ReportPath string
	Result     *exporter.Result
}

// Succeeded reports whether a file was written.
func (o Outcome) Succeeded() bool {
	return o.Count != Failed
}

// ExportToFile runs one export against source and writes the artifact.
// On failure nothing is written, Count is Failed and Message carries the
// accumulated error text.
func ExportToFile(c *container.Container, source store.Source, req Request) Outcome {
	var errs exporterror.Log
	logger := c.GetLogger()

	dir := req.OutputDir
	if dir == "" {
		dir = c.GetConfig().Output.Directory
	}
	// Checked up front: a direct-debit export persists mandate flags.
	if err := validation.IsValidOutputDir(dir); err != nil {
		errs.Add(err)
		return failed(logger, &errs)
	}

	result, err := export(c, source, req)
	if err != nil {
		errs.Add(err)
		return failed(logger, &errs)
	}

	path, err := result.WriteArtifact(dir)
	if err != nil {
		errs.Addf("writing %s: %v", result.Artifact.Name, err)
		return failed(logger, &errs)
	}

	out := Outcome{Count: result.Count, Path: path, Result: result}
	if req.Report || c.GetConfig().Output.Report {
		reportPath, err := c.GetReportGenerator().WriteReport(result, dir)
		if err != nil {
			// The payment file stays; only the summary is missing.
			logger.WithError(err).Warn("Failed to write export report",
				logging.F(logging.FieldOutputFile, path))
		} else {
			out.ReportPath = reportPath
		}
	}
	return out
}

func export(c *container.Container, source store.Source, req Request) (*exporter.Result, error) {
	rule, err := exporter.ParsePaymentRule(req.Rule)
	if err != nil {
		return nil, err
	}

	batch, instructions, err := source.Batch(req.BatchID)
	if err != nil {
		return nil, fmt.Errorf("loading batch: %w", err)
	}

	exp, err := c.NewExporter(source)
	if err != nil {
		return nil, err
	}
	if req.Style != "" {
		style, err := reference.ParseStyle(req.Style)
		if err != nil {
			return nil, err
		}
		exp = exp.WithStyle(style)
	}
	return exp.Export(rule, batch, instructions)
}

func failed(logger logging.Logger, errs *exporterror.Log) Outcome {
	msg := errs.String()
	logger.Error("SEPA export failed", logging.F("message", msg))
	return Outcome{Count: Failed, Message: msg}
}

// FilenamePrefix is the artifact name up to the extension for an export
// started at now.
func FilenamePrefix(rule models.PaymentRule, now time.Time) string {
	stamp := now.Format(dateutils.DateLayoutFileStamp)
	if rule == models.DirectDebit {
		return exporter.PrefixDirectDebit + stamp
	}
	return exporter.PrefixCreditTransfer + stamp
}

// FilenameSuffix is the artifact extension for rule.
func FilenameSuffix(rule models.PaymentRule) string {
	if rule == models.DirectDebit {
		return ".zip"
	}
	return ".xml"
}

// ContentType is the MIME type of the artifact for rule.
func ContentType(rule models.PaymentRule) string {
	if rule == models.DirectDebit {
		return exporter.ContentTypeZip
	}
	return exporter.ContentTypeXML
}
