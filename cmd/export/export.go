// Package export implements the command that writes a payment batch as SEPA file.
package export

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"fjacquet/sepa-export/cmd/root"
	"fjacquet/sepa-export/internal/fileutils"
	"fjacquet/sepa-export/internal/logging"
	"fjacquet/sepa-export/pkg/sepaexport"
)

// Flags of the export command.
var (
	Rule    string
	BatchID string
	Style   string
	Report  bool
)

// Cmd represents the export command
var Cmd = &cobra.Command{
	Use:   "export",
	Short: "Export a payment batch as SEPA XML file",
	Long: `Export a payment batch as SEPA XML file.

The batch is read from a YAML batch file or a SQLite database. Credit transfers
(--rule direct-deposit) are written as one pain.001 document, direct debits
(--rule direct-debit) as a zip archive with one pain.008 document per mandate
scheme and sequence type. First collections mark their mandate as used.

Example:
  sepa-export export -i batch.yaml --rule direct-debit -o out/
  sepa-export export -i payments.db --batch 2024-03 --rule T --report`,
	RunE: exportFunc,
}

func init() {
	Cmd.Flags().StringVarP(&Rule, "rule", "r", "", "Payment rule: direct-debit (D) or direct-deposit (T)")
	Cmd.Flags().StringVarP(&BatchID, "batch", "b", "", "Batch to export, required when the source holds several")
	Cmd.Flags().StringVar(&Style, "style", "", "Remittance style: structured or tagged (default from config)")
	Cmd.Flags().BoolVar(&Report, "report", false, "Also write a CSV summary next to the file")
	_ = Cmd.MarkFlagRequired("rule")
}

func exportFunc(cmd *cobra.Command, args []string) error {
	c := root.GetContainer()
	if c == nil {
		return errors.New("application is not initialized")
	}
	logger := c.GetLogger()

	outputDir := c.GetConfig().Output.Directory
	if err := fileutils.EnsureDirectoryExists(outputDir); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	source, err := c.OpenSource(ctx, root.SharedFlags.Input)
	if err != nil {
		return fmt.Errorf("opening batch source: %w", err)
	}
	defer func() {
		if err := source.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close batch source")
		}
	}()

	out := sepaexport.ExportToFile(c, source, sepaexport.Request{
		Rule:      Rule,
		BatchID:   BatchID,
		OutputDir: outputDir,
		Style:     Style,
		Report:    Report,
	})
	if !out.Succeeded() {
		return errors.New(out.Message)
	}

	logger.Info("Export written",
		logging.F(logging.FieldOutputFile, out.Path),
		logging.F(logging.FieldCount, out.Count))
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d transactions to %s\n", out.Count, out.Path)
	if out.ReportPath != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", out.ReportPath)
	}
	return nil
}
