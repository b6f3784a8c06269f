// Package verify implements the command that re-reads generated SEPA files.
package verify

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"fjacquet/sepa-export/cmd/root"
	"fjacquet/sepa-export/internal/exporterror"
	"fjacquet/sepa-export/internal/fileutils"
	"fjacquet/sepa-export/internal/logging"
	"fjacquet/sepa-export/internal/sepa"
	"fjacquet/sepa-export/internal/validation"
)

// Cmd represents the verify command
var Cmd = &cobra.Command{
	Use:   "verify",
	Short: "Check the totals of a generated SEPA file",
	Long: `Check the totals of a generated SEPA file.

The input is a pain.001 XML document or a direct-debit zip archive. Every
document is read back with XPath and its NbOfTxs and CtrlSum values are
compared with the transactions it contains, both in the group header and
in each payment information block.

Example:
  sepa-export verify -i SEPA-Direct-Debit-2024-03-01-10-00-00.zip`,
	RunE: verifyFunc,
}

func verifyFunc(cmd *cobra.Command, args []string) error {
	input := root.SharedFlags.Input
	if input == "" && len(args) > 0 {
		input = args[0]
	}
	if input == "" {
		return errors.New("no input given: pass --input")
	}
	abs, err := filepath.Abs(input)
	if err != nil {
		return err
	}
	if err := validation.IsValidPath(abs); err != nil {
		return err
	}

	data, err := fileutils.ReadFile(abs)
	if err != nil {
		return err
	}

	documents := []fileutils.ArchiveEntry{{Name: filepath.Base(abs), Data: data}}
	if fileutils.IsZip(data) {
		if documents, err = fileutils.ReadZip(data); err != nil {
			return fmt.Errorf("reading archive %s: %w", input, err)
		}
	}

	var errs exporterror.Log
	for _, doc := range documents {
		summary, err := sepa.Verify(doc.Data)
		if err != nil {
			errs.Addf("%s: %v", doc.Name, err)
			continue
		}
		printSummary(cmd.OutOrStdout(), doc.Name, summary)
	}
	if !errs.Empty() {
		root.Log.Error("Verification failed", logging.F(logging.FieldInputFile, input))
		return errors.New(errs.String())
	}
	return nil
}

func printSummary(w io.Writer, name string, s *sepa.Summary) {
	fmt.Fprintf(w, "%s: %s %s, %d transactions, control sum %s\n",
		name, s.Type, s.MessageID, s.Transactions, s.ControlSum.StringFixed(2))
	for _, p := range s.Payments {
		if p.SequenceType != "" {
			fmt.Fprintf(w, "  %s %s/%s on %s: %d transactions, %s\n",
				p.ID, p.LocalInstrument, p.SequenceType, p.RequestedDate, p.Transactions, p.ControlSum.StringFixed(2))
			continue
		}
		fmt.Fprintf(w, "  %s on %s: %d transactions, %s\n",
			p.ID, p.RequestedDate, p.Transactions, p.ControlSum.StringFixed(2))
	}
}
