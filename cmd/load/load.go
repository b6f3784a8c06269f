// Package load implements the command that copies a YAML batch file
// into a SQLite database.
package load

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"fjacquet/sepa-export/cmd/root"
	"fjacquet/sepa-export/internal/database"
	"fjacquet/sepa-export/internal/logging"
	"fjacquet/sepa-export/internal/store"
)

// Database is the target of the import; empty means store.path.
var Database string

// Cmd represents the import command
var Cmd = &cobra.Command{
	Use:   "import",
	Short: "Import a YAML batch file into a SQLite database",
	Long: `Import a YAML batch file into a SQLite database.

Organizations, counterparties with their bank accounts, payment instructions,
line items and non-business days are written in one transaction. Records that
already exist are replaced, so a batch file may be imported again after edits.

Example:
  sepa-export import -i batch.yaml --db payments.db`,
	RunE: importFunc,
}

func init() {
	Cmd.Flags().StringVar(&Database, "db", "", "SQLite database file (default store.path)")
}

func importFunc(cmd *cobra.Command, args []string) error {
	c := root.GetContainer()
	if c == nil {
		return errors.New("application is not initialized")
	}
	logger := c.GetLogger()

	input := root.SharedFlags.Input
	if input == "" {
		return errors.New("no input given: pass --input with a YAML batch file")
	}
	target := Database
	if target == "" {
		target = c.GetConfig().Store.Path
	}
	if target == "" {
		return errors.New("no database given: pass --db or set store.path")
	}

	file, err := store.LoadBatchFile(input)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	repo, err := database.Open(ctx, target, logger)
	if err != nil {
		return err
	}
	defer repo.Close()

	if err := repo.Import(ctx, file); err != nil {
		return fmt.Errorf("importing %s: %w", input, err)
	}
	logger.Info("Imported batch file",
		logging.F(logging.FieldInputFile, input),
		logging.F(logging.FieldCount, len(file.Instructions)))
	fmt.Fprintf(cmd.OutOrStdout(), "Imported batch %s with %d instructions into %s\n",
		file.Batch.ID, len(file.Instructions), target)
	return nil
}
