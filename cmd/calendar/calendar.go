// Package calendar implements the settlement date helper command.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"fjacquet/sepa-export/cmd/root"
	"fjacquet/sepa-export/internal/dateutils"
	"fjacquet/sepa-export/internal/store"
)

// Flags of the settlement-date command. Shift below zero means the
// configured sepa.shift_days.
var (
	Date  string
	Shift int
)

// Cmd represents the settlement-date command
var Cmd = &cobra.Command{
	Use:   "settlement-date",
	Short: "Show the banking day a pay date settles on",
	Long: `Show the banking day a pay date settles on.

The pay date is moved forward by the shift days and then to the next day that
is neither a weekend nor a configured non-business day. With --input the
non-business days matching sepa.bank_holiday_keyword are read from the batch
source; sepa.target_holidays adds the TARGET2 closing days.

Example:
  sepa-export settlement-date --date 2024-12-24 --shift 1`,
	RunE: settlementDateFunc,
}

func init() {
	Cmd.Flags().StringVarP(&Date, "date", "d", "", "Pay date (YYYY-MM-DD or DD.MM.YYYY)")
	Cmd.Flags().IntVar(&Shift, "shift", -1, "Days added before the banking-day search (default sepa.shift_days)")
	_ = Cmd.MarkFlagRequired("date")
}

func settlementDateFunc(cmd *cobra.Command, args []string) error {
	c := root.GetContainer()
	if c == nil {
		return errors.New("application is not initialized")
	}

	date, err := dateutils.ParseDate(Date)
	if err != nil {
		return err
	}
	shift := Shift
	if shift < 0 {
		shift = c.GetConfig().SEPA.ShiftDays
	}

	var source store.Source
	if root.SharedFlags.Input != "" {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		if source, err = c.OpenSource(ctx, root.SharedFlags.Input); err != nil {
			return fmt.Errorf("opening batch source: %w", err)
		}
		defer source.Close()
	}
	holidays, err := c.Holidays(source)
	if err != nil {
		return err
	}

	settlement, err := dateutils.ShiftToValidSettlementDate(date, shift, holidays)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", dateutils.ToISODate(settlement), settlement.Format("Mon"))
	if !dateutils.SameDay(date, settlement) {
		fmt.Fprintf(cmd.OutOrStdout(), "moved %d days from %s\n", int(settlement.Sub(date)/(24*time.Hour)), dateutils.ToISODate(date))
	}
	return nil
}
