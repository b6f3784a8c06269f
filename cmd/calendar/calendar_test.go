package calendar_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/sepa-export/cmd/calendar"
	"fjacquet/sepa-export/cmd/root"
	"fjacquet/sepa-export/internal/config"
	"fjacquet/sepa-export/internal/container"
	"fjacquet/sepa-export/internal/logging"
)

func TestSettlementDateCommand_Metadata(t *testing.T) {
	assert.Equal(t, "settlement-date", calendar.Cmd.Use)
	assert.Contains(t, calendar.Cmd.Short, "banking day")
	assert.Contains(t, calendar.Cmd.Long, "TARGET2")
	assert.NotNil(t, calendar.Cmd.RunE)

	shift := calendar.Cmd.Flags().Lookup("shift")
	require.NotNil(t, shift)
	assert.Equal(t, "-1", shift.DefValue)
	assert.NotNil(t, calendar.Cmd.Flags().Lookup("date"))
}

func TestSettlementDateCommand(t *testing.T) {
	batchFile := filepath.Join("..", "..", "internal", "store", "testdata", "batch.yaml")

	tests := []struct {
		name    string
		date    string
		shift   int
		input   string
		sepa    config.SEPAConfig
		want    string
		wantErr string
	}{
		{name: "banking day kept", date: "2024-03-05", shift: 0, want: "2024-03-05 (Tue)\n"},
		{name: "saturday to monday", date: "2024-03-02", shift: 0, want: "2024-03-04 (Mon)\nmoved 2 days from 2024-03-02\n"},
		{name: "european input", date: "02.03.2024", shift: 0, want: "2024-03-04 (Mon)\nmoved 2 days from 2024-03-02\n"},
		{name: "configured shift", date: "2024-03-05", shift: -1, sepa: config.SEPAConfig{ShiftDays: 2}, want: "2024-03-07 (Thu)\nmoved 2 days from 2024-03-05\n"},
		{
			name: "store holiday friday", date: "2024-03-01", input: batchFile,
			sepa: config.SEPAConfig{BankHolidayKeyword: "Bank%"},
			want: "2024-03-04 (Mon)\nmoved 3 days from 2024-03-01\n",
		},
		{
			name: "store holidays chained", date: "2024-03-01", input: batchFile,
			sepa: config.SEPAConfig{BankHolidayKeyword: "B%"},
			want: "2024-03-05 (Tue)\nmoved 4 days from 2024-03-01\n",
		},
		{
			name: "target closing days", date: "2024-12-25",
			sepa: config.SEPAConfig{TargetHolidays: true},
			want: "2024-12-27 (Fri)\nmoved 2 days from 2024-12-25\n",
		},
		{name: "bad date", date: "March 1st", wantErr: "unable to parse date"},
		{name: "missing source", date: "2024-03-01", input: "absent.yaml", wantErr: "opening batch source"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			originalContainer, originalFlags := root.AppContainer, root.SharedFlags
			originalDate, originalShift := calendar.Date, calendar.Shift
			defer func() {
				root.AppContainer, root.SharedFlags = originalContainer, originalFlags
				calendar.Date, calendar.Shift = originalDate, originalShift
			}()

			tt.sepa.RemittanceStyle = "structured"
			c, err := container.NewContainerWithLogger(&config.Config{
				Log:    config.LogConfig{Level: "info", Format: "text"},
				SEPA:   tt.sepa,
				Store:  config.StoreConfig{Type: config.StoreYAML},
				Output: config.OutputConfig{Directory: t.TempDir()},
			}, logging.NewMockLogger())
			require.NoError(t, err)
			root.AppContainer = c

			input := tt.input
			if input != "" && input != batchFile {
				input = filepath.Join(t.TempDir(), input)
			}
			if input == batchFile {
				data, err := os.ReadFile(batchFile)
				require.NoError(t, err)
				input = filepath.Join(t.TempDir(), "batch.yaml")
				require.NoError(t, os.WriteFile(input, data, 0600))
			}
			root.SharedFlags = root.CommonFlags{Input: input}
			calendar.Date, calendar.Shift = tt.date, tt.shift

			var buf bytes.Buffer
			calendar.Cmd.SetOut(&buf)
			defer calendar.Cmd.SetOut(nil)

			err = calendar.Cmd.RunE(calendar.Cmd, nil)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}
