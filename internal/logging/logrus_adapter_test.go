package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogrusAdapter(t *testing.T) {
	tests := []struct {
		name        string
		level       string
		format      string
		expectLevel logrus.Level
		expectJSON  bool
	}{
		{name: "debug text", level: "debug", format: "text", expectLevel: logrus.DebugLevel},
		{name: "info json", level: "info", format: "json", expectLevel: logrus.InfoLevel, expectJSON: true},
		{name: "warn text", level: "warn", format: "text", expectLevel: logrus.WarnLevel},
		{name: "invalid level falls back to info", level: "chatty", format: "text", expectLevel: logrus.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := NewLogrusAdapter(tt.level, tt.format)
			adapter, ok := logger.(*LogrusAdapter)
			require.True(t, ok)
			assert.Equal(t, tt.expectLevel, adapter.logger.Level)

			_, isJSON := adapter.logger.Formatter.(*logrus.JSONFormatter)
			assert.Equal(t, tt.expectJSON, isJSON)
		})
	}
}

func TestNewLogrusAdapterFromLogger_Nil(t *testing.T) {
	adapter, ok := NewLogrusAdapterFromLogger(nil).(*LogrusAdapter)
	require.True(t, ok)
	assert.NotNil(t, adapter.logger)
}

func TestLogrusAdapter_JSONOutputCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogrusAdapterWithOutput("debug", "json", &buf)

	logger.WithField(FieldRunID, "run-1").
		WithError(errors.New("iban rejected")).
		Error("export failed", F(FieldRule, "direct-debit"), F(FieldCount, 3))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "export failed", entry["msg"])
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "run-1", entry[FieldRunID])
	assert.Equal(t, "direct-debit", entry[FieldRule])
	assert.Equal(t, float64(3), entry[FieldCount])
	assert.Equal(t, "iban rejected", entry["error"])
}

func TestLogrusAdapter_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogrusAdapterWithOutput("warn", "text", &buf)

	logger.Debug("hidden")
	logger.Info("hidden too")
	logger.Warn("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
}

func TestConvertFields(t *testing.T) {
	got := convertFields([]Field{F("a", "x"), F("b", 42)})
	assert.Len(t, got, 2)
	assert.Equal(t, "x", got["a"])
	assert.Equal(t, 42, got["b"])
	assert.Empty(t, convertFields(nil))
}

func TestMockLogger_ChildLoggersShareEntries(t *testing.T) {
	mock := NewMockLogger()
	var logger Logger = mock

	child := logger.WithField(FieldRunID, "r1").WithFields(F(FieldScheme, "B2B"))
	child.Info("bucket built", F(FieldCount, 2))
	logger.WithError(errors.New("boom")).Error("failed")

	require.Len(t, mock.Entries, 2)
	assert.True(t, mock.HasEntry("INFO", "bucket built"))

	v, ok := mock.Entries[0].FieldValue(FieldScheme)
	require.True(t, ok)
	assert.Equal(t, "B2B", v)
	v, ok = mock.Entries[0].FieldValue(FieldRunID)
	require.True(t, ok)
	assert.Equal(t, "r1", v)

	errs := mock.GetEntriesByLevel("ERROR")
	require.Len(t, errs, 1)
	assert.EqualError(t, errs[0].Error, "boom")

	mock.Clear()
	assert.Empty(t, mock.Entries)
}

func TestImplementsLogger(t *testing.T) {
	var _ Logger = (*LogrusAdapter)(nil)
	var _ Logger = (*MockLogger)(nil)
}
