package exporterror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExportError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *ExportError
		expected string
	}{
		{
			name:     "identifier with value and reason",
			err:      InvalidIdentifier("Acme GmbH", "IBAN", "DE00123", "checksum mismatch"),
			expected: "invalid identifier for IBAN of Acme GmbH ('DE00123'): checksum mismatch",
		},
		{
			name:     "rule selector",
			err:      UnsupportedPaymentRule("X"),
			expected: "unsupported payment rule ('X')",
		},
		{
			name:     "subject only",
			err:      New(ErrMissingScheme, "counterparty 42", ""),
			expected: "missing mandate scheme for counterparty 42",
		},
		{
			name:     "wrapped cause",
			err:      &ExportError{Kind: ErrNoBankingDay, Reason: "calendar exhausted", Err: errors.New("366 days checked")},
			expected: "no banking day found: calendar exhausted: 366 days checked",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestExportError_IsAndUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := fmt.Errorf("building message: %w", &ExportError{Kind: ErrEmptyReference, Subject: "instruction 7", Err: cause})

	assert.True(t, errors.Is(err, ErrEmptyReference))
	assert.True(t, errors.Is(err, cause))
	assert.False(t, errors.Is(err, ErrInvalidIdentifier))

	var exportErr *ExportError
	assert.True(t, errors.As(err, &exportErr))
	assert.Equal(t, "instruction 7", exportErr.Subject)
}

func TestLog(t *testing.T) {
	var log Log
	assert.True(t, log.Empty())
	assert.NoError(t, log.Err())

	log.Add(nil)
	assert.True(t, log.Empty())

	log.Add(New(ErrNoUsableAccount, "Meier", ""))
	log.Addf("export aborted after %d instructions", 2)

	assert.False(t, log.Empty())
	assert.True(t, errors.Is(log.Err(), ErrNoUsableAccount))
	assert.Equal(t, "no usable bank account for Meier\nexport aborted after 2 instructions", log.String())
}
