package textutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchLike(t *testing.T) {
	tests := []struct {
		pattern string
		value   string
		want    bool
	}{
		{"%Bank%", "Bankfeiertag Heiligabend", true},
		{"%Bank%", "Heiligabend (Bank)", true},
		{"%Bank%", "Betriebsurlaub", false},
		{"%Bank%", "bankfeiertag", false},
		{"Bank", "Bank", true},
		{"Bank", "Bankfeiertag", false},
		{"B_nk", "Bunk", true},
		{"B_nk", "Bnk", false},
		{"a.b%", "a.bc", true},
		{"a.b%", "axbc", false},
		{"%", "", true},
		{"", "", true},
		{"", "Bank", false},
	}
	for _, tt := range tests {
		t.Run(tt.pattern+"/"+tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchLike(tt.pattern, tt.value))
		})
	}
}
