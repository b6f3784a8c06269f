package validation

import (
	"regexp"
	"strings"

	"fjacquet/sepa-export/internal/exporterror"
)

const maxBICLength = 11

var (
	ibanPattern = regexp.MustCompile(`^[A-Z]{2}[0-9]{2}[A-Z0-9]+$`)
	bicPattern  = regexp.MustCompile(`^[A-Z]{4}[A-Z]{2}[A-Z0-9]{2}([A-Z0-9]{3})?$`)

	ibanFormatting = strings.NewReplacer(" ", "", "\t", "", "-", "", ".", "", "\u00a0", "")
)

// ibanLengths holds the fixed IBAN length of the SEPA member countries.
// Countries not listed only need to satisfy the global 15..34 range.
var ibanLengths = map[string]int{
	"AD": 24, "AT": 20, "BE": 16, "BG": 22, "CH": 21, "CY": 28, "CZ": 24,
	"DE": 22, "DK": 18, "EE": 20, "ES": 24, "FI": 18, "FR": 27, "GB": 22,
	"GI": 23, "GR": 27, "HR": 21, "HU": 28, "IE": 22, "IS": 26, "IT": 27,
	"LI": 21, "LT": 20, "LU": 20, "LV": 21, "MC": 27, "MT": 31, "NL": 18,
	"NO": 15, "PL": 28, "PT": 25, "RO": 24, "SE": 24, "SI": 19, "SK": 24,
	"SM": 27, "VA": 22,
}

// NormalizeIBAN strips spacing and punctuation and upper-cases the result.
func NormalizeIBAN(raw string) string {
	return strings.ToUpper(ibanFormatting.Replace(strings.TrimSpace(raw)))
}

// IsValidIBAN checks structure, country length and the ISO 7064
// mod-97 checksum of an already normalized IBAN.
func IsValidIBAN(iban string) bool {
	if len(iban) < 15 || len(iban) > 34 || !ibanPattern.MatchString(iban) {
		return false
	}
	if want, ok := ibanLengths[iban[:2]]; ok && len(iban) != want {
		return false
	}
	return mod97(iban[4:]+iban[:4]) == 1
}

// mod97 computes the remainder of the numeric expansion of s, where
// letters count as two digits (A=10 ... Z=35).
func mod97(s string) int {
	rem := 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			rem = (rem*10 + int(r-'0')) % 97
		case r >= 'A' && r <= 'Z':
			v := int(r-'A') + 10
			rem = (rem*100 + v) % 97
		default:
			return -1
		}
	}
	return rem
}

// IsValidBIC accepts an empty BIC. Otherwise it must have 8 or 11
// characters: bank code, country, location and an optional branch.
func IsValidBIC(bic string) bool {
	if bic == "" {
		return true
	}
	if len(bic) > maxBICLength {
		return false
	}
	return bicPattern.MatchString(strings.ToUpper(bic))
}

// ValidateAccount normalizes iban and checks both identifiers of the
// account held by owner. It returns the normalized IBAN and trimmed BIC.
func ValidateAccount(owner, iban, bic string) (string, string, error) {
	normalized := NormalizeIBAN(iban)
	if !IsValidIBAN(normalized) {
		return "", "", exporterror.InvalidIdentifier(owner, "IBAN", normalized, "not a valid IBAN")
	}
	bic = strings.ToUpper(strings.TrimSpace(bic))
	if len(bic) > maxBICLength {
		return "", "", exporterror.InvalidIdentifier(owner, "BIC", bic, "longer than 11 characters")
	}
	if !IsValidBIC(bic) {
		return "", "", exporterror.InvalidIdentifier(owner, "BIC", bic, "malformed")
	}
	return normalized, bic, nil
}
