// Package textutils turns free text into content accepted by SEPA
// clearing: transliterated, XML-escaped and cut to field limits.
package textutils

import (
	"strings"
	"unicode/utf8"
)

// Field limits of the pain.001/pain.008 text elements.
const (
	MaxIDLength         = 35
	MaxNameLength       = 70
	MaxRemittanceLength = 140
)

var sepaReplacer = strings.NewReplacer(
	"ä", "ae",
	"ö", "oe",
	"ü", "ue",
	"Ä", "Ae",
	"Ö", "Oe",
	"Ü", "Ue",
	"ß", "ss",
	"é", "e",
	"è", "e",
	"&", "und",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

var entities = []string{"&lt;", "&gt;", "&quot;", "&apos;"}

// SepaSafe transliterates umlauts and accents, replaces '&' with "und"
// and escapes the remaining XML special characters. Invalid UTF-8 and
// characters outside the XML 1.0 Char production are dropped, so the
// result is well-formed XML character content.
func SepaSafe(text string) string {
	text = strings.Map(xmlChar, strings.ToValidUTF8(text, ""))
	return sepaReplacer.Replace(text)
}

func xmlChar(r rune) rune {
	switch {
	case r == '\t', r == '\n', r == '\r':
		return r
	case r >= 0x20 && r <= 0xD7FF,
		r >= 0xE000 && r <= 0xFFFD,
		r >= 0x10000 && r <= utf8.MaxRune:
		return r
	}
	return -1
}

// SepaSafeMax is SepaSafe followed by a hard cut to maxLen characters.
// An escape entity that would straddle the limit is dropped as a whole.
func SepaSafeMax(text string, maxLen int) string {
	return Truncate(SepaSafe(text), maxLen)
}

// Truncate cuts already sanitized text to maxLen characters without
// splitting an escape entity.
func Truncate(safe string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(safe) <= maxLen {
		return safe
	}

	var b strings.Builder
	count := 0
	for i := 0; i < len(safe); {
		token := nextToken(safe[i:])
		n := utf8.RuneCountInString(token)
		if count+n > maxLen {
			break
		}
		b.WriteString(token)
		count += n
		i += len(token)
	}
	return b.String()
}

// Length counts characters of sanitized text, entities included.
func Length(safe string) int {
	return utf8.RuneCountInString(safe)
}

func nextToken(s string) string {
	if s[0] == '&' {
		for _, e := range entities {
			if strings.HasPrefix(s, e) {
				return e
			}
		}
	}
	_, size := utf8.DecodeRuneInString(s)
	return s[:size]
}
