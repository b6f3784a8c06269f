// Package reference derives the end-to-end id and the unstructured
// remittance text of a transaction from its invoiced line items.
package reference

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"fjacquet/sepa-export/internal/dateutils"
	"fjacquet/sepa-export/internal/exporterror"
	"fjacquet/sepa-export/internal/models"
)

// Style selects how the remittance line is composed.
type Style string

const (
	// StyleStructured lists date, document, order, PO reference and total
	// per invoice.
	StyleStructured Style = "structured"
	// StyleTagged emits /CNR/ and /DOC/ tags.
	StyleTagged Style = "tagged"
)

const (
	structuredCutoff = 136
	structuredMore   = " u.a."
)

var germanPrinter = message.NewPrinter(language.German)

// ParseStyle maps a configuration value to a Style.
func ParseStyle(s string) (Style, error) {
	switch Style(strings.ToLower(strings.TrimSpace(s))) {
	case StyleStructured, "":
		return StyleStructured, nil
	case StyleTagged:
		return StyleTagged, nil
	}
	return "", fmt.Errorf("unknown remittance style %q (want %q or %q)", s, StyleStructured, StyleTagged)
}

// EndToEndID joins the document numbers of items with "/". It fails
// with ErrEmptyReference when no item carries a document number.
func EndToEndID(instructionID string, items []models.LineItem) (string, error) {
	docs := make([]string, 0, len(items))
	for _, li := range items {
		if li.HasDocument() {
			docs = append(docs, strings.TrimSpace(li.DocumentNo))
		}
	}
	if len(docs) == 0 {
		return "", &exporterror.ExportError{
			Kind:    exporterror.ErrEmptyReference,
			Subject: "instruction " + instructionID,
			Reason:  "no line item carries a document number",
		}
	}
	return strings.Join(docs, "/"), nil
}

// RemittanceLine renders the unsanitized Ustrd text for the given style.
func RemittanceLine(cp *models.Counterparty, items []models.LineItem, style Style) string {
	if style == StyleTagged {
		return tagged(cp, items)
	}
	return structured(items)
}

func structured(items []models.LineItem) string {
	var b strings.Builder
	for _, li := range items {
		if !li.Invoiced() {
			continue
		}
		if b.Len() > 0 {
			b.WriteString(",")
		}
		b.WriteString(dateutils.ToEuropeanDate(li.DocumentDate))
		b.WriteString(" ")
		b.WriteString(li.DocumentNo)
		if li.OrderNo != "" {
			b.WriteString("/")
			b.WriteString(li.OrderNo)
		}
		if li.POReference != "" {
			b.WriteString(" ")
			b.WriteString(li.POReference)
		}
		b.WriteString(" ")
		b.WriteString(GermanAmount(li.GrandTotal))
	}

	line := b.String()
	if utf8.RuneCountInString(line) >= structuredCutoff {
		return string([]rune(line)[:structuredCutoff]) + structuredMore
	}
	return line
}

func tagged(cp *models.Counterparty, items []models.LineItem) string {
	threshold := decimal.RequireFromString("-0.01")

	var b strings.Builder
	for i, li := range items {
		if i == 0 && cp != nil && cp.ReferenceNo != "" {
			b.WriteString("/CNR/")
			b.WriteString(cp.ReferenceNo)
		}
		if !li.Invoiced() {
			continue
		}
		b.WriteString("/DOC/")
		b.WriteString(li.DocumentNo)
		if li.DiscountAmount.LessThanOrEqual(threshold) {
			b.WriteString("/ ")
			b.WriteString(li.LineAmount.StringFixed(2))
		}
	}
	return b.String()
}

// GermanAmount formats d with German grouping and decimal separators and
// at most three fraction digits, e.g. 1234.5 -> "1.234,5".
func GermanAmount(d decimal.Decimal) string {
	abs := d.Round(3).Abs()
	whole := abs.Truncate(0)

	var b strings.Builder
	if d.Round(3).IsNegative() {
		b.WriteByte('-')
	}
	// Only the integer part goes through the printer; it converts via
	// float64 and would lose digits of large fractional amounts.
	b.WriteString(germanPrinter.Sprint(number.Decimal(whole.IntPart())))
	if frac := abs.Sub(whole); !frac.IsZero() {
		b.WriteByte(',')
		b.WriteString(strings.TrimPrefix(frac.String(), "0."))
	}
	return b.String()
}
