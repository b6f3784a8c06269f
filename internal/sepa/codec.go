package sepa

import (
	"bytes"
	"encoding/xml"
	"fmt"
)

// Marshal renders doc as indented UTF-8 XML with declaration.
func Marshal(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encoding %s document: %w", doc.Type().Pain(), err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("flushing %s document: %w", doc.Type().Pain(), err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// Unmarshal parses a document produced by Marshal.
func Unmarshal(data []byte) (*Document, error) {
	var doc Document
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding SEPA document: %w", err)
	}
	if doc.CreditTransfer == nil && doc.DirectDebit == nil {
		return nil, fmt.Errorf("decoding SEPA document: neither CstmrCdtTrfInitn nor CstmrDrctDbtInitn present")
	}
	return &doc, nil
}
