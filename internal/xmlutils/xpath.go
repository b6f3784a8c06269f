// Package xmlutils reads generated pain documents back with XPath so
// that counts and sums can be checked independently of the encoder.
package xmlutils

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/xmlpath.v2"
)

// ParseBytes reads an in-memory XML document into an xmlpath tree.
func ParseBytes(data []byte) (*xmlpath.Node, error) {
	root, err := xmlpath.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse XML: %w", err)
	}
	return root, nil
}

// ExtractFromXML returns the string value of every node matched by
// xpath. Paths without a leading slash are relative to root.
func ExtractFromXML(root *xmlpath.Node, xpath string) ([]string, error) {
	path, err := xmlpath.Compile(xpath)
	if err != nil {
		return nil, fmt.Errorf("failed to compile XPath %q: %w", xpath, err)
	}

	var values []string
	iter := path.Iter(root)
	for iter.Next() {
		values = append(values, strings.TrimSpace(iter.Node().String()))
	}
	return values, nil
}

// Nodes returns the nodes matched by xpath, for relative lookups.
func Nodes(root *xmlpath.Node, xpath string) ([]*xmlpath.Node, error) {
	path, err := xmlpath.Compile(xpath)
	if err != nil {
		return nil, fmt.Errorf("failed to compile XPath %q: %w", xpath, err)
	}

	var nodes []*xmlpath.Node
	iter := path.Iter(root)
	for iter.Next() {
		nodes = append(nodes, iter.Node())
	}
	return nodes, nil
}

// FirstValue returns the first match of xpath or an empty string.
func FirstValue(root *xmlpath.Node, xpath string) (string, error) {
	values, err := ExtractFromXML(root, xpath)
	if err != nil || len(values) == 0 {
		return "", err
	}
	return values[0], nil
}

// Exists reports whether xpath matches anything.
func Exists(root *xmlpath.Node, xpath string) (bool, error) {
	path, err := xmlpath.Compile(xpath)
	if err != nil {
		return false, fmt.Errorf("failed to compile XPath %q: %w", xpath, err)
	}
	return path.Exists(root), nil
}
