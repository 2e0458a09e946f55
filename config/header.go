package config

import (
	"fmt"
	"strings"

	"github.com/rook-sec/padoracle/oracle"
)

// Header is a single "NAME:VALUE" request header, as accepted by the web
// subcommand's repeatable --header flag.
//
// Grounded on original_source/src/config/header.rs, which splits on the
// first colon and rejects a missing value.
type Header struct {
	Name  string
	Value string
}

// ParseHeader splits s on its first colon into a Header.
func ParseHeader(s string) (Header, error) {
	name, value, ok := strings.Cut(s, ":")
	if !ok {
		return Header{}, fmt.Errorf("header %q: expected NAME:VALUE", s)
	}
	name, value = strings.TrimSpace(name), strings.TrimSpace(value)
	if name == "" {
		return Header{}, fmt.Errorf("header %q: name is empty", s)
	}
	return Header{Name: name, Value: value}, nil
}

// ToOracle converts h into the oracle package's wire-level Header type.
func (h Header) ToOracle() oracle.Header {
	return oracle.Header{Name: h.Name, Value: h.Value}
}
