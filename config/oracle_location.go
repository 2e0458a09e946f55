package config

import "strings"

// OracleLocationKind discriminates how the oracle location string is
// interpreted: as an HTTP(S) URL template for the web subcommand, or a
// filesystem path to an executable for the script subcommand.
//
// Grounded on original_source/src/cli/oracle_location.rs, which makes this
// distinction once at parse time rather than re-deriving it at every
// dispatch site.
type OracleLocationKind int

const (
	// OracleLocationScript is a path to a local executable.
	OracleLocationScript OracleLocationKind = iota
	// OracleLocationHTTP is a URL template.
	OracleLocationHTTP
)

// OracleLocation is the validated, kind-tagged oracle address.
type OracleLocation struct {
	Kind  OracleLocationKind
	Value string
}

// NewScriptLocation builds an OracleLocation for the script subcommand.
func NewScriptLocation(path string) OracleLocation {
	return OracleLocation{Kind: OracleLocationScript, Value: path}
}

// NewHTTPLocation builds an OracleLocation for the web subcommand.
func NewHTTPLocation(urlTemplate string) OracleLocation {
	return OracleLocation{Kind: OracleLocationHTTP, Value: urlTemplate}
}

// String renders the location the way it's used as the cache's outer key.
func (l OracleLocation) String() string {
	return l.Value
}

// LooksLikeURL reports whether s has the shape of an HTTP(S) URL: an
// "http://" or "https://" prefix.
func LooksLikeURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
