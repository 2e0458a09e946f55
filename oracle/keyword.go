package oracle

import "strings"

// KeywordLocation enumerates exactly which parts of an HTTP request template
// contain the sentinel keyword, computed once at construction time so
// AskValidation never has to re-scan the URL/headers/body on every request.
type KeywordLocation struct {
	InURL           bool
	InBody          bool
	HeaderNames     []int // indices into the header slice whose name contains the keyword
	HeaderValues    []int // indices into the header slice whose value contains the keyword
	matchedAnywhere bool
}

// Header is a single request header template; either Name or Value (or
// both) may contain the sentinel keyword.
type Header struct {
	Name  string
	Value string
}

// LocateKeyword scans urlTemplate, the optional bodyTemplate, and headers
// for keyword, recording every site it appears in.
func LocateKeyword(keyword, urlTemplate string, bodyTemplate *string, headers []Header) KeywordLocation {
	var loc KeywordLocation

	if strings.Contains(urlTemplate, keyword) {
		loc.InURL = true
		loc.matchedAnywhere = true
	}
	if bodyTemplate != nil && strings.Contains(*bodyTemplate, keyword) {
		loc.InBody = true
		loc.matchedAnywhere = true
	}
	for i, h := range headers {
		if strings.Contains(h.Name, keyword) {
			loc.HeaderNames = append(loc.HeaderNames, i)
			loc.matchedAnywhere = true
		}
		if strings.Contains(h.Value, keyword) {
			loc.HeaderValues = append(loc.HeaderValues, i)
			loc.matchedAnywhere = true
		}
	}

	return loc
}

// Found reports whether the keyword was found in at least one site.
func (k KeywordLocation) Found() bool {
	return k.matchedAnywhere
}
