package ctext

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/url"
)

// Encoding is the inner byte encoding a ciphertext string was transported
// in, detected (or forced) during Parse and remembered so Encode can be the
// exact inverse.
type Encoding int

const (
	// Auto tries Hex, then Base64, then Base64URL, in that order, and keeps
	// whichever succeeds first. It is only a valid value on input to Parse;
	// a parsed Ciphertext always remembers the concrete encoding that won.
	Auto Encoding = iota
	Hex
	Base64
	Base64URL
)

func (e Encoding) String() string {
	switch e {
	case Auto:
		return "auto"
	case Hex:
		return "hex"
	case Base64:
		return "base64"
	case Base64URL:
		return "base64url"
	default:
		return "unknown"
	}
}

// ParseEncoding maps a CLI flag value to an Encoding.
func ParseEncoding(s string) (Encoding, error) {
	switch s {
	case "auto":
		return Auto, nil
	case "hex":
		return Hex, nil
	case "base64":
		return Base64, nil
	case "base64url":
		return Base64URL, nil
	default:
		return 0, fmt.Errorf("unknown encoding %q: expected one of auto, hex, base64, base64url", s)
	}
}

// decode turns s into bytes under the requested encoding. When hint is Auto
// it tries, in order, hex, standard base64, then URL-safe base64, and
// returns the first encoding that parses s without error.
func decode(s string, hint Encoding) ([]byte, Encoding, error) {
	if hint != Auto {
		b, err := decodeAs(s, hint)
		if err != nil {
			return nil, 0, fmt.Errorf("decoding as %s: %w", hint, err)
		}
		return b, hint, nil
	}

	for _, enc := range []Encoding{Hex, Base64, Base64URL} {
		if b, err := decodeAs(s, enc); err == nil {
			return b, enc, nil
		}
	}
	return nil, 0, fmt.Errorf("could not decode input as hex, base64, or base64url")
}

func decodeAs(s string, enc Encoding) ([]byte, error) {
	switch enc {
	case Hex:
		return hex.DecodeString(s)
	case Base64:
		return base64.StdEncoding.DecodeString(s)
	case Base64URL:
		return base64.URLEncoding.DecodeString(s)
	default:
		return nil, fmt.Errorf("unsupported encoding %v", enc)
	}
}

// EncodeBytes renders raw bytes using enc (which must not be Auto), then
// URL-encodes the result if urlEncode is set. This is the same inner codec
// Ciphertext.Encode uses, exposed standalone for encoding an oracle payload
// that has no Ciphertext wrapper of its own — e.g. a forged candidate block
// pair substituted into an HTTP request template.
func EncodeBytes(raw []byte, enc Encoding, urlEncode bool) string {
	s := encodeAs(raw, enc)
	if urlEncode {
		s = url.PathEscape(s)
	}
	return s
}

func encodeAs(b []byte, enc Encoding) string {
	switch enc {
	case Hex:
		return hex.EncodeToString(b)
	case Base64:
		return base64.StdEncoding.EncodeToString(b)
	case Base64URL:
		return base64.URLEncoding.EncodeToString(b)
	default:
		panic(fmt.Sprintf("ctext: encodeAs: unsupported encoding %v", enc))
	}
}
