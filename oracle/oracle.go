// Package oracle implements the padding-oracle abstraction: a single
// capability, AskValidation, behind two concrete transports — an HTTP
// endpoint and a local executable — plus the HTTP-only calibration
// machinery needed to learn what an "invalid padding" response looks like.
package oracle

import (
	"context"
	"time"
)

// Oracle asks whether ciphertext decrypts to validly padded plaintext.
// Implementations are shared read-only across every worker goroutine; they
// must be safe for concurrent use.
type Oracle interface {
	// AskValidation sends ciphertext to the oracle and reports whether the
	// padding was valid.
	AskValidation(ctx context.Context, ciphertext []byte) (bool, error)

	// ThreadDelay is the pause taken before every oracle call, to avoid
	// tripping the target's rate limiting.
	ThreadDelay() time.Duration

	// Location is an opaque identity for this oracle. The persistent cache
	// is not keyed by this value: package cmd namespaces it by the script
	// path or URL template it was given, which for the HTTP oracle equals
	// Location().
	Location() string
}
