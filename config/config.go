// Package config assembles the validated, immutable run configuration the
// cmd/ Cobra layer builds once from CLI flags and passes down by value to
// the engine. Nothing downstream of Global ever reads flags or global state
// directly, matching original_source/src/config/mod.rs's per-field
// validated wrapper-type design.
package config

import (
	"time"

	"github.com/rook-sec/padoracle/block"
	"github.com/rook-sec/padoracle/ctext"
)

// Mode selects whether the run decrypts an existing ciphertext or forges a
// new one for attacker-chosen plaintext.
type Mode int

const (
	// ModeDecrypt recovers the plaintext of CiphertextInput.
	ModeDecrypt Mode = iota
	// ModeEncrypt forges a ciphertext that decrypts to Plaintext, using
	// CiphertextInput's last block as the seed.
	ModeEncrypt
)

// Global is the fully validated configuration for one run.
type Global struct {
	Oracle    OracleLocation
	BlockSize block.Size

	Mode            Mode
	CiphertextInput string
	Plaintext       string // only meaningful when Mode == ModeEncrypt

	NoIV        bool
	Verbosity   int // number of times --verbose was repeated
	Threads     ThreadCount
	Delay       ThreadDelay
	OutputFile  string // empty means stdout
	Encoding    ctext.Encoding
	NoURLEncode bool
	NoCache     bool

	Web *WebOptions // nil unless the web subcommand was used
}

// WebOptions bundles the web subcommand's flags (spec §6).
type WebOptions struct {
	Data             string
	Headers          []Header
	Redirect         bool
	Insecure         bool
	Keyword          string
	ConsiderBody     bool
	UserAgent        string
	Proxy            string
	ProxyCredentials *ProxyCredentials
	Timeout          RequestTimeout
}

// DefaultKeyword is the sentinel substituted for the ciphertext in URL,
// body, and header templates when --keyword isn't given.
const DefaultKeyword = "CTEXT"

// NewWebOptions returns WebOptions with the spec's stated defaults applied.
func NewWebOptions() WebOptions {
	return WebOptions{
		Keyword: DefaultKeyword,
		Timeout: DefaultRequestTimeout,
	}
}

// New returns a Global with every option at its documented default, ready
// for a cmd/ flag binder to override.
func New(oracleLoc OracleLocation, blockSize block.Size) Global {
	return Global{
		Oracle:    oracleLoc,
		BlockSize: blockSize,
		Threads:   DefaultThreadCount,
		Delay:     DefaultThreadDelay,
		Encoding:  ctext.Auto,
	}
}

// ThreadDelayDuration returns Delay as a time.Duration, for callers that
// need to hand it to the oracle/engine packages.
func (g Global) ThreadDelayDuration() time.Duration {
	return time.Duration(g.Delay)
}
