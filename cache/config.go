package cache

import "github.com/rook-sec/padoracle/oracle"

// Config identifies the scope a cache entry is valid under: the oracle it
// was solved against, and — for HTTP oracles — the calibration signature
// that oracle was classified with. Two attacks only ever share solved
// blocks if both match exactly, which prevents cross-contamination between
// unrelated targets (spec §4.9).
type Config struct {
	OracleLocation string
	HasSignature   bool
	Signature      oracle.CalibrationResponse
}

// NewConfig builds a Config for an oracle with no calibration signature
// (the subprocess oracle case).
func NewConfig(oracleLocation string) Config {
	return Config{OracleLocation: oracleLocation}
}

// NewHTTPConfig builds a Config for an HTTP oracle, folding in its
// calibration signature.
func NewHTTPConfig(oracleLocation string, signature oracle.CalibrationResponse) Config {
	return Config{OracleLocation: oracleLocation, HasSignature: true, Signature: signature}
}
