package cmd

import (
	"context"
	"fmt"

	"github.com/rook-sec/padoracle/cache"
	"github.com/rook-sec/padoracle/config"
	"github.com/rook-sec/padoracle/ctext"
	"github.com/rook-sec/padoracle/engine"
	"github.com/rook-sec/padoracle/events"
	"github.com/rook-sec/padoracle/oracle"
	"github.com/rook-sec/padoracle/plaintext"
)

// parseCiphertext decodes g.CiphertextInput once. Subcommands that need to
// know the resolved encoding before building their oracle (the web
// subcommand's ciphertext-substitution encoder) call this directly instead
// of going through runAttack.
func parseCiphertext(g config.Global) (ctext.Ciphertext, error) {
	return ctext.Parse(g.CiphertextInput, g.BlockSize, g.NoIV, g.Encoding, g.NoURLEncode)
}

// runAttack drives a full run against an already-parsed ciphertext: load the
// cache, then either decrypt or (decrypt-to-seed +) encrypt, and write the
// result. cacheConfig is supplied by the caller because only it knows
// whether a calibration signature needs folding in (the web subcommand) or
// not (the script subcommand).
func runAttack(ctx context.Context, g config.Global, ct ctext.Ciphertext, o oracle.Oracle, cacheConfig cache.Config, sink events.Sink) error {
	c, err := cache.Load(cacheConfig, g.NoCache)
	if err != nil {
		return fmt.Errorf("loading cache: %w", err)
	}

	opts := engine.DefaultOptions()
	opts.WorkerLimit = int(g.Threads)

	dec := &engine.Decryptor{Oracle: o, Cache: c, Options: opts, Sink: sink}

	if g.Mode == config.ModeDecrypt {
		pt, err := dec.Decrypt(ctx, ct)
		if err != nil {
			return fmt.Errorf("decrypting: %w", err)
		}
		return writeResult(g.OutputFile, plaintextHex(pt))
	}

	pt := plaintext.Pad(g.Plaintext, g.BlockSize)
	enc := &engine.Encryptor{Oracle: o, Cache: c, Options: opts, Sink: sink}

	forged, err := enc.Encrypt(ctx, ct, pt, ct.Encoding, ct.URLEncode)
	if err != nil {
		return fmt.Errorf("forging ciphertext: %w", err)
	}
	return writeResult(g.OutputFile, forged.Encode())
}

func plaintextHex(pt plaintext.PlainText) string {
	s := ""
	for _, b := range pt.Blocks {
		s += b.Hex()
	}
	return s
}
