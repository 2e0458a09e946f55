package engine

import (
	"context"
	"fmt"

	"github.com/rook-sec/padoracle/block"
	"github.com/rook-sec/padoracle/cache"
	"github.com/rook-sec/padoracle/ctext"
	"github.com/rook-sec/padoracle/events"
	"github.com/rook-sec/padoracle/forge"
	"github.com/rook-sec/padoracle/oracle"
	"github.com/rook-sec/padoracle/plaintext"
)

// Encryptor forges a ciphertext that decrypts to an attacker-chosen
// plaintext under a key it never learns, by running solve_block backwards
// over synthetic two-block ciphertexts (spec §4.8). Unlike Decryptor, this
// is strictly sequential: each forged block depends on the one forged after
// it (forging runs back to front).
type Encryptor struct {
	Oracle  oracle.Oracle
	Cache   *cache.Cache
	Options Options
	Sink    events.Sink
}

// NewEncryptor builds an Encryptor with sane defaults for Options and a
// no-op Sink; callers typically override both.
func NewEncryptor(o oracle.Oracle, c *cache.Cache) *Encryptor {
	return &Encryptor{Oracle: o, Cache: c, Options: DefaultOptions(), Sink: events.NopSink{}}
}

// Encrypt forges a ciphertext that decrypts to pt under seedCiphertext's key.
// seedCiphertext must already be a valid, decryptable ciphertext of the
// target's chosen block size (its last block seeds the chain: the forgery
// first recovers that block's intermediate exactly as decryption would).
// The returned Ciphertext carries encoding and urlEncode exactly as given;
// they are not taken from seed.
func (e *Encryptor) Encrypt(ctx context.Context, seed ctext.Ciphertext, pt plaintext.PlainText, encoding ctext.Encoding, urlEncode bool) (ctext.Ciphertext, error) {
	if len(pt.Blocks) == 0 {
		return ctext.Ciphertext{}, fmt.Errorf("encrypting: plaintext has no blocks")
	}

	size := seed.BlockSize()
	for _, b := range pt.Blocks {
		if b.Size() != size {
			return ctext.Ciphertext{}, fmt.Errorf("encrypting: plaintext block size %s does not match seed ciphertext block size %s", b.Size(), size)
		}
	}

	seedTargetIdx := len(seed.Blocks) - 1
	seedSolved, err := solveBlock(ctx, e.Oracle, e.Cache, e.Options, forge.New(seed.Blocks, seedTargetIdx), e.Sink)
	if err != nil {
		return ctext.Ciphertext{}, fmt.Errorf("encrypting: seeding from the last ciphertext block: %w", err)
	}

	lastPrepended := seed.Blocks[seedTargetIdx]
	intermediate := seedSolved.Intermediate()

	encryptedBackwards := []block.Block{lastPrepended}

	for i := len(pt.Blocks) - 1; i >= 0; i-- {
		newPrepend := intermediate.XOR(pt.Blocks[i])
		encryptedBackwards = append(encryptedBackwards, newPrepend)

		cacheKey := cache.Key{Prev: newPrepend, Target: lastPrepended}
		if insertErr := e.Cache.Insert(cacheKey, intermediate); insertErr != nil {
			e.Sink.Emit(events.Logf(events.LevelWarn, "encrypting: caching forged block %d: %s", i, insertErr))
		}

		if i == 0 {
			break
		}

		synthetic := []block.Block{block.Zero(size), newPrepend}
		solved, err := solveBlock(ctx, e.Oracle, e.Cache, e.Options, forge.New(synthetic, 1), e.Sink)
		if err != nil {
			return ctext.Ciphertext{}, fmt.Errorf("encrypting: forging block %d: %w", i, err)
		}

		intermediate = solved.Intermediate()
		lastPrepended = newPrepend
	}

	blocks := make([]block.Block, len(encryptedBackwards))
	for i, b := range encryptedBackwards {
		blocks[len(blocks)-1-i] = b
	}

	return ctext.Ciphertext{Blocks: blocks, Encoding: encoding, URLEncode: urlEncode}, nil
}
