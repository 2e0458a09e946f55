package engine

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rook-sec/padoracle/block"
	"github.com/rook-sec/padoracle/cache"
	"github.com/rook-sec/padoracle/ctext"
	"github.com/rook-sec/padoracle/internal/cbcsim"
	"github.com/rook-sec/padoracle/oracle"
	"github.com/rook-sec/padoracle/plaintext"
)

func fastOptions() Options {
	return Options{
		RetryBase:      time.Millisecond,
		MaxAttempts:    2,
		ByteRetryLimit: 2,
		WorkerLimit:    64,
	}
}

func testCache(t *testing.T) *cache.Cache {
	t.Helper()
	c, err := cache.Load(cache.NewConfig("cbcsim"), true)
	if err != nil {
		t.Fatalf("loading cache: %s", err)
	}
	return c
}

func TestDecryptorRecoversKnownPlaintext(t *testing.T) {
	target, err := cbcsim.New(block.Sixteen)
	if err != nil {
		t.Fatalf("building target: %s", err)
	}

	const want = "the quick brown fox jumps"
	raw, err := target.Encrypt([]byte(want))
	if err != nil {
		t.Fatalf("encrypting: %s", err)
	}

	ct, err := ctext.Parse(hexEncode(raw), block.Sixteen, false, ctext.Hex, false)
	if err != nil {
		t.Fatalf("parsing ciphertext: %s", err)
	}

	d := &Decryptor{
		Oracle:  cbcsim.Oracle{Target: target},
		Cache:   testCache(t),
		Options: fastOptions(),
	}

	pt, err := d.Decrypt(context.Background(), ct)
	if err != nil {
		t.Fatalf("decrypting: %s", err)
	}

	got := unpad(t, pt)
	if got != want {
		t.Fatalf("got plaintext %q, want %q", got, want)
	}
}

func TestEncryptorForgesDecryptableCiphertext(t *testing.T) {
	target, err := cbcsim.New(block.Sixteen)
	if err != nil {
		t.Fatalf("building target: %s", err)
	}

	seedRaw, err := target.Encrypt([]byte("seed message used only to bootstrap the chain"))
	if err != nil {
		t.Fatalf("encrypting seed: %s", err)
	}
	seed, err := ctext.Parse(hexEncode(seedRaw), block.Sixteen, false, ctext.Hex, false)
	if err != nil {
		t.Fatalf("parsing seed ciphertext: %s", err)
	}

	const want = "forged by the attacker"
	pt := plaintext.Pad(want, block.Sixteen)

	o := cbcsim.Oracle{Target: target}
	c := testCache(t)

	enc := &Encryptor{Oracle: o, Cache: c, Options: fastOptions()}
	forged, err := enc.Encrypt(context.Background(), seed, pt, ctext.Hex, false)
	if err != nil {
		t.Fatalf("forging ciphertext: %s", err)
	}

	dec := &Decryptor{Oracle: o, Cache: c, Options: fastOptions()}
	recovered, err := dec.Decrypt(context.Background(), forged)
	if err != nil {
		t.Fatalf("decrypting forged ciphertext: %s", err)
	}

	got := unpad(t, recovered)
	if got != want {
		t.Fatalf("round trip mismatch: got %q, want %q", got, want)
	}
}

func TestDecryptorHitsCacheOnRepeatBlock(t *testing.T) {
	target, err := cbcsim.New(block.Eight)
	if err != nil {
		t.Fatalf("building target: %s", err)
	}

	raw, err := target.Encrypt([]byte("abcdefgh"))
	if err != nil {
		t.Fatalf("encrypting: %s", err)
	}
	ct, err := ctext.Parse(hexEncode(raw), block.Eight, false, ctext.Hex, false)
	if err != nil {
		t.Fatalf("parsing ciphertext: %s", err)
	}

	c := testCache(t)
	o := cbcsim.Oracle{Target: target}

	d := &Decryptor{Oracle: o, Cache: c, Options: fastOptions()}
	first, err := d.Decrypt(context.Background(), ct)
	if err != nil {
		t.Fatalf("first decrypt: %s", err)
	}

	second, err := d.Decrypt(context.Background(), ct)
	if err != nil {
		t.Fatalf("second decrypt (should be cache-served): %s", err)
	}

	if first.Blocks[0].Hex() != second.Blocks[0].Hex() {
		t.Fatalf("cache-served decrypt diverged: %s vs %s", first.Blocks[0].Hex(), second.Blocks[0].Hex())
	}
}

// poisonedTargetOracle rejects every candidate whose target block matches
// poison, so that one specific block can never converge, while delegating
// everything else to the wrapped oracle untouched.
type poisonedTargetOracle struct {
	oracle.Oracle
	poison []byte
}

func (o poisonedTargetOracle) AskValidation(ctx context.Context, ciphertext []byte) (bool, error) {
	n := len(o.poison)
	if len(ciphertext) == 2*n && bytes.Equal(ciphertext[n:], o.poison) {
		return false, nil
	}
	return o.Oracle.AskValidation(ctx, ciphertext)
}

func TestDecryptorIsolatesOneUnsolvableBlockFromItsSiblings(t *testing.T) {
	target, err := cbcsim.New(block.Sixteen)
	if err != nil {
		t.Fatalf("building target: %s", err)
	}

	const want = "two whole blocks of known plaintext here"
	raw, err := target.Encrypt([]byte(want))
	if err != nil {
		t.Fatalf("encrypting: %s", err)
	}

	ct, err := ctext.Parse(hexEncode(raw), block.Sixteen, false, ctext.Hex, false)
	if err != nil {
		t.Fatalf("parsing ciphertext: %s", err)
	}
	if len(ct.Blocks) < 3 {
		t.Fatalf("fixture needs at least 2 target blocks, got %d total blocks", len(ct.Blocks))
	}

	poisonedIdx := 1
	o := poisonedTargetOracle{
		Oracle: cbcsim.Oracle{Target: target},
		poison: ct.Blocks[poisonedIdx].Bytes(),
	}

	d := &Decryptor{Oracle: o, Cache: testCache(t), Options: fastOptions()}
	pt, err := d.Decrypt(context.Background(), ct)
	if err == nil {
		t.Fatal("expected an error reporting the unsolvable block")
	}
	if !errors.Is(err, ErrByteExhausted) {
		t.Errorf("error = %v, want it to wrap ErrByteExhausted", err)
	}

	var unset block.Block // the Go zero value solveAll leaves for a block it never solved
	for i, b := range pt.Blocks {
		if i == poisonedIdx-1 {
			if b != unset {
				t.Errorf("poisoned block %d should be left unsolved, got %x", i, b.Bytes())
			}
			continue
		}
		if b == unset {
			t.Errorf("sibling block %d was not recovered even though its own oracle calls all succeeded", i)
		}
	}
}

func unpad(t *testing.T, pt plaintext.PlainText) string {
	t.Helper()
	var raw []byte
	for _, b := range pt.Blocks {
		raw = append(raw, b.Bytes()...)
	}
	if len(raw) == 0 {
		t.Fatalf("empty plaintext")
	}
	padLen := int(raw[len(raw)-1])
	if padLen <= 0 || padLen > len(raw) {
		t.Fatalf("invalid padding length %d in recovered plaintext %x", padLen, raw)
	}
	return string(raw[:len(raw)-padLen])
}

func hexEncode(b []byte) string {
	const hextable = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, c := range b {
		out[i*2] = hextable[c>>4]
		out[i*2+1] = hextable[c&0x0f]
	}
	return string(out)
}
