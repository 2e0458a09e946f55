// Package cbcsim builds an in-process CBC-mode encryption target and exposes
// it as an oracle.Oracle, so engine tests can run the full attack against a
// real block cipher without a subprocess or network round trip.
//
// Adapted from the teacher's cpaes/cbc.go (the manual block-by-block CBC
// loop) and cpaes/cbc_padding_oracle.go (the oracle shape an attack drives),
// generalized from AES-only to either supported block width by picking the
// stdlib cipher whose block size matches: DES for 8-byte blocks, AES for
// 16-byte blocks.
package cbcsim

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/des" //nolint:staticcheck // DES is the only 8-byte-block stdlib cipher; this is a test fixture, not the real attack surface
	"crypto/rand"
	"fmt"
	"time"

	"github.com/rook-sec/padoracle/block"
)

// Target is a simulated encryption endpoint: a fixed, randomly generated key
// the attack never gets to see directly, reachable only through Encrypt (to
// produce a ciphertext to attack) and the padding-oracle behavior exposed by
// Oracle.
type Target struct {
	size   block.Size
	cipher cipher.Block
}

// New builds a Target using a freshly generated random key sized to match
// size (8 bytes for DES, 16 for AES).
func New(size block.Size) (*Target, error) {
	key := make([]byte, size.Len())
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("cbcsim: generating key: %w", err)
	}

	c, err := newCipher(size, key)
	if err != nil {
		return nil, err
	}
	return &Target{size: size, cipher: c}, nil
}

func newCipher(size block.Size, key []byte) (cipher.Block, error) {
	switch size {
	case block.Eight:
		c, err := des.NewCipher(key)
		if err != nil {
			return nil, fmt.Errorf("cbcsim: building DES cipher: %w", err)
		}
		return c, nil
	case block.Sixteen:
		c, err := aes.NewCipher(key)
		if err != nil {
			return nil, fmt.Errorf("cbcsim: building AES cipher: %w", err)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("cbcsim: unsupported block size %s", size)
	}
}

// BlockSize reports the width Target was built for.
func (t *Target) BlockSize() block.Size {
	return t.size
}

// Encrypt pads plainText with PKCS#7 and CBC-encrypts it under a freshly
// generated random IV, returning the IV prepended to the ciphertext — the
// same on-wire shape ctext.Parse expects.
func (t *Target) Encrypt(plainText []byte) ([]byte, error) {
	n := t.size.Len()

	iv := make([]byte, n)
	if _, err := rand.Read(iv); err != nil {
		return nil, fmt.Errorf("cbcsim: generating IV: %w", err)
	}

	padded := pkcs7Pad(plainText, n)

	out := make([]byte, n+len(padded))
	copy(out, iv)

	prev := iv
	for i := 0; i < len(padded); i += n {
		toEncrypt := xorBytes(prev, padded[i:i+n])
		t.cipher.Encrypt(out[n+i:n+i+n], toEncrypt)
		prev = out[n+i : n+i+n]
	}

	return out, nil
}

// decryptBlock runs the raw block-cipher decryption (no CBC XOR).
func (t *Target) decryptBlock(ciphertextBlock []byte) []byte {
	out := make([]byte, t.size.Len())
	t.cipher.Decrypt(out, ciphertextBlock)
	return out
}

// isValidPadding CBC-decrypts a two-block [prev, target] ciphertext and
// reports whether the result ends in valid PKCS#7 padding — the single bit
// of signal a padding oracle attack gets to observe.
func (t *Target) isValidPadding(ciphertext []byte) bool {
	n := t.size.Len()
	if len(ciphertext) != 2*n {
		return false
	}

	prev, target := ciphertext[:n], ciphertext[n:]
	decrypted := xorBytes(prev, t.decryptBlock(target))
	return pkcs7Valid(decrypted)
}

func xorBytes(a, b []byte) []byte {
	out := make([]byte, len(a))
	for i := range out {
		out[i] = a[i] ^ b[i]
	}
	return out
}

func pkcs7Pad(data []byte, size int) []byte {
	padLen := size - len(data)%size
	if padLen == 0 {
		padLen = size
	}
	out := make([]byte, len(data)+padLen)
	copy(out, data)
	for i := len(data); i < len(out); i++ {
		out[i] = byte(padLen)
	}
	return out
}

func pkcs7Valid(data []byte) bool {
	n := len(data)
	padLen := int(data[n-1])
	if padLen == 0 || padLen > n {
		return false
	}
	for i := n - padLen; i < n; i++ {
		if data[i] != byte(padLen) {
			return false
		}
	}
	return true
}

// Oracle adapts a Target to oracle.Oracle, for use as the target of a full
// in-process attack in engine tests.
type Oracle struct {
	Target *Target
}

// AskValidation implements oracle.Oracle.
func (o Oracle) AskValidation(_ context.Context, ciphertext []byte) (bool, error) {
	return o.Target.isValidPadding(ciphertext), nil
}

// ThreadDelay implements oracle.Oracle.
func (o Oracle) ThreadDelay() time.Duration { return 0 }

// Location implements oracle.Oracle.
func (o Oracle) Location() string { return "cbcsim" }
