// Package ctext implements the ciphertext wire codec: parsing an
// attacker-supplied ciphertext string (hex, base64, or URL-safe base64,
// optionally wrapped in a further URL-encoding) into fixed-size blocks, and
// the strict inverse encoding used to report recovered plaintext and forged
// ciphertexts back in the same shape the input arrived in.
package ctext

import (
	"fmt"
	"net/url"

	"github.com/rook-sec/padoracle/block"
)

// Ciphertext is an ordered, non-empty sequence of equal-sized blocks,
// tagged with the metadata needed to re-encode it exactly as it was
// supplied: which inner encoding was used, and whether the whole string was
// also URL-encoded.
type Ciphertext struct {
	Blocks    []block.Block
	Encoding  Encoding
	URLEncode bool
}

// Parse decodes an attacker-supplied ciphertext string into a Ciphertext.
//
//   - Unless noURLDecode is true, s is URL-decoded once before further
//     decoding; whether that decode actually changed the string (not
//     merely whether it was attempted) is what gets remembered in the
//     returned Ciphertext.URLEncode, so Encode re-applies URL-encoding only
//     when the input genuinely carried it.
//   - encoding selects the inner byte encoding; Auto probes hex, then
//     base64, then base64url.
//   - The decoded bytes are split into size-byte blocks; a length that is
//     not a multiple of the block size is a user error.
//   - If noIV is true, a zero block is prepended to stand in for an IV the
//     caller chose not to supply.
//   - At least two blocks are required afterward (one IV, one target); a
//     single-block ciphertext parsed without noIV is rejected with a
//     diagnostic suggesting --no-iv. With noIV set this cannot happen, since
//     the synthesized IV plus at least one decoded block already make two.
func Parse(s string, size block.Size, noIV bool, encoding Encoding, noURLDecode bool) (Ciphertext, error) {
	urlEncoded := false
	if !noURLDecode {
		if decoded, err := url.PathUnescape(s); err == nil && decoded != s {
			s = decoded
			urlEncoded = true
		}
	}

	raw, detected, err := decode(s, encoding)
	if err != nil {
		return Ciphertext{}, fmt.Errorf("parsing ciphertext: %w", err)
	}

	blockLen := size.Len()
	if len(raw) == 0 || len(raw)%blockLen != 0 {
		return Ciphertext{}, fmt.Errorf(
			"ciphertext length (%d bytes) is not a non-zero multiple of the block size (%d)",
			len(raw), blockLen,
		)
	}

	blocks := make([]block.Block, 0, len(raw)/blockLen+1)
	if noIV {
		blocks = append(blocks, block.Zero(size))
	}
	for i := 0; i < len(raw); i += blockLen {
		blocks = append(blocks, block.FromBytes(raw[i:i+blockLen]))
	}

	if len(blocks) < 2 {
		return Ciphertext{}, fmt.Errorf(
			"ciphertext has only %d block(s); at least 2 are required (1 IV + 1 target) — did you mean to pass --no-iv?",
			len(blocks),
		)
	}

	return Ciphertext{Blocks: blocks, Encoding: detected, URLEncode: urlEncoded}, nil
}

// Encode is the strict inverse of Parse: it concatenates the blocks' raw
// bytes, encodes them using the same inner encoding Parse detected or was
// forced to, and URL-encodes the result if the original input was.
// Encode emits every block in c.Blocks, including a zero IV block that Parse
// synthesized for noIV: callers that parsed with noIV should encode a
// Ciphertext holding blocks[1:] if they want the "no IV" shape preserved,
// since that synthesized block was never really part of the wire format.
func (c Ciphertext) Encode() string {
	raw := make([]byte, 0, len(c.Blocks)*c.BlockSize().Len())
	for _, b := range c.Blocks {
		raw = append(raw, b.Bytes()...)
	}

	s := encodeAs(raw, c.Encoding)
	if c.URLEncode {
		s = url.PathEscape(s)
	}
	return s
}

// BlockSize returns the block width shared by every block in c. Ciphertext
// is never constructed with blocks of mixed size.
func (c Ciphertext) BlockSize() block.Size {
	if len(c.Blocks) == 0 {
		return 0
	}
	return c.Blocks[0].Size()
}

// IV returns the first block, which the CBC decryption of every other block
// is ultimately XORed against.
func (c Ciphertext) IV() block.Block {
	return c.Blocks[0]
}

// NumTargetBlocks returns the number of blocks that can be the target of an
// attack — every block except the IV.
func (c Ciphertext) NumTargetBlocks() int {
	return len(c.Blocks) - 1
}
