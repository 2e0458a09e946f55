// Package plaintext builds the padded, block-chunked representation of a
// user-supplied string that the encryptor (package engine) forges a
// ciphertext for.
//
// The padding arithmetic here is adapted from the teacher's cppad.PKCS7: the
// same "append the pad length as the pad bytes" rule, generalized to the
// two block widths this tool supports and changed to always add at least
// one full block of padding when the input is already block-aligned (PKCS#7
// requires unambiguous padding on every input, including ones that happen to
// already be a multiple of the block size).
package plaintext

import "github.com/rook-sec/padoracle/block"

// PlainText is a PKCS#7-padded user string, split into equal-sized blocks.
type PlainText struct {
	Blocks []block.Block
}

// Pad appends PKCS#7 padding to s so its length becomes a positive multiple
// of size, then splits the result into blocks. The padding length is
// size - (len(s) mod size); when that would be 0 (s is already block
// aligned) a full extra block of padding is appended instead, so the
// padding length is always in [1, size].
func Pad(s string, size block.Size) PlainText {
	data := []byte(s)
	n := size.Len()

	padLen := n - len(data)%n
	if padLen == 0 {
		padLen = n
	}

	padded := make([]byte, len(data)+padLen)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(padLen)
	}

	blocks := make([]block.Block, 0, len(padded)/n)
	for i := 0; i < len(padded); i += n {
		blocks = append(blocks, block.FromBytes(padded[i:i+n]))
	}

	return PlainText{Blocks: blocks}
}
