package block

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// maxLen is the width of the backing array; only the first size.Len() bytes
// of it are meaningful for a given Block. Using a fixed array instead of a
// slice gives Block Go's normal copy-by-value semantics, so callers never
// need to defensively clone a Block before mutating it — see State in
// package forge, whose work-in-progress Block is copied per candidate guess
// on every search round.
const maxLen = 16

// Block is a fixed-width group of either 8 or 16 bytes. All Block values of
// a given size are interchangeable; the zero value of this type is not
// meaningful and must not be used directly — construct via Zero, FromBytes,
// or IncrementalPadding.
type Block struct {
	size Size
	data [maxLen]byte
}

// Zero returns a block of the given size with every byte set to 0.
func Zero(size Size) Block {
	return Block{size: size}
}

// IncrementalPadding returns the block [N, N-1, ..., 2, 1] where N is the
// block size. XORing this pattern with a block's intermediate value and its
// previous ciphertext block is what "to_intermediate" relies on: it is the
// padding pattern the last byte of a forged block must decode to at pad
// length 1, generalized to every position in the block.
func IncrementalPadding(size Size) Block {
	b := Block{size: size}
	n := size.Len()
	for i := 0; i < n; i++ {
		b.data[i] = byte(n - i)
	}
	return b
}

// FromBytes builds a Block from a byte slice whose length must equal one of
// the two supported block sizes. A mismatched length is a programming error:
// callers are expected to have already validated the chunking (see
// ctext.Parse), so this panics rather than returning an error.
func FromBytes(b []byte) Block {
	size, err := ParseSize(len(b))
	if err != nil {
		panic(fmt.Sprintf("block: FromBytes: %s", err))
	}
	blk := Block{size: size}
	copy(blk.data[:size.Len()], b)
	return blk
}

// Size reports the block's width.
func (b Block) Size() Size {
	return b.size
}

// Bytes returns the block's contents as a freshly allocated slice. Mutating
// the returned slice does not affect b.
func (b Block) Bytes() []byte {
	out := make([]byte, b.size.Len())
	copy(out, b.data[:b.size.Len()])
	return out
}

// XOR returns the byte-wise XOR of b and other. Both blocks must be the same
// size; a mismatch is a programming error — the attack engine never mixes
// block sizes within a single run; it fast-fails rather than silently
// truncating.
func (b Block) XOR(other Block) Block {
	if b.size != other.size {
		panic(fmt.Sprintf("block: XOR size mismatch: %d vs %d", b.size, other.size))
	}
	out := Block{size: b.size}
	n := b.size.Len()
	for i := 0; i < n; i++ {
		out.data[i] = b.data[i] ^ other.data[i]
	}
	return out
}

// ToIntermediate returns b XOR IncrementalPadding(b.Size()). This is the
// "raw decryption before CBC's XOR with the previous block" value once b
// holds a fully solved forged block (see forge.Solved.PlainTextSolution).
func (b Block) ToIntermediate() Block {
	return b.XOR(IncrementalPadding(b.size))
}

// ToPaddingAdjusted returns a clone of b with the last padSize bytes
// rewritten so that, once XORed with the block that precedes the target
// block, they produce valid PKCS#7 padding of length padSize instead of
// whatever padding length they previously satisfied.
//
// For each of the last padSize byte positions i (0-indexed from the start of
// the block), the rewritten value is:
//
//	out[i] = b[i] XOR (size-i) XOR padSize
//
// (size-i) undoes the padding value those bytes were previously adjusted
// for — the distance from i to the end of the block — and padSize reapplies
// it for the new, larger padding length. This lets the solver reuse bytes
// locked at a shorter pad length without re-running the oracle search for
// them.
func (b Block) ToPaddingAdjusted(padSize int) Block {
	n := b.size.Len()
	if padSize < 0 || padSize > n {
		panic(fmt.Sprintf("block: ToPaddingAdjusted: pad size %d out of range for %d-byte block", padSize, n))
	}
	out := b
	for i := n - padSize; i < n; i++ {
		out.data[i] = b.data[i] ^ byte(n-i) ^ byte(padSize)
	}
	return out
}

// SetByte overwrites a single byte of b and returns the result. idx must lie
// in [0, size); an out-of-bounds index is a programming error.
func (b Block) SetByte(idx int, value byte) Block {
	if idx < 0 || idx >= b.size.Len() {
		panic(fmt.Sprintf("block: SetByte: index %d out of bounds for %d-byte block", idx, b.size.Len()))
	}
	out := b
	out.data[idx] = value
	return out
}

// Byte returns the byte at idx. idx must lie in [0, size).
func (b Block) Byte(idx int) byte {
	if idx < 0 || idx >= b.size.Len() {
		panic(fmt.Sprintf("block: Byte: index %d out of bounds for %d-byte block", idx, b.size.Len()))
	}
	return b.data[idx]
}

// Hex renders the block as lowercase hex.
func (b Block) Hex() string {
	return hex.EncodeToString(b.Bytes())
}

// ASCII renders the block with every non-printable byte mapped to '.', for
// human-readable progress/log output.
func (b Block) ASCII() string {
	var sb strings.Builder
	sb.Grow(b.size.Len())
	for _, c := range b.data[:b.size.Len()] {
		if c < 0x20 || c > 0x7e {
			sb.WriteByte('.')
		} else {
			sb.WriteByte(c)
		}
	}
	return sb.String()
}
