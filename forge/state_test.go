package forge

import (
	"testing"

	"github.com/rook-sec/padoracle/block"
)

func TestLockByteRightToLeft(t *testing.T) {
	prefix := []block.Block{block.Zero(block.Sixteen), block.Zero(block.Sixteen)}
	s := New(prefix, 1)

	var seen []int
	for {
		seen = append(seen, s.CurrentByteIdx())
		s = s.SetCurrentByte(0x42)
		outcome := s.LockByte()
		if outcome.Solved != nil {
			break
		}
		s = *outcome.BytesLeft
	}

	size := block.Sixteen.Len()
	if len(seen) != size {
		t.Fatalf("locked %d bytes, want %d", len(seen), size)
	}
	for i, idx := range seen {
		want := size - 1 - i
		if idx != want {
			t.Errorf("lock order[%d] = %d, want %d", i, idx, want)
		}
	}
}

func TestSolvedFromIntermediateRoundTrip(t *testing.T) {
	prefix := []block.Block{block.Zero(block.Sixteen), block.Zero(block.Sixteen)}
	intermediate := block.FromBytes([]byte("0123456789abcdef"))

	solved := NewSolvedFromIntermediate(prefix, 1, intermediate)
	if got := solved.Intermediate(); got != intermediate {
		t.Errorf("Intermediate() = %v, want %v", got.Bytes(), intermediate.Bytes())
	}
}

func TestTransmitIsTwoBlocks(t *testing.T) {
	prefix := []block.Block{block.Zero(block.Sixteen), block.Zero(block.Sixteen)}
	s := New(prefix, 1).SetCurrentByte(7)

	got := s.Transmit()
	if len(got) != 2 {
		t.Fatalf("Transmit() returned %d blocks, want 2", len(got))
	}
	if got[1] != s.TargetBlock() {
		t.Error("second transmitted block should be the target block")
	}
}

func TestPlainTextSolutionMatchesKnownIV(t *testing.T) {
	// decrypt(target) is simulated as all-zero (we craft `solution` directly
	// so that decrypt(target) == solution XOR incrementalPadding, i.e.
	// solution == incrementalPadding when decrypt(target) == 0).
	iv := block.FromBytes([]byte("AAAAAAAAAAAAAAAA"))
	prefix := []block.Block{iv, block.Zero(block.Sixteen)}

	solution := block.IncrementalPadding(block.Sixteen)
	solved := Solved{prefix: prefix, targetIdx: 1, solution: solution}

	got := solved.PlainTextSolution()
	if got != iv {
		t.Errorf("PlainTextSolution() = %v, want %v", got.Bytes(), iv.Bytes())
	}
}
