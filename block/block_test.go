package block

import (
	"bytes"
	"testing"
)

func TestIncrementalPadding(t *testing.T) {
	tests := []struct {
		name string
		size Size
		want []byte
	}{
		{"eight", Eight, []byte{8, 7, 6, 5, 4, 3, 2, 1}},
		{"sixteen", Sixteen, []byte{16, 15, 14, 13, 12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IncrementalPadding(tt.size).Bytes()
			if !bytes.Equal(got, tt.want) {
				t.Errorf("IncrementalPadding(%v) = %v, want %v", tt.size, got, tt.want)
			}
		})
	}
}

func TestXORInvolutive(t *testing.T) {
	a := FromBytes([]byte("YELLOW SUBMARINE"))
	b := FromBytes([]byte("0123456789abcdef"))

	got := a.XOR(b).XOR(b)
	if !bytes.Equal(got.Bytes(), a.Bytes()) {
		t.Errorf("(a XOR b) XOR b = %v, want %v", got.Bytes(), a.Bytes())
	}
}

func TestXORSizeMismatchPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on size mismatch")
		}
	}()
	a := Zero(Eight)
	b := Zero(Sixteen)
	_ = a.XOR(b)
}

func TestSetByteOOBPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on OOB index")
		}
	}()
	_ = Zero(Eight).SetByte(8, 1)
}

func TestToPaddingAdjusted(t *testing.T) {
	// A block whose last 2 bytes were locked by the byte-locking protocol to
	// satisfy padding length 2 (see forge.State): byte at position i was
	// chosen so that foundByte XOR (size-i) == the recovered intermediate
	// byte, and the wip byte stored there is foundByte. XORing that wip with
	// a zero "previous block" intermediate must, after ToPaddingAdjusted
	// promotes it to padding length 3, read back as 0x03 repeated 3 times.
	n := Sixteen.Len()
	wip := Zero(Sixteen)
	for i := n - 2; i < n; i++ {
		// simulate: the true intermediate byte at this position is 0 (since
		// we XOR against a zero prev block below), so the byte that produced
		// valid padding-length-(n-i) was 0 XOR (n-i).
		wip = wip.SetByte(i, byte(n-i))
	}
	// the byte currently under attack (position n-3) holds this round's
	// candidate guess, which must equal 3 XOR 0 (the true intermediate) to
	// be the correct guess.
	wip = wip.SetByte(n-3, 3)

	adjusted := wip.ToPaddingAdjusted(3)
	zero := Zero(Sixteen)
	result := adjusted.XOR(zero)

	for i := n - 3; i < n; i++ {
		if got := result.Byte(i); got != 3 {
			t.Errorf("byte %d = %d, want 3", i, got)
		}
	}
}

func TestASCIIReplacesNonPrintable(t *testing.T) {
	b := FromBytes([]byte{'h', 'i', '!', 0x00, 0x7f, ' ', 'x', 'x'})
	got := b.ASCII()
	want := "hi!.. xx"
	if got != want {
		t.Errorf("ASCII() = %q, want %q", got, want)
	}
}

func TestToIntermediate(t *testing.T) {
	b := IncrementalPadding(Eight)
	got := b.ToIntermediate()
	// b XOR IncrementalPadding(size) where b IS the incremental padding
	// must be all zero.
	for i := 0; i < Eight.Len(); i++ {
		if got.Byte(i) != 0 {
			t.Errorf("byte %d = %d, want 0", i, got.Byte(i))
		}
	}
}
