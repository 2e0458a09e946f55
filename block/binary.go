package block

import "fmt"

// MarshalBinary implements encoding.BinaryMarshaler so a Block can be
// serialized directly by the cache's MessagePack envelope (package cache)
// despite its fields being unexported.
func (b Block) MarshalBinary() ([]byte, error) {
	n := b.size.Len()
	out := make([]byte, 1+n)
	out[0] = byte(b.size)
	copy(out[1:], b.data[:n])
	return out, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler, the inverse of
// MarshalBinary.
func (b *Block) UnmarshalBinary(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("block: UnmarshalBinary: empty data")
	}
	size, err := ParseSize(int(data[0]))
	if err != nil {
		return fmt.Errorf("block: UnmarshalBinary: %w", err)
	}
	if len(data) != 1+size.Len() {
		return fmt.Errorf("block: UnmarshalBinary: expected %d bytes, got %d", 1+size.Len(), len(data))
	}
	*b = Block{size: size}
	copy(b.data[:size.Len()], data[1:])
	return nil
}
