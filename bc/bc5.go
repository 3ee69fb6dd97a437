package bc

// EncodeBC5 encodes one 4x4 LDR tile into a 16-byte BC5 block: the shared
// alpha core applied once per channel, red (channel 0) then green
// (channel 1) (spec.md §4.4).
func EncodeBC5(tile *Tile) [BlockBytesWide]byte {
	var out [BlockBytesWide]byte
	r := alphaCore(tile, 0)
	g := alphaCore(tile, 1)
	copy(out[0:8], r[:])
	copy(out[8:16], g[:])
	return out
}
