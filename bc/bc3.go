package bc

// EncodeBC3 encodes one 4x4 LDR tile into a 16-byte BC3 block: the shared
// alpha core over channel 3 followed by the BC1 color core over channels
// 0-2 (spec.md §4.4).
func EncodeBC3(tile *Tile) [BlockBytesWide]byte {
	var out [BlockBytesWide]byte

	alpha := alphaCore(tile, 3)
	copy(out[0:8], alpha[:])

	w0, w1 := bc1ColorCore(tile)
	putLE32(out[8:12], w0)
	putLE32(out[12:16], w1)
	return out
}
