package bc

// EncodeBC4 encodes one 4x4 LDR tile into an 8-byte BC4 block: the shared
// alpha core applied to channel 0 (spec.md §4.4).
func EncodeBC4(tile *Tile) [BlockBytesBC1]byte {
	return alphaCore(tile, 0)
}
