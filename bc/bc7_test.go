package bc_test

import (
	"testing"

	"github.com/blockcomp/bc-encoder/bc"
)

// TestEncodeBC7_UniformOpaque_Mode6 exercises S6: a uniform opaque tile
// forced through the single-subset mode (settings.ModeSelection selects
// only mode 6, as the "ultrafast" profile does) must produce equal
// endpoints and all-zero indices.
func TestEncodeBC7_UniformOpaque_Mode6(t *testing.T) {
	var texels [16][4]uint8
	for k := range texels {
		texels[k] = [4]uint8{90, 140, 200, 255}
	}
	tile := bc.NewTileLDR(texels)

	settings, err := bc.NewBC7Settings("ultrafast")
	if err != nil {
		t.Fatalf("NewBC7Settings: %v", err)
	}
	block := bc.EncodeBC7(&tile, settings)

	// Mode 6's unary prefix occupies the low 7 bits (LSB-first within the
	// byte): a single 1-bit at bit position 6, value 0x40. Bit 7 already
	// belongs to the next field (the first endpoint code) so it is masked
	// off rather than compared.
	if block[0]&0x7F != 0x40 {
		t.Fatalf("EncodeBC7(uniform, ultrafast): byte0&0x7f = 0x%02x, want 0x40 (mode 6 prefix)", block[0]&0x7F)
	}

	// The 63-bit index field (bits 65..127, texel 0's top bit elided) must be
	// all zero: bytes 8-15 hold bits 64-127, and the prefix+color+P-bit
	// header occupies bits 0-64, so index bits start partway into byte 8. A fully degenerate (DC-collapsed)
	// block packs index 0 for every texel, which zeroes the whole index
	// region regardless of the exact starting bit.
	allZero := true
	for i := 9; i < 16; i++ {
		if block[i] != 0 {
			allZero = false
		}
	}
	if !allZero {
		t.Fatalf("EncodeBC7(uniform, ultrafast): expected all-zero index tail, got % x", block[9:16])
	}
}

func TestEncodeBC7_BlockSizeIsSixteenBytes(t *testing.T) {
	var texels [16][4]uint8
	for k := range texels {
		texels[k] = [4]uint8{uint8(k * 15), uint8(255 - k*15), 128, 255}
	}
	tile := bc.NewTileLDR(texels)

	settings, err := bc.NewBC7Settings("basic")
	if err != nil {
		t.Fatalf("NewBC7Settings: %v", err)
	}
	block := bc.EncodeBC7(&tile, settings)
	if len(block) != bc.BlockBytesWide {
		t.Fatalf("EncodeBC7: got %d bytes, want %d", len(block), bc.BlockBytesWide)
	}
}
