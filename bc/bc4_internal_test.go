package bc

import "testing"

// TestDecodeBC4_RedRampErrorWithinHalfStep exercises S4: a red ramp
// 0,17,34,...,255 (16 evenly spaced steps spanning the full range) decodes
// back with per-texel error no more than 255/14 (about 18.2), half the 3-bit
// ramp's quantization step of 255/7.
func TestDecodeBC4_RedRampErrorWithinHalfStep(t *testing.T) {
	var texels [16][4]uint8
	for k := range texels {
		texels[k] = [4]uint8{uint8(k * 17), 0, 0, 255}
	}
	tile := NewTileLDR(texels)
	block := alphaCore(&tile, 0)
	decoded := decodeAlphaRamp(block)

	for k := 0; k < tileTexels; k++ {
		want := tile.at(0, k)
		d := decoded[k] - want
		if d < 0 {
			d = -d
		}
		if d > 255.0/14 {
			t.Fatalf("decodeAlphaRamp texel %d: got %v, want within 255/14 of %v", k, decoded[k], want)
		}
	}
}
