package bc

import "testing"

// TestDecodeBC6H_UniformColorWithinOneULP exercises S5: a uniform HDR tile
// at (0.25, 0.5, 0.75) selects mode 10 (see TestEncodeBC6H_UniformColorSelectsMode10
// in the external test suite) and decodes back to within 1 ULP of the
// source half-float bit pattern in every channel.
func TestDecodeBC6H_UniformColorWithinOneULP(t *testing.T) {
	source := [3]float32{0.25, 0.5, 0.75}
	var texels [16][3]float32
	for k := range texels {
		texels[k] = source
	}
	tile := NewTileHDR(texels)
	st := bc6hSetup(&tile)

	settings, err := NewBC6HSettings("basic")
	if err != nil {
		t.Fatalf("NewBC6HSettings: %v", err)
	}
	block := EncodeBC6H(&tile, settings)

	if block[0]&0x1F != 0x03 {
		t.Fatalf("EncodeBC6H(uniform): prefix = 0x%02x, want 0x03 (mode 10)", block[0]&0x1F)
	}

	decoded := decodeBC6H(block, st)
	for ch := 0; ch < 3; ch++ {
		wantBits := int(f32ToHalfBitsUnsigned(source[ch]))
		gotBits := int(decoded[0][ch]/bc6hRescale + 0.5)
		diff := gotBits - wantBits
		if diff < 0 {
			diff = -diff
		}
		if diff > 1 {
			t.Fatalf("decodeBC6H channel %d: half-bits = %d, want within 1 ULP of %d", ch, gotBits, wantBits)
		}
	}
	for k := 1; k < tileTexels; k++ {
		if decoded[k] != decoded[0] {
			t.Fatalf("decodeBC6H: texel %d = %v, want uniform %v", k, decoded[k], decoded[0])
		}
	}
}

// TestDecodeBC6H_GradientRoundTripsWithinSpan encodes a non-uniform gradient
// tile at "slow" settings (which tries modes 0, 1, 2, 5, 6, 9 and 10-13 with
// no span skipping and keeps the lowest-error block) and checks that every
// decoded channel stays within span/256 + 1 of the source, where span is
// that channel's max-min over the tile.
func TestDecodeBC6H_GradientRoundTripsWithinSpan(t *testing.T) {
	var texels [16][3]float32
	for k := range texels {
		v := float32(k) / 15
		texels[k] = [3]float32{v, 1 - v, 0.5}
	}
	tile := NewTileHDR(texels)
	st := bc6hSetup(&tile)

	settings, err := NewBC6HSettings("slow")
	if err != nil {
		t.Fatalf("NewBC6HSettings: %v", err)
	}
	block := EncodeBC6H(&tile, settings)
	decoded := decodeBC6H(block, st)

	for k := 0; k < tileTexels; k++ {
		for ch := 0; ch < 3; ch++ {
			want := tile.at(ch, k)
			got := decoded[k][ch]
			span := st.rgbBounds[3+ch] - st.rgbBounds[ch]
			tol := span/256 + 1
			d := got - want
			if d < 0 {
				d = -d
			}
			if d > tol {
				t.Fatalf("decodeBC6H texel %d channel %d: got %v, want %v (tol %v)", k, ch, got, want, tol)
			}
		}
	}
}
