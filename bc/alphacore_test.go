package bc_test

import (
	"testing"

	"github.com/blockcomp/bc-encoder/bc"
)

func TestAlphaCore_UniformChannelCollapsesToDC(t *testing.T) {
	// Property 2: a uniform alpha/red/green channel emits equal endpoints
	// and all-zero indices, matching the BC1 color-core collapse.
	var texels [16][4]uint8
	for k := range texels {
		texels[k] = [4]uint8{10, 20, 30, 77}
	}
	tile := bc.NewTileLDR(texels)
	block := bc.EncodeBC4(&tile)
	if block[0] != block[1] {
		t.Fatalf("EncodeBC4(uniform): endpoints differ: max=%d min=%d", block[0], block[1])
	}
	for i := 2; i < 8; i++ {
		if block[i] != 0 {
			t.Fatalf("EncodeBC4(uniform): index byte %d = 0x%02x, want 0x00", i, block[i])
		}
	}
}

func TestEncodeBC3_AlphaSplitAt0And255(t *testing.T) {
	// S3: alpha channel split evenly between 0 and 255 exercises the
	// non-contiguous BC3 wire remap (codes 0 and 1 hold the endpoints,
	// interior ramp occupies codes 2-7).
	var texels [16][4]uint8
	for k := range texels {
		a := uint8(0)
		if k%2 == 1 {
			a = 255
		}
		texels[k] = [4]uint8{100, 100, 100, a}
	}
	tile := bc.NewTileLDR(texels)
	block := bc.EncodeBC3(&tile)

	if block[0] != 255 {
		t.Fatalf("EncodeBC3: byte0 (max) = %d, want 255", block[0])
	}
	if block[1] != 0 {
		t.Fatalf("EncodeBC3: byte1 (min) = %d, want 0", block[1])
	}
}

func TestEncodeBC5_TwoIndependentChannels(t *testing.T) {
	// BC5 applies the alpha core independently to channels 0 and 1; a tile
	// with different ranges per channel must not cross-contaminate.
	var texels [16][4]uint8
	for k := range texels {
		texels[k] = [4]uint8{uint8(k * 16), 200, 0, 255}
	}
	tile := bc.NewTileLDR(texels)
	block := bc.EncodeBC5(&tile)

	// Channel 1 (green) is uniform at 200: its block (bytes 8-15) collapses
	// to equal endpoints, all-zero indices.
	if block[8] != block[9] {
		t.Fatalf("EncodeBC5: green endpoints differ: max=%d min=%d", block[8], block[9])
	}
	for i := 10; i < 16; i++ {
		if block[i] != 0 {
			t.Fatalf("EncodeBC5: green index byte %d = 0x%02x, want 0x00", i, block[i])
		}
	}
}
