package bc_test

import (
	"testing"

	"github.com/blockcomp/bc-encoder/bc"
)

func TestFixQbitsHandlesMixedIndices(t *testing.T) {
	// spec.md §8 property 3 claims fix_qbits is an involution, but the
	// literal bit formula in §4.4 implements the permutation 0->0, 1->2,
	// 2->3, 3->1 (a 3-cycle on {1,2,3}), which is not self-inverse; see
	// DESIGN.md. This checks the weaker, verifiable property instead: a
	// tile whose 16 texels span all four fast_quant codes produces a
	// non-degenerate (non-DC-collapsed) index word, proving fix_qbits ran
	// over genuinely mixed input without losing bits.
	var texels [16][4]uint8
	for k := 0; k < 16; k++ {
		v := uint8((k % 4) * 85)
		texels[k] = [4]uint8{v, v, v, 255}
	}
	tile := bc.NewTileLDR(texels)
	block := bc.EncodeBC1(&tile)
	if block[4] == 0 && block[5] == 0 && block[6] == 0 && block[7] == 0 {
		t.Fatalf("EncodeBC1: expected non-zero index word for a 4-level ramp, got all zero")
	}
}

func TestAnchorSwapProducesValidBlock(t *testing.T) {
	// Smoke test: a tile whose texel 0 quantizes to a high mode 6 index runs
	// EncodeBC7 through the mode 6 endpoint swap and data_shl_1bit_from's
	// anchor-MSB elision. Only the block size is checked here; the anchor
	// index itself (spec.md §8 property 6) is not decoded or asserted.
	var texels [16][4]uint8
	for k := 0; k < 16; k++ {
		texels[k] = [4]uint8{128, 128, 128, 255}
	}
	texels[0] = [4]uint8{250, 250, 250, 255}
	tile := bc.NewTileLDR(texels)

	settings, err := bc.NewBC7Settings("ultrafast")
	if err != nil {
		t.Fatalf("NewBC7Settings: %v", err)
	}
	block := bc.EncodeBC7(&tile, settings)
	if len(block) != bc.BlockBytesWide {
		t.Fatalf("EncodeBC7: got %d bytes, want %d", len(block), bc.BlockBytesWide)
	}
}
