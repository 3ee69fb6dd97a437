package bc_test

import (
	"testing"

	"github.com/blockcomp/bc-encoder/bc"
)

func TestEncode_BlockSizesPerFormat(t *testing.T) {
	var texels [16][4]uint8
	for k := range texels {
		texels[k] = [4]uint8{uint8(k * 10), uint8(255 - k*10), 80, 255}
	}
	tile := bc.NewTileLDR(texels)

	bc7Settings, err := bc.NewBC7Settings("veryfast")
	if err != nil {
		t.Fatalf("NewBC7Settings: %v", err)
	}
	bc6hSettings, err := bc.NewBC6HSettings("veryfast")
	if err != nil {
		t.Fatalf("NewBC6HSettings: %v", err)
	}
	settings := bc.Settings{BC6H: bc6hSettings, BC7: bc7Settings}

	cases := []struct {
		format bc.Format
		want   int
	}{
		{bc.FormatBC1, 8},
		{bc.FormatBC2, 16},
		{bc.FormatBC3, 16},
		{bc.FormatBC4, 8},
		{bc.FormatBC5, 16},
		{bc.FormatBC6H, 16},
		{bc.FormatBC7, 16},
	}

	for _, c := range cases {
		if got := c.format.BlockBytes(); got != c.want {
			t.Fatalf("%s.BlockBytes() = %d, want %d", c.format, got, c.want)
		}
		block, err := bc.Encode(c.format, &tile, settings)
		if err != nil {
			t.Fatalf("Encode(%s): %v", c.format, err)
		}
		if len(block) != c.want {
			t.Fatalf("Encode(%s): got %d bytes, want %d", c.format, len(block), c.want)
		}
	}
}

func TestEncode_UnrecognizedFormat(t *testing.T) {
	var tile bc.Tile
	_, err := bc.Encode(bc.Format(99), &tile, bc.Settings{})
	if err == nil {
		t.Fatalf("Encode(unrecognized format): expected error, got nil")
	}
	if code := bc.ErrorCodeOf(err); code != bc.ErrBadFormat {
		t.Fatalf("ErrorCodeOf: got %v, want ErrBadFormat", code)
	}
}
