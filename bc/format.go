package bc

// Format identifies a target block-compressed texture format.
type Format int

const (
	FormatBC1 Format = iota + 1
	FormatBC2
	FormatBC3
	FormatBC4
	FormatBC5
	FormatBC6H
	FormatBC7
)

// BlockBytes returns the packed block size for f, or 0 for an unrecognized
// format.
func (f Format) BlockBytes() int {
	switch f {
	case FormatBC1, FormatBC4:
		return BlockBytesBC1
	case FormatBC2, FormatBC3, FormatBC5, FormatBC6H, FormatBC7:
		return BlockBytesWide
	default:
		return 0
	}
}

func (f Format) String() string {
	switch f {
	case FormatBC1:
		return "BC1"
	case FormatBC2:
		return "BC2"
	case FormatBC3:
		return "BC3"
	case FormatBC4:
		return "BC4"
	case FormatBC5:
		return "BC5"
	case FormatBC6H:
		return "BC6H"
	case FormatBC7:
		return "BC7"
	default:
		return "unknown"
	}
}

// Settings bundles the per-format tuning structs; only the field matching
// format is read by Encode.
type Settings struct {
	BC6H BC6HSettings
	BC7  BC7Settings
}

// Encode dispatches to the block encoder for format, returning a
// right-sized byte slice (8 bytes for BC1/BC4, 16 bytes otherwise).
// Per spec.md §4.7, encoding cannot fail on a well-formed tile; the only
// error is an unrecognized format.
func Encode(format Format, tile *Tile, settings Settings) ([]byte, error) {
	switch format {
	case FormatBC1:
		b := EncodeBC1(tile)
		return b[:], nil
	case FormatBC2:
		b := EncodeBC2(tile)
		return b[:], nil
	case FormatBC3:
		b := EncodeBC3(tile)
		return b[:], nil
	case FormatBC4:
		b := EncodeBC4(tile)
		return b[:], nil
	case FormatBC5:
		b := EncodeBC5(tile)
		return b[:], nil
	case FormatBC6H:
		b := EncodeBC6H(tile, settings.BC6H)
		return b[:], nil
	case FormatBC7:
		b := EncodeBC7(tile, settings.BC7)
		return b[:], nil
	default:
		return nil, newError(ErrBadFormat, "bc: unrecognized format")
	}
}
