package bc

import "math"

// alphaCore implements spec.md §4.4's shared BC3/BC4/BC5 alpha core: find
// the channel's min/max, linearly quantize to 8 contiguous levels, remap
// into BC3's non-contiguous wire order (endpoints at codes 0 and 1), and
// pack byte0=max, byte1=min followed by 48 bits of 3-bit indices.
func alphaCore(tile *Tile, channel int) (out [BlockBytesBC1]byte) {
	var amin, amax float32 = math.MaxFloat32, -math.MaxFloat32
	for k := 0; k < tileTexels; k++ {
		v := tile.at(channel, k)
		if v < amin {
			amin = v
		}
		if v > amax {
			amax = v
		}
	}
	if amax == amin {
		// Uniform channel: both endpoints equal that value, every index 0
		// (spec.md §8 testable property 2) rather than running the general
		// remap, which would otherwise land every texel on wire code 1.
		v := uint32(clampInt(int(amax+0.5), 0, 255))
		var data blockBuf
		putBits(&data, 0, 8, v)
		putBits(&data, 8, 8, v)
		putLE32(out[0:4], data[0])
		putLE32(out[4:8], data[1])
		return out
	}
	s := 7 / (amax - amin)

	var data blockBuf
	pos := 0
	pos = putBits(&data, pos, 8, uint32(clampInt(int(amax+0.5), 0, 255)))
	pos = putBits(&data, pos, 8, uint32(clampInt(int(amin+0.5), 0, 255)))

	for k := 0; k < tileTexels; k++ {
		v := tile.at(channel, k)
		q := clampInt(int(math.Round(float64((v-amin)*s))), 0, 7)

		q = 7 - q
		if q > 0 {
			q++
		}
		if q == 8 {
			q = 1
		}
		pos = putBits(&data, pos, 3, uint32(q))
	}

	putLE32(out[0:4], data[0])
	putLE32(out[4:8], data[1])
	return out
}
