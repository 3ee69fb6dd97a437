package bc

// BlockBytesBC1 is the packed size of a BC1/BC4 block.
const BlockBytesBC1 = 8

// BlockBytesWide is the packed size of BC2/BC3/BC5/BC6H/BC7 blocks.
const BlockBytesWide = 16

const allTexelsMask = uint32(0xFFFF)

// EncodeBC1 encodes one 4x4 LDR tile (channels 0-2 used, channel 3 ignored)
// into an 8-byte BC1 block.
func EncodeBC1(tile *Tile) [BlockBytesBC1]byte {
	w0, w1 := bc1ColorCore(tile)
	var out [BlockBytesBC1]byte
	putLE32(out[0:4], w0)
	putLE32(out[4:8], w1)
	return out
}

// bc1ColorCore implements spec.md §4.4's BC1 color core: PCA over the RGB
// channels with Tikhonov-regularized covariance, endpoint pick, 5-6-5
// quantization, one fast_quant + bc1_refine round, fix_qbits reordering,
// and the uniform-block DC collapse.
func bc1ColorCore(tile *Tile) (word0, word1 uint32) {
	stats := computeStatsMasked(tile, allTexelsMask, 3)
	n := stats[14]
	var dc [4]float32
	if n > 0 {
		for ch := 0; ch < 3; ch++ {
			dc[ch] = stats[10+ch] / n
		}
	}

	covar := covarFromStats(stats, 3)
	covar[covarIdx[0][0]] += 0.001
	covar[covarIdx[1][1]] += 0.001
	covar[covarIdx[2][2]] += 0.001
	axis := computeAxis(covar, 4, 3)

	e0, e1 := blockSegment(tile, allTexelsMask, 3, dc, axis)

	p0 := quantize565(e0[0], e0[1], e0[2])
	p1 := quantize565(e1[0], e1[1], e1[2])
	if p0 < p1 {
		p0, p1 = p1, p0
	}
	de0 := dequantize565(p0)
	de1 := dequantize565(p1)

	var qblock [tileTexels]uint8
	fastQuantBC1(tile, de0, de1, &qblock)

	var ep [8]float32
	copy(ep[0:3], de0[:])
	copy(ep[4:7], de1[:])
	optEndpoints(tile, allTexelsMask, 3, 2, func(k int) int { return int(qblock[k]) }, ep[:])

	rp0 := quantize565(ep[0], ep[1], ep[2])
	rp1 := quantize565(ep[4], ep[5], ep[6])

	bits := packIndices2(qblock)
	if (bits ^ (bits << 2)) < 4 {
		// All sixteen indices agree: collapse both endpoints to the tile's DC
		// color (spec.md §4.4, testable property 1).
		dcp := quantize565(dc[0], dc[1], dc[2])
		rp0, rp1 = dcp, dcp
		bits = 0
	}

	return uint32(rp1)<<16 | uint32(rp0), fixQbits(bits)
}

// fastQuantBC1 projects each texel onto the 4-point line between e0 and e1
// and rounds to the nearest of {0,1,2,3} (natural order: 0 at e0, 3 at e1).
func fastQuantBC1(tile *Tile, e0, e1 [3]float32, qblock *[tileTexels]uint8) {
	for k := 0; k < tileTexels; k++ {
		var num, den float32
		for ch := 0; ch < 3; ch++ {
			d := e1[ch] - e0[ch]
			num += (tile.at(ch, k) - e0[ch]) * d
			den += d * d
		}
		var t float32
		if den > 1e-12 {
			t = num / den
		}
		t = clampF32(t, 0, 1)
		idx := clampInt(int(t*3+0.5), 0, 3)
		qblock[k] = uint8(idx)
	}
}

func quantize565(r, g, b float32) uint16 {
	return quantizeChannel(r, 5)<<11 | quantizeChannel(g, 6)<<5 | quantizeChannel(b, 5)
}

func quantizeChannel(v float32, bits int) uint16 {
	levels := (1 << uint(bits)) - 1
	q := clampInt(int(v/255*float32(levels)+0.5), 0, levels)
	return uint16(q)
}

func dequantize565(p uint16) [3]float32 {
	r := (p >> 11) & 0x1F
	g := (p >> 5) & 0x3F
	b := p & 0x1F
	return [3]float32{expandBits(r, 5), expandBits(g, 6), expandBits(b, 5)}
}

func expandBits(v uint16, bits int) float32 {
	levels := (1 << uint(bits)) - 1
	return float32(v) * 255 / float32(levels)
}

// packIndices2 packs 16 2-bit natural indices into a 32-bit word, texel k
// at bit offset 2k.
func packIndices2(qblock [tileTexels]uint8) uint32 {
	var bits uint32
	for k := 0; k < tileTexels; k++ {
		bits |= uint32(qblock[k]) << uint(2*k)
	}
	return bits
}

// fixQbits reorders 2-bit-per-texel natural indices (0,1,2,3 = distance
// from endpoint0) into BC1's wire table order (0,2,3,1), per spec.md §4.4.
func fixQbits(bits uint32) uint32 {
	hi := bits & 0xAAAAAAAA
	lo := bits & 0x55555555
	return (hi >> 1) + (hi ^ (lo << 1))
}

func putLE32(dst []byte, v uint32) {
	dst[0] = byte(v)
	dst[1] = byte(v >> 8)
	dst[2] = byte(v >> 16)
	dst[3] = byte(v >> 24)
}
