package bc

import "math"

// covarIdx maps a (channel, channel) pair to its slot in the 10-entry
// upper-triangular covariance layout spec.md §4.1 describes: index 0,1,2,4,5,7
// hold rr,rg,rb,gg,gb,bb and 3,6,8,9 hold ra,ga,ba,aa.
var covarIdx = [4][4]int{
	{0, 1, 2, 3},
	{1, 4, 5, 6},
	{2, 5, 7, 8},
	{3, 6, 8, 9},
}

// tileStats is the flat accumulator compute_stats_masked produces: [0,10)
// the upper-triangular sum-of-products, [10,14) the per-channel sums, [14]
// the active texel count.
type tileStats [15]float32

// computeStatsMasked accumulates, across texels with bit k set in mask, the
// per-channel sums of products and values. Multiplying by the 0/1 mask flag
// (rather than branching) keeps the accumulation path branchless, matching
// spec.md §4.1.
func computeStatsMasked(tile *Tile, mask uint32, channels int) tileStats {
	var s tileStats
	for k := 0; k < tileTexels; k++ {
		flag := float32((mask >> uint(k)) & 1)
		var v [4]float32
		for ch := 0; ch < channels; ch++ {
			v[ch] = tile.at(ch, k) * flag
		}
		for i := 0; i < channels; i++ {
			for j := i; j < channels; j++ {
				s[covarIdx[i][j]] += v[i] * v[j]
			}
			s[10+i] += v[i]
		}
		s[14] += flag
	}
	return s
}

// covarFromStats subtracts the rank-1 mean*mean term from the raw
// sum-of-products to produce the covariance matrix, in the same
// upper-triangular layout.
func covarFromStats(s tileStats, channels int) (covar [10]float32) {
	n := s[14]
	if n <= 0 {
		return covar
	}
	for i := 0; i < channels; i++ {
		for j := i; j < channels; j++ {
			covar[covarIdx[i][j]] = s[covarIdx[i][j]] - s[10+i]*s[10+j]/n
		}
	}
	return covar
}

// computeAxis runs power iteration on the symmetric covariance matrix,
// renormalizing every other iteration only (spec.md §4.1: "an approximate
// but numerically sufficient scheme").
func computeAxis(covar [10]float32, iters, channels int) (axis [4]float32) {
	for ch := 0; ch < channels; ch++ {
		axis[ch] = 1
	}
	for it := 0; it < iters; it++ {
		var next [4]float32
		for i := 0; i < channels; i++ {
			var sum float32
			for j := 0; j < channels; j++ {
				sum += covar[covarIdx[i][j]] * axis[j]
			}
			next[i] = sum
		}
		axis = next
		if it%2 == 1 {
			var normSq float32
			for ch := 0; ch < channels; ch++ {
				normSq += axis[ch] * axis[ch]
			}
			if normSq > 1e-12 {
				inv := float32(1.0 / math.Sqrt(float64(normSq)))
				for ch := 0; ch < channels; ch++ {
					axis[ch] *= inv
				}
			}
		}
	}
	return axis
}

// blockSegmentCore projects active texels onto axis after subtracting dc,
// takes the min/max projections, widens a degenerate (sub-unit) span, and
// reconstructs the two endpoint vectors. It does not clamp to an output
// range; blockSegment adds the LDR [0,255] clamp.
func blockSegmentCore(tile *Tile, mask uint32, channels int, dc, axis [4]float32) (e0, e1 [4]float32) {
	var axisLenSq float32
	for ch := 0; ch < channels; ch++ {
		axisLenSq += axis[ch] * axis[ch]
	}
	if axisLenSq < 1e-10 {
		axisLenSq = 1e-10
	}

	lo := float32(math.MaxFloat32)
	hi := float32(-math.MaxFloat32)
	for k := 0; k < tileTexels; k++ {
		if (mask>>uint(k))&1 == 0 {
			continue
		}
		var proj float32
		for ch := 0; ch < channels; ch++ {
			proj += (tile.at(ch, k) - dc[ch]) * axis[ch]
		}
		if proj < lo {
			lo = proj
		}
		if proj > hi {
			hi = proj
		}
	}
	if lo > hi {
		// No active texel in mask; collapse to dc.
		lo, hi = 0, 0
	}
	if hi-lo < 1 {
		lo -= 0.5
		hi += 0.5
	}

	for ch := 0; ch < channels; ch++ {
		e0[ch] = dc[ch] + lo*axis[ch]/axisLenSq
		e1[ch] = dc[ch] + hi*axis[ch]/axisLenSq
	}
	return e0, e1
}

// blockSegment is blockSegmentCore with each endpoint channel clamped to
// [0,255], for LDR formats.
func blockSegment(tile *Tile, mask uint32, channels int, dc, axis [4]float32) (e0, e1 [4]float32) {
	e0, e1 = blockSegmentCore(tile, mask, channels, dc, axis)
	for ch := 0; ch < channels; ch++ {
		e0[ch] = clampF32(e0[ch], 0, 255)
		e1[ch] = clampF32(e1[ch], 0, 255)
	}
	return e0, e1
}

// pickEndpoints computes the DC (mean) and PCA axis for the active texels
// under mask, then derives the endpoint pair via blockSegmentCore.
func pickEndpoints(tile *Tile, mask uint32, channels, axisIters int) (e0, e1 [4]float32) {
	stats := computeStatsMasked(tile, mask, channels)
	var dc [4]float32
	n := stats[14]
	if n > 0 {
		for ch := 0; ch < channels; ch++ {
			dc[ch] = stats[10+ch] / n
		}
	}
	covar := covarFromStats(stats, channels)
	axis := computeAxis(covar, axisIters, channels)
	return blockSegmentCore(tile, mask, channels, dc, axis)
}

// optEndpoints solves, per channel independently, the 2-point least-squares
// problem for the endpoint pair that minimizes reconstruction error given
// fixed quantized indices (spec.md §4.1). idx(k) must return the current
// subset-local index (0..levels-1) for texel k; texels outside mask are
// ignored. ep[0:channels] receives the low endpoint, ep[4:4+channels] the
// high endpoint.
func optEndpoints(tile *Tile, mask uint32, channels, bits int, idx func(k int) int, ep []float32) {
	levels := 1 << uint(bits)
	c := float32(levels - 1)

	var n, sq, sq2 float32
	var sv, sqv [4]float32
	for k := 0; k < tileTexels; k++ {
		if (mask>>uint(k))&1 == 0 {
			continue
		}
		q := float32(idx(k))
		n++
		sq += q
		sq2 += q * q
		for ch := 0; ch < channels; ch++ {
			v := tile.at(ch, k)
			sv[ch] += v
			sqv[ch] += q * v
		}
	}
	if n == 0 {
		return
	}

	st := sq / c
	st2 := sq2 / (c * c)
	a00 := n - 2*st + st2
	a01 := st - st2
	a11 := st2
	det := a00*a11 - a01*a01

	for ch := 0; ch < channels; ch++ {
		stv := sqv[ch] / c
		if absF32(det) < 0.001 {
			mean := sv[ch] / n
			ep[ch] = mean
			ep[4+ch] = mean
			continue
		}
		rhs0 := sv[ch] - stv
		rhs1 := stv
		ep[ch] = (rhs0*a11 - a01*rhs1) / det
		ep[4+ch] = (a00*rhs1 - a01*rhs0) / det
	}
}

// weight2/3/4 are the fixed-point (/64) interpolation weight tables for
// 2-, 3- and 4-bit indices, bit-exact with the block-compression reference
// tables (spec.md §9 open question: treated as opaque external constants).
var (
	weight2 = [4]int{0, 21, 43, 64}
	weight3 = [8]int{0, 9, 18, 27, 37, 46, 55, 64}
	weight4 = [16]int{0, 4, 9, 13, 17, 21, 26, 30, 34, 38, 43, 47, 51, 55, 60, 64}
)

func getUnquantValue(bits, idx int) int {
	switch bits {
	case 2:
		return weight2[idx]
	case 3:
		return weight3[idx]
	case 4:
		return weight4[idx]
	}
	return 0
}

// interpChannel applies the fixed-point interpolator for one channel: it
// rounds the 64-scaled weighted sum (64-w)*a + w*b to an integer and then
// divides by 64, so the result lies on a 1/64 grid rather than being
// rounded to a whole value.
func interpChannel(a, b float32, w int) float32 {
	return float32(math.Round(float64((64-float32(w))*a+float32(w)*b))) / 64
}

// texelErr returns the squared reconstruction error for texel k at
// candidate index idx, interpolating between e0 and e1.
func texelErr(tile *Tile, k, channels int, e0, e1 []float32, bits, idx int) float64 {
	w := getUnquantValue(bits, idx)
	var errSum float64
	for ch := 0; ch < channels; ch++ {
		rc := interpChannel(e0[ch], e1[ch], w)
		d := float64(tile.at(ch, k) - rc)
		errSum += d * d
	}
	return errSum
}

// blockQuant quantizes every texel to the best of `levels` interpolated
// points between its subset's endpoint pair (as chosen by pattern), testing
// the initial projection guess against its two neighbors (spec.md §4.1),
// writes the chosen index into qblock[k], and returns total squared error.
//
// ep holds up to 3 subset endpoint pairs packed as blocks of 8 floats:
// ep[8j : 8j+channels] is subset j's low endpoint, ep[8j+4 : 8j+4+channels]
// its high endpoint.
func blockQuant(qblock []uint8, tile *Tile, bits int, ep []float32, pattern uint32, channels int) float64 {
	levels := 1 << uint(bits)
	var total float64
	for k := 0; k < tileTexels; k++ {
		j := int((pattern >> uint(2*k)) & 3)
		off := j * 8
		e0 := ep[off : off+channels]
		e1 := ep[off+4 : off+4+channels]

		var num, den float32
		for ch := 0; ch < channels; ch++ {
			d := e1[ch] - e0[ch]
			num += (tile.at(ch, k) - e0[ch]) * d
			den += d * d
		}
		var t float32
		if den > 1e-12 {
			t = num / den
		}
		t = clampF32(t, 0, 1)
		guess := int(t*float32(levels-1) + 0.5)
		guess = clampInt(guess, 0, levels-1)

		bestIdx := guess
		bestErr := texelErr(tile, k, channels, e0, e1, bits, guess)
		for _, cand := range [2]int{guess - 1, guess + 1} {
			if cand < 0 || cand > levels-1 {
				continue
			}
			e := texelErr(tile, k, channels, e0, e1, bits, cand)
			if e < bestErr {
				bestErr = e
				bestIdx = cand
			}
		}
		total += bestErr
		qblock[k] = uint8(bestIdx)
	}
	return total
}

// quantizeCode maps v in [lo,hi] to the nearest of 2^bits integer codes.
func quantizeCode(v float32, bits int, lo, hi float32) int {
	if bits <= 0 {
		return 0
	}
	levels := (1 << uint(bits)) - 1
	if hi <= lo {
		return 0
	}
	t := clampF32((v-lo)/(hi-lo), 0, 1)
	return clampInt(int(t*float32(levels)+0.5), 0, levels)
}

// dequantizeCode is quantizeCode's inverse: integer code -> representable
// value in [lo,hi].
func dequantizeCode(code, bits int, lo, hi float32) float32 {
	if bits <= 0 || hi <= lo {
		return clampF32(lo, lo, hi)
	}
	levels := (1 << uint(bits)) - 1
	return lo + float32(code)/float32(levels)*(hi-lo)
}

// quantDequant quantizes v to `bits` levels over [lo,hi] and immediately
// dequantizes and clamps the result, the round-trip BC7 endpoint
// quantization performs before refinement.
func quantDequant(v float32, bits int, lo, hi float32) float32 {
	return clampF32(dequantizeCode(quantizeCode(v, bits, lo, hi), bits, lo, hi), lo, hi)
}

func clampF32(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func absF32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
