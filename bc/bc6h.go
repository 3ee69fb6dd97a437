package bc

import "math"

// BC6HSettings tunes the BC6H mode search (spec.md §3 "Settings").
type BC6HSettings struct {
	SlowMode           bool
	FastMode           bool
	RefineIterations1P int
	RefineIterations2P int
	FastSkipThreshold  int
}

// NewBC6HSettings returns one of the three documented BC6H profiles
// (spec.md §6 "Settings"): "veryfast", "basic", "slow".
func NewBC6HSettings(profile string) (BC6HSettings, error) {
	switch profile {
	case "veryfast":
		return BC6HSettings{RefineIterations1P: 1, RefineIterations2P: 1, FastSkipThreshold: 2}, nil
	case "basic":
		return BC6HSettings{RefineIterations1P: 2, RefineIterations2P: 2, FastSkipThreshold: 4}, nil
	case "slow":
		return BC6HSettings{SlowMode: true, RefineIterations1P: 4, RefineIterations2P: 4, FastSkipThreshold: 32}, nil
	default:
		return BC6HSettings{}, newError(ErrBadProfile, "bc: unknown bc6h profile "+profile)
	}
}

// bc6hMode describes one of the 14 mode indices (spec.md §4.5). Every mode
// stores exactly one absolute endpoint (e0 of subset 0) at epb bits per
// channel; every other endpoint in the block (e1 of a 1-subset mode, or
// e1/e2/e3 of a 2-subset mode) is a signed delta from that single absolute
// endpoint's quantized code, at the mode's per-channel delta width. Modes 0
// and 1 additionally use a 2-bit mode-select prefix instead of the 5-bit
// prefix every other mode uses — the only two modes that do.
type bc6hMode struct {
	index      int
	is1p       bool
	prefixBits int
	prefix     uint32
	epb        int
}

// bc6hModes is ordered by index 0..13. prefix values and epb (base endpoint
// width) are transcribed directly from the format's per-mode field table;
// prefixBits marks the two modes (0, 1) whose mode-select field is 2 bits
// rather than the usual 5.
var bc6hModes = [14]bc6hMode{
	{index: 0, prefixBits: 2, prefix: 0x00, epb: 10},
	{index: 1, prefixBits: 2, prefix: 0x01, epb: 7},
	{index: 2, prefixBits: 5, prefix: 0x02, epb: 11},
	{index: 3, prefixBits: 5, prefix: 0x06, epb: 11},
	{index: 4, prefixBits: 5, prefix: 0x0A, epb: 11},
	{index: 5, prefixBits: 5, prefix: 0x0E, epb: 9},
	{index: 6, prefixBits: 5, prefix: 0x12, epb: 8},
	{index: 7, prefixBits: 5, prefix: 0x16, epb: 8},
	{index: 8, prefixBits: 5, prefix: 0x1A, epb: 8},
	{index: 9, prefixBits: 5, prefix: 0x1E, epb: 6},
	{index: 10, is1p: true, prefixBits: 5, prefix: 0x03, epb: 10},
	{index: 11, is1p: true, prefixBits: 5, prefix: 0x07, epb: 11},
	{index: 12, is1p: true, prefixBits: 5, prefix: 0x0B, epb: 12},
	{index: 13, is1p: true, prefixBits: 5, prefix: 0x0F, epb: 16},
}

// bc6hDelta2P gives each 2-subset mode's three per-channel (R,G,B) delta
// widths for e1/e2/e3, transcribed from the format's per-mode bit layout.
// Modes 2-4 and 6-8 each shift one extra bit to a single channel (the
// "triple" modes); modes 0, 1, 5 and 9 split evenly across all three.
var bc6hDelta2P = [10][3]int{
	{5, 5, 5}, // mode 0
	{6, 6, 6}, // mode 1
	{5, 4, 4}, // mode 2
	{4, 5, 4}, // mode 3
	{4, 4, 5}, // mode 4
	{5, 5, 5}, // mode 5
	{6, 5, 5}, // mode 6
	{5, 6, 5}, // mode 7
	{5, 5, 6}, // mode 8
	{6, 6, 6}, // mode 9
}

// bc6hDelta1P gives each 1-subset mode's (uniform across channels) delta
// width for e1, indexed by mode.index-10.
var bc6hDelta1P = [4]int{10, 9, 8, 4}

func bc6hDeltaBits2P(m bc6hMode) [3]int { return bc6hDelta2P[m.index] }

func bc6hDeltaBits1P(m bc6hMode) int { return bc6hDelta1P[m.index-10] }

type bc6hState struct {
	rgbBounds  [6]float32 // min0,min1,min2,max0,max1,max2
	maxSpan    float32
	maxSpanIdx int
}

func bc6hSetup(tile *Tile) bc6hState {
	var st bc6hState
	for ch := 0; ch < 3; ch++ {
		lo, hi := float32(math.MaxFloat32), float32(-math.MaxFloat32)
		for k := 0; k < tileTexels; k++ {
			v := tile.at(ch, k)
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
		st.rgbBounds[ch] = lo
		st.rgbBounds[3+ch] = hi
		if span := hi - lo; span > st.maxSpan {
			st.maxSpan = span
			st.maxSpanIdx = ch
		}
	}
	return st
}

type bc6hCandidate struct {
	err   float64
	block [BlockBytesWide]byte
	valid bool
}

// EncodeBC6H encodes one 4x4 HDR tile (produced by NewTileHDR or
// NewTileHDRFromHalfBits) into a 16-byte BC6H block.
func EncodeBC6H(tile *Tile, settings BC6HSettings) [BlockBytesWide]byte {
	st := bc6hSetup(tile)
	fastSkip := settings.FastSkipThreshold
	if fastSkip <= 0 {
		fastSkip = 32
	}

	best := bc6hCandidate{err: math.Inf(1)}

	tryMode := func(m bc6hMode, margin float32) {
		if !m.is1p && !settings.SlowMode {
			capacity := float32(int(1) << uint(m.epb))
			if st.maxSpan*margin > capacity {
				return
			}
		}
		if m.is1p {
			encodeBC6H1p(tile, st, m, settings.RefineIterations1P, &best)
		} else {
			encodeBC6H2p(tile, st, m, settings.RefineIterations2P, fastSkip, &best)
		}
	}

	if settings.SlowMode {
		for _, idx := range [...]int{0, 1, 2, 5, 6, 9, 10, 11, 12, 13} {
			tryMode(bc6hModes[idx], 1.0)
		}
	} else {
		order := [...]int{10, 11, 12, 13, 0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
		if settings.FastMode {
			order = [...]int{10, 0, 11, 12, 13, 1, 2, 3, 4, 5, 6, 7, 8, 9}
		}
		for _, idx := range order {
			m := bc6hModes[idx]
			margin := float32(1.0)
			if !m.is1p {
				margin = 1.0 / 1.2
			}
			tryMode(m, margin)
		}
	}

	if !best.valid {
		// Every mode got span-skipped (should not happen: modes 10-13 are
		// never skipped), fall back to mode 10 unconditionally.
		encodeBC6H1p(tile, st, bc6hModes[10], maxInt(1, settings.RefineIterations1P), &best)
	}
	return best.block
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// bc6hDeltaCode quantizes v to the baseCode-relative signed delta at
// deltaBits width, clamped to that field's representable range.
func bc6hDeltaCode(v float32, baseCode, epb, deltaBits int, lo, hi float32) uint32 {
	desired := quantizeCode(v, epb, lo, hi)
	delta := clampInt(desired-baseCode, -(1 << uint(deltaBits-1)), (1<<uint(deltaBits-1))-1)
	return uint32(delta) & bitMask32(deltaBits)
}

// bc6hDeltaReconstruct mirrors bc6hDeltaCode but returns the dequantized
// value instead of the wire code, for use while refining endpoints.
func bc6hDeltaReconstruct(v float32, baseCode, epb, deltaBits int, lo, hi float32) float32 {
	desired := quantizeCode(v, epb, lo, hi)
	delta := clampInt(desired-baseCode, -(1 << uint(deltaBits-1)), (1<<uint(deltaBits-1))-1)
	return dequantizeCode(baseCode+delta, epb, lo, hi)
}

func encodeBC6H1p(tile *Tile, st bc6hState, m bc6hMode, iters int, best *bc6hCandidate) {
	e0, e1 := pickEndpoints(tile, allTexelsMask, 3, 8)
	var ep [8]float32
	copy(ep[0:3], e0[:3])
	copy(ep[4:7], e1[:3])
	db := bc6hDeltaBits1P(m)
	quantizeEp1p(&ep, m, db, st)

	var qblock [tileTexels]uint8
	errv := blockQuant(qblock[:], tile, 4, ep[:], 0, 3)
	for it := 0; it < iters; it++ {
		optEndpoints(tile, allTexelsMask, 3, 4, func(k int) int { return int(qblock[k]) }, ep[:])
		quantizeEp1p(&ep, m, db, st)
		errv = blockQuant(qblock[:], tile, 4, ep[:], 0, 3)
	}

	if errv >= best.err {
		return
	}
	// Swap + index-complement reconstructs identically (the weight tables
	// are symmetric: weight(levels-1-i) == 64-weight(i)), so errv is
	// unchanged by the anchor adjustment.
	applySubsetAnchorSwap(qblock[:], ep[:], 0, 3, 4, 1)
	best.err = errv
	best.valid = true
	best.block = bc6hPack1p(m, st, ep, qblock, db)
}

// quantizeEp1p quantizes e0 to an absolute epb-bit code per channel, then
// re-expresses e1 as a db-bit signed delta from that same code — the real
// single-subset endpoint structure, rather than two independently
// quantized absolute values.
func quantizeEp1p(ep *[8]float32, m bc6hMode, db int, st bc6hState) {
	for ch := 0; ch < 3; ch++ {
		lo, hi := st.rgbBounds[ch], st.rgbBounds[3+ch]
		ep[ch] = clampF32(ep[ch], lo, hi)
		baseCode := quantizeCode(ep[ch], m.epb, lo, hi)
		ep[ch] = dequantizeCode(baseCode, m.epb, lo, hi)
		ep[4+ch] = clampF32(ep[4+ch], lo, hi)
		ep[4+ch] = bc6hDeltaReconstruct(ep[4+ch], baseCode, m.epb, db, lo, hi)
	}
}

// quantizeEp2p quantizes subset 0's low endpoint to an absolute epb-bit
// code per channel (the block's single absolute endpoint e0), then
// re-expresses the other three endpoint vectors (subset 0's high, subset
// 1's low and high) as delta-bit signed deltas from that same e0 code.
func quantizeEp2p(ep *[16]float32, m bc6hMode, delta [3]int, st bc6hState) {
	for ch := 0; ch < 3; ch++ {
		lo, hi := st.rgbBounds[ch], st.rgbBounds[3+ch]
		ep[ch] = clampF32(ep[ch], lo, hi)
		baseCode := quantizeCode(ep[ch], m.epb, lo, hi)
		ep[ch] = dequantizeCode(baseCode, m.epb, lo, hi)
		for _, off := range [3]int{4, 8, 12} {
			ep[off+ch] = clampF32(ep[off+ch], lo, hi)
			ep[off+ch] = bc6hDeltaReconstruct(ep[off+ch], baseCode, m.epb, delta[ch], lo, hi)
		}
	}
}

func encodeBC6H2p(tile *Tile, st bc6hState, m bc6hMode, iters, fastSkip int, best *bc6hCandidate) {
	type cand struct {
		partID int
		bound  float32
	}
	var cands [32]cand
	for p := 0; p < 32; p++ {
		cands[p] = cand{partID: p, bound: blockPCABoundSplit(tile, 3, maskFor(p, 0))}
	}
	// Partial selection sort: bring the fastSkip lowest-bound candidates to
	// the front (spec.md §4.5 step 3).
	limit := fastSkip
	if limit > 32 {
		limit = 32
	}
	for i := 0; i < limit; i++ {
		minIdx := i
		for j := i + 1; j < 32; j++ {
			if cands[j].bound < cands[minIdx].bound {
				minIdx = j
			}
		}
		cands[i], cands[minIdx] = cands[minIdx], cands[i]
	}

	delta := bc6hDeltaBits2P(m)

	for i := 0; i < limit; i++ {
		partID := cands[i].partID
		pattern := patternOf(partID)

		var ep [16]float32
		for j := 0; j < 2; j++ {
			mask := uint32(maskFor(partID, j))
			e0, e1 := pickEndpoints(tile, mask, 3, 4)
			off := j * 8
			for ch := 0; ch < 3; ch++ {
				ep[off+ch] = e0[ch]
				ep[off+4+ch] = e1[ch]
			}
		}
		quantizeEp2p(&ep, m, delta, st)

		var qblock [tileTexels]uint8
		errv := blockQuant(qblock[:], tile, 3, ep[:], pattern, 3)
		for it := 0; it < iters; it++ {
			for j := 0; j < 2; j++ {
				mask := uint32(maskFor(partID, j))
				off := j * 8
				optEndpoints(tile, mask, 3, 3, func(k int) int { return int(qblock[k]) }, ep[off:off+8])
			}
			quantizeEp2p(&ep, m, delta, st)
			errv = blockQuant(qblock[:], tile, 3, ep[:], pattern, 3)
		}

		if errv >= best.err {
			continue
		}
		applySubsetAnchorSwap(qblock[:], ep[:], pattern, 3, 3, 2)
		best.err = errv
		best.valid = true
		best.block = bc6hPack2p(m, st, partID, ep, qblock, delta)
	}
}

// blockPCABoundSplit sums the two subsets' covariance traces (an upper
// bound on each subset's dominant PCA eigenvalue, spec.md §4.5 step 2)
// given the 2-subset mask m0 (subset 1's mask is its complement).
func blockPCABoundSplit(tile *Tile, channels int, m0 uint16) float32 {
	m1 := uint16(0xFFFF) &^ m0
	s0 := computeStatsMasked(tile, uint32(m0), channels)
	s1 := computeStatsMasked(tile, uint32(m1), channels)
	c0 := covarFromStats(s0, channels)
	c1 := covarFromStats(s1, channels)
	var bound float32
	for ch := 0; ch < channels; ch++ {
		bound += c0[covarIdx[ch][ch]] + c1[covarIdx[ch][ch]]
	}
	return bound
}

func bc6hPack1p(m bc6hMode, st bc6hState, ep [8]float32, qblock [tileTexels]uint8, db int) [BlockBytesWide]byte {
	var data blockBuf
	pos := 0
	pos = putBits(&data, pos, m.prefixBits, m.prefix)
	var baseCode [3]int
	for ch := 0; ch < 3; ch++ {
		lo, hi := st.rgbBounds[ch], st.rgbBounds[3+ch]
		baseCode[ch] = quantizeCode(ep[ch], m.epb, lo, hi)
		pos = putBits(&data, pos, m.epb, uint32(baseCode[ch]))
	}
	for ch := 0; ch < 3; ch++ {
		lo, hi := st.rgbBounds[ch], st.rgbBounds[3+ch]
		pos = putBits(&data, pos, db, bc6hDeltaCode(ep[4+ch], baseCode[ch], m.epb, db, lo, hi))
	}
	packIndicesWithAnchorSkip(&data, pos, qblock[:], 4, []int{0})
	return blockBufToBytes(data)
}

func bc6hPack2p(m bc6hMode, st bc6hState, partID int, ep [16]float32, qblock [tileTexels]uint8, delta [3]int) [BlockBytesWide]byte {
	var data blockBuf
	pos := 0
	pos = putBits(&data, pos, m.prefixBits, m.prefix)
	pos = putBits(&data, pos, 5, uint32(partID))

	var baseCode [3]int
	for ch := 0; ch < 3; ch++ {
		lo, hi := st.rgbBounds[ch], st.rgbBounds[3+ch]
		baseCode[ch] = quantizeCode(ep[ch], m.epb, lo, hi)
		pos = putBits(&data, pos, m.epb, uint32(baseCode[ch]))
	}
	for _, off := range [3]int{4, 8, 12} {
		for ch := 0; ch < 3; ch++ {
			lo, hi := st.rgbBounds[ch], st.rgbBounds[3+ch]
			pos = putBits(&data, pos, delta[ch], bc6hDeltaCode(ep[off+ch], baseCode[ch], m.epb, delta[ch], lo, hi))
		}
	}
	anchors := []int{0, int(getSkips(partID, 1))}
	packIndicesWithAnchorSkip(&data, pos, qblock[:], 3, anchors)
	return blockBufToBytes(data)
}

func blockBufToBytes(data blockBuf) [BlockBytesWide]byte {
	var out [BlockBytesWide]byte
	putLE32(out[0:4], data[0])
	putLE32(out[4:8], data[1])
	putLE32(out[8:12], data[2])
	putLE32(out[12:16], data[3])
	return out
}
