package bc

import "math"

// BC7Settings tunes BC7 mode search and refinement (spec.md §3 "Settings").
type BC7Settings struct {
	RefineIterations        [9]int
	ModeSelection           [4]bool // {0,2}, {1,3,7}, {4,5}, {6}
	SkipMode2               bool
	FastSkipThresholdMode1  int
	FastSkipThresholdMode3  int
	FastSkipThresholdMode7  int
	Mode45Channel0          int // 0..3, channel encoded in the mode 4/5 scalar plane
	RefineIterationsChannel int
	Channels                int // 3 or 4
}

// NewBC7Settings returns one of the four documented BC7 profiles (spec.md
// §6 "Settings"): "ultrafast", "veryfast", "basic", "slow".
func NewBC7Settings(profile string) (BC7Settings, error) {
	all := [4]bool{true, true, true, true}
	switch profile {
	case "ultrafast":
		return BC7Settings{
			RefineIterations:       [9]int{1, 1, 1, 1, 1, 1, 1, 1, 1},
			ModeSelection:          [4]bool{false, false, false, true},
			FastSkipThresholdMode1: 2, FastSkipThresholdMode3: 2, FastSkipThresholdMode7: 2,
			Channels: 4,
		}, nil
	case "veryfast":
		return BC7Settings{
			RefineIterations:       [9]int{1, 1, 1, 1, 1, 1, 2, 1, 1},
			ModeSelection:          all,
			FastSkipThresholdMode1: 2, FastSkipThresholdMode3: 2, FastSkipThresholdMode7: 2,
			RefineIterationsChannel: 1, Channels: 4,
		}, nil
	case "basic":
		return BC7Settings{
			RefineIterations:       [9]int{2, 2, 2, 2, 2, 2, 2, 2, 2},
			ModeSelection:          all,
			FastSkipThresholdMode1: 4, FastSkipThresholdMode3: 4, FastSkipThresholdMode7: 8,
			RefineIterationsChannel: 2, Channels: 4,
		}, nil
	case "slow":
		return BC7Settings{
			RefineIterations:       [9]int{4, 4, 4, 4, 4, 4, 4, 4, 4},
			ModeSelection:          all,
			FastSkipThresholdMode1: 64, FastSkipThresholdMode3: 64, FastSkipThresholdMode7: 64,
			RefineIterationsChannel: 4, Channels: 4,
		}, nil
	default:
		return BC7Settings{}, newError(ErrBadProfile, "bc: unknown bc7 profile "+profile)
	}
}

// bc7ModeInfo is the per-mode shape from spec.md §4.6's table.
type bc7ModeInfo struct {
	subsets      int
	colorBits    int
	hasAlpha     bool
	indexBits    int
	partitionBit int // 0, 4 or 6
	pBitsShared  bool
	pBitsPerEP   bool
}

var bc7Modes = [8]bc7ModeInfo{
	0: {subsets: 3, colorBits: 4, indexBits: 3, partitionBit: 4, pBitsPerEP: true},
	1: {subsets: 2, colorBits: 6, indexBits: 3, partitionBit: 6, pBitsShared: true},
	2: {subsets: 3, colorBits: 5, indexBits: 2, partitionBit: 6},
	3: {subsets: 2, colorBits: 7, indexBits: 2, partitionBit: 6, pBitsPerEP: true},
	4: {subsets: 1, colorBits: 5, hasAlpha: true, indexBits: 2},
	5: {subsets: 1, colorBits: 7, hasAlpha: true, indexBits: 2},
	6: {subsets: 1, colorBits: 7, hasAlpha: true, indexBits: 4, pBitsPerEP: true},
	7: {subsets: 2, colorBits: 5, hasAlpha: true, indexBits: 2, partitionBit: 6, pBitsPerEP: true},
}

type bc7Candidate struct {
	err   float64
	block [BlockBytesWide]byte
	valid bool
}

// EncodeBC7 encodes one 4x4 LDR tile into a 16-byte BC7 block.
func EncodeBC7(tile *Tile, settings BC7Settings) [BlockBytesWide]byte {
	channels := settings.Channels
	if channels != 3 && channels != 4 {
		channels = 4
	}

	opaqueErr := computeOpaqueErr(tile, channels)

	best := bc7Candidate{err: math.Inf(1)}

	if settings.ModeSelection[0] {
		bc7EncMode01237(tile, 0, settings.RefineIterations[0], 64, opaqueErr, &best)
		if !settings.SkipMode2 {
			bc7EncMode01237(tile, 2, settings.RefineIterations[2], 64, opaqueErr, &best)
		}
	}
	if settings.ModeSelection[1] {
		bc7EncMode01237(tile, 1, settings.RefineIterations[1], clampInt(settings.FastSkipThresholdMode1, 1, 64), opaqueErr, &best)
		bc7EncMode01237(tile, 3, settings.RefineIterations[3], clampInt(settings.FastSkipThresholdMode3, 1, 64), opaqueErr, &best)
		bc7EncMode01237(tile, 7, settings.RefineIterations[7], clampInt(settings.FastSkipThresholdMode7, 1, 64), opaqueErr, &best)
	}
	if settings.ModeSelection[2] {
		bc7EncMode45(tile, 4, settings, &best)
		bc7EncMode45(tile, 5, settings, &best)
	}
	if settings.ModeSelection[3] {
		bc7EncMode6(tile, settings.RefineIterations[6], &best)
	}

	if !best.valid {
		bc7EncMode6(tile, maxInt(1, settings.RefineIterations[6]), &best)
	}
	return best.block
}

// computeOpaqueErr penalizes non-alpha modes (0-3) when the tile isn't
// uniformly opaque (spec.md §4.6 step 5).
func computeOpaqueErr(tile *Tile, channels int) float64 {
	if channels < 4 {
		return 0
	}
	var err float64
	for k := 0; k < tileTexels; k++ {
		d := float64(tile.at(3, k) - 255)
		err += d * d
	}
	return err
}

// bc7PartitionBase returns the part_id table offset for mode (0 for
// 2-subset layouts, 64 for 3-subset).
func bc7PartitionBase(mode int) int {
	if bc7Modes[mode].subsets == 3 {
		return 64
	}
	return 0
}

func bc7EncMode01237(tile *Tile, mode, iters, fastSkip int, opaqueErr float64, best *bc7Candidate) {
	info := bc7Modes[mode]
	base := bc7PartitionBase(mode)
	channels := 3
	if info.hasAlpha {
		channels = 4
	}

	limit := 64
	switch mode {
	case 0:
		limit = 16
	case 1, 3, 7:
		limit = clampInt(fastSkip, 1, 64)
	}

	type cand struct {
		local int
		bound float32
	}
	cands := make([]cand, 64)
	for p := 0; p < 64; p++ {
		partID := base + p
		cands[p] = cand{local: p, bound: blockPCABoundSplit(tile, channels, maskFor(partID, 0))}
	}
	for i := 0; i < limit; i++ {
		minIdx := i
		for j := i + 1; j < 64; j++ {
			if cands[j].bound < cands[minIdx].bound {
				minIdx = j
			}
		}
		cands[i], cands[minIdx] = cands[minIdx], cands[i]
	}

	bits := colorQuantBits(info, mode)

	for i := 0; i < limit; i++ {
		partID := base + cands[i].local
		pattern := patternOf(partID)

		var ep [24]float32
		for j := 0; j < info.subsets; j++ {
			mask := uint32(maskFor(partID, j))
			e0, e1 := blockSegment(tile, mask, channels, dcOf(tile, mask, channels), axisOf(tile, mask, channels))
			off := j * 8
			for ch := 0; ch < channels; ch++ {
				ep[off+ch] = quantDequant(e0[ch], bits, 0, 255)
				ep[off+4+ch] = quantDequant(e1[ch], bits, 0, 255)
			}
		}

		var qblock [tileTexels]uint8
		errv := blockQuant(qblock[:], tile, info.indexBits, ep[:], pattern, channels)
		for it := 0; it < iters; it++ {
			for j := 0; j < info.subsets; j++ {
				mask := uint32(maskFor(partID, j))
				off := j * 8
				optEndpoints(tile, mask, channels, info.indexBits, func(k int) int { return int(qblock[k]) }, ep[off:off+8])
				for ch := 0; ch < channels; ch++ {
					ep[off+ch] = clampF32(ep[off+ch], 0, 255)
					ep[off+4+ch] = clampF32(ep[off+4+ch], 0, 255)
				}
			}
			errv = blockQuant(qblock[:], tile, info.indexBits, ep[:], pattern, channels)
		}

		if !info.hasAlpha {
			errv += opaqueErr
		}
		if errv >= best.err {
			continue
		}
		applySubsetAnchorSwap(qblock[:], ep[:], pattern, channels, info.indexBits, info.subsets)
		best.err = errv
		best.valid = true
		best.block = bc7PackMode01237(mode, info, bits, partID, ep, qblock, channels)
	}
}

func dcOf(tile *Tile, mask uint32, channels int) [4]float32 {
	stats := computeStatsMasked(tile, mask, channels)
	var dc [4]float32
	n := stats[14]
	if n > 0 {
		for ch := 0; ch < channels; ch++ {
			dc[ch] = stats[10+ch] / n
		}
	}
	return dc
}

func axisOf(tile *Tile, mask uint32, channels int) [4]float32 {
	stats := computeStatsMasked(tile, mask, channels)
	covar := covarFromStats(stats, channels)
	return computeAxis(covar, 4, channels)
}

// colorQuantBits returns the per-channel endpoint quantization width,
// folding in the implicit extra bit a P-bit contributes.
func colorQuantBits(info bc7ModeInfo, mode int) int {
	bits := info.colorBits
	if info.pBitsShared || info.pBitsPerEP {
		bits++
	}
	return bits
}

func bc7PackMode01237(mode int, info bc7ModeInfo, bits, partID int, ep [24]float32, qblock [tileTexels]uint8, channels int) [BlockBytesWide]byte {
	var data blockBuf
	pos := 0
	pos = putBits(&data, pos, mode+1, 1<<uint(mode)) // unary mode prefix
	pos = putBits(&data, pos, info.partitionBit, uint32(partID-bc7PartitionBase(mode)))

	// Endpoint channel data (colorBits, excluding the P-bit), per subset,
	// color channels then alpha.
	codes := make([][2][4]int, info.subsets)
	baseBits := info.colorBits
	for j := 0; j < info.subsets; j++ {
		off := j * 8
		for ch := 0; ch < channels; ch++ {
			codes[j][0][ch] = quantizeCode(ep[off+ch], bits, 0, 255) >> boolToInt(info.pBitsShared || info.pBitsPerEP)
			codes[j][1][ch] = quantizeCode(ep[off+4+ch], bits, 0, 255) >> boolToInt(info.pBitsShared || info.pBitsPerEP)
		}
	}
	for ch := 0; ch < 3; ch++ {
		for j := 0; j < info.subsets; j++ {
			pos = putBits(&data, pos, baseBits, uint32(codes[j][0][ch]))
			pos = putBits(&data, pos, baseBits, uint32(codes[j][1][ch]))
		}
	}
	if channels == 4 {
		for j := 0; j < info.subsets; j++ {
			pos = putBits(&data, pos, baseBits, uint32(codes[j][0][3]))
			pos = putBits(&data, pos, baseBits, uint32(codes[j][1][3]))
		}
	}

	if info.pBitsShared {
		for j := 0; j < info.subsets; j++ {
			off := j * 8
			p := quantizeCode(ep[off], bits, 0, 255) & 1
			pos = putBits(&data, pos, 1, uint32(p))
		}
	} else if info.pBitsPerEP {
		for j := 0; j < info.subsets; j++ {
			off := j * 8
			p0 := quantizeCode(ep[off], bits, 0, 255) & 1
			p1 := quantizeCode(ep[off+4], bits, 0, 255) & 1
			pos = putBits(&data, pos, 1, uint32(p0))
			pos = putBits(&data, pos, 1, uint32(p1))
		}
	}

	anchors := make([]int, info.subsets)
	for j := 0; j < info.subsets; j++ {
		anchors[j] = int(getSkips(partID, j))
	}
	packIndicesWithAnchorSkip(&data, pos, qblock[:], info.indexBits, anchors)
	return blockBufToBytes(data)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// bc7EncMode45 encodes the channel-rotation modes: a color plane over 3
// channels and a scalar plane over the 4th, with the scalar channel
// selectable per settings.Mode45Channel0 (spec.md §4.6).
func bc7EncMode45(tile *Tile, mode int, settings BC7Settings, best *bc7Candidate) {
	info := bc7Modes[mode]
	scalarCh := clampInt(settings.Mode45Channel0, 0, 3)

	idxModes := []int{0}
	if mode == 4 {
		idxModes = []int{0, 1}
	}

	for _, idxMode := range idxModes {
		colorBits, scalarBits := info.indexBits, info.indexBits
		if mode == 4 {
			if idxMode == 0 {
				colorBits, scalarBits = 2, 3
			} else {
				colorBits, scalarBits = 3, 2
			}
		} else {
			colorBits, scalarBits = 2, 2
		}

		colorCh := [3]int{}
		n := 0
		for ch := 0; ch < 4; ch++ {
			if ch == scalarCh {
				continue
			}
			colorCh[n] = ch
			n++
		}

		shadow := buildShadow3(tile, colorCh)
		dc := dcOf(&shadow, allTexelsMask, 3)
		axis := axisOf(&shadow, allTexelsMask, 3)
		e0, e1 := blockSegment(&shadow, allTexelsMask, 3, dc, axis)
		var ep [8]float32
		for i := 0; i < 3; i++ {
			ep[i] = quantDequant(e0[i], info.colorBits, 0, 255)
			ep[4+i] = quantDequant(e1[i], info.colorBits, 0, 255)
		}
		var scalarEp [2]float32
		smin, smax := float32(math.MaxFloat32), float32(-math.MaxFloat32)
		for k := 0; k < tileTexels; k++ {
			v := tile.at(scalarCh, k)
			if v < smin {
				smin = v
			}
			if v > smax {
				smax = v
			}
		}
		scalarEp[0] = quantDequant(smin, info.colorBits+1, 0, 255)
		scalarEp[1] = quantDequant(smax, info.colorBits+1, 0, 255)

		var qcolor, qscalar [tileTexels]uint8
		errv := blockQuant(qcolor[:], &shadow, colorBits, ep[:], 0, 3)
		errv += quantPlaneScalar(tile, scalarCh, scalarEp, scalarBits, qscalar[:])

		if errv >= best.err {
			continue
		}
		best.err = errv
		best.valid = true
		best.block = bc7PackMode45(mode, idxMode, scalarCh, ep, scalarEp, colorBits, scalarBits, qcolor, qscalar)
	}
}

// buildShadow3 copies 3 of the tile's 4 channels (by index, in order) into
// a fresh Tile's channels 0-2, so the generic 3-channel numeric kernel can
// operate on an arbitrary channel subset (used by mode4/5's channel
// rotation, which moves an arbitrary channel into the scalar plane).
func buildShadow3(tile *Tile, chans [3]int) Tile {
	var shadow Tile
	for i, ch := range chans {
		for k := 0; k < tileTexels; k++ {
			shadow.set(i, k, tile.at(ch, k))
		}
	}
	return shadow
}

func quantPlaneScalar(tile *Tile, ch int, ep [2]float32, bits int, qblock []uint8) float64 {
	levels := 1 << uint(bits)
	var total float64
	for k := 0; k < tileTexels; k++ {
		v := tile.at(ch, k)
		var t float32
		if ep[1] > ep[0] {
			t = clampF32((v-ep[0])/(ep[1]-ep[0]), 0, 1)
		}
		idx := clampInt(int(t*float32(levels-1)+0.5), 0, levels-1)
		qblock[k] = uint8(idx)
		w := float32(getUnquantValue(bits, idx))
		rc := float32(math.Round(float64((float32(64)-w)*ep[0]+w*ep[1]))) / 64
		d := float64(v - rc)
		total += d * d
	}
	return total
}

func bc7PackMode45(mode, idxMode, scalarCh int, ep [8]float32, scalarEp [2]float32, colorBits, scalarBits int, qcolor, qscalar [tileTexels]uint8) [BlockBytesWide]byte {
	var data blockBuf
	pos := 0
	pos = putBits(&data, pos, mode+1, 1<<uint(mode))
	pos = putBits(&data, pos, 2, uint32(scalarCh))
	if mode == 4 {
		pos = putBits(&data, pos, 1, uint32(idxMode))
	}
	cBits := colorQuantBitsRaw(mode)
	sBits := cBits + 1

	// Anchor invariance (spec.md §8 testable property 6) must be applied to
	// the endpoints before they are packed, not after: swapping qcolor alone
	// without swapping ep first would pack indices that no longer match the
	// written endpoint pair.
	if int(qcolor[0]) >= (1<<uint(colorBits))/2 {
		for k := 0; k < tileTexels; k++ {
			qcolor[k] = uint8((1<<uint(colorBits) - 1) - int(qcolor[k]))
		}
		ep[0], ep[4] = ep[4], ep[0]
		ep[1], ep[5] = ep[5], ep[1]
		ep[2], ep[6] = ep[6], ep[2]
	}

	for ch := 0; ch < 3; ch++ {
		code0 := quantizeCode(ep[ch], cBits, 0, 255)
		code1 := quantizeCode(ep[4+ch], cBits, 0, 255)
		pos = putBits(&data, pos, cBits, uint32(code0))
		pos = putBits(&data, pos, cBits, uint32(code1))
	}
	// The scalar plane's texel 0 is an anchor too: its top index bit is
	// elided below, so swap the scalar endpoints when that bit would be set.
	if int(qscalar[0]) >= (1<<uint(scalarBits))/2 {
		for k := 0; k < tileTexels; k++ {
			qscalar[k] = uint8((1<<uint(scalarBits) - 1) - int(qscalar[k]))
		}
		scalarEp[0], scalarEp[1] = scalarEp[1], scalarEp[0]
	}
	code0 := quantizeCode(scalarEp[0], sBits, 0, 255)
	code1 := quantizeCode(scalarEp[1], sBits, 0, 255)
	pos = putBits(&data, pos, sBits, uint32(code0))
	pos = putBits(&data, pos, sBits, uint32(code1))

	pos = packIndicesWithAnchorSkip(&data, pos, qcolor[:], colorBits, []int{0})
	packIndicesWithAnchorSkip(&data, pos, qscalar[:], scalarBits, []int{0})
	return blockBufToBytes(data)
}

func colorQuantBitsRaw(mode int) int {
	if mode == 4 {
		return 5
	}
	return 7
}

// bc7EncMode6 handles the single-subset, per-endpoint-P-bit mode (spec.md
// §4.6): identical inner loop to mode01237 but with no partition search.
func bc7EncMode6(tile *Tile, iters int, best *bc7Candidate) {
	channels := 4
	bits := 7 + 1 // 7 color bits + 1 P-bit
	mask := allTexelsMask

	dc := dcOf(tile, mask, channels)
	axis := axisOf(tile, mask, channels)
	e0, e1 := blockSegment(tile, mask, channels, dc, axis)

	var ep [8]float32
	for ch := 0; ch < channels; ch++ {
		ep[ch] = quantDequant(e0[ch], bits, 0, 255)
		ep[4+ch] = quantDequant(e1[ch], bits, 0, 255)
	}

	var qblock [tileTexels]uint8
	errv := blockQuant(qblock[:], tile, 4, ep[:], 0, channels)
	for it := 0; it < iters; it++ {
		optEndpoints(tile, mask, channels, 4, func(k int) int { return int(qblock[k]) }, ep[:])
		for ch := 0; ch < channels; ch++ {
			ep[ch] = clampF32(ep[ch], 0, 255)
			ep[4+ch] = clampF32(ep[4+ch], 0, 255)
		}
		errv = blockQuant(qblock[:], tile, 4, ep[:], 0, channels)
	}

	if errv >= best.err {
		return
	}

	levels := 16
	if int(qblock[0]) >= levels/2 {
		for ch := 0; ch < channels; ch++ {
			ep[ch], ep[4+ch] = ep[4+ch], ep[ch]
		}
		for k := 0; k < tileTexels; k++ {
			qblock[k] = uint8(levels - 1 - int(qblock[k]))
		}
	}

	best.err = errv
	best.valid = true
	best.block = bc7PackMode6(ep, qblock)
}

func bc7PackMode6(ep [8]float32, qblock [tileTexels]uint8) [BlockBytesWide]byte {
	var data blockBuf
	pos := 0
	pos = putBits(&data, pos, 7, 1<<6)

	for ch := 0; ch < 4; ch++ {
		c0 := quantizeCode(ep[ch], 8, 0, 255) >> 1
		c1 := quantizeCode(ep[4+ch], 8, 0, 255) >> 1
		pos = putBits(&data, pos, 7, uint32(c0))
		pos = putBits(&data, pos, 7, uint32(c1))
	}
	p0 := quantizeCode(ep[0], 8, 0, 255) & 1
	p1 := quantizeCode(ep[4], 8, 0, 255) & 1
	pos = putBits(&data, pos, 1, uint32(p0))
	pos = putBits(&data, pos, 1, uint32(p1))

	packIndicesWithAnchorSkip(&data, pos, qblock[:], 4, []int{0})
	return blockBufToBytes(data)
}
