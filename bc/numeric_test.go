package bc

import (
	"sort"
	"testing"
)

// TestRefinementLoopNonIncreasingError exercises the monotonicity property
// the bc6h/bc7 refine loops rely on: alternating an exact least-squares
// endpoint re-fit (optEndpoints) with an optimal-or-better re-quantization
// (blockQuant) never increases total squared error, since each step solves
// exactly for the variable it holds fixed.
func TestRefinementLoopNonIncreasingError(t *testing.T) {
	var tile Tile
	for k := 0; k < tileTexels; k++ {
		for ch := 0; ch < 3; ch++ {
			tile.set(ch, k, float32((k*37+ch*53)%256))
		}
		tile.set(3, k, 255)
	}

	e0, e1 := pickEndpoints(&tile, allTexelsMask, 3, 4)
	var ep [8]float32
	copy(ep[0:3], e0[:3])
	copy(ep[4:7], e1[:3])

	var qblock [tileTexels]uint8
	prevErr := blockQuant(qblock[:], &tile, 2, ep[:], 0, 3)

	for it := 0; it < 5; it++ {
		optEndpoints(&tile, allTexelsMask, 3, 2, func(k int) int { return int(qblock[k]) }, ep[:])
		errv := blockQuant(qblock[:], &tile, 2, ep[:], 0, 3)
		if errv > prevErr+1e-3 {
			t.Fatalf("iteration %d: error increased from %v to %v", it, prevErr, errv)
		}
		prevErr = errv
	}
}

// TestPartialSelectionSortPrefixIsGloballySmallest mirrors the partial
// selection sort bc7EncMode01237 and encodeBC6H2p use to implement
// fast_skip_threshold: the first `limit` elements after the partial sort are
// exactly the `limit` globally smallest bound values, for any limit. This is
// what guarantees raising fast_skip_threshold only ever adds candidates
// (never drops one the smaller threshold would have tried), so BC7's search
// error can only stay the same or improve (spec.md §8 property 8).
func TestPartialSelectionSortPrefixIsGloballySmallest(t *testing.T) {
	bounds := []float32{9, 2, 7, 4, 11, 0, 6, 13, 5, 1, 8, 10, 3, 12}
	n := len(bounds)

	for _, limit := range []int{1, 3, 6, n} {
		got := append([]float32(nil), bounds...)
		for i := 0; i < limit; i++ {
			minIdx := i
			for j := i + 1; j < n; j++ {
				if got[j] < got[minIdx] {
					minIdx = j
				}
			}
			got[i], got[minIdx] = got[minIdx], got[i]
		}

		want := append([]float32(nil), bounds...)
		sort.Slice(want, func(i, j int) bool { return want[i] < want[j] })

		for i := 0; i < limit; i++ {
			if got[i] != want[i] {
				t.Fatalf("limit=%d: prefix[%d] = %v, want %v", limit, i, got[i], want[i])
			}
		}
	}
}
