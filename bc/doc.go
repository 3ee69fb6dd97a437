// Package bc implements the per-block encoder core for the fixed-rate
// block-compressed texture formats BC1, BC2, BC3, BC4, BC5, BC6H (unsigned
// half-float) and BC7.
//
// Each call encodes a single 4x4 tile of source pixels into one compressed
// block. The package holds no state between calls: every encode is a pure
// function of its tile and settings, matching the GPU compute-kernel shape
// these formats are designed around (one work item per block). Iterating
// tiles, dispatching work, and writing the output buffer at the right
// offset are a host's job, not this package's; see Encode and the Format
// constants for the contract a host needs.
package bc
