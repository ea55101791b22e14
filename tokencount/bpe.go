package tokencount

import "sync"

// rank is the BPE merge priority of a token; lower merges first.
type rank = uint32

const noRank = ^uint32(0)

// coreBPE is a counting-only BPE engine: given the [bytes, rank] table
// a vocab file decodes to, it counts how many merged tokens a run of
// text (after segmentation) collapses to, without ever materializing
// the tokens themselves as bytes — tokencount only ever needs the
// count (spec §4.2).
type coreBPE struct {
	enc        map[string]rank // key: raw token bytes as string
	seg        segmenter
	boundaries boundaryPool
}

func newCoreBPE(pairs [][2]any, seg segmenter) *coreBPE {
	enc := make(map[string]rank, len(pairs))
	for _, p := range pairs {
		b, _ := p[0].([]byte)
		r, _ := p[1].(rank)
		enc[string(b)] = r
	}
	return &coreBPE{enc: enc, seg: seg}
}

// Count returns the number of BPE tokens text encodes to.
func (b *coreBPE) Count(text string) int {
	n := 0
	for i := 0; i < len(text); {
		end := b.seg.Next(text, i)
		if end <= i {
			end = i + 1
		}
		n += b.countPiece(text[i:end])
		i = end
	}
	return n
}

func (b *coreBPE) countPiece(piece string) int {
	if _, ok := b.enc[piece]; ok {
		return 1
	}
	if len(piece) == 1 {
		return 1
	}
	bounds := b.mergeBoundaries(piece)
	n := len(bounds) - 1
	b.boundaries.put(bounds)
	return n
}

// boundary tracks one offset into a piece along with the rank of the
// byte pair straddling it and its next surviving neighbor, so a merge
// only needs to recompute the two boundaries adjacent to the pair that
// merged.
type boundary struct {
	at   int
	rank uint32
}

// mergeBoundaries runs the standard BPE merge: start from every
// adjacent byte pair ranked by the vocab table, repeatedly collapse the
// lowest-ranked pair, and re-rank its two new neighbors, until no
// pair left has a rank. The surviving boundary offsets are what's
// returned; the token count is one less than their count.
func (b *coreBPE) mergeBoundaries(piece string) []boundary {
	bounds := b.boundaries.get(len(piece) + 2)
	for i := 0; i < len(piece)-1; i++ {
		bounds = append(bounds, boundary{at: i, rank: b.pairRank(piece, i, i+1)})
	}
	bounds = append(bounds, boundary{at: len(piece) - 1, rank: noRank})
	bounds = append(bounds, boundary{at: len(piece), rank: noRank})

	for {
		i, best := bestBoundary(bounds)
		if best == noRank {
			return bounds
		}
		if i > 0 {
			bounds[i-1].rank = b.spanRank(piece, bounds, i-1)
		}
		bounds[i].rank = b.spanRank(piece, bounds, i)
		bounds = append(bounds[:i+1], bounds[i+2:]...)
	}
}

func bestBoundary(bounds []boundary) (idx int, best uint32) {
	best = noRank
	idx = -1
	for j := 0; j < len(bounds)-1; j++ {
		if bounds[j].rank < best {
			best, idx = bounds[j].rank, j
		}
	}
	return idx, best
}

func (b *coreBPE) pairRank(piece string, from, to int) uint32 {
	if r, ok := b.enc[piece[from:to+1]]; ok {
		return r
	}
	return noRank
}

// spanRank looks up the rank of the token spanning three boundaries
// starting at i, i.e. the pair that would result from merging bounds[i]
// and bounds[i+1] together.
func (b *coreBPE) spanRank(piece string, bounds []boundary, i int) uint32 {
	if i+3 >= len(bounds) {
		return noRank
	}
	if r, ok := b.enc[piece[bounds[i].at:bounds[i+3].at]]; ok {
		return r
	}
	return noRank
}

// boundaryPool recycles the []boundary scratch slices mergeBoundaries
// needs per call, so counting a large document doesn't allocate once
// per segment.
type boundaryPool struct {
	pool sync.Pool
}

const maxPooledBoundaryCap = 1 << 12

func (p *boundaryPool) get(capHint int) []boundary {
	if v := p.pool.Get(); v != nil {
		ptr := v.(*[]boundary)
		if cap(*ptr) >= capHint {
			return (*ptr)[:0]
		}
	}
	return make([]boundary, 0, capHint)
}

func (p *boundaryPool) put(buf []boundary) {
	if cap(buf) > maxPooledBoundaryCap {
		return
	}
	buf = buf[:0]
	p.pool.Put(&buf)
}
