package reconcile

import (
	"math"
	"sort"
	"strings"

	"marker-migrate/internal/marker"
)

// targetIndex holds per-merge lookup structures over the target markers.
// It is local to one merge call; consumed markers leave the candidate pool
// so matching stays one-to-one.
type targetIndex struct {
	markers  []marker.Marker
	consumed []bool

	// filenames[i] is the deduplicated photo filename set of marker i.
	filenames []map[string]struct{}

	byFilename map[string][]int
	byLabel    map[string][]int

	// grid buckets marker indices into tolerance-sized cells so the
	// coordinates rule only inspects a 3x3 neighborhood.
	grid     map[[2]int][]int
	cellSize float64
}

func buildTargetIndex(target *marker.RecordSet, tolerance float64) *targetIndex {
	idx := &targetIndex{
		markers:    target.Markers,
		consumed:   make([]bool, len(target.Markers)),
		filenames:  make([]map[string]struct{}, len(target.Markers)),
		byFilename: make(map[string][]int),
		byLabel:    make(map[string][]int),
		grid:       make(map[[2]int][]int),
		cellSize:   math.Max(tolerance, 1),
	}

	photosByMarker := photoFilenames(target)
	for i, m := range target.Markers {
		names := photosByMarker[m.ID]
		idx.filenames[i] = names
		for name := range names {
			idx.byFilename[name] = append(idx.byFilename[name], i)
		}
		if m.Label != "" {
			key := strings.ToLower(m.Label)
			idx.byLabel[key] = append(idx.byLabel[key], i)
		}
		cell := idx.cell(m.X, m.Y)
		idx.grid[cell] = append(idx.grid[cell], i)
	}

	return idx
}

func (idx *targetIndex) cell(x, y float64) [2]int {
	return [2]int{int(math.Floor(x / idx.cellSize)), int(math.Floor(y / idx.cellSize))}
}

// photoFilenames maps each marker id to the deduplicated set of filenames of
// its attached photos.
func photoFilenames(rs *marker.RecordSet) map[string]map[string]struct{} {
	out := make(map[string]map[string]struct{}, len(rs.Markers))
	for _, p := range rs.Photos {
		if p.Filename == "" {
			continue
		}
		set := out[p.MarkerID]
		if set == nil {
			set = make(map[string]struct{})
			out[p.MarkerID] = set
		}
		set[p.Filename] = struct{}{}
	}
	return out
}

// matcher is one duplicate-detection rule: given a source marker view it
// returns the best available target index, or ok=false when no candidate
// satisfies the rule.
type matcher func(idx *targetIndex, src sourceView, opts Options) (int, bool)

// sourceView carries the precomputed per-source-marker data the matchers
// need.
type sourceView struct {
	marker    marker.Marker
	filenames map[string]struct{}
}

// cascade returns the ordered rule table for a strategy. Smart evaluates
// photos, then label, then coordinates, short-circuiting on the first rule
// that yields a candidate.
func cascade(strategy Strategy) []matcher {
	switch strategy {
	case StrategyLabel:
		return []matcher{matchByLabel}
	case StrategyPhotos:
		return []matcher{matchByPhotos}
	case StrategyCoordinates:
		return []matcher{matchByCoordinates}
	case StrategySmart:
		return []matcher{matchByPhotos, matchByLabel, matchByCoordinates}
	default: // StrategyNone
		return nil
	}
}

// findDuplicate runs the strategy cascade for one source marker.
func findDuplicate(idx *targetIndex, src sourceView, opts Options) (int, bool) {
	for _, match := range cascade(opts.Strategy) {
		if i, ok := match(idx, src, opts); ok {
			return i, true
		}
	}
	return 0, false
}

// matchByPhotos scores candidates by shared-filename overlap:
// |src ∩ tgt| / min(|src|, |tgt|), requiring both sets non-empty and the
// fraction to reach the threshold. Ties go to the earliest target marker.
func matchByPhotos(idx *targetIndex, src sourceView, opts Options) (int, bool) {
	if len(src.filenames) == 0 {
		return 0, false
	}

	candidates := make(map[int]struct{})
	for name := range src.filenames {
		for _, i := range idx.byFilename[name] {
			if !idx.consumed[i] {
				candidates[i] = struct{}{}
			}
		}
	}
	if len(candidates) == 0 {
		return 0, false
	}

	ordered := make([]int, 0, len(candidates))
	for i := range candidates {
		ordered = append(ordered, i)
	}
	sort.Ints(ordered)

	best, bestScore := -1, 0.0
	for _, i := range ordered {
		tgtNames := idx.filenames[i]
		if len(tgtNames) == 0 {
			continue
		}
		shared := 0
		for name := range src.filenames {
			if _, ok := tgtNames[name]; ok {
				shared++
			}
		}
		score := float64(shared) / float64(min(len(src.filenames), len(tgtNames)))
		if score >= opts.PhotoMatchThreshold && score > bestScore {
			best, bestScore = i, score
		}
	}

	return best, best >= 0
}

// matchByLabel requires case-insensitive exact label equality, both labels
// non-empty. Exact-string ties are indistinguishable, so the first target in
// set order wins.
func matchByLabel(idx *targetIndex, src sourceView, _ Options) (int, bool) {
	if src.marker.Label == "" {
		return 0, false
	}
	for _, i := range idx.byLabel[strings.ToLower(src.marker.Label)] {
		if !idx.consumed[i] {
			return i, true
		}
	}
	return 0, false
}

// matchByCoordinates selects the closest available target within the
// tolerance radius. Equal distances tie-break to the earliest target marker.
func matchByCoordinates(idx *targetIndex, src sourceView, opts Options) (int, bool) {
	pos := src.marker.Position()
	center := idx.cell(pos.X, pos.Y)

	// The neighborhood must cover the full tolerance radius even when the
	// cell size is clamped above the tolerance.
	reach := int(math.Ceil(opts.CoordinateTolerance/idx.cellSize)) + 1

	var candidates []int
	for dx := -reach; dx <= reach; dx++ {
		for dy := -reach; dy <= reach; dy++ {
			cell := [2]int{center[0] + dx, center[1] + dy}
			for _, i := range idx.grid[cell] {
				if !idx.consumed[i] {
					candidates = append(candidates, i)
				}
			}
		}
	}
	sort.Ints(candidates)

	best, bestDist := -1, math.Inf(1)
	for _, i := range candidates {
		d := pos.Distance(idx.markers[i].Position())
		if d <= opts.CoordinateTolerance && d < bestDist {
			best, bestDist = i, d
		}
	}

	return best, best >= 0
}
