package reconcile

import (
	"fmt"
	"time"

	"marker-migrate/internal/marker"
)

// Stats summarizes one merge classification.
type Stats struct {
	NewMarkers       int `json:"new_markers"`
	DuplicateMarkers int `json:"duplicate_markers"`
	NewPhotos        int `json:"new_photos"`
}

// Result is the output of a merge: the combined record set and its
// statistics.
type Result struct {
	Set   marker.RecordSet `json:"set"`
	Stats Stats            `json:"stats"`
}

// Merge folds the transformed source record set into the target record set.
//
// Every target marker appears in the result exactly once, with its id
// preserved. Every source marker appears exactly once: folded into its
// matched target marker (photo references unioned) or appended as a new
// marker under a freshly minted id. Matching is one-to-one in source order;
// a target marker consumed by one source marker leaves the candidate pool.
// Inputs are never mutated.
//
// Merge is total for well-formed inputs: ties resolve deterministically
// (first target in set order) and there is no ambiguous-duplicate error
// state. Only invalid options or an invalid record set fail.
func Merge(target, source marker.RecordSet, opts Options) (Result, error) {
	if err := opts.Validate(); err != nil {
		return Result{}, err
	}
	opts = opts.withDefaults()

	if err := target.Validate(); err != nil {
		return Result{}, fmt.Errorf("target set: %w", err)
	}
	if err := source.Validate(); err != nil {
		return Result{}, fmt.Errorf("source set: %w", err)
	}

	out := target.Clone()
	idx := buildTargetIndex(&target, opts.CoordinateTolerance)
	sourceNames := photoFilenames(&source)
	sourcePhotos := photosByMarker(&source)
	mergedAt := opts.Now()

	var stats Stats
	for _, src := range source.Markers {
		view := sourceView{marker: src, filenames: sourceNames[src.ID]}

		if ti, ok := findDuplicate(idx, view, opts); ok {
			idx.consumed[ti] = true
			stats.DuplicateMarkers++
			stats.NewPhotos += foldPhotos(&out, ti, sourcePhotos[src.ID], idx.filenames[ti], opts, mergedAt)
			continue
		}

		stats.NewMarkers++
		stats.NewPhotos += appendNew(&out, src, sourcePhotos[src.ID], opts, mergedAt)
	}

	return Result{Set: out, Stats: stats}, nil
}

// photosByMarker groups a set's photos by owning marker id, preserving
// record-set order.
func photosByMarker(rs *marker.RecordSet) map[string][]marker.Photo {
	out := make(map[string][]marker.Photo, len(rs.Markers))
	for _, p := range rs.Photos {
		out[p.MarkerID] = append(out[p.MarkerID], p)
	}
	return out
}

// Statistics is the dry-run variant: identical classification, counts only.
// It shares the Merge code path, so the same inputs always produce the same
// counts a real merge would.
func Statistics(target, source marker.RecordSet, opts Options) (Stats, error) {
	opts = opts.withDefaults()
	// Id minting is irrelevant to counts; use a cheap deterministic
	// generator so previews don't burn UUIDs.
	seq := 0
	opts.NewID = func() string {
		seq++
		return fmt.Sprintf("preview-%d", seq)
	}

	res, err := Merge(target, source, opts)
	if err != nil {
		return Stats{}, err
	}
	return res.Stats, nil
}

// foldPhotos merges a duplicate source marker's photos into out.Markers[ti]:
// they are attached under fresh ids, skipping filename collisions with the
// target marker's own photos (the precomputed existing set) unless the
// keep-both policy is active. Each target marker is consumed by at most one
// source marker, so the set never needs refreshing. Returns the number of
// photos added.
func foldPhotos(out *marker.RecordSet, ti int, photos []marker.Photo, existing map[string]struct{}, opts Options, mergedAt time.Time) int {
	tgt := &out.Markers[ti]

	added := 0
	for _, p := range photos {
		if _, collides := existing[p.Filename]; collides && opts.PhotoConflicts == PhotoConflictSkip {
			continue
		}
		np := p
		np.ID = opts.NewID()
		np.MarkerID = tgt.ID
		out.Photos = append(out.Photos, np)
		tgt.PhotoRefs = append(tgt.PhotoRefs, np.ID)
		added++
	}

	if !opts.PreserveTimestamps {
		tgt.UpdatedAt = mergedAt
	}
	return added
}

// appendNew adds an unmatched source marker to out under a fresh id, its
// photos re-minted and re-pointed. Returns the number of photos added.
func appendNew(out *marker.RecordSet, src marker.Marker, photos []marker.Photo, opts Options, mergedAt time.Time) int {
	nm := src
	nm.ID = opts.NewID()
	nm.PhotoRefs = nil
	if !opts.PreserveTimestamps {
		nm.UpdatedAt = mergedAt
	}

	added := 0
	for _, p := range photos {
		np := p
		np.ID = opts.NewID()
		np.MarkerID = nm.ID
		out.Photos = append(out.Photos, np)
		nm.PhotoRefs = append(nm.PhotoRefs, np.ID)
		added++
	}

	out.Markers = append(out.Markers, nm)
	return added
}
