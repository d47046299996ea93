package nn

import (
	"sort"

	flatbush "github.com/bmharper/flatbush-go"
)

// Candidate is a raw detection straight out of the model, before NMS.
// The box is in model input coordinates.
type Candidate struct {
	Box        Box
	Class      int
	Confidence float32
}

// NonMaxSuppression discards overlapping lower-confidence candidates.
// Unless params.Agnostic is set, only candidates of the same class suppress each other.
// The result is ordered by descending confidence, and never longer than params.MaxDetections.
// Boxes in the result are still in model input coordinates.
func NonMaxSuppression(candidates []Candidate, params *DetectionParams) []Candidate {
	if len(candidates) == 0 {
		return nil
	}

	// Stable sort, so that equal scores keep their original order, and the output is deterministic
	sorted := make([]Candidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Confidence > sorted[j].Confidence
	})
	if params.MaxNmsCandidates > 0 && len(sorted) > params.MaxNmsCandidates {
		sorted = sorted[:params.MaxNmsCandidates]
	}

	// Shift each class into its own region of space, so that boxes of different
	// classes never overlap.
	shifted := make([]Box, len(sorted))
	for i, c := range sorted {
		offset := float32(0)
		if !params.Agnostic {
			offset = float32(c.Class) * classOffset
		}
		shifted[i] = c.Box.Offset(offset, offset)
	}

	// Create spatial index to avoid O(N^2) comparisons
	fb := flatbush.NewFlatbush[float32]()
	fb.Reserve(len(shifted))
	for _, b := range shifted {
		fb.Add(b.X1, b.Y1, b.X2, b.Y2)
	}
	fb.Finish()

	maxDet := params.MaxDetections
	if maxDet <= 0 {
		maxDet = len(sorted)
	}

	suppressed := make([]bool, len(sorted))
	keep := make([]Candidate, 0, min(maxDet, len(sorted)))
	for i := range sorted {
		if suppressed[i] {
			continue
		}
		keep = append(keep, sorted[i])
		if len(keep) >= maxDet {
			break
		}
		b := shifted[i]
		for _, j := range fb.Search(b.X1, b.Y1, b.X2, b.Y2) {
			// Only lower ranked boxes can be suppressed by i
			if j <= i || suppressed[j] {
				continue
			}
			if b.IOU(shifted[j]) > params.NmsIouThreshold {
				suppressed[j] = true
			}
		}
	}
	return keep
}
