package nn

import "fmt"

// DecodeYOLOv8 converts the raw output of a YOLOv8 detection head into candidates.
//
// The output tensor has shape [1, 4+nc, N]. The first four rows are the box center x,
// center y, width and height (in model input pixels), and the remaining nc rows are
// the per-class scores. Each of the N columns is one anchor.
//
// A candidate is emitted for an anchor when its best class score is strictly greater
// than params.ConfidenceThreshold, and the class passes params.Classes.
func DecodeYOLOv8(output *Tensor, params *DetectionParams) ([]Candidate, error) {
	if len(output.Shape) != 3 || output.Shape[0] != 1 {
		return nil, fmt.Errorf("Expected YOLOv8 output of shape [1, 4+nc, N], but got %v", output.Shape)
	}
	rows := int(output.Shape[1])
	n := int(output.Shape[2])
	nc := rows - 4
	if nc < 1 {
		return nil, fmt.Errorf("YOLOv8 output has %v rows, which is too few for any classes", rows)
	}
	if len(output.Data) != rows*n {
		return nil, fmt.Errorf("YOLOv8 output has %v elements, expected %v", len(output.Data), rows*n)
	}

	data := output.Data
	candidates := []Candidate{}
	for i := 0; i < n; i++ {
		bestClass := 0
		bestScore := data[4*n+i]
		for c := 1; c < nc; c++ {
			if s := data[(4+c)*n+i]; s > bestScore {
				bestScore = s
				bestClass = c
			}
		}
		if bestScore <= params.ConfidenceThreshold || !params.AllowClass(bestClass) {
			continue
		}
		candidates = append(candidates, Candidate{
			Box:        BoxFromCenter(data[i], data[n+i], data[2*n+i], data[3*n+i]),
			Class:      bestClass,
			Confidence: bestScore,
		})
	}
	return candidates, nil
}
