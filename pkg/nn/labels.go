package nn

import "fmt"

// ObjectDetection is an object that a neural network has found in an image
type ObjectDetection struct {
	Class      int     `json:"class"`
	Confidence float32 `json:"confidence"`
	Box        Rect    `json:"box"`
	TrackID    *int64  `json:"trackID,omitempty"` // Only set when a tracker has assigned an identity
}

// DetectionSet is the output of NMS for one image.
// Order is descending confidence. Ties are broken by candidate order, so the
// same model output always produces the same set.
type DetectionSet []ObjectDetection

// Display name of the object, eg "dog" or "id:3 dog"
func (d ObjectDetection) Name(classes []string) string {
	label := ClassName(classes, d.Class)
	if d.TrackID != nil {
		return fmt.Sprintf("id:%v %v", *d.TrackID, label)
	}
	return label
}

// Count detections per class
func (s DetectionSet) ClassCounts() map[int]int {
	counts := map[int]int{}
	for _, d := range s {
		counts[d.Class]++
	}
	return counts
}
