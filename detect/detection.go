// Package detect defines the detection records exchanged between the palm
// detector and its consumers.
package detect

import (
	"fmt"

	"gocv.io/x/gocv"
)

const (
	// BoxLen is the number of bounding box coordinates (x1, y1, x2, y2).
	BoxLen = 4
	// NumLandmarks is the number of palm keypoints the model predicts.
	NumLandmarks = 7
	// RowLen is the flat per-palm row width: box + 7 (x, y) pairs + score.
	RowLen = BoxLen + NumLandmarks*2 + 1
)

// Point is a single landmark coordinate in source-image pixels.
type Point struct {
	X float64
	Y float64
}

// Detection represents one detected palm in a frame. Coordinates are
// floating-point pixels as produced by the detector; they are truncated to
// integers only when drawn.
type Detection struct {
	// Box holds the axis-aligned corners x1, y1, x2, y2.
	Box []float64
	// Landmarks holds the 7 palm keypoints in model order.
	Landmarks []Point
	// Score is the detection confidence in [0, 1].
	Score float64
}

// ShapeError reports a Detection whose box or landmark sequence does not
// have the fixed arity the model contract guarantees.
type ShapeError struct {
	Field string
	Want  int
	Got   int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("detection %s has %d values, want %d", e.Field, e.Got, e.Want)
}

// Validate checks the fixed-arity invariant. Consumers must treat any
// deviation as malformed input rather than truncating or padding.
func (d Detection) Validate() error {
	if len(d.Box) != BoxLen {
		return &ShapeError{Field: "box", Want: BoxLen, Got: len(d.Box)}
	}
	if len(d.Landmarks) != NumLandmarks {
		return &ShapeError{Field: "landmarks", Want: NumLandmarks, Got: len(d.Landmarks)}
	}
	return nil
}

// FromRow converts one flat detector output row into a Detection. The row
// layout follows the model head: 4 box coordinates, 14 landmark coordinates,
// then the score. This is the only place positional slicing happens.
func FromRow(row []float64) (Detection, error) {
	if len(row) != RowLen {
		return Detection{}, &ShapeError{Field: "row", Want: RowLen, Got: len(row)}
	}

	d := Detection{
		Box:       make([]float64, BoxLen),
		Landmarks: make([]Point, NumLandmarks),
		Score:     row[RowLen-1],
	}
	copy(d.Box, row[:BoxLen])
	for i := 0; i < NumLandmarks; i++ {
		d.Landmarks[i] = Point{
			X: row[BoxLen+2*i],
			Y: row[BoxLen+2*i+1],
		}
	}
	return d, nil
}

// Detector is the inference collaborator: it produces the detections for one
// frame. An empty slice means nothing was detected, not an error.
type Detector interface {
	// Infer runs the model on a single frame and returns the detected palms.
	Infer(frame *gocv.Mat) ([]Detection, error)

	// Close releases any resources held by the detector.
	Close() error
}
