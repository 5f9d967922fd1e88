// Package render draws palm detection results onto a copy of the source
// frame and optionally emits a plain-text report of the detections.
package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"

	"gocv.io/x/gocv"

	"github.com/qy-liuhuo/opencv-zoo/detect"
)

// ErrEmptyFrame is returned when the source frame has zero area.
var ErrEmptyFrame = errors.New("source frame is empty")

// Fixed annotation colors.
var (
	fpsColor      = color.RGBA{B: 255} // blue accent for the FPS label
	detColor      = color.RGBA{G: 255} // green accent for score text and box
	landmarkColor = color.RGBA{R: 255} // red accent for landmark points
)

// Options controls the optional parts of a render call.
type Options struct {
	// FPS, when non-nil, draws a "FPS: x.xx" label in the top-left corner.
	// A zero value still draws "FPS: 0.00"; only nil omits the label.
	FPS *float64

	// Report, when non-nil, receives one text block per detection.
	Report io.Writer
}

// Render returns an annotated copy of frame with every detection drawn on
// it: the confidence score, the bounding box outline, and the 7 landmark
// points. The input frame is never mutated. Detections are validated before
// any drawing happens, so a malformed detection yields an error and no
// partially annotated output.
//
// The operation is stateless and deterministic: identical inputs produce
// pixel-identical output and identical report text.
func Render(frame gocv.Mat, palms []detect.Detection, opts Options) (gocv.Mat, error) {
	if frame.Empty() || frame.Cols() == 0 || frame.Rows() == 0 {
		return gocv.Mat{}, ErrEmptyFrame
	}
	for _, palm := range palms {
		if err := palm.Validate(); err != nil {
			return gocv.Mat{}, err
		}
	}

	out := frame.Clone()

	if opts.FPS != nil {
		label := fmt.Sprintf("FPS: %.2f", *opts.FPS)
		gocv.PutText(&out, label, image.Pt(0, 15), gocv.FontHersheySimplex, 0.5, fpsColor, 1)
	}

	for idx, palm := range palms {
		// Coordinates are truncated, not rounded, when converted to pixels.
		x1, y1 := int(palm.Box[0]), int(palm.Box[1])
		x2, y2 := int(palm.Box[2]), int(palm.Box[3])

		score := fmt.Sprintf("%.4f", palm.Score)
		gocv.PutText(&out, score, image.Pt(x1, y1+12), gocv.FontHersheyDuplex, 0.5, detColor, 1)

		gocv.Rectangle(&out, image.Rect(x1, y1, x2, y2), detColor, 2)

		for _, lm := range palm.Landmarks {
			gocv.Circle(&out, image.Pt(int(lm.X), int(lm.Y)), 2, landmarkColor, -1)
		}

		if opts.Report != nil {
			writeReport(opts.Report, idx+1, palm)
		}
	}

	return out, nil
}

// writeReport appends one detection block to the report sink. Landmark and
// box values are formatted as the integers they are drawn at. The report
// score is deliberately coarser (2 decimals) than the on-image label.
func writeReport(w io.Writer, index int, palm detect.Detection) {
	fmt.Fprintf(w, "-----------palm %d-----------\n", index)
	fmt.Fprintf(w, "score: %.2f\n", palm.Score)
	fmt.Fprintf(w, "palm box: [%d %d %d %d]\n",
		int(palm.Box[0]), int(palm.Box[1]), int(palm.Box[2]), int(palm.Box[3]))
	fmt.Fprintf(w, "palm landmarks: \n")
	for _, lm := range palm.Landmarks {
		fmt.Fprintf(w, "\t[%d %d]\n", int(lm.X), int(lm.Y))
	}
}
