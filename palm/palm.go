// Package palm implements the MediaPipe palm detection model wrapper: it
// loads the ONNX model, runs it through the selected backend, and decodes
// the raw network output into detection records in source-image pixels.
package palm

import (
	"image"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/qy-liuhuo/opencv-zoo/config"
	"github.com/qy-liuhuo/opencv-zoo/detect"
)

const (
	// inputSize is the fixed network input resolution (192x192).
	inputSize = 192
	// regWidth is the per-anchor regressor width: 4 box values plus
	// 7 (x, y) keypoint offsets.
	regWidth = 18

	// Default detection thresholds.
	DefaultScoreThreshold = 0.99
	DefaultNMSThreshold   = 0.3
)

// Config holds the options for constructing an MPPalmDet.
type Config struct {
	// ModelPath is the path to the palm detection ONNX file.
	ModelPath string

	// ScoreThreshold filters detections below this confidence.
	// Zero means DefaultScoreThreshold.
	ScoreThreshold float32

	// NMSThreshold suppresses boxes whose IoU meets or exceeds it.
	// Zero means DefaultNMSThreshold.
	NMSThreshold float32

	// Backend and Target select the inference library and device.
	Backend config.Backend
	Target  config.Target
}

// engine runs the network on one frame and returns the raw output tensors:
// the flat regressors (numAnchors x regWidth) and the raw per-anchor scores.
type engine interface {
	forward(frame *gocv.Mat) (regressors []float32, scores []float32, err error)
	close() error
}

// MPPalmDet detects palms in frames. It is safe for use from a single
// goroutine; the engines guard their shared network state internally.
type MPPalmDet struct {
	engine         engine
	anchors        []anchorPoint
	scoreThreshold float32
	nmsThreshold   float32
}

// New constructs an MPPalmDet over the configured backend.
func New(cfg Config) (*MPPalmDet, error) {
	if cfg.ScoreThreshold == 0 {
		cfg.ScoreThreshold = DefaultScoreThreshold
	}
	if cfg.NMSThreshold == 0 {
		cfg.NMSThreshold = DefaultNMSThreshold
	}

	var (
		eng engine
		err error
	)
	switch cfg.Backend {
	case config.BackendORT:
		eng, err = newORTEngine(cfg)
	default:
		eng, err = newDNNEngine(cfg)
	}
	if err != nil {
		return nil, err
	}

	return &MPPalmDet{
		engine:         eng,
		anchors:        generateAnchors(),
		scoreThreshold: cfg.ScoreThreshold,
		nmsThreshold:   cfg.NMSThreshold,
	}, nil
}

// Infer runs palm detection on a single frame. Results are in frame pixel
// coordinates. An empty result means no palm cleared the score threshold.
func (d *MPPalmDet) Infer(frame *gocv.Mat) ([]detect.Detection, error) {
	if frame == nil || frame.Empty() {
		return nil, errors.New("input frame is empty")
	}

	regressors, scores, err := d.engine.forward(frame)
	if err != nil {
		return nil, errors.Wrap(err, "palm inference")
	}

	return d.postprocess(regressors, scores, frame.Cols(), frame.Rows())
}

// Close releases the underlying inference engine.
func (d *MPPalmDet) Close() error {
	return d.engine.close()
}

// postprocess decodes the raw network output against the anchor grid,
// filters by score, runs non-maximum suppression, and scales the survivors
// back to source-image pixels.
func (d *MPPalmDet) postprocess(regressors, scores []float32, srcW, srcH int) ([]detect.Detection, error) {
	if len(scores) != len(d.anchors) || len(regressors) != len(d.anchors)*regWidth {
		return nil, errors.Errorf(
			"unexpected output shape: %d scores, %d regressor values for %d anchors",
			len(scores), len(regressors), len(d.anchors))
	}

	scaleX := float32(srcW) / inputSize
	scaleY := float32(srcH) / inputSize

	var (
		rects []image.Rectangle
		confs []float32
		rows  [][]float64
	)
	for i, anchor := range d.anchors {
		conf := sigmoid(scores[i])
		if conf < d.scoreThreshold {
			continue
		}

		reg := regressors[i*regWidth : (i+1)*regWidth]

		// The model predicts offsets against the anchor center at network
		// scale; box width and height are absolute at that scale.
		acx := anchor.X * inputSize
		acy := anchor.Y * inputSize
		cx := reg[0] + acx
		cy := reg[1] + acy
		w := reg[2]
		h := reg[3]

		row := make([]float64, 0, detect.RowLen)
		row = append(row,
			float64((cx-w/2)*scaleX),
			float64((cy-h/2)*scaleY),
			float64((cx+w/2)*scaleX),
			float64((cy+h/2)*scaleY),
		)
		for k := 0; k < detect.NumLandmarks; k++ {
			row = append(row,
				float64((reg[4+2*k]+acx)*scaleX),
				float64((reg[5+2*k]+acy)*scaleY),
			)
		}
		row = append(row, float64(conf))

		rects = append(rects, image.Rect(int(row[0]), int(row[1]), int(row[2]), int(row[3])))
		confs = append(confs, conf)
		rows = append(rows, row)
	}

	if len(rects) == 0 {
		return nil, nil
	}

	keep := gocv.NMSBoxes(rects, confs, d.scoreThreshold, d.nmsThreshold)

	palms := make([]detect.Detection, 0, len(keep))
	for _, i := range keep {
		palm, err := detect.FromRow(rows[i])
		if err != nil {
			return nil, err
		}
		palms = append(palms, palm)
	}
	return palms, nil
}

func sigmoid(x float32) float32 {
	return 1 / (1 + math32.Exp(-x))
}
