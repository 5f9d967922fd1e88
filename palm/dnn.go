package palm

import (
	"image"
	"os"
	"sync"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/qy-liuhuo/opencv-zoo/config"
)

// Output layer names of the palm detection ONNX graph: the box/keypoint
// regressors and the raw classification scores.
const (
	regressorLayer = "Identity"
	scoreLayer     = "Identity_1"
)

// dnnEngine runs the model through OpenCV's DNN module.
type dnnEngine struct {
	mu  sync.Mutex
	net gocv.Net
}

func newDNNEngine(cfg Config) (*dnnEngine, error) {
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, errors.Wrapf(err, "model file %s", cfg.ModelPath)
	}

	net := gocv.ReadNet(cfg.ModelPath, "")
	if net.Empty() {
		return nil, errors.Errorf("failed to load model %s", cfg.ModelPath)
	}

	backend, target, err := dnnPreferences(cfg.Backend, cfg.Target)
	if err != nil {
		net.Close()
		return nil, err
	}
	net.SetPreferableBackend(backend)
	net.SetPreferableTarget(target)

	return &dnnEngine{net: net}, nil
}

// dnnPreferences maps the CLI enums onto OpenCV's backend/target constants.
func dnnPreferences(b config.Backend, t config.Target) (gocv.NetBackendType, gocv.NetTargetType, error) {
	var backend gocv.NetBackendType
	switch b {
	case config.BackendOpenCV, "":
		backend = gocv.NetBackendOpenCV
	case config.BackendCUDA:
		backend = gocv.NetBackendCUDA
	default:
		return 0, 0, errors.Errorf("backend %s is not a DNN backend", b)
	}

	var target gocv.NetTargetType
	switch t {
	case config.TargetCPU, "":
		target = gocv.NetTargetCPU
	case config.TargetCUDA:
		target = gocv.NetTargetCUDA
	case config.TargetCUDAFP16:
		target = gocv.NetTargetCUDAFP16
	default:
		return 0, 0, errors.Errorf("target %s is not a DNN target", t)
	}

	return backend, target, nil
}

func (e *dnnEngine) forward(frame *gocv.Mat) ([]float32, []float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	blob := gocv.BlobFromImage(*frame, 1.0/255.0, image.Pt(inputSize, inputSize),
		gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	e.net.SetInput(blob, "")

	outs := e.net.ForwardLayers([]string{regressorLayer, scoreLayer})
	if len(outs) != 2 {
		for i := range outs {
			outs[i].Close()
		}
		return nil, nil, errors.Errorf("expected 2 output layers, got %d", len(outs))
	}
	defer outs[0].Close()
	defer outs[1].Close()

	regressors := make([]float32, numAnchors*regWidth)
	for i := 0; i < numAnchors; i++ {
		for j := 0; j < regWidth; j++ {
			regressors[i*regWidth+j] = outs[0].GetFloatAt3(0, i, j)
		}
	}

	scores := make([]float32, numAnchors)
	for i := 0; i < numAnchors; i++ {
		scores[i] = outs[1].GetFloatAt3(0, i, 0)
	}

	return regressors, scores, nil
}

func (e *dnnEngine) close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.net.Close()
}
