package palm

import (
	"os"
	"sync"

	"github.com/nfnt/resize"
	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
	"gocv.io/x/gocv"

	"github.com/qy-liuhuo/opencv-zoo/config"
)

// inputLayer is the input tensor name of the palm detection ONNX graph.
const inputLayer = "input"

// ortEngine runs the model through ONNX Runtime with fixed-shape tensors.
type ortEngine struct {
	mu       sync.Mutex
	session  *ort.AdvancedSession
	input    *ort.Tensor[float32]
	regOut   *ort.Tensor[float32]
	scoreOut *ort.Tensor[float32]
}

func newORTEngine(cfg Config) (*ortEngine, error) {
	if cfg.Target != "" && cfg.Target != config.TargetCPU {
		return nil, errors.Errorf("the ort backend only supports the cpu target, got %s", cfg.Target)
	}

	libPath := config.ORTLibraryPath()
	if _, err := os.Stat(libPath); err != nil {
		return nil, errors.Wrapf(err, "ONNX Runtime library not found at %s", libPath)
	}
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, errors.Wrapf(err, "model file %s", cfg.ModelPath)
	}

	if !ort.IsInitialized() {
		ort.SetSharedLibraryPath(libPath)
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, errors.Wrap(err, "initialize ONNX Runtime environment")
		}
	}

	input, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 3, inputSize, inputSize))
	if err != nil {
		return nil, errors.Wrap(err, "create input tensor")
	}
	regOut, err := ort.NewEmptyTensor[float32](ort.NewShape(1, numAnchors, regWidth))
	if err != nil {
		input.Destroy()
		return nil, errors.Wrap(err, "create regressor tensor")
	}
	scoreOut, err := ort.NewEmptyTensor[float32](ort.NewShape(1, numAnchors, 1))
	if err != nil {
		input.Destroy()
		regOut.Destroy()
		return nil, errors.Wrap(err, "create score tensor")
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		input.Destroy()
		regOut.Destroy()
		scoreOut.Destroy()
		return nil, errors.Wrap(err, "create session options")
	}
	defer options.Destroy()
	options.SetIntraOpNumThreads(4)
	options.SetGraphOptimizationLevel(ort.GraphOptimizationLevelEnableExtended)

	session, err := ort.NewAdvancedSession(
		cfg.ModelPath,
		[]string{inputLayer},
		[]string{regressorLayer, scoreLayer},
		[]ort.ArbitraryTensor{input},
		[]ort.ArbitraryTensor{regOut, scoreOut},
		options,
	)
	if err != nil {
		input.Destroy()
		regOut.Destroy()
		scoreOut.Destroy()
		return nil, errors.Wrap(err, "create ONNX Runtime session")
	}

	return &ortEngine{
		session:  session,
		input:    input,
		regOut:   regOut,
		scoreOut: scoreOut,
	}, nil
}

func (e *ortEngine) forward(frame *gocv.Mat) ([]float32, []float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.prepareInput(frame); err != nil {
		return nil, nil, err
	}

	if err := e.session.Run(); err != nil {
		return nil, nil, errors.Wrap(err, "run session")
	}

	// The output tensors are reused across calls; hand back copies.
	regressors := make([]float32, numAnchors*regWidth)
	copy(regressors, e.regOut.GetData())
	scores := make([]float32, numAnchors)
	copy(scores, e.scoreOut.GetData())

	return regressors, scores, nil
}

// prepareInput fills the CHW input tensor from the frame: resize to the
// network resolution with Lanczos3, RGB channel planes, scaled to [0, 1].
func (e *ortEngine) prepareInput(frame *gocv.Mat) error {
	img, err := frame.ToImage()
	if err != nil {
		return errors.Wrap(err, "convert frame")
	}
	img = resize.Resize(inputSize, inputSize, img, resize.Lanczos3)

	data := e.input.GetData()
	channelSize := inputSize * inputSize
	red := data[0:channelSize]
	green := data[channelSize : channelSize*2]
	blue := data[channelSize*2 : channelSize*3]

	i := 0
	for y := 0; y < inputSize; y++ {
		for x := 0; x < inputSize; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			red[i] = float32(r>>8) / 255.0
			green[i] = float32(g>>8) / 255.0
			blue[i] = float32(b>>8) / 255.0
			i++
		}
	}
	return nil
}

func (e *ortEngine) close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.input != nil {
		e.input.Destroy()
		e.input = nil
	}
	if e.regOut != nil {
		e.regOut.Destroy()
		e.regOut = nil
	}
	if e.scoreOut != nil {
		e.scoreOut.Destroy()
		e.scoreOut = nil
	}
	if e.session != nil {
		e.session.Destroy()
		e.session = nil
	}
	return nil
}
