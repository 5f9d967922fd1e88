// Command opencv-zoo-palmdet runs MediaPipe palm detection on a still image
// or a live camera feed and draws the results.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	pkgerrors "github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/qy-liuhuo/opencv-zoo/capture"
	"github.com/qy-liuhuo/opencv-zoo/config"
	"github.com/qy-liuhuo/opencv-zoo/detect"
	"github.com/qy-liuhuo/opencv-zoo/palm"
	"github.com/qy-liuhuo/opencv-zoo/profiler"
	"github.com/qy-liuhuo/opencv-zoo/render"
)

const (
	defaultModelPath = "palm_detection_mediapipe_2022may.onnx"
	resultPath       = "result.jpg"
	deviceID         = 0
)

func main() {
	var (
		inputPath = flag.String("input", "",
			"Path to the input image. Omit to use the default camera.")
		modelPath = flag.String("model", defaultModelPath,
			"Path to the palm detection ONNX model.")
		backendName = flag.String("backend", string(config.BackendOpenCV),
			"Computation backend: opencv (default), cuda or ort.")
		targetName = flag.String("target", string(config.TargetCPU),
			"Target compute device: cpu (default), cuda or cuda-fp16.")
		scoreThreshold = flag.Float64("score-threshold", palm.DefaultScoreThreshold,
			"Minimum confidence for a detection to be kept. Smaller values detect more but less accurately.")
		nmsThreshold = flag.Float64("nms-threshold", palm.DefaultNMSThreshold,
			"Suppress bounding boxes of IoU >= this threshold.")
		saveFlag = flag.String("save", "false",
			"Save the annotated result to result.jpg (on/off, yes/no, true/false, y/n, t/f). Image input only.")
		visFlag = flag.String("vis", "true",
			"Show the annotated result in a window (same boolean literals as --save). Image input only.")
	)
	flag.Parse()

	save, err := config.ParseBool(*saveFlag)
	if err != nil {
		log.Fatalf("--save: %v", err)
	}
	vis, err := config.ParseBool(*visFlag)
	if err != nil {
		log.Fatalf("--vis: %v", err)
	}
	backend, err := config.ParseBackend(*backendName)
	if err != nil {
		log.Fatalf("--backend: %v", err)
	}
	target, err := config.ParseTarget(*targetName)
	if err != nil {
		log.Fatalf("--target: %v", err)
	}

	caps := config.Capabilities()
	if !config.Supported(caps, backend, target) {
		log.Fatalf("backend %s with target %s is not supported on this build (supported: %s)",
			backend, target, config.Describe(caps))
	}

	detector, err := palm.New(palm.Config{
		ModelPath:      *modelPath,
		ScoreThreshold: float32(*scoreThreshold),
		NMSThreshold:   float32(*nmsThreshold),
		Backend:        backend,
		Target:         target,
	})
	if err != nil {
		log.Fatalf("Failed to initialize the palm detector: %v", err)
	}
	defer detector.Close()

	if *inputPath != "" {
		err = runImage(detector, *inputPath, save, vis)
	} else {
		err = runCamera(detector)
	}
	if err != nil {
		log.Fatal(err)
	}
}

// runImage detects palms on a single image, prints the report, and
// optionally saves and/or displays the annotated result.
func runImage(detector detect.Detector, path string, save, vis bool) error {
	src := capture.NewImageSource(path)
	defer src.Close()

	frame, err := src.Read()
	if err != nil {
		return err
	}
	defer frame.Close()

	palms, err := detector.Infer(&frame)
	if err != nil {
		return pkgerrors.Wrap(err, "inference")
	}
	if len(palms) == 0 {
		fmt.Println("Palm not detected")
	}

	annotated, err := render.Render(frame, palms, render.Options{Report: os.Stdout})
	if err != nil {
		return pkgerrors.Wrap(err, "render")
	}
	defer annotated.Close()

	if save {
		if ok := gocv.IMWrite(resultPath, annotated); !ok {
			return pkgerrors.Errorf("failed to write %s", resultPath)
		}
		fmt.Printf("Results saved to %s\n", resultPath)
	}

	if vis {
		window := gocv.NewWindow(path)
		defer window.Close()
		window.IMShow(annotated)
		window.WaitKey(0)
	}

	return nil
}

// runCamera runs the frame-by-frame detection loop on the default camera
// until a key is pressed or the device stops producing frames.
func runCamera(detector detect.Detector) error {
	src, err := capture.NewCameraSource(deviceID)
	if err != nil {
		return err
	}
	defer src.Close()

	window := gocv.NewWindow("MPPalmDet Demo")
	defer window.Close()

	return processFrames(src, detector, func(annotated gocv.Mat) bool {
		window.IMShow(annotated)
		return window.WaitKey(1) < 0
	})
}

// processFrames drives the per-frame loop: read, infer, render, display.
// The display callback owns nothing; it returns false to stop the loop.
// A frame that fails inference or rendering is reported and skipped, never
// fatal; an exhausted source ends the loop gracefully.
func processFrames(src capture.Source, detector detect.Detector, display func(gocv.Mat) bool) error {
	meter := profiler.NewTickMeter()
	for {
		frame, err := src.Read()
		if errors.Is(err, capture.ErrExhausted) {
			fmt.Println("No frames grabbed!")
			return nil
		}
		if err != nil {
			return err
		}

		meter.Start()
		palms, err := detector.Infer(&frame)
		meter.Stop()
		if err != nil {
			log.Printf("Inference failed: %v", err)
			frame.Close()
			meter.Reset()
			continue
		}

		fps := meter.FPS()
		annotated, err := render.Render(frame, palms, render.Options{FPS: &fps})
		frame.Close()
		meter.Reset()
		if err != nil {
			log.Printf("Render failed: %v", err)
			continue
		}

		keep := display(annotated)
		annotated.Close()
		if !keep {
			return nil
		}
	}
}
