package render

import (
	"bytes"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"github.com/qy-liuhuo/opencv-zoo/detect"
)

// testFrame builds a deterministic non-uniform BGR frame.
func testFrame(t *testing.T, rows, cols int) gocv.Mat {
	t.Helper()
	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(90, 120, 150, 0),
		rows, cols, gocv.MatTypeCV8UC3)
	gocv.Rectangle(&frame, image.Rect(2, 2, 8, 8), color.RGBA{10, 200, 60, 0}, -1)
	return frame
}

func scenarioPalm() detect.Detection {
	lm := make([]detect.Point, detect.NumLandmarks)
	for i := range lm {
		lm[i] = detect.Point{X: 30, Y: 30}
	}
	return detect.Detection{
		Box:       []float64{10, 10, 50, 50},
		Landmarks: lm,
		Score:     0.995,
	}
}

func TestRenderPreservesDimensions(t *testing.T) {
	frame := testFrame(t, 480, 640)
	defer frame.Close()

	annotated, err := Render(frame, []detect.Detection{detect.SamplePalm()}, Options{})
	require.NoError(t, err)
	defer annotated.Close()

	assert.Equal(t, frame.Rows(), annotated.Rows())
	assert.Equal(t, frame.Cols(), annotated.Cols())
	assert.Equal(t, frame.Type(), annotated.Type())
}

func TestRenderDoesNotMutateInput(t *testing.T) {
	frame := testFrame(t, 480, 640)
	defer frame.Close()
	before := frame.ToBytes()

	fps := 12.34
	annotated, err := Render(frame, []detect.Detection{detect.SamplePalm()},
		Options{FPS: &fps, Report: &bytes.Buffer{}})
	require.NoError(t, err)
	defer annotated.Close()

	assert.True(t, bytes.Equal(before, frame.ToBytes()),
		"input frame pixels must be untouched")
	assert.False(t, bytes.Equal(before, annotated.ToBytes()),
		"annotated copy must actually differ")
}

func TestRenderZeroDetections(t *testing.T) {
	frame := testFrame(t, 100, 100)
	defer frame.Close()

	annotated, err := Render(frame, nil, Options{})
	require.NoError(t, err)
	defer annotated.Close()

	// Without detections and without an FPS label the output is a
	// pixel-identical copy of the input.
	assert.True(t, bytes.Equal(frame.ToBytes(), annotated.ToBytes()))
}

func TestRenderMalformedDetection(t *testing.T) {
	frame := testFrame(t, 100, 100)
	defer frame.Close()

	bad := scenarioPalm()
	bad.Box = bad.Box[:3]

	report := &bytes.Buffer{}
	_, err := Render(frame, []detect.Detection{scenarioPalm(), bad}, Options{Report: report})

	var shapeErr *detect.ShapeError
	require.ErrorAs(t, err, &shapeErr)
	assert.Equal(t, "box", shapeErr.Field)
	// Fail fast: no partial report either.
	assert.Zero(t, report.Len())
}

func TestRenderEmptyFrame(t *testing.T) {
	frame := gocv.NewMat()
	defer frame.Close()

	_, err := Render(frame, nil, Options{})
	assert.ErrorIs(t, err, ErrEmptyFrame)
}

func TestRenderScenario(t *testing.T) {
	frame := testFrame(t, 100, 100)
	defer frame.Close()

	report := &bytes.Buffer{}
	annotated, err := Render(frame, []detect.Detection{scenarioPalm()}, Options{Report: report})
	require.NoError(t, err)
	defer annotated.Close()

	want := "-----------palm 1-----------\n" +
		"score: 0.99\n" +
		"palm box: [10 10 50 50]\n" +
		"palm landmarks: \n" +
		strings.Repeat("\t[30 30]\n", detect.NumLandmarks)
	assert.Equal(t, want, report.String())

	// Green box outline on the top edge, clear of the score text.
	top := annotated.GetVecbAt(10, 40)
	assert.EqualValues(t, 255, top[1], "expected green box edge at (40, 10)")

	// Red landmark disc at (30, 30); OpenCV stores BGR, red is channel 2.
	center := annotated.GetVecbAt(30, 30)
	assert.EqualValues(t, 255, center[2], "expected red landmark at (30, 30)")
	assert.EqualValues(t, 0, center[1])

	// Pixels away from every annotation keep the background value.
	bg := annotated.GetVecbAt(80, 80)
	assert.EqualValues(t, 90, bg[0])
	assert.EqualValues(t, 120, bg[1])
	assert.EqualValues(t, 150, bg[2])
}

func TestRenderIdempotent(t *testing.T) {
	frame := testFrame(t, 120, 160)
	defer frame.Close()

	palms := []detect.Detection{scenarioPalm()}
	fps := 30.0

	first := &bytes.Buffer{}
	a, err := Render(frame, palms, Options{FPS: &fps, Report: first})
	require.NoError(t, err)
	defer a.Close()

	second := &bytes.Buffer{}
	b, err := Render(frame, palms, Options{FPS: &fps, Report: second})
	require.NoError(t, err)
	defer b.Close()

	assert.True(t, bytes.Equal(a.ToBytes(), b.ToBytes()),
		"identical inputs must render pixel-identical outputs")
	assert.Equal(t, first.String(), second.String())
}

func TestRenderFPSBoundary(t *testing.T) {
	frame := testFrame(t, 100, 100)
	defer frame.Close()

	zero := 0.0
	withLabel, err := Render(frame, nil, Options{FPS: &zero})
	require.NoError(t, err)
	defer withLabel.Close()

	withoutLabel, err := Render(frame, nil, Options{})
	require.NoError(t, err)
	defer withoutLabel.Close()

	// fps=0.0 still draws "FPS: 0.00"; only a nil fps omits the label.
	assert.False(t, bytes.Equal(withLabel.ToBytes(), withoutLabel.ToBytes()))
}
