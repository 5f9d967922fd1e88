package detect

import "gocv.io/x/gocv"

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	palms   []Detection
	err     error
	errOnce error
	calls   int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetPalms sets the detections that will be returned by Infer.
func (m *MockDetector) SetPalms(palms []Detection) {
	m.palms = palms
}

// SetError sets the error that will be returned by Infer.
func (m *MockDetector) SetError(err error) {
	m.err = err
}

// SetErrorOnce makes only the next Infer call fail with err; later calls
// return the configured detections again.
func (m *MockDetector) SetErrorOnce(err error) {
	m.errOnce = err
}

// Calls returns the number of Infer invocations so far.
func (m *MockDetector) Calls() int {
	return m.calls
}

// Infer returns the pre-configured detections or error.
func (m *MockDetector) Infer(frame *gocv.Mat) ([]Detection, error) {
	m.calls++
	if m.errOnce != nil {
		err := m.errOnce
		m.errOnce = nil
		return nil, err
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.palms, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// SamplePalm returns a preset Detection centered in a 640x480 frame,
// useful as a fixture in renderer and pipeline tests.
func SamplePalm() Detection {
	return Detection{
		Box:   []float64{200, 150, 440, 390},
		Score: 0.995,
		Landmarks: []Point{
			{X: 320, Y: 370}, // wrist center
			{X: 250, Y: 300},
			{X: 270, Y: 200},
			{X: 320, Y: 170},
			{X: 370, Y: 190},
			{X: 410, Y: 230},
			{X: 420, Y: 310},
		},
	}
}
