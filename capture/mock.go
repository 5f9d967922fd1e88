package capture

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockSource is a test implementation of Source that yields a scripted
// sequence of frames, then ErrExhausted.
type MockSource struct {
	mu     sync.Mutex
	frames []gocv.Mat
	err    error
	closed bool
}

// NewMockSource creates a MockSource over the given frames. The source takes
// ownership of the Mats; callers receive them back one per Read.
func NewMockSource(frames ...gocv.Mat) *MockSource {
	return &MockSource{frames: frames}
}

// SetError makes every subsequent Read fail with err instead of a frame.
func (m *MockSource) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Read returns the next scripted frame, the configured error, or
// ErrExhausted once the sequence runs out.
func (m *MockSource) Read() (gocv.Mat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return gocv.Mat{}, m.err
	}
	if len(m.frames) == 0 {
		return gocv.Mat{}, ErrExhausted
	}

	frame := m.frames[0]
	m.frames = m.frames[1:]
	return frame, nil
}

// Close releases any frames the source still holds.
func (m *MockSource) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	for i := range m.frames {
		m.frames[i].Close()
	}
	m.frames = nil
	m.closed = true
	return nil
}
