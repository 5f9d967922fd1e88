// Package capture provides the frame sources the demo reads from: a single
// still image or a live camera device.
package capture

import (
	"errors"
	"sync"

	pkgerrors "github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// ErrExhausted signals that a source has no more frames to give. It is a
// termination signal for the enclosing loop, not a failure: decode and
// device errors are reported as ordinary errors instead.
var ErrExhausted = errors.New("frame source exhausted")

// Source supplies frames one at a time. The caller owns each returned Mat
// and must close it.
type Source interface {
	// Read returns the next frame, or ErrExhausted when the stream ends.
	Read() (gocv.Mat, error)

	// Close releases the underlying device or file handle.
	Close() error
}

// ImageSource yields a single decoded image, then reports exhaustion.
type ImageSource struct {
	path string
	mu   sync.Mutex
	done bool
}

// NewImageSource creates a Source backed by the image file at path. The file
// is decoded lazily on the first Read.
func NewImageSource(path string) *ImageSource {
	return &ImageSource{path: path}
}

// Read decodes and returns the image on the first call and ErrExhausted on
// every call after that. A file that cannot be decoded is an error, distinct
// from exhaustion; the failure is terminal, the bad file is not re-read.
func (s *ImageSource) Read() (gocv.Mat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done {
		return gocv.Mat{}, ErrExhausted
	}
	s.done = true

	img := gocv.IMRead(s.path, gocv.IMReadColor)
	if img.Empty() {
		img.Close()
		return gocv.Mat{}, pkgerrors.Errorf("could not read image %s", s.path)
	}

	return img, nil
}

// Close is a no-op for image sources.
func (s *ImageSource) Close() error {
	return nil
}

// CameraSource pulls sequential frames from a capture device.
type CameraSource struct {
	deviceID int
	mu       sync.Mutex
	capture  *gocv.VideoCapture
}

// NewCameraSource opens the capture device with the given ID.
func NewCameraSource(deviceID int) (*CameraSource, error) {
	capture, err := gocv.OpenVideoCapture(deviceID)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "open capture device %d", deviceID)
	}
	return &CameraSource{deviceID: deviceID, capture: capture}, nil
}

// Read grabs the next frame from the device. A device that stops producing
// frames reports ErrExhausted so the caller can end its loop gracefully.
func (s *CameraSource) Read() (gocv.Mat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.capture == nil {
		return gocv.Mat{}, ErrExhausted
	}

	frame := gocv.NewMat()
	if ok := s.capture.Read(&frame); !ok {
		frame.Close()
		return gocv.Mat{}, ErrExhausted
	}
	if frame.Empty() {
		frame.Close()
		return gocv.Mat{}, pkgerrors.Errorf("device %d produced an empty frame", s.deviceID)
	}

	return frame, nil
}

// Close releases the capture device.
func (s *CameraSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.capture == nil {
		return nil
	}
	err := s.capture.Close()
	s.capture = nil
	return err
}
