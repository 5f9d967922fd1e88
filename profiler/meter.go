// Package profiler provides the frame timing meter for the camera loop.
package profiler

import "time"

// TickMeter measures per-frame processing time and derives an average frame
// rate over the ticks seen since the last Reset. Call Start and Stop around
// the measured section of each frame.
type TickMeter struct {
	start   time.Time
	total   time.Duration
	ticks   int
	running bool
}

// NewTickMeter creates a stopped meter with no recorded ticks.
func NewTickMeter() *TickMeter {
	return &TickMeter{}
}

// Start begins timing one tick. Calling Start on a running meter restarts
// the current tick.
func (m *TickMeter) Start() {
	m.start = time.Now()
	m.running = true
}

// Stop ends the current tick and accumulates its duration. Stop without a
// matching Start is a no-op.
func (m *TickMeter) Stop() {
	if !m.running {
		return
	}
	m.total += time.Since(m.start)
	m.ticks++
	m.running = false
}

// FPS returns the average ticks per second since the last Reset, or 0 when
// nothing has been recorded yet.
func (m *TickMeter) FPS() float64 {
	if m.ticks == 0 || m.total <= 0 {
		return 0
	}
	return float64(m.ticks) / m.total.Seconds()
}

// Ticks returns the number of completed ticks since the last Reset.
func (m *TickMeter) Ticks() int {
	return m.ticks
}

// Reset clears all recorded ticks and stops the meter.
func (m *TickMeter) Reset() {
	m.start = time.Time{}
	m.total = 0
	m.ticks = 0
	m.running = false
}
