package testing

import (
	"sync"
	"time"

	"github.com/aristath/qho/internal/modules/animation"
)

// MockSink is a mock implementation of animation.Sink for testing
type MockSink struct {
	mu     sync.Mutex
	frames []*animation.Frame
	errs   []error
	err    error
	notify chan struct{}
}

// NewMockSink creates a new mock sink
func NewMockSink() *MockSink {
	return &MockSink{notify: make(chan struct{}, 1)}
}

// SetError sets the error RenderFrame returns
func (m *MockSink) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// RenderFrame records the frame
func (m *MockSink) RenderFrame(frame *animation.Frame) error {
	m.mu.Lock()
	m.frames = append(m.frames, frame)
	err := m.err
	m.mu.Unlock()

	m.signal()
	return err
}

// RenderError records the error
func (m *MockSink) RenderError(err error) {
	m.mu.Lock()
	m.errs = append(m.errs, err)
	m.mu.Unlock()

	m.signal()
}

func (m *MockSink) signal() {
	select {
	case m.notify <- struct{}{}:
	default:
	}
}

// Frames returns a copy of the recorded frames
func (m *MockSink) Frames() []*animation.Frame {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*animation.Frame(nil), m.frames...)
}

// Errors returns a copy of the recorded errors
func (m *MockSink) Errors() []error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]error(nil), m.errs...)
}

// WaitForFrames blocks until n frames were recorded or timeout elapses
func (m *MockSink) WaitForFrames(n int, timeout time.Duration) bool {
	deadline := time.After(timeout)
	for {
		m.mu.Lock()
		got := len(m.frames)
		m.mu.Unlock()
		if got >= n {
			return true
		}

		select {
		case <-m.notify:
		case <-deadline:
			return false
		}
	}
}
