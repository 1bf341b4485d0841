package detector

import (
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/trainiq/internal/pose"
)

// MockDetector is a test implementation of the Detector interface.
// It returns a preset pose, or steps through a scripted sequence of poses.
type MockDetector struct {
	mu       sync.Mutex
	pose     *pose.Pose
	sequence []*pose.Pose
	next     int
	loop     bool
	err      error
	calls    int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetPose sets the pose returned by every Detect call. Nil means nobody in frame.
func (m *MockDetector) SetPose(p *pose.Pose) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pose = p
	m.sequence = nil
}

// SetSequence makes Detect return the given poses in order. After the last
// one the final pose is repeated.
func (m *MockDetector) SetSequence(poses ...*pose.Pose) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sequence = poses
	m.next = 0
}

// SetLoop makes a sequence start over after its last pose instead of
// repeating it.
func (m *MockDetector) SetLoop(loop bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loop = loop
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect has been called.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured pose or error.
func (m *MockDetector) Detect(frame *gocv.Mat) (*pose.Pose, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if len(m.sequence) > 0 {
		p := m.sequence[m.next]
		switch {
		case m.next < len(m.sequence)-1:
			m.next++
		case m.loop:
			m.next = 0
		}
		return p, nil
	}
	return m.pose, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}
