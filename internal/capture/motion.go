package capture

import (
	"image"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// Motion detection constants
const (
	// GaussianBlurSize is the kernel size for Gaussian blur (21x21)
	GaussianBlurSize = 21
	// DiffThreshold is the binary threshold for difference detection
	DiffThreshold = 25
)

// MotionDetector detects movement between consecutive frames by differencing
// blurred grayscale images.
type MotionDetector struct {
	threshold   float64
	prevGray    gocv.Mat
	initialized bool
	mu          sync.Mutex
}

// NewMotionDetector creates a detector that reports motion when more than
// threshold percent of the pixels change.
func NewMotionDetector(threshold float64) *MotionDetector {
	return &MotionDetector{
		threshold: threshold,
		prevGray:  gocv.NewMat(),
	}
}

// Detect compares frame with the previous one. The first frame only sets the
// baseline. It returns whether motion was seen and the changed pixel percentage.
func (m *MotionDetector) Detect(frame *gocv.Mat) (bool, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if frame == nil || frame.Empty() {
		return false, 0
	}

	gray := gocv.NewMat()
	defer gray.Close()
	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Point{X: GaussianBlurSize, Y: GaussianBlurSize}, 0, 0, gocv.BorderDefault)

	if !m.initialized {
		blurred.CopyTo(&m.prevGray)
		m.initialized = true
		return false, 0
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(blurred, m.prevGray, &diff)

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.Threshold(diff, &thresh, DiffThreshold, 255, gocv.ThresholdBinary)

	changed := float64(gocv.CountNonZero(thresh)) / float64(thresh.Rows()*thresh.Cols()) * 100
	blurred.CopyTo(&m.prevGray)

	return changed > m.threshold, changed
}

// SetThreshold changes the motion percentage. Negative values are ignored.
func (m *MotionDetector) SetThreshold(threshold float64) {
	if threshold < 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.threshold = threshold
}

// Reset drops the baseline frame.
func (m *MotionDetector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.release()
}

// Close releases the baseline frame.
func (m *MotionDetector) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.release()
}

func (m *MotionDetector) release() {
	if !m.prevGray.Empty() {
		m.prevGray.Close()
		m.prevGray = gocv.NewMat()
	}
	m.initialized = false
}

// RateGate chooses the analysis frame rate. It runs at the active rate while
// motion or a person is seen and falls back to the idle rate once nothing
// has happened for IdleAfter.
type RateGate struct {
	IdleFPS   int
	ActiveFPS int
	IdleAfter time.Duration

	lastActive time.Time
	active     bool
}

// NewRateGate returns a gate starting in idle mode.
func NewRateGate(idleFPS, activeFPS int, idleAfter time.Duration) *RateGate {
	return &RateGate{IdleFPS: idleFPS, ActiveFPS: activeFPS, IdleAfter: idleAfter}
}

// Observe records whether anything happened at now and returns the frame
// rate to use next and whether it changed.
func (g *RateGate) Observe(activity bool, now time.Time) (fps int, changed bool) {
	was := g.active
	if activity {
		g.lastActive = now
		g.active = true
	} else if g.active && now.Sub(g.lastActive) > g.IdleAfter {
		g.active = false
	}
	return g.FPS(), g.active != was
}

// Active reports whether the gate is in active mode.
func (g *RateGate) Active() bool { return g.active }

// FPS returns the current frame rate.
func (g *RateGate) FPS() int {
	if g.active {
		return g.ActiveFPS
	}
	return g.IdleFPS
}

// Interval returns the ticker period for the current frame rate.
func (g *RateGate) Interval() time.Duration {
	fps := g.FPS()
	if fps <= 0 {
		fps = DefaultFPS
	}
	return time.Second / time.Duration(fps)
}
