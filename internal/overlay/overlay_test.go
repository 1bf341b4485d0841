package overlay

import (
	"image/color"
	"testing"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/trainiq/internal/analysis"
	"github.com/ayusman/trainiq/internal/pose"
)

func TestJointColor(t *testing.T) {
	tests := []struct {
		score int
		want  color.RGBA
	}{
		{100, good},
		{80, good},
		{79, fair},
		{50, fair},
		{49, poor},
		{0, poor},
	}
	for _, tt := range tests {
		if got := JointColor(tt.score); got != tt.want {
			t.Errorf("JointColor(%d) = %v, want %v", tt.score, got, tt.want)
		}
	}
}

func TestDraw(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	profile, _ := analysis.LookupProfile("squat")
	cfg := analysis.DefaultConfig()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	squat := pose.SquatPose(100)

	_, res := analysis.ProcessFrame(analysis.NewState(profile, cfg, now), squat, now, cfg)
	Draw(&frame, squat, res, cfg.Visibility)

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(frame, &gray, gocv.ColorBGRToGray)

	// knee vertex at the left knee landmark
	knee := squat.Landmarks[pose.LeftKnee]
	if gray.GetUCharAt(int(knee.Y*480), int(knee.X*640)) == 0 {
		t.Error("joint marker was not drawn at the knee")
	}
}

func TestDraw_NilSafe(t *testing.T) {
	Draw(nil, nil, analysis.FrameResult{}, 0.5)

	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}
	frame := gocv.NewMatWithSize(120, 160, gocv.MatTypeCV8UC3)
	defer frame.Close()
	Draw(&frame, nil, analysis.FrameResult{}, 0.5)
}
