// Package overlay draws the detected skeleton, joint angles and the live
// score onto camera frames for the MJPEG preview.
package overlay

import (
	"fmt"
	"image"
	"image/color"
	"strconv"

	"gocv.io/x/gocv"

	"github.com/ayusman/trainiq/internal/analysis"
	"github.com/ayusman/trainiq/internal/pose"
)

var (
	boneColor  = color.RGBA{R: 255, G: 255, B: 255, A: 0}
	good       = color.RGBA{G: 200, A: 0}
	fair       = color.RGBA{R: 255, G: 200, A: 0}
	poor       = color.RGBA{R: 230, G: 40, B: 40, A: 0}
	panelColor = color.RGBA{R: 20, G: 20, B: 20, A: 0}
)

// JointColor maps a per-joint score to the colour it is drawn in.
func JointColor(score int) color.RGBA {
	switch {
	case score >= 80:
		return good
	case score >= 50:
		return fair
	default:
		return poor
	}
}

// Draw renders p and res onto frame in place. Landmarks below visibility
// are left out, as are bones touching them.
func Draw(frame *gocv.Mat, p *pose.Pose, res analysis.FrameResult, visibility float64) {
	if frame == nil || frame.Empty() {
		return
	}
	w, h := frame.Cols(), frame.Rows()

	if p != nil {
		for _, c := range pose.Connections {
			if !p.Visible(c[0], visibility) || !p.Visible(c[1], visibility) {
				continue
			}
			gocv.Line(frame, pixel(p.Landmarks[c[0]], w, h), pixel(p.Landmarks[c[1]], w, h), boneColor, 2)
		}

		for _, j := range analysis.Joints() {
			angle, ok := res.Angles[j]
			if !ok {
				continue
			}
			v := j.Vertex()
			if !p.Visible(v, visibility) {
				continue
			}
			score, scored := res.Score.Joints[j]
			col := boneColor
			if scored {
				col = JointColor(score)
			}
			pt := pixel(p.Landmarks[v], w, h)
			gocv.Circle(frame, pt, 6, col, -1)
			gocv.PutText(frame, strconv.Itoa(int(angle)), pt.Add(image.Pt(8, -8)), gocv.FontHersheySimplex, 0.5, col, 1)
		}
	}

	drawPanel(frame, res)
}

func drawPanel(frame *gocv.Mat, res analysis.FrameResult) {
	gocv.Rectangle(frame, image.Rect(0, 0, 260, 70), panelColor, -1)

	label := res.PhaseLabel
	if !res.Detected {
		label = "no pose"
	}
	gocv.PutText(frame, fmt.Sprintf("%s  reps %d", res.Exercise, res.Reps), image.Pt(10, 25), gocv.FontHersheySimplex, 0.6, boneColor, 2)
	gocv.PutText(frame, fmt.Sprintf("score %d  %s", res.Score.Score, label), image.Pt(10, 55), gocv.FontHersheySimplex, 0.6, JointColor(res.Score.Score), 2)
}

func pixel(l pose.Landmark, w, h int) image.Point {
	return image.Pt(int(l.X*float64(w)), int(l.Y*float64(h)))
}
