// Package analysis turns pose landmarks into joint angles, form scores,
// repetition phases and session statistics.
//
// Everything in this package is pure: state is passed in and returned, never
// shared, so a frame can be analysed without a camera or a UI.
package analysis

import (
	"strings"
	"unicode"

	"github.com/ayusman/trainiq/internal/pose"
)

// Joint names an angle measured at a body landmark.
type Joint string

const (
	LeftElbow     Joint = "leftElbow"
	RightElbow    Joint = "rightElbow"
	LeftShoulder  Joint = "leftShoulder"
	RightShoulder Joint = "rightShoulder"
	LeftHip       Joint = "leftHip"
	RightHip      Joint = "rightHip"
	LeftKnee      Joint = "leftKnee"
	RightKnee     Joint = "rightKnee"
	LeftAnkle     Joint = "leftAnkle"
	RightAnkle    Joint = "rightAnkle"
)

// triple is the landmark triple an angle is measured from; B is the vertex.
type triple struct {
	joint   Joint
	a, b, c int
}

var triples = []triple{
	{LeftElbow, pose.LeftShoulder, pose.LeftElbow, pose.LeftWrist},
	{RightElbow, pose.RightShoulder, pose.RightElbow, pose.RightWrist},
	{LeftShoulder, pose.LeftElbow, pose.LeftShoulder, pose.LeftHip},
	{RightShoulder, pose.RightElbow, pose.RightShoulder, pose.RightHip},
	{LeftHip, pose.LeftShoulder, pose.LeftHip, pose.LeftKnee},
	{RightHip, pose.RightShoulder, pose.RightHip, pose.RightKnee},
	{LeftKnee, pose.LeftHip, pose.LeftKnee, pose.LeftAnkle},
	{RightKnee, pose.RightHip, pose.RightKnee, pose.RightAnkle},
	{LeftAnkle, pose.LeftKnee, pose.LeftAnkle, pose.LeftFootIndex},
	{RightAnkle, pose.RightKnee, pose.RightAnkle, pose.RightFootIndex},
}

// Joints returns every joint the extractor can measure, in a fixed order.
func Joints() []Joint {
	out := make([]Joint, len(triples))
	for i, t := range triples {
		out[i] = t.joint
	}
	return out
}

func lookup(j Joint) (triple, bool) {
	for _, t := range triples {
		if t.joint == j {
			return t, true
		}
	}
	return triple{}, false
}

// Valid reports whether j is one of the measured joints.
func (j Joint) Valid() bool {
	_, ok := lookup(j)
	return ok
}

// Vertex returns the landmark index the angle is drawn at, or -1.
func (j Joint) Vertex() int {
	t, ok := lookup(j)
	if !ok {
		return -1
	}
	return t.b
}

// Label returns a human readable name, e.g. "left elbow".
func (j Joint) Label() string {
	var b strings.Builder
	for i, r := range string(j) {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte(' ')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
