// Package pose holds the 33-point body landmark model shared by the
// detectors and the analysis core. It has no OpenCV dependency.
package pose

// Pose landmark indices following the MediaPipe 33-point body model.
// See: https://developers.google.com/mediapipe/solutions/vision/pose_landmarker
const (
	Nose           = 0
	LeftEyeInner   = 1
	LeftEye        = 2
	LeftEyeOuter   = 3
	RightEyeInner  = 4
	RightEye       = 5
	RightEyeOuter  = 6
	LeftEar        = 7
	RightEar       = 8
	MouthLeft      = 9
	MouthRight     = 10
	LeftShoulder   = 11
	RightShoulder  = 12
	LeftElbow      = 13
	RightElbow     = 14
	LeftWrist      = 15
	RightWrist     = 16
	LeftPinky      = 17
	RightPinky     = 18
	LeftIndex      = 19
	RightIndex     = 20
	LeftThumb      = 21
	RightThumb     = 22
	LeftHip        = 23
	RightHip       = 24
	LeftKnee       = 25
	RightKnee      = 26
	LeftAnkle      = 27
	RightAnkle     = 28
	LeftHeel       = 29
	RightHeel      = 30
	LeftFootIndex  = 31
	RightFootIndex = 32
	NumLandmarks   = 33
)

// DefaultVisibility is the minimum visibility for a landmark to be usable.
const DefaultVisibility = 0.5

// Landmark is a single tracked body point in normalized image coordinates.
type Landmark struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility"`
}

// Pose represents the 33 body landmarks detected in one frame.
type Pose struct {
	Landmarks [NumLandmarks]Landmark `json:"landmarks"`
	Score     float64                `json:"score"`
}

// Visible reports whether landmark i is in range and at least threshold visible.
func (p *Pose) Visible(i int, threshold float64) bool {
	if p == nil || i < 0 || i >= NumLandmarks {
		return false
	}
	return p.Landmarks[i].Visibility >= threshold
}

// Connections lists the landmark pairs drawn as the body skeleton.
var Connections = [][2]int{
	{LeftShoulder, RightShoulder},
	{LeftShoulder, LeftElbow}, {LeftElbow, LeftWrist},
	{RightShoulder, RightElbow}, {RightElbow, RightWrist},
	{LeftShoulder, LeftHip}, {RightShoulder, RightHip},
	{LeftHip, RightHip},
	{LeftHip, LeftKnee}, {LeftKnee, LeftAnkle}, {LeftAnkle, LeftFootIndex},
	{RightHip, RightKnee}, {RightKnee, RightAnkle}, {RightAnkle, RightFootIndex},
}
