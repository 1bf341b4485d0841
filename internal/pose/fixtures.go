package pose

import "math"

// StandingPose returns a side-on pose of a person standing upright with arms
// hanging: knees and hips at 180°, elbows at 180°, ankles at 90°.
func StandingPose() *Pose {
	return SquatPose(180)
}

// SquatCycle returns one squat rep sampled over steps frames: from standing
// down to a 90° knee and back up, with a short pause at each end.
func SquatCycle(steps int) []*Pose {
	if steps < 4 {
		steps = 4
	}
	half := steps / 2
	poses := make([]*Pose, 0, steps+2*half)
	for i := 0; i < half; i++ {
		poses = append(poses, StandingPose())
	}
	for i := 0; i <= half; i++ {
		poses = append(poses, SquatPose(175-85*float64(i)/float64(half)))
	}
	for i := 0; i < half/2; i++ {
		poses = append(poses, SquatPose(90))
	}
	for i := 1; i <= half; i++ {
		poses = append(poses, SquatPose(90+85*float64(i)/float64(half)))
	}
	return poses
}

// SquatPose returns a side-on pose whose knee and hip angles both equal
// kneeAngle degrees. Shins stay vertical, torso stays upright, arms hang
// straight and feet point forward.
func SquatPose(kneeAngle float64) *Pose {
	p := &Pose{Score: 0.97}
	for i := range p.Landmarks {
		p.Landmarks[i] = Landmark{X: 0.5, Y: 0.1, Visibility: 0.9}
	}

	setSide(p, 0.50, kneeAngle, LeftShoulder, LeftElbow, LeftWrist, LeftHip, LeftKnee, LeftAnkle, LeftHeel, LeftFootIndex)
	setSide(p, 0.52, kneeAngle, RightShoulder, RightElbow, RightWrist, RightHip, RightKnee, RightAnkle, RightHeel, RightFootIndex)
	return p
}

const (
	segment = 0.2
	torso   = 0.25
	forearm = 0.12
)

func setSide(p *Pose, x, kneeAngle float64, shoulder, elbow, wrist, hip, knee, ankle, heel, foot int) {
	rad := kneeAngle * math.Pi / 180
	hipPt := Landmark{X: x, Y: 0.5, Visibility: 0.99}

	kneePt := Landmark{
		X:          hipPt.X - segment*math.Sin(rad),
		Y:          hipPt.Y - segment*math.Cos(rad),
		Visibility: 0.99,
	}
	anklePt := Landmark{X: kneePt.X, Y: kneePt.Y + segment, Visibility: 0.99}

	p.Landmarks[hip] = hipPt
	p.Landmarks[knee] = kneePt
	p.Landmarks[ankle] = anklePt
	p.Landmarks[heel] = Landmark{X: anklePt.X - 0.02, Y: anklePt.Y + 0.01, Visibility: 0.95}
	p.Landmarks[foot] = Landmark{X: anklePt.X + 0.1, Y: anklePt.Y, Visibility: 0.95}

	shoulderPt := Landmark{X: x, Y: hipPt.Y - torso, Visibility: 0.99}
	p.Landmarks[shoulder] = shoulderPt
	p.Landmarks[elbow] = Landmark{X: x, Y: shoulderPt.Y + forearm, Visibility: 0.99}
	p.Landmarks[wrist] = Landmark{X: x, Y: shoulderPt.Y + 2*forearm, Visibility: 0.99}
}

// Hide returns a copy of the pose with the given landmarks marked invisible.
func Hide(p *Pose, indices ...int) *Pose {
	c := *p
	for _, i := range indices {
		c.Landmarks[i].Visibility = 0
	}
	return &c
}
