package analysis

// DefaultAlpha is the weight given to the newest raw angle.
const DefaultAlpha = 0.35

// Smooth applies exponential smoothing to each joint in raw:
//
//	s = alpha*raw + (1-alpha)*prev
//
// A joint seen for the first time takes its raw value. Joints missing from
// raw keep their previous value. prev is not modified.
func Smooth(raw, prev AngleSample, alpha float64) AngleSample {
	if alpha <= 0 || alpha > 1 {
		alpha = DefaultAlpha
	}

	out := make(AngleSample, len(prev)+len(raw))
	for j, v := range prev {
		if j.Valid() {
			out[j] = v
		}
	}
	for j, v := range raw {
		if !j.Valid() {
			continue
		}
		if p, seen := prev[j]; seen {
			out[j] = alpha*v + (1-alpha)*p
		} else {
			out[j] = v
		}
	}
	return out
}
