package detector

// PalmLandmarks are the landmarks averaged into the palm center: the wrist and the
// index and pinky knuckles.
var PalmLandmarks = [...]int{Wrist, IndexMCP, PinkyMCP}

// HandPositions holds the mirrored palm position of each hand for a single frame.
// A nil entry means the hand was not detected.
type HandPositions struct {
	Left  *Point3D `json:"left"`
	Right *Point3D `json:"right"`
}

// Any reports whether at least one hand is present.
func (p HandPositions) Any() bool {
	return p.Left != nil || p.Right != nil
}

// Count returns the number of hands present.
func (p HandPositions) Count() int {
	n := 0
	if p.Left != nil {
		n++
	}
	if p.Right != nil {
		n++
	}
	return n
}

// PalmCenter returns the mean of the palm landmarks in camera space.
func (h *HandLandmarks) PalmCenter() Point3D {
	var c Point3D
	for _, i := range PalmLandmarks {
		c.X += h.Points[i].X
		c.Y += h.Points[i].Y
		c.Z += h.Points[i].Z
	}
	n := float64(len(PalmLandmarks))
	return Point3D{X: c.X / n, Y: c.Y / n, Z: c.Z / n}
}

// Mirror converts a normalized camera point into the mirrored, centered screen frame.
// x and y are flipped and rescaled from [0,1] to [-1,1]; z is passed through.
func Mirror(p Point3D) Point3D {
	return Point3D{
		X: -((p.X - 0.5) * 2),
		Y: -((p.Y - 0.5) * 2),
		Z: p.Z,
	}
}

// ExtractPalms maps a frame's detections to one mirrored palm position per hand.
// Invalid detections are skipped. If two detections report the same side,
// the later one wins.
func ExtractPalms(hands []HandLandmarks) HandPositions {
	var positions HandPositions

	for i := range hands {
		hand := &hands[i]
		if !hand.Valid() {
			continue
		}

		palm := Mirror(hand.PalmCenter())
		switch hand.Side() {
		case Left:
			positions.Left = &palm
		case Right:
			positions.Right = &palm
		}
	}

	return positions
}
