package detector

import (
	"encoding/json"
	"fmt"
)

// WireHand is the JSON shape of one detected hand, shared by the landmarker process and
// browser clients that run MediaPipe themselves.
type WireHand struct {
	Points     []Point3D `json:"points"`
	Handedness string    `json:"handedness"`
	Score      float64   `json:"score"`
}

// ToLandmarks converts the wire form into HandLandmarks. ok is false when the hand does
// not carry exactly NumLandmarks points.
func (h WireHand) ToLandmarks() (HandLandmarks, bool) {
	lm := HandLandmarks{
		Handedness: h.Handedness,
		Score:      h.Score,
	}
	if len(h.Points) != NumLandmarks {
		return lm, false
	}
	copy(lm.Points[:], h.Points)
	return lm, true
}

// FromWire converts wire hands to landmarks, dropping malformed entries.
func FromWire(hands []WireHand) []HandLandmarks {
	result := make([]HandLandmarks, 0, len(hands))
	for _, h := range hands {
		if lm, ok := h.ToLandmarks(); ok {
			result = append(result, lm)
		}
	}
	return result
}

// DecodeHands parses a `{"hands": [...]}` document.
func DecodeHands(data []byte) ([]HandLandmarks, error) {
	var response struct {
		Hands []WireHand `json:"hands"`
	}
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, fmt.Errorf("parse hands: %w", err)
	}
	return FromWire(response.Hands), nil
}
