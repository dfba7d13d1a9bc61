package game

import "errors"

// MaxSetting is the upper bound of each settings knob.
const MaxSetting = 5.0

// ErrInvalidSettings is returned when a settings value is out of range.
var ErrInvalidSettings = errors.New("settings values must be in (0, 5]")

// Settings are the player-adjustable knobs read every frame.
type Settings struct {
	BallSpeed float64 `json:"ball_speed"` // multiplier on ball velocity
	HandSize  float64 `json:"hand_size"`  // avatar scale, render only
}

// DefaultSettings returns the settings used when nothing has been stored.
func DefaultSettings() Settings {
	return Settings{BallSpeed: 1.0, HandSize: 1.0}
}

func (s Settings) Validate() error {
	for _, v := range []float64{s.BallSpeed, s.HandSize} {
		if !(v > 0 && v <= MaxSetting) {
			return ErrInvalidSettings
		}
	}
	return nil
}
