package capture

import (
	"testing"

	"gocv.io/x/gocv"
)

func TestMotionDetector_Frames(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	black := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer black.Close()
	white := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer white.Close()
	white.SetTo(gocv.NewScalar(255, 255, 255, 0))

	t.Run("first frame only primes", func(t *testing.T) {
		md := NewMotionDetector(1.0)
		defer md.Close()

		if m := md.Detect(&white); m.Detected || m.ChangePercent != 0 {
			t.Errorf("first frame reported %+v", m)
		}
	})

	t.Run("identical frames are still", func(t *testing.T) {
		md := NewMotionDetector(1.0)
		defer md.Close()

		md.Detect(&black)
		if m := md.Detect(&black); m.Detected {
			t.Errorf("identical frames reported motion: %+v", m)
		}
	})

	t.Run("black to white is motion", func(t *testing.T) {
		md := NewMotionDetector(1.0)
		defer md.Close()

		md.Detect(&black)
		m := md.Detect(&white)
		if !m.Detected {
			t.Errorf("expected motion, got %+v", m)
		}
		if m.ChangePercent < 50 {
			t.Errorf("ChangePercent = %f, expected > 50", m.ChangePercent)
		}
	})

	t.Run("reset re-primes", func(t *testing.T) {
		md := NewMotionDetector(1.0)
		defer md.Close()

		md.Detect(&black)
		md.Reset()
		if md.primed {
			t.Error("detector should not be primed after Reset")
		}
		if m := md.Detect(&white); m.Detected {
			t.Error("first frame after Reset should not report motion")
		}
	})
}

func TestMotionDetector_NilFrame(t *testing.T) {
	md := NewMotionDetector(1.0)
	defer md.Close()

	if m := md.Detect(nil); m.Detected {
		t.Error("nil frame should not report motion")
	}
}

func TestMotionDetector_SetThreshold(t *testing.T) {
	md := NewMotionDetector(1.0)
	defer md.Close()

	md.SetThreshold(5.0)
	if md.threshold != 5.0 {
		t.Errorf("threshold = %f, want 5.0", md.threshold)
	}

	md.SetThreshold(-1.0)
	if md.threshold != 5.0 {
		t.Errorf("negative threshold should be ignored, got %f", md.threshold)
	}

	// Close is idempotent.
	md.Close()
	md.Close()
}
