package app

import (
	"sync"
	"time"

	"github.com/ayusman/goalkeeper/internal/detector"
)

// Hand sources written into the slot.
const (
	SourceCamera = "camera"
	SourceClient = "client"
)

// HandSlot holds the most recent palm positions. Writers overwrite, readers take the
// latest value; nothing is queued.
type HandSlot struct {
	hands   detector.HandPositions
	seq     uint64
	source  string
	updated time.Time
	mu      sync.Mutex
}

// NewHandSlot returns an empty slot.
func NewHandSlot() *HandSlot {
	return &HandSlot{}
}

// Store replaces the current positions and returns the new sequence number.
func (s *HandSlot) Store(hands detector.HandPositions, source string) uint64 {
	hands = copyPositions(hands)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.hands = hands
	s.source = source
	s.updated = time.Now()
	s.seq++
	return s.seq
}

// Load returns a copy of the current positions and their sequence number.
func (s *HandSlot) Load() (detector.HandPositions, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyPositions(s.hands), s.seq
}

// Source returns who wrote last and when.
func (s *HandSlot) Source() (string, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source, s.updated
}

// Clear marks both hands absent.
func (s *HandSlot) Clear(source string) uint64 {
	return s.Store(detector.HandPositions{}, source)
}

// ClearIf clears the slot only when seq is still the latest write, so a writer
// that leaves cannot erase hands someone else stored after it.
func (s *HandSlot) ClearIf(seq uint64, source string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.seq != seq {
		return false
	}
	s.hands = detector.HandPositions{}
	s.source = source
	s.updated = time.Now()
	s.seq++
	return true
}

func copyPositions(p detector.HandPositions) detector.HandPositions {
	var out detector.HandPositions
	if p.Left != nil {
		l := *p.Left
		out.Left = &l
	}
	if p.Right != nil {
		r := *p.Right
		out.Right = &r
	}
	return out
}
