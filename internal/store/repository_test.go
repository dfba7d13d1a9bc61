package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// newTestStore creates a new Store in a temporary directory for testing.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "goalkeeper-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() {
		os.RemoveAll(tmpDir)
	})

	dbPath := filepath.Join(tmpDir, "test.db")
	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})

	return s
}

func TestSessionRepository_CreateAndGet(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	sess := &Session{ID: "session-1"}
	if err := repo.Create(sess); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	if sess.StartedAt.IsZero() {
		t.Error("StartedAt should be set after create")
	}

	got, err := repo.GetByID("session-1")
	if err != nil {
		t.Fatalf("failed to get session: %v", err)
	}
	if got.ID != "session-1" {
		t.Errorf("ID mismatch: got %q, want %q", got.ID, "session-1")
	}
	if got.Caught != 0 || got.Missed != 0 {
		t.Errorf("new session should have zero score, got %d/%d", got.Caught, got.Missed)
	}
	if got.EndedAt != nil {
		t.Error("new session should not be ended")
	}
}

func TestSessionRepository_GetNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Sessions().GetByID("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSessionRepository_UpdateScoreAndEnd(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	if err := repo.Create(&Session{ID: "session-1"}); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	if err := repo.UpdateScore("session-1", 3, 2); err != nil {
		t.Fatalf("UpdateScore() error = %v", err)
	}
	if err := repo.End("session-1"); err != nil {
		t.Fatalf("End() error = %v", err)
	}

	got, err := repo.GetByID("session-1")
	if err != nil {
		t.Fatalf("failed to get session: %v", err)
	}
	if got.Caught != 3 || got.Missed != 2 {
		t.Errorf("score = %d/%d, want 3/2", got.Caught, got.Missed)
	}
	if got.EndedAt == nil {
		t.Error("EndedAt should be set after End")
	}

	if err := repo.UpdateScore("missing", 1, 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing session, got %v", err)
	}
}

func TestSessionRepository_List(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	for _, id := range []string{"first", "second"} {
		if err := repo.Create(&Session{ID: id}); err != nil {
			t.Fatalf("failed to create session %s: %v", id, err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	sessions, err := repo.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}
	if sessions[0].ID != "second" {
		t.Errorf("expected newest session first, got %q", sessions[0].ID)
	}
}

func TestRoundRepository(t *testing.T) {
	s := newTestStore(t)

	if err := s.Sessions().Create(&Session{ID: "session-1"}); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	rounds := []*Round{
		{SessionID: "session-1", Sequence: 1, Outcome: OutcomeCatch, Hand: "Left", BallX: 0.1, BallY: 0.5, BallZ: -9.5, Ticks: 70},
		{SessionID: "session-1", Sequence: 2, Outcome: OutcomeGoal, BallX: 1, BallY: 2, BallZ: 0.1, Ticks: 134},
	}
	for _, rd := range rounds {
		if err := s.Rounds().Create(rd); err != nil {
			t.Fatalf("failed to create round: %v", err)
		}
		if rd.ID == 0 {
			t.Error("round ID should be set after create")
		}
	}

	t.Run("lists in sequence order", func(t *testing.T) {
		got, err := s.Rounds().ListBySession("session-1")
		if err != nil {
			t.Fatalf("ListBySession() error = %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 rounds, got %d", len(got))
		}
		if got[0].Outcome != OutcomeCatch || got[0].Hand != "Left" || got[0].BallZ != -9.5 {
			t.Errorf("unexpected first round: %+v", got[0])
		}
		if got[1].Outcome != OutcomeGoal || got[1].Ticks != 134 {
			t.Errorf("unexpected second round: %+v", got[1])
		}
	})

	t.Run("rejects unknown outcome", func(t *testing.T) {
		err := s.Rounds().Create(&Round{SessionID: "session-1", Sequence: 3, Outcome: "draw"})
		if err == nil {
			t.Error("expected check constraint violation")
		}
	})

	t.Run("rejects unknown session", func(t *testing.T) {
		err := s.Rounds().Create(&Round{SessionID: "missing", Sequence: 1, Outcome: OutcomeGoal})
		if err == nil {
			t.Error("expected foreign key violation")
		}
	})

	t.Run("cascades on session delete", func(t *testing.T) {
		if err := s.Sessions().Delete("session-1"); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		got, err := s.Rounds().ListBySession("session-1")
		if err != nil {
			t.Fatalf("ListBySession() error = %v", err)
		}
		if len(got) != 0 {
			t.Errorf("expected rounds to be deleted, got %d", len(got))
		}
	})
}

func TestSettingsRepository(t *testing.T) {
	s := newTestStore(t)
	repo := s.Settings()

	t.Run("missing key", func(t *testing.T) {
		if _, err := repo.Get(SettingBallSpeed); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		f, err := repo.GetFloat(SettingBallSpeed, 1.0)
		if err != nil || f != 1.0 {
			t.Errorf("GetFloat() = %f, %v; want fallback 1.0", f, err)
		}
	})

	t.Run("set and overwrite", func(t *testing.T) {
		if err := repo.SetFloat(SettingBallSpeed, 2.5); err != nil {
			t.Fatalf("SetFloat() error = %v", err)
		}
		if err := repo.SetFloat(SettingBallSpeed, 3); err != nil {
			t.Fatalf("SetFloat() error = %v", err)
		}
		f, err := repo.GetFloat(SettingBallSpeed, 1.0)
		if err != nil {
			t.Fatalf("GetFloat() error = %v", err)
		}
		if f != 3 {
			t.Errorf("GetFloat() = %f, want 3", f)
		}
	})

	t.Run("non-numeric value", func(t *testing.T) {
		if err := repo.Set(SettingHandSize, "large"); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		if _, err := repo.GetFloat(SettingHandSize, 1.0); err == nil {
			t.Error("expected parse error")
		}
	})
}

func TestSettingsRepository_SetFloats(t *testing.T) {
	t.Run("writes every key", func(t *testing.T) {
		s := newTestStore(t)
		repo := s.Settings()

		err := repo.SetFloats(map[string]float64{SettingBallSpeed: 2, SettingHandSize: 0.5})
		if err != nil {
			t.Fatalf("SetFloats() error = %v", err)
		}
		for key, want := range map[string]float64{SettingBallSpeed: 2, SettingHandSize: 0.5} {
			got, err := repo.GetFloat(key, 1.0)
			if err != nil {
				t.Fatalf("GetFloat(%s) error = %v", key, err)
			}
			if got != want {
				t.Errorf("GetFloat(%s) = %f, want %f", key, got, want)
			}
		}
	})

	t.Run("rolls back when one write fails", func(t *testing.T) {
		s := newTestStore(t)
		repo := s.Settings()

		if err := repo.SetFloat(SettingBallSpeed, 1.5); err != nil {
			t.Fatalf("SetFloat() error = %v", err)
		}
		_, err := s.DB().Exec(`CREATE TRIGGER reject_hand_size BEFORE INSERT ON settings
			WHEN NEW.key = 'hand_size'
			BEGIN SELECT RAISE(ABORT, 'hand_size rejected'); END`)
		if err != nil {
			t.Fatalf("failed to create trigger: %v", err)
		}

		err = repo.SetFloats(map[string]float64{SettingBallSpeed: 4, SettingHandSize: 2})
		if err == nil {
			t.Fatal("expected error from rejected hand_size write")
		}

		got, err := repo.GetFloat(SettingBallSpeed, 1.0)
		if err != nil {
			t.Fatalf("GetFloat() error = %v", err)
		}
		if got != 1.5 {
			t.Errorf("ball_speed = %f after failed batch, want 1.5", got)
		}
		if _, err := repo.Get(SettingHandSize); !errors.Is(err, ErrNotFound) {
			t.Errorf("hand_size should not be stored, got %v", err)
		}
	})
}
