package store

import (
	"database/sql"
	"time"
)

// Round outcomes as stored in the rounds table.
const (
	OutcomeCatch = "catch"
	OutcomeGoal  = "goal"
)

// Round represents a resolved ball traversal.
type Round struct {
	ID        int64
	SessionID string
	Sequence  int
	Outcome   string
	Hand      string
	BallX     float64
	BallY     float64
	BallZ     float64
	Ticks     int
	CreatedAt time.Time
}

// RoundRepository provides operations for round results.
type RoundRepository struct {
	db *sql.DB
}

// Rounds returns the round repository for this store.
func (s *Store) Rounds() *RoundRepository {
	return &RoundRepository{db: s.db}
}

// Create inserts a round result and sets its ID.
func (r *RoundRepository) Create(rd *Round) error {
	rd.CreatedAt = time.Now()

	result, err := r.db.Exec(
		`INSERT INTO rounds (session_id, sequence, outcome, hand, ball_x, ball_y, ball_z, ticks, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rd.SessionID, rd.Sequence, rd.Outcome, rd.Hand, rd.BallX, rd.BallY, rd.BallZ, rd.Ticks, rd.CreatedAt,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	rd.ID = id
	return nil
}

// ListBySession retrieves all rounds of a session in play order.
func (r *RoundRepository) ListBySession(sessionID string) ([]Round, error) {
	rows, err := r.db.Query(
		`SELECT id, session_id, sequence, outcome, hand, ball_x, ball_y, ball_z, ticks, created_at
		 FROM rounds
		 WHERE session_id = ?
		 ORDER BY sequence`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rounds []Round
	for rows.Next() {
		var rd Round
		if err := rows.Scan(&rd.ID, &rd.SessionID, &rd.Sequence, &rd.Outcome, &rd.Hand,
			&rd.BallX, &rd.BallY, &rd.BallZ, &rd.Ticks, &rd.CreatedAt); err != nil {
			return nil, err
		}
		rounds = append(rounds, rd)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return rounds, nil
}
