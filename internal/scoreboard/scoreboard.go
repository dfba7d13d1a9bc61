// Package scoreboard mirrors round results into Redis so other processes can follow a
// session live.
package scoreboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultChannel is the pub/sub channel round events are published on.
const DefaultChannel = "goalkeeper:rounds"

// ErrNoScore is returned by Score for a session that has no published rounds.
var ErrNoScore = errors.New("no score published for session")

// Connect parses redisURL, opens a client and pings it.
func Connect(redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return client, nil
}

// Event is one finished round as seen by subscribers.
type Event struct {
	SessionID string    `json:"session_id"`
	Round     int       `json:"round"`
	Outcome   string    `json:"outcome"`
	Hand      string    `json:"hand,omitempty"`
	Caught    int       `json:"caught"`
	Missed    int       `json:"missed"`
	At        time.Time `json:"at"`
}

// SessionKey is the hash holding the running score of a session.
func SessionKey(sessionID string) string {
	return "goalkeeper:session:" + sessionID
}

// Publisher writes round events to a Redis channel and keeps the session hash current.
type Publisher struct {
	rdb     *redis.Client
	channel string
}

// NewPublisher wraps an open client. An empty channel selects DefaultChannel.
func NewPublisher(rdb *redis.Client, channel string) *Publisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Publisher{rdb: rdb, channel: channel}
}

// Channel returns the channel events are published on.
func (p *Publisher) Channel() string {
	return p.channel
}

// Publish sends ev on the channel and updates the session hash in one transaction.
func (p *Publisher) Publish(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal round event: %w", err)
	}

	_, err = p.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, SessionKey(ev.SessionID), sessionFields(ev))
		pipe.Publish(ctx, p.channel, payload)
		return nil
	})
	if err != nil {
		return fmt.Errorf("publish round %d: %w", ev.Round, err)
	}
	return nil
}

// Score reads the published score of a session. It returns ErrNoScore when nothing
// was ever published for it.
func (p *Publisher) Score(ctx context.Context, sessionID string) (caught, missed int, err error) {
	vals, err := p.rdb.HGetAll(ctx, SessionKey(sessionID)).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("read session score: %w", err)
	}
	if len(vals) == 0 {
		return 0, 0, ErrNoScore
	}
	if caught, err = atoiOrZero(vals["caught"]); err != nil {
		return 0, 0, err
	}
	if missed, err = atoiOrZero(vals["missed"]); err != nil {
		return 0, 0, err
	}
	return caught, missed, nil
}

// DecodeEvent parses a published payload.
func DecodeEvent(data []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return Event{}, fmt.Errorf("decode round event: %w", err)
	}
	return ev, nil
}

func sessionFields(ev Event) map[string]interface{} {
	return map[string]interface{}{
		"caught":     ev.Caught,
		"missed":     ev.Missed,
		"rounds":     ev.Round,
		"updated_at": ev.At.UTC().Format(time.RFC3339),
	}
}

func atoiOrZero(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("parse score field %q: %w", s, err)
	}
	return n, nil
}
