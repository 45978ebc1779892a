package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/balloonwind/internal/core/domain"
)

const (
	SnapshotStream = "BALLOON_SNAPSHOTS"
	PositionStream = "BALLOON_POSITIONS"

	// SnapshotSubjects matches every hourly snapshot subject.
	SnapshotSubjects = "balloons.snapshot.>"
	// PositionSubjects matches every per-balloon position subject.
	PositionSubjects = "balloons.position.>"
)

// SnapshotSubject is the subject a snapshot for hoursBack is published on.
func SnapshotSubject(hoursBack int) string {
	return fmt.Sprintf("balloons.snapshot.%02d", hoursBack)
}

// PositionSubject is the subject carrying one balloon's latest fix.
func PositionSubject(balloonID int) string {
	return fmt.Sprintf("balloons.position.%03d", balloonID)
}

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	// Ensure streams exist
	streams := []nats.StreamConfig{
		{
			Name:      SnapshotStream,
			Subjects:  []string{SnapshotSubjects},
			Retention: nats.LimitsPolicy,
			// one file per hour is all a late subscriber needs
			MaxMsgsPerSubject: 1,
			MaxAge:            24 * time.Hour,
			Storage:           nats.FileStorage,
		},
		{
			Name:              PositionStream,
			Subjects:          []string{PositionSubjects},
			Retention:         nats.LimitsPolicy,
			MaxMsgsPerSubject: 1,
			MaxAge:            2 * time.Hour,
			Storage:           nats.MemoryStorage,
		},
	}

	for _, cfg := range streams {
		if _, err := js.AddStream(&cfg); err != nil {
			// Stream may already exist, try update
			if _, err := js.UpdateStream(&cfg); err != nil {
				return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
			}
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

func (p *Publisher) PublishSnapshot(ctx context.Context, event *domain.SnapshotEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(SnapshotSubject(event.Hour), data, nats.Context(ctx))
	return err
}

func (p *Publisher) PublishPosition(ctx context.Context, event *domain.PositionEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(PositionSubject(event.BalloonID), data, nats.Context(ctx))
	return err
}

// Conn exposes the connection for health checks.
func (p *Publisher) Conn() *nats.Conn {
	return p.conn
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("balloonwind"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
