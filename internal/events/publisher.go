package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// DefaultSubject is the subject outcomes are published on
const DefaultSubject = "signspeak.pipeline.outcome"

// Outcome is the JSON payload of one pipeline run
type Outcome struct {
	Timestamp  time.Time `json:"timestamp"`
	Success    bool      `json:"success"`
	Stage      string    `json:"stage"`
	SpokenText string    `json:"spoken_text,omitempty"`
	Sign       string    `json:"sign,omitempty"`
	Label      int       `json:"label"`
	GIFURL     string    `json:"gif_url,omitempty"`
	Error      string    `json:"error,omitempty"`
	DurationMS int64     `json:"duration_ms"`
}

// Encode serializes the outcome
func (o Outcome) Encode() ([]byte, error) {
	return json.Marshal(o)
}

// Publisher sends outcomes to a NATS subject. A nil *Publisher drops
// everything.
type Publisher struct {
	conn    *nats.Conn
	subject string
	log     *slog.Logger
}

// Connect dials the NATS server at url
func Connect(url, subject string, log *slog.Logger) (*Publisher, error) {
	if url == "" {
		return nil, errors.New("no NATS server configured")
	}
	if subject == "" {
		subject = DefaultSubject
	}
	if log == nil {
		log = slog.Default()
	}

	conn, err := nats.Connect(url,
		nats.Name("signspeak"),
		nats.Timeout(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	log.Info("connected to NATS", slog.String("url", url), slog.String("subject", subject))

	return &Publisher{conn: conn, subject: subject, log: log}, nil
}

// Publish sends o and flushes so the caller learns about delivery errors
func (p *Publisher) Publish(ctx context.Context, o Outcome) error {
	if p == nil {
		return nil
	}

	data, err := o.Encode()
	if err != nil {
		return fmt.Errorf("encode outcome: %w", err)
	}

	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("publish outcome: %w", err)
	}
	return p.conn.FlushWithContext(ctx)
}

// Close drains and closes the connection
func (p *Publisher) Close() {
	if p == nil {
		return
	}
	p.log.Info("closing NATS connection")
	p.conn.Drain()
	p.conn.Close()
}
