// Package nats announces collected field values on a NATS subject.
package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/KIIGIN/bot-constructor/pkg/domain"
)

// DefaultSubject is used when no subject is configured.
const DefaultSubject = "botengine.fields.saved"

// conn is the subset of *nats.Conn used by Publisher.
type conn interface {
	Publish(subject string, data []byte) error
	Close()
}

// FieldEvent is the JSON payload published for every saved value.
type FieldEvent struct {
	ScenarioID    string    `json:"scenario_id"`
	ParticipantID int64     `json:"user_id"`
	Username      string    `json:"username,omitempty"`
	Variable      string    `json:"variable"`
	Name          string    `json:"name"`
	Type          string    `json:"type"`
	Value         string    `json:"value"`
	Timestamp     time.Time `json:"timestamp"`
}

// Publisher implements ports.FieldPublisher.
type Publisher struct {
	conn    conn
	subject string
	now     func() time.Time
}

// Connect dials NATS with reconnects enabled.
func Connect(url, subject string) (*Publisher, error) {
	nc, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return newPublisher(nc, subject), nil
}

func newPublisher(c conn, subject string) *Publisher {
	if subject == "" {
		subject = DefaultSubject
	}
	return &Publisher{conn: c, subject: subject, now: time.Now}
}

// Publish sends the record as a FieldEvent.
func (p *Publisher) Publish(ctx context.Context, r domain.FieldRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(FieldEvent{
		ScenarioID:    r.ScenarioID,
		ParticipantID: r.ParticipantID,
		Username:      r.Username,
		Variable:      r.Variable,
		Name:          r.Name,
		Type:          r.Type,
		Value:         r.Value,
		Timestamp:     p.now().UTC(),
	})
	if err != nil {
		return err
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		if errors.Is(err, nats.ErrConnectionClosed) {
			return fmt.Errorf("failed to publish field event: connection closed: %w", err)
		}
		return fmt.Errorf("failed to publish field event: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (p *Publisher) Close() error {
	p.conn.Close()
	return nil
}
