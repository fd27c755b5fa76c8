package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"ChannelSync/internal/domain"
	"ChannelSync/internal/ports"
)

// DefaultSubject prefixes every article change subject.
const DefaultSubject = "articles.changes"

type conn interface {
	Publish(subject string, data []byte) error
	FlushWithContext(ctx context.Context) error
	Drain() error
}

// NATSPublisher emits article changes on {subject}.{kind} as JSON.
type NATSPublisher struct {
	nc      conn
	subject string
}

var _ ports.EventPublisher = (*NATSPublisher)(nil)

// NewNATSPublisher connects to the server at url.
func NewNATSPublisher(url, subject string) (*NATSPublisher, error) {
	if url == "" {
		url = nats.DefaultURL
	}
	nc, err := nats.Connect(url,
		nats.Name("channelsync"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", url, err)
	}
	return newPublisher(nc, subject), nil
}

func newPublisher(nc conn, subject string) *NATSPublisher {
	if subject == "" {
		subject = DefaultSubject
	}
	return &NATSPublisher{nc: nc, subject: subject}
}

// Publish sends one event. Delivery is at most once.
func (p *NATSPublisher) Publish(ctx context.Context, event domain.ArticleEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	subject := p.subject + "." + string(event.Kind)
	if err := p.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

// Close flushes pending events and drains the connection.
func (p *NATSPublisher) Close(ctx context.Context) error {
	if err := p.nc.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("flush nats: %w", err)
	}
	return p.nc.Drain()
}
