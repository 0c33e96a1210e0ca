package natsadapter

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/akureroute/internal/core/domain"
)

// Subscriber implements ports.EventSubscriber using NATS JetStream.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber connects to NATS for durable consumption. Streams are
// ensured here too so the auditor may start before the API.
func NewSubscriber(url string) (*Subscriber, error) {
	conn, err := connect(url)
	if err != nil {
		return nil, err
	}
	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	if err := ensureStreams(js); err != nil {
		conn.Close()
		return nil, err
	}
	return &Subscriber{conn: conn, js: js}, nil
}

func (s *Subscriber) SubscribeRouteComputed(ctx context.Context, handler func(ctx context.Context, event *domain.RouteComputedEvent) error) error {
	return s.subscribe(SubjectRouteComputed, "route-auditor", func(data []byte) error {
		var event domain.RouteComputedEvent
		if err := json.Unmarshal(data, &event); err != nil {
			return err
		}
		return handler(ctx, &event)
	})
}

func (s *Subscriber) SubscribeLocationFallback(ctx context.Context, handler func(ctx context.Context, event *domain.LocationFallbackEvent) error) error {
	return s.subscribe(SubjectLocationFallback, "location-auditor", func(data []byte) error {
		var event domain.LocationFallbackEvent
		if err := json.Unmarshal(data, &event); err != nil {
			return err
		}
		return handler(ctx, &event)
	})
}

func (s *Subscriber) subscribe(subject, durable string, handle func(data []byte) error) error {
	sub, err := s.js.Subscribe(subject, func(msg *nats.Msg) {
		if err := handle(msg.Data); err != nil {
			slog.Warn("event handling failed", "subject", msg.Subject, "error", err)
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable(durable),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", subject, err)
	}
	s.subs = append(s.subs, sub)
	return nil
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
