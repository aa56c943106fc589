// Package bus mirrors negotiation events onto NATS JetStream so external
// consumers such as dashboards or companion devices can follow live runs.
package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/hupe1980/haggle/core"
	"github.com/hupe1980/haggle/logging"
)

const (
	// StreamName is the name of the negotiation events stream.
	StreamName = "HAGGLE"

	// SubjectPrefix is the prefix for all room subjects.
	SubjectPrefix = "haggle.rooms"
)

// Options holds connection overrides passed to Connect().
type Options struct {
	// Token authenticates against the server. Optional.
	Token string
	// ReconnectWait is the delay between reconnect attempts.
	ReconnectWait time.Duration
	// Logger receives connection diagnostics.
	Logger *logging.NegotiationLogger
}

// Publisher mirrors negotiation events to JetStream subjects of the form
// haggle.rooms.<roomID>.<eventType>.
type Publisher struct {
	conn   *nats.Conn
	js     jetstream.JetStream
	logger *logging.NegotiationLogger
}

// Connect establishes a NATS connection and ensures the event stream
// exists.
func Connect(ctx context.Context, url string, optFns ...func(o *Options)) (*Publisher, error) {
	opts := Options{
		ReconnectWait: 2 * time.Second,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NewLogger(nil).WithComponent("bus")
	}

	natsOpts := []nats.Option{
		nats.MaxReconnects(-1),
		nats.ReconnectWait(opts.ReconnectWait),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			opts.Logger.Warn("nats disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			opts.Logger.Info("nats reconnected to %s", nc.ConnectedUrl())
		}),
	}

	if opts.Token != "" {
		natsOpts = append(natsOpts, nats.Token(opts.Token))
	}

	nc, err := nats.Connect(url, natsOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create jetstream context: %w", err)
	}

	p := &Publisher{conn: nc, js: js, logger: opts.Logger}

	if err := p.ensureStream(ctx); err != nil {
		nc.Close()
		return nil, err
	}

	return p, nil
}

func (p *Publisher) ensureStream(ctx context.Context) error {
	if _, err := p.js.Stream(ctx, StreamName); err == nil {
		return nil
	}

	_, err := p.js.CreateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Subjects:    []string{fmt.Sprintf("%s.>", SubjectPrefix)},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      24 * time.Hour,
		Storage:     jetstream.FileStorage,
		Replicas:    1,
		Description: "Negotiation room events",
	})
	if err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}

	return nil
}

// EventSubject returns the subject an event is published to.
func EventSubject(roomID string, eventType core.EventType) string {
	return fmt.Sprintf("%s.%s.%s", SubjectPrefix, roomID, eventType)
}

// RoomFilter returns the filter subject covering all events of a room.
func RoomFilter(roomID string) string {
	return fmt.Sprintf("%s.%s.>", SubjectPrefix, roomID)
}

// Publish mirrors one negotiation event.
func (p *Publisher) Publish(ctx context.Context, ev core.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if _, err := p.js.Publish(ctx, EventSubject(ev.RoomID, ev.Type), data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

// IsConnected returns true if connected to NATS.
func (p *Publisher) IsConnected() bool {
	return p.conn != nil && p.conn.IsConnected()
}

// Close closes the NATS connection.
func (p *Publisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}
