package hermes

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Client is the event bus used by the API and the broker.
type Client interface {
	Publish(subject string, data interface{}) error
	Subscribe(subject string, handler func(subject string, data []byte)) error
	Close()
}

// conn is the part of *nats.Conn the client uses.
type conn interface {
	Publish(subject string, data []byte) error
	Subscribe(subject string, cb nats.MsgHandler) (*nats.Subscription, error)
	Close()
}

// streamManager is the part of jetstream.JetStream the client uses.
type streamManager interface {
	CreateOrUpdateStream(ctx context.Context, cfg jetstream.StreamConfig) (jetstream.Stream, error)
}

// streamSubjects are captured by the run stream. Rank requests are not.
var streamSubjects = []string{"ranker.run.>", "ranker.runs.>", "ranker.stats"}

type NATSClient struct {
	conn   conn
	js     streamManager
	subs   []*nats.Subscription
	logger *slog.Logger
}

func NewNATSClient(ctx context.Context, url string, logger *slog.Logger) (*NATSClient, error) {
	nc, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	return newClient(ctx, nc, js, logger), nil
}

func newClient(ctx context.Context, nc conn, js streamManager, logger *slog.Logger) *NATSClient {
	c := &NATSClient{conn: nc, js: js, logger: logger}
	if err := c.ensureStream(ctx); err != nil {
		logger.Warn("failed to ensure stream", "stream", StreamName, "error", err)
	}
	return c
}

func streamConfig() jetstream.StreamConfig {
	maxAge, _ := time.ParseDuration(StreamMaxAge)
	subjects := make([]string, len(streamSubjects))
	copy(subjects, streamSubjects)
	return jetstream.StreamConfig{
		Name:     StreamName,
		Subjects: subjects,
		MaxAge:   maxAge,
	}
}

func (c *NATSClient) ensureStream(ctx context.Context) error {
	_, err := c.js.CreateOrUpdateStream(ctx, streamConfig())
	return err
}

func (c *NATSClient) Publish(subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode %s: %w", subject, err)
	}
	return c.conn.Publish(subject, payload)
}

func (c *NATSClient) Subscribe(subject string, handler func(string, []byte)) error {
	sub, err := c.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(msg.Subject, msg.Data)
	})
	if err != nil {
		return err
	}
	c.subs = append(c.subs, sub)
	return nil
}

// Close drains subscriptions and closes the connection.
func (c *NATSClient) Close() {
	for _, sub := range c.subs {
		_ = sub.Unsubscribe()
	}
	c.conn.Close()
}
