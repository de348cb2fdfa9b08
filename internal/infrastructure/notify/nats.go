package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// NATSPublisher publishes JSON events on NATS subjects
type NATSPublisher struct {
	conn   *nats.Conn
	logger *zap.Logger
}

// NewNATSPublisher connects to url. The connection keeps retrying in the
// background when the server is not reachable yet.
func NewNATSPublisher(url, token string, logger *zap.Logger) (*NATSPublisher, error) {
	opts := []nats.Option{
		nats.Name("meeting-insights"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil && logger != nil {
				logger.Warn("⚠️ NATS disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			if logger != nil {
				logger.Info("🔌 NATS reconnected")
			}
		}),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return &NATSPublisher{conn: nc, logger: logger}, nil
}

// Publish marshals data as JSON and publishes it on subject
func (p *NATSPublisher) Publish(ctx context.Context, subject string, data interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	if err := p.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

// Close drains pending messages and closes the connection
func (p *NATSPublisher) Close() {
	if p.conn == nil {
		return
	}
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
	}
}
