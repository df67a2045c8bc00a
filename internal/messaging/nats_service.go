package messaging

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/vocetask/vocetask/internal/config"
	"github.com/vocetask/vocetask/internal/events"
	"github.com/vocetask/vocetask/internal/logging"
)

// NATSService publishes task events to NATS so other systems can react to
// transcribed tasks. Publishing is optional: a nil service or an empty URL
// disables it without touching the pipeline.
type NATSService struct {
	conn    *nats.Conn
	url     string
	subject string
}

// NewNATSService creates a NATS service from configuration. It does not
// connect; call Connect before publishing.
func NewNATSService(cfg config.NATSConfig) *NATSService {
	return &NATSService{
		url:     cfg.URL,
		subject: cfg.Subject,
	}
}

// Connect establishes the connection to the NATS server with retry handling
func (ns *NATSService) Connect(cfg config.NATSConfig) error {
	logging.Sugar.Infow("🔌 Connecting to NATS", "url", ns.url)

	opts := []nats.Option{
		nats.Name("vocetask"),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.MaxReconnects(cfg.MaxReconnect),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logging.LogWarn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logging.Sugar.Infow("🔄 NATS reconnected", "url", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			logging.Sugar.Infow("🔌 NATS connection closed")
		}),
	}

	conn, err := nats.Connect(ns.url, opts...)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}

	ns.conn = conn
	logging.Sugar.Infow("✅ Connected to NATS", "url", conn.ConnectedUrl())
	return nil
}

// PublishTaskCreated publishes a completed task event. A nil service or an
// unconnected one is a no-op so callers never need to branch on config.
func (ns *NATSService) PublishTaskCreated(event *events.TaskEvent) error {
	if ns == nil || ns.conn == nil {
		return nil
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal task event: %w", err)
	}

	if err := ns.conn.Publish(ns.subject, data); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", ns.subject, err)
	}

	logging.Sugar.Infow("📤 Published task event",
		"subject", ns.subject,
		"uuid", event.UUID,
		"task_id", event.TaskID)
	return nil
}

// Close drains and closes the NATS connection
func (ns *NATSService) Close() {
	if ns == nil || ns.conn == nil {
		return
	}
	ns.conn.Close()
	ns.conn = nil
}
