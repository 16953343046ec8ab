// Package nats feeds alert events published on a NATS subject into the
// live stream, alongside the HTTP ingest path.
package nats

import (
	"context"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/opsglass/alertboard/internal/config"
	"github.com/opsglass/alertboard/internal/service"
)

// Subscriber consumes alert documents from NATS and hands them to the
// service ingest path, so broker-sourced events reach stream
// subscribers the same way HTTP-ingested ones do.
type Subscriber struct {
	conn *nats.Conn
	sub  *nats.Subscription
	svc  *service.Service
	cfg  config.NATSConfig
}

// NewSubscriber connects to the NATS server named in cfg. Connection
// failures are returned rather than retried here; nats.go handles
// reconnects after the initial connect succeeds.
func NewSubscriber(cfg config.NATSConfig, svc *service.Service) (*Subscriber, error) {
	opts := []nats.Option{
		nats.Name("alertboard"),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWaitDuration()),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				slog.Warn("nats disconnected", slog.String("error", err.Error()))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("nats reconnected", slog.String("url", nc.ConnectedUrl()))
		}),
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, err
	}

	return &Subscriber{conn: conn, svc: svc, cfg: cfg}, nil
}

// Start subscribes to the configured alert subject.
func (s *Subscriber) Start() error {
	sub, err := s.conn.Subscribe(s.cfg.Subject, func(msg *nats.Msg) {
		if err := s.svc.IngestAlert(context.Background(), msg.Data); err != nil {
			// Non-alert events are expected on a shared subject; keep
			// them at debug so a chatty broker does not flood the log.
			slog.Debug("dropped broker event",
				slog.String("subject", msg.Subject),
				slog.String("error", err.Error()))
		}
	})
	if err != nil {
		return err
	}
	s.sub = sub

	slog.Info("subscribed to alert subject", slog.String("subject", s.cfg.Subject))
	return nil
}

// Stop drains the subscription and closes the connection.
func (s *Subscriber) Stop() error {
	if s.sub != nil {
		if err := s.sub.Drain(); err != nil {
			return err
		}
	}
	s.conn.Close()
	return nil
}
