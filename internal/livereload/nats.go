package livereload

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	serrors "git.home.luguber.info/inful/sitegen/internal/errors"
	"git.home.luguber.info/inful/sitegen/internal/logfields"
	"git.home.luguber.info/inful/sitegen/internal/retry"
)

// ReloadEvent is published on the NATS subject for every notification.
type ReloadEvent struct {
	ID   string    `json:"id"`
	Time time.Time `json:"time"`
}

// publisher is the part of *nats.Conn the notifier needs.
type publisher interface {
	Publish(subject string, data []byte) error
}

// NATSNotifier publishes reload events so tools outside the browser (editor
// plugins, remote previews) can follow the dev session.
type NATSNotifier struct {
	conn    *nats.Conn
	pub     publisher
	subject string
}

// DialNATS connects to url, retrying with policy while the server is not
// reachable, and returns a notifier publishing on subject.
func DialNATS(ctx context.Context, url, subject string, policy retry.Policy) (*NATSNotifier, error) {
	var conn *nats.Conn
	err := policy.Do(ctx, func() error {
		c, err := nats.Connect(url,
			nats.Name("sitegen"),
			nats.MaxReconnects(-1),
			nats.ReconnectWait(2*time.Second),
		)
		if err != nil {
			slog.Debug("NATS connect failed", logfields.URL(url), logfields.Error(err))
			return err
		}
		conn = c
		return nil
	})
	if err != nil {
		return nil, serrors.NotifyUnavailable(url, err)
	}
	slog.Info("NATS reload notifier connected", logfields.URL(url), logfields.Subject(subject))
	return &NATSNotifier{conn: conn, pub: conn, subject: subject}, nil
}

// Notify publishes one ReloadEvent. Failures are logged; a lost
// notification only delays a reload.
func (n *NATSNotifier) Notify() {
	data, err := json.Marshal(ReloadEvent{ID: uuid.NewString(), Time: time.Now().UTC()})
	if err != nil {
		slog.Warn("Failed to encode reload event", logfields.Error(err))
		return
	}
	if err := n.pub.Publish(n.subject, data); err != nil {
		slog.Warn("Failed to publish reload event", logfields.Subject(n.subject), logfields.Error(err))
	}
}

// Close drains and closes the connection.
func (n *NATSNotifier) Close() error {
	if n.conn == nil {
		return nil
	}
	return n.conn.Drain()
}
