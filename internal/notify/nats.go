package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
)

// DefaultSubject is the subject prefix alerts are published under.
// The item kind is appended: "craftledger.alerts.material".
const DefaultSubject = "craftledger.alerts"

// Publisher is the subset of *nats.Conn used by NATSNotifier.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// NATSNotifier publishes alerts as JSON to "<subject>.<kind>".
type NATSNotifier struct {
	pub     Publisher
	subject string
	conn    *nats.Conn
}

// NewNATSNotifier wraps an existing publisher.
// An empty subject uses DefaultSubject.
func NewNATSNotifier(pub Publisher, subject string) *NATSNotifier {
	if subject == "" {
		subject = DefaultSubject
	}
	return &NATSNotifier{pub: pub, subject: subject}
}

// ConnectNATS dials the server at url and returns a notifier owning the
// connection. Close releases it.
func ConnectNATS(url, subject string, opts ...nats.Option) (*NATSNotifier, error) {
	opts = append([]nats.Option{nats.Name("craftledger")}, opts...)
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", url, err)
	}
	n := NewNATSNotifier(nc, subject)
	n.conn = nc
	return n, nil
}

// Notify publishes the alert. Publish is buffered by the NATS client, so
// ctx is only checked before the call.
func (n *NATSNotifier) Notify(ctx context.Context, a Alert) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}
	if err := n.pub.Publish(n.Subject(a), data); err != nil {
		return fmt.Errorf("publish alert: %w", err)
	}
	return nil
}

// Subject returns the subject an alert is published to.
func (n *NATSNotifier) Subject(a Alert) string {
	return n.subject + "." + string(a.Kind)
}

// Close drains and closes the owned connection, if any.
func (n *NATSNotifier) Close() error {
	if n.conn == nil {
		return nil
	}
	return n.conn.Drain()
}
