package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// Publisher is the part of *nats.Conn the notifier needs.
type Publisher interface {
	PublishMsg(m *nats.Msg) error
}

// NATSNotifier publishes intents as JSON for the delivery workers.
//
// Subjects:
//   - <prefix>.notifications.like_received
//   - <prefix>.notifications.match_created
//   - <prefix>.moderation.match_reported
type NATSNotifier struct {
	pub    Publisher
	prefix string
}

func NewNATSNotifier(pub Publisher, prefix string) *NATSNotifier {
	if prefix == "" {
		prefix = "groupmatch"
	}
	return &NATSNotifier{pub: pub, prefix: prefix}
}

// Subject returns the subject an intent of the given kind is published on.
func (n *NATSNotifier) Subject(kind Kind) string {
	topic := "notifications"
	if kind == KindMatchReported {
		topic = "moderation"
	}
	return fmt.Sprintf("%s.%s.%s", n.prefix, topic, strings.ToLower(string(kind)))
}

func (n *NATSNotifier) Notify(ctx context.Context, in Intent) error {
	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal intent: %w", err)
	}

	msg := &nats.Msg{
		Subject: n.Subject(in.Kind),
		Data:    data,
		Header:  nats.Header{},
	}
	msg.Header.Set("Nats-Msg-Id", in.ID)
	// carry the trace of the originating RPC to the workers
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(msg.Header))

	if err := n.pub.PublishMsg(msg); err != nil {
		return fmt.Errorf("nats publish %s: %w", msg.Subject, err)
	}
	return nil
}

// Connect dials NATS with reconnects enabled for the lifetime of the server.
func Connect(url, name string) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name(name),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return nc, nil
}
