// Package notify is the boundary between the matching core and whatever
// delivers notifications to people. The core only produces intents.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oggyb/groupmatch/internal/metrics"
)

// Kind of notification.
type Kind string

const (
	KindLikeReceived  Kind = "LIKE_RECEIVED"
	KindMatchCreated  Kind = "MATCH_CREATED"
	KindMatchReported Kind = "MATCH_REPORTED"
)

// Payload is the closed set of fields a notification may carry.
type Payload struct {
	GroupID       uint64 `json:"group_id"`
	FromUserID    uint64 `json:"from_user_id,omitempty"`
	CounterpartID uint64 `json:"counterpart_id,omitempty"`
	LikeID        uint64 `json:"like_id,omitempty"`
	MatchID       uint64 `json:"match_id,omitempty"`
	Reason        string `json:"reason,omitempty"`
}

// Intent is one notification the core wants delivered to UserID.
type Intent struct {
	ID        string    `json:"id"`
	UserID    uint64    `json:"user_id"`
	Kind      Kind      `json:"kind"`
	Payload   Payload   `json:"payload"`
	CreatedAt time.Time `json:"created_at"`
}

// NewIntent stamps an intent with a fresh id.
func NewIntent(userID uint64, kind Kind, payload Payload, now time.Time) Intent {
	return Intent{
		ID:        uuid.NewString(),
		UserID:    userID,
		Kind:      kind,
		Payload:   payload,
		CreatedAt: now,
	}
}

// Notifier delivers a single intent. Implementations own persistence and
// push delivery; the core never depends on them succeeding.
type Notifier interface {
	Notify(ctx context.Context, in Intent) error
}

// Outbox collects intents while a transaction runs. Nothing leaves the
// process until Dispatcher.Dispatch is called after commit.
type Outbox struct {
	intents []Intent
}

func (o *Outbox) Add(in Intent) {
	o.intents = append(o.intents, in)
}

func (o *Outbox) Intents() []Intent {
	return o.intents
}

// Reset drops everything collected so far. Used when a transaction is retried.
func (o *Outbox) Reset() {
	o.intents = o.intents[:0]
}

// Dispatcher hands committed intents to a Notifier.
type Dispatcher struct {
	notifier Notifier
	log      *slog.Logger
	timeout  time.Duration
}

// NewDispatcher wraps notifier. Each delivery gets its own timeout so one
// slow intent cannot starve the rest.
func NewDispatcher(notifier Notifier, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{notifier: notifier, log: log, timeout: 2 * time.Second}
}

// Dispatch delivers every intent. Failures are logged and counted, never
// returned: by now the caller's transaction has already committed.
func (d *Dispatcher) Dispatch(ctx context.Context, intents []Intent) {
	if d == nil || d.notifier == nil {
		return
	}
	// the request may finish before delivery does
	base := context.WithoutCancel(ctx)

	for _, in := range intents {
		dctx, cancel := context.WithTimeout(base, d.timeout)
		err := d.notifier.Notify(dctx, in)
		cancel()
		if err != nil {
			metrics.NotificationsFailed.WithLabelValues(string(in.Kind)).Inc()
			d.log.Warn("notification dispatch failed",
				"intent_id", in.ID,
				"kind", in.Kind,
				"user_id", in.UserID,
				"err", err,
			)
		}
	}
}

// LogNotifier only logs intents. Used when no broker is configured.
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	if log == nil {
		log = slog.Default()
	}
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(_ context.Context, in Intent) error {
	n.log.Info("notification",
		"intent_id", in.ID,
		"kind", in.Kind,
		"user_id", in.UserID,
		"group_id", in.Payload.GroupID,
		"match_id", in.Payload.MatchID,
	)
	return nil
}

// Recorder keeps intents in memory. Handy in tests and local runs.
type Recorder struct {
	mu      sync.Mutex
	intents []Intent
	Err     error
}

func (r *Recorder) Notify(_ context.Context, in Intent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.intents = append(r.intents, in)
	return r.Err
}

// Intents returns a copy of everything recorded.
func (r *Recorder) Intents() []Intent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Intent, len(r.intents))
	copy(out, r.intents)
	return out
}

// OfKind filters the recorded intents.
func (r *Recorder) OfKind(kind Kind) []Intent {
	var out []Intent
	for _, in := range r.Intents() {
		if in.Kind == kind {
			out = append(out, in)
		}
	}
	return out
}
