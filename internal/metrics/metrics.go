// Package metrics holds the Prometheus collectors of the matching service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "groupmatch"

// Outcome labels for LikesSent.
const (
	OutcomeSent     = "sent"
	OutcomeMatched  = "matched"
	OutcomeRejected = "rejected"
)

// Reason labels for MatchesDeleted.
const (
	ReasonUnlike   = "unlike"
	ReasonUnmatch  = "unmatch"
	ReasonReported = "reported"
)

var (
	LikesSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "likes_sent_total",
		Help:      "Like attempts by outcome.",
	}, []string{"outcome"})

	MatchesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "matches_created_total",
		Help:      "Matches created or reactivated.",
	})

	MatchesExpired = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "matches_expired_total",
		Help:      "Matches moved to EXPIRED by the sweep.",
	})

	MatchesDeleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "matches_deleted_total",
		Help:      "Matches moved to DELETED, by reason.",
	}, []string{"reason"})

	NotificationsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_failed_total",
		Help:      "Notification intents the notifier could not deliver.",
	}, []string{"kind"})

	RecommendScores = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "recommend_scores",
		Help:      "Compatibility scores of returned candidates.",
		Buckets:   prometheus.LinearBuckets(0, 10, 11),
	})
)
