package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ScansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stampjoy_scans_total",
		Help: "Total scan attempts by outcome",
	}, []string{"outcome"})

	ScanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "stampjoy_scan_duration_seconds",
		Help:    "Time to process one scan transaction",
		Buckets: prometheus.DefBuckets,
	})

	ScanRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stampjoy_scan_retries_total",
		Help: "Total scan transactions retried after a write conflict",
	})

	RewardsUnlocked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stampjoy_rewards_unlocked_total",
		Help: "Total loyalty rewards unlocked",
	})

	ReferralsActivated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stampjoy_referrals_activated_total",
		Help: "Total referral bonuses activated",
	})

	QRRotations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stampjoy_qr_rotations_total",
		Help: "Total QR token rotations by trigger",
	}, []string{"trigger"})

	AISuggestionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "stampjoy_ai_suggestion_duration_seconds",
		Help:    "Latency of AI suggestion calls",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 8),
	})

	AISuggestionErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stampjoy_ai_suggestion_errors_total",
		Help: "Total AI suggestion calls that failed",
	})

	SSEClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "stampjoy_sse_clients",
		Help: "Current number of SSE clients connected",
	})
)

func IncScan(outcome string) {
	label := strings.TrimSpace(outcome)
	if label == "" {
		label = "unknown"
	}
	ScansTotal.WithLabelValues(label).Inc()
}

func ObserveScanDuration(duration time.Duration) {
	ScanDuration.Observe(duration.Seconds())
}

func IncScanRetry() {
	ScanRetries.Inc()
}

func IncRewardUnlocked() {
	RewardsUnlocked.Inc()
}

func IncReferralActivated() {
	ReferralsActivated.Inc()
}

func IncQRRotation(trigger string) {
	label := strings.TrimSpace(trigger)
	if label == "" {
		label = "manual"
	}
	QRRotations.WithLabelValues(label).Inc()
}

func ObserveAISuggestionDuration(duration time.Duration) {
	AISuggestionDuration.Observe(duration.Seconds())
}

func IncAISuggestionError() {
	AISuggestionErrors.Inc()
}

func SetSSEClients(count int) {
	if count < 0 {
		count = 0
	}
	SSEClients.Set(float64(count))
}
