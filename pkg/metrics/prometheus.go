package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"GhostSniper/internal/domain/models"
)

var botStates = []models.BotState{models.BotIdle, models.BotRunning, models.BotStopping, models.BotStopped}

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	signals     *prometheus.CounterVec
	scores      *prometheus.HistogramVec
	duplicates  *prometheus.CounterVec
	trades      *prometheus.CounterVec
	botState    *prometheus.GaugeVec
	subscribers prometheus.Gauge
	errorsTotal *prometheus.CounterVec
	latency     *prometheus.HistogramVec
}

// New registers the collectors on reg, or on the default registry when reg is nil.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Recorder{
		signals: f.NewCounterVec(
			prometheus.CounterOpts{Name: "ghostsniper_signals_total", Help: "Signals emitted per source"},
			[]string{"source"},
		),
		scores: f.NewHistogramVec(
			prometheus.HistogramOpts{Name: "ghostsniper_signal_score", Help: "Distribution of signal scores", Buckets: prometheus.LinearBuckets(0, 1, 10)},
			[]string{"source"},
		),
		duplicates: f.NewCounterVec(
			prometheus.CounterOpts{Name: "ghostsniper_signal_duplicates_total", Help: "Signals suppressed as duplicates"},
			[]string{"source"},
		),
		trades: f.NewCounterVec(
			prometheus.CounterOpts{Name: "ghostsniper_trades_total", Help: "Trades executed by mode and result"},
			[]string{"mode", "result"},
		),
		botState: f.NewGaugeVec(
			prometheus.GaugeOpts{Name: "ghostsniper_bot_state", Help: "1 for the current state of each bot"},
			[]string{"bot", "state"},
		),
		subscribers: f.NewGauge(
			prometheus.GaugeOpts{Name: "ghostsniper_hub_subscribers", Help: "Connected event subscribers"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{Name: "ghostsniper_errors_total", Help: "Errors by kind"},
			[]string{"type"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{Name: "ghostsniper_operation_duration_seconds", Help: "Duration of operations in seconds", Buckets: prometheus.DefBuckets},
			[]string{"operation"},
		),
	}
}

func (r *Recorder) RecordSignal(source string, score int) {
	r.signals.WithLabelValues(source).Inc()
	r.scores.WithLabelValues(source).Observe(float64(score))
}

func (r *Recorder) RecordDuplicate(source string) {
	r.duplicates.WithLabelValues(source).Inc()
}

// RecordTrade counts a trade. mode is paper or live, result ok or error.
func (r *Recorder) RecordTrade(mode, result string) {
	r.trades.WithLabelValues(mode, result).Inc()
}

// RecordBotState sets the gauge of the current state to 1 and the others to 0.
func (r *Recorder) RecordBotState(id string, state models.BotState) {
	for _, s := range botStates {
		v := 0.0
		if s == state {
			v = 1
		}
		r.botState.WithLabelValues(id, string(s)).Set(v)
	}
}

func (r *Recorder) RecordSubscribers(n int) { r.subscribers.Set(float64(n)) }

func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
