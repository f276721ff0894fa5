// Package metrics exports guard and score gauges in the Prometheus text
// format, suitable for the node_exporter textfile collector.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/silenceobjects/sentinel/internal/domain"
)

const namespace = "sentinel"

// Recorder implements domain.MetricsRecorder on a private registry.
type Recorder struct {
	registry   *prometheus.Registry
	score      prometheus.Gauge
	passed     prometheus.Gauge
	violations *prometheus.GaugeVec
	guardPass  *prometheus.GaugeVec
	duration   *prometheus.GaugeVec
}

func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		score: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "compliance_score",
			Help:      "Compliance score of the last run (0-100).",
		}),
		passed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "compliance_passed",
			Help:      "1 if the last run reached the minimum score.",
		}),
		violations: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "guard_violations",
			Help:      "Counted violations per guard.",
		}, []string{"guard"}),
		guardPass: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "guard_passed",
			Help:      "1 if the guard passed.",
		}, []string{"guard"}),
		duration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "guard_duration_seconds",
			Help:      "Wall time of the guard run.",
		}, []string{"guard"}),
	}
	r.registry.MustRegister(r.score, r.passed, r.violations, r.guardPass, r.duration)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

func (r *Recorder) ObserveGuard(run domain.GuardRun) {
	g := run.Result.Guard.String()
	r.violations.WithLabelValues(g).Set(float64(run.Result.Violations))
	r.guardPass.WithLabelValues(g).Set(boolGauge(run.Result.Passed))
	r.duration.WithLabelValues(g).Set(run.Duration.Seconds())
}

func (r *Recorder) ObserveReport(report domain.ComplianceReport) {
	r.score.Set(float64(report.Score))
	r.passed.Set(boolGauge(report.Passed))
}

// WriteTextfile writes every gauge to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// Noop discards observations.
type Noop struct{}

func (Noop) ObserveGuard(domain.GuardRun)          {}
func (Noop) ObserveReport(domain.ComplianceReport) {}
