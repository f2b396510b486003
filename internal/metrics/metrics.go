package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Metrics holds the goal lifecycle collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	GoalSaves         *prometheus.CounterVec
	TemplatesCreated  *prometheus.CounterVec
	TemplateRenames   *prometheus.CounterVec
	StatusTransitions *prometheus.CounterVec
	TemplatesMerged   *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New registers the collectors on reg. Pass prometheus.NewRegistry() in tests.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		GoalSaves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ttahub_goal_saves_total",
				Help: "Goal writes by operation and result",
			},
			[]string{"op", "result"},
		),
		TemplatesCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ttahub_templates_created_total",
				Help: "Templates created automatically during goal or objective saves",
			},
			[]string{"kind"},
		),
		TemplateRenames: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ttahub_template_renames_total",
				Help: "Template name propagations by result",
			},
			[]string{"kind", "result"},
		),
		StatusTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ttahub_goal_status_transitions_total",
				Help: "Goal status entries by new status",
			},
			[]string{"status"},
		),
		TemplatesMerged: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ttahub_templates_merged_total",
				Help: "Duplicate templates merged by maintenance runs",
			},
			[]string{"kind"},
		),
		gatherer: reg,
	}

	reg.MustRegister(
		m.GoalSaves,
		m.TemplatesCreated,
		m.TemplateRenames,
		m.StatusTransitions,
		m.TemplatesMerged,
	)
	return m
}

func (m *Metrics) GoalSaved(op string, err error) {
	if m == nil {
		return
	}
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	m.GoalSaves.WithLabelValues(op, result).Inc()
}

func (m *Metrics) TemplateCreated(kind string) {
	if m == nil {
		return
	}
	m.TemplatesCreated.WithLabelValues(kind).Inc()
}

func (m *Metrics) TemplateRenamed(kind, result string) {
	if m == nil {
		return
	}
	m.TemplateRenames.WithLabelValues(kind, result).Inc()
}

func (m *Metrics) StatusEntered(status string) {
	if m == nil {
		return
	}
	m.StatusTransitions.WithLabelValues(status).Inc()
}

func (m *Metrics) Merged(kind string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.TemplatesMerged.WithLabelValues(kind).Add(float64(n))
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
