package metrics

import "github.com/prometheus/client_golang/prometheus"

// ChatMetrics exposes counters/histograms for chat turns and the LLM calls behind them.
type ChatMetrics struct {
	turnsTotal       *prometheus.CounterVec
	stageTransitions *prometheus.CounterVec
	qualifications   *prometheus.CounterVec
	fallbacksTotal   *prometheus.CounterVec
	escalationsTotal *prometheus.CounterVec
	llmLatency       *prometheus.HistogramVec
	llmTokens        *prometheus.CounterVec
}

func NewChatMetrics(reg prometheus.Registerer) *ChatMetrics {
	m := &ChatMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "travel",
			Subsystem: "chat",
			Name:      "turns_total",
			Help:      "User turns processed, labelled by the stage reached after the turn",
		}, []string{"scenario", "stage"}),
		stageTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "travel",
			Subsystem: "chat",
			Name:      "stage_transitions_total",
			Help:      "Conversation stage transitions",
		}, []string{"scenario", "from", "to"}),
		qualifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "travel",
			Subsystem: "chat",
			Name:      "lead_qualification_total",
			Help:      "Lead tiers observed after each turn",
		}, []string{"scenario", "qualification"}),
		fallbacksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "travel",
			Subsystem: "chat",
			Name:      "fallback_replies_total",
			Help:      "Turns answered with canned text after the LLM failed",
		}, []string{"scenario", "stage"}),
		escalationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "travel",
			Subsystem: "chat",
			Name:      "sales_escalations_total",
			Help:      "Conversations handed to the sales desk",
		}, []string{"scenario", "qualification"}),
		llmLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "travel",
			Subsystem: "llm",
			Name:      "latency_seconds",
			Help:      "Latency of LLM completions",
			Buckets:   []float64{0.25, 0.5, 1, 2, 3, 4, 5, 6, 8, 10, 15, 20, 30},
		}, []string{"model", "status"}),
		llmTokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "travel",
			Subsystem: "llm",
			Name:      "tokens_total",
			Help:      "Tokens used by the LLM",
		}, []string{"model", "type"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(
		m.turnsTotal,
		m.stageTransitions,
		m.qualifications,
		m.fallbacksTotal,
		m.escalationsTotal,
		m.llmLatency,
		m.llmTokens,
	)
	return m
}

func (m *ChatMetrics) ObserveTurn(scenario, stage, qualification string) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(scenario, stage).Inc()
	m.qualifications.WithLabelValues(scenario, qualification).Inc()
}

func (m *ChatMetrics) ObserveStageTransition(scenario, from, to string) {
	if m == nil {
		return
	}
	m.stageTransitions.WithLabelValues(scenario, from, to).Inc()
}

func (m *ChatMetrics) ObserveFallback(scenario, stage string) {
	if m == nil {
		return
	}
	m.fallbacksTotal.WithLabelValues(scenario, stage).Inc()
}

func (m *ChatMetrics) ObserveEscalation(scenario, qualification string) {
	if m == nil {
		return
	}
	m.escalationsTotal.WithLabelValues(scenario, qualification).Inc()
}

// ObserveLLMCall records latency and, on success, token usage. Zero counts are skipped.
func (m *ChatMetrics) ObserveLLMCall(model string, ok bool, seconds float64, inputTokens, outputTokens int) {
	if m == nil {
		return
	}
	status := "ok"
	if !ok {
		status = "error"
	}
	m.llmLatency.WithLabelValues(model, status).Observe(seconds)
	if inputTokens > 0 {
		m.llmTokens.WithLabelValues(model, "input").Add(float64(inputTokens))
	}
	if outputTokens > 0 {
		m.llmTokens.WithLabelValues(model, "output").Add(float64(outputTokens))
	}
}
