package llm

import (
	"context"
	"time"

	"github.com/ahrav/go-verdict/internal/ports"
)

// metricsLLM records latency, token usage, and outcome counters for every
// judge call through a ports.MetricsCollector.
type metricsLLM struct {
	next      CoreLLM
	collector ports.MetricsCollector
}

// MetricsMiddleware creates middleware that reports judge-call telemetry.
// A nil collector makes the middleware a no-op passthrough.
func MetricsMiddleware(collector ports.MetricsCollector) Middleware {
	return func(next CoreLLM) CoreLLM {
		if collector == nil {
			return next
		}
		return &metricsLLM{next: next, collector: collector}
	}
}

func (m *metricsLLM) DoRequest(ctx context.Context, prompt string, opts map[string]any) (string, int, int, error) {
	start := time.Now()
	response, tokensIn, tokensOut, err := m.next.DoRequest(ctx, prompt, opts)

	labels := map[string]string{"model": m.next.GetModel()}
	m.collector.RecordLatency("llm_request", time.Since(start), labels)
	if err != nil {
		m.collector.RecordCounter("llm_request_errors_total", 1, labels)
		return response, tokensIn, tokensOut, err
	}
	m.collector.RecordCounter("llm_requests_total", 1, labels)
	m.collector.RecordHistogram("llm_tokens_in", float64(tokensIn), labels)
	m.collector.RecordHistogram("llm_tokens_out", float64(tokensOut), labels)
	return response, tokensIn, tokensOut, nil
}

func (m *metricsLLM) GetModel() string  { return m.next.GetModel() }
func (m *metricsLLM) SetModel(s string) { m.next.SetModel(s) }
