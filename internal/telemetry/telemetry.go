// Package telemetry exports Prometheus metrics for scrape runs, language
// model calls, batch passes, and operator API requests. A nil *Metrics
// records nothing.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "inquest"

// Metrics holds every collector the pipeline reports to.
type Metrics struct {
	ScrapeRuns     *prometheus.CounterVec
	ScrapePages    *prometheus.CounterVec
	ScrapeFindings *prometheus.CounterVec
	ScrapeDuration *prometheus.HistogramVec

	LLMCalls   *prometheus.CounterVec
	LLMTokens  *prometheus.CounterVec
	LLMCost    *prometheus.CounterVec
	LLMLatency *prometheus.HistogramVec

	BatchRecords  *prometheus.CounterVec
	BatchDuration *prometheus.HistogramVec

	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	m := &Metrics{}

	m.ScrapeRuns = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scrape_runs_total",
		Help:      "Scrape runs by source and outcome",
	}, []string{"source", "outcome"})

	m.ScrapePages = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scrape_pages_total",
		Help:      "Listing pages fetched by source and result",
	}, []string{"source", "result"})

	m.ScrapeFindings = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scrape_findings_total",
		Help:      "Scraped findings by source and result (new, duplicate)",
	}, []string{"source", "result"})

	m.ScrapeDuration = f.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "scrape_duration_seconds",
		Help:      "Scrape run wall time",
		Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
	}, []string{"source"})

	m.LLMCalls = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "llm_calls_total",
		Help:      "Language model calls by provider, model, and outcome",
	}, []string{"provider", "model", "outcome"})

	m.LLMTokens = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "llm_tokens_total",
		Help:      "Language model tokens by provider and direction",
	}, []string{"provider", "direction"})

	m.LLMCost = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "llm_cost_usd_total",
		Help:      "Computed language model cost in USD",
	}, []string{"provider"})

	m.LLMLatency = f.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "llm_latency_seconds",
		Help:      "Language model call latency",
		Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80, 120},
	}, []string{"provider"})

	m.BatchRecords = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "batch_records_total",
		Help:      "Records visited by batch passes, by pass and outcome",
	}, []string{"pass", "outcome"})

	m.BatchDuration = f.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "batch_duration_seconds",
		Help:      "Batch pass wall time",
		Buckets:   []float64{1, 10, 30, 60, 300, 900, 1800, 3600},
	}, []string{"pass"})

	m.Requests = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Operator API requests by method, route pattern, and status code",
	}, []string{"method", "route", "code"})

	m.RequestDuration = f.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Operator API request latency by route pattern",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})

	return m
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// RecordScrape records the outcome of one scrape run.
func (m *Metrics) RecordScrape(source, outcome string, pages, failed, created, duplicates int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.ScrapeRuns.WithLabelValues(source, outcome).Inc()
	m.ScrapePages.WithLabelValues(source, "ok").Add(float64(pages))
	m.ScrapePages.WithLabelValues(source, "failed").Add(float64(failed))
	m.ScrapeFindings.WithLabelValues(source, "new").Add(float64(created))
	m.ScrapeFindings.WithLabelValues(source, "duplicate").Add(float64(duplicates))
	m.ScrapeDuration.WithLabelValues(source).Observe(elapsed.Seconds())
}

// RecordLLM records one language model call. A non-nil err counts the call
// as failed and ignores the usage figures.
func (m *Metrics) RecordLLM(provider, model string, tokensIn, tokensOut int, cost float64, latency time.Duration, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.LLMCalls.WithLabelValues(provider, model, "error").Inc()
		return
	}
	m.LLMCalls.WithLabelValues(provider, model, "ok").Inc()
	m.LLMTokens.WithLabelValues(provider, "input").Add(float64(tokensIn))
	m.LLMTokens.WithLabelValues(provider, "output").Add(float64(tokensOut))
	m.LLMCost.WithLabelValues(provider).Add(cost)
	m.LLMLatency.WithLabelValues(provider).Observe(latency.Seconds())
}

// RecordBatch records one batch pass.
func (m *Metrics) RecordBatch(pass string, processed, failed int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.BatchRecords.WithLabelValues(pass, "ok").Add(float64(processed - failed))
	m.BatchRecords.WithLabelValues(pass, "error").Add(float64(failed))
	m.BatchDuration.WithLabelValues(pass).Observe(elapsed.Seconds())
}

// RecordRequest records one served API request. route is the matched
// pattern so path parameters do not explode the label set.
func (m *Metrics) RecordRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}
