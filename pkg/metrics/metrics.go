// Package metrics exposes Prometheus counters for the reconciliation
// pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ReceiptsIngested counts receipts accepted into the store.
	ReceiptsIngested = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "bankreco",
		Name:      "receipts_ingested_total",
		Help:      "Receipts accepted into the receipt store.",
	})

	// OCRFailures counts receipt uploads whose text recognition failed.
	OCRFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "bankreco",
		Name:      "ocr_failures_total",
		Help:      "Receipt uploads whose OCR pass failed.",
	})

	// StatementsParsed counts parsed bank statement uploads by bank code.
	StatementsParsed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bankreco",
		Name:      "statements_parsed_total",
		Help:      "Bank statements parsed, labelled by bank layout.",
	}, []string{"bank"})

	// MatchOutcomes counts matcher row outcomes by review status.
	MatchOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bankreco",
		Name:      "match_outcomes_total",
		Help:      "Receipt matching outcomes, labelled by review status.",
	}, []string{"status"})

	// XeroPosts counts posting runs against the accounting API by result.
	XeroPosts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bankreco",
		Name:      "xero_posts_total",
		Help:      "Posting runs against the accounting API, labelled by result.",
	}, []string{"result"})
)

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
