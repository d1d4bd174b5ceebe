// Package metrics exposes Prometheus counters for the resolution pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	CatalogLoads = promauto.NewCounter(prometheus.CounterOpts{
		Name: "optionanalyzer_catalog_loads_total",
		Help: "Instrument master downloads performed.",
	})
	CatalogCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "optionanalyzer_catalog_cache_hits_total",
		Help: "Catalog reads served from the cached snapshot.",
	})
	CatalogLoadFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "optionanalyzer_catalog_load_failures_total",
		Help: "Instrument master downloads or parses that failed.",
	})
	ResolveFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "optionanalyzer_resolve_failures_total",
		Help: "Selections that matched no catalog record.",
	})
	ChainFetches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "optionanalyzer_chain_fetches_total",
		Help: "Option-chain requests issued.",
	})
	AdvisorCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "optionanalyzer_advisor_calls_total",
		Help: "Recommendation requests by outcome.",
	}, []string{"outcome"})
)

// Handler serves the scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
