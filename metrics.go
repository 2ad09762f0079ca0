// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package loadtxt

import "github.com/prometheus/client_golang/prometheus"

const (
	MetricRowsIngested = "rows_ingested_total"
	MetricFieldsFilled = "fields_filled_total"
	MetricNaNFallbacks = "nan_fallbacks_total"
	MetricRowsDropped  = "rows_dropped_total"
	MetricIngestErrors = "ingest_errors_total"

	metricNamespace = "loadtxt"
	metricLabelCode = "code"
)

var CounterRowsIngested = prometheus.NewCounter(
	prometheus.CounterOpts{
		Namespace: metricNamespace,
		Name:      MetricRowsIngested,
		Help:      "Data rows stored by successful ingestions.",
	},
)

var CounterFieldsFilled = prometheus.NewCounter(
	prometheus.CounterOpts{
		Namespace: metricNamespace,
		Name:      MetricFieldsFilled,
		Help:      "Missing fields replaced by a fill value or sentinel in successful ingestions.",
	},
)

var CounterNaNFallbacks = prometheus.NewCounter(
	prometheus.CounterOpts{
		Namespace: metricNamespace,
		Name:      MetricNaNFallbacks,
		Help:      "Unparsable float fields stored as NaN in successful ingestions.",
	},
)

var CounterRowsDropped = prometheus.NewCounter(
	prometheus.CounterOpts{
		Namespace: metricNamespace,
		Name:      MetricRowsDropped,
		Help:      "Ragged rows skipped because allow-ragged was set.",
	},
)

var CounterIngestErrors = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: metricNamespace,
		Name:      MetricIngestErrors,
		Help:      "Failed ingestions by error code.",
	},
	[]string{
		metricLabelCode,
	},
)

func init() {
	prometheus.MustRegister(CounterRowsIngested)
	prometheus.MustRegister(CounterFieldsFilled)
	prometheus.MustRegister(CounterNaNFallbacks)
	prometheus.MustRegister(CounterRowsDropped)
	prometheus.MustRegister(CounterIngestErrors)
}
