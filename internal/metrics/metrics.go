// Package metrics exposes the per-protocol diagnostic counters consumers
// watch to detect decode regressions.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

type MetricsClient struct {
	logger *zap.Logger

	decodedLogs      *prometheus.CounterVec
	skippedLogs      *prometheus.CounterVec
	numericOverflows *prometheus.CounterVec
	rpcDecodeMisses  *prometheus.CounterVec
}

func NewMetricsClient(registerer prometheus.Registerer, l *zap.Logger) *MetricsClient {
	mc := &MetricsClient{
		logger: l,
		decodedLogs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "evmetl_decoded_logs_total",
			Help: "Logs successfully decoded, by protocol and event",
		}, []string{"protocol", "event"}),
		skippedLogs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "evmetl_skipped_logs_total",
			Help: "Logs whose topic0 matched but whose payload failed to decode",
		}, []string{"protocol", "event"}),
		numericOverflows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "evmetl_numeric_overflows_total",
			Help: "Range-checked narrowings that fell back to zero",
		}, []string{"protocol", "field"}),
		rpcDecodeMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "evmetl_rpc_decode_misses_total",
			Help: "Batched RPC responses that could not be decoded",
		}, []string{"method"}),
	}
	registerer.MustRegister(mc.decodedLogs, mc.skippedLogs, mc.numericOverflows, mc.rpcDecodeMisses)
	return mc
}

func (mc *MetricsClient) IncrDecodedLog(protocol, event string) {
	mc.decodedLogs.WithLabelValues(protocol, event).Inc()
}

func (mc *MetricsClient) IncrSkippedLog(protocol, event string) {
	mc.skippedLogs.WithLabelValues(protocol, event).Inc()
}

func (mc *MetricsClient) IncrNumericOverflow(protocol, field string) {
	mc.numericOverflows.WithLabelValues(protocol, field).Inc()
}

func (mc *MetricsClient) IncrRpcDecodeMiss(method string) {
	mc.rpcDecodeMisses.WithLabelValues(method).Inc()
}
