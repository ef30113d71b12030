package kspp

import (
	"strconv"
	"strings"

	gometrics "github.com/rcrowley/go-metrics"
)

// BackpressureThreshold is the aggregate sink-queue length above which
// the run loop pauses source advancement for one pass (§4.5 step 3).
const BackpressureThreshold = 50000

// GCInterval is the minimum spacing between GarbageCollect sweeps
// (§4.5 step 7).
const GCInterval int64 = 10_000

// escapeTag backslash-escapes space, comma and equals, applied in that
// order — matching topology_base.cpp's escape_influx, which runs the
// three boost::replace_all_copy passes sequentially rather than in one
// combined pass.
func escapeTag(s string) string {
	s = strings.ReplaceAll(s, " ", `\ `)
	s = strings.ReplaceAll(s, ",", `\,`)
	s = strings.ReplaceAll(s, "=", `\=`)
	return s
}

// BuildTags renders the lexicographically tag-key-ordered string stamped
// onto every processor metric (§4.6). depth and partition are omitted
// for sinks (hasDepth/hasPartition false).
func BuildTags(hasDepth bool, depth int, keyType string, hasPartition bool, partition int32, processorType, recordType, topologyID, valueType string) string {
	var b strings.Builder
	first := true
	writeTag := func(key, value string) {
		if !first {
			b.WriteByte(',')
		}
		first = false
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(escapeTag(value))
	}
	if hasDepth {
		writeTag("depth", strconv.Itoa(depth))
	}
	writeTag("key_type", keyType)
	if hasPartition {
		writeTag("partition", strconv.Itoa(int(partition)))
	}
	writeTag("processor_type", processorType)
	writeTag("record_type", recordType)
	writeTag("topology", topologyID)
	writeTag("value_type", valueType)
	return b.String()
}

// CounterMetric is a Metric backed by a rcrowley/go-metrics Counter, the
// same metrics library sarama itself depends on (sarama's
// consumer-batch-size histogram uses the same registry type).
type CounterMetric struct {
	tags    string
	counter gometrics.Counter
}

// NewCounterMetric registers name in registry (or the default registry
// if nil) and returns a Metric wrapping it.
func NewCounterMetric(name string, registry gometrics.Registry) *CounterMetric {
	if registry == nil {
		registry = gometrics.DefaultRegistry
	}
	return &CounterMetric{counter: gometrics.GetOrRegisterCounter(name, registry)}
}

func (m *CounterMetric) SetTags(tags string) { m.tags = tags }
func (m *CounterMetric) Tags() string        { return m.tags }
func (m *CounterMetric) Inc(delta int64)     { m.counter.Inc(delta) }
func (m *CounterMetric) Count() int64        { return m.counter.Count() }

// GaugeMetric is a Metric backed by a rcrowley/go-metrics Gauge, used for
// point-in-time values such as a sink's queue length.
type GaugeMetric struct {
	tags  string
	gauge gometrics.Gauge
}

func NewGaugeMetric(name string, registry gometrics.Registry) *GaugeMetric {
	if registry == nil {
		registry = gometrics.DefaultRegistry
	}
	return &GaugeMetric{gauge: gometrics.GetOrRegisterGauge(name, registry)}
}

func (m *GaugeMetric) SetTags(tags string) { m.tags = tags }
func (m *GaugeMetric) Tags() string        { return m.tags }
func (m *GaugeMetric) Update(v int64)      { m.gauge.Update(v) }
func (m *GaugeMetric) Value() int64        { return m.gauge.Value() }
