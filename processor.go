package kspp

import "math"

// Offset sentinels passed to Processor.Start. OffsetDefault tells a
// source to use its own default start policy (last committed offset, or
// log-beginning for a fresh consumer group); OffsetBeginning and
// OffsetStored mirror kspp::OFFSET_BEGINNING and the "use last commit"
// sentinel from the original C++ sources.
const (
	OffsetDefault   int64 = math.MinInt64
	OffsetBeginning int64 = -2
	OffsetStored    int64 = -1
)

// NoPartition is the partition value reported by a processor that is not
// bound to a single partition (a partition-agnostic sink).
const NoPartition int32 = -1

// Metric is the opaque, backend-agnostic handle the engine stamps tags
// onto; see metrics.go for the concrete rcrowley/go-metrics-backed
// implementations and BuildTags for the tag string format (§4.6).
type Metric interface {
	// SetTags installs the tag string computed for this metric's owning
	// processor. Called once, during Topology.Init.
	SetTags(tags string)
}

// Processor is the contract every node in a topology's DAG satisfies,
// whether it is a partition source, a stateless transform, or a sink.
// The engine drives topologies exclusively through this interface: it
// never needs to know a node's concrete key/value types.
type Processor interface {
	// Name is a fully qualified, unique identity for this node, used in
	// log lines and as part of its on-disk storage path.
	Name() string
	// SimpleName is the processor class ("filter", "flat_map", "pipe",
	// "kafka_source", "kafka_sink", "stream_sink", ...).
	SimpleName() string
	KeyTypeName() string
	ValueTypeName() string
	RecordTypeName() string

	// Depth is 0 for sources, and one more than the deepest input
	// otherwise.
	Depth() int
	// Partition is the partition this node is bound to, or NoPartition
	// for partition-agnostic sinks.
	Partition() int32

	// Inputs returns this node's declared upstream partition processors
	// (same partition), in subscription order. A source returns nil.
	Inputs() []Processor
	// IsUpstream reports whether other appears anywhere in the transitive
	// closure of Inputs.
	IsUpstream(other Processor) bool

	// EOF is true iff no upstream can ever produce more records and this
	// node's own buffers are drained. It may later become false again if
	// new records arrive upstream.
	EOF() bool

	// Poll performs non-blocking broker I/O (or a no-op for processors
	// with none): deliver pending callbacks, fetch what is already
	// available. maxWaitMs of 0 means "do queued work, do not block".
	Poll(maxWaitMs int64)
	// ProcessOne advances at most one record past this node and returns
	// the number of records advanced (0 or 1 for most processors; sinks
	// may report more than one unit of delivery work per call).
	ProcessOne(tickMs int64) int
	// Flush blocks until this node has no more buffered work to advance,
	// or it is closed.
	Flush()
	// Commit persists progress (source offsets). Non-forced commits
	// honour whatever cadence the processor was constructed with.
	Commit(force bool)
	// GarbageCollect is invoked by the topology at the GC cadence
	// (§4.5 step 7); most processors no-op it.
	GarbageCollect(tickMs int64)

	// Start begins production/consumption. offset is one of the Offset*
	// sentinels, or a literal broker offset for a source.
	Start(offset int64) error
	// Close flushes and tears the processor down. Further Produce calls
	// (on a sink) are rejected after Close returns.
	Close() error

	// Metrics returns the metrics this node exposes, for tag stamping and
	// for the application to sample.
	Metrics() []Metric
}

// BaseProcessor implements the bookkeeping shared by every processor:
// identity, depth, partition, and the upstream list IsUpstream walks.
// Concrete node types embed it and implement the behavioral methods
// (EOF, Poll, ProcessOne, Flush, Commit, GarbageCollect, Start, Close)
// themselves.
type BaseProcessor struct {
	name           string
	simpleName     string
	keyTypeName    string
	valueTypeName  string
	recordTypeName string
	depth          int
	partition      int32
	inputs         []Processor
	metrics        []Metric
}

// InitBase wires the identity and depth/partition bookkeeping a new node
// needs. depth is computed as one more than the deepest input (0 if
// inputs is empty); partition must match every input's partition.
func InitBase(name, simpleName, keyType, valueType, recordType string, partition int32, inputs ...Processor) BaseProcessor {
	depth := 0
	for _, in := range inputs {
		if d := in.Depth() + 1; d > depth {
			depth = d
		}
	}
	return BaseProcessor{
		name:           name,
		simpleName:     simpleName,
		keyTypeName:    keyType,
		valueTypeName:  valueType,
		recordTypeName: recordType,
		depth:          depth,
		partition:      partition,
		inputs:         append([]Processor(nil), inputs...),
	}
}

func (b *BaseProcessor) Name() string           { return b.name }
func (b *BaseProcessor) SimpleName() string     { return b.simpleName }
func (b *BaseProcessor) KeyTypeName() string    { return b.keyTypeName }
func (b *BaseProcessor) ValueTypeName() string  { return b.valueTypeName }
func (b *BaseProcessor) RecordTypeName() string { return b.recordTypeName }
func (b *BaseProcessor) Depth() int             { return b.depth }
func (b *BaseProcessor) Partition() int32       { return b.partition }
func (b *BaseProcessor) Inputs() []Processor    { return b.inputs }

// IsUpstream walks the transitive closure of Inputs looking for other.
// Cycle freedom is an invariant of an assembled topology (enforced at
// creation time, see AssemblyError), so this terminates without needing
// a visited set in practice; one is kept anyway as a defensive measure
// against a buggy ctor that wires a self-referential input.
func (b *BaseProcessor) IsUpstream(other Processor) bool {
	visited := make(map[Processor]bool)
	var walk func(p Processor) bool
	walk = func(p Processor) bool {
		for _, in := range p.Inputs() {
			if in == other {
				return true
			}
			if visited[in] {
				continue
			}
			visited[in] = true
			if walk(in) {
				return true
			}
		}
		return false
	}
	for _, in := range b.inputs {
		if in == other || walk(in) {
			return true
		}
	}
	return false
}

func (b *BaseProcessor) AddMetric(m Metric) { b.metrics = append(b.metrics, m) }
func (b *BaseProcessor) Metrics() []Metric  { return b.metrics }

// GarbageCollect default: most processors hold no resources that need
// periodic reclamation; stateful processors override this.
func (b *BaseProcessor) GarbageCollect(tickMs int64) {}
