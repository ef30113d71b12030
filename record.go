package kspp

import "time"

// Void stands in for kspp's void/unit key or value type: a partition
// processor whose key or value carries no payload uses Void, and its
// codec encodes it to no bytes (see VoidCodec).
type Void = struct{}

// Record is the unit of data flowing across every edge of a topology. A
// Record is immutable once it leaves the processor that created it: it
// may be fanned out to several downstream subscribers and must outlive
// all of them, so nothing downstream of Emit may mutate Key or Value.
type Record[K, V any] struct {
	Key   K
	Value V

	// TimestampMs is milliseconds since the Unix epoch.
	TimestampMs int64

	// HasOffset/Offset and HasPartition/Partition are set for records
	// that originated from a broker partition; records synthesized by a
	// transform (flat_map) carry neither, and records injected via
	// Pipe.Produce carry the Pipe's partition but no offset.
	HasOffset    bool
	Offset       int64
	HasPartition bool
	Partition    int32
}

// NewRecord builds a Record with the current wall-clock timestamp and no
// source offset/partition, the shape used for records synthesized inside
// the topology (flat_map output, pipe injection).
func NewRecord[K, V any](key K, value V) *Record[K, V] {
	return &Record[K, V]{Key: key, Value: value, TimestampMs: nowMillis()}
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}

// Partitions returns the partition numbers [0, n), the helper
// CreateSources uses to instantiate one partition processor per partition
// of a topic. It mirrors kspp::get_partition_list: the broker's reported
// partition count is assumed stable for the lifetime of the topology.
func Partitions(n int32) []int32 {
	out := make([]int32, n)
	for i := range out {
		out[i] = int32(i)
	}
	return out
}
