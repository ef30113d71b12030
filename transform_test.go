package kspp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// recorder is a minimal Receiver that appends every record it sees, used
// to assert on the order and content of what a node emits.
type recorder[K, V any] struct {
	values []V
}

func (r *recorder[K, V]) Receive(rec *Record[K, V]) {
	r.values = append(r.values, rec.Value)
}

// TestFilterSubsequence checks that, for any source and downstream
// filter, the sequence of records observed downstream is a subsequence
// of the source sequence with order preserved.
func TestFilterSubsequence(t *testing.T) {
	topic := &fakeTopic{}
	for _, v := range []string{"a", "bb", "ccc", "d", "eeee", "f"} {
		topic.append(BrokerMessage{ValueBytes: []byte(v)})
	}

	topo := newTestBuilder(t).CreateTopology("subseq")
	sources := CreateSources(topo, Partitions(1), func(partition int32) *PartitionSource[Void, string] {
		return NewPartitionSource[Void, string]("src", "t", partition, &fakeConsumer{topic: topic}, VoidCodec{}, TextCodec{}, PartitionSourcePolicy{})
	})
	filter := NewFilter[Void, string]("longer-than-one", sources[0], func(r *Record[Void, string]) bool {
		return len(r.Value) > 1
	})

	rec := &recorder[Void, string]{}
	filter.Subscribe(rec)

	require.NoError(t, topo.StartAt(OffsetBeginning))
	topo.Flush()

	require.Equal(t, []string{"bb", "ccc", "eeee"}, rec.values)
}

// TestFlatMapIdentity checks that, for flat_map with identity emission,
// the downstream sequence equals the source sequence.
func TestFlatMapIdentity(t *testing.T) {
	topic := &fakeTopic{}
	for _, v := range []string{"x", "y", "z"} {
		topic.append(BrokerMessage{ValueBytes: []byte(v)})
	}

	topo := newTestBuilder(t).CreateTopology("identity")
	sources := CreateSources(topo, Partitions(1), func(partition int32) *PartitionSource[Void, string] {
		return NewPartitionSource[Void, string]("src", "t", partition, &fakeConsumer{topic: topic}, VoidCodec{}, TextCodec{}, PartitionSourcePolicy{})
	})
	identity := NewFlatMap[Void, string, Void, string]("identity", sources[0], func(r *Record[Void, string], emit func(*Record[Void, string])) {
		emit(r)
	})

	rec := &recorder[Void, string]{}
	identity.Subscribe(rec)

	require.NoError(t, topo.StartAt(OffsetBeginning))
	topo.Flush()

	require.Equal(t, []string{"x", "y", "z"}, rec.values)
}

// TestFanoutOrdering checks that two filters attached to the same
// flat_map observe records, for those that pass both, in the same order
// as they left flat_map.
func TestFanoutOrdering(t *testing.T) {
	topic := &fakeTopic{}
	for _, v := range []string{"1", "2", "3", "4", "5", "6"} {
		topic.append(BrokerMessage{ValueBytes: []byte(v)})
	}

	topo := newTestBuilder(t).CreateTopology("fanout")
	sources := CreateSources(topo, Partitions(1), func(partition int32) *PartitionSource[Void, string] {
		return NewPartitionSource[Void, string]("src", "t", partition, &fakeConsumer{topic: topic}, VoidCodec{}, TextCodec{}, PartitionSourcePolicy{})
	})
	pass := NewFlatMap[Void, string, Void, string]("pass", sources[0], func(r *Record[Void, string], emit func(*Record[Void, string])) {
		emit(r)
	})

	var recA, recB []string
	filterA := NewFilter[Void, string]("even", pass, func(r *Record[Void, string]) bool {
		return (r.Value[0]-'0')%2 == 0
	})
	filterA.Subscribe(&sliceReceiver[Void, string]{out: &recA})
	filterB := NewFilter[Void, string]("even-again", pass, func(r *Record[Void, string]) bool {
		return (r.Value[0]-'0')%2 == 0
	})
	filterB.Subscribe(&sliceReceiver[Void, string]{out: &recB})

	require.NoError(t, topo.StartAt(OffsetBeginning))
	topo.Flush()

	require.Equal(t, []string{"2", "4", "6"}, recA)
	require.Equal(t, recA, recB)
}

type sliceReceiver[K, V any] struct {
	out *[]V
}

func (s *sliceReceiver[K, V]) Receive(r *Record[K, V]) {
	*s.out = append(*s.out, r.Value)
}
