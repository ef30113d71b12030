package kspp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestBuilder(t *testing.T) *TopologyBuilder {
	t.Helper()
	cfg := NewClusterConfig()
	b, err := NewTopologyBuilder("depthtest", "", cfg)
	require.NoError(t, err)
	return b
}

// TestDepthInvariant checks depth(n) == max(depth(inputs(n))) + 1 across a
// three-stage chain.
func TestDepthInvariant(t *testing.T) {
	topo := newTestBuilder(t).CreateTopology("depth")

	sources := CreateSources(topo, Partitions(1), func(partition int32) *PartitionSource[Void, string] {
		return NewPartitionSource[Void, string]("src", "t", partition, &fakeConsumer{topic: &fakeTopic{}}, VoidCodec{}, TextCodec{}, PartitionSourcePolicy{})
	})
	require.Equal(t, 0, sources[0].Depth())

	filters := CreateProcessors[Void, string](topo, AsUpstreams[Void, string](sources), func(u Upstream[Void, string]) *Filter[Void, string] {
		return NewFilter[Void, string]("f1", u, func(*Record[Void, string]) bool { return true })
	})
	require.Equal(t, 1, filters[0].Depth())

	pipes := CreateProcessors[Void, string](topo, AsUpstreams[Void, string](filters), func(u Upstream[Void, string]) *Pipe[Void, string] {
		return NewPipe[Void, string]("p1", u)
	})
	require.Equal(t, 2, pipes[0].Depth())
}

// TestTopSetInvariant checks the top set equals the nodes that are not an
// input of any other partition processor.
func TestTopSetInvariant(t *testing.T) {
	topo := newTestBuilder(t).CreateTopology("topset")

	sources := CreateSources(topo, Partitions(1), func(partition int32) *PartitionSource[Void, string] {
		return NewPartitionSource[Void, string]("src", "t", partition, &fakeConsumer{topic: &fakeTopic{}}, VoidCodec{}, TextCodec{}, PartitionSourcePolicy{})
	})
	filters := CreateProcessors[Void, string](topo, AsUpstreams[Void, string](sources), func(u Upstream[Void, string]) *Filter[Void, string] {
		return NewFilter[Void, string]("f1", u, func(*Record[Void, string]) bool { return true })
	})

	topo.Init()
	require.Len(t, topo.topSet, 1)
	require.Same(t, Processor(filters[0]), topo.topSet[0])

	for _, p := range topo.processors {
		if p == Processor(filters[0]) {
			continue
		}
		require.True(t, filters[0].IsUpstream(p), "every non-top-set node must be upstream of the top-set node")
	}
}

// stubProcessor is a minimal hand-wired Processor, used only to rig a
// self-referential upstream list directly (the public constructors
// cannot produce one: a node's Inputs are fixed, to the nodes that
// already exist, at construction time).
type stubProcessor struct {
	BaseProcessor
}

func (s *stubProcessor) EOF() bool            { return true }
func (s *stubProcessor) Poll(int64)           {}
func (s *stubProcessor) ProcessOne(int64) int { return 0 }
func (s *stubProcessor) Flush()               {}
func (s *stubProcessor) Commit(bool)          {}
func (s *stubProcessor) Start(int64) error    { return nil }
func (s *stubProcessor) Close() error         { return nil }

// TestCycleRejected checks that registering a processor whose upstream
// list transitively contains itself panics with an AssemblyError before
// the topology can start.
func TestCycleRejected(t *testing.T) {
	topo := newTestBuilder(t).CreateTopology("cycle")

	a := &stubProcessor{BaseProcessor: InitBase("a", "stub", "void", "void", "void", NoPartition)}
	b := &stubProcessor{BaseProcessor: InitBase("b", "stub", "void", "void", "void", NoPartition, a)}
	a.inputs = []Processor{b}

	require.True(t, a.IsUpstream(a))
	require.PanicsWithValue(t, AssemblyError("processor a is its own upstream (cycle)"), func() {
		topo.addProcessor(a)
	})
}
