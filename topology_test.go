package kspp

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

type countingProcessor struct {
	BaseProcessor
	processOneCalls int
	gcCalls         int
}

func (p *countingProcessor) EOF() bool            { return true }
func (p *countingProcessor) Poll(int64)           {}
func (p *countingProcessor) ProcessOne(int64) int { p.processOneCalls++; return 1 }
func (p *countingProcessor) Flush()               {}
func (p *countingProcessor) Commit(bool)          {}
func (p *countingProcessor) Start(int64) error    { return nil }
func (p *countingProcessor) Close() error         { return nil }
func (p *countingProcessor) GarbageCollect(tickMs int64) {
	p.gcCalls++
	p.BaseProcessor.GarbageCollect(tickMs)
}

type controllableSink struct {
	BaseProcessor
	queueLen        int
	processOneCalls int
}

func (s *controllableSink) QueueLen() int        { return s.queueLen }
func (s *controllableSink) EOF() bool            { return s.queueLen == 0 }
func (s *controllableSink) Poll(int64)           {}
func (s *controllableSink) ProcessOne(int64) int { s.processOneCalls++; return 0 }
func (s *controllableSink) Flush()               {}
func (s *controllableSink) Commit(bool)          {}
func (s *controllableSink) Start(int64) error    { return nil }
func (s *controllableSink) Close() error         { return nil }

// TestBackpressure checks that once the aggregate sink queue length
// exceeds BackpressureThreshold, ProcessOne returns 0 without advancing
// any top-set processor; once the sink drains, progress resumes.
func TestBackpressure(t *testing.T) {
	topo := newTestBuilder(t).CreateTopology("backpressure")

	src := &countingProcessor{BaseProcessor: InitBase("src", "stub", "void", "void", "void", NoPartition)}
	topo.addProcessor(src)

	sink := &controllableSink{BaseProcessor: InitBase("sink", "stub", "void", "void", "void", NoPartition), queueLen: BackpressureThreshold + 1}
	topo.addSink(sink)
	topo.Init()

	n := topo.ProcessOne()
	require.Equal(t, 0, n)
	require.Equal(t, 0, src.processOneCalls)
	require.Equal(t, 0, sink.processOneCalls)

	sink.queueLen = BackpressureThreshold - 1
	topo.ProcessOne()
	require.Equal(t, 1, src.processOneCalls)
	require.Equal(t, 1, sink.processOneCalls)
}

// TestGCCadence checks garbage_collect runs on the first pass and is not
// re-run on an immediately following pass, since GCInterval has not
// elapsed.
func TestGCCadence(t *testing.T) {
	topo := newTestBuilder(t).CreateTopology("gc")

	stub := &countingProcessor{BaseProcessor: InitBase("gc", "stub", "void", "void", "void", NoPartition)}
	topo.addProcessor(stub)
	topo.Init()

	topo.ProcessOne()
	require.Equal(t, 1, stub.gcCalls)

	topo.ProcessOne()
	require.Equal(t, 1, stub.gcCalls, "a second pass within GCInterval must not re-run garbage collection")
}

// TestFlushDrainsToEOF checks that after flush() on a topology with only
// stateless transforms and a bounded source, eof() is true and every
// sink's queue_len() is 0.
func TestFlushDrainsToEOF(t *testing.T) {
	topo := newTestBuilder(t).CreateTopology("flusheof")

	topic := &fakeTopic{}
	topic.append(BrokerMessage{ValueBytes: []byte("one")})
	topic.append(BrokerMessage{ValueBytes: []byte("two")})

	sources := CreateSources(topo, Partitions(1), func(partition int32) *PartitionSource[Void, string] {
		return NewPartitionSource[Void, string]("src", "t", partition, &fakeConsumer{topic: topic}, VoidCodec{}, TextCodec{}, PartitionSourcePolicy{})
	})

	var buf bytes.Buffer
	CreateSinkFrom[Void, string](topo, Upstream[Void, string](sources[0]), func() *StreamSink[Void, string] {
		return NewStreamSink[Void, string]("out", 0, &buf, nil)
	})

	require.NoError(t, topo.StartAt(OffsetBeginning))
	topo.Flush()

	require.True(t, topo.EOF())
	for _, s := range topo.sinks {
		require.Zero(t, s.QueueLen())
	}
	require.Equal(t, "one\ntwo\n", buf.String())

	// Flush is idempotent on an eof topology.
	require.NotPanics(t, func() { topo.Flush() })
	require.True(t, topo.EOF())
}

// TestCloseAfterFlushRejectsProduce is the "close after flush produces
// no further produce calls" law.
func TestCloseAfterFlushRejectsProduce(t *testing.T) {
	topo := newTestBuilder(t).CreateTopology("closeproduce")

	var buf bytes.Buffer
	sink := CreateSink(topo, func() *StreamSink[Void, string] {
		return NewStreamSink[Void, string]("out", NoPartition, &buf, nil)
	})

	require.NoError(t, sink.Produce(Void{}, "hello"))
	topo.Flush()
	require.NoError(t, topo.Close())

	require.Error(t, sink.Produce(Void{}, "too late"))
}
