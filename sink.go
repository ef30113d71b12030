package kspp

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Sink is the engine-facing contract for a processor whose output leaves
// the topology (§4.4). Sinks are never members of the top set: the
// topology drives them directly, as a group, on every pass (§4.5).
type Sink interface {
	Processor
	// QueueLen is the number of records produced but not yet delivered.
	// Monotone non-decreasing on Produce, decreasing as delivery
	// completes.
	QueueLen() int
}

// BufferedSink implements the buffering, flush and close bookkeeping
// every sink in this package shares; concrete sinks embed it and supply
// deliver (the actual I/O) plus the identity fields via BaseProcessor.
type BufferedSink[K, V any] struct {
	BaseProcessor

	mu     sync.Mutex
	queue  []*Record[K, V]
	closed bool

	// deliver is invoked by ProcessOne for the oldest queued record. It
	// must not block; returning false means "try again next call" (the
	// record stays at the head of the queue).
	deliver func(r *Record[K, V]) bool
}

func newBufferedSink[K, V any](base BaseProcessor, deliver func(r *Record[K, V]) bool) BufferedSink[K, V] {
	return BufferedSink[K, V]{BaseProcessor: base, deliver: deliver}
}

// Receive implements Receiver[K, V]: an upstream partition processor
// fanning out to this sink enqueues here exactly like Produce does.
func (s *BufferedSink[K, V]) Receive(r *Record[K, V]) { s.produce(r) }

// Produce enqueues a new record, outside of the engine's normal forward
// chain (e.g. scenario 1's standalone broker sink). Rejected once the
// sink has been closed.
func (s *BufferedSink[K, V]) Produce(key K, value V) error {
	return s.produce(NewRecord(key, value))
}

func (s *BufferedSink[K, V]) produce(r *Record[K, V]) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("kspp: produce on closed sink %s", s.Name())
	}
	s.queue = append(s.queue, r)
	return nil
}

func (s *BufferedSink[K, V]) QueueLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

func (s *BufferedSink[K, V]) EOF() bool { return s.QueueLen() == 0 }

// Poll is a no-op for in-process sinks (StreamSink); broker-backed sinks
// override it to drain delivery callbacks.
func (s *BufferedSink[K, V]) Poll(maxWaitMs int64) {}

// ProcessOne attempts to deliver the oldest queued record.
func (s *BufferedSink[K, V]) ProcessOne(tickMs int64) int {
	s.mu.Lock()
	if len(s.queue) == 0 {
		s.mu.Unlock()
		return 0
	}
	head := s.queue[0]
	s.mu.Unlock()

	if !s.deliver(head) {
		return 0
	}

	s.mu.Lock()
	s.queue = s.queue[1:]
	s.mu.Unlock()
	return 1
}

// Flush blocks until the queue drains or the sink is closed.
func (s *BufferedSink[K, V]) Flush() {
	for {
		if s.QueueLen() == 0 {
			return
		}
		s.mu.Lock()
		closed := s.closed
		s.mu.Unlock()
		if closed {
			return
		}
		if s.ProcessOne(nowMillis()) == 0 {
			time.Sleep(10 * time.Millisecond)
		}
	}
}

func (s *BufferedSink[K, V]) Commit(force bool)        {}
func (s *BufferedSink[K, V]) Start(offset int64) error { return nil }

// Close flushes then tears the sink down; further Produce calls are
// rejected.
func (s *BufferedSink[K, V]) Close() error {
	s.Flush()
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

// StreamSink writes each record's textual form to an io.Writer — the Go
// analogue of kspp's stream_sink, used by the canonical word-split
// example to capture output in an in-memory buffer for assertions.
type StreamSink[K, V any] struct {
	BufferedSink[K, V]
	w      io.Writer
	format func(r *Record[K, V]) string
}

// NewStreamSink writes the record using format, or, if format is nil,
// fmt.Sprintf("%v", record.Value), one line per record.
func NewStreamSink[K, V any](name string, partition int32, w io.Writer, format func(r *Record[K, V]) string) *StreamSink[K, V] {
	if format == nil {
		format = func(r *Record[K, V]) string { return fmt.Sprintf("%v", r.Value) }
	}
	kt, vt := typeName[K](), typeName[V]()
	s := &StreamSink[K, V]{w: w, format: format}
	s.BufferedSink = newBufferedSink[K, V](
		InitBase(name, "stream_sink", kt, vt, recordTypeName(kt, vt), partition),
		s.write,
	)
	return s
}

func (s *StreamSink[K, V]) write(r *Record[K, V]) bool {
	fmt.Fprintln(s.w, s.format(r))
	return true
}
