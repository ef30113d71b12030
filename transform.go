package kspp

// Upstream is what CreateProcessors wires a new node's input to: the
// engine-level Processor contract, plus the ability to subscribe a
// strongly-typed downstream Receiver. Every node type in this package
// (PartitionSource, Filter, FlatMap, Pipe) satisfies it for its own K, V.
type Upstream[K, V any] interface {
	Processor
	Subscribe(r Receiver[K, V])
}

// Filter forwards a record downstream iff predicate(record) is true. It
// never produces new records and preserves order (§4.3).
type Filter[K, V any] struct {
	BaseProcessor
	Fanout[K, V]
	input     Upstream[K, V]
	predicate func(*Record[K, V]) bool
}

// NewFilter builds a Filter reading from upstream. name must be unique
// within the owning topology.
func NewFilter[K, V any](name string, upstream Upstream[K, V], predicate func(*Record[K, V]) bool) *Filter[K, V] {
	kt, vt := typeName[K](), typeName[V]()
	f := &Filter[K, V]{
		BaseProcessor: InitBase(name, "filter", kt, vt, recordTypeName(kt, vt), upstream.Partition(), upstream),
		input:         upstream,
		predicate:     predicate,
	}
	upstream.Subscribe(f)
	return f
}

func (f *Filter[K, V]) Receive(r *Record[K, V]) {
	if f.predicate(r) {
		f.emit(r)
	}
}

func (f *Filter[K, V]) EOF() bool            { return f.input.EOF() }
func (f *Filter[K, V]) Poll(maxWaitMs int64) {}
func (f *Filter[K, V]) ProcessOne(tickMs int64) int {
	return f.input.ProcessOne(tickMs)
}
func (f *Filter[K, V]) Flush()                   { f.input.Flush() }
func (f *Filter[K, V]) Commit(force bool)        { f.input.Commit(force) }
func (f *Filter[K, V]) Start(offset int64) error { return f.input.Start(offset) }
func (f *Filter[K, V]) Close() error             { return nil }

// FlatMap invokes fn(record, emit) for every inbound record; fn pushes
// zero or more records of a possibly different key/value type downstream
// in the order it pushes them (§4.3). The per-partition total order of
// inputs is preserved.
type FlatMap[K, V, K2, V2 any] struct {
	BaseProcessor
	Fanout[K2, V2]
	input Upstream[K, V]
	fn    func(r *Record[K, V], emit func(*Record[K2, V2]))
}

func NewFlatMap[K, V, K2, V2 any](name string, upstream Upstream[K, V], fn func(r *Record[K, V], emit func(*Record[K2, V2]))) *FlatMap[K, V, K2, V2] {
	kt, vt := typeName[K2](), typeName[V2]()
	m := &FlatMap[K, V, K2, V2]{
		BaseProcessor: InitBase(name, "flat_map", kt, vt, recordTypeName(kt, vt), upstream.Partition(), upstream),
		input:         upstream,
		fn:            fn,
	}
	upstream.Subscribe(m)
	return m
}

func (m *FlatMap[K, V, K2, V2]) Receive(r *Record[K, V]) {
	m.fn(r, m.emit)
}

func (m *FlatMap[K, V, K2, V2]) EOF() bool                   { return m.input.EOF() }
func (m *FlatMap[K, V, K2, V2]) Poll(maxWaitMs int64)        {}
func (m *FlatMap[K, V, K2, V2]) ProcessOne(tickMs int64) int { return m.input.ProcessOne(tickMs) }
func (m *FlatMap[K, V, K2, V2]) Flush()                      { m.input.Flush() }
func (m *FlatMap[K, V, K2, V2]) Commit(force bool)           { m.input.Commit(force) }
func (m *FlatMap[K, V, K2, V2]) Start(offset int64) error    { return m.input.Start(offset) }
func (m *FlatMap[K, V, K2, V2]) Close() error                { return nil }

// Pipe is an identity forwarder that additionally exposes Produce, an
// out-of-band injection entry point for records that did not arrive
// through the topology's normal upstream chain (§4.3). Injected records
// carry the Pipe's own partition and are forwarded immediately,
// synchronously, the same way records arriving through Receive are.
type Pipe[K, V any] struct {
	BaseProcessor
	Fanout[K, V]
	input Upstream[K, V]
}

func NewPipe[K, V any](name string, upstream Upstream[K, V]) *Pipe[K, V] {
	kt, vt := typeName[K](), typeName[V]()
	p := &Pipe[K, V]{
		BaseProcessor: InitBase(name, "pipe", kt, vt, recordTypeName(kt, vt), upstream.Partition(), upstream),
		input:         upstream,
	}
	upstream.Subscribe(p)
	return p
}

func (p *Pipe[K, V]) Receive(r *Record[K, V]) { p.emit(r) }

// Produce injects a record out of band, outside of the engine's
// process_one scheduling, forwarding it to every current subscriber
// immediately.
func (p *Pipe[K, V]) Produce(key K, value V) {
	r := NewRecord(key, value)
	r.HasPartition = true
	r.Partition = p.Partition()
	p.emit(r)
}

func (p *Pipe[K, V]) EOF() bool                   { return p.input.EOF() }
func (p *Pipe[K, V]) Poll(maxWaitMs int64)        {}
func (p *Pipe[K, V]) ProcessOne(tickMs int64) int { return p.input.ProcessOne(tickMs) }
func (p *Pipe[K, V]) Flush()                      { p.input.Flush() }
func (p *Pipe[K, V]) Commit(force bool)           { p.input.Commit(force) }
func (p *Pipe[K, V]) Start(offset int64) error    { return p.input.Start(offset) }
func (p *Pipe[K, V]) Close() error                { return nil }
