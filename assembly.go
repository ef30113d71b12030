package kspp

// SinkFor is the contract a sink satisfies when it is wired to an
// upstream partition processor (CreateSinkFrom): the engine-facing Sink
// contract, plus the ability to receive K/V records off that edge.
type SinkFor[K, V any] interface {
	Sink
	Receiver[K, V]
}

// CreateSources instantiates one processor per partition, the Go
// analogue of kspp's create_processors<P>(partition_list, ...) applied
// to a source type: there is no upstream, so ctor only needs the
// partition number.
func CreateSources[P Processor](t *Topology, partitions []int32, ctor func(partition int32) P) []P {
	result := make([]P, 0, len(partitions))
	for _, p := range partitions {
		proc := ctor(p)
		t.addProcessor(proc)
		result = append(result, proc)
	}
	return result
}

// CreateProcessors instantiates one P per upstream, wiring each as that
// upstream's subscriber (ctor is expected to call upstream.Subscribe,
// which NewFilter/NewFlatMap/NewPipe already do). This is the Go
// analogue of create_processors<P>(upstreams, ...).
func CreateProcessors[K, V any, P Processor](t *Topology, upstreams []Upstream[K, V], ctor func(upstream Upstream[K, V]) P) []P {
	result := make([]P, 0, len(upstreams))
	for _, u := range upstreams {
		p := ctor(u)
		t.addProcessor(p)
		result = append(result, p)
	}
	return result
}

// CreateSink inserts a standalone sink (no upstream partition processor
// — records arrive only via its own Produce method) into the topology's
// sink set. This is the Go analogue of create_sink<S>(...).
func CreateSink[S Sink](t *Topology, ctor func() S) S {
	s := ctor()
	t.addSink(s)
	return s
}

// CreateSinkFrom inserts a sink wired to an upstream partition processor
// into the topology's sink set, subscribing it to that upstream.
func CreateSinkFrom[K, V any, S SinkFor[K, V]](t *Topology, upstream Upstream[K, V], ctor func() S) S {
	s := ctor()
	upstream.Subscribe(s)
	t.addSink(s)
	return s
}

// AsUpstreams widens a slice of a concrete Upstream[K, V] implementation
// to a slice of the interface, so it can be passed to CreateProcessors —
// Go does not implicitly convert []P to []Upstream[K, V] even when every
// P satisfies it.
func AsUpstreams[K, V any, P Upstream[K, V]](ps []P) []Upstream[K, V] {
	out := make([]Upstream[K, V], len(ps))
	for i, p := range ps {
		out[i] = p
	}
	return out
}
