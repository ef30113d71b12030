package kspp

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// sanitizeFilename replaces characters that are illegal (or awkward) in
// a path segment on common filesystems, mirroring kspp's
// sanitize_filename used when computing a topology's storage path.
func sanitizeFilename(s string) string {
	r := strings.NewReplacer(
		"/", "_", "\\", "_", ":", "_", "*", "_", "?", "_",
		"\"", "_", "<", "_", ">", "_", "|", "_", " ", "_",
	)
	return r.Replace(s)
}

// Topology owns a set of partition processors and a set of sinks (§3). It
// is built by a TopologyBuilder, frozen once Start is called, and is
// driven by a single caller — its own driver thread (§5).
type Topology struct {
	appInfo     AppIdentity
	id          string
	storageRoot string

	processors []Processor
	sinks      []Sink
	topSet     []Processor

	initialized bool
	nextGCts    int64

	mu sync.Mutex
}

func newTopology(appInfo AppIdentity, id, storageRoot string) *Topology {
	return &Topology{appInfo: appInfo, id: id, storageRoot: storageRoot}
}

// Name renders "[app_identity]topology_id", used in every log line this
// topology emits — kept from the C++ original's topology_base::name().
func (t *Topology) Name() string {
	return "[" + t.appInfo.Identity() + "]" + t.id
}

func (t *Topology) ID() string { return t.id }

// StoragePath returns (and creates) <storage_root>/<app_identity>/<id>,
// sanitizing each path segment.
func (t *Topology) StoragePath() (string, error) {
	p := filepath.Join(t.storageRoot, sanitizeFilename(t.appInfo.Identity()), sanitizeFilename(t.id))
	if err := os.MkdirAll(p, 0o755); err != nil {
		Logger.Error("failed to create topology storage path", zap.String("topology", t.Name()), zap.String("path", p), zap.Error(err))
		return p, err
	}
	return p, nil
}

func (t *Topology) addProcessor(p Processor) {
	if p.IsUpstream(p) {
		panic(AssemblyError("processor " + p.Name() + " is its own upstream (cycle)"))
	}
	t.processors = append(t.processors, p)
	t.initialized = false
}

func (t *Topology) addSink(s Sink) {
	t.sinks = append(t.sinks, s)
}

// Init computes the top set: a partition processor is in it iff no other
// partition processor lists it (transitively) as an upstream (§4.5).
// Init is idempotent and is auto-invoked by Start/Commit/Flush if the
// topology was not already initialized, or if a processor was added
// since the last Init.
func (t *Topology) Init() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.init()
}

func (t *Topology) init() {
	if t.initialized {
		return
	}
	top := make([]Processor, 0, len(t.processors))
	for _, p := range t.processors {
		consumed := false
		for _, other := range t.processors {
			if other.IsUpstream(p) {
				consumed = true
				break
			}
		}
		if !consumed {
			top = append(top, p)
			Logger.Debug("adding to top set", zap.String("topology", t.Name()), zap.String("processor", p.SimpleName()))
		}
	}
	t.topSet = top
	t.initMetrics()
	t.initialized = true
}

// initMetrics stamps every processor and sink metric with its tag
// string, per §4.6.
func (t *Topology) initMetrics() {
	for _, p := range t.processors {
		tags := BuildTags(true, p.Depth(), p.KeyTypeName(), true, p.Partition(), p.SimpleName(), p.RecordTypeName(), t.id, p.ValueTypeName())
		for _, m := range p.Metrics() {
			m.SetTags(tags)
		}
	}
	for _, s := range t.sinks {
		tags := BuildTags(false, 0, s.KeyTypeName(), false, 0, s.SimpleName(), s.RecordTypeName(), t.id, s.ValueTypeName())
		for _, m := range s.Metrics() {
			m.SetTags(tags)
		}
	}
}

// ForEachMetric invokes fn for every metric owned by any processor or
// sink in this topology.
func (t *Topology) ForEachMetric(fn func(Metric)) {
	for _, p := range t.processors {
		for _, m := range p.Metrics() {
			fn(m)
		}
	}
	for _, s := range t.sinks {
		for _, m := range s.Metrics() {
			fn(m)
		}
	}
}

// EOF reports whether every member of the top set is at EOF (§3
// invariant).
func (t *Topology) EOF() bool {
	for _, p := range t.topSet {
		if !p.EOF() {
			return false
		}
	}
	return true
}

// Start fires every top-set source at its default offset policy.
func (t *Topology) Start() error { return t.startAt(OffsetDefault) }

// StartAt fires every top-set source at an explicit offset (typically
// OffsetBeginning). Internal nodes are started transitively through
// their upstream wiring (each transform's Start delegates to its input).
func (t *Topology) StartAt(offset int64) error {
	return t.startAt(offset)
}

func (t *Topology) startAt(offset int64) error {
	t.Init()
	for _, p := range t.topSet {
		if err := p.Start(offset); err != nil {
			return err
		}
	}
	return nil
}

// Commit is forwarded only to top-set nodes, which propagate it upstream
// themselves.
func (t *Topology) Commit(force bool) {
	t.Init()
	for _, p := range t.topSet {
		p.Commit(force)
	}
}

// ProcessOne runs a single pass of the run loop (§4.5):
//  1. poll every sink
//  2. poll every partition processor
//  3. back off if the aggregate sink queue exceeds BackpressureThreshold
//  4. advance every top-set node, and every sink, by one unit of work
//  5. run a GC sweep if the GC cadence has elapsed
func (t *Topology) ProcessOne() int {
	for _, s := range t.sinks {
		s.Poll(0)
	}
	for _, p := range t.processors {
		p.Poll(0)
	}

	var sinkQueueLen int
	for _, s := range t.sinks {
		sinkQueueLen += s.QueueLen()
	}
	if sinkQueueLen > BackpressureThreshold {
		return 0
	}

	tick := nowMillis()

	res := 0
	for _, p := range t.topSet {
		res += p.ProcessOne(tick)
	}
	for _, s := range t.sinks {
		res += s.ProcessOne(tick)
	}

	if tick > t.nextGCts {
		for _, p := range t.processors {
			p.GarbageCollect(tick)
		}
		for _, s := range t.sinks {
			s.GarbageCollect(tick)
		}
		t.nextGCts = tick + GCInterval
	}

	return res
}

// Flush alternates draining sinks with ProcessOne until a pass makes no
// progress, then flushes every top-set node and repeats the drain
// (§4.5). As the C++ original notes, this two-phase drain is not
// sufficient for a source→sink→source→sink→source chain: a flush of a
// sink can release new records from a broker round trip that this
// topology's own sources then need another Flush call to observe.
// Callers of such topologies must call Flush repeatedly until EOF.
func (t *Topology) Flush() {
	t.Init()
	t.drainOnce()

	for _, p := range t.topSet {
		p.Flush()
	}

	t.drainOnce()
}

func (t *Topology) drainOnce() {
	for {
		for _, s := range t.sinks {
			s.Flush()
		}
		n := t.ProcessOne()
		if n > 0 {
			continue
		}
		if !t.EOF() {
			time.Sleep(10 * time.Millisecond)
			continue
		}
		return
	}
}

// Close tears down every partition processor, then every sink.
func (t *Topology) Close() error {
	var firstErr error
	for _, p := range t.processors {
		if err := p.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	for _, s := range t.sinks {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	Logger.Info("topology closed", zap.String("topology", t.Name()))
	return firstErr
}
