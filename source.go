package kspp

import (
	"time"

	"go.uber.org/zap"
)

// PartitionSource reads from one broker partition, deserializes via its
// key/value codecs, and emits typed records downstream in declared
// order, synchronously (§4.2, component C3). One instance is created per
// partition number (see CreateSources).
type PartitionSource[K, V any] struct {
	BaseProcessor
	Fanout[K, V]

	topic      string
	consumer   BrokerConsumer
	keyCodec   Codec[K]
	valueCodec Codec[V]

	commitCadence time.Duration
	failFast      bool

	pending    []BrokerMessage
	eofReached bool
	failed     bool
	lastOffset int64
	hasOffset  bool
	lastCommit time.Time
}

// PartitionSourcePolicy configures the error-handling and commit-cadence
// behavior of a PartitionSource (§7): FailFast governs codec-error and
// fatal-broker-error handling, CommitCadence governs how often a
// non-forced Commit actually talks to the broker.
type PartitionSourcePolicy struct {
	FailFast      bool
	CommitCadence time.Duration
}

// NewPartitionSource builds a source for one partition of topic, reading
// through consumer and decoding with keyCodec/valueCodec.
func NewPartitionSource[K, V any](name, topic string, partition int32, consumer BrokerConsumer, keyCodec Codec[K], valueCodec Codec[V], policy PartitionSourcePolicy) *PartitionSource[K, V] {
	kt, vt := keyCodec.Name(), valueCodec.Name()
	cadence := policy.CommitCadence
	if cadence <= 0 {
		cadence = time.Second
	}
	return &PartitionSource[K, V]{
		BaseProcessor: InitBase(name, "kafka_source", kt, vt, recordTypeName(kt, vt), partition),
		topic:         topic,
		consumer:      consumer,
		keyCodec:      keyCodec,
		valueCodec:    valueCodec,
		commitCadence: cadence,
		failFast:      policy.FailFast,
	}
}

// Start positions the underlying consumer. offset == OffsetDefault maps
// to OffsetStored (resume from the last commit, or the broker's own
// default for a fresh consumer group).
func (s *PartitionSource[K, V]) Start(offset int64) error {
	if offset == OffsetDefault {
		offset = OffsetStored
	}
	if err := s.consumer.Subscribe(s.topic, s.Partition(), offset); err != nil {
		Logger.Error("failed to start partition source", zap.String("processor", s.Name()), zap.Error(err))
		return &FatalBrokerError{Topic: s.topic, Partition: s.Partition(), Err: err}
	}
	return nil
}

// Poll fetches whatever is already available from the broker without
// blocking past maxWaitMs and appends it to the internal pending buffer.
func (s *PartitionSource[K, V]) Poll(maxWaitMs int64) {
	if s.failed {
		return
	}
	msgs, eof, err := s.consumer.Poll(maxWaitMs)
	if err != nil {
		Logger.Error("broker poll failed", zap.String("processor", s.Name()), zap.Error(err))
		if s.failFast {
			s.failed = true
		}
		return
	}
	s.pending = append(s.pending, msgs...)
	if eof || len(msgs) > 0 {
		s.eofReached = eof
	}
}

// EOF is true once the broker has reported end of partition and the
// local pending buffer has been fully drained; it flips back to false as
// soon as Poll observes new records (§4.2).
func (s *PartitionSource[K, V]) EOF() bool {
	return (s.eofReached || s.failed) && len(s.pending) == 0
}

// ProcessOne deserializes at most one pending record and pushes it
// downstream (§4.2). A codec failure is logged and the record skipped —
// the offset still advances — unless FailFast is set, in which case the
// source transitions to the failed state (§7 error kind 5).
func (s *PartitionSource[K, V]) ProcessOne(tickMs int64) int {
	if s.failed || len(s.pending) == 0 {
		return 0
	}
	msg := s.pending[0]
	s.pending = s.pending[1:]
	s.lastOffset = msg.Offset
	s.hasOffset = true

	key, err := s.keyCodec.Decode(msg.KeyBytes)
	if err == nil {
		var value V
		value, err = s.valueCodec.Decode(msg.ValueBytes)
		if err == nil {
			r := &Record[K, V]{
				Key: key, Value: value,
				TimestampMs:  msg.TimestampMs,
				HasOffset:    true,
				Offset:       msg.Offset,
				HasPartition: true,
				Partition:    s.Partition(),
			}
			s.emit(r)
			return 1
		}
	}

	cerr := &CodecError{Topic: s.topic, Partition: s.Partition(), Offset: msg.Offset, Err: err}
	Logger.Error("codec error, skipping record", zap.String("processor", s.Name()), zap.Error(cerr))
	if s.failFast {
		s.failed = true
	}
	return 1
}

// Flush is a no-op: a source has nothing of its own to drain once its
// pending buffer is empty — draining it is the run loop's job.
func (s *PartitionSource[K, V]) Flush() {}

// Commit persists s.lastOffset. Non-forced commits are coalesced to the
// configured commit cadence.
func (s *PartitionSource[K, V]) Commit(force bool) {
	if !s.hasOffset {
		return
	}
	if !force && time.Since(s.lastCommit) < s.commitCadence {
		return
	}
	if err := s.consumer.CommitOffset(s.lastOffset, force); err != nil {
		Logger.Error("commit failed", zap.String("processor", s.Name()), zap.Error(err))
		return
	}
	s.lastCommit = time.Now()
}

func (s *PartitionSource[K, V]) Close() error {
	return s.consumer.Close()
}
