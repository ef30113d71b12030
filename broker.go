package kspp

// BrokerMessage is one record as delivered by a BrokerConsumer, still in
// wire form — key/value decoding happens in PartitionSource, not here.
type BrokerMessage struct {
	KeyBytes    []byte
	ValueBytes  []byte
	Offset      int64
	TimestampMs int64
}

// BrokerConsumer is the broker collaborator a PartitionSource polls:
// per-partition subscribe at an offset, non-blocking poll returning
// whatever records are already available plus an EOF indicator, and
// offset commit. The kafka subpackage supplies the production
// implementation, backed by github.com/IBM/sarama; tests use an
// in-memory fake.
type BrokerConsumer interface {
	// Subscribe positions the consumer at offset (a literal offset or one
	// of the Offset* sentinels) for one topic/partition.
	Subscribe(topic string, partition int32, offset int64) error
	// Poll returns whatever records are already available without
	// blocking past maxWaitMs, plus whether the broker has reported end
	// of partition.
	Poll(maxWaitMs int64) (msgs []BrokerMessage, eof bool, err error)
	// CommitOffset persists offset as the last processed offset.
	// Non-forced commits may be coalesced by the implementation.
	CommitOffset(offset int64, force bool) error
	Close() error
}

// BrokerProducer is the broker collaborator a broker-backed sink
// delivers through: produce with key/value bytes and a partition, an
// optional delivery callback, and a non-blocking poll that progresses
// those callbacks.
type BrokerProducer interface {
	// Produce enqueues one record for delivery. onDelivery, if non-nil,
	// is invoked (from a later Poll) once delivery succeeds or fails.
	Produce(topic string, partition int32, keyBytes, valueBytes []byte, onDelivery func(err error)) error
	// Poll progresses delivery callbacks without blocking past maxWaitMs.
	Poll(maxWaitMs int64)
	Close() error
}
