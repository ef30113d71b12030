package kspp

import "fmt"

// ConfigError reports a contradictory or missing required cluster
// configuration option. It is returned by ClusterConfig.Validate and must
// be resolved before any topology is started.
type ConfigError string

func (e ConfigError) Error() string {
	return "kspp: configuration error: " + string(e)
}

// AssemblyError reports a wiring mistake caught while a topology is being
// built: a cycle in the declared upstream graph. (A key/value type
// mismatch across an edge is rejected by the Go compiler, since edges are
// generic.) Assembly errors are programming errors, not runtime
// conditions, so the helpers that register partition processors
// (CreateProcessors, CreateSources) panic with one rather than returning
// it.
type AssemblyError string

func (e AssemblyError) Error() string {
	return "kspp: assembly error: " + string(e)
}

// CodecError reports a serialization or deserialization failure for one
// record (BrokerSink returns one when encoding fails). The
// offending record is identified by topic, partition and offset so the
// source can log-and-skip it under the default error policy (see
// PartitionSourcePolicy.FailFast).
type CodecError struct {
	Topic     string
	Partition int32
	Offset    int64
	Err       error
}

func (e *CodecError) Error() string {
	return fmt.Sprintf("kspp: codec error consuming %s/%d@%d: %s", e.Topic, e.Partition, e.Offset, e.Err)
}

func (e *CodecError) Unwrap() error { return e.Err }

// FatalBrokerError reports a broker failure that cannot be retried
// (authentication, a missing topic with auto-create disabled, ...).
// PartitionSource.Start returns one when subscribing fails, and
// Topology.Start/StartAt pass it on to the caller; the Topology keeps no
// failed state of its own.
type FatalBrokerError struct {
	Topic     string
	Partition int32
	Err       error
}

func (e *FatalBrokerError) Error() string {
	return fmt.Sprintf("kspp: fatal broker error on %s/%d: %s", e.Topic, e.Partition, e.Err)
}

func (e *FatalBrokerError) Unwrap() error { return e.Err }

// SinkDeliveryError reports a sink delivery failure surfaced by a
// delivery callback after the broker client has exhausted its own
// retries. BrokerSink logs it; under FailFast the sink also marks itself
// failed. The Topology does not stop on it, and delivery failures are not
// counted.
type SinkDeliveryError struct {
	Topic     string
	Partition int32
	Err       error
}

func (e *SinkDeliveryError) Error() string {
	return fmt.Sprintf("kspp: sink delivery error on %s/%d: %s", e.Topic, e.Partition, e.Err)
}

func (e *SinkDeliveryError) Unwrap() error { return e.Err }
