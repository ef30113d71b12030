package kafka

import (
	"fmt"
	"time"

	"github.com/IBM/sarama"

	kspp "github.com/gitter-badger/kspp-go"
)

// PartitionConsumer implements kspp.BrokerConsumer over a real
// sarama.Consumer. It adapts sarama's channel-based delivery
// (Messages()/Errors()) to the engine's non-blocking Poll contract, and
// uses a sarama.OffsetManager to resume from the last committed offset
// when asked for OffsetStored.
type PartitionConsumer struct {
	consumer  sarama.Consumer
	offsetMgr sarama.OffsetManager

	topic     string
	partition int32

	pc  sarama.PartitionConsumer
	pom sarama.PartitionOffsetManager

	highWatermark int64
}

// NewPartitionConsumer wraps consumer (and, if non-nil, offsetMgr for
// stored-offset resume and commit) in the BrokerConsumer contract.
func NewPartitionConsumer(consumer sarama.Consumer, offsetMgr sarama.OffsetManager) *PartitionConsumer {
	return &PartitionConsumer{consumer: consumer, offsetMgr: offsetMgr}
}

func (c *PartitionConsumer) Subscribe(topic string, partition int32, offset int64) error {
	if c.offsetMgr != nil {
		pom, err := c.offsetMgr.ManagePartition(topic, partition)
		if err != nil {
			return fmt.Errorf("kafka: managing offset for %s/%d: %w", topic, partition, err)
		}
		c.pom = pom
	}

	startOffset := offset
	switch offset {
	case kspp.OffsetBeginning:
		startOffset = sarama.OffsetOldest
	case kspp.OffsetStored:
		if c.pom == nil {
			startOffset = sarama.OffsetOldest
			break
		}
		next, _ := c.pom.NextOffset()
		if next < 0 {
			next = sarama.OffsetOldest
		}
		startOffset = next
	}

	pc, err := c.consumer.ConsumePartition(topic, partition, startOffset)
	if err != nil {
		return err
	}
	c.pc = pc
	c.topic = topic
	c.partition = partition
	c.highWatermark = pc.HighWaterMarkOffset()
	return nil
}

// Poll drains whatever sarama has already buffered on the Messages and
// Errors channels, waiting for at most maxWaitMs for the first message if
// nothing is immediately available.
func (c *PartitionConsumer) Poll(maxWaitMs int64) ([]kspp.BrokerMessage, bool, error) {
	if c.pc == nil {
		return nil, false, fmt.Errorf("kafka: Poll called before Subscribe")
	}

	var msgs []kspp.BrokerMessage
	var lastOffset int64 = -1

	drain := func(msg *sarama.ConsumerMessage) {
		msgs = append(msgs, kspp.BrokerMessage{
			KeyBytes:    msg.Key,
			ValueBytes:  msg.Value,
			Offset:      msg.Offset,
			TimestampMs: msg.Timestamp.UnixMilli(),
		})
		lastOffset = msg.Offset
		c.highWatermark = c.pc.HighWaterMarkOffset()
	}

	// First, wait up to maxWaitMs for at least one message or error.
	timer := time.NewTimer(time.Duration(maxWaitMs) * time.Millisecond)
	select {
	case msg, ok := <-c.pc.Messages():
		timer.Stop()
		if !ok {
			return msgs, true, nil
		}
		drain(msg)
	case cerr, ok := <-c.pc.Errors():
		timer.Stop()
		if ok {
			return msgs, false, cerr.Err
		}
	case <-timer.C:
		return msgs, false, nil
	}

	// Then greedily take whatever else is already buffered, without
	// blocking further.
	for {
		select {
		case msg, ok := <-c.pc.Messages():
			if !ok {
				return msgs, true, nil
			}
			drain(msg)
			continue
		case cerr, ok := <-c.pc.Errors():
			if ok {
				return msgs, false, cerr.Err
			}
		default:
		}
		break
	}

	eof := lastOffset >= 0 && lastOffset+1 >= c.highWatermark
	if len(msgs) == 0 && c.highWatermark <= 0 {
		eof = true
	}
	return msgs, eof, nil
}

// CommitOffset marks offset+1 as the next offset to resume from. Without
// an offset manager (PartitionConsumer constructed for an anonymous,
// non-resumable read) this is a no-op, matching a source whose policy
// never asks for OffsetStored. force has no extra effect here: sarama's
// OffsetManager flushes marked offsets on its own commit ticker and on
// Close, it exposes no synchronous "commit now".
func (c *PartitionConsumer) CommitOffset(offset int64, force bool) error {
	if c.pom == nil {
		return nil
	}
	c.pom.MarkOffset(offset+1, "")
	return nil
}

func (c *PartitionConsumer) Close() error {
	var firstErr error
	if c.pc != nil {
		if err := c.pc.Close(); err != nil {
			firstErr = err
		}
	}
	if c.pom != nil {
		if err := c.pom.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
