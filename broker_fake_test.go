package kspp

import (
	"errors"
	"sync"
)

var errFakeDeliveryFailed = errors.New("fake delivery failed")

// fakeTopic is an in-memory stand-in for one broker topic/partition,
// shared between a fakeProducer and one or more fakeConsumers so tests
// can wire a produce-side topology straight into a consume-side one
// without a real broker.
type fakeTopic struct {
	mu       sync.Mutex
	messages []BrokerMessage
}

func (t *fakeTopic) append(m BrokerMessage) {
	t.mu.Lock()
	defer t.mu.Unlock()
	m.Offset = int64(len(t.messages))
	t.messages = append(t.messages, m)
}

func (t *fakeTopic) since(pos int) ([]BrokerMessage, int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := append([]BrokerMessage(nil), t.messages[pos:]...)
	return out, len(t.messages)
}

type fakeProducer struct {
	topic *fakeTopic
	fail  bool
}

func (p *fakeProducer) Produce(topic string, partition int32, keyBytes, valueBytes []byte, onDelivery func(error)) error {
	p.topic.append(BrokerMessage{KeyBytes: keyBytes, ValueBytes: valueBytes})
	if onDelivery != nil {
		if p.fail {
			onDelivery(errFakeDeliveryFailed)
		} else {
			onDelivery(nil)
		}
	}
	return nil
}

func (p *fakeProducer) Poll(maxWaitMs int64) {}
func (p *fakeProducer) Close() error         { return nil }

type fakeConsumer struct {
	topic        *fakeTopic
	pos          int
	committed    int64
	hasCommitted bool
}

func (c *fakeConsumer) Subscribe(topic string, partition int32, offset int64) error { return nil }

func (c *fakeConsumer) Poll(maxWaitMs int64) ([]BrokerMessage, bool, error) {
	msgs, total := c.topic.since(c.pos)
	c.pos = total
	return msgs, true, nil
}

func (c *fakeConsumer) CommitOffset(offset int64, force bool) error {
	c.committed = offset
	c.hasCommitted = true
	return nil
}

func (c *fakeConsumer) Close() error { return nil }

// boundedConsumer never reports EOF, letting a back-pressure test keep a
// source "runnable" across many passes.
type boundedConsumer struct {
	remaining int
}

func (c *boundedConsumer) Subscribe(topic string, partition int32, offset int64) error { return nil }

func (c *boundedConsumer) Poll(maxWaitMs int64) ([]BrokerMessage, bool, error) {
	if c.remaining <= 0 {
		return nil, true, nil
	}
	n := c.remaining
	if n > 1000 {
		n = 1000
	}
	msgs := make([]BrokerMessage, n)
	c.remaining -= n
	return msgs, c.remaining <= 0, nil
}

func (c *boundedConsumer) CommitOffset(offset int64, force bool) error { return nil }
func (c *boundedConsumer) Close() error                                { return nil }
