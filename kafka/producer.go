package kafka

import (
	"time"

	"github.com/IBM/sarama"
)

// Producer implements kspp.BrokerProducer over a real
// sarama.AsyncProducer. Delivery callbacks ride along on
// sarama.ProducerMessage.Metadata, so Poll can pair a completed send back
// to the caller that submitted it without keeping a correlation map of
// its own.
type Producer struct {
	producer sarama.AsyncProducer
}

// NewProducer wraps producer in the BrokerProducer contract. producer
// must have been built with Producer.Return.Successes and
// Producer.Return.Errors both enabled (ClientConfig sets both).
func NewProducer(producer sarama.AsyncProducer) *Producer {
	return &Producer{producer: producer}
}

func (p *Producer) Produce(topic string, partition int32, keyBytes, valueBytes []byte, onDelivery func(err error)) error {
	msg := &sarama.ProducerMessage{
		Topic:     topic,
		Partition: partition,
		Key:       sarama.ByteEncoder(keyBytes),
		Value:     sarama.ByteEncoder(valueBytes),
		Metadata:  onDelivery,
	}
	p.producer.Input() <- msg
	return nil
}

// Poll delivers whatever success/error callbacks sarama has already
// produced, waiting at most maxWaitMs for the first one.
func (p *Producer) Poll(maxWaitMs int64) {
	timer := time.NewTimer(time.Duration(maxWaitMs) * time.Millisecond)
	select {
	case msg := <-p.producer.Successes():
		timer.Stop()
		invoke(msg, nil)
	case perr := <-p.producer.Errors():
		timer.Stop()
		invoke(perr.Msg, perr.Err)
	case <-timer.C:
		return
	}

	for {
		select {
		case msg := <-p.producer.Successes():
			invoke(msg, nil)
			continue
		case perr := <-p.producer.Errors():
			invoke(perr.Msg, perr.Err)
			continue
		default:
		}
		break
	}
}

func invoke(msg *sarama.ProducerMessage, err error) {
	if msg == nil {
		return
	}
	if cb, ok := msg.Metadata.(func(error)); ok && cb != nil {
		cb(err)
	}
}

func (p *Producer) Close() error {
	return p.producer.Close()
}
