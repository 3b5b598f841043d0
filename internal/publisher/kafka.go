// Package publisher announces durable payment state transitions.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nikolayk812/checkoutpay/internal/domain"
	"github.com/segmentio/kafka-go"
)

const eventTypePaymentStateChanged = "payment_state_changed"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer messageWriter
}

// NewKafka keys messages by order ID, so the changes of one order keep their order on a partition.
func NewKafka(brokers []string, topic string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &KafkaPublisher{writer: w}
}

func (p *KafkaPublisher) Publish(ctx context.Context, change domain.PaymentStateChanged) error {
	msg, err := toMessage(change)
	if err != nil {
		return fmt.Errorf("toMessage: %w", err)
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("writer.WriteMessages: %w", err)
	}

	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func toMessage(change domain.PaymentStateChanged) (kafka.Message, error) {
	payload, err := json.Marshal(change)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("json.Marshal: %w", err)
	}

	return kafka.Message{
		Key:   []byte(change.OrderID.String()),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(eventTypePaymentStateChanged)},
			{Key: "payment_state", Value: []byte(change.To)},
		},
		Time: change.OccurredAt,
	}, nil
}
