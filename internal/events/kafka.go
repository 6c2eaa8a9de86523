package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Skotchmaster/bakery/pkg/telemetry"
)

// Writer is the subset of *kafka.Writer the producer needs.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Producer struct {
	w     Writer
	topic string
}

func NewProducer(brokers []string, topic string) *Producer {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		BatchTimeout:           50 * time.Millisecond,
		WriteTimeout:           5 * time.Second,
	}
	return &Producer{w: w, topic: topic}
}

func NewProducerWithWriter(w Writer, topic string) *Producer {
	return &Producer{w: w, topic: topic}
}

// Publish keys messages by order id so one order's events stay ordered
// within a partition.
func (p *Producer) Publish(ctx context.Context, e OrderEvent) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("kafka: marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatUint(uint64(e.OrderID), 10)),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(e.Type)},
			{Key: "event_id", Value: []byte(e.ID)},
		},
		Time: e.OccurredAt,
	}

	err = p.w.WriteMessages(ctx, msg)
	telemetry.EventPublished("kafka", err)
	if err != nil {
		return fmt.Errorf("kafka: write to %s: %w", p.topic, err)
	}
	return nil
}

func (p *Producer) Close() error {
	return p.w.Close()
}
