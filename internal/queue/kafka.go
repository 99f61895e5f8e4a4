package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaPublisher implements Publisher on a Kafka topic. Messages are keyed
// by target so every event about one post or share lands on one partition
// in commit order.
type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher creates a publisher writing to topic on brokers.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: 10 * time.Millisecond,
		},
	}
}

// Publish ignores stream: the topic is fixed at construction. Kafka assigns
// no message ID at write time, so the returned ID is always empty.
func (p *KafkaPublisher) Publish(ctx context.Context, stream string, event EngagementEvent) (string, error) {
	startTime := time.Now()

	value, err := json.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(string(event.TargetKind) + ":" + event.TargetID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(event.Type)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		log.Printf("[KafkaPublisher] Publish FAILED: topic=%s type=%s err=%v", p.writer.Topic, event.Type, err)
		return "", fmt.Errorf("write kafka message: %w", err)
	}

	log.Printf("[KafkaPublisher] Publish OK: topic=%s type=%s target=%s/%s duration=%v",
		p.writer.Topic, event.Type, event.TargetKind, event.TargetID, time.Since(startTime))
	return "", nil
}

// Close flushes pending writes and closes the connection pool.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
