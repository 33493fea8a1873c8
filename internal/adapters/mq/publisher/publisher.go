// Package publisher announces completed predictions on a message bus.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// PredictionEvent is the notification payload.
type PredictionEvent struct {
	ID        string    `json:"id"`
	Team1     string    `json:"team1"`
	Team2     string    `json:"team2"`
	Stadium   string    `json:"stadium"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	Source    string    `json:"source"` // "seat" or "fallback"
	Points    int       `json:"points"`
	Location  string    `json:"location"`
	CreatedAt time.Time `json:"created_at"`
}

// Publisher sends prediction notifications.
type Publisher interface {
	PublishPrediction(ctx context.Context, ev PredictionEvent) error
	Close() error
}

// Noop discards notifications.
type Noop struct{}

// PublishPrediction implements Publisher.
func (Noop) PublishPrediction(context.Context, PredictionEvent) error { return nil }

// Close implements Publisher.
func (Noop) Close() error { return nil }

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes JSON messages keyed by prediction id.
type KafkaPublisher struct {
	w     messageWriter
	topic string
}

// NewKafkaPublisher returns a publisher for topic on brokers.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		w: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.LeastBytes{},
			AllowAutoTopicCreation: true,
			WriteTimeout:           5 * time.Second,
		},
		topic: topic,
	}
}

// New returns a KafkaPublisher when brokers are configured and Noop otherwise.
func New(brokers []string, topic string) Publisher {
	if len(brokers) == 0 {
		return Noop{}
	}
	return NewKafkaPublisher(brokers, topic)
}

// PublishPrediction implements Publisher.
func (p *KafkaPublisher) PublishPrediction(ctx context.Context, ev PredictionEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode prediction event: %w", err)
	}
	if err := p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.ID),
		Value: payload,
		Time:  ev.CreatedAt,
	}); err != nil {
		return fmt.Errorf("publish to %s: %w", p.topic, err)
	}
	return nil
}

// Close flushes and closes the writer.
func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}
