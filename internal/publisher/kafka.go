package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/radieske/coinflip-platform/pkg/contracts/events"
)

// MessageWriter é o subconjunto de *kafka.Writer usado aqui
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Kafka publica todo o ciclo de vida das partidas, com key = id da partida
type Kafka struct {
	Writer MessageWriter
	Topic  string
}

func NewKafka(w MessageWriter, topic string) *Kafka {
	return &Kafka{Writer: w, Topic: topic}
}

func (p *Kafka) Publish(ctx context.Context, e events.MatchEvent) error {
	if e.Ts.IsZero() {
		e.Ts = time.Now()
	}
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", e.Type, err)
	}
	if err := p.Writer.WriteMessages(ctx, kafka.Message{Key: []byte(e.MatchID), Value: b, Time: e.Ts}); err != nil {
		return fmt.Errorf("kafka %s: %w", p.Topic, err)
	}
	return nil
}
