package repository

import (
	"context"
	"fmt"

	"FeatMerge/internal/domain/models"
	pkgkafka "FeatMerge/pkg/kafka"
)

// KafkaOutcomePublisher emits every SymbolReport as a JSON event keyed by symbol.
type KafkaOutcomePublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaOutcomePublisher creates a publisher. The publisher owns the producer.
func NewKafkaOutcomePublisher(p *pkgkafka.Producer, topic string) *KafkaOutcomePublisher {
	return &KafkaOutcomePublisher{producer: p, topic: topic}
}

func (k *KafkaOutcomePublisher) Publish(ctx context.Context, r models.SymbolReport) error {
	if err := k.producer.Publish(ctx, k.topic, []byte(r.Symbol), r); err != nil {
		return fmt.Errorf("kafka publish %s: %w", r.Symbol, err)
	}
	return nil
}

func (k *KafkaOutcomePublisher) Close() error {
	return k.producer.Close()
}
