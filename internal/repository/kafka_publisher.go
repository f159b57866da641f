package repository

import (
	"context"

	"TAScan/internal/domain/models"
	"TAScan/internal/domain/repository"
	pkgkafka "TAScan/pkg/kafka"
)

type batchProducer interface {
	PublishBatch(ctx context.Context, topic string, messages []pkgkafka.Message) error
	Close() error
}

// KafkaPublisher implements Publisher for Kafka. Events are keyed by the
// composite symbol so one symbol always lands on the same partition.
type KafkaPublisher struct {
	producer batchProducer
	topic    string
}

// NewKafkaPublisher creates Kafka publisher.
func NewKafkaPublisher(producer batchProducer, topic string) repository.Publisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) PublishResult(ctx context.Context, ev *models.AnalysisResultEvent) error {
	return p.PublishResults(ctx, []*models.AnalysisResultEvent{ev})
}

func (p *KafkaPublisher) PublishResults(ctx context.Context, evs []*models.AnalysisResultEvent) error {
	msgs := make([]pkgkafka.Message, 0, len(evs))
	for _, ev := range evs {
		if ev == nil {
			continue
		}
		m := pkgkafka.Message{Key: []byte(ev.Key), Value: ev}
		if ev.RequestID != "" {
			m.Headers = map[string]string{pkgkafka.TraceHeader: ev.RequestID}
		}
		msgs = append(msgs, m)
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
