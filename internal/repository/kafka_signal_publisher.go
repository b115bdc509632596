package repository

import (
	"context"

	"NQFlow/internal/domain/models"
	"NQFlow/internal/domain/repository"
	pkgkafka "NQFlow/pkg/kafka"
)

// KafkaSignalPublisher implements SignalPublisher for Kafka, keyed by
// symbol so one contract's signals stay in one partition.
type KafkaSignalPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaSignalPublisher creates a Kafka signal publisher.
func NewKafkaSignalPublisher(producer *pkgkafka.Producer, topic string) repository.SignalPublisher {
	return &KafkaSignalPublisher{producer: producer, topic: topic}
}

func (p *KafkaSignalPublisher) Publish(ctx context.Context, s *models.Signal) error {
	return p.producer.Publish(ctx, p.topic, []byte(s.Symbol), signalPayload(s))
}

func (p *KafkaSignalPublisher) PublishBatch(ctx context.Context, signals []models.Signal) error {
	if len(signals) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(signals))
	for i := range signals {
		msgs[i] = pkgkafka.Message{
			Key:   []byte(signals[i].Symbol),
			Value: signalPayload(&signals[i]),
		}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaSignalPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

func signalPayload(s *models.Signal) map[string]interface{} {
	m := map[string]interface{}{
		"ts":            s.EventTime.Unix(),
		"symbol":        s.Symbol,
		"close":         s.Close,
		"direction":     string(s.Direction),
		"bullish_count": s.BullishCount,
		"bearish_count": s.BearishCount,
		"risk_ratio":    s.RiskRatio,
		"session":       string(s.Session),
	}
	if s.MACrossover != nil {
		m["ma_crossover"] = string(*s.MACrossover)
	}
	if s.Breakout != nil {
		m["breakout"] = string(*s.Breakout)
	}
	if s.MeanReversion != nil {
		m["mean_reversion"] = string(*s.MeanReversion)
	}
	if s.Momentum != nil {
		m["momentum"] = string(*s.Momentum)
	}
	return m
}
