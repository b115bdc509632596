package usecase

import (
	"context"
	"encoding/json"
	"time"

	"NQFlow/internal/domain/models"
	domrepo "NQFlow/internal/domain/repository"
	mid "NQFlow/internal/middleware"
	pkgkafka "NQFlow/pkg/kafka"
)

// KafkaBarsHandler consumes bar messages from Kafka and routes them through
// the ingest pipeline into storage.
type KafkaBarsHandler struct {
	topic   string
	pipe    *mid.IngestPipeline
	metrics domrepo.Metrics
}

func NewKafkaBarsHandler(topic string, pipe *mid.IngestPipeline, metrics domrepo.Metrics) *KafkaBarsHandler {
	return &KafkaBarsHandler{topic: topic, pipe: pipe, metrics: metrics}
}

func (h *KafkaBarsHandler) Topic() string { return h.topic }

// incoming message schema: {symbol, instrument_id, ts_event, open, high, low, close, volume}
func (h *KafkaBarsHandler) Handle(ctx context.Context, b []byte) error {
	var m struct {
		Symbol       string  `json:"symbol"`
		InstrumentID int64   `json:"instrument_id"`
		TS           int64   `json:"ts_event"`
		Open         float64 `json:"open"`
		High         float64 `json:"high"`
		Low          float64 `json:"low"`
		Close        float64 `json:"close"`
		Volume       int64   `json:"volume"`
	}
	if err := json.Unmarshal(b, &m); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	if m.TS > 1e11 { // ms
		m.TS = m.TS / 1000
	}
	h.metrics.RecordLatency("ingest_e2e_seconds", time.Since(time.Unix(m.TS, 0)).Seconds())

	bar := &models.Bar{
		EventTime:    time.Unix(m.TS, 0).UTC().Truncate(time.Minute),
		InstrumentID: m.InstrumentID,
		Symbol:       m.Symbol,
		Open:         m.Open,
		High:         m.High,
		Low:          m.Low,
		Close:        m.Close,
		Volume:       m.Volume,
	}
	if err := h.pipe.Process(ctx, bar); err != nil {
		h.metrics.RecordError("consumer_ingest")
		return err
	}
	h.metrics.RecordBarsIngested("kafka", 1)
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaBarsHandler)(nil)
