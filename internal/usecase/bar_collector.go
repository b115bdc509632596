package usecase

import (
	"context"

	"NQFlow/internal/domain/models"
	drepo "NQFlow/internal/domain/repository"
	mid "NQFlow/internal/middleware"
)

// BarCollector pulls minute bars from the live feed and pushes them through
// the ingest pipeline into storage.
type BarCollector struct {
	stream  drepo.BarStream
	writer  drepo.BarWriter
	metrics drepo.Metrics
	pipe    *mid.IngestPipeline
}

// NewBarCollector creates a new BarCollector instance.
func NewBarCollector(stream drepo.BarStream, writer drepo.BarWriter, metrics drepo.Metrics, pipe *mid.IngestPipeline) *BarCollector {
	return &BarCollector{stream: stream, writer: writer, metrics: metrics, pipe: pipe}
}

// IsConnected returns true if the feed is connected.
func (c *BarCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

func (c *BarCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return err
	}
	if c.pipe != nil {
		c.pipe.Start(ctx)
	}
	barCh, errCh := c.stream.Read(ctx)
	go c.consume(ctx, barCh, errCh)
	return nil
}

func (c *BarCollector) consume(ctx context.Context, barCh <-chan *models.Bar, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-errCh:
			// the feed's read loop exits (and closes both channels) after
			// any error, so either branch means the stream is dead
			if ok && err != nil {
				c.metrics.RecordError("feed")
			}
			var resumed bool
			if barCh, errCh, resumed = c.resubscribe(ctx); !resumed {
				return
			}
		case b, ok := <-barCh:
			if !ok {
				var resumed bool
				if barCh, errCh, resumed = c.resubscribe(ctx); !resumed {
					return
				}
				continue
			}
			if b == nil {
				continue
			}
			if c.pipe != nil {
				_ = c.pipe.Process(ctx, b)
			} else if err := c.writer.Store(ctx, b); err != nil {
				c.metrics.RecordError("feed_store")
			}
		}
	}
}

// resubscribe re-opens the stream after its read loop has died and hands
// back fresh channels. Returns false once the context is done. Reconnect
// paces its own retries, so the loop does not spin.
func (c *BarCollector) resubscribe(ctx context.Context) (<-chan *models.Bar, <-chan error, bool) {
	for {
		if ctx.Err() != nil {
			return nil, nil, false
		}
		if err := c.stream.Reconnect(ctx); err != nil {
			c.metrics.RecordError("feed_reconnect")
			continue
		}
		barCh, errCh := c.stream.Read(ctx)
		return barCh, errCh, true
	}
}

// Shutdown stops the ingest pipeline and closes the feed.
func (c *BarCollector) Shutdown(ctx context.Context) error {
	if c.pipe != nil {
		c.pipe.Stop()
	}
	return c.stream.Close()
}
