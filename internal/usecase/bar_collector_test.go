package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"NQFlow/internal/domain/models"
)

// scriptedStream hands out fresh channel pairs on every Read, the way the
// live feed client does, and lets the test kill a generation of channels.
type scriptedStream struct {
	mu         sync.Mutex
	barCh      chan *models.Bar
	errCh      chan error
	reads      int
	reconnects int
	connected  bool
}

func (s *scriptedStream) Connect(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = true
	return nil
}

func (s *scriptedStream) Subscribe(context.Context) error { return nil }

func (s *scriptedStream) Read(context.Context) (<-chan *models.Bar, <-chan error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.barCh = make(chan *models.Bar, 16)
	s.errCh = make(chan error, 1)
	s.reads++
	return s.barCh, s.errCh
}

func (s *scriptedStream) Reconnect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reconnects++
	s.connected = true
	return nil
}

func (s *scriptedStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = false
	return nil
}

func (s *scriptedStream) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// fail simulates the feed read loop dying: error, then both channels close.
func (s *scriptedStream) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.errCh <- err
	}
	close(s.barCh)
	close(s.errCh)
}

func (s *scriptedStream) send(b *models.Bar) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.barCh <- b
}

func (s *scriptedStream) stats() (reads, reconnects int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads, s.reconnects
}

type recordingWriter struct {
	stored chan *models.Bar
}

func (w *recordingWriter) Store(_ context.Context, b *models.Bar) error {
	w.stored <- b
	return nil
}

func (w *recordingWriter) StoreBatch(_ context.Context, bars []*models.Bar) error {
	for _, b := range bars {
		w.stored <- b
	}
	return nil
}

func (w *recordingWriter) Health(context.Context) error { return nil }
func (w *recordingWriter) Close() error                 { return nil }

func testBar(symbol string, minute int) *models.Bar {
	ts := time.Date(2024, 12, 2, 14, minute, 0, 0, time.UTC)
	return &models.Bar{
		EventTime: ts, Symbol: symbol,
		Open: 100, High: 101, Low: 99, Close: 100.5, Volume: 10,
	}
}

func waitStored(t *testing.T, w *recordingWriter, want string) {
	t.Helper()
	select {
	case b := <-w.stored:
		if b.Symbol != want {
			t.Fatalf("stored %s, want %s", b.Symbol, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("bar %s never reached the writer", want)
	}
}

func waitReads(t *testing.T, s *scriptedStream, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if reads, _ := s.stats(); reads >= n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	reads, _ := s.stats()
	t.Fatalf("stream read %d times, want at least %d", reads, n)
}

func TestCollectorResumesAfterFeedError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream := &scriptedStream{}
	writer := &recordingWriter{stored: make(chan *models.Bar, 16)}
	c := NewBarCollector(stream, writer, noopMetrics{}, nil)

	if err := c.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}

	stream.send(testBar("NQZ4", 0))
	waitStored(t, writer, "NQZ4")

	// kill the first generation of channels like the feed does on a read error
	stream.fail(errors.New("feed read: connection reset"))

	// the collector must reconnect and call Read again for fresh channels
	waitReads(t, stream, 2)
	if _, reconnects := stream.stats(); reconnects == 0 {
		t.Fatalf("expected at least one reconnect")
	}

	// bars from the reconnected stream must flow again
	stream.send(testBar("NQH5", 1))
	waitStored(t, writer, "NQH5")
}

func TestCollectorResumesAfterChannelClose(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream := &scriptedStream{}
	writer := &recordingWriter{stored: make(chan *models.Bar, 16)}
	c := NewBarCollector(stream, writer, noopMetrics{}, nil)

	if err := c.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}

	// read loop exits without surfacing an error first
	stream.fail(nil)

	waitReads(t, stream, 2)
	stream.send(testBar("NQZ4", 2))
	waitStored(t, writer, "NQZ4")
}
