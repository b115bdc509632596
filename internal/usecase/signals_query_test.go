package usecase

import (
	"context"
	"errors"
	"testing"
	"time"
)

// recordingCache captures Set calls so tests can assert on entry lifetimes.
type recordingCache struct {
	lastKey string
	lastTTL time.Duration
	sets    int
}

func (c *recordingCache) Set(_ context.Context, key string, _ interface{}, expiration time.Duration) error {
	c.lastKey = key
	c.lastTTL = expiration
	c.sets++
	return nil
}

func (c *recordingCache) Get(context.Context, string, interface{}) error {
	return errors.New("miss")
}

func (c *recordingCache) Delete(context.Context, ...string) error          { return nil }
func (c *recordingCache) DeleteByPattern(context.Context, string) error    { return nil }
func (c *recordingCache) Exists(context.Context, ...string) (bool, error)  { return false, nil }
func (c *recordingCache) Increment(context.Context, string) (int64, error) { return 0, nil }
func (c *recordingCache) Expire(context.Context, string, time.Duration) (bool, error) {
	return false, nil
}
func (c *recordingCache) MSet(context.Context, map[string]interface{}, time.Duration) error {
	return nil
}
func (c *recordingCache) MGet(context.Context, ...string) (map[string]string, error) {
	return nil, nil
}
func (c *recordingCache) TryLock(context.Context, string, time.Duration) (bool, error) {
	return true, nil
}
func (c *recordingCache) Unlock(context.Context, string) error { return nil }

func TestSignalsQueryUsesConfiguredTTL(t *testing.T) {
	rc := &recordingCache{}
	uc := NewSignalsUseCase(&fakeSignalStore{})
	uc.SetCache(rc)
	uc.SetCacheTTL(90 * time.Second)

	_, err := uc.GetSignals(context.Background(), GetSignalsParams{From: "2024-12-02", To: "2024-12-03"})
	if err != nil {
		t.Fatalf("get signals: %v", err)
	}
	if rc.sets != 1 {
		t.Fatalf("expected one cache write, got %d", rc.sets)
	}
	if rc.lastTTL != 90*time.Second {
		t.Fatalf("cached with ttl %v, want 90s", rc.lastTTL)
	}
}

func TestSignalsQueryDefaultTTL(t *testing.T) {
	rc := &recordingCache{}
	uc := NewSignalsUseCase(&fakeSignalStore{})
	uc.SetCache(rc)
	uc.SetCacheTTL(0) // zero from config keeps the default

	if _, err := uc.GetSignals(context.Background(), GetSignalsParams{From: "2024-12-02", To: "2024-12-03"}); err != nil {
		t.Fatalf("get signals: %v", err)
	}
	if rc.lastTTL != signalsCacheTTL {
		t.Fatalf("cached with ttl %v, want %v", rc.lastTTL, signalsCacheTTL)
	}
}

func TestSummaryQueryUsesConfiguredTTL(t *testing.T) {
	rc := &recordingCache{}
	uc := NewSummaryUseCase(&fakeSummaryStore{})
	uc.SetCache(rc)
	uc.SetCacheTTL(10 * time.Minute)

	if _, err := uc.GetSummary(context.Background(), GetSummaryParams{From: "2024-12-02", To: "2024-12-03"}); err != nil {
		t.Fatalf("get summary: %v", err)
	}
	if rc.lastTTL != 10*time.Minute {
		t.Fatalf("cached with ttl %v, want 10m", rc.lastTTL)
	}
}
