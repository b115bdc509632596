package util

import (
	"testing"
	"time"
)

func TestDateOf(t *testing.T) {
	ts := time.Date(2024, 12, 2, 23, 59, 0, 0, time.UTC)
	if DateOf(ts) != "2024-12-02" {
		t.Fatalf("unexpected date %s", DateOf(ts))
	}
}

func TestDateOfConvertsToUTC(t *testing.T) {
	chicago := time.FixedZone("CST", -6*3600)
	ts := time.Date(2024, 12, 2, 22, 0, 0, 0, chicago) // 04:00 UTC next day
	if DateOf(ts) != "2024-12-03" {
		t.Fatalf("unexpected date %s", DateOf(ts))
	}
}
