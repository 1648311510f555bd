package repository

import (
	"context"
	"testing"
	"time"
)

func TestReportCacheWithoutRedis(t *testing.T) {
	cache := NewReportCache(nil, time.Minute)

	if err := cache.StoreLatest(context.Background(), []byte(`{"run_id":"x"}`)); err != nil {
		t.Fatalf("expected store to degrade silently, got %v", err)
	}

	payload, err := cache.Latest(context.Background())
	if err != nil {
		t.Fatalf("expected miss without redis, got error %v", err)
	}
	if payload != nil {
		t.Fatalf("expected nil payload, got %q", payload)
	}
}
