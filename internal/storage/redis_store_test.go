package storage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"tweetwatch/internal/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newStore(t *testing.T, limit int) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisStore(rdb, limit), mr
}

func TestRecordAndRecentCycles(t *testing.T) {
	s, _ := newStore(t, 100)
	ctx := context.Background()
	for i := 1; i <= 3; i++ {
		rec := model.CycleRecord{
			RunID:     fmt.Sprintf("run-%d", i),
			Trigger:   "loop",
			StartedAt: time.Date(2025, 7, 1, i, 0, 0, 0, time.UTC),
			Duration:  time.Second,
			Result:    model.DispatchResult{Success: true, ProcessedCount: i},
			Watermark: fmt.Sprintf("%d00", i),
		}
		if err := s.RecordCycle(ctx, rec); err != nil {
			t.Fatalf("RecordCycle: %v", err)
		}
	}
	got, err := s.RecentCycles(ctx, 2)
	if err != nil {
		t.Fatalf("RecentCycles: %v", err)
	}
	if len(got) != 2 || got[0].RunID != "run-3" || got[1].RunID != "run-2" {
		t.Fatalf("unexpected records: %+v", got)
	}
	if got[0].Result.ProcessedCount != 3 || got[0].Watermark != "300" {
		t.Errorf("record not round-tripped: %+v", got[0])
	}
}

func TestRecordCycleTrims(t *testing.T) {
	s, mr := newStore(t, 2)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if err := s.RecordCycle(ctx, model.CycleRecord{RunID: fmt.Sprint(i)}); err != nil {
			t.Fatal(err)
		}
	}
	list, err := mr.List(historyKey)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Errorf("history length = %d, want 2", len(list))
	}
	if ttl := mr.TTL(historyKey); ttl <= 0 {
		t.Errorf("history key should expire, ttl = %v", ttl)
	}
}

func TestRecentCyclesEmpty(t *testing.T) {
	s, _ := newStore(t, 10)
	got, err := s.RecentCycles(context.Background(), 5)
	if err != nil || len(got) != 0 {
		t.Errorf("got %v, %v", got, err)
	}
}
