package metrics

import (
	"sync"
	"testing"
	"time"
)

func TestRecordStats(t *testing.T) {
	SetEnabled(true)
	m := newTimingMetric("test")
	m.Record(2 * time.Millisecond)
	m.Record(4 * time.Millisecond)

	s := m.Stats()
	if s.Count != 2 {
		t.Fatalf("expected 2 samples, got %d", s.Count)
	}
	if s.MinMs != 2 || s.MaxMs != 4 || s.AvgMs != 3 || s.TotalMs != 6 {
		t.Errorf("unexpected stats %+v", s)
	}
	m.Reset()
	if m.Count() != 0 || m.Stats().MaxMs != 0 {
		t.Error("reset should clear samples")
	}
}

func TestRecordConcurrent(t *testing.T) {
	SetEnabled(true)
	m := newTimingMetric("concurrent")
	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			m.Record(time.Duration(n) * time.Microsecond)
		}(i)
	}
	wg.Wait()
	s := m.Stats()
	if s.Count != 50 || s.MinMs != 0.001 || s.MaxMs != 0.05 {
		t.Errorf("unexpected stats %+v", s)
	}
}

func TestDisabled(t *testing.T) {
	SetEnabled(false)
	defer SetEnabled(true)

	m := newTimingMetric("off")
	Timer(m)()
	m.Record(time.Second)
	if m.Count() != 0 {
		t.Errorf("disabled metrics should not record, got %d", m.Count())
	}
}

func TestAllStatsSkipsEmpty(t *testing.T) {
	SetEnabled(true)
	ResetAll()
	HitTest.Record(time.Millisecond)
	stats := AllStats()
	if len(stats) != 1 || stats[0].Name != "hit_test" {
		t.Errorf("expected only hit_test, got %+v", stats)
	}
	ResetAll()
}
