package poll

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shadowmode/shadowctl/pkg/core/logging"
)

func testLogger() *logging.Logger {
	return logging.New("poll-test").WithOutput(io.Discard)
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v", timeout)
}

func TestScheduler_FetchesImmediatelyAndOnInterval(t *testing.T) {
	s := New(testLogger())
	defer s.Stop()

	var count int64
	s.Schedule("status", func(ctx context.Context) (interface{}, error) {
		return atomic.AddInt64(&count, 1), nil
	}, 20*time.Millisecond)

	waitFor(t, time.Second, func() bool { return atomic.LoadInt64(&count) >= 3 })

	res, ok := s.Latest("status")
	if !ok {
		t.Fatal("Latest() returned no result after completed fetches")
	}
	if res.Err != nil {
		t.Errorf("Latest().Err = %v, want nil", res.Err)
	}
}

func TestScheduler_SlowFetchSkipsOverlappingTicks(t *testing.T) {
	s := New(testLogger())
	defer s.Stop()

	var started int64
	release := make(chan struct{})
	s.Schedule("alpha", func(ctx context.Context) (interface{}, error) {
		atomic.AddInt64(&started, 1)
		<-release
		return nil, nil
	}, 10*time.Millisecond)

	// Let several ticks elapse while the first fetch is stuck
	time.Sleep(100 * time.Millisecond)
	if got := atomic.LoadInt64(&started); got != 1 {
		t.Errorf("started fetches = %d, want 1 while first is in flight", got)
	}

	close(release)
	waitFor(t, time.Second, func() bool { return atomic.LoadInt64(&started) >= 2 })
}

func TestScheduler_ErrorDoesNotCancelSchedule(t *testing.T) {
	s := New(testLogger())
	defer s.Stop()

	var count int64
	s.Schedule("bids", func(ctx context.Context) (interface{}, error) {
		n := atomic.AddInt64(&count, 1)
		if n == 1 {
			return nil, errors.New("backend unavailable")
		}
		return "bids", nil
	}, 15*time.Millisecond)

	waitFor(t, time.Second, func() bool { return atomic.LoadInt64(&count) >= 3 })

	res, ok := s.Latest("bids")
	if !ok {
		t.Fatal("Latest() returned no result")
	}
	if res.Err != nil {
		t.Errorf("Latest().Err = %v, want nil after recovery", res.Err)
	}
	if res.Value != "bids" {
		t.Errorf("Latest().Value = %v, want %q", res.Value, "bids")
	}
}

func TestScheduler_ErrorKeepsStaleValue(t *testing.T) {
	s := New(testLogger())
	defer s.Stop()

	var count int64
	s.Schedule("campaigns", func(ctx context.Context) (interface{}, error) {
		n := atomic.AddInt64(&count, 1)
		if n == 1 {
			return "snapshot-1", nil
		}
		return nil, errors.New("timeout")
	}, 15*time.Millisecond)

	waitFor(t, time.Second, func() bool { return atomic.LoadInt64(&count) >= 2 })
	waitFor(t, time.Second, func() bool {
		res, ok := s.Latest("campaigns")
		return ok && res.Err != nil
	})

	res, _ := s.Latest("campaigns")
	if res.Value != "snapshot-1" {
		t.Errorf("Latest().Value = %v, want stale %q preserved across error", res.Value, "snapshot-1")
	}
}

func TestScheduler_UnregisterStopsFetching(t *testing.T) {
	s := New(testLogger())
	defer s.Stop()

	var count int64
	s.Schedule("profiles", func(ctx context.Context) (interface{}, error) {
		return atomic.AddInt64(&count, 1), nil
	}, 10*time.Millisecond)

	waitFor(t, time.Second, func() bool { return atomic.LoadInt64(&count) >= 1 })
	s.Unregister("profiles")

	after := atomic.LoadInt64(&count)
	time.Sleep(60 * time.Millisecond)
	if got := atomic.LoadInt64(&count); got != after {
		t.Errorf("fetch count grew from %d to %d after Unregister", after, got)
	}
	if _, ok := s.Latest("profiles"); ok {
		t.Error("Latest() still returns a result for an unregistered key")
	}
}

func TestScheduler_KeysAreIndependent(t *testing.T) {
	s := New(testLogger())
	defer s.Stop()

	var fast int64
	block := make(chan struct{})
	defer close(block)

	s.Schedule("stuck", func(ctx context.Context) (interface{}, error) {
		<-block
		return nil, nil
	}, 10*time.Millisecond)
	s.Schedule("healthy", func(ctx context.Context) (interface{}, error) {
		return atomic.AddInt64(&fast, 1), nil
	}, 10*time.Millisecond)

	waitFor(t, time.Second, func() bool { return atomic.LoadInt64(&fast) >= 3 })
}

func TestScheduler_RescheduleReplacesQuery(t *testing.T) {
	s := New(testLogger())
	defer s.Stop()

	var first, second int64
	s.Schedule("status", func(ctx context.Context) (interface{}, error) {
		return atomic.AddInt64(&first, 1), nil
	}, 10*time.Millisecond)
	waitFor(t, time.Second, func() bool { return atomic.LoadInt64(&first) >= 1 })

	s.Schedule("status", func(ctx context.Context) (interface{}, error) {
		return atomic.AddInt64(&second, 1), nil
	}, 10*time.Millisecond)
	waitFor(t, time.Second, func() bool { return atomic.LoadInt64(&second) >= 2 })

	snapshot := atomic.LoadInt64(&first)
	time.Sleep(40 * time.Millisecond)
	if got := atomic.LoadInt64(&first); got != snapshot {
		t.Errorf("replaced query still fetching: count grew from %d to %d", snapshot, got)
	}
}

func TestScheduler_SubscribeSignalsCompletedFetches(t *testing.T) {
	s := New(testLogger())
	defer s.Stop()

	ch := s.Subscribe()
	s.Schedule("report", func(ctx context.Context) (interface{}, error) {
		return 42, nil
	}, 10*time.Millisecond)

	select {
	case key := <-ch:
		if key != "report" {
			t.Errorf("subscribe key = %q, want %q", key, "report")
		}
	case <-time.After(time.Second):
		t.Fatal("no subscribe signal after completed fetch")
	}
}

func TestScheduler_StopHaltsEverything(t *testing.T) {
	s := New(testLogger())

	var count int64
	s.Schedule("a", func(ctx context.Context) (interface{}, error) {
		return atomic.AddInt64(&count, 1), nil
	}, 10*time.Millisecond)
	s.Schedule("b", func(ctx context.Context) (interface{}, error) {
		return atomic.AddInt64(&count, 1), nil
	}, 10*time.Millisecond)

	waitFor(t, time.Second, func() bool { return atomic.LoadInt64(&count) >= 2 })
	s.Stop()

	after := atomic.LoadInt64(&count)
	time.Sleep(60 * time.Millisecond)
	if got := atomic.LoadInt64(&count); got != after {
		t.Errorf("fetch count grew from %d to %d after Stop", after, got)
	}

	// Scheduling after Stop is a no-op
	s.Schedule("c", func(ctx context.Context) (interface{}, error) {
		return atomic.AddInt64(&count, 1), nil
	}, 5*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	if got := atomic.LoadInt64(&count); got != after {
		t.Errorf("Schedule after Stop still fetched: %d -> %d", after, got)
	}
}
