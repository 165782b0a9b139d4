package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"teamtask/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPollerFetchesImmediately(t *testing.T) {
	calls := make(chan struct{}, 10)
	p := NewPoller(func(ctx context.Context) error {
		calls <- struct{}{}
		return nil
	}, PollerConfig{Interval: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	select {
	case <-calls:
	case <-time.After(time.Second):
		t.Fatal("first fetch did not run immediately")
	}

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestPollerNeverOverlaps(t *testing.T) {
	var inFlight, maxInFlight, count int32
	p := NewPoller(func(ctx context.Context) error {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			m := atomic.LoadInt32(&maxInFlight)
			if n <= m || atomic.CompareAndSwapInt32(&maxInFlight, m, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		atomic.AddInt32(&count, 1)
		return nil
	}, PollerConfig{Interval: 5 * time.Millisecond})

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	go func() {
		for ctx.Err() == nil {
			p.Refresh()
			time.Sleep(time.Millisecond)
		}
	}()
	_ = p.Run(ctx)

	assert.EqualValues(t, 1, atomic.LoadInt32(&maxInFlight))
	assert.Greater(t, atomic.LoadInt32(&count), int32(1))
}

func TestPollerFetchTimeout(t *testing.T) {
	errs := make(chan error, 1)
	p := NewPoller(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}, PollerConfig{
		Interval: time.Hour,
		Timeout:  10 * time.Millisecond,
		OnError: func(err error) {
			select {
			case errs <- err:
			default:
			}
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = p.Run(ctx) }()

	select {
	case err := <-errs:
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	case <-time.After(time.Second):
		t.Fatal("fetch was not cancelled by its timeout")
	}
}

func TestPollerBacksOffAndResets(t *testing.T) {
	var mu sync.Mutex
	var stamps []time.Time
	fail := errors.New("server unavailable")

	p := NewPoller(func(ctx context.Context) error {
		mu.Lock()
		defer mu.Unlock()
		stamps = append(stamps, time.Now())
		if len(stamps) <= 3 {
			return fail
		}
		return nil
	}, PollerConfig{Interval: 20 * time.Millisecond, MaxBackoff: 60 * time.Millisecond})

	ctx, cancel := context.WithTimeout(context.Background(), 400*time.Millisecond)
	defer cancel()
	_ = p.Run(ctx)

	mu.Lock()
	defer mu.Unlock()
	require.GreaterOrEqual(t, len(stamps), 6)

	gap := func(i int) time.Duration { return stamps[i].Sub(stamps[i-1]) }
	// Failures double the delay: 20ms, 40ms, then capped at 60ms.
	assert.GreaterOrEqual(t, gap(2), 35*time.Millisecond)
	assert.GreaterOrEqual(t, gap(3), 55*time.Millisecond)
	// Success returns to the base interval.
	assert.Less(t, gap(5), 55*time.Millisecond)
}

func TestPollerRunTwice(t *testing.T) {
	p := NewPoller(func(ctx context.Context) error { return nil }, PollerConfig{Interval: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = p.Run(ctx) }()

	require.Eventually(t, func() bool { return atomic.LoadInt32(&p.running) == 1 }, time.Second, time.Millisecond)
	assert.NoError(t, p.Run(ctx))
}

func TestTracker(t *testing.T) {
	tr := NewTracker(func(a models.Activity) int64 { return a.ID })

	first := []models.Activity{{ID: 2}, {ID: 1}}
	assert.Empty(t, tr.Update(first))

	fresh := tr.Update([]models.Activity{{ID: 4}, {ID: 3}, {ID: 2}})
	require.Len(t, fresh, 2)
	assert.EqualValues(t, 4, fresh[0].ID)
	assert.EqualValues(t, 3, fresh[1].ID)

	assert.Empty(t, tr.Update([]models.Activity{{ID: 4}, {ID: 3}}))
	// An item that drops out and comes back counts as new.
	fresh = tr.Update([]models.Activity{{ID: 2}, {ID: 4}})
	require.Len(t, fresh, 1)
	assert.EqualValues(t, 2, fresh[0].ID)

	tr.Reset()
	assert.Empty(t, tr.Update([]models.Activity{{ID: 9}}))
}

func TestActivityFeed(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if atomic.AddInt32(&calls, 1) == 1 {
			_, _ = w.Write([]byte(`{"success":true,"status":200,"data":[{"id":1,"type":"task_created"}]}`))
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"status":200,"data":[{"id":2,"type":"comment_added"},{"id":1,"type":"task_created"}]}`))
	}))
	defer srv.Close()

	updates := make(chan []models.Activity, 4)
	feed := New(srv.URL).ActivityFeed(func(all, fresh []models.Activity) {
		updates <- fresh
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = feed.Run(ctx) }()

	assert.Empty(t, <-updates)
	feed.Refresh()

	select {
	case fresh := <-updates:
		require.Len(t, fresh, 1)
		assert.EqualValues(t, 2, fresh[0].ID)
	case <-time.After(2 * time.Second):
		t.Fatal("refresh did not trigger a fetch")
	}
}
