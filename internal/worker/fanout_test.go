package worker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"
)

func TestMapPreservesOrder(t *testing.T) {
	items := []int{0, 1, 2, 3, 4, 5, 6, 7}

	outcomes := Map(items, 3, func(n int) (string, error) {
		// Reverse-staggered sleeps so completion order differs from
		// submission order.
		time.Sleep(time.Duration(len(items)-n) * time.Millisecond)
		return fmt.Sprintf("item-%d", n), nil
	})

	if len(outcomes) != len(items) {
		t.Fatalf("got %d outcomes, want %d", len(outcomes), len(items))
	}
	for i, o := range outcomes {
		if o.Err != nil {
			t.Fatalf("outcome %d errored: %v", i, o.Err)
		}
		if want := fmt.Sprintf("item-%d", i); o.Value != want {
			t.Errorf("outcome %d = %q, want %q", i, o.Value, want)
		}
	}
}

func TestMapIsolatesFailures(t *testing.T) {
	boom := errors.New("boom")
	outcomes := Map([]int{1, 2, 3}, 2, func(n int) (int, error) {
		if n == 2 {
			return 0, boom
		}
		return n * 10, nil
	})

	if outcomes[0].Err != nil || outcomes[0].Value != 10 {
		t.Errorf("outcome 0 = %+v", outcomes[0])
	}
	if !errors.Is(outcomes[1].Err, boom) {
		t.Errorf("outcome 1 err = %v, want boom", outcomes[1].Err)
	}
	if outcomes[2].Err != nil || outcomes[2].Value != 30 {
		t.Errorf("outcome 2 = %+v", outcomes[2])
	}
}

func TestMapBoundsConcurrency(t *testing.T) {
	var active, peak int32

	Map(make([]struct{}, 20), 4, func(struct{}) (struct{}, error) {
		now := atomic.AddInt32(&active, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if now <= p || atomic.CompareAndSwapInt32(&peak, p, now) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&active, -1)
		return struct{}{}, nil
	})

	if peak > 4 {
		t.Errorf("peak concurrency %d exceeded worker bound 4", peak)
	}
}

func TestMapEmptyInput(t *testing.T) {
	outcomes := Map(nil, 3, func(int) (int, error) { return 0, nil })
	if len(outcomes) != 0 {
		t.Errorf("got %d outcomes for empty input", len(outcomes))
	}
}

func TestHostLimiterSeparatesHosts(t *testing.T) {
	l := NewHostLimiter(1, 1)

	if !l.Allow("https://a.example.com/doc.pdf") {
		t.Error("first request to host a should pass")
	}
	if l.Allow("https://a.example.com/other.pdf") {
		t.Error("second immediate request to host a should be throttled")
	}
	if !l.Allow("https://b.example.com/doc.pdf") {
		t.Error("host b has its own bucket")
	}
}

func TestHostLimiterWaitHonorsContext(t *testing.T) {
	l := NewHostLimiter(0.001, 1)
	// Drain the single token.
	if !l.Allow("https://slow.example.com/doc.pdf") {
		t.Fatal("token drain failed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := l.Wait(ctx, "https://slow.example.com/doc.pdf"); err == nil {
		t.Error("expected context deadline to interrupt Wait")
	}
}
