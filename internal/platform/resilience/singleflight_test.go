package resilience

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestGroup_CollapsesConcurrentCalls(t *testing.T) {
	var g Group[int]
	var runs, sharedCount atomic.Int32

	const workers = 20
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			<-start
			v, shared, err := g.Do("season-1/week-2", func() (int, error) {
				runs.Add(1)
				time.Sleep(20 * time.Millisecond)
				return 6, nil
			})
			if err != nil || v != 6 {
				t.Errorf("unexpected result %d, %v", v, err)
			}
			if shared {
				sharedCount.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	// A straggler arriving after the flight lands starts a new one.
	if runs.Load() >= workers || sharedCount.Load() == 0 {
		t.Fatalf("expected callers to share flights, got runs=%d shared=%d", runs.Load(), sharedCount.Load())
	}
}

func TestGroup_ForgetsKeyAfterCompletion(t *testing.T) {
	var g Group[string]
	boom := errors.New("boom")

	if _, _, err := g.Do("k", func() (string, error) { return "", boom }); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	v, shared, err := g.Do("k", func() (string, error) { return "second", nil })
	if err != nil || shared || v != "second" {
		t.Fatalf("expected a fresh run, got %q shared=%v err=%v", v, shared, err)
	}
}

func TestGroup_ForgetStartsFreshExecution(t *testing.T) {
	var g Group[int]
	release := make(chan struct{})
	started := make(chan struct{})

	go func() {
		_, _, _ = g.Do("k", func() (int, error) {
			close(started)
			<-release
			return 1, nil
		})
	}()
	<-started
	g.Forget("k")

	v, shared, err := g.Do("k", func() (int, error) { return 2, nil })
	close(release)
	if err != nil || shared || v != 2 {
		t.Fatalf("expected a fresh run after Forget, got %d shared=%v err=%v", v, shared, err)
	}
}
