package watch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestDebounceCollapsesBurst(t *testing.T) {
	runs := make(chan struct{}, 16)
	eng := NewEngine(func(ctx context.Context) error {
		runs <- struct{}{}
		return nil
	}, 30*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		_ = eng.Run(ctx)
		close(done)
	}()

	for i := 0; i < 5; i++ {
		eng.Notify("rules/a.md")
	}

	select {
	case <-runs:
	case <-time.After(2 * time.Second):
		t.Fatal("sync never ran")
	}
	// The burst must not schedule further runs.
	select {
	case <-runs:
		t.Error("burst of changes triggered more than one sync")
	case <-time.After(150 * time.Millisecond):
	}

	cancel()
	<-done
}

func TestTransitions(t *testing.T) {
	synced := make(chan struct{})
	eng := NewEngine(func(ctx context.Context) error {
		close(synced)
		return nil
	}, 10*time.Millisecond)

	var mu sync.Mutex
	var seen []State
	eng.OnTransition(func(from, to State) {
		mu.Lock()
		seen = append(seen, to)
		mu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = eng.Run(ctx)
		close(done)
	}()

	eng.Notify("skills/deploy.md")
	select {
	case <-synced:
	case <-time.After(2 * time.Second):
		t.Fatal("sync never ran")
	}
	cancel()
	<-done

	mu.Lock()
	defer mu.Unlock()
	want := []State{StateWatching, StateDebouncing, StateSyncing, StateWatching, StateIdle}
	if len(seen) != len(want) {
		t.Fatalf("transitions = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("transition %d = %s, want %s", i, seen[i], want[i])
		}
	}
}

func TestSyncFailureKeepsLoopAlive(t *testing.T) {
	runs := make(chan struct{}, 16)
	eng := NewEngine(func(ctx context.Context) error {
		runs <- struct{}{}
		return errors.New("target unavailable")
	}, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		_ = eng.Run(ctx)
		close(done)
	}()

	eng.Notify("rules/a.md")
	select {
	case <-runs:
	case <-time.After(2 * time.Second):
		t.Fatal("first sync never ran")
	}

	eng.Notify("rules/b.md")
	select {
	case <-runs:
	case <-time.After(2 * time.Second):
		t.Fatal("engine stopped after a failed sync")
	}

	cancel()
	<-done
}

func TestSyncRunsNeverOverlap(t *testing.T) {
	var mu sync.Mutex
	active, maxActive, total := 0, 0, 0
	release := make(chan struct{})

	eng := NewEngine(func(ctx context.Context) error {
		mu.Lock()
		active++
		if active > maxActive {
			maxActive = active
		}
		total++
		mu.Unlock()

		<-release

		mu.Lock()
		active--
		mu.Unlock()
		return nil
	}, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		_ = eng.Run(ctx)
		close(done)
	}()

	eng.Notify("rules/a.md")
	waitForState(t, eng, StateSyncing)

	// Change arriving mid-sync is buffered, not run concurrently.
	eng.Notify("rules/b.md")
	release <- struct{}{}
	waitForState(t, eng, StateSyncing)
	release <- struct{}{}

	waitForState(t, eng, StateWatching)
	cancel()
	<-done

	mu.Lock()
	defer mu.Unlock()
	if maxActive != 1 {
		t.Errorf("max concurrent syncs = %d, want 1", maxActive)
	}
	if total != 2 {
		t.Errorf("total syncs = %d, want 2", total)
	}
}

func TestCancellationReturnsNil(t *testing.T) {
	eng := NewEngine(func(ctx context.Context) error { return nil }, time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := eng.Run(ctx); err != nil {
		t.Errorf("Run after cancel = %v, want nil", err)
	}
	if eng.State() != StateIdle {
		t.Errorf("state after Run = %s, want idle", eng.State())
	}
}

func waitForState(t *testing.T, eng *Engine, want State) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if eng.State() == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("engine never reached state %s (at %s)", want, eng.State())
}
