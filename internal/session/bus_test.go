package session

import (
	"errors"
	"sync"
	"testing"

	"github.com/muurk/heatlink/internal/protocol"
)

func matchAll(protocol.Message) bool { return true }

func TestBusOnceFiresAtMostOnce(t *testing.T) {
	bus := NewBus()
	calls := 0
	bus.Subscribe(matchAll, func(protocol.Message) error {
		calls++
		return nil
	}, true)

	for i := 0; i < 3; i++ {
		if err := bus.Dispatch(&protocol.LoginResponse{}); err != nil {
			t.Fatalf("Dispatch() error = %v", err)
		}
	}
	if calls != 1 {
		t.Errorf("once handler invoked %d times, want 1", calls)
	}
	if bus.Len() != 0 {
		t.Errorf("Len() = %d after once fired, want 0", bus.Len())
	}
}

func TestBusPersistentFiresPerMatch(t *testing.T) {
	bus := NewBus()
	calls := 0
	bus.Subscribe(matchAll, func(protocol.Message) error {
		calls++
		return nil
	}, false)

	for i := 0; i < 5; i++ {
		if err := bus.Dispatch(&protocol.BundleResponse{}); err != nil {
			t.Fatalf("Dispatch() error = %v", err)
		}
	}
	if calls != 5 {
		t.Errorf("persistent handler invoked %d times, want 5", calls)
	}
}

func TestBusRegistrationOrder(t *testing.T) {
	bus := NewBus()
	var order []int
	for i := 0; i < 4; i++ {
		i := i
		bus.Subscribe(matchAll, func(protocol.Message) error {
			order = append(order, i)
			return nil
		}, false)
	}

	if err := bus.Dispatch(&protocol.LoginResponse{}); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	for i, got := range order {
		if got != i {
			t.Fatalf("invocation order = %v, want registration order", order)
		}
	}
}

func TestBusPredicateGating(t *testing.T) {
	bus := NewBus()
	loginCalls, bundleCalls := 0, 0
	bus.Subscribe(messageIs[*protocol.LoginResponse](), func(protocol.Message) error {
		loginCalls++
		return nil
	}, false)
	bus.Subscribe(messageIs[*protocol.BundleResponse](), func(protocol.Message) error {
		bundleCalls++
		return nil
	}, false)

	_ = bus.Dispatch(&protocol.BundleResponse{})
	_ = bus.Dispatch(&protocol.BundleResponse{})
	_ = bus.Dispatch(&protocol.LoginResponse{})

	if loginCalls != 1 || bundleCalls != 2 {
		t.Errorf("calls = (%d login, %d bundle), want (1, 2)", loginCalls, bundleCalls)
	}
}

func TestBusZeroMatchIsNotAnError(t *testing.T) {
	bus := NewBus()
	if err := bus.Dispatch(&protocol.SystemConfigResponse{}); err != nil {
		t.Errorf("Dispatch() with no subscriptions error = %v, want nil", err)
	}
}

func TestBusHandlerErrorEscapes(t *testing.T) {
	bus := NewBus()
	boom := errors.New("boom")
	bus.Subscribe(matchAll, func(protocol.Message) error { return boom }, false)

	if err := bus.Dispatch(&protocol.LoginResponse{}); !errors.Is(err, boom) {
		t.Errorf("Dispatch() error = %v, want %v", err, boom)
	}
}

func TestBusOnceSpentEvenWhenHandlerFails(t *testing.T) {
	bus := NewBus()
	calls := 0
	bus.Subscribe(matchAll, func(protocol.Message) error {
		calls++
		return errors.New("boom")
	}, true)

	_ = bus.Dispatch(&protocol.LoginResponse{})
	_ = bus.Dispatch(&protocol.LoginResponse{})
	if calls != 1 {
		t.Errorf("once handler invoked %d times across failing dispatches, want 1", calls)
	}
}

func TestBusSubscribeDuringDispatch(t *testing.T) {
	bus := NewBus()
	lateCalls := 0
	bus.Subscribe(matchAll, func(protocol.Message) error {
		// Workflow steps advance by registering the next handler from
		// within the current one.
		bus.Subscribe(matchAll, func(protocol.Message) error {
			lateCalls++
			return nil
		}, false)
		return nil
	}, true)

	if err := bus.Dispatch(&protocol.LoginResponse{}); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	// The staged subscription must not see the message that was in
	// flight while it was registered.
	if lateCalls != 0 {
		t.Fatalf("staged handler saw in-flight message %d times, want 0", lateCalls)
	}

	if err := bus.Dispatch(&protocol.LoginResponse{}); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if lateCalls != 1 {
		t.Errorf("staged handler invoked %d times on next dispatch, want 1", lateCalls)
	}
}

func TestAllocatorUniqueUnderConcurrency(t *testing.T) {
	var alloc Allocator
	const goroutines = 8
	const perGoroutine = 200

	var wg sync.WaitGroup
	results := make([][]string, goroutines)
	for g := 0; g < goroutines; g++ {
		g := g
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids := make([]string, perGoroutine)
			for i := range ids {
				ids[i] = alloc.Next()
			}
			results[g] = ids
		}()
	}
	wg.Wait()

	seen := make(map[string]bool)
	for _, ids := range results {
		for _, id := range ids {
			if seen[id] {
				t.Fatalf("duplicate correlation id %q", id)
			}
			seen[id] = true
		}
	}
	if len(seen) != goroutines*perGoroutine {
		t.Errorf("got %d distinct ids, want %d", len(seen), goroutines*perGoroutine)
	}
}
