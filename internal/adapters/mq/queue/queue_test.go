package queue

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/mergington/internal/domain/model"
)

func change(email string) Change {
	return Change{
		ID:              "id-" + email,
		Kind:            model.ChangeSignup,
		Activity:        "Chess Club",
		Email:           email,
		Participants:    3,
		MaxParticipants: 12,
		At:              time.Now(),
	}
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
	if !q.Enqueue(ctx, change("a@mergington.edu")) {
		t.Fatal("expected enqueue to succeed")
	}
	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	got := <-q.Dequeue(ctx)
	if got.Email != "a@mergington.edu" || got.Kind != model.ChangeSignup {
		t.Errorf("unexpected change %+v", got)
	}
	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if q.Cap() != 2 {
		t.Fatalf("expected capacity 2, got %d", q.Cap())
	}
	if !q.Enqueue(ctx, change("a@mergington.edu")) || !q.Enqueue(ctx, change("b@mergington.edu")) {
		t.Fatal("expected enqueue to succeed below capacity")
	}
	if q.Enqueue(ctx, change("c@mergington.edu")) {
		t.Error("expected enqueue to fail when full")
	}
	if l := q.Len(ctx); l != 2 {
		t.Errorf("expected length 2, got %d", l)
	}
}

func TestInMemoryQueue_DefaultCapacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(0))
	if q.Cap() != defaultCapacity {
		t.Errorf("expected default capacity %d, got %d", defaultCapacity, q.Cap())
	}
}

func TestInMemoryQueue_CancelledContext(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if q.Enqueue(ctx, change("a@mergington.edu")) {
		t.Error("expected enqueue to fail with cancelled context")
	}
}

func TestInMemoryQueue_Close(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(4))
	ctx := context.Background()

	_ = q.Enqueue(ctx, change("a@mergington.edu"))
	if err := q.Close(); err != nil {
		t.Fatalf("unexpected close error: %v", err)
	}
	if err := q.Close(); err != nil {
		t.Fatalf("second close should be a no-op, got %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to report closed")
	}
	if q.Enqueue(ctx, change("b@mergington.edu")) {
		t.Error("expected enqueue to fail after close")
	}

	// Buffered changes drain before the channel reports closed.
	var drained []string
	for c := range q.Dequeue(ctx) {
		drained = append(drained, c.Email)
	}
	if len(drained) != 1 || drained[0] != "a@mergington.edu" {
		t.Errorf("unexpected drained changes %v", drained)
	}
}

func TestInMemoryQueue_ConcurrentAccess(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(100))
	ctx := context.Background()
	const producers, perProducer = 10, 50

	var wg sync.WaitGroup
	for i := 0; i < producers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < perProducer; j++ {
				c := change(fmt.Sprintf("student%d_%d@mergington.edu", id, j))
				for !q.Enqueue(ctx, c) {
					time.Sleep(time.Millisecond)
				}
			}
		}(i)
	}

	received := 0
	done := make(chan struct{})
	go func() {
		defer close(done)
		for range q.Dequeue(ctx) {
			received++
			if received == producers*perProducer {
				return
			}
		}
	}()

	wg.Wait()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for consumer")
	}
	if received != producers*perProducer {
		t.Errorf("expected %d changes, got %d", producers*perProducer, received)
	}
}
