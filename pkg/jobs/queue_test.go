package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestQueueProcessesJobs(t *testing.T) {
	var mu sync.Mutex
	processed := make([]string, 0, 2)
	done := make(chan struct{}, 2)

	queue := NewQueue("test", func(_ context.Context, job Job) error {
		mu.Lock()
		processed = append(processed, job.ID)
		mu.Unlock()
		done <- struct{}{}
		return nil
	}, QueueConfig{Workers: 2})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	queue.Start(ctx)
	defer queue.Stop()

	if err := queue.Enqueue(Job{ID: "job-1", Type: "test"}); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}
	if err := queue.Enqueue(Job{ID: "job-2", Type: "test"}); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for jobs")
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if len(processed) != 2 {
		t.Fatalf("expected 2 processed jobs, got %d", len(processed))
	}
}

func TestQueueRetriesFailedJobs(t *testing.T) {
	var mu sync.Mutex
	attempts := 0
	done := make(chan struct{})

	queue := NewQueue("retry", func(_ context.Context, _ Job) error {
		mu.Lock()
		attempts++
		current := attempts
		mu.Unlock()
		if current < 3 {
			return errors.New("transient")
		}
		close(done)
		return nil
	}, QueueConfig{Workers: 1, MaxRetries: 5, RetryDelay: 5 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	queue.Start(ctx)
	defer queue.Stop()

	if err := queue.Enqueue(Job{ID: "job-1", Type: "retry"}); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job never succeeded after retries")
	}
}

func TestQueueEnqueueBeforeStart(t *testing.T) {
	queue := NewQueue("idle", func(context.Context, Job) error { return nil }, QueueConfig{})
	if err := queue.Enqueue(Job{ID: "job-1"}); err == nil {
		t.Fatal("expected error when queue not started")
	}
}
