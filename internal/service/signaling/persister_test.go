package signaling

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPersisterRunsOpsInOrder(t *testing.T) {
	p := NewPersister(16, nil)

	var mu sync.Mutex
	var order []int
	for i := 0; i < 5; i++ {
		i := i
		p.Enqueue("op", func(ctx context.Context) error {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			return nil
		})
	}

	p.Close()
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestPersisterSwallowsFailures(t *testing.T) {
	p := NewPersister(4, nil)

	done := make(chan struct{})
	p.Enqueue("fails", func(ctx context.Context) error {
		return errors.New("store down")
	})
	p.Enqueue("after", func(ctx context.Context) error {
		close(done)
		return nil
	})

	p.Close()

	select {
	case <-done:
	default:
		t.Fatal("op after a failure never ran")
	}
}

func TestPersisterEnqueueAfterClose(t *testing.T) {
	p := NewPersister(4, nil)
	p.Close()

	assert.NotPanics(t, func() {
		p.Enqueue("late", func(ctx context.Context) error { return nil })
	})
}
