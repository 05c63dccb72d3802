package signaling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSchedulerFires(t *testing.T) {
	s := NewScheduler()
	fired := make(chan struct{})

	s.After(time.Millisecond, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timer did not fire")
	}
}

func TestSchedulerCancel(t *testing.T) {
	s := NewScheduler()
	fired := make(chan struct{}, 1)

	cancel := s.After(50*time.Millisecond, func() { fired <- struct{}{} })
	cancel()

	select {
	case <-fired:
		t.Fatal("cancelled timer fired")
	case <-time.After(150 * time.Millisecond):
	}

	// Cancelling again is a no-op
	assert.NotPanics(t, func() { cancel() })
}
