package shutdown

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	customlog "github.com/open-teleop/rover/pkg/log"
)

func TestRequestStopIsIdempotent(t *testing.T) {
	c := NewCoordinator(customlog.NewDiscardLogger())

	if c.IsStopRequested() {
		t.Fatalf("New coordinator should not be stopped")
	}
	if !c.RequestStop("signal: interrupt") {
		t.Errorf("First RequestStop should report true")
	}
	if c.RequestStop("fatal") {
		t.Errorf("Second RequestStop should report false")
	}
	if !c.IsStopRequested() {
		t.Errorf("Expected stop to be requested")
	}
	if c.Reason() != "signal: interrupt" {
		t.Errorf("Expected first reason to stick, got %q", c.Reason())
	}

	select {
	case <-c.Done():
	default:
		t.Errorf("Done channel should be closed")
	}
}

func TestRequestStopConcurrent(t *testing.T) {
	c := NewCoordinator(customlog.NewDiscardLogger())

	var winners int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if c.RequestStop("race") {
				atomic.AddInt32(&winners, 1)
			}
		}()
	}
	wg.Wait()

	if winners != 1 {
		t.Errorf("Expected exactly one winning RequestStop, got %d", winners)
	}
}

func TestWaitInterruptedByStop(t *testing.T) {
	c := NewCoordinator(customlog.NewDiscardLogger())

	go func() {
		time.Sleep(20 * time.Millisecond)
		c.RequestStop("test")
	}()

	start := time.Now()
	if c.Wait(5 * time.Second) {
		t.Errorf("Wait should report false when interrupted")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Wait was not interrupted promptly: %v", elapsed)
	}
}

func TestWaitElapses(t *testing.T) {
	c := NewCoordinator(customlog.NewDiscardLogger())

	if !c.Wait(5 * time.Millisecond) {
		t.Errorf("Wait should report true when the duration elapses")
	}
	if !c.Wait(0) {
		t.Errorf("Zero wait should report true while running")
	}
	c.RequestStop("done")
	if c.Wait(0) {
		t.Errorf("Zero wait should report false after stop")
	}
}
