package counter

import (
	"sync"
	"testing"
)

func TestCounterSequential(t *testing.T) {
	c := NewCounter()
	c.Add(3)
	c.Add(4)
	if c.Count() != 7 {
		t.Errorf("expected 7, got %d", c.Count())
	}
}

func TestCounterConcurrent(t *testing.T) {
	c := NewCounter()
	wg := sync.WaitGroup{}
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Add(1)
		}()
	}
	wg.Wait()
	if c.Count() != 100 {
		t.Errorf("expected 100, got %d", c.Count())
	}
}
