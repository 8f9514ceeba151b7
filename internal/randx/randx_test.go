package randx

import (
	"sync"
	"testing"
)

func TestConcurrentDraws(t *testing.T) {
	rng := New(7)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				if n := rng.Intn(2); n < 0 || n > 1 {
					t.Errorf("Intn(2) = %d", n)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestSeededSequenceIsDeterministic(t *testing.T) {
	a, b := New(42), New(42)
	for i := 0; i < 100; i++ {
		if x, y := a.Int63(), b.Int63(); x != y {
			t.Fatalf("draw %d: %d != %d", i, x, y)
		}
	}
}
