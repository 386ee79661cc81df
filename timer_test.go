package coldcopy

import (
	"testing"
	"time"
)

func TestMeasureBracketsOperation(t *testing.T) {
	const delay = 20 * time.Millisecond

	got := Measure(func() {
		time.Sleep(delay)
	})

	if got < delay.Seconds() {
		t.Errorf("Measure = %.6fs, shorter than the %.6fs the operation took", got, delay.Seconds())
	}
	// Generous upper bound; sleep overshoots but not by an order of magnitude.
	if got > 10*delay.Seconds() {
		t.Errorf("Measure = %.6fs, implausibly long for a %.6fs operation", got, delay.Seconds())
	}
}

func TestMeasureExcludesEvictionCost(t *testing.T) {
	// A heavyweight eviction immediately before the bracket must not leak
	// into the measured interval.
	e := NewEvictorOrFail(t, EvictorBulkOverwrite, EvictorParams{
		ScratchSize: 4 * L2CacheSize,
	})
	defer e.Release()

	const delay = 5 * time.Millisecond
	for epoch := uint64(1); epoch <= 3; epoch++ {
		if err := e.Evict(epoch); err != nil {
			t.Fatalf("Evict failed: %v", err)
		}
		got := Measure(func() {
			time.Sleep(delay)
		})
		if got > 20*delay.Seconds() {
			t.Errorf("Epoch %d: Measure = %.6fs for a %.6fs operation; eviction cost leaked in?",
				epoch, got, delay.Seconds())
		}
	}
}

func TestMeasureZeroWork(t *testing.T) {
	got := Measure(func() {})
	if got < 0 {
		t.Errorf("Measure returned negative duration %.9fs", got)
	}
	if got > 1 {
		t.Errorf("Measure of an empty operation took %.3fs", got)
	}
}
