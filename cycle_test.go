package coldcopy

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCycleEndToEnd(t *testing.T) {
	if !LineFlushAvailable() {
		t.Skip("Line flush instruction not available on this platform")
	}

	src := testSource(64)
	cfg := Config{
		Source:     src,
		CopyCount:  4,
		Evictor:    EvictorLineFlush,
		Segments:   []Segment{{Offset: 0, Length: 32}},
		Iterations: 8,
	}
	c, err := NewBenchmarkCycle(cfg)
	if err != nil {
		t.Fatalf("NewBenchmarkCycle failed: %v", err)
	}
	res := RunOrFail(t, c)

	if res.SampleCount != 8 || len(res.Durations) != 8 {
		t.Errorf("SampleCount = %d (len %d), want 8", res.SampleCount, len(res.Durations))
	}
	// Rotation wraps after iterations 4 and 8: two epoch evictions.
	if c.Evictions() != 2 {
		t.Errorf("Evictions = %d, want 2", c.Evictions())
	}
	if c.Epoch() != 2 {
		t.Errorf("Epoch = %d, want 2", c.Epoch())
	}
	if res.TotalBytesMoved != 8*32 {
		t.Errorf("TotalBytesMoved = %d, want %d", res.TotalBytesMoved, 8*32)
	}
	if diff := cmp.Diff(src[:32], c.Destination()); diff != "" {
		t.Errorf("Destination differs from source prefix (-want +got):\n%s", diff)
	}
	for i, d := range res.Durations {
		if d < 0 {
			t.Errorf("Sample %d is negative: %g", i, d)
		}
	}
}

func TestCycleWithEachEvictor(t *testing.T) {
	kinds := []EvictorKind{EvictorNone, EvictorLineFlush, EvictorBulkOverwrite, EvictorTlbInvalidate}

	for _, kind := range kinds {
		t.Run(kind.String(), func(t *testing.T) {
			if kind == EvictorLineFlush && !LineFlushAvailable() {
				t.Skip("Line flush instruction not available on this platform")
			}
			if kind == EvictorTlbInvalidate && !TlbToggleAvailable() {
				t.Skip("Protection toggling not available on this platform")
			}

			src := testSource(4096)
			cfg := Config{
				Source:         src,
				CopyCount:      3,
				Alignment:      PageAlign,
				PerCopyPadding: PageAlign,
				Evictor:        kind,
				ScratchSize:    L1CacheSize, // BulkOverwrite only; ignored otherwise
				GuardPadding:   PageAlign,
				Segments:       []Segment{{Offset: 100, Length: 400}, {Offset: 2048, Length: 300}},
				Iterations:     7,
			}
			c, err := NewBenchmarkCycle(cfg)
			if err != nil {
				t.Fatalf("NewBenchmarkCycle failed: %v", err)
			}
			res := RunOrFail(t, c)

			if res.SampleCount != 7 {
				t.Errorf("SampleCount = %d, want 7", res.SampleCount)
			}
			// copyCount=3, 7 iterations: wraps after iterations 3 and 6.
			if c.Evictions() != 2 {
				t.Errorf("Evictions = %d, want 2", c.Evictions())
			}
			if res.TotalBytesMoved != 7*700 {
				t.Errorf("TotalBytesMoved = %d, want %d", res.TotalBytesMoved, 7*700)
			}

			wantAlloc := int64(3*PageAlign + PageAlign) // copies + alignment slack
			if kind == EvictorBulkOverwrite {
				wantAlloc += int64(L1CacheSize + 2*PageAlign)
			}
			if res.TotalBytesAllocated != wantAlloc {
				t.Errorf("TotalBytesAllocated = %d, want %d", res.TotalBytesAllocated, wantAlloc)
			}

			want := append(append([]byte{}, src[100:500]...), src[2048:2348]...)
			if diff := cmp.Diff(want, c.Destination()); diff != "" {
				t.Errorf("Destination mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCycleConfigurationErrors(t *testing.T) {
	base := func() Config {
		return Config{
			SourceSize: 256,
			CopyCount:  4,
			Iterations: 4,
			Segments:   []Segment{{Offset: 0, Length: 64}},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr func(error) bool
	}{
		{
			name:    "ZeroCopyCount",
			mutate:  func(c *Config) { c.CopyCount = 0 },
			wantErr: IsConfigError,
		},
		{
			name:    "ZeroIterations",
			mutate:  func(c *Config) { c.Iterations = 0 },
			wantErr: IsConfigError,
		},
		{
			name:    "SegmentPastEnd",
			mutate:  func(c *Config) { c.Segments = []Segment{{Offset: 200, Length: 100}} },
			wantErr: IsConfigError,
		},
		{
			name:    "SegmentNegativeOffset",
			mutate:  func(c *Config) { c.Segments = []Segment{{Offset: -1, Length: 10}} },
			wantErr: IsConfigError,
		},
		{
			name:    "SegmentZeroLength",
			mutate:  func(c *Config) { c.Segments = []Segment{{Offset: 0, Length: 0}} },
			wantErr: IsConfigError,
		},
		{
			name:    "UnknownEvictor",
			mutate:  func(c *Config) { c.Evictor = EvictorKind(42) },
			wantErr: IsConfigError,
		},
		{
			name:    "NegativeScratch",
			mutate:  func(c *Config) { c.Evictor = EvictorBulkOverwrite; c.ScratchSize = -1 },
			wantErr: IsConfigError,
		},
		{
			name:    "BadAlignment",
			mutate:  func(c *Config) { c.Alignment = 100 },
			wantErr: IsConfigError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			c, err := NewBenchmarkCycle(cfg)
			if err == nil {
				c.Close()
				t.Fatal("Expected error, got cycle")
			}
			if !tt.wantErr(err) {
				t.Errorf("Wrong error category: %v", err)
			}
		})
	}

	if LineFlushAvailable() {
		t.Run("FlushRangePastPool", func(t *testing.T) {
			cfg := base()
			cfg.Evictor = EvictorLineFlush
			cfg.FlushRangeSize = 4*256 + 1
			if _, err := NewBenchmarkCycle(cfg); !IsConfigError(err) {
				t.Errorf("Expected configuration error, got %v", err)
			}
		})
	} else {
		t.Run("LineFlushUnavailable", func(t *testing.T) {
			cfg := base()
			cfg.Evictor = EvictorLineFlush
			if _, err := NewBenchmarkCycle(cfg); !IsUnsupportedError(err) {
				t.Errorf("Expected PlatformUnsupported error, got %v", err)
			}
		})
	}
}

func TestCycleRunsOnce(t *testing.T) {
	cfg := Config{
		SourceSize: 128,
		CopyCount:  2,
		Iterations: 2,
		Segments:   []Segment{{Offset: 0, Length: 64}},
	}
	c, err := NewBenchmarkCycle(cfg)
	if err != nil {
		t.Fatalf("NewBenchmarkCycle failed: %v", err)
	}
	RunOrFail(t, c)

	if _, err := c.Run(); !IsStateError(err) {
		t.Errorf("Second Run: expected state error, got %v", err)
	}
}

func TestCycleStopBetweenIterations(t *testing.T) {
	cfg := Config{
		SourceSize: 128,
		CopyCount:  2,
		Iterations: 1 << 20,
		Segments:   []Segment{{Offset: 0, Length: 64}},
	}
	c, err := NewBenchmarkCycle(cfg)
	if err != nil {
		t.Fatalf("NewBenchmarkCycle failed: %v", err)
	}

	// Stop posted before the loop starts: zero iterations run, and the
	// partial result is still well-formed.
	c.Stop()
	res := RunOrFail(t, c)
	if res.SampleCount != 0 || len(res.Durations) != 0 {
		t.Errorf("SampleCount = %d after pre-run stop, want 0", res.SampleCount)
	}
}

func TestCycleCloseIdempotent(t *testing.T) {
	cfg := Config{
		SourceSize: 128,
		CopyCount:  2,
		Iterations: 2,
		Segments:   []Segment{{Offset: 0, Length: 64}},
	}
	c, err := NewBenchmarkCycle(cfg)
	if err != nil {
		t.Fatalf("NewBenchmarkCycle failed: %v", err)
	}
	RunOrFail(t, c)

	for i := 0; i < 3; i++ {
		if err := c.Close(); err != nil {
			t.Fatalf("Close %d failed: %v", i, err)
		}
	}
}

func TestCycleDefaults(t *testing.T) {
	cfg := Config{
		CopyCount:  2,
		Iterations: 3,
	}
	c, err := NewBenchmarkCycle(cfg)
	if err != nil {
		t.Fatalf("NewBenchmarkCycle with defaults failed: %v", err)
	}
	res := RunOrFail(t, c)

	if res.SampleCount != 3 {
		t.Errorf("SampleCount = %d, want 3", res.SampleCount)
	}
	wantPerIter := 0
	for _, s := range DefaultSegments() {
		wantPerIter += s.Length
	}
	if res.TotalBytesMoved != int64(3*wantPerIter) {
		t.Errorf("TotalBytesMoved = %d, want %d", res.TotalBytesMoved, 3*wantPerIter)
	}
	// The default source is DefaultSourceSize bytes of the fill byte.
	for i, b := range c.Destination() {
		if b != DefaultFillByte {
			t.Fatalf("Destination byte %d = %#x, want %#x", i, b, DefaultFillByte)
		}
	}
}

func TestCopySegments(t *testing.T) {
	src := testSource(100)
	dst := make([]byte, 30)

	n := copySegments(dst, src, []Segment{{Offset: 10, Length: 20}, {Offset: 90, Length: 10}})
	if n != 30 {
		t.Errorf("copySegments moved %d bytes, want 30", n)
	}
	want := append(append([]byte{}, src[10:30]...), src[90:100]...)
	if diff := cmp.Diff(want, dst); diff != "" {
		t.Errorf("Segment copy mismatch (-want +got):\n%s", diff)
	}
}

func BenchmarkColdCopy(b *testing.B) {
	kinds := []EvictorKind{EvictorNone, EvictorBulkOverwrite}
	if LineFlushAvailable() {
		kinds = append(kinds, EvictorLineFlush)
	}
	if TlbToggleAvailable() {
		kinds = append(kinds, EvictorTlbInvalidate)
	}

	for _, kind := range kinds {
		b.Run(fmt.Sprintf("Evictor_%s", kind), func(b *testing.B) {
			cfg := Config{
				SourceSize:     DefaultSourceSize,
				CopyCount:      64,
				Alignment:      PageAlign,
				PerCopyPadding: PageAlign,
				Evictor:        kind,
				ScratchSize:    4 * L2CacheSize,
				GuardPadding:   L2CacheSize,
				Iterations:     b.N,
			}
			c, err := NewBenchmarkCycle(cfg)
			if err != nil {
				b.Fatalf("NewBenchmarkCycle failed: %v", err)
			}

			b.ResetTimer()
			res, err := c.Run()
			b.StopTimer()
			if err != nil {
				b.Fatalf("Run failed: %v", err)
			}

			var total float64
			for _, d := range res.Durations {
				total += d
			}
			if res.SampleCount > 0 && total > 0 {
				b.ReportMetric(total/float64(res.SampleCount)*1e9, "ns/copy")
				b.ReportMetric(float64(res.TotalBytesMoved)/total/1e9, "GB/s")
			}
		})
	}
}
