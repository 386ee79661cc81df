package coldcopy

import (
	"time"
)

// Measure runs op bracketed by a monotonic high-resolution clock and returns
// the elapsed wall-clock time in seconds. Exactly the operation is inside the
// bracket; rotation bookkeeping and eviction happen outside it. One raw
// sample per call, no aggregation.
func Measure(op func()) float64 {
	start := time.Now()
	op()
	return time.Since(start).Seconds()
}
