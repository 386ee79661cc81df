package coldcopy

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// RunRecord captures one completed benchmark run for the session log. The
// summary fields are a reporting convenience for drivers; the core hands out
// raw durations only.
type RunRecord struct {
	Name           string    `json:"name"`
	Evictor        string    `json:"evictor"`
	CopyCount      int       `json:"copy_count,omitempty"`
	SampleCount    int       `json:"sample_count"`
	MinSeconds     float64   `json:"min_seconds,omitempty"`
	MeanSeconds    float64   `json:"mean_seconds,omitempty"`
	MaxSeconds     float64   `json:"max_seconds,omitempty"`
	BytesMoved     int64     `json:"bytes_moved,omitempty"`
	BytesAllocated int64     `json:"bytes_allocated,omitempty"`
	Error          string    `json:"error,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// NewRunRecord summarizes a run result into a loggable record.
func NewRunRecord(name string, cfg Config, res Result) RunRecord {
	rec := RunRecord{
		Name:           name,
		Evictor:        cfg.Evictor.String(),
		CopyCount:      cfg.CopyCount,
		SampleCount:    res.SampleCount,
		BytesMoved:     res.TotalBytesMoved,
		BytesAllocated: res.TotalBytesAllocated,
	}
	if len(res.Durations) > 0 {
		min, max, sum := res.Durations[0], res.Durations[0], 0.0
		for _, d := range res.Durations {
			if d < min {
				min = d
			}
			if d > max {
				max = d
			}
			sum += d
		}
		rec.MinSeconds = min
		rec.MaxSeconds = max
		rec.MeanSeconds = sum / float64(len(res.Durations))
	}
	return rec
}

// RunLogger manages logging of run records to file
type RunLogger struct {
	mu          sync.Mutex
	records     []RunRecord
	logDir      string
	sessionFile string
}

var globalLogger = &RunLogger{
	logDir: "coldcopy_logs",
}

// InitRunLogger initializes the logger for a new benchmark session
func InitRunLogger(sessionName string) error {
	globalLogger.mu.Lock()
	defer globalLogger.mu.Unlock()

	if err := os.MkdirAll(globalLogger.logDir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	timestamp := time.Now().Format("20060102_150405")
	globalLogger.sessionFile = filepath.Join(globalLogger.logDir,
		fmt.Sprintf("%s_%s.json", sessionName, timestamp))

	globalLogger.records = nil

	return globalLogger.flush()
}

// LogRunRecord appends one record to the session log
func LogRunRecord(rec RunRecord) {
	globalLogger.mu.Lock()
	defer globalLogger.mu.Unlock()

	rec.Timestamp = time.Now()
	globalLogger.records = append(globalLogger.records, rec)

	// Flush to disk immediately to avoid losing data on crash
	globalLogger.flush()
}

// LogRunError logs a failed run
func LogRunError(name string, err error) {
	LogRunRecord(RunRecord{
		Name:  name,
		Error: err.Error(),
	})
}

// flush writes all records to the session file. Caller must hold mu.
func (l *RunLogger) flush() error {
	if l.sessionFile == "" {
		return nil
	}
	data, err := json.MarshalIndent(l.records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal records: %w", err)
	}
	return os.WriteFile(l.sessionFile, data, 0644)
}

// SessionFile returns the current session log path, if a session is active
func SessionFile() string {
	globalLogger.mu.Lock()
	defer globalLogger.mu.Unlock()
	return globalLogger.sessionFile
}
