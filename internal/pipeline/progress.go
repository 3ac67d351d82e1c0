package pipeline

import (
	"fmt"
	"sync"
	"time"
)

// Stage names one step of an analysis run
type Stage string

const (
	StageClassify  Stage = "classify"
	StageExtract   Stage = "extract"
	StageNormalize Stage = "normalize"
	StageAggregate Stage = "aggregate"
	StageMetrics   Stage = "metrics"
	StageInsights  Stage = "insights"
	StageComplete  Stage = "complete"
	StageFailed    Stage = "failed"
)

// Progress is one progress event of a session
type Progress struct {
	SessionID  string  `json:"session_id"`
	Stage      Stage   `json:"stage"`
	Current    int     `json:"current"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
	Message    string  `json:"message"`
	ETA        string  `json:"eta,omitempty"`
}

// ProgressReporter receives progress events. Implementations must be safe for
// concurrent use; extraction reports from worker goroutines.
type ProgressReporter interface {
	ReportProgress(p Progress)
}

// ProgressFunc adapts a function to ProgressReporter
type ProgressFunc func(p Progress)

// ReportProgress calls f(p)
func (f ProgressFunc) ReportProgress(p Progress) { f(p) }

type noopReporter struct{}

func (noopReporter) ReportProgress(Progress) {}

// ProgressTracker counts completed units of one stage and estimates the time left
type ProgressTracker struct {
	stage     Stage
	total     int
	current   int
	startTime time.Time
	mu        sync.Mutex
}

// NewProgressTracker creates a new progress tracker
func NewProgressTracker(stage Stage, total int) *ProgressTracker {
	return &ProgressTracker{
		stage:     stage,
		total:     total,
		startTime: time.Now(),
	}
}

// Increment records one completed unit and returns the resulting event
func (p *ProgressTracker) Increment(sessionID, message string) Progress {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current++
	ev := Progress{
		SessionID: sessionID,
		Stage:     p.stage,
		Current:   p.current,
		Total:     p.total,
		Message:   message,
		ETA:       p.eta(),
	}
	if p.total > 0 {
		ev.Percentage = float64(p.current) / float64(p.total) * 100
	}
	return ev
}

// eta must be called with mu held
func (p *ProgressTracker) eta() string {
	if p.current == 0 || p.total == 0 {
		return "calculating..."
	}
	if p.current >= p.total {
		return ""
	}

	elapsed := time.Since(p.startTime)
	rate := float64(p.current) / elapsed.Seconds()
	if rate == 0 {
		return "calculating..."
	}

	remaining := float64(p.total-p.current) / rate
	switch {
	case remaining < 60:
		return fmt.Sprintf("%.0f seconds", remaining)
	case remaining < 3600:
		return fmt.Sprintf("%.1f minutes", remaining/60)
	default:
		return fmt.Sprintf("%.1f hours", remaining/3600)
	}
}
