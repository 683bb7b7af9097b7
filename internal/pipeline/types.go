package pipeline

import (
	"sync"
	"time"
)

// Stage describes a high-level analysis phase.
type Stage string

const (
	// StageLoad reads files from disk.
	StageLoad Stage = "load"
	// StageParse is lexing plus parsing.
	StageParse Stage = "parse"
	// StagePass1 declares items of every unit.
	StagePass1 Stage = "pass1"
	// StagePass2 resolves references.
	StagePass2 Stage = "pass2"
	// StageExport produces flat records, index rows and cache entries.
	StageExport Stage = "export"
)

// Stages lists the stages in pipeline order.
var Stages = []Stage{StageLoad, StageParse, StagePass1, StagePass2, StageExport}

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the file is waiting to start.
	StatusQueued Status = "queued"
	// StatusWorking indicates the file is currently processed.
	StatusWorking Status = "working"
	// StatusDone indicates the stage finished for the file.
	StatusDone Status = "done"
	// StatusError indicates the stage produced errors for the file.
	StatusError Status = "error"
)

// Event reports progress for a file (or for the overall pipeline when File is empty).
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events.
type ProgressSink interface {
	OnEvent(Event)
}

// Timings holds stage durations. Safe for concurrent Set.
type Timings struct {
	mu     sync.Mutex
	stages map[Stage]time.Duration
}

// Set stores a duration for the given stage.
func (t *Timings) Set(stage Stage, dur time.Duration) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stages == nil {
		t.stages = make(map[Stage]time.Duration)
	}
	t.stages[stage] = dur
}

// Has reports whether a duration for stage is recorded.
func (t *Timings) Has(stage Stage) bool {
	if t == nil {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.stages[stage]
	return ok
}

// Duration returns the recorded duration for stage.
func (t *Timings) Duration(stage Stage) time.Duration {
	if t == nil {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stages[stage]
}

// Sum returns the sum of durations across the provided stages.
func (t *Timings) Sum(stages ...Stage) time.Duration {
	if t == nil {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	var total time.Duration
	for _, stage := range stages {
		total += t.stages[stage]
	}
	return total
}
