package events

import (
	"time"
)

// Event is the base interface for all diagnostic events.
type Event interface {
	EventType() string
	Task() string
}

// Topic constants
const (
	TopicTask = "task"
	TopicRun  = "run"
)

// Event type constants
const (
	EventTypeTaskAttempt   = "task.attempt"
	EventTypeTaskSucceeded = "task.succeeded"
	EventTypeTaskDegraded  = "task.degraded"
	EventTypeStageChanged  = "run.stage"
	EventTypeRunFinished   = "run.finished"
)

// TaskAttemptEvent is published after every provider attempt, failed or
// not. Err is empty on a successful attempt.
type TaskAttemptEvent struct {
	TaskName  string
	Attempt   int // 0-indexed
	Err       string
	Timestamp time.Time
}

func (e TaskAttemptEvent) EventType() string { return EventTypeTaskAttempt }
func (e TaskAttemptEvent) Task() string      { return e.TaskName }

// TaskSucceededEvent is published when a task yields a validated result.
type TaskSucceededEvent struct {
	TaskName  string
	Attempts  int
	Timestamp time.Time
}

func (e TaskSucceededEvent) EventType() string { return EventTypeTaskSucceeded }
func (e TaskSucceededEvent) Task() string      { return e.TaskName }

// TaskDegradedEvent is published when a task falls back to its default
// value after exhausting retries.
type TaskDegradedEvent struct {
	TaskName  string
	Attempts  int
	LastError string
	Timestamp time.Time
}

func (e TaskDegradedEvent) EventType() string { return EventTypeTaskDegraded }
func (e TaskDegradedEvent) Task() string      { return e.TaskName }

// StageChangedEvent is published on every coordinator stage transition.
type StageChangedEvent struct {
	RunID     string
	From      string
	To        string
	Timestamp time.Time
}

func (e StageChangedEvent) EventType() string { return EventTypeStageChanged }
func (e StageChangedEvent) Task() string      { return "" }

// RunFinishedEvent is published once per run with the final status and
// the names of any degraded tasks.
type RunFinishedEvent struct {
	RunID     string
	Status    string
	Degraded  []string
	Timestamp time.Time
}

func (e RunFinishedEvent) EventType() string { return EventTypeRunFinished }
func (e RunFinishedEvent) Task() string      { return "" }
