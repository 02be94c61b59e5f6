package events

import (
	"io"
	"log/slog"
)

// NewLogger builds a JSON slog logger writing to w at the given level.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// AttachLogger drains every bus event into logger as structured JSON
// lines. The returned channel closes after the bus closes and the
// drain loop exits; callers that care about flushing wait on it.
func AttachLogger(bus *Bus, logger *slog.Logger) <-chan struct{} {
	ch := bus.Subscribe(0)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for ev := range ch {
			logEvent(logger, ev)
		}
	}()

	return done
}

func logEvent(logger *slog.Logger, ev Event) {
	switch e := ev.(type) {
	case TaskAttemptEvent:
		if e.Err != "" {
			logger.Warn("task attempt failed",
				"task", e.TaskName, "attempt", e.Attempt, "error", e.Err)
		} else {
			logger.Debug("task attempt",
				"task", e.TaskName, "attempt", e.Attempt)
		}
	case TaskSucceededEvent:
		logger.Info("task succeeded",
			"task", e.TaskName, "attempts", e.Attempts)
	case TaskDegradedEvent:
		logger.Warn("task degraded to default",
			"task", e.TaskName, "attempts", e.Attempts, "error", e.LastError)
	case StageChangedEvent:
		logger.Info("stage changed",
			"run", e.RunID, "from", e.From, "to", e.To)
	case RunFinishedEvent:
		logger.Info("run finished",
			"run", e.RunID, "status", e.Status, "degraded", e.Degraded)
	default:
		logger.Info("event", "type", ev.EventType(), "task", ev.Task())
	}
}
