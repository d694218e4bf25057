package reconciliation

import (
	"time"

	"go.uber.org/zap"
)

// RunSummary is the audit record every reconciliation run produces: enough
// to account for a day's transitions without replaying the run.
type RunSummary struct {
	Task          string    `json:"task"`
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at"`
	Processed     int       `json:"processed"`     // Documents examined
	Transitions   int       `json:"transitions"`   // Status/balance changes committed
	Notifications int       `json:"notifications"` // Notifications actually emitted (after dedup)
	Skipped       int       `json:"skipped"`       // Per-document failures skipped
}

// newRunSummary starts a summary for the named task
func newRunSummary(task string, startedAt time.Time) *RunSummary {
	return &RunSummary{Task: task, StartedAt: startedAt}
}

// finish stamps the completion time and returns the summary
func (s *RunSummary) finish(at time.Time) *RunSummary {
	s.FinishedAt = at
	return s
}

// Fields returns the summary as zap fields for the run-completion log line
func (s *RunSummary) Fields() []zap.Field {
	return []zap.Field{
		zap.String("task", s.Task),
		zap.Int("processed", s.Processed),
		zap.Int("transitions", s.Transitions),
		zap.Int("notifications", s.Notifications),
		zap.Int("skipped", s.Skipped),
		zap.Duration("duration", s.FinishedAt.Sub(s.StartedAt)),
	}
}
