package tracing

import (
	"time"

	"github.com/tracelab/asynchook/hooks"
)

// A Task is one resource's lifetime, from init to destroy, as seen by
// tracers.
type Task struct {
	ID        hooks.AsyncID      `json:"id"`
	ParentID  hooks.AsyncID      `json:"parent_id"`
	Type      hooks.ResourceType `json:"type"`
	StartTime time.Time          `json:"start_time"`
	EndTime   time.Time          `json:"end_time"`
}

// A Span is one callback invocation of a resource, bracketed by the
// before/after emission pair.
type Span struct {
	TaskID hooks.AsyncID `json:"task_id"`
	Time   time.Time     `json:"time"`
}

// TaskFilter selects interesting tasks. If this function returns true, the
// task is considered useful.
type TaskFilter func(t Task) bool

// A TimeTeller can tell the current time. Tracers take the clock as a
// dependency so that tests can supply a controlled one.
type TimeTeller interface {
	Now() time.Time
}

type wallClock struct{}

func (wallClock) Now() time.Time {
	return time.Now()
}

// WallClock is the real-time TimeTeller used outside tests.
var WallClock TimeTeller = wallClock{}
