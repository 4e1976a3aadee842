package tracing

import (
	"sync"
	"time"

	"github.com/tracelab/asynchook/hooks"
)

// TotalAvgTimeTracer collects the total and average time spent in the
// callbacks of traced resources. If the execution of two callbacks
// overlaps, this tracer simply adds the two processing times together.
type TotalAvgTimeTracer struct {
	filter TaskFilter

	lock          sync.Mutex
	tracedTasks   map[hooks.AsyncID]bool
	inflightSpans map[hooks.AsyncID]time.Time
	totalTime     time.Duration
	spanCount     uint64
}

// NewTotalAvgTimeTracer creates a new TotalAvgTimeTracer. A nil filter
// accepts every task.
func NewTotalAvgTimeTracer(filter TaskFilter) *TotalAvgTimeTracer {
	t := &TotalAvgTimeTracer{
		filter:        filter,
		tracedTasks:   make(map[hooks.AsyncID]bool),
		inflightSpans: make(map[hooks.AsyncID]time.Time),
	}

	return t
}

// AverageTime returns the average time spent in one callback invocation.
func (t *TotalAvgTimeTracer) AverageTime() time.Duration {
	t.lock.Lock()
	defer t.lock.Unlock()

	if t.spanCount == 0 {
		return 0
	}

	return t.totalTime / time.Duration(t.spanCount)
}

// TotalTime returns the total time spent in callbacks of traced resources.
func (t *TotalAvgTimeTracer) TotalTime() time.Duration {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.totalTime
}

// TotalCount returns the number of completed callback invocations.
func (t *TotalAvgTimeTracer) TotalCount() uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.spanCount
}

// StartTask decides whether the resource's callbacks are interesting.
func (t *TotalAvgTimeTracer) StartTask(task Task) {
	if t.filter != nil && !t.filter(task) {
		return
	}

	t.lock.Lock()
	t.tracedTasks[task.ID] = true
	t.lock.Unlock()
}

// StartSpan records the callback start time.
func (t *TotalAvgTimeTracer) StartSpan(span Span) {
	t.lock.Lock()
	defer t.lock.Unlock()

	if !t.tracedTasks[span.TaskID] {
		return
	}

	t.inflightSpans[span.TaskID] = span.Time
}

// EndSpan records the callback end time.
func (t *TotalAvgTimeTracer) EndSpan(span Span) {
	t.lock.Lock()
	defer t.lock.Unlock()

	startTime, ok := t.inflightSpans[span.TaskID]
	if !ok {
		return
	}

	t.totalTime += span.Time.Sub(startTime)
	t.spanCount++

	delete(t.inflightSpans, span.TaskID)
}

// EndTask stops tracking the resource.
func (t *TotalAvgTimeTracer) EndTask(task Task) {
	t.lock.Lock()
	defer t.lock.Unlock()

	delete(t.tracedTasks, task.ID)
	delete(t.inflightSpans, task.ID)
}
