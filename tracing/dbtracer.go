package tracing

import (
	"sync"

	"github.com/tracelab/asynchook/datarecording"
	"github.com/tracelab/asynchook/hooks"
)

type lifetimeRow struct {
	ID        uint64
	ParentID  uint64
	Type      string
	StartTime int64
	EndTime   int64
}

type spanRow struct {
	TaskID    uint64
	StartTime int64
	EndTime   int64
}

// DBTracer stores completed resource lifetimes and callback spans through a
// DataRecorder. Resources still live at Terminate are written with a zero
// end time.
type DBTracer struct {
	recorder datarecording.DataRecorder

	lock          sync.Mutex
	tracingTasks  map[hooks.AsyncID]Task
	inflightSpans map[hooks.AsyncID]Span
}

// NewDBTracer creates a DBTracer writing through the given recorder.
func NewDBTracer(recorder datarecording.DataRecorder) *DBTracer {
	t := &DBTracer{
		recorder:      recorder,
		tracingTasks:  make(map[hooks.AsyncID]Task),
		inflightSpans: make(map[hooks.AsyncID]Span),
	}

	recorder.CreateTable("lifetimes", lifetimeRow{})
	recorder.CreateTable("spans", spanRow{})

	return t
}

// StartTask marks the start of a resource's lifetime.
func (t *DBTracer) StartTask(task Task) {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.tracingTasks[task.ID] = task
}

// StartSpan marks the start of one callback invocation.
func (t *DBTracer) StartSpan(span Span) {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.inflightSpans[span.TaskID] = span
}

// EndSpan writes the completed callback span.
func (t *DBTracer) EndSpan(span Span) {
	t.lock.Lock()
	defer t.lock.Unlock()

	started, ok := t.inflightSpans[span.TaskID]
	if !ok {
		return
	}

	delete(t.inflightSpans, span.TaskID)

	t.recorder.InsertData("spans", spanRow{
		TaskID:    uint64(span.TaskID),
		StartTime: started.Time.UnixNano(),
		EndTime:   span.Time.UnixNano(),
	})
}

// EndTask writes the completed lifetime.
func (t *DBTracer) EndTask(task Task) {
	t.lock.Lock()
	defer t.lock.Unlock()

	originalTask, ok := t.tracingTasks[task.ID]
	if !ok {
		return
	}

	delete(t.tracingTasks, task.ID)

	originalTask.EndTime = task.EndTime
	t.recorder.InsertData("lifetimes", lifetimeRowFromTask(originalTask))
}

// Terminate writes out every lifetime still in flight and flushes the
// recorder.
func (t *DBTracer) Terminate() {
	t.lock.Lock()
	defer t.lock.Unlock()

	for _, task := range t.tracingTasks {
		t.recorder.InsertData("lifetimes", lifetimeRowFromTask(task))
	}

	t.tracingTasks = nil

	t.recorder.Flush()
}

func lifetimeRowFromTask(task Task) lifetimeRow {
	row := lifetimeRow{
		ID:        uint64(task.ID),
		ParentID:  uint64(task.ParentID),
		Type:      string(task.Type),
		StartTime: task.StartTime.UnixNano(),
	}

	if !task.EndTime.IsZero() {
		row.EndTime = task.EndTime.UnixNano()
	}

	return row
}
