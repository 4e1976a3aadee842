package tracing

import (
	"fmt"
	"sync"

	"github.com/tracelab/asynchook/hooks"
)

// A TaskPrinter can print tasks with a format.
type TaskPrinter interface {
	Print(task Task)
}

type defaultTaskPrinter struct {
}

func (p *defaultTaskPrinter) Print(task Task) {
	fmt.Printf("%s#%d <- %d\n", task.Type, task.ID, task.ParentID)
}

// BackTraceTracer records the creation chain of resources so that the chain
// of a resource can be dumped later, stack-trace style. Entries for dead
// resources are retained; a call-chain tree is only useful if dead
// ancestors stay traceable.
type BackTraceTracer struct {
	printer      TaskPrinter
	tracingTasks map[hooks.AsyncID]Task
	lock         sync.Mutex
}

// NewBackTraceTracer creates a new BackTraceTracer. A nil printer selects
// the default one-line format on stdout.
func NewBackTraceTracer(printer TaskPrinter) *BackTraceTracer {
	t := &BackTraceTracer{
		printer:      printer,
		tracingTasks: make(map[hooks.AsyncID]Task),
	}

	if t.printer == nil {
		t.printer = &defaultTaskPrinter{}
	}

	return t
}

// StartTask records a newly initialized resource and its parent link.
func (t *BackTraceTracer) StartTask(task Task) {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.tracingTasks[task.ID] = task
}

// StartSpan does nothing; back traces are built from creation links only.
func (t *BackTraceTracer) StartSpan(span Span) {
}

// EndSpan does nothing.
func (t *BackTraceTracer) EndSpan(span Span) {
}

// EndTask keeps the entry so that the dead resource remains traceable as a
// parent.
func (t *BackTraceTracer) EndTask(task Task) {
}

// DumpBackTrace prints the creation chain of the given resource, innermost
// first, until the chain leaves the recorded set.
func (t *BackTraceTracer) DumpBackTrace(id hooks.AsyncID) {
	t.lock.Lock()
	defer t.lock.Unlock()

	currTask, ok := t.tracingTasks[id]

	for ok {
		t.printer.Print(currTask)

		id = currTask.ParentID
		currTask, ok = t.tracingTasks[id]
	}
}
