package tracing

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/tracelab/asynchook/hooks"
)

// LeakDetector keeps a census of resources that have been initialized but
// not yet destroyed. Resources still live when a workload is expected to be
// drained are leak candidates.
type LeakDetector struct {
	filter TaskFilter

	lock      sync.Mutex
	liveTasks map[hooks.AsyncID]Task
}

// NewLeakDetector creates a new LeakDetector. A nil filter watches every
// resource.
func NewLeakDetector(filter TaskFilter) *LeakDetector {
	return &LeakDetector{
		filter:    filter,
		liveTasks: make(map[hooks.AsyncID]Task),
	}
}

// StartTask adds the resource to the live census.
func (d *LeakDetector) StartTask(task Task) {
	if d.filter != nil && !d.filter(task) {
		return
	}

	d.lock.Lock()
	d.liveTasks[task.ID] = task
	d.lock.Unlock()
}

// StartSpan does nothing; liveness is decided by init/destroy only.
func (d *LeakDetector) StartSpan(span Span) {
}

// EndSpan does nothing.
func (d *LeakDetector) EndSpan(span Span) {
}

// EndTask removes the resource from the live census.
func (d *LeakDetector) EndTask(task Task) {
	d.lock.Lock()
	delete(d.liveTasks, task.ID)
	d.lock.Unlock()
}

// LiveTasks returns the resources currently in the census, sorted by ID.
func (d *LeakDetector) LiveTasks() []Task {
	d.lock.Lock()
	defer d.lock.Unlock()

	tasks := make([]Task, 0, len(d.liveTasks))
	for _, t := range d.liveTasks {
		tasks = append(tasks, t)
	}

	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })

	return tasks
}

// NumLive returns the size of the live census.
func (d *LeakDetector) NumLive() int {
	d.lock.Lock()
	defer d.lock.Unlock()

	return len(d.liveTasks)
}

// ReportLeaks writes one line per live resource, with its creation chain
// resolved through the metadata table so that dead ancestors still appear.
func (d *LeakDetector) ReportLeaks(w io.Writer) error {
	for _, task := range d.LiveTasks() {
		_, err := fmt.Fprintf(w, "%s#%d created at %s, chain:",
			task.Type, task.ID, task.StartTime.Format("15:04:05.000"))
		if err != nil {
			return err
		}

		id := task.ID
		for {
			rec, ok := hooks.Lookup(id)
			if !ok {
				break
			}

			_, err = fmt.Fprintf(w, " %s#%d", rec.Type, rec.ID)
			if err != nil {
				return err
			}

			if rec.ID == hooks.RootID {
				break
			}
			id = rec.ParentID
		}

		_, err = fmt.Fprintln(w)
		if err != nil {
			return err
		}
	}

	return nil
}
