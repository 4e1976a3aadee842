package tracing

import (
	"encoding/json"
	"io"
	"os"
	"sync"

	"github.com/rs/xid"
	"github.com/tebeka/atexit"

	"github.com/tracelab/asynchook/hooks"
)

// JSONTracer writes completed resource lifetimes as a JSON array.
type JSONTracer struct {
	w             io.Writer
	lock          sync.Mutex
	firstTask     bool
	inflightTasks map[hooks.AsyncID]Task
}

// StartTask records the start of a resource's lifetime.
func (t *JSONTracer) StartTask(task Task) {
	t.lock.Lock()
	t.inflightTasks[task.ID] = task
	t.lock.Unlock()
}

// StartSpan does nothing; only whole lifetimes are written.
func (t *JSONTracer) StartSpan(span Span) {
}

// EndSpan does nothing.
func (t *JSONTracer) EndSpan(span Span) {
}

// EndTask writes the completed lifetime out.
func (t *JSONTracer) EndTask(task Task) {
	t.lock.Lock()
	originalTask, ok := t.inflightTasks[task.ID]
	if !ok {
		t.lock.Unlock()
		return
	}
	originalTask.EndTime = task.EndTime

	delete(t.inflightTasks, task.ID)
	t.lock.Unlock()

	if t.firstTask {
		t.firstTask = false
	} else {
		_, err := t.w.Write([]byte(",\n"))
		if err != nil {
			panic(err)
		}
	}

	b, err := json.Marshal(originalTask)
	if err != nil {
		panic(err)
	}

	_, err = t.w.Write(b)
	if err != nil {
		panic(err)
	}
}

func (t *JSONTracer) finish() {
	_, err := t.w.Write([]byte("\n]"))
	if err != nil {
		panic(err)
	}
}

// NewJSONTracer creates a JSONTracer that writes to a generated file name in
// the working directory. The file is closed off at process exit.
func NewJSONTracer() *JSONTracer {
	filename := xid.New().String() + ".json"
	f, err := os.Create(filename)
	if err != nil {
		panic(err)
	}

	t := NewJSONTracerWithWriter(f)

	atexit.Register(func() {
		t.finish()
		f.Close()
	})

	return t
}

// NewJSONTracerWithWriter creates a JSONTracer, injecting a writer as
// dependency. The caller is responsible for calling Finish.
func NewJSONTracerWithWriter(w io.Writer) *JSONTracer {
	t := &JSONTracer{
		w:             w,
		firstTask:     true,
		inflightTasks: make(map[hooks.AsyncID]Task),
	}

	_, err := w.Write([]byte("[\n"))
	if err != nil {
		panic(err)
	}

	return t
}

// Finish terminates the JSON array. No tasks can be written afterward.
func (t *JSONTracer) Finish() {
	t.finish()
}
