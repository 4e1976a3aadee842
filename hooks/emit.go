package hooks

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/tebeka/atexit"
)

// savedContext is one frame of the before/after save/restore stack.
type savedContext struct {
	id   AsyncID
	prev AsyncID
}

var contextStack []savedContext

// panicOnObserverError switches observer-error escalation from a clean
// report to re-raising the panic. With GOTRACEBACK=crash this trades the
// report for a core dump.
var panicOnObserverError bool

// SetPanicOnObserverError selects how an error escaping an observer callback
// terminates the process. The default (false) prints the stack trace, runs
// registered atexit teardown, and exits with code 1.
func SetPanicOnObserverError(v bool) {
	panicOnObserverError = v
}

// fatalExit is swapped out in tests. Production behavior is report, run
// process-teardown notifications, terminate.
var fatalExit = func(reason any, stack []byte) {
	fmt.Fprintf(os.Stderr, "error escaped observer callback: %v\n%s", reason, stack)
	atexit.Exit(1)
}

// invokeObserver runs one observer callback under the fatal-error policy.
// Observer callbacks run at structurally sensitive points, so a panic
// escaping one is not recoverable by the application: it terminates the
// process without passing through any deferred recover on the caller's
// stack.
func invokeObserver(fn func()) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}

		if panicOnObserverError {
			panic(r)
		}

		fatalExit(r, debug.Stack())
	}()

	fn()
}

// EmitInit records a new resource and notifies enabled observers. It must be
// called exactly once per AsyncID, ideally as the last step of the
// resource's construction. A parentID of InvalidID means "the current
// execution context"; creators that spawn resources outside any visible
// call stack pass their own id explicitly instead.
//
// The handle is forwarded to OnInit verbatim for ad-hoc inspection.
func EmitInit(id AsyncID, typ ResourceType, parentID AsyncID, handle any) {
	if parentID == InvalidID {
		parentID = currentID
	}

	if _, exists := records[id]; exists {
		panic(fmt.Sprintf("asynchook: init emitted twice for id %d", id))
	}

	if _, known := records[parentID]; !known {
		panic(fmt.Sprintf(
			"asynchook: parent id %d of resource %d was never assigned",
			parentID, id))
	}

	records[id] = &Record{ID: id, Type: typ, ParentID: parentID, Alive: true}

	if enabledHookCount == 0 {
		return
	}

	for _, h := range hookList {
		if h.enabled && h.bundle.OnInit != nil {
			invokeObserver(func() { h.bundle.OnInit(id, typ, parentID, handle) })
		}
	}
}

// EmitBefore announces that the resource's own callback is about to run.
// Observers fire while the register still holds the caller's context; the
// register is switched to id afterward, so an observer's CurrentID call
// inside OnBefore reflects the caller, not the callee.
func EmitBefore(id AsyncID) {
	mustBeLive(id, "before")

	if enabledHookCount > 0 {
		for _, h := range hookList {
			if h.enabled && h.bundle.OnBefore != nil {
				invokeObserver(func() { h.bundle.OnBefore(id) })
			}
		}
	}

	contextStack = append(contextStack, savedContext{id: id, prev: currentID})
	currentID = id
}

// EmitAfter announces that the resource's own callback has finished and
// restores the register to the value saved at the matching EmitBefore.
// Before/after pairs must nest strictly; a crossed pair is a protocol error
// in the embedding code and panics.
func EmitAfter(id AsyncID) {
	mustBeLive(id, "after")

	if len(contextStack) == 0 {
		panic(fmt.Sprintf("asynchook: after emitted for id %d with no before on the stack", id))
	}

	top := contextStack[len(contextStack)-1]
	if top.id != id {
		panic(fmt.Sprintf(
			"asynchook: before/after pairs crossed: after emitted for id %d while id %d is innermost",
			id, top.id))
	}

	if enabledHookCount > 0 {
		for _, h := range hookList {
			if h.enabled && h.bundle.OnAfter != nil {
				invokeObserver(func() { h.bundle.OnAfter(id) })
			}
		}
	}

	contextStack = contextStack[:len(contextStack)-1]
	currentID = top.prev
}

// EmitDestroy announces the end of a resource's life and marks its record
// dead. It must fire exactly once per AsyncID; a second destroy panics. The
// record itself is retained so that parent links remain resolvable.
func EmitDestroy(id AsyncID) {
	rec, known := records[id]
	if !known {
		panic(fmt.Sprintf("asynchook: destroy emitted for unknown id %d", id))
	}

	if !rec.Alive {
		panic(fmt.Sprintf("asynchook: destroy emitted twice for id %d", id))
	}

	if enabledHookCount > 0 {
		for _, h := range hookList {
			if h.enabled && h.bundle.OnDestroy != nil {
				invokeObserver(func() { h.bundle.OnDestroy(id) })
			}
		}
	}

	rec.Alive = false
}

func mustBeLive(id AsyncID, emission string) {
	rec, known := records[id]
	if !known {
		panic(fmt.Sprintf("asynchook: %s emitted for unknown id %d", emission, id))
	}

	if !rec.Alive {
		panic(fmt.Sprintf("asynchook: %s emitted for destroyed id %d", emission, id))
	}
}
