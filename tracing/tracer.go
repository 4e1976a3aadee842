// Package tracing provides observers that turn lifecycle events into task
// traces: parent-chain stitching, latency accounting, leak detection, and
// persistent trace storage.
package tracing

import (
	"github.com/tracelab/asynchook/hooks"
)

// A Tracer can collect task traces. StartTask and EndTask bracket a
// resource's lifetime; StartSpan and EndSpan bracket one callback
// invocation of that resource.
type Tracer interface {
	StartTask(task Task)
	StartSpan(span Span)
	EndSpan(span Span)
	EndTask(task Task)
}

// CollectTrace registers a hook bundle that routes lifecycle events into
// tracer, stamping them with timeTeller's clock. A nil timeTeller selects
// the wall clock. The returned handle is disabled; the caller enables it
// when collection should begin.
func CollectTrace(tracer Tracer, timeTeller TimeTeller) *hooks.HookHandle {
	if timeTeller == nil {
		timeTeller = WallClock
	}

	return hooks.CreateHook(hooks.Bundle{
		OnInit: func(
			id hooks.AsyncID,
			typ hooks.ResourceType,
			parentID hooks.AsyncID,
			_ any,
		) {
			tracer.StartTask(Task{
				ID:        id,
				ParentID:  parentID,
				Type:      typ,
				StartTime: timeTeller.Now(),
			})
		},
		OnBefore: func(id hooks.AsyncID) {
			tracer.StartSpan(Span{TaskID: id, Time: timeTeller.Now()})
		},
		OnAfter: func(id hooks.AsyncID) {
			tracer.EndSpan(Span{TaskID: id, Time: timeTeller.Now()})
		},
		OnDestroy: func(id hooks.AsyncID) {
			tracer.EndTask(Task{ID: id, EndTime: timeTeller.Now()})
		},
	})
}
