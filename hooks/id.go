package hooks

import "sync/atomic"

// AsyncID identifies one asynchronous resource. IDs are assigned once and
// never reused, even when the underlying physical object is recycled.
type AsyncID uint64

const (
	// InvalidID is never assigned to a resource. A parent of InvalidID is
	// only legal on the root context.
	InvalidID AsyncID = 0

	// RootID is the bootstrap context. It exists before any resource is
	// created and is the parent of resources created outside any callback.
	RootID AsyncID = 1
)

var nextID = uint64(RootID)

// NewUID returns a fresh AsyncID. IDs increase monotonically; no two calls
// return the same value for the lifetime of the process. The 64-bit domain
// makes exhaustion a non-concern.
func NewUID() AsyncID {
	return AsyncID(atomic.AddUint64(&nextID, 1))
}
