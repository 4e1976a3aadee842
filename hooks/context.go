package hooks

// currentID is the process-wide execution-context register. It holds the
// AsyncID of the resource whose callback is currently running, or RootID
// when no callback is on the stack.
var currentID = RootID

// CurrentID returns the AsyncID of the current execution context.
func CurrentID() AsyncID {
	return currentID
}

// SetCurrentID overwrites the execution-context register without validation.
// Embedders that manage their own I/O can replicate the save/current/restore
// dance with this function when only context propagation, not event
// emission, is needed. Callers are responsible for restoring the previous
// value.
func SetCurrentID(id AsyncID) {
	currentID = id
}
