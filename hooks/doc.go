// Package hooks tracks the lifecycle of asynchronous resources. Every object
// that can produce an asynchronous callback is assigned a unique AsyncID at
// creation time, linked to the resource that was active when it was created,
// and announced to a set of registered observers on four lifecycle
// transitions: init, before, after, and destroy.
//
// The package keeps a single process-wide execution-context register. The
// before/after emission pair saves and restores the register around each
// callback invocation, so that resources created inside a callback are
// attributed to the resource that owns the callback.
//
// All emissions are expected to happen on a single goroutine that drives the
// event loop. The register and the dispatch path are not synchronized;
// correctness depends on emission ordering at every call site.
package hooks
