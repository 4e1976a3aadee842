package hooks

// A Bundle is a set of observer callbacks that receive lifecycle events for
// every resource in the process. Every field is optional.
//
// OnInit runs as the last step of the resource's construction. The handle
// argument exposes the resource object for ad-hoc inspection only; its shape
// carries no stability guarantee and observers must not retain it.
//
// OnBefore runs before the resource's own callback, while the register still
// holds the caller's context. OnAfter runs after the callback, before the
// register is restored. OnDestroy runs when the resource reaches end of
// life.
type Bundle struct {
	OnInit    func(id AsyncID, typ ResourceType, parentID AsyncID, handle any)
	OnBefore  func(id AsyncID)
	OnAfter   func(id AsyncID)
	OnDestroy func(id AsyncID)
}

// A HookHandle controls the enablement of one registered Bundle.
type HookHandle struct {
	bundle  Bundle
	enabled bool
}

// hookList holds all registered handles in registration order. Dispatch
// walks the list and skips disabled handles, so enabling and disabling
// apply to subsequently emitted events only.
var hookList []*HookHandle

// enabledHookCount lets the emission fast path skip all bookkeeping except
// the record table and the register when no observer is active.
var enabledHookCount int

// CreateHook registers bundle and returns the handle that controls it. The
// bundle starts disabled; constructing an observer ahead of a deferred
// "start observing now" point is a legitimate pattern, so callers must opt
// in with Enable.
func CreateHook(bundle Bundle) *HookHandle {
	h := &HookHandle{bundle: bundle}
	hookList = append(hookList, h)

	return h
}

// Enable adds the bundle to the active dispatch set for events emitted from
// now on. Enabling an already-enabled handle is a no-op. Returns the handle
// for chaining.
func (h *HookHandle) Enable() *HookHandle {
	if !h.enabled {
		h.enabled = true
		enabledHookCount++
	}

	return h
}

// Disable removes the bundle from the active dispatch set. Events already
// emitted are not retroactively filtered. Disabling an already-disabled
// handle is a no-op. Returns the handle for chaining.
func (h *HookHandle) Disable() *HookHandle {
	if h.enabled {
		h.enabled = false
		enabledHookCount--
	}

	return h
}

// Enabled reports whether the bundle is in the active dispatch set.
func (h *HookHandle) Enabled() bool {
	return h.enabled
}

// Unregister disables the bundle and removes it from the registry. The
// handle must not be used afterward. Unregister is safe to call from inside
// an observer callback: the registry is rebuilt rather than edited in place,
// so a dispatch loop already in flight keeps walking the list it started
// with.
func (h *HookHandle) Unregister() {
	h.Disable()

	for i, registered := range hookList {
		if registered == h {
			replacement := make([]*HookHandle, 0, len(hookList)-1)
			replacement = append(replacement, hookList[:i]...)
			replacement = append(replacement, hookList[i+1:]...)
			hookList = replacement

			return
		}
	}
}

// NumHooks returns the number of registered bundles.
func NumHooks() int {
	return len(hookList)
}

// NumEnabledHooks returns the number of bundles in the active dispatch set.
func NumEnabledHooks() int {
	return enabledHookCount
}
