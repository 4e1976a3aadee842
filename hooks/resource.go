package hooks

// Scope runs fn bracketed by EmitBefore and EmitAfter for id, so embedders
// that do not need fine-grained control over the save/restore dance can
// invoke a resource's callback as one operation.
//
// EmitAfter is deliberately not deferred: if fn raises a panic that aborts
// the process, the after emission is skipped for that invocation.
func Scope(id AsyncID, fn func()) {
	EmitBefore(id)
	fn()
	EmitAfter(id)
}

// A Resource pairs one asynchronous resource with its AsyncID. It is a
// convenience wrapper for embedders that originate their own I/O: the
// constructor allocates the id and emits init, Run brackets a callback
// invocation, and Destroy ends the identity's life.
type Resource struct {
	id  AsyncID
	typ ResourceType
}

// NewResource allocates a fresh AsyncID for a resource of the given type and
// emits init, attributing the resource to the current execution context.
// The handle is forwarded to observers for inspection and may be nil.
func NewResource(typ ResourceType, handle any) *Resource {
	return NewChildResource(typ, InvalidID, handle)
}

// NewChildResource is NewResource with an explicit parent, for creators that
// spawn resources outside any visible call stack and attribute them to
// their own id. A parentID of InvalidID falls back to the current context.
func NewChildResource(typ ResourceType, parentID AsyncID, handle any) *Resource {
	r := &Resource{
		id:  NewUID(),
		typ: typ,
	}

	EmitInit(r.id, typ, parentID, handle)

	return r
}

// ID returns the AsyncID assigned to this resource.
func (r *Resource) ID() AsyncID {
	return r.id
}

// Type returns the resource's type tag.
func (r *Resource) Type() ResourceType {
	return r.typ
}

// Run invokes fn as this resource's callback, with before/after emissions
// around it.
func (r *Resource) Run(fn func()) {
	Scope(r.id, fn)
}

// Destroy emits destroy for this resource. The id is never revived; a
// recycled physical object gets a new Resource on its next acquisition.
func (r *Resource) Destroy() {
	EmitDestroy(r.id)
}
