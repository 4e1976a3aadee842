// Package pool emulates the full lifecycle for resources that are
// physically reused rather than destroyed. A Pool keeps an arena of
// physical objects; every checkout wraps the object in a fresh AsyncID
// identity, so observers see a complete init/destroy cycle per acquisition
// while the underlying object persists.
package pool

import (
	"github.com/tracelab/asynchook/hooks"
)

// A Pool recycles physical objects of type T under per-acquisition
// identities.
type Pool[T any] struct {
	typ      hooks.ResourceType
	newFunc  func() T
	resetFun func(T)

	free []T
}

// New creates a pool whose physical objects are built by newFunc and
// announced to observers under the given resource type.
func New[T any](typ hooks.ResourceType, newFunc func() T) *Pool[T] {
	return &Pool[T]{
		typ:     typ,
		newFunc: newFunc,
	}
}

// WithResetFunc sets a function that scrubs a physical object when its lease
// is released, before the object returns to the free list.
func (p *Pool[T]) WithResetFunc(fn func(T)) *Pool[T] {
	p.resetFun = fn

	return p
}

// NumFree returns the number of physical objects currently in the free list.
func (p *Pool[T]) NumFree() int {
	return len(p.free)
}

// Acquire checks a physical object out of the pool under a freshly
// allocated AsyncID. The identity's init is emitted here; the matching
// destroy is emitted by Release. A recycled object never carries its
// previous id.
func (p *Pool[T]) Acquire() *Lease[T] {
	var obj T
	if n := len(p.free); n > 0 {
		obj = p.free[n-1]
		p.free = p.free[:n-1]
	} else {
		obj = p.newFunc()
	}

	return &Lease[T]{
		pool: p,
		obj:  obj,
		res:  hooks.NewResource(p.typ, obj),
	}
}

// A Lease is one checkout of a pooled physical object, valid until Release.
type Lease[T any] struct {
	pool     *Pool[T]
	obj      T
	res      *hooks.Resource
	released bool
}

// Object returns the physical object held by this lease.
func (l *Lease[T]) Object() T {
	return l.obj
}

// ID returns the AsyncID assigned to this checkout.
func (l *Lease[T]) ID() hooks.AsyncID {
	return l.res.ID()
}

// Run invokes fn as this checkout's callback, bracketed by before/after
// emissions.
func (l *Lease[T]) Run(fn func(T)) {
	if l.released {
		panic("asynchook: lease used after release")
	}

	l.res.Run(func() { fn(l.obj) })
}

// Release ends this checkout's identity and returns the physical object to
// the pool. Releasing a lease twice is a protocol error.
func (l *Lease[T]) Release() {
	if l.released {
		panic("asynchook: lease released twice")
	}
	l.released = true

	l.res.Destroy()

	if l.pool.resetFun != nil {
		l.pool.resetFun(l.obj)
	}

	l.pool.free = append(l.pool.free, l.obj)
}
