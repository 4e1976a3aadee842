package hooks

import (
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func initTestResource(typ ResourceType, parentID AsyncID) AsyncID {
	id := NewUID()
	EmitInit(id, typ, parentID, nil)

	return id
}

var _ = Describe("Dispatcher", func() {
	It("should record metadata at init", func() {
		id := initTestResource(TypeTimer, RootID)

		rec, ok := Lookup(id)

		Expect(ok).To(BeTrue())
		Expect(rec.ID).To(Equal(id))
		Expect(rec.Type).To(Equal(TypeTimer))
		Expect(rec.ParentID).To(Equal(RootID))
		Expect(rec.Alive).To(BeTrue())
	})

	It("should attribute parentage to the current context", func() {
		parent := initTestResource(TypeTCPConn, RootID)

		var child AsyncID
		Scope(parent, func() {
			child = initTestResource(TypeWriteReq, InvalidID)
		})

		rec, ok := Lookup(child)

		Expect(ok).To(BeTrue())
		Expect(rec.ParentID).To(Equal(parent))
	})

	It("should restore the register after a before/after pair", func() {
		outer := initTestResource(TypeTCPConn, RootID)
		inner := initTestResource(TypeWriteReq, outer)

		SetCurrentID(outer)
		EmitBefore(inner)
		Expect(CurrentID()).To(Equal(inner))
		EmitAfter(inner)

		Expect(CurrentID()).To(Equal(outer))

		SetCurrentID(RootID)
	})

	It("should keep the caller's context while before hooks fire", func() {
		id := initTestResource(TypeTimer, RootID)

		var seenInBefore, seenInAfter AsyncID
		h := CreateHook(Bundle{
			OnBefore: func(AsyncID) { seenInBefore = CurrentID() },
			OnAfter:  func(AsyncID) { seenInAfter = CurrentID() },
		}).Enable()
		defer h.Unregister()

		Scope(id, func() {})

		Expect(seenInBefore).To(Equal(RootID))
		Expect(seenInAfter).To(Equal(id))
	})

	It("should support nested before/after pairs", func() {
		a := initTestResource(TypeTCPConn, RootID)
		b := initTestResource(TypeWriteReq, a)

		EmitBefore(a)
		EmitBefore(b)
		Expect(CurrentID()).To(Equal(b))
		EmitAfter(b)
		Expect(CurrentID()).To(Equal(a))
		EmitAfter(a)

		Expect(CurrentID()).To(Equal(RootID))
	})

	It("should panic on crossed before/after pairs", func() {
		a := initTestResource(TypeTCPConn, RootID)
		b := initTestResource(TypeWriteReq, a)

		EmitBefore(a)
		EmitBefore(b)

		Expect(func() { EmitAfter(a) }).To(Panic())

		EmitAfter(b)
		EmitAfter(a)
	})

	It("should panic on after without a matching before", func() {
		id := initTestResource(TypeTimer, RootID)

		Expect(func() { EmitAfter(id) }).To(Panic())
	})

	It("should panic on a second init for the same id", func() {
		id := initTestResource(TypeTimer, RootID)

		Expect(func() { EmitInit(id, TypeTimer, RootID, nil) }).To(Panic())
	})

	It("should panic on an unassigned parent id", func() {
		id := NewUID()
		bogusParent := AsyncID(1 << 60)

		Expect(func() { EmitInit(id, TypeTimer, bogusParent, nil) }).To(Panic())
	})

	It("should allow a resource to die without any before/after pair", func() {
		id := initTestResource(TypeDNSReq, RootID)

		Expect(func() { EmitDestroy(id) }).NotTo(Panic())

		rec, _ := Lookup(id)
		Expect(rec.Alive).To(BeFalse())
	})

	It("should panic on a second destroy for the same id", func() {
		id := initTestResource(TypeTimer, RootID)
		EmitDestroy(id)

		Expect(func() { EmitDestroy(id) }).To(Panic())
	})

	It("should panic on before/after emitted for a destroyed id", func() {
		id := initTestResource(TypeTimer, RootID)
		EmitDestroy(id)

		Expect(func() { EmitBefore(id) }).To(Panic())
		Expect(func() { EmitAfter(id) }).To(Panic())
	})

	It("should keep parent links of dead resources resolvable", func() {
		parent := initTestResource(TypeTCPConn, RootID)
		child := initTestResource(TypeWriteReq, parent)

		EmitDestroy(parent)

		childRec, ok := Lookup(child)
		Expect(ok).To(BeTrue())

		parentRec, ok := Lookup(childRec.ParentID)
		Expect(ok).To(BeTrue())
		Expect(parentRec.Type).To(Equal(TypeTCPConn))
		Expect(parentRec.Alive).To(BeFalse())

		EmitDestroy(child)
	})

	It("should emit the end-to-end scenario in order", func() {
		type logEntry struct {
			event  string
			id     AsyncID
			parent AsyncID
		}

		var logged []logEntry
		h := CreateHook(Bundle{
			OnInit: func(id AsyncID, _ ResourceType, parentID AsyncID, _ any) {
				logged = append(logged, logEntry{"init", id, parentID})
			},
			OnBefore:  func(id AsyncID) { logged = append(logged, logEntry{"before", id, 0}) },
			OnAfter:   func(id AsyncID) { logged = append(logged, logEntry{"after", id, 0}) },
			OnDestroy: func(id AsyncID) { logged = append(logged, logEntry{"destroy", id, 0}) },
		}).Enable()
		defer h.Unregister()

		a := initTestResource("Root", RootID)
		EmitBefore(a)
		b := initTestResource("Child", a)
		EmitBefore(b)
		EmitAfter(b)
		EmitDestroy(b)
		EmitAfter(a)
		EmitDestroy(a)

		Expect(logged).To(Equal([]logEntry{
			{"init", a, RootID},
			{"before", a, 0},
			{"init", b, a},
			{"before", b, 0},
			{"after", b, 0},
			{"destroy", b, 0},
			{"after", a, 0},
			{"destroy", a, 0},
		}))
	})

	It("should forward the handle to init observers verbatim", func() {
		handle := &struct{ Addr string }{Addr: "127.0.0.1:80"}

		var seen any
		h := CreateHook(Bundle{
			OnInit: func(_ AsyncID, _ ResourceType, _ AsyncID, handle any) {
				seen = handle
			},
		}).Enable()
		defer h.Unregister()

		initTestResource(TypeTCPConn, RootID)
		Expect(seen).To(BeNil())

		id := NewUID()
		EmitInit(id, TypeTCPConn, RootID, handle)

		Expect(seen).To(BeIdenticalTo(handle))

		Expect(fmt.Sprintf("%v", seen)).To(ContainSubstring("127.0.0.1:80"))
	})
})

var _ = Describe("Resource", func() {
	It("should allocate, init, run, and destroy", func() {
		r := NewResource(TypeTimer, nil)

		rec, ok := Lookup(r.ID())
		Expect(ok).To(BeTrue())
		Expect(rec.ParentID).To(Equal(RootID))
		Expect(r.Type()).To(Equal(TypeTimer))

		ran := false
		r.Run(func() {
			ran = true
			Expect(CurrentID()).To(Equal(r.ID()))
		})
		Expect(ran).To(BeTrue())

		r.Destroy()

		rec, _ = Lookup(r.ID())
		Expect(rec.Alive).To(BeFalse())
	})

	It("should attribute children created inside Run", func() {
		parent := NewResource(TypeTCPConn, nil)

		var child *Resource
		parent.Run(func() {
			child = NewResource(TypeWriteReq, nil)
		})

		rec, _ := Lookup(child.ID())
		Expect(rec.ParentID).To(Equal(parent.ID()))
	})

	It("should honor an explicit parent", func() {
		parent := NewResource(TypeTCPConn, nil)
		child := NewChildResource(TypeWriteReq, parent.ID(), nil)

		rec, _ := Lookup(child.ID())
		Expect(rec.ParentID).To(Equal(parent.ID()))
	})
})
