package tracing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	gomock "go.uber.org/mock/gomock"

	"github.com/tracelab/asynchook/hooks"
)

var _ = Describe("BackTraceTracer", func() {
	var (
		mockCtrl *gomock.Controller
		printer  *MockTaskPrinter
		t        *BackTraceTracer
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		printer = NewMockTaskPrinter(mockCtrl)

		t = NewBackTraceTracer(printer)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should trace a single task", func() {
		t.StartTask(Task{ID: 10})

		Expect(t.tracingTasks).To(HaveLen(1))
		Expect(t.tracingTasks[10].ParentID).To(BeZero())
	})

	It("should trace chained tasks", func() {
		t.StartTask(Task{ID: 10})
		t.StartTask(Task{ID: 11, ParentID: 10})
		t.StartTask(Task{ID: 12, ParentID: 11})

		Expect(t.tracingTasks).To(HaveLen(3))
		Expect(t.tracingTasks[12].ParentID).To(Equal(hooks.AsyncID(11)))
		Expect(t.tracingTasks[11].ParentID).To(Equal(hooks.AsyncID(10)))
	})

	It("should print the chain innermost first", func() {
		t.StartTask(Task{ID: 10})
		t.StartTask(Task{ID: 11, ParentID: 10})
		t.StartTask(Task{ID: 12, ParentID: 11})

		gomock.InOrder(
			printer.EXPECT().Print(Task{ID: 12, ParentID: 11}),
			printer.EXPECT().Print(Task{ID: 11, ParentID: 10}),
			printer.EXPECT().Print(Task{ID: 10}),
		)

		t.DumpBackTrace(12)
	})

	It("should keep dead ancestors traceable", func() {
		t.StartTask(Task{ID: 10})
		t.StartTask(Task{ID: 11, ParentID: 10})

		t.EndTask(Task{ID: 10})

		gomock.InOrder(
			printer.EXPECT().Print(Task{ID: 11, ParentID: 10}),
			printer.EXPECT().Print(Task{ID: 10}),
		)

		t.DumpBackTrace(11)
	})
})
