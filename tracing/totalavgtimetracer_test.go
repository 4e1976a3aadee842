package tracing

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tracelab/asynchook/hooks"
)

var _ = Describe("TotalAvgTimeTracer", func() {
	var t *TotalAvgTimeTracer

	at := func(ms int) time.Time {
		return time.Unix(0, 0).Add(time.Duration(ms) * time.Millisecond)
	}

	BeforeEach(func() {
		t = NewTotalAvgTimeTracer(nil)
	})

	It("should track one span", func() {
		t.StartTask(Task{ID: 10})

		t.StartSpan(Span{TaskID: 10, Time: at(1)})
		t.EndSpan(Span{TaskID: 10, Time: at(3)})

		Expect(t.TotalTime()).To(Equal(2 * time.Millisecond))
		Expect(t.AverageTime()).To(Equal(2 * time.Millisecond))
		Expect(t.TotalCount()).To(Equal(uint64(1)))
	})

	It("should accumulate spans across tasks", func() {
		t.StartTask(Task{ID: 10})
		t.StartTask(Task{ID: 11})

		t.StartSpan(Span{TaskID: 10, Time: at(1)})
		t.EndSpan(Span{TaskID: 10, Time: at(2)})
		t.StartSpan(Span{TaskID: 11, Time: at(4)})
		t.EndSpan(Span{TaskID: 11, Time: at(7)})

		Expect(t.TotalTime()).To(Equal(4 * time.Millisecond))
		Expect(t.AverageTime()).To(Equal(2 * time.Millisecond))
		Expect(t.TotalCount()).To(Equal(uint64(2)))
	})

	It("should ignore spans of filtered-out tasks", func() {
		t = NewTotalAvgTimeTracer(func(task Task) bool {
			return task.Type == hooks.TypeDNSReq
		})

		t.StartTask(Task{ID: 10, Type: hooks.TypeTimer})
		t.StartTask(Task{ID: 11, Type: hooks.TypeDNSReq})

		t.StartSpan(Span{TaskID: 10, Time: at(1)})
		t.EndSpan(Span{TaskID: 10, Time: at(9)})
		t.StartSpan(Span{TaskID: 11, Time: at(1)})
		t.EndSpan(Span{TaskID: 11, Time: at(2)})

		Expect(t.TotalTime()).To(Equal(time.Millisecond))
		Expect(t.TotalCount()).To(Equal(uint64(1)))
	})

	It("should report zero average with no spans", func() {
		Expect(t.AverageTime()).To(BeZero())
	})

	It("should drop tracking state when the task ends", func() {
		t.StartTask(Task{ID: 10})
		t.EndTask(Task{ID: 10})

		t.StartSpan(Span{TaskID: 10, Time: at(1)})
		t.EndSpan(Span{TaskID: 10, Time: at(5)})

		Expect(t.TotalCount()).To(BeZero())
	})
})
