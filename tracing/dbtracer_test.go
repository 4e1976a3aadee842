package tracing

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// stubRecorder captures inserted rows without touching a database.
type stubRecorder struct {
	tables  []string
	rows    map[string][]any
	flushed bool
}

func newStubRecorder() *stubRecorder {
	return &stubRecorder{rows: make(map[string][]any)}
}

func (r *stubRecorder) CreateTable(tableName string, _ any) {
	r.tables = append(r.tables, tableName)
}

func (r *stubRecorder) InsertData(tableName string, entry any) {
	r.rows[tableName] = append(r.rows[tableName], entry)
}

func (r *stubRecorder) ListTables() []string {
	return r.tables
}

func (r *stubRecorder) Flush() {
	r.flushed = true
}

func (r *stubRecorder) Close() {
}

var _ = Describe("DBTracer", func() {
	var (
		recorder *stubRecorder
		t        *DBTracer
	)

	at := func(s int64) time.Time {
		return time.Unix(s, 0)
	}

	BeforeEach(func() {
		recorder = newStubRecorder()
		t = NewDBTracer(recorder)
	})

	It("should declare the lifetime and span tables", func() {
		Expect(recorder.tables).To(ConsistOf("lifetimes", "spans"))
	})

	It("should write a lifetime when the task ends", func() {
		t.StartTask(Task{ID: 10, ParentID: 1, Type: "TIMER", StartTime: at(5)})
		t.EndTask(Task{ID: 10, EndTime: at(9)})

		Expect(recorder.rows["lifetimes"]).To(HaveLen(1))

		row := recorder.rows["lifetimes"][0].(lifetimeRow)
		Expect(row.ID).To(Equal(uint64(10)))
		Expect(row.ParentID).To(Equal(uint64(1)))
		Expect(row.Type).To(Equal("TIMER"))
		Expect(row.StartTime).To(Equal(at(5).UnixNano()))
		Expect(row.EndTime).To(Equal(at(9).UnixNano()))
	})

	It("should write a span per before/after pair", func() {
		t.StartTask(Task{ID: 10, StartTime: at(1)})

		t.StartSpan(Span{TaskID: 10, Time: at(2)})
		t.EndSpan(Span{TaskID: 10, Time: at(3)})
		t.StartSpan(Span{TaskID: 10, Time: at(4)})
		t.EndSpan(Span{TaskID: 10, Time: at(6)})

		Expect(recorder.rows["spans"]).To(HaveLen(2))

		first := recorder.rows["spans"][0].(spanRow)
		Expect(first.TaskID).To(Equal(uint64(10)))
		Expect(first.StartTime).To(Equal(at(2).UnixNano()))
		Expect(first.EndTime).To(Equal(at(3).UnixNano()))
	})

	It("should ignore spans of unknown tasks", func() {
		t.EndSpan(Span{TaskID: 42, Time: at(1)})

		Expect(recorder.rows["spans"]).To(BeEmpty())
	})

	It("should write still-live lifetimes with zero end time at terminate", func() {
		t.StartTask(Task{ID: 10, StartTime: at(1)})

		t.Terminate()

		Expect(recorder.rows["lifetimes"]).To(HaveLen(1))
		Expect(recorder.rows["lifetimes"][0].(lifetimeRow).EndTime).To(BeZero())
		Expect(recorder.flushed).To(BeTrue())
	})
})
