// Package monitoring turns a running process's asynchronous-resource state
// into a small web server, so that live resources, their creation chains,
// and their handles can be inspected from outside.
package monitoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"sync"
	"time"

	// Enable profiling
	_ "net/http/pprof"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/shirou/gopsutil/process"

	"github.com/tracelab/asynchook/hooks"
)

// Monitor exposes the live resource table, the execution-context register,
// and the hook registry over HTTP.
type Monitor struct {
	portNumber  int
	openBrowser bool

	hook *hooks.HookHandle

	handlesLock sync.Mutex
	handles     map[hooks.AsyncID]any
}

// NewMonitor creates a new Monitor.
func NewMonitor() *Monitor {
	return &Monitor{
		handles: make(map[hooks.AsyncID]any),
	}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithBrowser makes StartServer open the monitor page in the default
// browser.
func (m *Monitor) WithBrowser() *Monitor {
	m.openBrowser = true

	return m
}

// StartServer starts observing resource handles and serves the monitoring
// API on a background goroutine.
func (m *Monitor) StartServer() {
	m.hook = hooks.CreateHook(hooks.Bundle{
		OnInit: func(id hooks.AsyncID, _ hooks.ResourceType, _ hooks.AsyncID, handle any) {
			if handle == nil {
				return
			}

			m.handlesLock.Lock()
			m.handles[id] = handle
			m.handlesLock.Unlock()
		},
		OnDestroy: func(id hooks.AsyncID) {
			m.handlesLock.Lock()
			delete(m.handles, id)
			m.handlesLock.Unlock()
		},
	}).Enable()

	r := m.router()
	http.Handle("/", r)

	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	fmt.Fprintf(os.Stderr, "Monitoring resources with %s\n", url)

	go func() {
		err = http.Serve(listener, nil)
		dieOnErr(err)
	}()

	if m.openBrowser {
		err := browser.OpenURL(url)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open browser: %s\n", err)
		}
	}
}

func (m *Monitor) router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/resources", m.listResources)
	r.HandleFunc("/api/resource/{id}", m.listResourceDetails)
	r.HandleFunc("/api/current", m.currentContext)
	r.HandleFunc("/api/hooks", m.hookRegistryState)
	r.HandleFunc("/api/stats", m.processStats)
	r.HandleFunc("/api/profile", m.collectProfile)

	return r
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	bytes, err := json.Marshal(hooks.LiveResources())
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) listResourceDetails(w http.ResponseWriter, r *http.Request) {
	idNumber, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Invalid resource id: %s", mux.Vars(r)["id"])
		return
	}

	id := hooks.AsyncID(idNumber)

	rec, ok := hooks.Lookup(id)
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, err := w.Write([]byte("Resource not found"))
		dieOnErr(err)
		return
	}

	recBytes, err := json.Marshal(rec)
	dieOnErr(err)

	m.handlesLock.Lock()
	handle := m.handles[id]
	m.handlesLock.Unlock()

	_, err = fmt.Fprintf(w, "{\"record\":%s,\"handle\":", recBytes)
	dieOnErr(err)

	err = hooks.DumpHandle(handle, w)
	dieOnErr(err)

	_, err = w.Write([]byte("}"))
	dieOnErr(err)
}

func (m *Monitor) currentContext(w http.ResponseWriter, _ *http.Request) {
	fmt.Fprintf(w, "{\"current\":%d}", hooks.CurrentID())
}

func (m *Monitor) hookRegistryState(w http.ResponseWriter, _ *http.Request) {
	fmt.Fprintf(w, "{\"registered\":%d,\"enabled\":%d}",
		hooks.NumHooks(), hooks.NumEnabledHooks())
}

type statsRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) processStats(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	rsp := statsRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	}

	bytes, err := json.Marshal(rsp)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	dieOnErr(err)

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	profBytes, err := json.Marshal(prof)
	dieOnErr(err)

	_, err = w.Write(profBytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
