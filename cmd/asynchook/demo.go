package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/tracelab/asynchook/datarecording"
	"github.com/tracelab/asynchook/hooks"
	"github.com/tracelab/asynchook/monitoring"
	"github.com/tracelab/asynchook/pool"
	"github.com/tracelab/asynchook/tracing"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run a synthetic pooled workload under full instrumentation.",
	Long: `Run a synthetic pooled workload under full instrumentation: a ` +
		`connection pool serves a burst of requests while tracers collect ` +
		`latency, creation chains, and leaks, and the monitor serves live ` +
		`state over HTTP.`,
	Run: func(cmd *cobra.Command, _ []string) {
		runDemo(cmd)
	},
}

func init() {
	demoCmd.Flags().Int("requests", 50, "number of requests to serve")
	demoCmd.Flags().Bool("monitor", false, "serve monitoring API during the run")
	demoCmd.Flags().Bool("open-browser", false, "open the monitor in a browser")

	rootCmd.AddCommand(demoCmd)
}

// Configuration comes from the environment, with an optional .env file in
// the working directory.
func envOr(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	return v
}

type demoConn struct {
	ServedRequests int
}

func runDemo(cmd *cobra.Command) {
	_ = godotenv.Load()

	requests, _ := cmd.Flags().GetInt("requests")
	serveMonitor, _ := cmd.Flags().GetBool("monitor")
	openBrowser, _ := cmd.Flags().GetBool("open-browser")

	backTracer := tracing.NewBackTraceTracer(nil)
	tracing.CollectTrace(backTracer, nil).Enable()

	timeTracer := tracing.NewTotalAvgTimeTracer(func(t tracing.Task) bool {
		return t.Type == hooks.TypeWriteReq
	})
	tracing.CollectTrace(timeTracer, nil).Enable()

	leakDetector := tracing.NewLeakDetector(nil)
	tracing.CollectTrace(leakDetector, nil).Enable()

	recorder := datarecording.New(envOr("ASYNCHOOK_TRACE_DB", ""))
	dbTracer := tracing.NewDBTracer(recorder)
	tracing.CollectTrace(dbTracer, nil).Enable()

	if serveMonitor {
		port, _ := strconv.Atoi(envOr("ASYNCHOOK_MONITOR_PORT", "0"))

		monitor := monitoring.NewMonitor().WithPortNumber(port)
		if openBrowser {
			monitor = monitor.WithBrowser()
		}
		monitor.StartServer()
	}

	connPool := pool.New(hooks.TypeTCPConn, func() *demoConn {
		return &demoConn{}
	})

	// One resource is created and never destroyed so that the leak report
	// has something to show.
	hooks.NewResource(hooks.TypeTimer, nil)

	var lastRequestID hooks.AsyncID
	for i := 0; i < requests; i++ {
		lease := connPool.Acquire()

		lease.Run(func(conn *demoConn) {
			req := hooks.NewResource(hooks.TypeWriteReq, nil)
			lastRequestID = req.ID()

			req.Run(func() {
				conn.ServedRequests++
				time.Sleep(100 * time.Microsecond)
			})

			req.Destroy()
		})

		lease.Release()
	}

	dbTracer.Terminate()
	recorder.Close()

	fmt.Printf("Served %d requests.\n", requests)
	fmt.Printf("Average request callback time: %s\n", timeTracer.AverageTime())
	fmt.Printf("Creation chain of the last request:\n")
	backTracer.DumpBackTrace(lastRequestID)

	fmt.Printf("Leaked resources:\n")
	err := leakDetector.ReportLeaks(os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to report leaks: %s\n", err)
	}
}
