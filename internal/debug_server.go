package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"

	"roulette-lab/observability"
)

// DependencyStatus tells the status page which optional integrations are on.
type DependencyStatus struct {
	ChatConfigured     bool `json:"chat_configured"`
	CalendarConfigured bool `json:"calendar_configured"`
}

type processStats struct {
	PID        int32   `json:"pid"`
	CPUPercent float64 `json:"cpu_percent"`
	RSSMb      uint64  `json:"rss_mb"`
}

type statusPayload struct {
	Status       string                 `json:"status"`
	Dependencies DependencyStatus       `json:"dependencies"`
	Runs         observability.RunStats `json:"runs"`
	Process      *processStats          `json:"process,omitempty"`
	Time         string                 `json:"time"`
}

// NewStatusServer builds the HTTP surface of the process: a health/status
// endpoint and the on-demand run trigger. The trigger func is expected to be
// non-blocking safe (it is launched in its own goroutine here).
func NewStatusServer(log *slog.Logger, port int,
	monitoring *observability.MonitoringManager, deps DependencyStatus,
	trigger func(ctx context.Context)) *http.Server {

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		payload := statusPayload{
			Status:       "ok",
			Dependencies: deps,
			Runs:         monitoring.GetLatest(),
			Process:      selfStats(),
			Time:         time.Now().Format(time.RFC3339),
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			log.Error("Status encoding failed", "error", err)
		}
	})

	mux.HandleFunc("POST /run", func(w http.ResponseWriter, r *http.Request) {
		log.Info("On-demand roulette run requested", "remote", r.RemoteAddr)
		// Detached from the request: the run outlives the HTTP exchange
		// and reports to the channel, not to the caller.
		go trigger(context.WithoutCancel(r.Context()))

		w.WriteHeader(http.StatusAccepted)
		fmt.Fprint(w, "run triggered")
	})

	return &http.Server{
		Addr:    fmt.Sprintf("0.0.0.0:%d", port),
		Handler: mux,
	}
}

// selfStats returns CPU/RSS of this process; nil when gopsutil cannot read it
// (the status page stays useful without it).
func selfStats() *processStats {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil
	}

	stats := &processStats{PID: p.Pid}
	if memInfo, err := p.MemoryInfo(); err == nil {
		stats.RSSMb = memInfo.RSS / 1024 / 1024
	}
	if cpu, err := p.CPUPercent(); err == nil {
		stats.CPUPercent = cpu
	}
	return stats
}
