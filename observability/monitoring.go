package observability

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// RunStats is the snapshot exposed on the status endpoint.
type RunStats struct {
	RunsStarted    uint64 `json:"runs_started"`
	RunsCompleted  uint64 `json:"runs_completed"`
	RunsFailed     uint64 `json:"runs_failed"`
	MembersFetched uint64 `json:"members_fetched"`
	GroupsFormed   uint64 `json:"groups_formed"`
	BookingsOK     uint64 `json:"bookings_ok"`
	BookingsFailed uint64 `json:"bookings_failed"`
	LastRunID      string `json:"last_run_id"`
	LastRunAt      string `json:"last_run_at"`
}

// MonitoringManager aggregates run telemetry. Counters are atomic; the
// last-run fields are guarded by the mutex.
type MonitoringManager struct {
	log *slog.Logger
	mu  sync.RWMutex

	runsStarted    uint64
	runsCompleted  uint64
	runsFailed     uint64
	membersFetched uint64
	groupsFormed   uint64
	bookingsOK     uint64
	bookingsFailed uint64

	lastRunID string
	lastRunAt time.Time
}

func NewMonitoringManager(log *slog.Logger) *MonitoringManager {
	return &MonitoringManager{log: log}
}

// RunStarted records the beginning of a run and remembers it as the latest.
func (mm *MonitoringManager) RunStarted(runID string, at time.Time) {
	atomic.AddUint64(&mm.runsStarted, 1)

	mm.mu.Lock()
	mm.lastRunID = runID
	mm.lastRunAt = at
	mm.mu.Unlock()

	mm.log.Debug("Run recorded", "run_id", runID)
}

func (mm *MonitoringManager) RunCompleted() {
	atomic.AddUint64(&mm.runsCompleted, 1)
}

func (mm *MonitoringManager) RunFailed() {
	atomic.AddUint64(&mm.runsFailed, 1)
}

func (mm *MonitoringManager) AddMembersFetched(n int) {
	atomic.AddUint64(&mm.membersFetched, uint64(n))
}

func (mm *MonitoringManager) AddGroupsFormed(n int) {
	atomic.AddUint64(&mm.groupsFormed, uint64(n))
}

func (mm *MonitoringManager) IncrBookingOK() {
	atomic.AddUint64(&mm.bookingsOK, 1)
}

func (mm *MonitoringManager) IncrBookingFailed() {
	atomic.AddUint64(&mm.bookingsFailed, 1)
}

// GetLatest returns a consistent snapshot for the status endpoint.
func (mm *MonitoringManager) GetLatest() RunStats {
	mm.mu.RLock()
	defer mm.mu.RUnlock()

	stats := RunStats{
		RunsStarted:    atomic.LoadUint64(&mm.runsStarted),
		RunsCompleted:  atomic.LoadUint64(&mm.runsCompleted),
		RunsFailed:     atomic.LoadUint64(&mm.runsFailed),
		MembersFetched: atomic.LoadUint64(&mm.membersFetched),
		GroupsFormed:   atomic.LoadUint64(&mm.groupsFormed),
		BookingsOK:     atomic.LoadUint64(&mm.bookingsOK),
		BookingsFailed: atomic.LoadUint64(&mm.bookingsFailed),
		LastRunID:      mm.lastRunID,
	}
	if !mm.lastRunAt.IsZero() {
		stats.LastRunAt = mm.lastRunAt.Format(time.RFC3339)
	}
	return stats
}
