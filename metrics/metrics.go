// Package metrics provides a thread-safe metrics value shared by all workers
// of a pool: per-worker counters and timings plus free-form user counters.
package metrics

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Value holds the metrics for one pool: a slot per worker for counters and
// timings, a pool-level dropped counter, and a map of user-defined counters.
type Value struct {
	startTime time.Time

	statsLock   sync.RWMutex
	workerStats []workerStat
	dropped     int

	userLock sync.RWMutex
	userData map[string]int
}

// workerStat is the per-worker slice of counters, written only by the owning
// worker but read by GetStats from other goroutines.
type workerStat struct {
	processed int
	panics    int
	procTime  time.Duration
	waitTime  time.Duration
}

// New makes a metrics value for the given number of workers.
func New(workers int) *Value {
	if workers < 1 {
		workers = 1
	}
	return &Value{
		startTime:   time.Now(),
		workerStats: make([]workerStat, workers),
		userData:    map[string]int{},
	}
}

// StartTimer starts measuring processing time for the given worker and
// returns the function to stop the measurement.
func (m *Value) StartTimer(wid int) func() {
	start := time.Now()
	return func() {
		m.statsLock.Lock()
		defer m.statsLock.Unlock()
		m.workerStats[wid].procTime += time.Since(start)
	}
}

// AddWaitTime records time the given worker spent waiting for a job.
func (m *Value) AddWaitTime(wid int, d time.Duration) {
	m.statsLock.Lock()
	defer m.statsLock.Unlock()
	m.workerStats[wid].waitTime += d
}

// IncProcessed increments the processed-jobs counter for the given worker.
func (m *Value) IncProcessed(wid int) {
	m.statsLock.Lock()
	defer m.statsLock.Unlock()
	m.workerStats[wid].processed++
}

// IncPanics increments the recovered-panics counter for the given worker.
func (m *Value) IncPanics(wid int) {
	m.statsLock.Lock()
	defer m.statsLock.Unlock()
	m.workerStats[wid].panics++
}

// IncDropped increments the pool-level counter of jobs discarded without
// running, i.e. queued at shutdown or submitted after it.
func (m *Value) IncDropped() {
	m.statsLock.Lock()
	defer m.statsLock.Unlock()
	m.dropped++
}

// Add increments a user-defined counter by delta and returns the new value.
func (m *Value) Add(key string, delta int) int {
	m.userLock.Lock()
	defer m.userLock.Unlock()
	m.userData[key] += delta
	return m.userData[key]
}

// Inc increments a user-defined counter by one.
func (m *Value) Inc(key string) int {
	return m.Add(key, 1)
}

// Get returns the value of a user-defined counter.
func (m *Value) Get(key string) int {
	m.userLock.RLock()
	defer m.userLock.RUnlock()
	return m.userData[key]
}

// Stats represents the combined metrics of all workers of a pool.
type Stats struct {
	Processed int
	Panics    int
	Dropped   int

	ProcessingTime time.Duration // sum of all workers' execution time
	WaitTime       time.Duration // sum of all workers' idle time
	TotalTime      time.Duration // wall time since the pool was created
}

// String returns sorted key:val string representation of stats.
func (s Stats) String() string {
	parts := []string{
		fmt.Sprintf("processed:%d", s.Processed),
		fmt.Sprintf("panics:%d", s.Panics),
		fmt.Sprintf("dropped:%d", s.Dropped),
		fmt.Sprintf("proc:%v", s.ProcessingTime.Round(time.Millisecond)),
		fmt.Sprintf("wait:%v", s.WaitTime.Round(time.Millisecond)),
		fmt.Sprintf("total:%v", s.TotalTime.Round(time.Millisecond)),
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// GetStats aggregates the per-worker slots into a single Stats.
func (m *Value) GetStats() Stats {
	m.statsLock.RLock()
	defer m.statsLock.RUnlock()

	res := Stats{Dropped: m.dropped, TotalTime: time.Since(m.startTime)}
	for _, ws := range m.workerStats {
		res.Processed += ws.processed
		res.Panics += ws.panics
		res.ProcessingTime += ws.procTime
		res.WaitTime += ws.waitTime
	}
	return res
}

// String returns sorted key:vals string representation of user metrics and
// adds duration since creation.
func (m *Value) String() string {
	duration := time.Since(m.startTime)

	m.userLock.RLock()
	defer m.userLock.RUnlock()

	sortedKeys := func() (res []string) {
		for k := range m.userData {
			res = append(res, k)
		}
		sort.Strings(res)
		return res
	}()

	udata := make([]string, len(sortedKeys))
	for i, k := range sortedKeys {
		udata[i] = fmt.Sprintf("%s:%d", k, m.userData[k])
	}

	um := ""
	if len(udata) > 0 {
		um = fmt.Sprintf("[%s]", strings.Join(udata, ", "))
	}
	return fmt.Sprintf("%v %s", duration, um)
}
