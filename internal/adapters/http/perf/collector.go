package perf

import (
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultRingSize is the default capacity of the ring buffer.
const DefaultRingSize = 4096

// Kind distinguishes what an Entry timed.
type Kind uint8

const (
	KindRequest Kind = iota // one HTTP request, Name is "METHOD /path"
	KindStoreOp             // one Record Store call, Name is "collection.op"
	KindQuery               // one SQL round trip, Name is the database/sql method
)

// Entry is a single timing sample.
type Entry struct {
	Kind     Kind
	Name     string
	Status   int // HTTP status for requests, 0 otherwise
	Failed   bool
	Duration time.Duration
	At       time.Time
}

// Collector keeps the most recent entries in a fixed ring. Record never blocks
// on readers for longer than a slot copy; aggregation happens in Snapshot.
type Collector struct {
	mu      sync.Mutex
	ring    []Entry
	next    int
	written atomic.Int64
}

// NewCollector creates a collector holding at most size entries.
// POST: size <= 0 falls back to DefaultRingSize
func NewCollector(size int) *Collector {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Collector{ring: make([]Entry, size)}
}

// Record stores e, overwriting the oldest entry when the ring is full.
// A nil Collector ignores the call.
func (c *Collector) Record(e Entry) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.ring[c.next] = e
	c.next = (c.next + 1) % len(c.ring)
	c.mu.Unlock()
	c.written.Add(1)
}

// TotalRecorded returns how many entries were ever recorded.
func (c *Collector) TotalRecorded() int64 {
	if c == nil {
		return 0
	}
	return c.written.Load()
}

// OpStat aggregates samples sharing one Name.
type OpStat struct {
	Name   string  `json:"name"`
	Count  int     `json:"count"`
	Errors int     `json:"errors"`
	AvgMs  float64 `json:"avg_ms"`
	MaxMs  float64 `json:"max_ms"`
}

// Snapshot is the aggregated view served on the admin stats endpoint.
type Snapshot struct {
	Since          time.Time `json:"since"`
	TotalRecorded  int64     `json:"total_recorded"`
	RequestP50Ms   float64   `json:"request_p50_ms"`
	RequestP95Ms   float64   `json:"request_p95_ms"`
	RequestP99Ms   float64   `json:"request_p99_ms"`
	SlowestPaths   []OpStat  `json:"slowest_paths"`
	SlowestStoreOp []OpStat  `json:"slowest_store_ops"`
	SlowestQueries []OpStat  `json:"slowest_queries"`
}

// Snapshot aggregates entries recorded at or after since, keeping the topN
// slowest names per kind by average duration.
func (c *Collector) Snapshot(since time.Time, topN int) Snapshot {
	snap := Snapshot{Since: since, TotalRecorded: c.TotalRecorded()}
	if c == nil {
		return snap
	}

	c.mu.Lock()
	buf := make([]Entry, len(c.ring))
	copy(buf, c.ring)
	c.mu.Unlock()

	groups := map[Kind]map[string]*OpStat{
		KindRequest: {},
		KindStoreOp: {},
		KindQuery:   {},
	}
	var reqMs []float64
	for _, e := range buf {
		if e.At.IsZero() || e.At.Before(since) {
			continue
		}
		ms := float64(e.Duration.Microseconds()) / 1000.0
		if e.Kind == KindRequest {
			reqMs = append(reqMs, ms)
		}
		byName := groups[e.Kind]
		if byName == nil {
			continue
		}
		s, ok := byName[e.Name]
		if !ok {
			s = &OpStat{Name: e.Name}
			byName[e.Name] = s
		}
		s.Count++
		s.AvgMs += ms
		if ms > s.MaxMs {
			s.MaxMs = ms
		}
		if e.Failed {
			s.Errors++
		}
	}

	snap.SlowestPaths = slowest(groups[KindRequest], topN)
	snap.SlowestStoreOp = slowest(groups[KindStoreOp], topN)
	snap.SlowestQueries = slowest(groups[KindQuery], topN)

	sort.Float64s(reqMs)
	snap.RequestP50Ms = percentile(reqMs, 50)
	snap.RequestP95Ms = percentile(reqMs, 95)
	snap.RequestP99Ms = percentile(reqMs, 99)
	return snap
}

// percentile interpolates linearly between the closest ranks of sorted.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	rank := p / 100 * float64(len(sorted)-1)
	lo, hi := int(math.Floor(rank)), int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (sorted[hi]-sorted[lo])*(rank-float64(lo))
}

// slowest turns summed durations into averages and returns the n highest.
func slowest(byName map[string]*OpStat, n int) []OpStat {
	out := make([]OpStat, 0, len(byName))
	for _, s := range byName {
		s.AvgMs /= float64(s.Count)
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AvgMs != out[j].AvgMs {
			return out[i].AvgMs > out[j].AvgMs
		}
		return out[i].Name < out[j].Name
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
