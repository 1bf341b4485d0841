package analysis

import (
	"maps"
	"slices"
	"time"
)

// DefaultHistorySize is the number of frames kept for velocity estimates.
const DefaultHistorySize = 30

// HistoryEntry records one analysed frame.
type HistoryEntry struct {
	Timestamp time.Time         `json:"timestamp"`
	Angles    AngleSample       `json:"angles"`
	Velocity  map[Joint]float64 `json:"velocity"`
	Phase     Phase             `json:"phase"`
}

func (e HistoryEntry) clone() HistoryEntry {
	e.Angles = e.Angles.Clone()
	e.Velocity = maps.Clone(e.Velocity)
	return e
}

// History is a fixed-capacity ring of recent frames. When full, pushing
// evicts the oldest entry.
type History struct {
	entries []HistoryEntry
	head    int // index of the oldest entry
	count   int
}

// NewHistory creates a ring holding at most size entries.
func NewHistory(size int) *History {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &History{entries: make([]HistoryEntry, size)}
}

// Cap returns the ring capacity.
func (h *History) Cap() int { return len(h.entries) }

// Len returns the number of stored entries.
func (h *History) Len() int { return h.count }

// Push appends e, evicting the oldest entry when full.
func (h *History) Push(e HistoryEntry) {
	if h.count < len(h.entries) {
		h.entries[(h.head+h.count)%len(h.entries)] = e
		h.count++
		return
	}
	h.entries[h.head] = e
	h.head = (h.head + 1) % len(h.entries)
}

// Last returns the newest entry.
func (h *History) Last() (HistoryEntry, bool) {
	if h.count == 0 {
		return HistoryEntry{}, false
	}
	return h.entries[(h.head+h.count-1)%len(h.entries)], true
}

// Entries returns copies of the stored entries, oldest first.
func (h *History) Entries() []HistoryEntry {
	out := make([]HistoryEntry, h.count)
	for i := range h.count {
		out[i] = h.entries[(h.head+i)%len(h.entries)].clone()
	}
	return out
}

// Clone returns an independent copy of the ring.
func (h *History) Clone() *History {
	if h == nil {
		return nil
	}
	c := &History{entries: make([]HistoryEntry, len(h.entries)), head: h.head, count: h.count}
	for i, e := range h.entries {
		c.entries[i] = e.clone()
	}
	return c
}

// fork returns a ring that can be pushed to without affecting h. Stored
// entries are never modified, so their maps are shared.
func (h *History) fork() *History {
	if h == nil {
		return nil
	}
	return &History{entries: slices.Clone(h.entries), head: h.head, count: h.count}
}

// Velocity returns the angular velocity in degrees per second of every joint
// present in both samples. Non-positive dt yields an empty map.
func Velocity(prev, cur AngleSample, dt time.Duration) map[Joint]float64 {
	out := make(map[Joint]float64)
	if dt <= 0 {
		return out
	}
	secs := dt.Seconds()
	for j, v := range cur {
		if p, ok := prev[j]; ok {
			out[j] = (v - p) / secs
		}
	}
	return out
}
