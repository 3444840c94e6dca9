package checkpoint

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// Log is the bounded, append-only checkpoint timeline. All appends dispatch
// registered triggers synchronously before returning. Safe for use from
// multiple goroutines; trigger callbacks run under the log's lock and must
// not append (a re-entrant append is dropped, not recursed).
type Log struct {
	mu         sync.Mutex
	t0         time.Time
	entries    []Checkpoint
	overflowed bool
	registry   *Registry

	// Goroutine currently running trigger dispatch, 0 when none. Its own
	// appends must be dropped before they touch the mutex they already hold.
	dispatcher atomic.Uint64
}

// NewLog creates a timeline anchored at now and records the init checkpoint.
// A nil registry is allowed; no triggers will ever fire.
func NewLog(registry *Registry) *Log {
	l := &Log{
		t0:       time.Now(),
		entries:  make([]Checkpoint, 0, 64),
		registry: registry,
	}
	l.Append("SYSTEM: checkpoint_system_initialized", CategoryLoad, "checkpoint system ready")
	return l
}

// Append records a checkpoint and dispatches triggers against it. Empty ids
// become "UNKNOWN"; empty categories become MISC; id and context are truncated
// to the documented limits. Appends issued from inside a trigger callback are
// dropped.
func (l *Log) Append(id, category, context string) {
	// Triggers run with l.mu held, so an append issued from inside a
	// callback has to bail out here. Appends from other goroutines just
	// wait for the dispatch to finish.
	if d := l.dispatcher.Load(); d != 0 && d == goroutineID() {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	cp, ok := l.push(id, category, context)
	if !ok {
		return
	}

	if l.registry == nil {
		return
	}

	l.dispatcher.Store(goroutineID())
	fired, faults := l.registry.dispatch(cp)
	l.dispatcher.Store(0)

	if fired {
		l.entries[len(l.entries)-1].TriggerFired = true
	}
	for _, name := range faults {
		l.push("TRIGGER: error", CategoryMisc, fmt.Sprintf("trigger %q panicked", name))
	}
}

// goroutineID extracts the numeric id from the first runtime.Stack header
// line ("goroutine 42 [running]:"). The runtime exposes no API for this, but
// the header format has not changed since Go 1.0. Ids start at 1, so 0 is
// free to mean "no dispatch in flight".
func goroutineID() uint64 {
	var buf [64]byte
	s := buf[:runtime.Stack(buf[:], false)]
	s = s[len("goroutine "):]
	var id uint64
	for i := 0; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		id = id*10 + uint64(s[i]-'0')
	}
	return id
}

// push stores a normalized entry, handling capacity. Caller holds l.mu.
// Returns the stored value and whether it was stored.
func (l *Log) push(id, category, context string) (Checkpoint, bool) {
	if len(l.entries) >= MaxEntries {
		// The one-time meta record is allowed past capacity so the drop
		// condition stays observable in the exported timeline.
		if !l.overflowed {
			l.overflowed = true
			l.entries = append(l.entries, l.stamp("LOG: overflow", CategoryMisc, "checkpoint capacity exceeded, further entries dropped"))
		}
		return Checkpoint{}, false
	}

	cp := l.stamp(id, category, context)
	l.entries = append(l.entries, cp)
	return cp, true
}

func (l *Log) stamp(id, category, context string) Checkpoint {
	if id == "" {
		id = "UNKNOWN"
	}
	if len(id) > maxIDLen {
		id = id[:maxIDLen]
	}
	if category == "" {
		category = CategoryMisc
	}
	if len(context) > maxContextLen {
		context = context[:maxContextLen]
	}

	now := time.Now()
	offset := now.Sub(l.t0)
	return Checkpoint{
		ID:         id,
		Category:   category,
		Context:    context,
		Offset:     offset,
		OffsetSecs: offset.Seconds(),
		Wallclock:  now.Format("15:04:05.000"),
	}
}

// Count returns the number of stored checkpoints.
func (l *Log) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Get returns the i-th checkpoint in append order.
func (l *Log) Get(i int) (Checkpoint, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i < 0 || i >= len(l.entries) {
		return Checkpoint{}, false
	}
	return l.entries[i], true
}

// Snapshot returns a copy of the timeline in append order.
func (l *Log) Snapshot() []Checkpoint {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Checkpoint, len(l.entries))
	copy(out, l.entries)
	return out
}

// Cleanup records the terminal shutdown checkpoint.
func (l *Log) Cleanup() {
	l.Append("SYSTEM: checkpoint_system_cleanup", CategoryExit, "checkpoint system shutdown")
}
