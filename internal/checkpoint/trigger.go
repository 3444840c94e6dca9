package checkpoint

import (
	"fmt"
	"strings"
	"sync"
)

// TriggerFunc reacts to a checkpoint. Callbacks run synchronously on the
// appending goroutine and must not append to the log themselves.
type TriggerFunc func(Checkpoint)

// Trigger pairs a glob pattern over checkpoint ids with a named callback.
type Trigger struct {
	Pattern string
	Name    string
	fn      TriggerFunc
	enabled bool
}

// Registry holds triggers in registration order.
type Registry struct {
	mu       sync.Mutex
	triggers []*Trigger
}

// NewRegistry returns an empty trigger registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a trigger. Names must be unique within the registry and the
// callback must be non-nil. New triggers start enabled.
func (r *Registry) Register(pattern, name string, fn TriggerFunc) error {
	if name == "" {
		return fmt.Errorf("trigger name must not be empty")
	}
	if fn == nil {
		return fmt.Errorf("trigger %q: callback must not be nil", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.triggers {
		if t.Name == name {
			return fmt.Errorf("trigger %q already registered", name)
		}
	}
	r.triggers = append(r.triggers, &Trigger{Pattern: pattern, Name: name, fn: fn, enabled: true})
	return nil
}

// Enable turns a trigger back on. Returns false if the name is unknown.
func (r *Registry) Enable(name string) bool { return r.setEnabled(name, true) }

// Disable turns a trigger off without removing it.
func (r *Registry) Disable(name string) bool { return r.setEnabled(name, false) }

func (r *Registry) setEnabled(name string, enabled bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.triggers {
		if t.Name == name {
			t.enabled = enabled
			return true
		}
	}
	return false
}

// dispatch runs every enabled, matching trigger against cp in registration
// order. It reports whether any trigger fired and the names of triggers whose
// callbacks panicked; panics never propagate.
func (r *Registry) dispatch(cp Checkpoint) (fired bool, faults []string) {
	r.mu.Lock()
	triggers := make([]*Trigger, len(r.triggers))
	copy(triggers, r.triggers)
	r.mu.Unlock()

	for _, t := range triggers {
		if !t.enabled || !Match(t.Pattern, cp.ID) {
			continue
		}
		fired = true
		cp.TriggerFired = true
		func() {
			defer func() {
				if recover() != nil {
					faults = append(faults, t.Name)
				}
			}()
			t.fn(cp)
		}()
	}
	return fired, faults
}

// Match reports whether a trigger pattern matches a checkpoint id. The
// grammar is deliberately small: "*" matches everything, a trailing "*"
// matches by prefix, anything else matches exactly.
func Match(pattern, id string) bool {
	if pattern == "*" {
		return true
	}
	if strings.HasSuffix(pattern, "*") {
		return strings.HasPrefix(id, pattern[:len(pattern)-1])
	}
	return pattern == id
}
