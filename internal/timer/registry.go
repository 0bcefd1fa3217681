// Package timer implements step countdown timers: duration inference from
// step text, the per-session timer registry, and the tick source that
// drives it.
package timer

import (
	"sort"
	"strings"

	"github.com/hammamikhairi/ottoweb/internal/domain"
	"github.com/hammamikhairi/ottoweb/internal/logger"
)

// Registry holds the active timers of one cook session, keyed by step
// index. It is not safe for concurrent use; the session driver serializes
// every call onto one goroutine.
type Registry struct {
	active map[int]*domain.Timer
	log    *logger.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(log *logger.Logger) *Registry {
	return &Registry{
		active: make(map[int]*domain.Timer),
		log:    log,
	}
}

// Create starts a countdown for stepIndex. It is a no-op, returning false,
// when a timer for that step is already running or seconds is not positive.
func (r *Registry) Create(stepIndex int, label string, seconds int) bool {
	if seconds <= 0 {
		return false
	}
	if _, ok := r.active[stepIndex]; ok {
		r.log.Debug("timer for step %d already running", stepIndex)
		return false
	}
	r.active[stepIndex] = &domain.Timer{
		StepIndex: stepIndex,
		Label:     label,
		Remaining: seconds,
		State:     domain.TimerRunning,
	}
	r.log.Debug("created timer for step %d (%ds): %q", stepIndex, seconds, label)
	return true
}

// Tick advances every running timer by one second. Timers that reach zero
// move to Expired, leave the active set, and are returned in step order.
func (r *Registry) Tick() []domain.Timer {
	var expired []domain.Timer
	for _, idx := range r.order() {
		t := r.active[idx]
		t.Remaining--
		if t.Remaining > 0 {
			continue
		}
		t.Remaining = 0
		t.State = domain.TimerExpired
		delete(r.active, idx)
		expired = append(expired, *t)
		r.log.Debug("timer for step %d expired", idx)
	}
	return expired
}

// Cancel removes the first active timer, in step order, whose label
// satisfies match. The cancelled timer is returned with ok set; ok is
// false when nothing matched.
func (r *Registry) Cancel(match func(label string) bool) (domain.Timer, bool) {
	for _, idx := range r.order() {
		t := r.active[idx]
		if !match(t.Label) {
			continue
		}
		t.State = domain.TimerCancelled
		delete(r.active, idx)
		r.log.Debug("cancelled timer for step %d: %q", idx, t.Label)
		return *t, true
	}
	return domain.Timer{}, false
}

// CancelLabel cancels the first active timer whose label contains target,
// ignoring case.
func (r *Registry) CancelLabel(target string) (domain.Timer, bool) {
	target = strings.ToLower(target)
	return r.Cancel(func(label string) bool {
		return strings.Contains(strings.ToLower(label), target)
	})
}

// CancelAll cancels every active timer and returns how many there were.
func (r *Registry) CancelAll() int {
	n := len(r.active)
	for idx, t := range r.active {
		t.State = domain.TimerCancelled
		delete(r.active, idx)
	}
	if n > 0 {
		r.log.Debug("cancelled %d timers", n)
	}
	return n
}

// ListActive returns copies of the running timers ordered by step index.
func (r *Registry) ListActive() []domain.Timer {
	out := make([]domain.Timer, 0, len(r.active))
	for _, idx := range r.order() {
		out = append(out, *r.active[idx])
	}
	return out
}

// Len returns the number of running timers.
func (r *Registry) Len() int { return len(r.active) }

func (r *Registry) order() []int {
	keys := make([]int, 0, len(r.active))
	for k := range r.active {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
