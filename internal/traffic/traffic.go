package traffic

import (
	"sync"
	"time"
)

// retention bounds how long outcomes are kept; health windows must not exceed it.
const retention = 5 * time.Minute

var defaultTracker = NewTracker()

// RecordSuccess records a successful upstream call for service.
func RecordSuccess(service string) {
	defaultTracker.RecordSuccess(service)
}

// RecordFailure records a failed upstream call for service (non-2xx, transport, parse, semantic).
func RecordFailure(service string) {
	defaultTracker.RecordFailure(service)
}

// FailureRate returns (failureCount, totalCount) for service within the window.
func FailureRate(service string, window time.Duration) (failures, total int) {
	return defaultTracker.FailureRate(service, window)
}

// Reset clears all recorded outcomes. For tests only.
func Reset() {
	defaultTracker.Reset()
}

// Tracker keeps sliding windows of upstream call outcomes per service.
// It feeds /health only and never influences adapter control flow.
type Tracker struct {
	mu       sync.Mutex
	services map[string]*window
}

type window struct {
	successTimes []time.Time
	failureTimes []time.Time
}

// NewTracker returns an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{services: make(map[string]*window)}
}

// RecordSuccess records a successful call for service.
func (t *Tracker) RecordSuccess(service string) {
	t.record(service, false)
}

// RecordFailure records a failed call for service.
func (t *Tracker) RecordFailure(service string) {
	t.record(service, true)
}

func (t *Tracker) record(service string, failed bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := time.Now()
	w, ok := t.services[service]
	if !ok {
		w = &window{}
		t.services[service] = w
	}
	if failed {
		w.failureTimes = append(w.failureTimes, now)
	} else {
		w.successTimes = append(w.successTimes, now)
	}
	w.prune(now)
}

// FailureRate returns (failureCount, totalCount) for service within the window.
func (t *Tracker) FailureRate(service string, window time.Duration) (failures, total int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	w, ok := t.services[service]
	if !ok {
		return 0, 0
	}
	cutoff := time.Now().Add(-window)
	failures = countInWindow(w.failureTimes, cutoff)
	return failures, failures + countInWindow(w.successTimes, cutoff)
}

// Reset clears all recorded outcomes.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.services = make(map[string]*window)
}

// countInWindow counts timestamps that are not before the cutoff time.
func countInWindow(times []time.Time, cutoff time.Time) int {
	n := 0
	for _, ts := range times {
		if !ts.Before(cutoff) {
			n++
		}
	}
	return n
}

// prune drops timestamps older than retention. Caller holds the tracker mutex.
func (w *window) prune(now time.Time) {
	cutoff := now.Add(-retention)
	prune := func(slice *[]time.Time) {
		times := *slice
		i := 0
		for ; i < len(times) && times[i].Before(cutoff); i++ {
		}
		if i > 0 {
			*slice = append(times[:0], times[i:]...)
		}
	}
	prune(&w.successTimes)
	prune(&w.failureTimes)
}
