package forme

import "time"

// SchedulerEvent is the payload carried by a keyed timer entry. The
// engine's own uses (error decay, typeahead) just need a key to route
// back on fire; callers attach their own payload via Payload.
type SchedulerEvent struct {
	Key     string
	Payload any
}

type scheduledEntry struct {
	key     string
	event   SchedulerEvent
	fireAt  time.Time
	version uint64
}

// Scheduler is a keyed timer service producing delayed events with
// cancel/debounce/throttle semantics (§4.5). It is not itself
// thread-safe; the runtime loop is its only caller, on the single
// cooperative thread (§5). Grounded on original_source's
// `runtime/scheduler.rs`, including its leading-edge Throttle (see
// Throttle below) and version-guarded delayed entries.
type Scheduler struct {
	entries       map[string]*scheduledEntry
	versions      map[string]uint64
	order         []string // insertion order, for fire-time ties (§5 ordering guarantee)
	seq           uint64
	throttleUntil map[string]time.Time // cooldown end per throttled key
}

// NewScheduler creates an empty scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{
		entries:       make(map[string]*scheduledEntry),
		versions:      make(map[string]uint64),
		throttleUntil: make(map[string]time.Time),
	}
}

func (s *Scheduler) nextVersion(key string) uint64 {
	s.versions[key]++
	return s.versions[key]
}

// EmitNow enqueues event for immediate delivery on the next drain.
func (s *Scheduler) EmitNow(now time.Time, event SchedulerEvent) {
	s.schedule(event.Key, event, now)
}

// EmitAfter enqueues event to fire at now+delay.
func (s *Scheduler) EmitAfter(now time.Time, event SchedulerEvent, delay time.Duration) {
	s.schedule(event.Key, event, now.Add(delay))
}

// Debounce replaces any pending entry sharing key with a fresh
// now+delay firing; the superseded entry is overwritten in place and
// never fires.
func (s *Scheduler) Debounce(now time.Time, key string, event SchedulerEvent, delay time.Duration) {
	s.schedule(key, event, now.Add(delay))
}

// Throttle fires at most one event per interval for key: a request
// arriving while key is still within its cooldown window from the last
// fire is dropped outright, not queued for later; a request arriving
// after the cooldown fires immediately and opens a fresh window. This is
// the original's leading-edge throttle (`runtime/scheduler.rs`'s
// `throttle_until` check-then-drop), not a trailing collapse.
func (s *Scheduler) Throttle(now time.Time, key string, event SchedulerEvent, interval time.Duration) {
	if until, ok := s.throttleUntil[key]; ok && until.After(now) {
		return
	}
	s.throttleUntil[key] = now.Add(interval)
	s.schedule(key, event, now)
}

// Cancel removes all pending entries with key. No entry with that key
// fires again until a new schedule call for it occurs.
func (s *Scheduler) Cancel(key string) {
	delete(s.entries, key)
	delete(s.throttleUntil, key)
	s.versions[key]++ // bump so any in-flight stale reference is dropped
}

func (s *Scheduler) schedule(key string, event SchedulerEvent, fireAt time.Time) {
	s.seq++
	v := s.nextVersion(key)
	if _, existed := s.entries[key]; !existed {
		s.order = append(s.order, key)
	}
	s.entries[key] = &scheduledEntry{
		key: key, event: event, fireAt: fireAt, version: v,
	}
}

// readyCandidate pairs a fired entry with its original insertion index,
// used to break fire-time ties by insertion order (§5).
type readyCandidate struct {
	entry *scheduledEntry
	seq   int
}

func (a readyCandidate) before(b readyCandidate) bool {
	if a.entry.fireAt.Equal(b.entry.fireAt) {
		return a.seq < b.seq
	}
	return a.entry.fireAt.Before(b.entry.fireAt)
}

// DrainReady returns every entry whose fire time is <= now, in
// non-decreasing fire-time order with ties broken by insertion order
// (§5), removing them from the pending set. Entries that were superseded
// by a later Debounce/Throttle before firing (their version is stale)
// are dropped silently, never returned.
func (s *Scheduler) DrainReady(now time.Time) []SchedulerEvent {
	var ready []readyCandidate
	var remainingOrder []string

	for i, key := range s.order {
		e, ok := s.entries[key]
		if !ok {
			continue
		}
		if e.version != s.versions[key] {
			// stale: a newer schedule superseded this entry already
			// (shouldn't normally happen since entries map holds only
			// the latest, but guards a race-free invariant).
			delete(s.entries, key)
			continue
		}
		if !e.fireAt.After(now) {
			ready = append(ready, readyCandidate{entry: e, seq: i})
			delete(s.entries, key)
		} else {
			remainingOrder = append(remainingOrder, key)
		}
	}
	s.order = remainingOrder

	// stable insertion sort by fire time, ties by original insertion order
	for i := 1; i < len(ready); i++ {
		j := i
		for j > 0 && ready[j].before(ready[j-1]) {
			ready[j], ready[j-1] = ready[j-1], ready[j]
			j--
		}
	}

	events := make([]SchedulerEvent, 0, len(ready))
	for _, c := range ready {
		events = append(events, c.entry.event)
	}
	return events
}

// NextDeadline returns the earliest pending fire time, used by the
// runtime loop to bound terminal.poll (§5). ok is false when the
// scheduler has nothing pending.
func (s *Scheduler) NextDeadline() (deadline time.Time, ok bool) {
	first := true
	for _, e := range s.entries {
		if first || e.fireAt.Before(deadline) {
			deadline = e.fireAt
			first = false
		}
	}
	return deadline, !first
}

// Pending reports whether any entry is queued for key.
func (s *Scheduler) Pending(key string) bool {
	_, ok := s.entries[key]
	return ok
}
