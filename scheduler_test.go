package forme

import (
	"testing"
	"time"
)

func TestSchedulerEmitAndDrain(t *testing.T) {
	s := NewScheduler()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	s.EmitAfter(base, SchedulerEvent{Key: "a", Payload: 1}, 5*time.Second)
	if got := s.DrainReady(base.Add(4 * time.Second)); len(got) != 0 {
		t.Fatalf("drained %d events before deadline, want 0", len(got))
	}
	got := s.DrainReady(base.Add(5 * time.Second))
	if len(got) != 1 || got[0].Payload != 1 {
		t.Fatalf("DrainReady at deadline = %v, want one event with payload 1", got)
	}
}

// TestSchedulerCancel is the §8 invariant: after Cancel(k), no entry with
// key k fires until a new schedule for k occurs.
func TestSchedulerCancel(t *testing.T) {
	s := NewScheduler()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	s.EmitAfter(base, SchedulerEvent{Key: "k"}, time.Second)
	s.Cancel("k")
	if got := s.DrainReady(base.Add(10 * time.Second)); len(got) != 0 {
		t.Fatalf("cancelled entry fired: %v", got)
	}
	if s.Pending("k") {
		t.Errorf("Pending(k) = true after Cancel")
	}

	s.EmitAfter(base, SchedulerEvent{Key: "k", Payload: "second"}, time.Second)
	got := s.DrainReady(base.Add(10 * time.Second))
	if len(got) != 1 || got[0].Payload != "second" {
		t.Fatalf("re-scheduled entry did not fire correctly: %v", got)
	}
}

// TestSchedulerDebounceIdempotence is the §8 invariant: N successive
// Debounce(k, e, d) within <d each fire exactly one e after quiescence of d.
func TestSchedulerDebounceIdempotence(t *testing.T) {
	s := NewScheduler()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		now := base.Add(time.Duration(i) * 100 * time.Millisecond)
		s.Debounce(now, "k", SchedulerEvent{Key: "k", Payload: i}, time.Second)
	}

	lastSchedule := base.Add(400 * time.Millisecond)
	if got := s.DrainReady(lastSchedule.Add(999 * time.Millisecond)); len(got) != 0 {
		t.Fatalf("fired before quiescence: %v", got)
	}
	got := s.DrainReady(lastSchedule.Add(time.Second))
	if len(got) != 1 {
		t.Fatalf("got %d events after quiescence, want exactly 1", len(got))
	}
	if got[0].Payload != 4 {
		t.Errorf("fired event carries payload %v, want the last debounce call's (4)", got[0].Payload)
	}
}

// TestSchedulerThrottleCollapses covers the leading-edge throttle
// semantics grounded on original_source's runtime/scheduler.rs: a
// request inside the cooldown window is dropped outright, not queued for
// a later trailing fire; only a request arriving after the window
// elapses fires.
func TestSchedulerThrottleCollapses(t *testing.T) {
	s := NewScheduler()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	s.Throttle(base, "k", SchedulerEvent{Key: "k", Payload: 1}, time.Second)
	first := s.DrainReady(base)
	if len(first) != 1 || first[0].Payload != 1 {
		t.Fatalf("first throttle call did not fire immediately: %v", first)
	}

	s.Throttle(base.Add(200*time.Millisecond), "k", SchedulerEvent{Key: "k", Payload: 2}, time.Second)
	s.Throttle(base.Add(400*time.Millisecond), "k", SchedulerEvent{Key: "k", Payload: 3}, time.Second)

	if got := s.DrainReady(base.Add(900 * time.Millisecond)); len(got) != 0 {
		t.Fatalf("dropped throttle requests fired anyway: %v", got)
	}

	s.Throttle(base.Add(1100*time.Millisecond), "k", SchedulerEvent{Key: "k", Payload: 4}, time.Second)
	got := s.DrainReady(base.Add(1100 * time.Millisecond))
	if len(got) != 1 || got[0].Payload != 4 {
		t.Fatalf("throttle call after cooldown elapsed = %v, want one event with payload 4", got)
	}
}

// TestSchedulerFireOrderTiesBrokenByInsertion is the §5/§8 ordering
// guarantee: simultaneous fire times resolve in insertion order.
func TestSchedulerFireOrderTiesBrokenByInsertion(t *testing.T) {
	s := NewScheduler()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	s.EmitAfter(base, SchedulerEvent{Key: "first", Payload: "first"}, time.Second)
	s.EmitAfter(base, SchedulerEvent{Key: "second", Payload: "second"}, time.Second)
	s.EmitAfter(base, SchedulerEvent{Key: "third", Payload: "third"}, time.Second)

	got := s.DrainReady(base.Add(time.Second))
	if len(got) != 3 {
		t.Fatalf("got %d events, want 3", len(got))
	}
	want := []string{"first", "second", "third"}
	for i, ev := range got {
		if ev.Payload != want[i] {
			t.Errorf("event %d payload = %v, want %v", i, ev.Payload, want[i])
		}
	}
}

func TestSchedulerNextDeadline(t *testing.T) {
	s := NewScheduler()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	if _, ok := s.NextDeadline(); ok {
		t.Fatalf("NextDeadline on empty scheduler reported ok")
	}

	s.EmitAfter(base, SchedulerEvent{Key: "slow"}, 10*time.Second)
	s.EmitAfter(base, SchedulerEvent{Key: "fast"}, 2*time.Second)

	deadline, ok := s.NextDeadline()
	if !ok {
		t.Fatalf("NextDeadline reported !ok with pending entries")
	}
	if want := base.Add(2 * time.Second); !deadline.Equal(want) {
		t.Errorf("NextDeadline() = %v, want %v", deadline, want)
	}
}
