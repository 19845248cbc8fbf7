package engine

// PlayState is the transport state of a Scheduler.
type PlayState uint8

const (
	StateStopped PlayState = iota
	StatePlaying
	StatePaused
)

func (s PlayState) String() string {
	switch s {
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	}
	return "stopped"
}

// Scheduler drives note lifecycles over an extracted timeline. The caller
// invokes Advance, SpawnDue and Expire once per frame, in that order. The
// timeline slice is never mutated, so any number of schedulers (for example
// one visual and one audio) may share it; each owns its own clock.
//
// Every operation is safe to call in any state and never panics.
type Scheduler struct {
	timeline []TimedNote
	state    PlayState
	now      float64 // seconds; frozen while paused, 0 while stopped
	next     int     // cursor: first timeline index not yet spawned
	active   []TimedNote
}

// NewScheduler creates a stopped scheduler over a timeline sorted by start
// time, as produced by Extract.
func NewScheduler(timeline []TimedNote) *Scheduler {
	return &Scheduler{timeline: timeline}
}

// Play starts or resumes playback. Resuming after a pause does not re-spawn
// notes already active and does not skip notes whose window opened during
// the pause; the cursor, not wall time, decides what spawns.
func (s *Scheduler) Play() {
	s.state = StatePlaying
}

// Pause freezes the clock, retaining the active set and cursor.
func (s *Scheduler) Pause() {
	if s.state == StatePlaying {
		s.state = StatePaused
	}
}

// Stop resets the clock and cursor and clears the active set, re-enabling
// replay from the start.
func (s *Scheduler) Stop() {
	s.state = StateStopped
	s.now = 0
	s.next = 0
	s.active = s.active[:0]
}

// Advance moves the clock forward by dt seconds. It is a no-op unless
// playing; negative dt is treated as zero. When the cursor has exhausted
// the timeline and the active set is empty, playback stops automatically.
func (s *Scheduler) Advance(dt float64) {
	if s.state != StatePlaying {
		return
	}
	if dt > 0 {
		s.now += dt
	}
	if s.next >= len(s.timeline) && len(s.active) == 0 {
		s.Stop()
	}
}

// SpawnDue returns the notes that became eligible since the last call: a
// note is eligible once its start time is within lookahead seconds of the
// clock. Each note is returned exactly once per play-through; the scan is a
// single forward pass over the sorted timeline, never rescanning. Returned
// notes join the active set. Nil unless playing; negative lookahead is
// treated as zero.
func (s *Scheduler) SpawnDue(lookahead float64) []TimedNote {
	if s.state != StatePlaying {
		return nil
	}
	if lookahead < 0 {
		lookahead = 0
	}
	horizon := s.now + lookahead
	first := s.next
	for s.next < len(s.timeline) && s.timeline[s.next].Start <= horizon {
		s.next++
	}
	if s.next == first {
		return nil
	}
	spawned := s.timeline[first:s.next]
	s.active = append(s.active, spawned...)
	return spawned
}

// ActiveNotes returns the notes spawned but not yet expired, in spawn
// order. The slice is valid until the next Stop, SpawnDue or Expire call.
func (s *Scheduler) ActiveNotes() []TimedNote {
	return s.active
}

// Expire removes active notes whose time-based lifetime has ended, i.e.
// the clock has passed their end. A note with remaining on-screen geometry
// is the renderer's business: if visible is non-nil, a time-expired note is
// retained while visible reports true. Pass nil to expire on time alone.
func (s *Scheduler) Expire(visible func(TimedNote) bool) {
	kept := s.active[:0]
	for _, n := range s.active {
		if IsTimeExpired(n, s.now) && (visible == nil || !visible(n)) {
			continue
		}
		kept = append(kept, n)
	}
	s.active = kept
}

// Now returns the playback clock in seconds.
func (s *Scheduler) Now() float64 {
	return s.now
}

// State returns the current transport state.
func (s *Scheduler) State() PlayState {
	return s.state
}

// IsTimeExpired reports whether now has passed the note's end. This is the
// time-based half of the expiry test; the geometric half lives with the
// renderer.
func IsTimeExpired(n TimedNote, now float64) bool {
	return now > n.End()
}

// IsSounding reports whether the note is audibly on at the given time.
func IsSounding(n TimedNote, now float64) bool {
	return n.Start <= now && now <= n.End()
}
