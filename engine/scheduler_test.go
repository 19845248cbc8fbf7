package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testTimeline() []TimedNote {
	return []TimedNote{
		{Pitch: 60, Start: 0.0, Duration: 0.5, Velocity: 80},
		{Pitch: 64, Start: 0.25, Duration: 0.5, Velocity: 80},
		{Pitch: 67, Start: 2.0, Duration: 1.0, Velocity: 80},
	}
}

func TestSpawnDueLookahead(t *testing.T) {
	s := NewScheduler(testTimeline())
	s.Play()

	spawned := s.SpawnDue(1.0)
	assert.Len(t, spawned, 2) // starts 0.0 and 0.25 within lookahead
	assert.Equal(t, uint8(60), spawned[0].Pitch)
	assert.Equal(t, uint8(64), spawned[1].Pitch)

	s.Advance(1.5) // now 1.5, horizon 2.5 covers the last note
	spawned = s.SpawnDue(1.0)
	assert.Len(t, spawned, 1)
	assert.Equal(t, uint8(67), spawned[0].Pitch)
}

func TestSpawnMonotonicity(t *testing.T) {
	s := NewScheduler(testTimeline())
	s.Play()
	seen := make(map[uint8]int)
	for i := 0; i < 100; i++ {
		for _, n := range s.SpawnDue(10) {
			seen[n.Pitch]++
		}
		s.Advance(0.1)
	}
	for pitch, count := range seen {
		assert.Equal(t, 1, count, "pitch %d spawned more than once", pitch)
	}
	assert.Len(t, seen, 3)
}

func TestPauseIdempotence(t *testing.T) {
	s := NewScheduler(testTimeline())
	s.Play()
	s.Advance(0.1)
	s.SpawnDue(0.5)
	activeBefore := len(s.ActiveNotes())
	nowBefore := s.Now()

	s.Pause()
	s.Advance(1.0)
	assert.Equal(t, nowBefore, s.Now())
	assert.Len(t, s.ActiveNotes(), activeBefore)
	assert.Nil(t, s.SpawnDue(0.5))
	assert.Equal(t, StatePaused, s.State())

	// resume: no re-spawn of active notes, no skipped notes
	s.Play()
	assert.Empty(t, s.SpawnDue(0.5))
	s.Advance(2.0)
	spawned := s.SpawnDue(0.5)
	assert.Len(t, spawned, 1)
	assert.Equal(t, uint8(67), spawned[0].Pitch)
}

func TestAdvanceWhileStoppedIsNoop(t *testing.T) {
	s := NewScheduler(testTimeline())
	s.Advance(5)
	assert.Equal(t, 0.0, s.Now())
	assert.Nil(t, s.SpawnDue(1))
	assert.Equal(t, StateStopped, s.State())
}

func TestNegativeInputsTreatedAsZero(t *testing.T) {
	s := NewScheduler(testTimeline())
	s.Play()
	s.Advance(-1)
	assert.Equal(t, 0.0, s.Now())
	spawned := s.SpawnDue(-1)
	assert.Len(t, spawned, 1) // only the note starting exactly at 0
	assert.Equal(t, uint8(60), spawned[0].Pitch)
}

func TestExpireTimeOnly(t *testing.T) {
	s := NewScheduler(testTimeline())
	s.Play()
	s.SpawnDue(1)
	s.Advance(1.0) // past both early notes' ends
	s.Expire(nil)
	assert.Empty(t, s.ActiveNotes())
}

func TestExpireRetainsVisible(t *testing.T) {
	s := NewScheduler(testTimeline())
	s.Play()
	s.SpawnDue(1)
	s.Advance(1.0)
	s.Expire(func(n TimedNote) bool { return n.Pitch == 64 })
	active := s.ActiveNotes()
	assert.Len(t, active, 1)
	assert.Equal(t, uint8(64), active[0].Pitch)
}

func TestExpireKeepsUnfinishedNotes(t *testing.T) {
	s := NewScheduler(testTimeline())
	s.Play()
	s.SpawnDue(1)
	s.Advance(0.3) // both notes sounding
	s.Expire(nil)
	assert.Len(t, s.ActiveNotes(), 2)
}

func TestStopResetsAndAllowsReplay(t *testing.T) {
	s := NewScheduler(testTimeline())
	s.Play()
	s.SpawnDue(10)
	s.Advance(5)
	s.Stop()
	assert.Equal(t, 0.0, s.Now())
	assert.Empty(t, s.ActiveNotes())

	s.Play()
	spawned := s.SpawnDue(1)
	assert.Len(t, spawned, 2) // full replay from the start
}

func TestAutoStopAtEndOfPiece(t *testing.T) {
	s := NewScheduler(testTimeline())
	s.Play()
	for i := 0; i < 100 && s.State() == StatePlaying; i++ {
		s.Advance(0.1)
		s.SpawnDue(0.5)
		s.Expire(nil)
	}
	assert.Equal(t, StateStopped, s.State())
	assert.Equal(t, 0.0, s.Now())
}

func TestEmptyTimeline(t *testing.T) {
	s := NewScheduler(nil)
	s.Play()
	assert.Nil(t, s.SpawnDue(1))
	s.Advance(0.1) // cursor exhausted, active empty: stops
	assert.Equal(t, StateStopped, s.State())
}

func TestTimeHelpers(t *testing.T) {
	n := TimedNote{Start: 1.0, Duration: 0.5}
	assert.False(t, IsTimeExpired(n, 1.5))
	assert.True(t, IsTimeExpired(n, 1.5001))
	assert.False(t, IsSounding(n, 0.9))
	assert.True(t, IsSounding(n, 1.0))
	assert.True(t, IsSounding(n, 1.5))
	assert.False(t, IsSounding(n, 1.6))
}
