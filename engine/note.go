// Package engine converts Standard MIDI Files into absolute-time note
// timelines and schedules note lifecycles against a playback clock. It has
// no opinion about rendering; callers drive it once per frame.
package engine

import "sort"

// TimedNote is a closed note interval in absolute seconds from file start.
type TimedNote struct {
	Pitch    uint8   // MIDI note number, 0-127
	Start    float64 // seconds
	Duration float64 // seconds, always > 0
	Velocity uint8   // note-on velocity, 1-127
	Track    int     // source track index in the file
	Channel  uint8   // source MIDI channel, 0-15
}

// End returns the absolute time at which the note stops sounding.
func (n TimedNote) End() float64 {
	return n.Start + n.Duration
}

// key for the sounding-note state machine; a note is identified by its
// channel and pitch, never by track
type noteKey struct {
	channel, pitch uint8
}

// sortByStart stable-sorts notes by start time, preserving emission order
// for simultaneous notes.
func sortByStart(notes []TimedNote) {
	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].Start < notes[j].Start
	})
}
