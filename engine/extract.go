package engine

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"gitlab.com/gomidi/midi/midimessage/channel"
	"gitlab.com/gomidi/midi/midimessage/meta"
	"gitlab.com/gomidi/midi/smf"
	"gitlab.com/gomidi/midi/smf/smfreader"
)

// durations at or below this are treated as zero-length artifacts from
// malformed or same-tick on/off pairs and are dropped
const durationEpsilon = 1e-6

// ParseError wraps any failure to read or decode a MIDI file. Extraction
// that fails yields no timeline; whether that is fatal is the caller's call.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("parse midi: %v", e.Err)
	}
	return fmt.Sprintf("parse midi %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// TrackFilter selects which tracks contribute notes to the timeline.
// A nil filter selects every track. Tempo changes always apply globally,
// regardless of the filter; tempo is file-level state, not track state.
type TrackFilter func(track int) bool

type eventKind uint8

const (
	eventNoteOn eventKind = iota
	eventNoteOff
	eventTempo
)

// noteEvent is the raw intermediate form of a track message: a message
// tagged with its absolute tick within the file. Consumed immediately
// during extraction, never persisted.
type noteEvent struct {
	track        int
	tick         int64
	kind         eventKind
	channel      uint8
	pitch        uint8
	velocity     uint8
	usPerQuarter float64 // eventTempo only
}

// Extract parses the Standard MIDI File at path into a sorted timeline.
func Extract(path string, filter TrackFilter) ([]TimedNote, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	defer f.Close()
	notes, err := ExtractFrom(f, filter)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Path = path
		}
		return nil, err
	}
	return notes, nil
}

// ExtractFrom parses SMF data from r into a timeline of TimedNotes sorted
// by start time. Multi-track files are merged onto a single global tick
// timeline before tempo application, so tempo changes in any track affect
// all tracks from their tick onward.
func ExtractFrom(r io.Reader, filter TrackFilter) ([]TimedNote, error) {
	ticksPerQuarter, events, err := readEvents(r)
	if err != nil {
		return nil, err
	}
	return buildTimeline(ticksPerQuarter, events, filter), nil
}

// readEvents walks every track of the file, accumulating each track's
// independent delta-time stream into absolute ticks.
func readEvents(r io.Reader) (float64, []noteEvent, error) {
	rd := smfreader.New(r)
	if err := rd.ReadHeader(); err != nil {
		return 0, nil, &ParseError{Err: err}
	}
	header := rd.Header()
	ticks, ok := header.TimeFormat.(smf.MetricTicks)
	if !ok {
		return 0, nil, &ParseError{Err: fmt.Errorf("unsupported time format %v", header.TimeFormat)}
	}
	ticksPerQuarter := float64(ticks.Ticks4th())
	if ticksPerQuarter <= 0 {
		return 0, nil, &ParseError{Err: fmt.Errorf("invalid resolution %v", header.TimeFormat)}
	}

	var events []noteEvent
	trackTicks := make(map[int]int64) // per-track running tick counter
	for {
		msg, err := rd.Read()
		if err != nil {
			if errors.Is(err, smf.ErrFinished) || errors.Is(err, io.EOF) {
				break
			}
			return 0, nil, &ParseError{Err: err}
		}
		track := int(rd.Track())
		trackTicks[track] += int64(rd.Delta())
		tick := trackTicks[track]

		switch m := msg.(type) {
		case channel.NoteOn:
			events = append(events, noteEvent{
				track: track, tick: tick, kind: eventNoteOn,
				channel: m.Channel(), pitch: m.Key(), velocity: m.Velocity(),
			})
		case channel.NoteOff:
			events = append(events, noteEvent{
				track: track, tick: tick, kind: eventNoteOff,
				channel: m.Channel(), pitch: m.Key(),
			})
		case channel.NoteOffVelocity:
			events = append(events, noteEvent{
				track: track, tick: tick, kind: eventNoteOff,
				channel: m.Channel(), pitch: m.Key(),
			})
		case meta.Tempo:
			if bpm := m.FractionalBPM(); bpm > 0 {
				events = append(events, noteEvent{
					track: track, tick: tick, kind: eventTempo,
					usPerQuarter: 6e7 / bpm,
				})
			}
		}
	}
	return ticksPerQuarter, events, nil
}

// buildTimeline merges the per-track event streams onto one tick timeline
// and runs the note lifecycle state machine over it.
func buildTimeline(ticksPerQuarter float64, events []noteEvent, filter TrackFilter) []TimedNote {
	// global tick order; stable sort keeps file order for same-tick events
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].tick < events[j].tick
	})

	tempo := newTempoMap()
	for _, ev := range events {
		if ev.kind == eventTempo {
			tempo.setTempo(ev.tick, ev.usPerQuarter)
		}
	}

	type openNote struct {
		start    float64
		velocity uint8
		track    int
	}
	sounding := make(map[noteKey]openNote)
	var notes []TimedNote

	closeNote := func(k noteKey, o openNote, end float64) {
		if d := end - o.start; d > durationEpsilon {
			notes = append(notes, TimedNote{
				Pitch:    k.pitch,
				Start:    o.start,
				Duration: d,
				Velocity: o.velocity,
				Track:    o.track,
				Channel:  k.channel,
			})
		}
	}

	for _, ev := range events {
		if ev.kind == eventTempo {
			continue
		}
		if filter != nil && !filter(ev.track) {
			continue
		}
		k := noteKey{ev.channel, ev.pitch}
		now := tempo.secondsAt(ev.tick, ticksPerQuarter)
		switch {
		case ev.kind == eventNoteOn && ev.velocity > 0:
			// a note-on while already sounding is a retrigger: close the
			// old interval here and open a fresh one
			if o, ok := sounding[k]; ok {
				closeNote(k, o, now)
			}
			sounding[k] = openNote{start: now, velocity: ev.velocity, track: ev.track}
		default: // note-off, or note-on with velocity 0
			if o, ok := sounding[k]; ok {
				closeNote(k, o, now)
				delete(sounding, k)
			}
			// an off with no matching on is silently dropped
		}
	}
	// anything still sounding at end of file is unterminated and discarded

	sortByStart(notes)
	return notes
}
