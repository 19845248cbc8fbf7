// Package render lays out a piano keyboard and draws piano-roll frames
// offscreen. The same geometry feeds the SDL window, the video exporter and
// the expiry visibility test, so a note leaves the screen at the same
// instant everywhere.
package render

import "notefall/engine"

// pitch classes of the white keys within an octave
var whitePitchClasses = [12]bool{
	0: true, 2: true, 4: true, 5: true, 7: true, 9: true, 11: true,
}

// IsBlackKey reports whether a MIDI pitch is a black key.
func IsBlackKey(pitch int) bool {
	return !whitePitchClasses[((pitch%12)+12)%12]
}

// Key is the horizontal placement of one key column.
type Key struct {
	Pitch int
	X, W  float64
	Black bool
}

// KeyLayout maps MIDI pitches in a display range to key columns across a
// given width. Black keys straddle the boundary to their next white
// neighbor, at 60% of a white key's width.
type KeyLayout struct {
	MinPitch, MaxPitch int
	Width              float64
	keys               map[int]Key
	whites             []Key
	blacks             []Key
}

// NewKeyLayout computes the layout for pitches in [minPitch, maxPitch].
func NewKeyLayout(minPitch, maxPitch int, width float64) *KeyLayout {
	l := &KeyLayout{
		MinPitch: minPitch,
		MaxPitch: maxPitch,
		Width:    width,
		keys:     make(map[int]Key),
	}

	whiteCount := 0
	for p := minPitch; p <= maxPitch; p++ {
		if !IsBlackKey(p) {
			whiteCount++
		}
	}
	if whiteCount == 0 {
		return l
	}
	whiteW := width / float64(whiteCount)
	blackW := whiteW * 0.6

	x := 0.0
	whiteX := make(map[int]float64)
	for p := minPitch; p <= maxPitch; p++ {
		if IsBlackKey(p) {
			continue
		}
		k := Key{Pitch: p, X: x, W: whiteW}
		l.keys[p] = k
		l.whites = append(l.whites, k)
		whiteX[p] = x
		x += whiteW
	}
	for p := minPitch; p <= maxPitch; p++ {
		if !IsBlackKey(p) {
			continue
		}
		// place relative to the next white key's left edge; a black key
		// with no white neighbor inside the range is not displayed
		for q := p + 1; q <= maxPitch; q++ {
			if wx, ok := whiteX[q]; ok {
				k := Key{Pitch: p, X: wx - blackW/2, W: blackW, Black: true}
				l.keys[p] = k
				l.blacks = append(l.blacks, k)
				break
			}
			if !IsBlackKey(q) {
				break
			}
		}
	}
	return l
}

// Pos returns the column for a pitch, or ok=false if the pitch is outside
// the displayed range.
func (l *KeyLayout) Pos(pitch int) (Key, bool) {
	k, ok := l.keys[pitch]
	return k, ok
}

// WhiteKeys returns the white key columns left to right.
func (l *KeyLayout) WhiteKeys() []Key {
	return l.whites
}

// BlackKeys returns the black key columns left to right.
func (l *KeyLayout) BlackKeys() []Key {
	return l.blacks
}

// Config is the shared piano-roll geometry.
type Config struct {
	Width, Height  int
	KeyboardHeight int
	MinPitch       int
	MaxPitch       int
	NoteSpeed      float64 // pixels per second of fall
}

// FallTime is the scheduler lookahead implied by the geometry: the seconds
// a note needs to travel from the top edge to the strike line.
func (c Config) FallTime() float64 {
	if c.NoteSpeed <= 0 {
		return 0
	}
	return float64(c.Height-c.KeyboardHeight) / c.NoteSpeed
}

// StrikeY is the y of the strike line (the keyboard's top edge); a falling
// note's bottom edge crosses it exactly at the note's start time.
func (c Config) StrikeY() float64 {
	return float64(c.Height - c.KeyboardHeight)
}

// NoteRect returns the on-screen rectangle of a note at playback time now,
// in the given layout. ok is false for pitches outside the display range.
func (c Config) NoteRect(l *KeyLayout, n engine.TimedNote, now float64) (x, y, w, h float64, ok bool) {
	k, ok := l.Pos(int(n.Pitch))
	if !ok {
		return 0, 0, 0, 0, false
	}
	h = n.Duration * c.NoteSpeed
	if h < 1 {
		h = 1
	}
	y = c.StrikeY() - (n.Start-now)*c.NoteSpeed - h
	return k.X, y, k.W, h, true
}

// Visible returns the geometric half of note expiry for playback time now:
// a note stays relevant until its top edge has fallen past the bottom of
// the window. Pitches outside the display range have no geometry and report
// false. Build a fresh predicate each frame and hand it to Scheduler.Expire.
func (c Config) Visible(l *KeyLayout, now float64) func(engine.TimedNote) bool {
	return func(n engine.TimedNote) bool {
		_, y, _, _, ok := c.NoteRect(l, n, now)
		if !ok {
			return false
		}
		return y < float64(c.Height)
	}
}
