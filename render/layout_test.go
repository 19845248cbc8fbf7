package render

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"

	"notefall/engine"
)

func TestIsBlackKey(t *testing.T) {
	assert.False(t, IsBlackKey(60)) // C4
	assert.True(t, IsBlackKey(61))  // C#4
	assert.False(t, IsBlackKey(64)) // E4
	assert.True(t, IsBlackKey(66))  // F#4
}

func TestKeyLayoutOneOctave(t *testing.T) {
	// C4..B4: 7 white keys across 700px
	l := NewKeyLayout(60, 71, 700)
	assert.Len(t, l.WhiteKeys(), 7)
	assert.Len(t, l.BlackKeys(), 5)

	c, ok := l.Pos(60)
	assert.True(t, ok)
	assert.Equal(t, 0.0, c.X)
	assert.Equal(t, 100.0, c.W)

	d, _ := l.Pos(62)
	assert.Equal(t, 100.0, d.X)

	// C# straddles the C/D boundary
	cs, ok := l.Pos(61)
	assert.True(t, ok)
	assert.True(t, cs.Black)
	assert.InDelta(t, 100.0-30.0, cs.X, 1e-9)
	assert.InDelta(t, 60.0, cs.W, 1e-9)

	_, ok = l.Pos(59)
	assert.False(t, ok)
	_, ok = l.Pos(72)
	assert.False(t, ok)
}

func TestKeyLayoutTrailingBlackKeyHidden(t *testing.T) {
	// range ends on C#: no white neighbor to its right, so it has no column
	l := NewKeyLayout(60, 61, 700)
	assert.Len(t, l.WhiteKeys(), 1)
	assert.Empty(t, l.BlackKeys())
	_, ok := l.Pos(61)
	assert.False(t, ok)
}

func testConfig() Config {
	return Config{
		Width: 800, Height: 600, KeyboardHeight: 100,
		MinPitch: 48, MaxPitch: 84, NoteSpeed: 250,
	}
}

func TestFallTime(t *testing.T) {
	cfg := testConfig()
	assert.InDelta(t, 2.0, cfg.FallTime(), 1e-9) // 500px at 250px/s
	assert.Equal(t, 500.0, cfg.StrikeY())
	assert.Equal(t, 0.0, Config{}.FallTime())
}

func TestNoteRectHitsStrikeLineOnTime(t *testing.T) {
	cfg := testConfig()
	l := NewKeyLayout(cfg.MinPitch, cfg.MaxPitch, float64(cfg.Width))
	n := engine.TimedNote{Pitch: 60, Start: 3.0, Duration: 1.0}

	// at the note's start time the bottom edge sits exactly on the strike line
	_, y, _, h, ok := cfg.NoteRect(l, n, 3.0)
	assert.True(t, ok)
	assert.InDelta(t, cfg.StrikeY(), y+h, 1e-9)
	assert.InDelta(t, 250.0, h, 1e-9)

	// one second earlier it is one fall-second higher
	_, yEarlier, _, _, _ := cfg.NoteRect(l, n, 2.0)
	assert.InDelta(t, y-250.0, yEarlier, 1e-9)

	_, _, _, _, ok = cfg.NoteRect(l, engine.TimedNote{Pitch: 20}, 0)
	assert.False(t, ok)
}

func TestVisiblePredicate(t *testing.T) {
	cfg := testConfig()
	l := NewKeyLayout(cfg.MinPitch, cfg.MaxPitch, float64(cfg.Width))
	n := engine.TimedNote{Pitch: 60, Start: 0, Duration: 0.5}

	assert.True(t, cfg.Visible(l, 0)(n))
	// long after the end, the top edge has fallen past the window bottom
	assert.False(t, cfg.Visible(l, 10)(n))
	// off-range pitches have no geometry
	assert.False(t, cfg.Visible(l, 0)(engine.TimedNote{Pitch: 10}))
}

func TestRendererFrame(t *testing.T) {
	r, err := New(testConfig())
	assert.NoError(t, err)
	img := r.Frame([]engine.TimedNote{
		{Pitch: 60, Start: 0.5, Duration: 1.0, Track: 0},
		{Pitch: 66, Start: 0.0, Duration: 0.25, Track: 1},
	}, 0.1)
	assert.Equal(t, image.Rect(0, 0, 800, 600), img.Bounds())
}
