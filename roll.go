package main

import (
	"github.com/veandco/go-sdl2/sdl"

	"notefall/engine"
	"notefall/render"
)

// type that draws the falling-note roll and the keyboard into an SDL
// renderer; all geometry comes from the shared render.Config so that the
// expiry predicate and the drawing agree about what is on screen
type rollView struct {
	cfg    render.Config
	layout *render.KeyLayout

	colorBg      []uint8
	colorStrike  []uint8
	colorWhite   []uint8
	colorBlack   []uint8
	colorOutline []uint8
}

// create a roll view from settings
func newRollView(s *settings) *rollView {
	cfg := render.Config{
		Width:          s.WindowWidth,
		Height:         s.WindowHeight,
		KeyboardHeight: s.KeyboardHeight,
		MinPitch:       s.MinPitch,
		MaxPitch:       s.MaxPitch,
		NoteSpeed:      float64(s.NoteSpeed),
	}
	return &rollView{
		cfg:          cfg,
		layout:       render.NewKeyLayout(cfg.MinPitch, cfg.MaxPitch, float64(cfg.Width)),
		colorBg:      colorArray(s.ColorBg),
		colorStrike:  colorArray(s.ColorStrike),
		colorWhite:   colorArray(s.ColorWhiteKey),
		colorBlack:   colorArray(s.ColorBlackKey),
		colorOutline: colorArray(s.ColorKeyOutline),
	}
}

// fallTime is the scheduler lookahead implied by the window geometry
func (v *rollView) fallTime() float64 {
	return v.cfg.FallTime()
}

// visible returns the geometric expiry predicate for playback time now
func (v *rollView) visible(now float64) func(engine.TimedNote) bool {
	return v.cfg.Visible(v.layout, now)
}

// draw the full frame: background, falling notes, strike line, keyboard
func (v *rollView) draw(r *sdl.Renderer, active []engine.TimedNote, now float64) {
	r.SetDrawColorArray(v.colorBg...)
	r.Clear()

	for _, n := range active {
		x, y, w, h, ok := v.cfg.NoteRect(v.layout, n, now)
		if !ok {
			continue
		}
		setTrackColor(r, n.Track, false)
		r.FillRect(&sdl.Rect{X: int32(x) + 1, Y: int32(y), W: int32(w) - 1, H: int32(h)})
	}

	v.drawKeyboard(r, active, now)
}

// draw the strike line and keys; keys take the color of the track sounding
// them
func (v *rollView) drawKeyboard(r *sdl.Renderer, active []engine.TimedNote, now float64) {
	pressed := make(map[int]int)
	for _, n := range active {
		if engine.IsSounding(n, now) {
			pressed[int(n.Pitch)] = n.Track
		}
	}

	top := int32(v.cfg.StrikeY())
	kh := int32(v.cfg.KeyboardHeight)
	r.SetDrawColorArray(v.colorStrike...)
	r.FillRect(&sdl.Rect{X: 0, Y: top - 2, W: int32(v.cfg.Width), H: 2})

	for _, k := range v.layout.WhiteKeys() {
		rect := &sdl.Rect{X: int32(k.X), Y: top, W: int32(k.W), H: kh}
		if tr, ok := pressed[k.Pitch]; ok {
			setTrackColor(r, tr, false)
		} else {
			r.SetDrawColorArray(v.colorWhite...)
		}
		r.FillRect(rect)
		r.SetDrawColorArray(v.colorOutline...)
		r.DrawRect(rect)
	}
	for _, k := range v.layout.BlackKeys() {
		rect := &sdl.Rect{X: int32(k.X), Y: top, W: int32(k.W), H: kh * 3 / 5}
		if tr, ok := pressed[k.Pitch]; ok {
			setTrackColor(r, tr, true)
		} else {
			r.SetDrawColorArray(v.colorBlack...)
		}
		r.FillRect(rect)
		r.SetDrawColorArray(v.colorOutline...)
		r.DrawRect(rect)
	}
}

// set the renderer draw color to a track's palette color
func setTrackColor(r *sdl.Renderer, track int, darker bool) {
	c := render.TrackColor(track)
	if darker {
		c = render.RGB{R: c.R * 0.7, G: c.G * 0.7, B: c.B * 0.7}
	}
	r.SetDrawColor(uint8(c.R*255), uint8(c.G*255), uint8(c.B*255), 255)
}

// unpack an RGBA int into the byte array form SDL wants, MSB to LSB
func colorArray(v uint32) []uint8 {
	a := make([]uint8, 4)
	for i := range a {
		a[i] = uint8(v >> ((len(a) - i - 1) * 8))
	}
	return a
}
