package render

import (
	"fmt"
	"image"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"notefall/engine"
)

// RGB is a normalized color triple.
type RGB struct {
	R, G, B float64
}

func (c RGB) darker() RGB {
	const d = 0.7
	return RGB{c.R * d, c.G * d, c.B * d}
}

// per-track note palette, cycled when a file has more tracks
var trackPalette = []RGB{
	{0.21, 0.79, 0.35}, // green
	{0.25, 0.56, 0.94}, // blue
	{0.94, 0.63, 0.19}, // orange
	{0.85, 0.29, 0.31}, // red
	{0.63, 0.41, 0.89}, // purple
	{0.23, 0.80, 0.79}, // teal
}

// TrackColor returns the note color for a track index.
func TrackColor(track int) RGB {
	if track < 0 {
		track = -track
	}
	return trackPalette[track%len(trackPalette)]
}

var (
	colorBg         = RGB{0.08, 0.08, 0.10}
	colorWhiteKey   = RGB{0.96, 0.96, 0.96}
	colorBlackKey   = RGB{0.13, 0.13, 0.13}
	colorKeyOutline = RGB{0.35, 0.35, 0.35}
	colorStrike     = RGB{0.45, 0.45, 0.50}
	colorText       = RGB{0.85, 0.85, 0.85}
)

func setRGB(dc *gg.Context, c RGB) {
	dc.SetRGB(c.R, c.G, c.B)
}

// Renderer draws complete piano-roll frames into offscreen images.
type Renderer struct {
	cfg    Config
	layout *KeyLayout
	face   font.Face
}

// New creates a renderer for the given geometry.
func New(cfg Config) (*Renderer, error) {
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse frame font: %w", err)
	}
	return &Renderer{
		cfg:    cfg,
		layout: NewKeyLayout(cfg.MinPitch, cfg.MaxPitch, float64(cfg.Width)),
		face:   truetype.NewFace(f, &truetype.Options{Size: 14}),
	}, nil
}

// Layout exposes the renderer's key layout for expiry predicates.
func (r *Renderer) Layout() *KeyLayout {
	return r.layout
}

// Frame draws the falling notes and keyboard for playback time now.
// active is the scheduler's active set; notes outside the display pitch
// range are skipped.
func (r *Renderer) Frame(active []engine.TimedNote, now float64) image.Image {
	dc := gg.NewContext(r.cfg.Width, r.cfg.Height)
	setRGB(dc, colorBg)
	dc.Clear()

	for _, n := range active {
		x, y, w, h, ok := r.cfg.NoteRect(r.layout, n, now)
		if !ok {
			continue
		}
		dc.DrawRectangle(x+0.5, y, w-1, h)
		setRGB(dc, TrackColor(n.Track))
		dc.Fill()
	}

	r.drawKeyboard(dc, active, now)

	setRGB(dc, colorText)
	dc.SetFontFace(r.face)
	dc.DrawString(fmt.Sprintf("%d:%05.2f", int(now)/60, now-float64(int(now)/60*60)), 8, 20)
	return dc.Image()
}

// drawKeyboard paints white keys first, then black keys on top; keys whose
// pitch is sounding at now take their note's track color.
func (r *Renderer) drawKeyboard(dc *gg.Context, active []engine.TimedNote, now float64) {
	pressed := make(map[int]int) // pitch -> track
	for _, n := range active {
		if engine.IsSounding(n, now) {
			pressed[int(n.Pitch)] = n.Track
		}
	}

	top := r.cfg.StrikeY()
	kh := float64(r.cfg.KeyboardHeight)
	setRGB(dc, colorStrike)
	dc.DrawLine(0, top, float64(r.cfg.Width), top)
	dc.SetLineWidth(2)
	dc.Stroke()

	for _, k := range r.layout.WhiteKeys() {
		dc.DrawRectangle(k.X, top, k.W, kh)
		if tr, ok := pressed[k.Pitch]; ok {
			setRGB(dc, TrackColor(tr))
		} else {
			setRGB(dc, colorWhiteKey)
		}
		dc.FillPreserve()
		setRGB(dc, colorKeyOutline)
		dc.SetLineWidth(1)
		dc.Stroke()
	}
	for _, k := range r.layout.BlackKeys() {
		dc.DrawRectangle(k.X, top, k.W, kh*0.6)
		if tr, ok := pressed[k.Pitch]; ok {
			setRGB(dc, TrackColor(tr).darker())
		} else {
			setRGB(dc, colorBlackKey)
		}
		dc.FillPreserve()
		setRGB(dc, colorKeyOutline)
		dc.SetLineWidth(1)
		dc.Stroke()
	}
}
