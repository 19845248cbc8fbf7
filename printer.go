package main

import (
	"github.com/veandco/go-sdl2/sdl"
	"github.com/veandco/go-sdl2/ttf"
)

// type that renders strings piecewise by caching glyph textures for a
// fixed-width font
type printer struct {
	font     *ttf.Font
	fg       sdl.Color
	textures map[rune]*sdl.Texture
	rect     *sdl.Rect // size of an individual glyph
}

// create a new initialized printer from a fixed-width font
func newPrinter(f *ttf.Font, fg sdl.Color) (*printer, error) {
	w, h, err := f.SizeUTF8("A")
	if err != nil {
		return nil, err
	}
	return &printer{
		font:     f,
		fg:       fg,
		textures: make(map[rune]*sdl.Texture),
		rect:     &sdl.Rect{W: int32(w), H: int32(h)},
	}, nil
}

// free the printer's resources
func (p *printer) destroy() {
	for _, t := range p.textures {
		t.Destroy()
	}
}

// draw a string, rendering and caching new glyphs as needed
func (p *printer) draw(r *sdl.Renderer, s string, x, y int32) {
	dst := &sdl.Rect{X: x, Y: y, W: p.rect.W, H: p.rect.H}
	for _, c := range s {
		if _, ok := p.textures[c]; !ok {
			if surf, err := p.font.RenderGlyphBlended(c, p.fg); err == nil {
				if t, err := r.CreateTextureFromSurface(surf); err == nil {
					p.textures[c] = t
				}
				surf.Free()
			}
		}
		if t, ok := p.textures[c]; ok {
			r.Copy(t, p.rect, dst)
		}
		dst.X += p.rect.W
	}
}

// draw a string with its right edge at x
func (p *printer) drawRight(r *sdl.Renderer, s string, x, y int32) {
	p.draw(r, s, x-p.rect.W*int32(len(s)), y)
}

// returns the size of a string if it were rendered
func (p *printer) size(s string) (int32, int32) {
	return int32(len(s)) * p.rect.W, p.rect.H
}
