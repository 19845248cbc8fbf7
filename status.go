package main

import (
	"time"

	"github.com/veandco/go-sdl2/sdl"
)

// type that draws a series of string function results in a line along the
// top edge of the window, plus a transient message on the right
type statusBar struct {
	rect        *sdl.Rect
	funcs       []func() string
	msg         string
	msgTime     time.Time
	msgChan     chan string
	msgDuration time.Duration
}

// initialize a new status bar
func newStatusBar(msgSeconds int, funcs ...func() string) *statusBar {
	return &statusBar{
		rect:        &sdl.Rect{},
		funcs:       funcs,
		msgChan:     make(chan string, 1),
		msgDuration: time.Second * time.Duration(msgSeconds),
	}
}

// draw the status bar
func (sb *statusBar) draw(pr *printer, r *sdl.Renderer, bg []uint8) {
	if pr == nil {
		return
	}
	x := pr.rect.W / 2
	y := x / 2
	r.SetDrawColorArray(bg...)
	*sb.rect = sdl.Rect{X: 0, Y: 0, W: r.GetViewport().W, H: pr.rect.H + y*2}
	r.FillRect(sb.rect)
	for _, f := range sb.funcs {
		if s := f(); s != "" {
			pr.draw(r, s, x, y)
			w, _ := pr.size(s)
			x += w + pr.rect.W*2
		}
	}

	select {
	case sb.msg = <-sb.msgChan:
		sb.msgTime = time.Now()
	default:
	}
	if time.Since(sb.msgTime) < sb.msgDuration {
		pr.drawRight(r, sb.msg, r.GetViewport().W-pr.rect.W/2, y)
	}
}

// update the status bar message and request redraws as necessary
func (sb *statusBar) showMessage(s string, redraw chan bool) {
	go func() {
		sb.msgChan <- s
		if redraw != nil {
			redraw <- true
		}
		time.Sleep(sb.msgDuration)
		if redraw != nil {
			redraw <- true
		}
	}()
}
