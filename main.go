package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"github.com/veandco/go-sdl2/ttf"
	"gitlab.com/gomidi/midi/writer"
	driver "gitlab.com/gomidi/rtmididrv"

	"notefall/engine"
)

const (
	appName    = "Notefall"
	defaultFps = 60
)

// logger is the package-wide structured logger. Safe to use before
// initLogger is called; defaults to slog.Default().
var logger = slog.Default()

// initLogger configures the shared slog logger and calls slog.SetDefault so
// the stdlib log package also routes through the same handler.
func initLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	logger = slog.New(h)
	slog.SetDefault(logger)
}

func must(err error) {
	if err != nil {
		panic(err.Error())
	}
}

func main() {
	debug := flag.Bool("debug", false, "enable debug logging")
	track := flag.Int("track", -1, "only visualize this track index (-1 = all)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <file.mid>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	initLogger(*debug)

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	path := flag.Arg(0)

	settings := loadSettings(func(s string) { logger.Warn("settings", "msg", s) })

	var filter engine.TrackFilter
	if *track >= 0 {
		want := *track
		filter = func(t int) bool { return t == want }
	}
	notes, err := engine.Extract(path, filter)
	if err != nil {
		logger.Error("extract failed", "path", path, "err", err)
		os.Exit(1)
	}
	logger.Info("extracted timeline", "path", path, "notes", len(notes))
	if len(notes) == 0 {
		logger.Warn("no notes in file; visualization will be empty")
	}

	// optional real-device output
	var trig *audioTrigger
	if n := settings.MidiOutPortNumber; n >= 0 {
		drv, err := driver.New()
		must(err)
		defer drv.Close()
		outs, err := drv.Outs()
		must(err)
		if n < len(outs) {
			out := outs[n]
			must(out.Open())
			defer out.Close()
			wr := writer.New(out)
			sendGMSystemOn(wr)
			trig = newAudioTrigger(wr, notes)
			go trig.run()
			defer trig.send(sigQuit)
			logger.Info("midi output open", "port", out.String())
		} else {
			logger.Warn("midi output port out of range", "port", n, "available", len(outs))
		}
	}

	err = sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS)
	must(err)
	defer sdl.Quit()
	window, err := sdl.CreateWindow(appName, sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		int32(settings.WindowWidth), int32(settings.WindowHeight),
		sdl.WINDOW_SHOWN|sdl.WINDOW_ALLOW_HIGHDPI)
	must(err)
	defer window.Destroy()
	renderer, err := sdl.CreateRenderer(window, -1,
		sdl.RENDERER_ACCELERATED|sdl.RENDERER_PRESENTVSYNC)
	must(err)
	defer renderer.Destroy()

	// text is optional: without a usable font the roll still runs, just
	// without the status bar
	var pr *printer
	if err := ttf.Init(); err == nil {
		defer ttf.Quit()
		if font, err := ttf.OpenFont(settings.Font, settings.FontSize); err == nil {
			defer font.Close()
			a := colorArray(settings.ColorFg)
			fg := sdl.Color{R: a[0], G: a[1], B: a[2], A: a[3]}
			if pr, err = newPrinter(font, fg); err == nil {
				defer pr.destroy()
			}
		} else {
			logger.Warn("font unavailable, status bar disabled", "path", settings.Font, "err", err)
		}
	}

	roll := newRollView(settings)
	sched := engine.NewScheduler(notes)
	logger.Debug("fall time", "seconds", roll.fallTime())

	sb := newStatusBar(settings.MessageDuration,
		func() string { return formatTime(sched.Now()) },
		func() string { return sched.State().String() },
		func() string { return fmt.Sprintf("notes %d/%d", len(sched.ActiveNotes()), len(notes)) },
	)
	sb.showMessage("space: play/pause  s: stop  q: quit", nil)

	fps := settings.Fps
	if fps <= 0 {
		fps = displayRefreshRate()
	}

	running := true
	last := time.Now()
	for running {
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			switch event := event.(type) {
			case *sdl.KeyboardEvent:
				if event.Type != sdl.KEYDOWN || event.Repeat != 0 {
					break
				}
				switch event.Keysym.Sym {
				case sdl.K_SPACE:
					if sched.State() == engine.StatePlaying {
						sched.Pause()
						trig.send(sigPause)
					} else {
						sched.Play()
						trig.send(sigPlay)
					}
				case sdl.K_s:
					sched.Stop()
					trig.send(sigStop)
				case sdl.K_q, sdl.K_ESCAPE:
					running = false
				}
			case *sdl.QuitEvent:
				running = false
			}
		}

		now := time.Now()
		dt := now.Sub(last).Seconds()
		last = now

		wasPlaying := sched.State() == engine.StatePlaying
		sched.Advance(dt)
		sched.SpawnDue(roll.fallTime())
		sched.Expire(roll.visible(sched.Now()))
		if wasPlaying && sched.State() == engine.StateStopped {
			sb.showMessage("end of piece", nil)
			trig.send(sigStop)
		}

		roll.draw(renderer, sched.ActiveNotes(), sched.Now())
		sb.draw(pr, renderer, roll.colorBg)
		renderer.Present()
		sdl.Delay(uint32(1000 / fps))
	}
}

// format seconds as m:ss.cc
func formatTime(secs float64) string {
	m := int(secs) / 60
	return fmt.Sprintf("%d:%05.2f", m, secs-float64(m*60))
}

// return the refresh rate of the display, according to SDL, or the default
// FPS if it's not available
func displayRefreshRate() int {
	if dm, err := sdl.GetCurrentDisplayMode(0); err == nil && dm.RefreshRate > 0 {
		return int(dm.RefreshRate)
	}
	return defaultFps
}

// send the "GM system on" sysex message
func sendGMSystemOn(wr *writer.Writer) {
	writer.SysEx(wr, []byte{0x7e, 0x7f, 0x09, 0x01})
}
