// Command notefall-video renders a MIDI file's piano roll to an H.264 video
// by stepping the playback scheduler at a fixed frame interval, writing PNG
// frames, and assembling them with ffmpeg (optionally muxing an audio file).
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/fogleman/gg"

	"notefall/engine"
	"notefall/render"
)

// hard cap on rendered frames, in case of absurd input
const maxFrames = 60 * 60 * 60 * 2

var logger = slog.Default()

func main() {
	out := flag.String("o", "notefall.mp4", "output video path")
	width := flag.Int("w", 1280, "video width")
	height := flag.Int("h", 720, "video height")
	fps := flag.Int("fps", 60, "video frame rate")
	speed := flag.Float64("speed", 300, "note fall speed in pixels per second")
	keyboard := flag.Int("kb", 120, "keyboard height in pixels")
	minPitch := flag.Int("min", 48, "lowest displayed MIDI pitch")
	maxPitch := flag.Int("max", 84, "highest displayed MIDI pitch")
	track := flag.Int("track", -1, "only render this track index (-1 = all)")
	audio := flag.String("audio", "", "optional audio file to mux into the video")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <file.mid>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	var filter engine.TrackFilter
	if *track >= 0 {
		want := *track
		filter = func(t int) bool { return t == want }
	}
	notes, err := engine.Extract(flag.Arg(0), filter)
	if err != nil {
		logger.Error("extract failed", "err", err)
		os.Exit(1)
	}
	if len(notes) == 0 {
		logger.Error("no notes to render", "path", flag.Arg(0))
		os.Exit(1)
	}

	cfg := render.Config{
		Width: *width, Height: *height, KeyboardHeight: *keyboard,
		MinPitch: *minPitch, MaxPitch: *maxPitch, NoteSpeed: *speed,
	}
	r, err := render.New(cfg)
	if err != nil {
		logger.Error("renderer init failed", "err", err)
		os.Exit(1)
	}

	framesDir, err := os.MkdirTemp("", "notefall-frames-")
	if err != nil {
		logger.Error("temp dir failed", "err", err)
		os.Exit(1)
	}
	defer os.RemoveAll(framesDir)

	count, err := renderFrames(framesDir, r, cfg, notes, *fps)
	if err != nil {
		logger.Error("frame rendering failed", "err", err)
		os.Exit(1)
	}
	logger.Info("frames rendered", "count", count, "dir", framesDir)

	if err := assembleVideo(framesDir, *audio, *out, *fps, float64(count)/float64(*fps)); err != nil {
		logger.Error("ffmpeg failed", "err", err)
		os.Exit(1)
	}
	logger.Info("video written", "path", *out)
}

// renderFrames steps a scheduler at the frame interval and saves one PNG
// per frame until the piece ends (the scheduler stops itself once the last
// note has both finished sounding and fallen off screen).
func renderFrames(dir string, r *render.Renderer, cfg render.Config, notes []engine.TimedNote, fps int) (int, error) {
	sched := engine.NewScheduler(notes)
	sched.Play()
	dt := 1.0 / float64(fps)
	lookahead := cfg.FallTime()

	count := 0
	for sched.State() == engine.StatePlaying && count < maxFrames {
		sched.SpawnDue(lookahead)
		sched.Expire(cfg.Visible(r.Layout(), sched.Now()))
		img := r.Frame(sched.ActiveNotes(), sched.Now())
		path := filepath.Join(dir, fmt.Sprintf("fr%05d.png", count))
		if err := gg.SavePNG(path, img); err != nil {
			return count, err
		}
		count++
		sched.Advance(dt)
	}
	return count, nil
}

// assembleVideo invokes ffmpeg over the frame directory
func assembleVideo(framesDir, audioPath, outPath string, fps int, duration float64) error {
	args := []string{
		"-framerate", fmt.Sprintf("%d", fps),
		"-i", filepath.Join(framesDir, "fr%05d.png"),
	}
	if audioPath != "" {
		args = append(args,
			"-i", audioPath,
			"-map", "0:v", "-map", "1:a",
			"-t", fmt.Sprintf("%f", duration),
		)
	}
	args = append(args,
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-preset", "veryfast",
		"-y",
		outPath,
	)
	cmd := exec.Command("ffmpeg", args...)
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg %s: %w", strings.Join(args, " "), err)
	}
	return nil
}
