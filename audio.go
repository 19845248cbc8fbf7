package main

import (
	"time"

	"gitlab.com/gomidi/midi/writer"

	"notefall/engine"
)

// type used to signal trigger behavior
type triggerSignal uint8

const (
	sigPlay triggerSignal = iota
	sigPause
	sigStop
	sigQuit
)

const audioTick = 2 * time.Millisecond

// type that sounds notes on a real MIDI output as playback reaches them.
// It runs on its own goroutine over its own scheduler and its own clock;
// the only thing it shares with the visual scheduler is the read-only
// timeline and the wall-clock deltas both are driven by.
type audioTrigger struct {
	wr     writer.ChannelWriter
	sched  *engine.Scheduler
	signal chan triggerSignal
	done   chan struct{}
	held   []engine.TimedNote // notes currently sounding on the device
}

// create a new trigger over the shared timeline
func newAudioTrigger(wr writer.ChannelWriter, timeline []engine.TimedNote) *audioTrigger {
	return &audioTrigger{
		wr:     wr,
		sched:  engine.NewScheduler(timeline),
		signal: make(chan triggerSignal, 4),
		done:   make(chan struct{}),
	}
}

// start signal-handling loop; audio spawns with zero lookahead (a note
// sounds the moment the clock reaches its start) and expires on time alone
func (a *audioTrigger) run() {
	ticker := time.NewTicker(audioTick)
	defer ticker.Stop()
	last := time.Now()
	for {
		select {
		case sig := <-a.signal:
			switch sig {
			case sigPlay:
				last = time.Now()
				a.sched.Play()
			case sigPause:
				a.sched.Pause()
				a.silence()
			case sigStop:
				a.sched.Stop()
				a.silence()
			case sigQuit:
				a.silence()
				close(a.done)
				return
			}
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			if a.sched.State() != engine.StatePlaying {
				continue
			}
			a.sched.Advance(dt)
			for _, n := range a.sched.SpawnDue(0) {
				a.wr.SetChannel(n.Channel)
				writer.NoteOn(a.wr, n.Pitch, n.Velocity)
				a.held = append(a.held, n)
			}
			kept := a.held[:0]
			for _, n := range a.held {
				if engine.IsTimeExpired(n, a.sched.Now()) {
					a.wr.SetChannel(n.Channel)
					writer.NoteOff(a.wr, n.Pitch)
					continue
				}
				kept = append(kept, n)
			}
			a.held = kept
			a.sched.Expire(nil)
		}
	}
}

// release everything currently sounding on the device
func (a *audioTrigger) silence() {
	for _, n := range a.held {
		a.wr.SetChannel(n.Channel)
		writer.NoteOff(a.wr, n.Pitch)
	}
	a.held = a.held[:0]
}

// send a signal and, for quit, wait for the loop to wind down
func (a *audioTrigger) send(sig triggerSignal) {
	if a == nil {
		return
	}
	a.signal <- sig
	if sig == sigQuit {
		<-a.done
	}
}
