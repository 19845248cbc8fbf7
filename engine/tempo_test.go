package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTempoMapDefault(t *testing.T) {
	tm := newTempoMap()
	assert.InDelta(t, 0.5, tm.secondsAt(480, 480), 1e-9) // one quarter at 120 BPM
	assert.InDelta(t, 0.0, tm.secondsAt(0, 480), 1e-9)
}

func TestTempoMapSegments(t *testing.T) {
	tm := newTempoMap()
	tm.setTempo(480, 1e6)    // 60 BPM after one quarter
	tm.setTempo(960, 250000) // 240 BPM after two
	assert.InDelta(t, 0.25, tm.secondsAt(240, 480), 1e-9)
	assert.InDelta(t, 0.5, tm.secondsAt(480, 480), 1e-9)
	assert.InDelta(t, 1.5, tm.secondsAt(960, 480), 1e-9)
	assert.InDelta(t, 1.75, tm.secondsAt(1440, 480), 1e-9)
	assert.InDelta(t, 2.0, tm.secondsAt(1920, 480), 1e-9)
}

func TestTempoMapReplaceSameTick(t *testing.T) {
	tm := newTempoMap()
	tm.setTempo(0, 1e6)
	assert.InDelta(t, 1.0, tm.secondsAt(480, 480), 1e-9)
	tm.setTempo(0, 250000)
	assert.InDelta(t, 0.25, tm.secondsAt(480, 480), 1e-9)
}

func TestTempoMapIgnoresInvalid(t *testing.T) {
	tm := newTempoMap()
	tm.setTempo(480, 0)
	tm.setTempo(480, -1)
	assert.InDelta(t, 1.0, tm.secondsAt(960, 480), 1e-9)
}
