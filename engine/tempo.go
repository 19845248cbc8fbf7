package engine

// default tempo per the SMF spec: 500000 µs per quarter note, i.e. 120 BPM
const defaultUsPerQuarter = 500000.0

type tempoChange struct {
	tick         int64
	usPerQuarter float64
}

// tempoMap is the ordered tick -> microseconds-per-quarter mapping built
// during a single extraction. It applies globally across tracks and is
// discarded once tick times have been baked into seconds.
type tempoMap struct {
	changes []tempoChange
}

func newTempoMap() *tempoMap {
	return &tempoMap{changes: []tempoChange{{0, defaultUsPerQuarter}}}
}

// setTempo records a tempo change. Ticks must arrive non-decreasing; a
// change at an already-known tick replaces the earlier value.
func (tm *tempoMap) setTempo(tick int64, usPerQuarter float64) {
	if usPerQuarter <= 0 {
		return
	}
	if last := &tm.changes[len(tm.changes)-1]; last.tick == tick {
		last.usPerQuarter = usPerQuarter
		return
	}
	tm.changes = append(tm.changes, tempoChange{tick, usPerQuarter})
}

// secondsAt converts an absolute tick position to absolute seconds by
// integrating over the tempo segments up to that tick.
func (tm *tempoMap) secondsAt(tick int64, ticksPerQuarter float64) float64 {
	var secs float64
	for i, tc := range tm.changes {
		segEnd := tick
		if i+1 < len(tm.changes) && tm.changes[i+1].tick < tick {
			segEnd = tm.changes[i+1].tick
		}
		if segEnd <= tc.tick {
			break
		}
		spt := tc.usPerQuarter / 1e6 / ticksPerQuarter
		secs += float64(segEnd-tc.tick) * spt
	}
	return secs
}
