// Command notefall-tui previews a MIDI file's falling notes in the
// terminal: one column per semitone, upcoming notes descending toward a
// keyboard row at the bottom.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"notefall/engine"
	"notefall/render"
)

const (
	tickInterval = time.Second / 30
	rollRows     = 16
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	whiteKeyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	blackKeyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))

	trackStyles = []lipgloss.Style{
		lipgloss.NewStyle().Foreground(lipgloss.Color("42")),  // green
		lipgloss.NewStyle().Foreground(lipgloss.Color("39")),  // blue
		lipgloss.NewStyle().Foreground(lipgloss.Color("214")), // orange
		lipgloss.NewStyle().Foreground(lipgloss.Color("167")), // red
		lipgloss.NewStyle().Foreground(lipgloss.Color("135")), // purple
		lipgloss.NewStyle().Foreground(lipgloss.Color("44")),  // teal
	}
)

func trackStyle(track int) lipgloss.Style {
	if track < 0 {
		track = -track
	}
	return trackStyles[track%len(trackStyles)]
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

type model struct {
	sched              *engine.Scheduler
	total              int
	lookahead          float64
	minPitch, maxPitch int
	last               time.Time
}

func (m *model) Init() tea.Cmd {
	m.last = time.Now()
	m.sched.Play()
	return tick()
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			if m.sched.State() == engine.StatePlaying {
				m.sched.Pause()
			} else {
				m.sched.Play()
			}
		case "s":
			m.sched.Stop()
		}
		return m, nil
	case tickMsg:
		now := time.Time(msg)
		dt := now.Sub(m.last).Seconds()
		m.last = now
		m.sched.Advance(dt)
		m.sched.SpawnDue(m.lookahead)
		m.sched.Expire(nil)
	}
	return m, tick()
}

func (m *model) View() string {
	var b strings.Builder
	now := m.sched.Now()
	active := m.sched.ActiveNotes()
	cols := m.maxPitch - m.minPitch + 1

	b.WriteString(headerStyle.Render(fmt.Sprintf("notefall  %s  %s  notes %d/%d",
		formatTime(now), m.sched.State(), len(active), m.total)))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("space: play/pause  s: stop  q: quit"))
	b.WriteString("\n\n")

	// roll: row 0 is lookahead seconds in the future, the bottom row is now
	for row := 0; row < rollRows; row++ {
		t := now + m.lookahead*float64(rollRows-row)/float64(rollRows)
		cells := make([]string, cols)
		for i := range cells {
			cells[i] = " "
		}
		for _, n := range active {
			p := int(n.Pitch)
			if p < m.minPitch || p > m.maxPitch {
				continue
			}
			if n.Start <= t && t <= n.End() {
				cells[p-m.minPitch] = trackStyle(n.Track).Render("█")
			}
		}
		b.WriteString(strings.Join(cells, ""))
		b.WriteString("\n")
	}

	// keyboard row: sounding keys take their track color
	sounding := make(map[int]int)
	for _, n := range active {
		if engine.IsSounding(n, now) {
			sounding[int(n.Pitch)] = n.Track
		}
	}
	for p := m.minPitch; p <= m.maxPitch; p++ {
		if tr, ok := sounding[p]; ok {
			b.WriteString(trackStyle(tr).Render("█"))
		} else if render.IsBlackKey(p) {
			b.WriteString(blackKeyStyle.Render("▀"))
		} else {
			b.WriteString(whiteKeyStyle.Render("▀"))
		}
	}
	b.WriteString("\n")
	return b.String()
}

func formatTime(secs float64) string {
	m := int(secs) / 60
	return fmt.Sprintf("%d:%05.2f", m, secs-float64(m*60))
}

func main() {
	lookahead := flag.Float64("lookahead", 2.0, "seconds of lead time shown above the keyboard")
	minPitch := flag.Int("min", 48, "lowest displayed MIDI pitch")
	maxPitch := flag.Int("max", 84, "highest displayed MIDI pitch")
	track := flag.Int("track", -1, "only preview this track index (-1 = all)")
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
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	m := &model{
		sched:     engine.NewScheduler(notes),
		total:     len(notes),
		lookahead: *lookahead,
		minPitch:  *minPitch,
		maxPitch:  *maxPitch,
	}
	if _, err := tea.NewProgram(m).Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
