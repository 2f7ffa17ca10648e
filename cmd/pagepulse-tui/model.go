package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pagepulse/pagepulse/pkg/livestate"
	"github.com/pagepulse/pagepulse/pkg/poller"
)

// snapshotMsg carries a freshly collected snapshot into the UI loop.
type snapshotMsg *livestate.Snapshot

// model renders the latest live-state snapshot for one observed page.
type model struct {
	spinner  spinner.Model
	engine   *poller.Engine
	url      string
	snapshot *livestate.Snapshot
	received int
	width    int
	height   int
}

func newModel(engine *poller.Engine, url string) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = waitingStyle
	return model{
		spinner: s,
		engine:  engine,
		url:     url,
	}
}

func (m model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case snapshotMsg:
		m.snapshot = msg
		m.received++

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("PagePulse"))
	b.WriteString("  ")
	b.WriteString(urlStyle.Render(m.url))
	b.WriteString("\n\n")

	if m.snapshot == nil {
		b.WriteString(m.spinner.View())
		b.WriteString(waitingStyle.Render(" waiting for first snapshot..."))
		b.WriteString("\n")
	} else {
		b.WriteString(renderSnapshot(m.snapshot))
	}

	stats := m.engine.Stats()
	b.WriteString("\n")
	b.WriteString(footerStyle.Render(fmt.Sprintf(
		"snapshots: %d  ticks: %d  skipped: %d  •  q to quit",
		m.received, stats.TicksRun, stats.TicksSkipped)))
	b.WriteString("\n")

	return b.String()
}

// renderSnapshot lays out one category per block with its states as
// indented JSON lines.
func renderSnapshot(snapshot *livestate.Snapshot) string {
	var b strings.Builder

	b.WriteString(urlStyle.Render(fmt.Sprintf("taken %s", snapshot.TakenAt.Format("15:04:05.000"))))
	b.WriteString("\n\n")

	if len(snapshot.Entries) == 0 {
		b.WriteString(waitingStyle.Render("no categories collected"))
		b.WriteString("\n")
		return b.String()
	}

	for _, entry := range snapshot.Entries {
		b.WriteString(categoryStyle.Render(entry.Category))
		b.WriteString("\n")
		if len(entry.States) == 0 {
			b.WriteString(stateStyle.Render("  (empty)"))
			b.WriteString("\n")
			continue
		}
		for _, state := range entry.States {
			encoded, err := json.Marshal(state)
			if err != nil {
				encoded = []byte(fmt.Sprintf("%v", state))
			}
			b.WriteString(stateStyle.Render("  " + string(encoded)))
			b.WriteString("\n")
		}
	}
	return b.String()
}
