// Package ui implements the interactive terminal interface: an
// Overview page listing every monitored site, a Detail page for one
// site's window aggregates and recent response-time plot, and a Help
// page. It consumes GlobalMonitor's per-second combined snapshot poll
// and, for the plot, ResponseStore.Snapshot directly.
package ui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sitewatch/sitewatch/internal/global"
	"github.com/sitewatch/sitewatch/internal/model"
)

type page int

const (
	pageOverview page = iota
	pageDetail
	pageHelp
)

// snapshotMsg carries one GlobalMonitor poll into the bubbletea event
// loop. MetricsSnapshot is read-once and only lists aggregates that
// changed since the previous poll, so the model merges it into
// per-site, per-window state rather than replacing it outright.
type snapshotMsg map[string]model.MetricsSnapshot

// Bridge adapts GlobalMonitor's synchronous SnapshotConsumer callback,
// invoked from the monitor's own goroutine, into a tea.Msg delivered
// on the program's event loop. GlobalMonitor holds a Bridge as its ui
// consumer; main wires the live *tea.Program into it once the program
// is constructed.
type Bridge struct {
	program *tea.Program
}

// NewBridge creates a Bridge with no program attached yet; Consume is
// a no-op until SetProgram is called.
func NewBridge() *Bridge { return &Bridge{} }

// SetProgram attaches the running program. Must be called before
// GlobalMonitor.Run starts polling.
func (b *Bridge) SetProgram(p *tea.Program) { b.program = p }

// Consume implements global.SnapshotConsumer.
func (b *Bridge) Consume(snapshots map[string]model.MetricsSnapshot) {
	if b.program == nil {
		return
	}
	b.program.Send(snapshotMsg(snapshots))
}

var _ global.SnapshotConsumer = (*Bridge)(nil)

// siteState is the latest known aggregate per window for one site,
// accumulated across successive read-once snapshots.
type siteState struct {
	windows map[model.Window]model.Aggregate
}

func newSiteState() siteState {
	return siteState{windows: make(map[model.Window]model.Aggregate)}
}

// Model is the bubbletea model driving the TUI.
type Model struct {
	global *global.GlobalMonitor

	sites []string
	state map[string]siteState

	page   page
	cursor int

	width, height int
}

// NewModel creates a Model over g's monitors, listed in sorted order.
func NewModel(g *global.GlobalMonitor) Model {
	names := make([]string, 0, len(g.Monitors()))
	for name := range g.Monitors() {
		names = append(names, name)
	}
	sort.Strings(names)

	state := make(map[string]siteState, len(names))
	for _, name := range names {
		state[name] = newSiteState()
	}

	return Model{
		global: g,
		sites:  names,
		state:  state,
	}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case snapshotMsg:
		for name, snap := range msg {
			st, ok := m.state[name]
			if !ok {
				st = newSiteState()
			}
			for _, agg := range snap {
				st.windows[agg.Window] = agg
			}
			m.state[name] = st
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.global.Stop()
			return m, tea.Quit
		case "?":
			if m.page == pageHelp {
				m.page = pageOverview
			} else {
				m.page = pageHelp
			}
		case "b", "esc":
			m.page = pageOverview
		case "j", "down":
			if m.page == pageOverview && m.cursor < len(m.sites)-1 {
				m.cursor++
			}
		case "k", "up":
			if m.page == pageOverview && m.cursor > 0 {
				m.cursor--
			}
		case "enter":
			if m.page == pageOverview && len(m.sites) > 0 {
				m.page = pageDetail
			}
		}
	}
	return m, nil
}

func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}
	switch m.page {
	case pageHelp:
		return m.renderHelp()
	case pageDetail:
		return m.renderDetail()
	default:
		return m.renderOverview()
	}
}

func (m Model) renderOverview() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("sitewatch"))
	b.WriteString("\n\n")

	if len(m.sites) == 0 {
		b.WriteString(labelStyle.Render("no sites configured"))
		b.WriteString("\n")
		return b.String()
	}

	for i, name := range m.sites {
		st := m.state[name]
		b.WriteString(m.renderOverviewRow(name, st, i == m.cursor))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("j/k:select  enter:detail  ?:help  q:quit"))
	return b.String()
}

func (m Model) renderOverviewRow(name string, st siteState, selected bool) string {
	avail, ok120 := st.windows[model.Window120s]
	agg10, ok10 := st.windows[model.Window10s]

	status := labelStyle.Render("pending")
	if ok120 {
		status = availabilityStyle(avail.Availability).Render(fmt.Sprintf("%5.1f%%", avail.Availability*100))
	}

	latency := labelStyle.Render("--")
	if ok10 {
		latency = valueStyle.Render(fmt.Sprintf("avg %-7s max %-7s", agg10.AvgElapsed.Round(time.Millisecond), agg10.MaxElapsed.Round(time.Millisecond)))
	}

	banner := ""
	if ok120 && avail.UnavailableSince != nil {
		banner = "  " + critStyle.Render(fmt.Sprintf("DOWN since %s", avail.UnavailableSince.Format("15:04:05")))
	} else if ok120 && avail.RecoveredAt != nil {
		banner = "  " + okStyle.Render(fmt.Sprintf("recovered %s", avail.RecoveredAt.Format("15:04:05")))
	}

	row := fmt.Sprintf("%-20s %s  %s%s", name, status, latency, banner)
	if selected {
		return activePanelStyle.Render(row)
	}
	return panelStyle.Render(row)
}

func (m Model) renderDetail() string {
	if len(m.sites) == 0 {
		return "no sites configured"
	}
	name := m.sites[m.cursor]
	st := m.state[name]

	var b strings.Builder
	b.WriteString(titleStyle.Render(name))
	b.WriteString("\n\n")

	for _, w := range []model.Window{model.Window10s, model.Window60s, model.Window120s} {
		agg, ok := st.windows[w]
		b.WriteString(labelStyle.Render(w.String() + " window"))
		b.WriteString("\n")
		if !ok {
			b.WriteString("  (no data yet)\n\n")
			continue
		}
		if w == model.Window120s {
			b.WriteString(fmt.Sprintf("  availability %s\n", availabilityStyle(agg.Availability).Render(fmt.Sprintf("%.2f%%", agg.Availability*100))))
			if agg.UnavailableSince != nil {
				b.WriteString(fmt.Sprintf("  unavailable since %s\n", agg.UnavailableSince.Format(time.RFC3339)))
			}
			if agg.RecoveredAt != nil {
				b.WriteString(fmt.Sprintf("  recovered at %s\n", agg.RecoveredAt.Format(time.RFC3339)))
			}
		} else {
			b.WriteString(fmt.Sprintf("  avg %s  max %s  codes %s\n", agg.AvgElapsed, agg.MaxElapsed, formatCodesForUI(agg.Codes)))
		}
		b.WriteString("\n")
	}

	if mon, ok := m.global.Monitors()[name]; ok {
		samples := mon.Store().Snapshot()
		if len(samples) > 0 {
			if len(samples) > 60 {
				samples = samples[len(samples)-60:]
			}
			values := make([]float64, len(samples))
			lo, hi := samples[0].Elapsed.Seconds(), samples[0].Elapsed.Seconds()
			for i, s := range samples {
				v := s.Elapsed.Seconds()
				values[i] = v
				if v < lo {
					lo = v
				}
				if v > hi {
					hi = v
				}
			}
			step := (hi - lo) / 8
			if step <= 0 {
				step = 0.01
			}
			b.WriteString(labelStyle.Render("response time, last " + fmt.Sprint(len(samples)) + " samples"))
			b.WriteString("\n")
			for _, line := range Plot(values, lo, hi, step) {
				b.WriteString(valueStyle.Render(line))
				b.WriteString("\n")
			}
		}
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("b/esc:back  ?:help  q:quit"))
	return b.String()
}

func (m Model) renderHelp() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("sitewatch — help"))
	b.WriteString("\n\n")
	b.WriteString("  j/k        move selection (overview)\n")
	b.WriteString("  enter      open detail page for selected site\n")
	b.WriteString("  b / esc    back to overview\n")
	b.WriteString("  ?          toggle this help\n")
	b.WriteString("  q / ctrl+c quit\n")
	return b.String()
}

// formatCodesForUI mirrors logwriter's formatCodes text but stays
// local to avoid a cross-package dependency for a cosmetic detail.
func formatCodesForUI(codes map[int16]int) string {
	if len(codes) == 0 {
		return "{ }"
	}
	keys := make([]int, 0, len(codes))
	for c := range codes {
		keys = append(keys, int(c))
	}
	sort.Ints(keys)
	parts := make([]string, len(keys))
	for i, c := range keys {
		parts[i] = fmt.Sprintf("%d : %d", c, codes[int16(c)])
	}
	return "{ " + strings.Join(parts, " , ") + " }"
}
