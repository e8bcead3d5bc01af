package main

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"can-datalogger/controller"
	"can-datalogger/utils"
)

// The status screen is the display collaborator: it renders counters
// and buffers the core publishes and its keys only ever toggle the
// boolean mode flags, mirroring the instrument's three buttons.
//
//	a  play/pause periodic transmit
//	c  start/stop recording
//	r  reset counters and history
//	q  quit

var (
	colorTX    = lipgloss.Color("#00FFFF")
	colorRX    = lipgloss.Color("#FFA500")
	colorOK    = lipgloss.Color("#00FF00")
	colorError = lipgloss.Color("#FF0000")
	colorDim   = lipgloss.Color("#666666")

	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorTX)
	txStyle     = lipgloss.NewStyle().Foreground(colorTX)
	rxStyle     = lipgloss.NewStyle().Foreground(colorRX)
	okStyle     = lipgloss.NewStyle().Foreground(colorOK).Bold(true)
	errStyle    = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim).
			Padding(0, 1)
)

type refreshMsg time.Time

type statusModel struct {
	state    *controller.AcquisitionState
	sched    *controller.Scheduler
	refresh  time.Duration
	snap     controller.Snapshot
	historyN int
	quitting bool
}

func newStatusModel(state *controller.AcquisitionState, sched *controller.Scheduler, cfg *utils.LoggerConfig) statusModel {
	return statusModel{
		state:    state,
		sched:    sched,
		refresh:  time.Duration(cfg.UI.RefreshMs) * time.Millisecond,
		historyN: 4,
	}
}

func (m statusModel) Init() tea.Cmd {
	return m.tick()
}

func (m statusModel) tick() tea.Cmd {
	return tea.Tick(m.refresh, func(t time.Time) tea.Msg {
		return refreshMsg(t)
	})
}

func (m statusModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case refreshMsg:
		m.snap = m.sched.Snapshot()
		return m, m.tick()
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "a":
			m.state.ToggleTransmit()
		case "c":
			m.state.ToggleLogging()
		case "r":
			m.sched.RequestReset()
		}
	}
	return m, nil
}

func (m statusModel) View() string {
	if m.quitting {
		return ""
	}
	s := m.snap
	var b strings.Builder

	// Header: bus state, recording state, uptime.
	rec := dimStyle.Render("REC off")
	if s.StorageFault {
		rec = errStyle.Render("REC FAULT")
	} else if s.LoggingEnabled {
		rec = errStyle.Render("● REC ") + okStyle.Render(s.SessionID)
	}
	header := fmt.Sprintf("%s  %s  %s",
		titleStyle.Render("CAN Datalogger"),
		rec,
		dimStyle.Render(fmt.Sprintf("up %ds", s.NowMs/1000)))
	b.WriteString(header + "\n\n")

	// TX panel.
	txState := dimStyle.Render("|| paused")
	if s.TransmitEnabled {
		txState = okStyle.Render("> sending")
	}
	txLines := fmt.Sprintf("%s %s  %s  #%d\n%s",
		txStyle.Render("TX"),
		s.ProbeName,
		s.Probe.IDString(),
		s.TxCount,
		s.Probe.DataHex())
	if s.TxFailStreak > 0 {
		txLines += "\n" + errStyle.Render(fmt.Sprintf("%d consecutive send failures", s.TxFailStreak))
	}
	b.WriteString(borderStyle.Render(txLines+"\n"+txState) + "\n")

	// RX panel: newest frames first.
	var rxLines []string
	rxLines = append(rxLines, fmt.Sprintf("%s  #%d", rxStyle.Render("RX"), s.RxCount))
	shown := 0
	for _, f := range s.History {
		if shown >= m.historyN {
			break
		}
		rxLines = append(rxLines, fmt.Sprintf("%s  [%d]  %s",
			rxStyle.Render(f.IDString()), f.Len, f.DataHex()))
		shown++
	}
	if shown == 0 {
		rxLines = append(rxLines, dimStyle.Render("waiting for frames..."))
	}
	b.WriteString(borderStyle.Render(strings.Join(rxLines, "\n")) + "\n")

	// Recording stats.
	if s.LoggingEnabled {
		b.WriteString(dimStyle.Render(fmt.Sprintf(
			"bus_rows=%d  imu_rows=%d  rotations=%d\n",
			s.BusRows, s.MotionRows, s.Rotations)))
	}

	b.WriteString("\n" + dimStyle.Render("[a] play/pause  [c] record  [r] reset  [q] quit"))
	return b.String()
}
