package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/PixPMusic/ampswitcher/internal/controller"
	"github.com/PixPMusic/ampswitcher/internal/midi"
	"github.com/PixPMusic/ampswitcher/internal/profile"
)

var (
	accent = lipgloss.Color("#39FF14")
	subtle = lipgloss.Color("#666666")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#C0C0C0"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(subtle)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(subtle).
			Padding(0, 1)
)

const logHeight = 10

type eventMsg struct{ ev midi.Event }

type queueClosedMsg struct{}

// waitForEvent reads the next input event from the session queue.
func waitForEvent(events <-chan midi.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return queueClosedMsg{}
		}
		return eventMsg{ev: ev}
	}
}

// RecorderModel is the Bubble Tea model for the terminal profile recorder.
type RecorderModel struct {
	ctl       *controller.Controller
	spinner   spinner.Model
	log       viewport.Model
	lines     []string
	candidate *profile.Profile
	status    string
	err       error
	width     int

	Quitting bool
	// Saved is the file name of the last saved recording.
	Saved string
}

// NewRecorderModel creates a recorder over a started controller.
func NewRecorderModel(ctl *controller.Controller) RecorderModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(accent)

	return RecorderModel{
		ctl:     ctl,
		spinner: s,
		log:     viewport.New(60, logHeight),
		status:  "Press r to start recording",
	}
}

func (m RecorderModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForEvent(m.ctl.Events()))
}

func (m RecorderModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.log.Width = msg.Width - 4
		return m, nil

	case eventMsg:
		if m.ctl.HandleEvent(msg.ev) {
			m.lines = append(m.lines, msg.ev.String())
			m.log.SetContent(strings.Join(m.lines, "\n"))
			m.log.GotoBottom()
		}
		return m, waitForEvent(m.ctl.Events())

	case queueClosedMsg:
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		m.err = nil
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.ctl.StopRecording()
			m.Quitting = true
			return m, tea.Quit

		case "r", " ":
			if m.ctl.State() == controller.Recording {
				m.stop()
				return m, nil
			}
			if name, err := m.ctl.StartRecording(); err != nil {
				m.err = err
			} else {
				m.status = fmt.Sprintf("Recording from %s", name)
			}

		case "s":
			m.stop()

		case "c":
			m.ctl.ClearRecording()
			m.lines = nil
			m.candidate = nil
			m.log.SetContent("")
			m.status = "Cleared"

		case "w":
			name := m.ctl.RecordingName()
			if err := m.ctl.SaveRecording(name); err != nil {
				m.err = err
			} else {
				m.Saved = name
				m.status = fmt.Sprintf("Saved %s", name)
			}
		}
	}

	return m, nil
}

func (m *RecorderModel) stop() {
	m.candidate = m.ctl.StopRecording()
	if m.candidate == nil {
		m.status = "Nothing recorded"
		return
	}
	m.status = fmt.Sprintf("Generated %d buttons", len(m.candidate.Buttons))
}

func (m RecorderModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("MIDI Profile Recorder"))
	if m.ctl.State() == controller.Recording {
		b.WriteString("  " + m.spinner.View() + " recording")
	}
	b.WriteString("\n\n")

	b.WriteString(boxStyle.Render(m.log.View()))
	b.WriteString("\n")

	if m.candidate != nil {
		var lines []string
		for _, btn := range m.candidate.Buttons {
			lines = append(lines, describe(btn))
		}
		if len(lines) == 0 {
			lines = append(lines, "(no program or control changes)")
		}
		b.WriteString(boxStyle.Render(strings.Join(lines, "\n")))
		b.WriteString("\n")
	}

	if m.err != nil {
		b.WriteString(errorStyle.Render(m.err.Error()))
	} else {
		b.WriteString(statusStyle.Render(m.status))
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("r start/stop  s stop and generate  c clear  w save  q quit"))
	b.WriteString("\n")
	return b.String()
}

func describe(b profile.ButtonSpec) string {
	parts := []string{fmt.Sprintf("%d. %s", b.Order, b.Name)}
	if b.ProgramChange != nil {
		parts = append(parts, fmt.Sprintf("program %d", *b.ProgramChange))
	}
	if b.CCNumber != nil {
		value := 0
		if b.CCValue != nil {
			value = *b.CCValue
		}
		parts = append(parts, fmt.Sprintf("cc %d=%d", *b.CCNumber, value))
	}
	return strings.Join(parts, "  ")
}
