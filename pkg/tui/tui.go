// Package tui provides a terminal user interface for miid
package tui

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/james-see/miid/pkg/converter"
	"github.com/james-see/miid/pkg/pianoroll"
	"github.com/james-see/miid/pkg/smf"
)

// Phosphor color scheme
var (
	// Primary colors - green and silver
	phosphorGreen = lipgloss.Color("#39FF14")
	amber         = lipgloss.Color("#FFBF00")
	silverGray    = lipgloss.Color("#C0C0C0")
	darkGray      = lipgloss.Color("#333333")

	// Styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(phosphorGreen).
			Background(darkGray).
			Padding(0, 2).
			MarginBottom(1)

	menuStyle = lipgloss.NewStyle().
			Foreground(silverGray).
			PaddingLeft(2)

	selectedStyle = lipgloss.NewStyle().
			Foreground(phosphorGreen).
			Bold(true).
			PaddingLeft(2)

	statusStyle = lipgloss.NewStyle().
			Foreground(amber).
			PaddingTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(phosphorGreen).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			MarginTop(1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(phosphorGreen).
			Padding(1, 2)
)

// State represents the current TUI state
type State int

const (
	StateMenu State = iota
	StateFilePicker
	StateWorking
	StateResult
)

// Action is what the selected menu item does with the chosen file.
type Action int

const (
	ActionInspect Action = iota
	ActionRoundTrip
	ActionToYAML
	ActionToJSON
	ActionPianoRoll
	ActionExit
)

// MenuItem represents a menu option
type MenuItem struct {
	Title       string
	Description string
	Action      Action
}

var menuItems = []MenuItem{
	{Title: "Inspect", Description: "Show the tracks of a MIDI file", Action: ActionInspect},
	{Title: "Round-trip", Description: "Decode, re-encode and verify a MIDI file", Action: ActionRoundTrip},
	{Title: "MIDI → YAML", Description: "Write a YAML song document next to the file", Action: ActionToYAML},
	{Title: "MIDI → JSON", Description: "Write a JSON song document next to the file", Action: ActionToJSON},
	{Title: "Piano-roll", Description: "Draw the song to a PNG next to the file", Action: ActionPianoRoll},
	{Title: "Exit", Description: "Exit the application", Action: ActionExit},
}

// Options configures the TUI.
type Options struct {
	Decoder   smf.Options
	PianoRoll pianoroll.Options
	Dir       string // starting directory of the file picker
}

// Model represents the TUI model
type Model struct {
	state        State
	menuIndex    int
	filePicker   filepicker.Model
	spinner      spinner.Model
	help         help.Model
	tracks       table.Model
	conv         *converter.Converter
	roll         pianoroll.Options
	selectedFile string
	action       MenuItem
	result       actionDoneMsg
	width        int
	height       int
}

// actionDoneMsg signals that the selected action finished
type actionDoneMsg struct {
	summary    *converter.Summary
	status     string
	outputFile string
	err        error
}

// Init initializes the TUI model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick)
}

// New creates a new TUI model
func New(opts Options) Model {
	// Initialize file picker
	fp := filepicker.New()
	fp.AllowedTypes = []string{".mid", ".midi", ".smf"}
	fp.CurrentDirectory = opts.Dir
	if fp.CurrentDirectory == "" {
		fp.CurrentDirectory, _ = os.Getwd()
	}

	// Initialize spinner
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(phosphorGreen)

	return Model{
		state:      StateMenu,
		menuIndex:  0,
		filePicker: fp,
		spinner:    s,
		help:       help.New(),
		conv:       converter.New(opts.Decoder),
		roll:       opts.PianoRoll,
	}
}

// Update handles TUI updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle file picker state first - it needs to receive all messages
	if m.state == StateFilePicker {
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch {
			case key.Matches(keyMsg, keys.Back):
				m.state = StateMenu
				return m, nil
			case key.Matches(keyMsg, keys.Quit):
				return m, tea.Quit
			}
		}

		var cmd tea.Cmd
		m.filePicker, cmd = m.filePicker.Update(msg)

		if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
			m.selectedFile = path
			m.state = StateWorking
			return m, tea.Batch(m.spinner.Tick, m.perform(path))
		}

		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.filePicker.SetHeight(msg.Height - 10)
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case StateMenu:
			return m.updateMenu(msg)
		case StateResult:
			return m.updateResult(msg)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case actionDoneMsg:
		m.state = StateResult
		m.result = msg
		if msg.summary != nil {
			m.tracks = trackTable(msg.summary)
		}
		return m, nil
	}

	return m, nil
}

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if m.menuIndex > 0 {
			m.menuIndex--
		}
	case key.Matches(msg, keys.Down):
		if m.menuIndex < len(menuItems)-1 {
			m.menuIndex++
		}
	case key.Matches(msg, keys.Select):
		m.action = menuItems[m.menuIndex]
		if m.action.Action == ActionExit {
			return m, tea.Quit
		}
		m.state = StateFilePicker
		return m, m.filePicker.Init()
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) updateResult(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Select), key.Matches(msg, keys.Back):
		m.state = StateMenu
		m.result = actionDoneMsg{}
		m.selectedFile = ""
		return m, nil
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case m.result.summary != nil:
		var cmd tea.Cmd
		m.tracks, cmd = m.tracks.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) perform(path string) tea.Cmd {
	action, conv, roll := m.action.Action, m.conv, m.roll
	return func() tea.Msg {
		return run(action, conv, roll, path)
	}
}

// run executes action on the file at path.
func run(action Action, conv *converter.Converter, roll pianoroll.Options, path string) actionDoneMsg {
	data, err := os.ReadFile(path)
	if err != nil {
		return actionDoneMsg{err: err}
	}
	base := strings.TrimSuffix(path, filepath.Ext(path))

	switch action {
	case ActionInspect:
		song, err := conv.Decode(data)
		if err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{summary: converter.Summarize(song)}

	case ActionRoundTrip:
		res, err := conv.RoundTrip(data)
		if err != nil {
			return actionDoneMsg{err: err}
		}
		status := fmt.Sprintf("%d bytes in, %d bytes out", res.InputSize, res.OutputSize)
		if res.Identical {
			status += ", byte-identical"
		}
		return actionDoneMsg{summary: converter.Summarize(res.Song), status: status}

	case ActionToYAML, ActionToJSON:
		to, ext := converter.FormatYAML, ".yaml"
		if action == ActionToJSON {
			to, ext = converter.FormatJSON, ".json"
		}
		out, err := conv.Convert(data, converter.FormatMIDI, to)
		if err != nil {
			return actionDoneMsg{err: err}
		}
		return writeOutput(base+ext, out)

	case ActionPianoRoll:
		song, err := conv.Decode(data)
		if err != nil {
			return actionDoneMsg{err: err}
		}
		var buf bytes.Buffer
		if err := pianoroll.Draw(song, &buf, roll); err != nil {
			return actionDoneMsg{err: err}
		}
		return writeOutput(base+".png", buf.Bytes())
	}
	return actionDoneMsg{err: fmt.Errorf("unknown action %d", action)}
}

func writeOutput(path string, data []byte) actionDoneMsg {
	if err := os.WriteFile(path, data, 0644); err != nil {
		return actionDoneMsg{err: err}
	}
	return actionDoneMsg{outputFile: path}
}

func trackTable(sum *converter.Summary) table.Model {
	columns := []table.Column{
		{Title: "#", Width: 3},
		{Title: "Name", Width: 20},
		{Title: "Ch", Width: 3},
		{Title: "Class", Width: 6},
		{Title: "Events", Width: 7},
		{Title: "Notes", Width: 6},
		{Title: "Range", Width: 8},
		{Title: "Instrument", Width: 24},
	}
	rows := make([]table.Row, 0, len(sum.Tracks))
	for _, ts := range sum.Tracks {
		rows = append(rows, table.Row{
			fmt.Sprint(ts.Index),
			ts.Name,
			ts.Channel,
			ts.Class,
			fmt.Sprint(ts.Events),
			fmt.Sprint(ts.Notes),
			ts.Range,
			ts.Instrument,
		})
	}
	return table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(min(len(rows)+1, 16)),
	)
}

// View renders the TUI
func (m Model) View() string {
	var s strings.Builder

	// Header
	s.WriteString(asciiLogo())
	s.WriteString("\n")

	switch m.state {
	case StateMenu:
		s.WriteString(m.viewMenu())
	case StateFilePicker:
		s.WriteString(m.viewFilePicker())
	case StateWorking:
		s.WriteString(m.viewWorking())
	case StateResult:
		s.WriteString(m.viewResult())
	}

	// Footer help
	s.WriteString("\n")
	s.WriteString(helpStyle.Render(m.help.View(keys)))

	return s.String()
}

func (m Model) viewMenu() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" SELECT ACTION "))
	s.WriteString("\n\n")

	for i, item := range menuItems {
		if i == m.menuIndex {
			s.WriteString(selectedStyle.Render(fmt.Sprintf("▸ %s", item.Title)))
			s.WriteString("\n")
			s.WriteString(lipgloss.NewStyle().Foreground(amber).PaddingLeft(4).Render(item.Description))
		} else {
			s.WriteString(menuStyle.Render(fmt.Sprintf("  %s", item.Title)))
		}
		s.WriteString("\n")
	}

	return boxStyle.Render(s.String())
}

func (m Model) viewFilePicker() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" SELECT MIDI FILE "))
	s.WriteString("\n\n")
	s.WriteString(m.filePicker.View())

	return s.String()
}

func (m Model) viewWorking() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" WORKING "))
	s.WriteString("\n\n")
	s.WriteString(fmt.Sprintf("%s Reading %s...\n", m.spinner.View(), filepath.Base(m.selectedFile)))
	s.WriteString(statusStyle.Render("  " + m.action.Title))

	return boxStyle.Render(s.String())
}

func (m Model) viewResult() string {
	var s strings.Builder

	if m.result.err != nil {
		s.WriteString(titleStyle.Render(" ERROR "))
		s.WriteString("\n\n")
		s.WriteString(errorStyle.Render(fmt.Sprintf("✗ %s failed: %s", m.action.Title, m.result.err.Error())))
		return boxStyle.Render(s.String())
	}

	s.WriteString(titleStyle.Render(" " + strings.ToUpper(m.action.Title) + " "))
	s.WriteString("\n\n")
	s.WriteString(fmt.Sprintf("Input:  %s\n", filepath.Base(m.selectedFile)))
	if m.result.outputFile != "" {
		s.WriteString(fmt.Sprintf("Output: %s\n", filepath.Base(m.result.outputFile)))
	}
	if sum := m.result.summary; sum != nil {
		if sum.Title != "" {
			s.WriteString(fmt.Sprintf("Title:  %s\n", sum.Title))
		}
		s.WriteString(fmt.Sprintf("Division %d, %d ticks, %.1f BPM, %s\n\n",
			sum.Division, sum.EndOfSongTick, sum.TempoBPM, sum.Duration.Round(time.Millisecond)))
		s.WriteString(m.tracks.View())
		s.WriteString("\n")
	}
	if m.result.status != "" {
		s.WriteString(statusStyle.Render(m.result.status))
		s.WriteString("\n")
	}
	s.WriteString("\n")
	s.WriteString(successStyle.Render("✓ Done"))

	return boxStyle.Render(s.String())
}

func asciiLogo() string {
	logo := `
            _ _     _
  _ __ ___ (_|_) __| |
 | '_ ` + "`" + ` _ \| | |/ _` + "`" + ` |
 | | | | | | | | (_| |
 |_| |_| |_|_|_|\__,_|
`
	return lipgloss.NewStyle().Foreground(phosphorGreen).Render(logo)
}

// Run starts the TUI application
func Run(opts Options) error {
	p := tea.NewProgram(New(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
