package input

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	// ErrPickerCancelled reports the user closed the picker without choosing.
	ErrPickerCancelled = errors.New("file selection cancelled")

	// ErrPickerUnavailable reports the picker cannot run, usually because
	// stdin or stdout is not a terminal.
	ErrPickerUnavailable = errors.New("file picker unavailable: no terminal")
)

// FilePicker selects a file path interactively. Pick returns the chosen
// path, ErrPickerCancelled when the user dismisses the picker, or
// ErrPickerUnavailable when it cannot run at all.
type FilePicker interface {
	Pick(ctx context.Context) (string, error)
}

// PickerConfig controls the terminal file picker.
type PickerConfig struct {
	// StartDir is the initial directory. Empty means the working directory.
	StartDir string

	// AllowedTypes limits selection to these extensions (".txt", ".md").
	// Empty allows any file.
	AllowedTypes []string

	// ShowHidden includes dotfiles in the listing.
	ShowHidden bool

	// Height fixes the list height in rows. Zero sizes to the terminal.
	Height int
}

// TUIFilePicker is a terminal file picker.
type TUIFilePicker struct {
	config PickerConfig
}

// NewTUIFilePicker creates a picker with the given configuration.
func NewTUIFilePicker(cfg PickerConfig) *TUIFilePicker {
	return &TUIFilePicker{config: cfg}
}

// Pick runs the picker on the alternate screen and blocks until the user
// selects a file or cancels.
func (p *TUIFilePicker) Pick(ctx context.Context) (string, error) {
	if !isTerminal(os.Stdin) || !isTerminal(os.Stdout) {
		return "", ErrPickerUnavailable
	}

	fp := filepicker.New()
	fp.AllowedTypes = p.config.AllowedTypes
	fp.ShowHidden = p.config.ShowHidden
	if p.config.Height > 0 {
		fp.Height = p.config.Height
		fp.AutoHeight = false
	}

	startDir := p.config.StartDir
	if startDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			wd = "."
		}
		startDir = wd
	}
	fp.CurrentDirectory = startDir

	m := pickerModel{filepicker: fp, styles: defaultPickerStyles()}
	program := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen())

	final, err := program.Run()
	if err != nil {
		return "", fmt.Errorf("file picker failed: %w", err)
	}

	result, ok := final.(pickerModel)
	if !ok || result.selected == "" {
		return "", ErrPickerCancelled
	}
	return result.selected, nil
}

// Picker palette, matching the lime accent used elsewhere in cosim.
const (
	pickerColorAccent = "154"
	pickerColorError  = "196"
	pickerColorHelp   = "245"
)

type pickerStyles struct {
	title lipgloss.Style
	err   lipgloss.Style
	help  lipgloss.Style
}

func defaultPickerStyles() pickerStyles {
	return pickerStyles{
		title: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(pickerColorAccent)),
		err:   lipgloss.NewStyle().Foreground(lipgloss.Color(pickerColorError)),
		help:  lipgloss.NewStyle().Foreground(lipgloss.Color(pickerColorHelp)),
	}
}

type clearPickerErrMsg struct{}

func clearPickerErrAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return clearPickerErrMsg{}
	})
}

// pickerModel wraps the bubbles filepicker with quit keys and an error line
// for disabled selections.
type pickerModel struct {
	filepicker filepicker.Model
	styles     pickerStyles
	selected   string
	quitting   bool
	err        error
}

// Init implements tea.Model.
func (m pickerModel) Init() tea.Cmd {
	return m.filepicker.Init()
}

// Update implements tea.Model.
func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.quitting = true
			return m, tea.Quit
		}
	case clearPickerErrMsg:
		m.err = nil
	}

	var cmd tea.Cmd
	m.filepicker, cmd = m.filepicker.Update(msg)

	// Selection checks run against the updated model with the same message.
	if didSelect, path := m.filepicker.DidSelectFile(msg); didSelect {
		m.selected = path
		m.quitting = true
		return m, tea.Quit
	}
	if didSelect, path := m.filepicker.DidSelectDisabledFile(msg); didSelect {
		m.err = fmt.Errorf("%s is not selectable", path)
		return m, tea.Batch(cmd, clearPickerErrAfter(2*time.Second))
	}

	return m, cmd
}

// View implements tea.Model.
func (m pickerModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n  ")
	if m.err != nil {
		b.WriteString(m.styles.err.Render(m.err.Error()))
	} else {
		b.WriteString(m.styles.title.Render("Select a text file"))
	}
	b.WriteString("\n\n")
	b.WriteString(m.filepicker.View())
	b.WriteString("\n")
	b.WriteString(m.styles.help.Render("  enter: select  q/esc: cancel"))
	return b.String()
}
