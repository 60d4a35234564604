package input

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ FilePicker = (*TUIFilePicker)(nil)

// Under go test stdin is not a terminal, so the real picker refuses to run.
func TestTUIFilePicker_Pick_NoTerminal_Unavailable(t *testing.T) {
	picker := NewTUIFilePicker(PickerConfig{})

	_, err := picker.Pick(context.Background())

	assert.ErrorIs(t, err, ErrPickerUnavailable)
}

func TestPickerModel_QuitKeys_CancelWithoutSelection(t *testing.T) {
	tests := []struct {
		name string
		key  tea.KeyMsg
	}{
		{name: "q", key: tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}},
		{name: "esc", key: tea.KeyMsg{Type: tea.KeyEsc}},
		{name: "ctrl+c", key: tea.KeyMsg{Type: tea.KeyCtrlC}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := pickerModel{styles: defaultPickerStyles()}

			updated, cmd := m.Update(tt.key)

			result, ok := updated.(pickerModel)
			require.True(t, ok)
			assert.True(t, result.quitting)
			assert.Empty(t, result.selected)

			require.NotNil(t, cmd)
			_, isQuit := cmd().(tea.QuitMsg)
			assert.True(t, isQuit, "quit key should produce tea.Quit")
		})
	}
}

func TestPickerModel_OtherKeys_DoNotQuit(t *testing.T) {
	m := pickerModel{styles: defaultPickerStyles()}

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})

	result := updated.(pickerModel)
	assert.False(t, result.quitting)
}

func TestPickerModel_ClearErrMsg_ClearsError(t *testing.T) {
	m := pickerModel{styles: defaultPickerStyles(), err: errors.New("stale")}

	updated, _ := m.Update(clearPickerErrMsg{})

	result := updated.(pickerModel)
	assert.NoError(t, result.err)
}

func TestPickerModel_View_ShowsTitleAndHelp(t *testing.T) {
	m := pickerModel{styles: defaultPickerStyles()}

	view := m.View()

	assert.Contains(t, view, "Select a text file")
	assert.Contains(t, view, "cancel")
}

func TestPickerModel_View_ShowsErrorOverTitle(t *testing.T) {
	m := pickerModel{
		styles: defaultPickerStyles(),
		err:    errors.New("notes.bin is not selectable"),
	}

	view := m.View()

	assert.Contains(t, view, "notes.bin is not selectable")
	assert.NotContains(t, view, "Select a text file")
}

func TestPickerModel_View_EmptyWhenQuitting(t *testing.T) {
	m := pickerModel{styles: defaultPickerStyles(), quitting: true}

	assert.Empty(t, m.View())
}
