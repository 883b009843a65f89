package picker

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siwooparkintel/socwatch-post-proc/pkg/core"
)

func keyMsg(s string) tea.Msg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestSelectEmpty(t *testing.T) {
	_, err := Select(nil, false)
	require.Error(t, err)
}

func TestSelectSingleSkipsPrompt(t *testing.T) {
	installs := []core.Installation{{Path: "/opt/socwatch/socwatch.exe", Label: "v2.14"}}

	idx, err := Select(installs, true)
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
}

func TestModelNavigation(t *testing.T) {
	m := model{installs: []core.Installation{
		{Label: "a"}, {Label: "b"}, {Label: "c"},
	}}

	next, _ := m.Update(keyMsg("down"))
	next, _ = next.Update(keyMsg("j"))
	next, _ = next.Update(keyMsg("down")) // clamped at the last entry
	got := next.(model)
	assert.Equal(t, 2, got.cursor)

	next, _ = got.Update(keyMsg("up"))
	assert.Equal(t, 1, next.(model).cursor)

	next, _ = next.Update(keyMsg("enter"))
	final := next.(model)
	assert.True(t, final.done)
	assert.False(t, final.cancelled)
}

func TestModelCancel(t *testing.T) {
	m := model{installs: []core.Installation{{Label: "a"}, {Label: "b"}}}

	next, _ := m.Update(keyMsg("q"))
	assert.True(t, next.(model).cancelled)
}

func TestModelViewMarksSelection(t *testing.T) {
	m := model{installs: []core.Installation{
		{Label: "v2.12", Path: "/opt/a"},
		{Label: "v2.14", Path: "/opt/b"},
	}, cursor: 1}

	view := m.View()
	assert.Contains(t, view, "> 2. v2.14")
	assert.Contains(t, view, "1. v2.12")
}
