// Package picker implements interactive installation selection. The engine
// itself never blocks on input: it exposes the ordered installation list
// and accepts a selected index, and this package is the terminal front end
// for producing that index.
package picker

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/chzyer/readline"
	"golang.org/x/term"

	"github.com/siwooparkintel/socwatch-post-proc/pkg/core"
)

// ErrCancelled is returned when the user aborts selection.
var ErrCancelled = errors.New("selection cancelled")

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#0078D4")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#04B575"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// Select asks the user to pick one installation and returns its index.
// On a terminal it runs a TUI list unless plain is set, in which case (or
// when stdin is not a terminal) it falls back to a 1-based numeric prompt
// like the console tools this wraps.
func Select(installs []core.Installation, plain bool) (int, error) {
	if len(installs) == 0 {
		return 0, errors.New("no installations to select from")
	}
	if len(installs) == 1 {
		return 0, nil
	}

	if plain || !term.IsTerminal(int(os.Stdin.Fd())) {
		return selectConsole(installs)
	}
	return selectTUI(installs)
}

// selectTUI runs the bubbletea list picker.
func selectTUI(installs []core.Installation) (int, error) {
	m := model{installs: installs}
	result, err := tea.NewProgram(m).Run()
	if err != nil {
		return 0, fmt.Errorf("picker failed: %w", err)
	}

	final := result.(model)
	if final.cancelled {
		return 0, ErrCancelled
	}
	return final.cursor, nil
}

type model struct {
	installs  []core.Installation
	cursor    int
	cancelled bool
	done      bool
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c", "q", "esc":
			m.cancelled = true
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.installs)-1 {
				m.cursor++
			}
		case "enter":
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m model) View() string {
	if m.done || m.cancelled {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Select SocWatch version"))
	b.WriteString("\n\n")
	for i, inst := range m.installs {
		line := fmt.Sprintf("%d. %s", i+1, inst.Label)
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("     " + inst.Path))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("up/down to move, enter to select, q to cancel"))
	b.WriteString("\n")
	return b.String()
}

// selectConsole prompts for a 1-based index on stdin.
func selectConsole(installs []core.Installation) (int, error) {
	fmt.Println("Available SocWatch versions:")
	for i, inst := range installs {
		fmt.Printf("  %d. %s\n", i+1, inst)
	}

	rl, err := readline.New(fmt.Sprintf("Select version (1-%d): ", len(installs)))
	if err != nil {
		return 0, fmt.Errorf("failed to open prompt: %w", err)
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil {
			// Interrupt or EOF
			return 0, ErrCancelled
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		idx, err := strconv.Atoi(line)
		if err != nil || idx < 1 || idx > len(installs) {
			fmt.Printf("Please enter a number between 1 and %d\n", len(installs))
			continue
		}
		return idx - 1, nil
	}
}
