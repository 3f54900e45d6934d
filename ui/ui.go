// Package ui provides the interactive generation picker shown when
// pokedeck runs without arguments in a terminal.
package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/dgnsrekt/pokedeck/internal/pokeapi"
)

var (
	docStyle    = lipgloss.NewStyle().Margin(1, 2)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#969B86", Dark: "#696969"})
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ECFD65")).Bold(true)
	introFooter = "Pick a generation to lay its Pokémon out as printable cards."
)

type genItem struct {
	gen int
}

func (i genItem) Title() string { return pokeapi.GenerationNames[i.gen] }

func (i genItem) Description() string {
	r := pokeapi.GenerationRanges[i.gen]
	return fmt.Sprintf("#%d - #%d  (%d Pokémon)", r.First, r.Last, r.Last-r.First+1)
}

func (i genItem) FilterValue() string { return i.Title() }

type model struct {
	list     list.Model
	choice   int
	quitting bool
}

func newModel() model {
	items := make([]list.Item, 0, pokeapi.MaxGeneration)
	for gen := 1; gen <= pokeapi.MaxGeneration; gen++ {
		items = append(items, genItem{gen: gen})
	}

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Pokédeck"
	l.Styles.Title = titleStyle
	l.SetShowStatusBar(false)

	return model{list: l}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.quitting = true
			return m, tea.Quit
		case "enter":
			if item, ok := m.list.SelectedItem().(genItem); ok {
				m.choice = item.gen
			}
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v-2)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m model) View() string {
	if m.quitting || m.choice != 0 {
		return ""
	}
	footer := helpStyle.Render(wordwrap.String(introFooter, m.list.Width()))
	return docStyle.Render(m.list.View() + "\n" + footer)
}

// PickGeneration runs the picker and returns the chosen generation.
// ok is false when the user quit without choosing.
func PickGeneration(cfg Config) (gen int, ok bool, err error) {
	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.EnableMouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}

	final, err := tea.NewProgram(newModel(), opts...).Run()
	if err != nil {
		return 0, false, fmt.Errorf("unable to run picker: %w", err)
	}

	m, ok := final.(model)
	if !ok || m.choice == 0 {
		return 0, false, nil
	}
	return m.choice, true, nil
}
