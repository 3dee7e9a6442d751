package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/aalvaropc/pizzapack/internal/domain"
)

type groupItem struct {
	group    domain.TmpGroup
	selected bool
}

func (g groupItem) Title() string {
	mark := "[ ]"
	if g.selected {
		mark = "[x]"
	}
	return mark + " " + g.group.Stem
}

func (g groupItem) Description() string {
	kinds := map[string]bool{}
	for _, f := range g.group.Files {
		kinds[string(f.Kind)] = true
	}
	names := make([]string, 0, len(kinds))
	for k := range kinds {
		names = append(names, k)
	}
	sort.Strings(names)

	return fmt.Sprintf("%d file(s) · %s · %s · %s",
		len(g.group.Files),
		humanize.Bytes(uint64(g.group.Size())),
		strings.Join(names, ", "),
		humanize.Time(g.group.Newest()),
	)
}

func (g groupItem) FilterValue() string { return g.group.Stem }

type model struct {
	theme Theme
	dir   string

	list  list.Model
	items []groupItem

	confirmed bool
	canceled  bool
}

func newModel(dir string, groups []domain.TmpGroup) model {
	items := make([]groupItem, len(groups))
	listItems := make([]list.Item, len(groups))
	for i, g := range groups {
		items[i] = groupItem{group: g}
		listItems[i] = items[i]
	}

	l := list.New(listItems, list.NewDefaultDelegate(), 80, 20)
	l.Title = "Clean tmp outputs"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	return model{
		theme: DefaultTheme(),
		dir:   dir,
		list:  l,
		items: items,
	}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width-4, msg.Height-10)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.canceled = true
			return m, tea.Quit

		case "enter":
			m.confirmed = true
			return m, tea.Quit

		case " ", "x":
			i := m.list.Index()
			if i < 0 || i >= len(m.items) {
				return m, nil
			}
			m.items[i].selected = !m.items[i].selected
			return m, m.list.SetItem(i, m.items[i])

		case "a":
			all := true
			for _, it := range m.items {
				if !it.selected {
					all = false
					break
				}
			}
			listItems := make([]list.Item, len(m.items))
			for i := range m.items {
				m.items[i].selected = !all
				listItems[i] = m.items[i]
			}
			return m, m.list.SetItems(listItems)
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m model) selected() []domain.TmpGroup {
	var out []domain.TmpGroup
	for _, it := range m.items {
		if it.selected {
			out = append(out, it.group)
		}
	}
	return out
}

func (m model) View() string {
	wrap := lipgloss.NewStyle().Padding(1, 2)
	header := m.theme.Title.Render("pizzapack") + "\n" +
		m.theme.Subtitle.Render("tmp folder: "+m.dir) + "\n"

	var files int
	var bytes int64
	for _, g := range m.selected() {
		files += len(g.Files)
		bytes += g.Size()
	}
	summary := m.theme.Selected.Render(fmt.Sprintf("%d file(s), %s selected for deletion", files, humanize.Bytes(uint64(bytes))))
	help := m.theme.Help.Render("↑/↓ navigate • space toggle • a all • enter delete • q cancel")

	return wrap.Render(header + "\n" + m.theme.Card.Render(m.list.View()) + "\n" + summary + "\n" + help)
}

// PickGroups runs the picker and returns the groups chosen for deletion.
// ok is false when the user canceled.
func PickGroups(dir string, groups []domain.TmpGroup, deps Deps) (selected []domain.TmpGroup, ok bool, err error) {
	opts := []tea.ProgramOption{}
	if deps.Input != nil {
		opts = append(opts, tea.WithInput(deps.Input))
	}
	if deps.Output != nil {
		opts = append(opts, tea.WithOutput(deps.Output))
	} else {
		opts = append(opts, tea.WithAltScreen())
	}

	p := tea.NewProgram(wrapSafe(newModel(dir, groups), deps.Logger), opts...)
	final, err := p.Run()
	if err != nil {
		return nil, false, err
	}

	var m model
	switch fm := final.(type) {
	case safeModel:
		m = fm.m
	case model:
		m = fm
	default:
		return nil, false, fmt.Errorf("unexpected picker model %T", final)
	}
	if m.canceled || !m.confirmed {
		return nil, false, nil
	}
	return m.selected(), true, nil
}
