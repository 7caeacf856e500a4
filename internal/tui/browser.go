// Package tui holds the interactive library browser.
package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bloombooks/bloomshelf/internal/book"
	"github.com/bloombooks/bloomshelf/internal/catalog"
)

// browseRow adapts a catalog item to the bubbles list.
type browseRow struct {
	it *book.Item
}

func (r browseRow) Title() string {
	if r.it.IsShelf() {
		style := StyleShelf
		if r.it.BackgroundColor != "" && r.it.BackgroundColor != book.DefaultShelfColor {
			style = lipgloss.NewStyle().Foreground(lipgloss.Color("#" + r.it.BackgroundColor)).Bold(true)
		}
		return style.Render("▸ " + r.it.Name)
	}
	if r.it.Highlighted {
		return StyleNew.Render(r.it.Name + " •")
	}
	return r.it.Name
}

func (r browseRow) Description() string {
	if r.it.IsShelf() {
		return StyleHelp.Render("shelf")
	}
	if len(r.it.Shelves) == 0 {
		return StyleHelp.Render("book")
	}
	tags := make([]string, 0, len(r.it.Shelves))
	for id := range r.it.Shelves {
		tags = append(tags, id)
	}
	sort.Strings(tags)
	return StyleTag.Render(strings.Join(tags, ", "))
}

func (r browseRow) FilterValue() string { return r.it.Name }

// BrowserModel is the interactive library view. Entering a shelf
// narrows the catalog filter to it; esc climbs back to the root view.
type BrowserModel struct {
	cat    *catalog.Catalog
	list   list.Model
	status string
	width  int
	height int
}

// NewBrowser creates a browser over the catalog's visible projection.
func NewBrowser(cat *catalog.Catalog) BrowserModel {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = lipgloss.NewStyle()

	m := BrowserModel{cat: cat, list: l}
	m.reload()
	return m
}

// reload rebuilds the rows from the catalog's current projection.
func (m *BrowserModel) reload() {
	visible := m.cat.Visible()
	rows := make([]list.Item, len(visible))
	for i, it := range visible {
		rows[i] = browseRow{it: it}
	}
	m.list.SetItems(rows)
	m.list.Title = m.titleText()
}

func (m *BrowserModel) titleText() string {
	if id := m.cat.Filter(); id != "" {
		if shelf := m.cat.ShelfByID(id); shelf != nil {
			return StyleHeader.Render("Shelf: " + shelf.Name)
		}
		return StyleHeader.Render("Shelf: " + id)
	}
	return StyleHeader.Render("Library")
}

func (m BrowserModel) Init() tea.Cmd {
	return nil
}

func (m BrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		h, v := StyleBorder.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v-1)
		return m, nil

	case tea.KeyMsg:
		// Let the list's own fuzzy filter swallow keys while typing.
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "enter":
			if row, ok := m.list.SelectedItem().(browseRow); ok && row.it.IsShelf() {
				m.cat.SetFilter(row.it.ShelfID)
				m.reload()
				m.list.ResetSelected()
			}
			return m, nil
		case "esc":
			if m.cat.Filter() != "" {
				m.cat.SetFilter("")
				m.reload()
				m.list.ResetSelected()
				return m, nil
			}
			return m, tea.Quit
		case "d":
			if row, ok := m.list.SelectedItem().(browseRow); ok {
				if err := m.cat.Remove(row.it); err != nil {
					m.status = fmt.Sprintf("delete failed: %v", err)
				} else {
					m.status = fmt.Sprintf("deleted %s", row.it.Name)
				}
				m.reload()
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m BrowserModel) View() string {
	help := StyleHelp.Render("enter: open shelf • esc: back • d: delete • q: quit")
	if m.status != "" {
		help = StyleHelp.Render(m.status)
	}
	return StyleBorder.Render(m.list.View()) + "\n" + help
}

// Browse runs the browser until the user quits.
func Browse(cat *catalog.Catalog) error {
	p := tea.NewProgram(NewBrowser(cat), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
