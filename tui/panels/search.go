package panels

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/zappabad/newsdesk/internal/route"
	"github.com/zappabad/newsdesk/tui/styles"
)

const maxDropdownItems = 5

// SearchPanel is the symbol search box with watch-list autocomplete.
type SearchPanel struct {
	input textinput.Model

	// Dropdown state
	showDropdown     bool
	dropdownItems    []string
	dropdownFiltered []string
	dropdownIndex    int

	focused bool
	width   int
}

// NewSearchPanel creates a new search panel over the given watch list.
func NewSearchPanel(watchlist []string) *SearchPanel {
	input := textinput.New()
	input.Placeholder = "Search symbol..."
	input.Width = 16
	input.CharLimit = 12

	items := make([]string, len(watchlist))
	for i, s := range watchlist {
		items[i] = strings.ToUpper(s)
	}

	return &SearchPanel{
		input:            input,
		dropdownItems:    items,
		dropdownFiltered: items,
	}
}

// Init initializes the panel.
func (p *SearchPanel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the panel.
func (p *SearchPanel) Update(msg tea.Msg) (*SearchPanel, tea.Cmd) {
	if !p.focused {
		return p, nil
	}

	var cmd tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, key.NewBinding(key.WithKeys("enter"))):
			if p.showDropdown && len(p.dropdownFiltered) > 0 {
				p.selectDropdownItem()
			}
			p.showDropdown = false
			return p, p.submit()

		case key.Matches(msg, key.NewBinding(key.WithKeys("esc"))):
			if p.showDropdown {
				p.showDropdown = false
				return p, nil
			}
			if p.input.Value() == "" {
				return p, navigate(route.Home())
			}
			p.input.SetValue("")
			return p, nil

		case key.Matches(msg, key.NewBinding(key.WithKeys("up"))):
			if p.showDropdown && p.dropdownIndex > 0 {
				p.dropdownIndex--
			}
			return p, nil

		case key.Matches(msg, key.NewBinding(key.WithKeys("down"))):
			if p.showDropdown && p.dropdownIndex < p.visibleItems()-1 {
				p.dropdownIndex++
			}
			return p, nil
		}
	}

	p.input, cmd = p.input.Update(msg)
	p.filterDropdown(p.input.Value())
	p.showDropdown = len(p.input.Value()) > 0 && len(p.dropdownFiltered) > 0

	return p, cmd
}

func (p *SearchPanel) submit() tea.Cmd {
	symbol := strings.ToUpper(strings.TrimSpace(p.input.Value()))
	if symbol == "" {
		return navigate(route.Home())
	}
	return navigate(route.Search(symbol))
}

func navigate(loc route.Location) tea.Cmd {
	return func() tea.Msg { return NavigateMsg{Location: loc} }
}

func (p *SearchPanel) visibleItems() int {
	if len(p.dropdownFiltered) < maxDropdownItems {
		return len(p.dropdownFiltered)
	}
	return maxDropdownItems
}

func (p *SearchPanel) filterDropdown(query string) {
	query = strings.ToUpper(query)
	p.dropdownFiltered = nil
	p.dropdownIndex = 0

	for _, item := range p.dropdownItems {
		if strings.Contains(item, query) {
			p.dropdownFiltered = append(p.dropdownFiltered, item)
		}
	}
}

func (p *SearchPanel) selectDropdownItem() {
	if p.dropdownIndex < len(p.dropdownFiltered) {
		p.input.SetValue(p.dropdownFiltered[p.dropdownIndex])
		p.input.CursorEnd()
	}
}

func (p *SearchPanel) highlightMatch(item, query string) string {
	if query == "" {
		return item
	}
	idx := strings.Index(item, strings.ToUpper(query))
	if idx == -1 {
		return item
	}
	before := item[:idx]
	match := item[idx : idx+len(query)]
	after := item[idx+len(query):]
	return before + styles.DropdownMatchStyle.Render(match) + after
}

// View renders the panel.
func (p *SearchPanel) View() string {
	inputStyle := styles.InputStyle
	if p.focused {
		inputStyle = styles.FocusedInputStyle
	}

	label := styles.LabelStyle.Render("Symbol ")
	box := lipgloss.JoinHorizontal(lipgloss.Center, label, inputStyle.Render(p.input.View()))
	if !p.showDropdown {
		return box
	}

	var items []string
	for i := 0; i < p.visibleItems(); i++ {
		item := p.dropdownFiltered[i]
		style := styles.DropdownItemStyle
		if i == p.dropdownIndex {
			style = styles.DropdownSelectedStyle
		}
		items = append(items, style.Render(p.highlightMatch(item, p.input.Value())))
	}
	return lipgloss.JoinVertical(lipgloss.Left, box, strings.Repeat(" ", lipgloss.Width(label))+strings.Join(items, " "))
}

// SetFocus sets the focus state of the panel.
func (p *SearchPanel) SetFocus(focused bool) {
	p.focused = focused
	if focused {
		p.input.Focus()
	} else {
		p.input.Blur()
		p.showDropdown = false
	}
}

// SetSize sets the panel width.
func (p *SearchPanel) SetSize(width int) {
	p.width = width
}

// SetValue replaces the query text.
func (p *SearchPanel) SetValue(s string) {
	p.input.SetValue(s)
}

// Value returns the query text.
func (p *SearchPanel) Value() string {
	return p.input.Value()
}

// NavigateMsg is sent when the user moves to another page.
type NavigateMsg struct {
	Location route.Location
}
