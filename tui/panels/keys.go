package panels

import "github.com/charmbracelet/bubbles/key"

// ArticleKeyMap holds the articles panel bindings.
type ArticleKeyMap struct {
	PrevCard key.Binding
	NextCard key.Binding
	PrevTab  key.Binding
	NextTab  key.Binding
	Open     key.Binding
}

// DefaultArticleKeys returns the default bindings.
func DefaultArticleKeys() ArticleKeyMap {
	return ArticleKeyMap{
		PrevCard: key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev")),
		NextCard: key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next")),
		PrevTab:  key.NewBinding(key.WithKeys("[", "1"), key.WithHelp("[", "market news")),
		NextTab:  key.NewBinding(key.WithKeys("]", "2"), key.WithHelp("]", "deep research")),
		Open:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
	}
}

// ShortHelp implements help.KeyMap.
func (k ArticleKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.PrevTab, k.NextTab, k.PrevCard, k.NextCard, k.Open}
}

// FullHelp implements help.KeyMap.
func (k ArticleKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
