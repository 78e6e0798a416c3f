package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"structura/internal/ports"
)

// App is the main TUI application model
type App struct {
	browser *BrowserModel

	width  int
	height int
}

// NewApp creates a new TUI application
func NewApp(store ports.StructureStore) *App {
	return &App{browser: NewBrowserModel(store)}
}

// Init initializes the application
func (a *App) Init() tea.Cmd {
	return a.browser.Init()
}

// Update handles messages for the application
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		a.width = size.Width
		a.height = size.Height
		a.browser.SetSize(size.Width, size.Height)
		return a, nil
	}

	_, cmd := a.browser.Update(msg)
	return a, cmd
}

// View renders the application
func (a *App) View() string {
	return a.browser.View()
}
