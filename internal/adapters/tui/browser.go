package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"structura/internal/adapters/tui/styles"
	"structura/internal/ports"
)

// BrowserKeyMap defines key bindings for the browser view
type BrowserKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Left   key.Binding
	Right  key.Binding
	Enter  key.Binding
	Copy   key.Binding
	Reload key.Binding
	Quit   key.Binding
}

var BrowserKeys = BrowserKeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Left: key.NewBinding(
		key.WithKeys("h", "left"),
		key.WithHelp("h/←", "collapse"),
	),
	Right: key.NewBinding(
		key.WithKeys("l", "right"),
		key.WithHelp("l/→", "expand"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "toggle"),
	),
	Copy: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "copy external id"),
	),
	Reload: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reload"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// BrowserModel is the model for the lazy-loading tree browser
type BrowserModel struct {
	store ports.StructureStore

	root       *TreeNode
	flatNodes  []*TreeNode
	cursor     int
	width      int
	height     int
	message    string
	messageErr bool
}

// NewBrowserModel creates a new browser model
func NewBrowserModel(store ports.StructureStore) *BrowserModel {
	// Synthetic root: its children are the catalog's root thing nodes.
	root := &TreeNode{Kind: KindThingNode, IsExpanded: true}
	return &BrowserModel{store: store, root: root}
}

// Init triggers the initial root-level load
func (m *BrowserModel) Init() tea.Cmd {
	return m.loadChildren(m.root)
}

type levelLoadedMsg struct {
	node *TreeNode
}

type errMsg struct {
	err error
}

func (m *BrowserModel) loadChildren(node *TreeNode) tea.Cmd {
	return func() tea.Msg {
		parentID := &node.ID
		if node == m.root {
			parentID = nil
		}
		level, err := m.store.GetChildren(context.Background(), parentID)
		if err != nil {
			return errMsg{err}
		}
		node.SetLevel(level)
		return levelLoadedMsg{node}
	}
}

// Update handles messages for the browser
func (m *BrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case levelLoadedMsg:
		msg.node.IsExpanded = true
		m.refreshFlatNodes()
		return m, nil

	case errMsg:
		m.message = msg.err.Error()
		m.messageErr = true
		return m, nil

	case tea.KeyMsg:
		m.message = ""

		switch {
		case key.Matches(msg, BrowserKeys.Quit):
			return m, tea.Quit

		case key.Matches(msg, BrowserKeys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil

		case key.Matches(msg, BrowserKeys.Down):
			if m.cursor < len(m.flatNodes)-1 {
				m.cursor++
			}
			return m, nil

		case key.Matches(msg, BrowserKeys.Left):
			if node := m.selectedNode(); node != nil {
				if node.IsExpanded {
					node.IsExpanded = false
					m.refreshFlatNodes()
				} else if node.Parent != nil && node.Parent != m.root {
					for i, n := range m.flatNodes {
						if n == node.Parent {
							m.cursor = i
							break
						}
					}
				}
			}
			return m, nil

		case key.Matches(msg, BrowserKeys.Right), key.Matches(msg, BrowserKeys.Enter):
			if node := m.selectedNode(); node != nil && node.Expandable() {
				if node.IsExpanded && key.Matches(msg, BrowserKeys.Enter) {
					node.IsExpanded = false
					m.refreshFlatNodes()
					return m, nil
				}
				if !node.IsLoaded {
					return m, m.loadChildren(node)
				}
				node.IsExpanded = true
				m.refreshFlatNodes()
			}
			return m, nil

		case key.Matches(msg, BrowserKeys.Copy):
			if node := m.selectedNode(); node != nil {
				if err := clipboard.WriteAll(node.ExternalID); err != nil {
					m.message = fmt.Sprintf("copy failed: %v", err)
					m.messageErr = true
				} else {
					m.message = fmt.Sprintf("Copied %s", node.ExternalID)
					m.messageErr = false
				}
			}
			return m, nil

		case key.Matches(msg, BrowserKeys.Reload):
			return m, m.Reload()
		}
	}

	return m, nil
}

func (m *BrowserModel) selectedNode() *TreeNode {
	if m.cursor >= 0 && m.cursor < len(m.flatNodes) {
		return m.flatNodes[m.cursor]
	}
	return nil
}

func (m *BrowserModel) refreshFlatNodes() {
	m.flatNodes = m.root.flatten(nil)
	// Skip the synthetic root in display
	if len(m.flatNodes) > 0 {
		m.flatNodes = m.flatNodes[1:]
	}
	if m.cursor >= len(m.flatNodes) {
		m.cursor = len(m.flatNodes) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// View renders the browser
func (m *BrowserModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("Structura"))
	b.WriteString("\n")
	b.WriteString(styles.Subtitle.Render("Structure Catalog Browser"))
	b.WriteString("\n\n")

	if len(m.flatNodes) == 0 {
		b.WriteString(styles.HelpDesc.Render("Catalog is empty."))
		b.WriteString("\n")
	}

	for i, node := range m.flatNodes {
		b.WriteString(m.renderNode(node, i == m.cursor))
		b.WriteString("\n")
	}

	if m.message != "" {
		b.WriteString("\n")
		if m.messageErr {
			b.WriteString(styles.ErrorMsg.Render(m.message))
		} else {
			b.WriteString(styles.Success.Render(m.message))
		}
	}

	b.WriteString("\n")
	b.WriteString(m.renderHelpLine())

	return styles.App.Render(b.String())
}

func (m *BrowserModel) renderNode(node *TreeNode, selected bool) string {
	indent := strings.Repeat("  ", node.Depth()-1)

	var prefix string
	switch {
	case !node.Expandable():
		prefix = styles.TreeLeaf
	case node.IsExpanded:
		prefix = styles.TreeExpanded
	default:
		prefix = styles.TreeCollapsed
	}

	text := node.Name
	var style lipgloss.Style
	switch node.Kind {
	case KindThingNode:
		style = styles.Node
	case KindSource:
		style = styles.NodeSource
		text = fmt.Sprintf("%s (%s)", node.Name, node.Type)
	case KindSink:
		style = styles.NodeSink
		text = fmt.Sprintf("%s (%s)", node.Name, node.Type)
	}

	styledText := style.Render(text)
	if selected {
		styledText = styles.NodeSelected.Render(text)
	}

	return fmt.Sprintf("%s%s%s", indent, styles.TreeBranch.Render(prefix), styledText)
}

func (m *BrowserModel) renderHelpLine() string {
	keys := []struct {
		key  string
		desc string
	}{
		{"j/k", "navigate"},
		{"h/l", "collapse/expand"},
		{"y", "copy id"},
		{"r", "reload"},
		{"q", "quit"},
	}

	var parts []string
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s %s",
			styles.HelpKey.Render(k.key),
			styles.HelpDesc.Render(k.desc),
		))
	}
	return strings.Join(parts, styles.HelpSeparator.String())
}

// SetSize updates the view dimensions
func (m *BrowserModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Reload drops the loaded tree and fetches the root level again
func (m *BrowserModel) Reload() tea.Cmd {
	m.root = &TreeNode{Kind: KindThingNode, IsExpanded: true}
	m.flatNodes = nil
	m.cursor = 0
	return m.loadChildren(m.root)
}
