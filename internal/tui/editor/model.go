// Package editor is the terminal shell around the session controller. It only
// renders snapshots and turns key presses into intents; all file access goes
// through the controller.
package editor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Paintersrp/nodian/internal/markdown"
	"github.com/Paintersrp/nodian/internal/session"
	"github.com/Paintersrp/nodian/internal/state"
)

const (
	treeWidth       = 30
	minEditorWidth  = 20
	chromeHeight    = 4
	unsavedWarning  = "unsaved changes: ctrl+s to save, repeat to discard"
	treePlaceholder = "no markdown files yet (n to create)"
)

// Dispatcher accepts intents. *session.Controller satisfies it.
type Dispatcher interface {
	Dispatch(session.Intent) error
}

// SnapshotMsg carries a published snapshot into the program.
type SnapshotMsg struct {
	Snapshot session.Snapshot
}

type previewMsg struct {
	source   string
	rendered string
}

type focusArea int

const (
	focusTree focusArea = iota
	focusEditor
	focusPrompt
)

type Model struct {
	dispatch Dispatcher
	keys     keyMap
	help     help.Model
	area     textarea.Model
	prompt   textinput.Model
	preview  viewport.Model

	snap          session.Snapshot
	seen          bool
	cursor        int
	focus         focusArea
	showPreview   bool
	previewSource string
	previewWidth  int
	pending       string
	status        string
	width         int
	height        int
}

func New(d Dispatcher, previewWidth int) *Model {
	area := textarea.New()
	area.Placeholder = "Open or create a note..."
	area.CharLimit = 0
	area.ShowLineNumbers = false

	prompt := textinput.New()
	prompt.Placeholder = "notes/new.md"
	prompt.Prompt = "New file: "

	return &Model{
		dispatch:     d,
		keys:         newKeyMap(),
		help:         help.New(),
		area:         area,
		prompt:       prompt,
		preview:      viewport.New(previewWidth, 20),
		showPreview:  true,
		previewWidth: previewWidth,
	}
}

func (m *Model) Init() tea.Cmd {
	return textarea.Blink
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, m.renderPreview(true)

	case SnapshotMsg:
		return m, m.applySnapshot(msg.Snapshot)

	case previewMsg:
		if msg.source == m.previewSource {
			m.preview.SetContent(msg.rendered)
		}
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.focus {
		case focusPrompt:
			return m, m.updatePrompt(msg)
		case focusEditor:
			return m, m.updateEditor(msg)
		default:
			return m, m.updateTree(msg)
		}
	}

	var cmd tea.Cmd
	if m.focus == focusEditor {
		m.area, cmd = m.area.Update(msg)
	}
	return m, cmd
}

func (m *Model) updateTree(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.quit):
		return tea.Quit
	case key.Matches(msg, m.keys.up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.down):
		if m.cursor < len(m.snap.FileTree)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.open):
		if m.cursor < len(m.snap.FileTree) {
			target := m.snap.FileTree[m.cursor]
			if m.confirmDiscard("open:" + target) {
				m.send(session.OpenFile{Path: target})
			}
		}
	case key.Matches(msg, m.keys.create):
		m.focus = focusPrompt
		m.prompt.Reset()
		return m.prompt.Focus()
	case key.Matches(msg, m.keys.toggleFocus):
		return m.focusEditor()
	default:
		cmd, _ := m.sharedBinding(msg)
		return cmd
	}
	return nil
}

func (m *Model) updateEditor(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.cancel, m.keys.toggleFocus) {
		m.focus = focusTree
		m.area.Blur()
		return nil
	}
	if cmd, handled := m.sharedBinding(msg); handled {
		return cmd
	}

	if _, ok := m.snap.Active(); !ok {
		return nil
	}

	before := m.area.Value()
	var cmd tea.Cmd
	m.area, cmd = m.area.Update(msg)
	if after := m.area.Value(); after != before {
		m.pending = ""
		m.send(session.EditContent{Text: after})
	}
	return cmd
}

func (m *Model) updatePrompt(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.cancel):
		m.prompt.Blur()
		m.focus = focusTree
		return nil
	case key.Matches(msg, m.keys.submit):
		name := strings.TrimSpace(m.prompt.Value())
		m.prompt.Blur()
		m.focus = focusTree
		if name == "" {
			return nil
		}
		if !strings.HasSuffix(strings.ToLower(name), ".md") {
			name += ".md"
		}
		if m.confirmDiscard("create:" + name) {
			m.send(session.CreateFile{Name: name})
		}
		return nil
	}

	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return cmd
}

// sharedBinding handles the keys that work from both the tree and the editor.
func (m *Model) sharedBinding(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.save):
		m.pending = ""
		m.send(session.SaveFile{})
		return nil, true
	case key.Matches(msg, m.keys.closeFile):
		if tab, ok := m.snap.Active(); ok && m.confirmDiscard("close:"+tab.Path) {
			m.send(session.CloseFile{Path: tab.Path})
		}
		return nil, true
	case key.Matches(msg, m.keys.nextTab):
		m.cycleTab(1)
		return nil, true
	case key.Matches(msg, m.keys.prevTab):
		m.cycleTab(-1)
		return nil, true
	case key.Matches(msg, m.keys.togglePane):
		m.showPreview = !m.showPreview
		m.resize(m.width, m.height)
		return m.renderPreview(true), true
	}
	return nil, false
}

func (m *Model) cycleTab(step int) {
	n := len(m.snap.Tabs)
	if n < 2 {
		return
	}

	current := 0
	for i, tab := range m.snap.Tabs {
		if tab.IsActive {
			current = i
			break
		}
	}
	next := m.snap.Tabs[(current+step+n)%n]
	if m.confirmDiscard("open:" + next.Path) {
		m.send(session.OpenFile{Path: next.Path})
	}
}

// confirmDiscard guards actions that drop the unsaved buffer. The first
// attempt only warns; repeating the same action goes through.
func (m *Model) confirmDiscard(action string) bool {
	tab, ok := m.snap.Active()
	if !ok || !tab.IsModified || m.pending == action {
		m.pending = ""
		return true
	}
	m.pending = action
	m.status = unsavedWarning
	return false
}

func (m *Model) focusEditor() tea.Cmd {
	if _, ok := m.snap.Active(); !ok {
		return nil
	}
	m.focus = focusEditor
	return m.area.Focus()
}

func (m *Model) send(intent session.Intent) {
	if m.dispatch == nil {
		return
	}
	if err := m.dispatch.Dispatch(intent); err != nil {
		m.status = err.Error()
	}
}

func (m *Model) applySnapshot(snap session.Snapshot) tea.Cmd {
	previous := m.snap.ActivePath
	m.snap = snap

	if !m.seen || snap.ActivePath != previous || replacesBuffer(snap.Intent) {
		m.area.SetValue(snap.EditorContent)
	}
	m.seen = true

	if m.cursor >= len(snap.FileTree) {
		m.cursor = max(len(snap.FileTree)-1, 0)
	}
	if snap.ActivePath == "" && m.focus == focusEditor {
		m.focus = focusTree
		m.area.Blur()
	}

	if snap.Err != nil {
		m.status = snap.Err.Error()
	} else if snap.Intent != nil && m.status != unsavedWarning {
		m.status = ""
	}

	return m.renderPreview(false)
}

func replacesBuffer(intent session.Intent) bool {
	switch intent.(type) {
	case session.OpenFile, session.CreateFile, session.CloseFile:
		return true
	}
	return false
}

func (m *Model) renderPreview(force bool) tea.Cmd {
	if !m.showPreview {
		return nil
	}

	source := m.snap.EditorContent
	if !force && source == m.previewSource {
		return nil
	}
	m.previewSource = source
	width := m.preview.Width

	return func() tea.Msg {
		rendered, err := markdown.Terminal(source, width)
		if err != nil {
			rendered = source
		}
		return previewMsg{source: source, rendered: rendered}
	}
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.help.Width = width

	bodyHeight := max(height-chromeHeight, 3)
	remaining := max(width-treeWidth-2, minEditorWidth)

	editorWidth := remaining
	if m.showPreview {
		editorWidth = remaining / 2
		previewWidth := remaining - editorWidth - 2
		if m.previewWidth > 0 && previewWidth > m.previewWidth {
			previewWidth = m.previewWidth
		}
		m.preview.Width = max(previewWidth, minEditorWidth)
		m.preview.Height = bodyHeight
	}

	m.area.SetWidth(editorWidth)
	m.area.SetHeight(bodyHeight)
}

func (m *Model) View() string {
	tree := treeStyle.Width(treeWidth).Render(m.viewTree())

	var body string
	if m.showPreview {
		body = lipgloss.JoinHorizontal(
			lipgloss.Top,
			m.area.View(),
			previewStyle.Render(m.preview.View()),
		)
	} else {
		body = m.area.View()
	}

	main := lipgloss.JoinVertical(lipgloss.Left, m.viewTabs(), body)
	layout := lipgloss.JoinHorizontal(lipgloss.Top, tree, main)

	footer := []string{layout}
	if m.focus == focusPrompt {
		footer = append(footer, m.prompt.View())
	}
	footer = append(footer, m.viewStatus(), helpStyle.Render(m.help.View(m.keys)))

	return lipgloss.JoinVertical(lipgloss.Left, footer...)
}

func (m *Model) viewTree() string {
	lines := []string{titleStyle.Render("Notes")}
	if len(m.snap.FileTree) == 0 {
		lines = append(lines, itemStyle.Render(treePlaceholder))
	}
	for i, rel := range m.snap.FileTree {
		line := truncate(rel, treeWidth-2)
		if i == m.cursor && m.focus == focusTree {
			lines = append(lines, selectedItemStyle.Render("> "+line))
			continue
		}
		lines = append(lines, itemStyle.Render("  "+line))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) viewTabs() string {
	if len(m.snap.Tabs) == 0 {
		return tabStyle.Render("no open files")
	}

	rendered := make([]string, 0, len(m.snap.Tabs))
	for _, tab := range m.snap.Tabs {
		label := tab.DisplayPath
		if tab.IsModified {
			label += " *"
		}
		if tab.IsActive {
			rendered = append(rendered, activeTabStyle.Render(label))
			continue
		}
		rendered = append(rendered, tabStyle.Render(label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m *Model) viewStatus() string {
	line := state.FormatStatus(m.snap)
	if m.status != "" {
		return lipgloss.JoinHorizontal(
			lipgloss.Top,
			statusStyle.Render(line),
			errorStyle.Render(fmt.Sprintf("  %s", m.status)),
		)
	}
	return statusStyle.Render(line)
}

func truncate(s string, width int) string {
	if width <= 1 || lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-1]) + "…"
}
