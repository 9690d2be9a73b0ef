// Package tui renders the todo session as an interactive terminal list.
// All network work runs in commands; the model re-snapshots the session
// whenever one completes.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/penwick/tick/internal/session"
	"github.com/penwick/tick/internal/todo"
)

// inputMode says what the shared text input is currently composing.
type inputMode int

const (
	modeList inputMode = iota
	modeAdd
	modeEdit
)

// refreshMsg signals that a session action finished and the view should
// re-snapshot.
type refreshMsg struct{}

// Model is the Bubble Tea model for the interactive list.
type Model struct {
	session *session.Session
	state   session.State

	mode   inputMode
	editID int64
	input  textinput.Model
	cursor int
}

// NewModel creates the model. The session is shared with the commands the
// model spawns.
func NewModel(s *session.Session) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 200

	return Model{
		session: s,
		input:   ti,
	}
}

// Run starts the interactive list and blocks until the user quits.
func Run(s *session.Session) error {
	p := tea.NewProgram(NewModel(s), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return m.doCmd(func(ctx context.Context) {
		m.session.Load(ctx)
	})
}

// doCmd runs a session action off the UI goroutine and reports back.
func (m Model) doCmd(action func(ctx context.Context)) tea.Cmd {
	return func() tea.Msg {
		action(context.Background())
		return refreshMsg{}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case refreshMsg:
		m.state = m.session.Snapshot()
		m.clampCursor()
		return m, nil
	case tea.KeyMsg:
		switch m.mode {
		case modeAdd:
			return m.updateAdd(msg)
		case modeEdit:
			return m.updateEdit(msg)
		default:
			return m.updateList(msg)
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateAdd(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		title := m.input.Value()
		m.leaveInput()
		// The session guards blank titles itself; an empty submit is a
		// quiet no-op either way.
		return m, m.doCmd(func(ctx context.Context) {
			m.session.Add(ctx, title)
		})
	case "esc":
		m.leaveInput()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		id := m.editID
		m.leaveInput()
		return m, m.doCmd(func(ctx context.Context) {
			m.session.SaveEdit(ctx, id)
		})
	case "esc":
		m.session.CancelEdit()
		m.leaveInput()
		m.state = m.session.Snapshot()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	// Mirror every keystroke into the session draft
	m.session.EditKeystroke(m.editID, m.input.Value())
	return m, cmd
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "down", "j":
		if m.cursor < len(m.state.Todos)-1 {
			m.cursor++
		}
		return m, nil
	case " ":
		if t, ok := m.selected(); ok {
			return m, m.doCmd(func(ctx context.Context) {
				m.session.Toggle(ctx, t.ID, t.Done)
			})
		}
		return m, nil
	case "d":
		if t, ok := m.selected(); ok {
			return m, m.doCmd(func(ctx context.Context) {
				m.session.Remove(ctx, t.ID)
			})
		}
		return m, nil
	case "a":
		m.mode = modeAdd
		m.input.SetValue("")
		m.input.Placeholder = "New todo title..."
		m.input.Focus()
		return m, nil
	case "e":
		if t, ok := m.selected(); ok && m.session.StartEdit(t.ID) {
			m.mode = modeEdit
			m.editID = t.ID
			m.state = m.session.Snapshot()
			if m.session.TakeFocus() {
				// Focus-and-select: draft pre-filled with cursor at the end
				m.input.SetValue(m.state.Edit.Draft)
				m.input.CursorEnd()
				m.input.Placeholder = "Edit todo title..."
				m.input.Focus()
			}
		}
		return m, nil
	case "r":
		return m, m.doCmd(func(ctx context.Context) {
			m.session.Load(ctx)
		})
	}
	return m, nil
}

func (m *Model) leaveInput() {
	m.mode = modeList
	m.editID = 0
	m.input.SetValue("")
	m.input.Blur()
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.state.Todos) {
		m.cursor = len(m.state.Todos) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) selected() (todo.Todo, bool) {
	if m.cursor < 0 || m.cursor >= len(m.state.Todos) {
		return todo.Todo{}, false
	}
	return m.state.Todos[m.cursor], true
}

func (m Model) View() string {
	var b strings.Builder

	done := 0
	for _, t := range m.state.Todos {
		if t.Done {
			done++
		}
	}
	b.WriteString(fmt.Sprintf("%s  %s\n\n",
		titleStyle.Render("Todos"),
		mutedStyle.Render(fmt.Sprintf("%d done / %d total", done, len(m.state.Todos)))))

	if m.state.Err != "" {
		b.WriteString(errorStyle.Render("! "+m.state.Err) + "\n\n")
	}

	if len(m.state.Todos) == 0 && m.state.Err == "" {
		b.WriteString(mutedStyle.Render("Nothing to do. Press a to add a todo.") + "\n")
	}

	for i, t := range m.state.Todos {
		box := "[ ]"
		title := t.Title
		if t.Done {
			box = checkedStyle.Render("[x]")
			title = doneStyle.Render(title)
		}
		if m.mode == modeEdit && m.state.Edit != nil && m.state.Edit.ID == t.ID {
			title = mutedStyle.Render("(editing)")
		}

		prefix := "  "
		if i == m.cursor {
			prefix = selectedStyle.Render("> ")
		}
		b.WriteString(fmt.Sprintf("%s%s %s\n", prefix, box, title))
	}

	if m.mode == modeAdd || m.mode == modeEdit {
		label := "Add todo"
		if m.mode == modeEdit {
			label = "Edit todo (enter to save, esc to cancel)"
		}
		b.WriteString("\n" + inputBoxStyle.Render(label+"\n"+m.input.View()) + "\n")
	} else {
		b.WriteString("\n" + helpStyle.Render("space toggle · a add · e edit · d delete · r reload · q quit") + "\n")
	}

	return b.String()
}
