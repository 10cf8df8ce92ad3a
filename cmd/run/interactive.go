package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/contract-runtime/runtime"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	funcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type interactiveModel struct {
	err      error
	rt       *runtime.Runtime
	instance *runtime.Instance
	module   *runtime.Module
	src      source
	result   string
	funcs    []funcInfo
	inputs   []textinput.Model
	history  []string
	selected int
	focusIdx int
	state    modelState
}

const historySize = 5

type funcInfo struct {
	export runtime.Export
	arity  int
}

type modelState int

const (
	stateSelectFunc modelState = iota
	stateInputArgs
	stateShowResult
)

func newInteractiveModel(src source) *interactiveModel {
	return &interactiveModel{
		src:   src,
		state: stateSelectFunc,
	}
}

type loadedMsg struct {
	err   error
	rt    *runtime.Runtime
	mod   *runtime.Module
	funcs []funcInfo
}

type callResultMsg struct {
	err    error
	call   string
	result string
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.loadModule
}

func (m *interactiveModel) loadModule() tea.Msg {
	rt, mod, err := m.src.load(context.Background())
	if err != nil {
		return loadedMsg{err: err}
	}

	// Exports whose signature is not a whole number of strategy values are
	// skipped; the strategy could not call them.
	width := len(m.src.strategy.ValueTypes())
	var funcs []funcInfo
	for _, x := range mod.Exports() {
		if len(x.Params)%width != 0 {
			continue
		}
		funcs = append(funcs, funcInfo{export: x, arity: len(x.Params) / width})
	}
	if len(funcs) == 0 {
		_ = rt.Close(context.Background())
		return loadedMsg{err: fmt.Errorf("no %s-callable exports", m.src.strategy.Name())}
	}
	return loadedMsg{funcs: funcs, rt: rt, mod: mod}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.funcs = msg.funcs
		m.rt = msg.rt
		m.module = msg.mod
		return m, nil

	case callResultMsg:
		m.result = msg.result
		m.err = msg.err
		m.state = stateShowResult
		m.remember(msg)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, m.quit()
		}
		switch m.state {
		case stateSelectFunc:
			return m.updateSelect(msg)
		case stateInputArgs:
			return m.updateInputs(msg)
		case stateShowResult:
			return m.updateResult(msg)
		}
	}

	if m.state == stateInputArgs {
		return m, m.forwardInputs(msg)
	}
	return m, nil
}

func (m *interactiveModel) updateSelect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, m.quit()
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < len(m.funcs)-1 {
			m.selected++
		}
	case "enter":
		if len(m.funcs) == 0 {
			return m, nil
		}
		m.prepareInputs()
		if len(m.inputs) == 0 {
			return m, m.callFunction
		}
		m.state = stateInputArgs
	}
	return m, nil
}

// updateInputs handles keys while arguments are edited. "q" is text here.
func (m *interactiveModel) updateInputs(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		return m, m.callFunction
	case "esc":
		m.state = stateSelectFunc
		m.inputs = nil
		return m, nil
	case "tab", "shift+tab":
		if len(m.inputs) > 1 {
			step := 1
			if msg.String() == "shift+tab" {
				step = len(m.inputs) - 1
			}
			m.inputs[m.focusIdx].Blur()
			m.focusIdx = (m.focusIdx + step) % len(m.inputs)
			m.inputs[m.focusIdx].Focus()
		}
		return m, nil
	}
	return m, m.forwardInputs(msg)
}

func (m *interactiveModel) updateResult(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, m.quit()
	case "enter", "esc":
		m.state = stateSelectFunc
		m.result = ""
		m.err = nil
	}
	return m, nil
}

func (m *interactiveModel) forwardInputs(msg tea.Msg) tea.Cmd {
	cmds := make([]tea.Cmd, len(m.inputs))
	for i := range m.inputs {
		m.inputs[i], cmds[i] = m.inputs[i].Update(msg)
	}
	return tea.Batch(cmds...)
}

// remember keeps the last few calls for the selection screen.
func (m *interactiveModel) remember(msg callResultMsg) {
	line := msg.call + " = "
	if msg.err != nil {
		line += "error: " + msg.err.Error()
	} else {
		line += msg.result
	}
	m.history = append(m.history, line)
	if len(m.history) > historySize {
		m.history = m.history[len(m.history)-historySize:]
	}
}

func (m *interactiveModel) quit() tea.Cmd {
	ctx := context.Background()
	if m.instance != nil {
		_ = m.instance.Close(ctx)
	}
	if m.rt != nil {
		_ = m.rt.Close(ctx)
	}
	return tea.Quit
}

func (m *interactiveModel) prepareInputs() {
	f := m.funcs[m.selected]
	m.inputs = make([]textinput.Model, f.arity)
	for i := range m.inputs {
		ti := textinput.New()
		ti.Placeholder = "literal, e.g. 42, u7, \"hi\", (list 1 2)"
		ti.Prompt = fmt.Sprintf("arg%d: ", i)
		ti.Width = 48
		if i == 0 {
			ti.Focus()
		}
		m.inputs[i] = ti
	}
	m.focusIdx = 0
}

func (m *interactiveModel) callFunction() tea.Msg {
	ctx := context.Background()

	if m.instance == nil {
		if m.module == nil {
			return callResultMsg{err: fmt.Errorf("module not loaded")}
		}
		inst, err := m.module.Instantiate(ctx)
		if err != nil {
			return callResultMsg{err: err}
		}
		m.instance = inst
	}

	f := m.funcs[m.selected]
	args := make([]string, len(m.inputs))
	for i, input := range m.inputs {
		args[i] = input.Value()
	}

	call := f.export.Name + "(" + strings.Join(args, ", ") + ")"
	result, err := m.instance.CallLiteral(ctx, m.src.strategy, f.export.Name, args...)
	if err != nil {
		return callResultMsg{err: err, call: call}
	}
	return callResultMsg{result: result.String(), call: call}
}

func (m *interactiveModel) View() string {
	if m.err != nil && m.state != stateShowResult {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}

	if len(m.funcs) == 0 {
		return "Loading module..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Contract Runner"))
	b.WriteString(" ")
	b.WriteString(m.src.String())
	b.WriteString(" ")
	b.WriteString(typeStyle.Render("[" + m.src.strategy.Name() + "]"))
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectFunc:
		b.WriteString("Select a function to call:\n\n")
		for i, f := range m.funcs {
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + f.export.Signature()))
			} else {
				b.WriteString("  " + m.formatFunc(f))
			}
			b.WriteString("\n")
		}
		if len(m.history) > 0 {
			b.WriteString("\nRecent calls:\n")
			for _, h := range m.history {
				b.WriteString("  " + helpStyle.Render(h) + "\n")
			}
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter call • q quit"))

	case stateInputArgs:
		f := m.funcs[m.selected]
		b.WriteString(fmt.Sprintf("Calling %s\n\n", funcStyle.Render(f.export.Name)))
		for _, input := range m.inputs {
			b.WriteString(input.View())
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("tab/shift+tab move • enter call • esc back"))

	case stateShowResult:
		f := m.funcs[m.selected]
		b.WriteString(fmt.Sprintf("Result of %s:\n\n", funcStyle.Render(f.export.Name)))
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(resultStyle.Render(m.result))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter/esc continue • q quit"))
	}

	return b.String()
}

func (m *interactiveModel) formatFunc(f funcInfo) string {
	params := make([]string, f.arity)
	for i := range params {
		params[i] = fmt.Sprintf("arg%d", i)
	}
	return funcStyle.Render(f.export.Name) + "(" + typeStyle.Render(strings.Join(params, ", ")) + ")"
}

func runInteractive(src source) error {
	p := tea.NewProgram(newInteractiveModel(src), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
