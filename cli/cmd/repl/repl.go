package repl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/goccy/go-yaml"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/tagmacro/lang"
	"github.com/ardnew/tagmacro/log"
)

// editDataMsg is sent when data editing completes successfully.
type editDataMsg struct{ data *lang.Data }

// editCancelledMsg is sent when the user cleared the editor content.
type editCancelledMsg struct{}

// editErrorMsg is sent when the edit process fails or is declined.
type editErrorMsg struct{ err error }

const (
	evalPrompt = "➜ "
	ctrlPrompt = " :"
)

func helpMessage() string {
	return `
: Commands (press Esc to toggle mode, or prefix a template with ':'):

  help          Print this cruft
  keys [path]   List data keys, or the keys under a dotted path
  funcs [pat]   List functions, fuzzy filtered by pat
  data          Print the data context as YAML
  set key val   Set a top-level variable
  edit          Edit the data context in external $EDITOR
  clear         Clear screen
  quit          Exit REPL

Usage:
  Type a template to render it against the data context
  Completions appear after <#, <##, <[, {{ (data keys) and <{ (functions)
  Press Tab / Shift-Tab to cycle through candidates
  Press Space to accept the current candidate
  Press Esc to toggle between render and command modes
  Use Up/Down arrows for history navigation (mode switches automatically)
  Use Shift+Up/Shift+Down for history navigation within current mode only
  Press Ctrl+C on empty line or Ctrl+D to exit
`
}

// inputMode represents the current input mode.
type inputMode int

const (
	modeEval inputMode = iota
	modeCtrl
)

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	ctrlPromptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")).
			Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	matchStyle      = lipgloss.NewStyle().
			Foreground(lipgloss.Color("4")).
			Bold(true)
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
	selectedMatchStyle = selectedStyle.Bold(true)
)

// formatCommand formats the echo line of a rendered template.
func formatCommand(input string) string {
	return promptStyle.Render(evalPrompt) + inputStyle.Render(input)
}

// formatCtrlCommand formats the echo line of a control command.
func formatCtrlCommand(input string) string {
	return ctrlPromptStyle.Render(ctrlPrompt) + inputStyle.Render(input)
}

// model is the Bubble Tea model for the REPL.
type model struct {
	ctxFunc      func() context.Context
	input        textinput.Model
	eval         *lang.Evaluator
	data         *lang.Data
	funcs        []string
	logger       log.Logger
	history      *History
	historyIdx   int
	matches      fuzzy.Matches // current fuzzy match results
	candidates   []string      // backing candidate list
	wordStart    int           // byte offset of current word start
	wordEnd      int           // byte offset of current word end
	suggIdx      int           // selected candidate index
	tabActive    bool          // whether user is tab-cycling
	preTabText   string        // input text before tab-cycling began
	preTabCursor int           // cursor position before tab-cycling began
	width        int           // terminal width for ellipsization
	quitting     bool
	mode         inputMode
	evalText     string
	evalCursor   int
	ctrlText     string
	ctrlCursor   int
}

// Run starts the REPL, rendering each entered template with eval against
// data. Entered lines are recorded in history.
func Run(
	ctx context.Context,
	eval *lang.Evaluator,
	data *lang.Data,
	history *History,
	logger log.Logger,
) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	if history == nil {
		history = NewHistory("")
	}

	if err := history.Load(); err != nil {
		logger.WarnContext(ctx, "could not load history", slog.Any("error", err))
	}

	logger.TraceContext(
		ctx,
		"repl start",
		slog.Any("data", data),
		slog.Int("history", history.Len()),
		slog.Int("functions", len(eval.Functions())),
	)

	m := newModel(ctx, eval, data, history, logger)

	p := tea.NewProgram(m, tea.WithContext(ctx))
	_, err = p.Run()

	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return context.Cause(ctx)
	}

	return err
}

const defaultWidth = 80

func newModel(
	ctx context.Context,
	eval *lang.Evaluator,
	data *lang.Data,
	history *History,
	logger log.Logger,
) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(evalPrompt)
	ti.Focus()
	ti.CharLimit = 4096
	ti.Width = defaultWidth

	if data == nil {
		data = lang.NewData(nil)
	}

	return model{
		ctxFunc:    func() context.Context { return ctx },
		input:      ti,
		eval:       eval,
		data:       data,
		funcs:      eval.Functions(),
		logger:     logger,
		history:    history,
		historyIdx: history.Len(),
		suggIdx:    -1,
		width:      defaultWidth,
		mode:       modeEval,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - len(evalPrompt) - 2

		return m, nil

	case editDataMsg:
		m.data = msg.data
		m.logger.TraceContext(
			m.ctxFunc(),
			"repl edit complete",
			slog.Any("data", m.data),
		)

		return m, tea.Println(resultStyle.Render("✔ data updated"))

	case editCancelledMsg:
		return m, tea.Println(hintStyle.Render("edit cancelled"))

	case editErrorMsg:
		return m, tea.Println(errorStyle.Render("error: " + msg.err.Error()))
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.hintView())
	b.WriteString("\n")

	return b.String()
}

// hintView returns the line shown below the prompt.
func (m model) hintView() string {
	input := m.input.Value()

	if m.historyIdx < m.history.Len() {
		pos := m.historyIdx + 1

		return hintStyle.Render(fmt.Sprintf("%s/%d",
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(pos)),
			m.history.Len()))
	}

	if strings.TrimSpace(input) == "" {
		if m.mode == modeEval {
			return hintStyle.Render("Type a template or press Esc for commands")
		}

		return hintStyle.Render(
			"Type: " + strings.Join(ctrlCommands, ", ") + " (press Esc to return)",
		)
	}

	if len(m.matches) > 0 {
		return renderCandidateBar(m.matches, m.suggIdx, m.tabActive, m.width)
	}

	if m.mode == modeEval {
		call := detectFunctionCall(input, m.input.Position())
		if call.inCall {
			sig, params := signature(call.name)

			return renderSignatureHint(sig, params, call.argIndex)
		}
	}

	return ""
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(
		m.ctxFunc(),
		"repl keypress",
		slog.String("key", msg.String()),
		slog.Int("type", int(msg.Type)),
	)

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.tabActive = false
		m.historyIdx = m.history.Len()
		refreshMatches(&m, false)

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		if !m.tabActive || len(m.matches) == 0 {
			return m.executeInput()
		}
		// Lock in the current tab candidate without executing.
		m.tabActive = false
		refreshMatches(&m, true)

		return m, nil

	case tea.KeyTab:
		return m.cycle(1)

	case tea.KeyShiftTab:
		return m.cycle(-1)

	case tea.KeyUp:
		return m.historyPrev(false)

	case tea.KeyDown:
		return m.historyNext(false)

	case tea.KeyShiftUp:
		return m.historyPrev(true)

	case tea.KeyShiftDown:
		return m.historyNext(true)

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.input.SetValue(m.preTabText)
			m.input.SetCursor(m.preTabCursor)
			refreshMatches(&m, false)

			return m, nil
		}

		return m.toggleMode()

	case tea.KeyRunes, tea.KeySpace:
		// Typing accepts the current candidate.
		m.tabActive = false

		var cmd tea.Cmd

		m.historyIdx = m.history.Len()
		m.input, cmd = m.input.Update(msg)
		refreshMatches(&m, true)

		return m, cmd
	}

	// For any other key (backspace, delete, arrows, etc.),
	// update input and recompute matches without auto-confirm.
	var cmd tea.Cmd

	m.tabActive = false
	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	refreshMatches(&m, false)

	return m, cmd
}

// cycle moves the tab selection by step, wrapping at either end.
func (m model) cycle(step int) (model, tea.Cmd) {
	if len(m.matches) == 0 {
		return m, nil
	}

	// Single candidate: complete and confirm immediately.
	if len(m.matches) == 1 {
		replaceCurrentWord(&m, m.matches[0].Str)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil

		return m, nil
	}

	if m.tabActive {
		m.suggIdx = (m.suggIdx + step + len(m.matches)) % len(m.matches)
	} else {
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabCursor = m.input.Position()

		m.suggIdx = 0
		if step < 0 {
			m.suggIdx = len(m.matches) - 1
		}
	}

	replaceCurrentWord(&m, m.matches[m.suggIdx].Str)

	return m, nil
}

// replaceCurrentWord replaces the current word boundaries in the input with
// the given replacement text and repositions the cursor.
func replaceCurrentWord(m *model, replacement string) {
	input := m.input.Value()
	newInput := input[:m.wordStart] + replacement + input[m.wordEnd:]
	newCursor := m.wordStart + len(replacement)

	m.input.SetValue(newInput)
	m.input.SetCursor(newCursor)

	m.wordEnd = newCursor
}

// refreshMatches recomputes fuzzy matches for the current input state.
// When autoConfirm is true it also confirms the completion when exactly one
// candidate remains and the typed word already equals that candidate.
// autoConfirm should be false for deletions and cursor navigation so that
// the user can freely edit without unexpected completions.
func refreshMatches(m *model, autoConfirm bool) {
	m.matches, m.candidates, m.wordStart, m.wordEnd = m.computeMatches()

	if !m.tabActive {
		m.suggIdx = -1
	}

	if !autoConfirm || len(m.matches) != 1 {
		return
	}

	if m.input.Value()[m.wordStart:m.wordEnd] == m.matches[0].Str {
		m.matches = nil
	}
}

func (m model) executeInput() (model, tea.Cmd) {
	input := m.input.Value()
	if strings.TrimSpace(input) == "" {
		return m, nil
	}

	m.evalText, m.evalCursor = "", 0
	m.ctrlText, m.ctrlCursor = "", 0
	m.input.SetValue("")
	m.matches = nil

	mode := m.mode
	if s, ok := strings.CutPrefix(strings.TrimSpace(input), ":"); ok && mode == modeEval {
		input, mode = s, modeCtrl
	}

	if err := m.history.Add(input, mode); err != nil {
		m.logger.WarnContext(m.ctxFunc(), "could not save history",
			slog.Any("error", err))
	}

	m.historyIdx = m.history.Len()

	if mode == modeCtrl {
		return m.executeCommand(strings.TrimSpace(input))
	}

	return m, tea.Sequence(
		tea.Println(formatCommand(input)),
		tea.Println(m.render(input)),
	)
}

// render renders a template against the data context and styles the result.
func (m model) render(input string) string {
	out, err := m.eval.Render(m.ctxFunc(), input, m.data)
	if err != nil {
		m.logger.TraceContext(m.ctxFunc(), "repl render failed",
			slog.Any("error", err))

		var perr *lang.ParseError
		if errors.As(err, &perr) {
			if snippet := perr.Snippet(); snippet != "" {
				return errorStyle.Render("error: "+err.Error()) + "\n" +
					hintStyle.Render(strings.TrimSuffix(snippet, "\n"))
			}
		}

		return errorStyle.Render("error: " + err.Error())
	}

	if out == "" {
		return hintStyle.Render("(empty)")
	}

	return resultStyle.Render(out)
}

func (m model) executeCommand(input string) (model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}

	echoCmd := tea.Println(formatCtrlCommand(input))

	cmd, args := parts[0], parts[1:]

	m.logger.TraceContext(
		m.ctxFunc(),
		"repl command",
		slog.String("command", cmd),
		slog.Any("args", args),
	)

	switch cmd {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Sequence(echoCmd, tea.Quit)

	case "h", "help":
		return m, tea.Sequence(echoCmd, tea.Println(helpMessage()))

	case "k", "keys":
		return m, tea.Sequence(echoCmd, tea.Println(m.listKeys(strings.Join(args, "."))))

	case "f", "funcs":
		return m, tea.Sequence(echoCmd, tea.Println(m.listFuncs(strings.Join(args, ""))))

	case "d", "data":
		return m, tea.Sequence(echoCmd, tea.Println(m.dumpData()))

	case "s", "set":
		if len(args) == 0 {
			return m, tea.Sequence(echoCmd,
				tea.Println(errorStyle.Render("usage: set key value")))
		}

		m.data = m.data.With(map[string]any{args[0]: strings.Join(args[1:], " ")})

		return m, echoCmd

	case "c", "clear":
		return m, tea.ClearScreen

	case "e", "edit":
		return m, tea.Sequence(echoCmd, m.editData())

	default:
		return m, tea.Sequence(echoCmd, tea.Println(
			errorStyle.Render("unknown command: "+cmd+" (try 'help')"),
		))
	}
}

// editData returns a command that edits the data context in $EDITOR.
func (m model) editData() tea.Cmd {
	cmd := &editDataCommand{
		data:    m.data,
		ctxFunc: m.ctxFunc,
		logger:  m.logger,
	}

	return tea.Exec(cmd, func(err error) tea.Msg {
		if err != nil {
			return editErrorMsg{err: err}
		}

		if cmd.newData == nil {
			return editCancelledMsg{}
		}

		return editDataMsg{data: cmd.newData}
	})
}

// listKeys lists the keys under path with a preview of each value.
func (m model) listKeys(path string) string {
	data := m.data

	if path != "" {
		value, ok := lang.Resolve(m.data, strings.Split(path, "."))
		if !ok {
			return errorStyle.Render("no such key: " + path)
		}

		nested, ok := value.(*lang.Data)
		if !ok {
			return "  " + formatPreview(value)
		}

		data = nested
	}

	var b strings.Builder

	for key, value := range data.All() {
		fmt.Fprintf(&b, "  %s %s\n", key, hintStyle.Render(formatPreview(value)))
	}

	return strings.TrimSuffix(b.String(), "\n")
}

// listFuncs lists the functions matching pattern with their signatures.
func (m model) listFuncs(pattern string) string {
	names := m.funcs

	if pattern != "" {
		names = nil
		for _, match := range fuzzy.Find(pattern, m.funcs) {
			names = append(names, match.Str)
		}
	}

	var b strings.Builder

	for _, name := range names {
		sig, _ := signature(name)
		if sig == "" {
			sig = name + "(...)"
		}

		fmt.Fprintf(&b, "  %s\n", sig)
	}

	return strings.TrimSuffix(b.String(), "\n")
}

// dumpData returns the data context as YAML.
func (m model) dumpData() string {
	out, err := yaml.MarshalWithOptions(m.data.Map(), yaml.Indent(2))
	if err != nil {
		return errorStyle.Render("error: " + err.Error())
	}

	return strings.TrimSuffix(string(out), "\n")
}

// formatPreview generates a short preview of a data value.
func formatPreview(v lang.Value) string {
	const limit = 40

	switch v := v.(type) {
	case *lang.Data:
		return fmt.Sprintf("{ %d keys }", v.Len())

	case []lang.Value:
		return fmt.Sprintf("[ %d items ]", len(v))
	}

	s := lang.Stringify(v)
	if len(s) > limit {
		return s[:limit-3] + "..."
	}

	return s
}

func (m model) historyPrev(sameMode bool) (model, tea.Cmd) {
	for i := m.historyIdx - 1; i >= 0; i-- {
		entry, err := m.history.Entry(i)
		if err != nil || (sameMode && entry.Mode != m.mode) {
			continue
		}

		m.historyIdx = i

		return m.recall(entry), nil
	}

	return m, nil
}

func (m model) historyNext(sameMode bool) (model, tea.Cmd) {
	for i := m.historyIdx + 1; i < m.history.Len(); i++ {
		entry, err := m.history.Entry(i)
		if err != nil || (sameMode && entry.Mode != m.mode) {
			continue
		}

		m.historyIdx = i

		return m.recall(entry), nil
	}

	// Past the newest entry: clear input.
	if m.historyIdx < m.history.Len() {
		m.historyIdx = m.history.Len()
		m.input.SetValue("")
		refreshMatches(&m, false)
	}

	return m, nil
}

// recall places a history entry in the input, switching mode if needed.
func (m model) recall(entry HistoryEntry) model {
	if m.mode != entry.Mode {
		m, _ = m.switchToMode(entry.Mode)
	}

	m.input.SetValue(entry.Line)
	m.input.SetCursor(len(entry.Line))
	refreshMatches(&m, false)

	return m
}

// toggleMode switches between render and control modes, preserving input
// state.
func (m model) toggleMode() (model, tea.Cmd) {
	if m.mode == modeEval {
		return m.switchToMode(modeCtrl)
	}

	return m.switchToMode(modeEval)
}

// switchToMode switches to the specified mode, preserving input state.
func (m model) switchToMode(mode inputMode) (model, tea.Cmd) {
	if m.mode == modeEval {
		m.evalText = m.input.Value()
		m.evalCursor = m.input.Position()
	} else {
		m.ctrlText = m.input.Value()
		m.ctrlCursor = m.input.Position()
	}

	m.mode = mode
	if mode == modeEval {
		m.input.Prompt = promptStyle.Render(evalPrompt)
		m.input.SetValue(m.evalText)
		m.input.SetCursor(m.evalCursor)
	} else {
		m.input.Prompt = ctrlPromptStyle.Render(ctrlPrompt)
		m.input.SetValue(m.ctrlText)
		m.input.SetCursor(m.ctrlCursor)
	}

	refreshMatches(&m, false)

	return m, nil
}
