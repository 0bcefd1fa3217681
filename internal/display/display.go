// Package display provides the terminal UI using Bubble Tea.
//
// The [UI] type keeps the current recipe view, a timer bar and an input
// prompt at the bottom of the terminal. Narration and echoes are printed
// above the rendered area via Program.Println, so concurrent writes never
// garble the display.
package display

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hammamikhairi/ottoweb/internal/domain"
	"github.com/hammamikhairi/ottoweb/internal/engine"
	"github.com/hammamikhairi/ottoweb/internal/timer"
)

// Compile-time interface check.
var _ domain.Notifier = (*UI)(nil)

const promptText = "otto> "

// UI manages the terminal through Bubble Tea.
//
// Call [NewUI] then [UI.Run] (blocking). Other goroutines may call
// [UI.Show], [UI.Notify] and read [UI.InputChan] after [UI.WaitReady].
type UI struct {
	program *tea.Program
	inputCh chan string
	readyCh chan struct{}
	done    atomic.Bool
}

// NewUI creates the display.
func NewUI() *UI {
	u := &UI{
		inputCh: make(chan string, 16),
		readyCh: make(chan struct{}),
	}

	ti := textinput.New()
	ti.Prompt = promptText
	ti.PromptStyle = promptStyle
	ti.TextStyle = inputEchoStyle
	ti.Cursor.Style = promptStyle
	ti.CharLimit = 500
	ti.Width = 60
	ti.Focus()

	u.program = tea.NewProgram(model{
		input:   ti,
		inputCh: u.inputCh,
		readyCh: u.readyCh,
		echoFn:  u.printInput,
	})
	return u
}

// Run starts the Bubble Tea event loop. Blocks until quit.
func (u *UI) Run() error {
	_, err := u.program.Run()
	u.done.Store(true)
	return err
}

// WaitReady blocks until the event loop is running.
func (u *UI) WaitReady() { <-u.readyCh }

// Quit tells Bubble Tea to exit.
func (u *UI) Quit() { u.program.Quit() }

// InputChan returns completed input lines.
func (u *UI) InputChan() <-chan string { return u.inputCh }

// Show replaces the rendered session state. Thread-safe.
func (u *UI) Show(snap engine.Snapshot) {
	if u.done.Load() {
		return
	}
	u.program.Send(snapshotMsg(snap))
}

// Notify prints narration above the prompt.
func (u *UI) Notify(ctx context.Context, message string) error {
	u.println(chatStyle.Render("  " + message))
	return nil
}

// NotifyUrgent prints an alert above the prompt.
func (u *UI) NotifyUrgent(ctx context.Context, message string) error {
	u.println(urgentStyle.Render("  " + message))
	return nil
}

// PrintHint prints a dimmed line.
func (u *UI) PrintHint(text string) {
	u.println(secondaryStyle.Render("  " + text))
}

// PrintVoice echoes a recognized voice command.
func (u *UI) PrintVoice(text string) {
	u.println(secondaryStyle.Render("[voice] ") + primaryStyle.Render(text))
}

func (u *UI) printInput(text string) {
	u.println(promptStyle.Render("otto") + secondaryStyle.Render("> ") + inputEchoStyle.Render(text))
}

func (u *UI) println(line string) {
	if u.done.Load() {
		fmt.Println(line)
		return
	}
	u.program.Println(line)
}

// ── Bubble Tea model ─────────────────────────────────────────────

type snapshotMsg engine.Snapshot

type model struct {
	input   textinput.Model
	inputCh chan<- string
	readyCh chan struct{}
	echoFn  func(string)
	snap    engine.Snapshot
	width   int
}

func (m model) Init() tea.Cmd {
	ready := m.readyCh
	return tea.Batch(textinput.Blink, func() tea.Msg {
		close(ready)
		return nil
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyEnter:
			v := m.input.Value()
			m.input.Reset()
			if strings.TrimSpace(v) == "" {
				return m, nil
			}
			select {
			case m.inputCh <- v:
			default:
			}
			echo := m.echoFn
			return m, func() tea.Msg {
				echo(v)
				return nil
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		if msg.Width > len(promptText) {
			m.input.Width = msg.Width - len(promptText)
		}
		return m, nil

	case snapshotMsg:
		m.snap = engine.Snapshot(msg)
		return m, tea.SetWindowTitle(windowTitle(m.snap))
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) View() string {
	var b strings.Builder
	if body := renderSession(m.snap); body != "" {
		b.WriteString(body)
		b.WriteByte('\n')
	}
	if bar := renderTimers(m.snap.Timers, m.width); bar != "" {
		b.WriteString(bar)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	b.WriteString(m.input.View())
	return b.String()
}

// ── Rendering ────────────────────────────────────────────────────

var (
	barBg          = lipgloss.NewStyle().Background(lipgloss.Color("#27272a")).Foreground(lipgloss.Color("#a1a1aa"))
	timerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#fde68a"))
	sepStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#52525b"))
	promptStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#94a3b8"))
	titleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#e4e4e7")).Bold(true)
	chatStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#bae6fd"))
	stepStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#bbf7d0"))
	primaryStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#d4d4d8"))
	secondaryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#71717a"))
	checkedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#71717a")).Strikethrough(true)
	urgentStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#fca5a5"))
	inputEchoStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#a1a1aa"))
)

// renderSession draws the staging checklist, the current step or the
// completion notice.
func renderSession(s engine.Snapshot) string {
	if !s.Loaded() {
		return secondaryStyle.Render("  No recipe loaded.")
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("  " + s.Title))
	b.WriteByte('\n')

	switch s.State {
	case domain.SessionStaging:
		b.WriteString(stepStyle.Render("  Ingredients"))
		b.WriteByte('\n')
		for i, ing := range s.Ingredients {
			b.WriteString(ingredientLine(i, ing))
			b.WriteByte('\n')
		}
		b.WriteString(secondaryStyle.Render(`  Type "start" when everything is ready.`))

	case domain.SessionCooking:
		b.WriteString(stepStyle.Render(fmt.Sprintf("  Step %d of %d", s.StepIndex+1, s.StepCount)))
		b.WriteByte('\n')
		b.WriteString(primaryStyle.Render("  " + s.StepText))

	case domain.SessionComplete:
		b.WriteString(stepStyle.Render("  Recipe complete."))
	}
	return b.String()
}

func ingredientLine(i int, ing engine.Ingredient) string {
	if ing.Checked {
		return secondaryStyle.Render(fmt.Sprintf("  [x] %d. ", i+1)) + checkedStyle.Render(ing.Text)
	}
	return primaryStyle.Render(fmt.Sprintf("  [ ] %d. %s", i+1, ing.Text))
}

// renderTimers draws the timer bar, or "" when no timer runs.
func renderTimers(timers []domain.Timer, width int) string {
	if len(timers) == 0 {
		return ""
	}
	parts := make([]string, len(timers))
	for i, t := range timers {
		parts[i] = timerStyle.Render(timerText(t))
	}
	if width <= 0 {
		width = 80
	}
	return barBg.Width(width).Render(" " + strings.Join(parts, sepStyle.Render("  │  ")) + " ")
}

func timerText(t domain.Timer) string {
	return fmt.Sprintf("%s (%s)", t.Label, timer.Format(t.Remaining))
}

func windowTitle(s engine.Snapshot) string {
	if len(s.Timers) == 0 {
		if s.Title != "" {
			return "ottoweb: " + s.Title
		}
		return "ottoweb"
	}
	parts := make([]string, len(s.Timers))
	for i, t := range s.Timers {
		parts[i] = timerText(t)
	}
	return "ottoweb: " + strings.Join(parts, " | ")
}
