// Package tui provides the interactive Bubble Tea chat client for budgetbot.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/budgetbot/internal/chat"
	"github.com/theirongolddev/budgetbot/internal/cli"
	"github.com/theirongolddev/budgetbot/internal/config"
	"github.com/theirongolddev/budgetbot/internal/model"
	"github.com/theirongolddev/budgetbot/internal/tui/components"
	"github.com/theirongolddev/budgetbot/internal/tui/theme"
)

// ReplyMsg is sent when the session has answered a message.
type ReplyMsg struct {
	Reply chat.Reply
	Err   error
}

type entry struct {
	speaker model.Speaker
	text    string
}

// Options configures the App.
type Options struct {
	// Timeout bounds one message round trip. Zero means 30s.
	Timeout time.Duration
	// ConfigPath is where the first-run form saves its answers.
	ConfigPath string
	// FirstRun shows the setup form before the chat.
	FirstRun bool
}

// App is the root Bubble Tea model.
type App struct {
	session *chat.Session
	opts    Options

	// Cached so View never waits on a message in flight.
	report model.StatusReport

	transcript []entry
	busy       bool

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	ready    bool

	width    int
	height   int
	showHelp bool

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals SetupValues
	setupErr  error
}

const (
	minTerminalWidth = 60
	sidebarMinWidth  = 100
	sidebarWidth     = 44
	labelWidth       = 14

	inputHeight  = 3
	headerHeight = 1
	statusHeight = 1
)

// NewApp creates a chat UI over s.
func NewApp(s *chat.Session, opts Options) App {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	in := textinput.New()
	in.Placeholder = `Try "I spent $25 on groceries" or "help"`
	in.CharLimit = 500
	in.Prompt = "You: "
	in.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent)

	a := App{
		session: s,
		opts:    opts,
		input:   in,
		spinner: sp,
		report:  s.BudgetStatus(""),
	}
	for _, t := range s.History() {
		a.transcript = append(a.transcript, entry{speaker: t.Speaker, text: t.Text})
	}

	if opts.FirstRun {
		cfg, err := config.Load(opts.ConfigPath)
		if err != nil {
			cfg = config.DefaultConfig()
		}
		a.setupVals = SetupValuesFrom(cfg)
		a.setupForm = NewSetupForm(&a.setupVals)
	}
	return a
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	if a.setupForm != nil {
		return a.setupForm.Init()
	}
	return textinput.Blink
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.layout()
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.setupForm != nil {
			return a.updateSetupForm(msg)
		}
		return a.updateKey(msg)

	case ReplyMsg:
		a.busy = false
		if msg.Err != nil {
			a.appendEntry(model.SpeakerBot, chat.FailureReply(msg.Err))
		} else {
			a.appendEntry(model.SpeakerBot, msg.Reply.Text)
		}
		a.report = a.session.BudgetStatus("")
		return a, nil

	case spinner.TickMsg:
		if !a.busy {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		a.refreshTranscript()
		return a, cmd
	}

	// Forward unhandled messages to the setup form (cursor blinks, etc.)
	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "f1":
		a.showHelp = !a.showHelp
		return a, nil
	case "esc":
		if a.showHelp {
			a.showHelp = false
			return a, nil
		}
		return a, tea.Quit
	case "pgup", "pgdown", "ctrl+u", "ctrl+d":
		var cmd tea.Cmd
		a.viewport, cmd = a.viewport.Update(msg)
		return a, cmd
	case "enter":
		return a.submit()
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a App) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(a.input.Value())
	if text == "" || a.busy {
		return a, nil
	}
	a.input.Reset()

	if chat.IsQuit(text) {
		a.appendEntry(model.SpeakerUser, text)
		a.appendEntry(model.SpeakerBot, chat.Farewell)
		return a, tea.Quit
	}

	a.appendEntry(model.SpeakerUser, text)
	a.busy = true
	a.refreshTranscript()
	return a, tea.Batch(a.processCmd(text), a.spinner.Tick)
}

// processCmd runs one message through the session off the UI goroutine.
func (a App) processCmd(text string) tea.Cmd {
	s, timeout := a.session, a.opts.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		r, err := s.Process(ctx, text)
		return ReplyMsg{Reply: r, Err: err}
	}
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	if a.setupForm.State == huh.StateCompleted {
		a.setupErr = a.saveSetup()
		a.setupForm = nil
		a.report = a.session.BudgetStatus("")
		if a.setupErr != nil {
			a.appendEntry(model.SpeakerBot, "Setup could not be saved: "+a.setupErr.Error())
		}
		return a, textinput.Blink
	}

	if a.setupForm.State == huh.StateAborted {
		a.setupForm = nil
		return a, textinput.Blink
	}

	return a, cmd
}

// saveSetup persists the form answers and applies the new total budget to
// the running session.
func (a App) saveSetup() error {
	cfg, err := config.Load(a.opts.ConfigPath)
	if err != nil {
		cfg = config.DefaultConfig()
	}
	if err := ApplySetup(&cfg, a.setupVals); err != nil {
		return err
	}
	theme.SetActive(cfg.Appearance.Theme)
	if err := config.Save(cfg, a.opts.ConfigPath); err != nil {
		return err
	}

	total, err := decimal.NewFromString(strings.TrimPrefix(strings.TrimSpace(a.setupVals.TotalBudget), "$"))
	if err != nil {
		return nil
	}
	return a.session.SetTotalBudget(context.Background(), total)
}

func (a *App) appendEntry(s model.Speaker, text string) {
	a.transcript = append(a.transcript, entry{speaker: s, text: text})
	a.refreshTranscript()
}

func (a App) hasSidebar() bool {
	return a.width >= sidebarMinWidth
}

func (a *App) layout() {
	w := a.width
	if a.hasSidebar() {
		w -= sidebarWidth
	}
	h := a.height - inputHeight - headerHeight - statusHeight
	if h < 3 {
		h = 3
	}
	if !a.ready {
		a.viewport = viewport.New(w, h)
		a.ready = true
	} else {
		a.viewport.Width = w
		a.viewport.Height = h
	}
	a.input.Width = w - lipgloss.Width(a.input.Prompt) - 4
	a.refreshTranscript()
}

func (a *App) refreshTranscript() {
	if !a.ready {
		return
	}
	a.viewport.SetContent(a.renderTranscript(a.viewport.Width))
	a.viewport.GotoBottom()
}

func (a App) renderTranscript(width int) string {
	t := theme.Active
	userTag := lipgloss.NewStyle().Foreground(t.Accent).Bold(true).Render("You")
	botTag := lipgloss.NewStyle().Foreground(t.TextMuted).Bold(true).Render("Bot")
	body := lipgloss.NewStyle().Foreground(t.TextPrimary).PaddingLeft(2).Width(max(width-2, 10))

	if len(a.transcript) == 0 && !a.busy {
		return lipgloss.NewStyle().Foreground(t.TextDim).Render(
			"\n  Tell me about your spending. Press F1 for keys, type 'quit' to leave.")
	}

	var b strings.Builder
	for _, e := range a.transcript {
		tag := botTag
		if e.speaker == model.SpeakerUser {
			tag = userTag
		}
		b.WriteString(tag)
		b.WriteString("\n")
		b.WriteString(body.Render(e.text))
		b.WriteString("\n\n")
	}
	if a.busy {
		b.WriteString(botTag)
		b.WriteString("\n  ")
		b.WriteString(a.spinner.View())
		b.WriteString(" thinking...")
	}
	return strings.TrimRight(b.String(), "\n")
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return fmt.Sprintf("\n  Terminal too narrow (%d cols)\n\n  budgetbot needs at least %d columns.\n",
			a.width, minTerminalWidth)
	}
	if a.setupForm != nil {
		return a.setupForm.View()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewMain() string {
	t := theme.Active

	title := lipgloss.NewStyle().Foreground(t.AccentBright).Bold(true).Render("◈ budgetbot")
	sub := lipgloss.NewStyle().Foreground(t.TextMuted).Render(" · " + cli.FormatMonth(a.report.Month))
	header := lipgloss.NewStyle().Width(a.width).Render(title + sub)

	body := a.viewport.View()
	if a.hasSidebar() {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, a.viewSidebar(a.viewport.Height))
	}

	inputBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Width(a.width - 2).
		Render(a.input.View())

	info := fmt.Sprintf("%s of %s", cli.FormatMoney(a.report.Overall.Spent), cli.FormatMoney(a.report.Overall.Budget))
	status := components.RenderStatusBar(a.width, "[enter]send  [pgup/pgdn]scroll  [f1]help  [esc]quit", info)

	return lipgloss.JoinVertical(lipgloss.Left, header, body, inputBox, status)
}

func (a App) viewSidebar(height int) string {
	t := theme.Active
	heading := lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	muted := lipgloss.NewStyle().Foreground(t.TextMuted)

	barW := sidebarWidth - labelWidth - 10
	var b strings.Builder
	b.WriteString(heading.Render("Budget"))
	b.WriteString("\n\n")
	for _, cs := range a.report.Categories {
		b.WriteString(components.BudgetBar(string(cs.Category), cs.PercentUsed, cs.Level, labelWidth, barW))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	o := a.report.Overall
	b.WriteString(components.BudgetBar("overall", o.PercentUsed, o.Level, labelWidth, barW))
	b.WriteString("\n")
	b.WriteString(muted.Render(fmt.Sprintf("%s remaining", cli.FormatMoney(o.Remaining))))

	return lipgloss.NewStyle().
		Width(sidebarWidth).
		Height(height).
		PaddingLeft(2).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(t.Border).
		Render(b.String())
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted)

	bindings := []struct{ key, desc string }{
		{"enter", "Send message"},
		{"pgup pgdn", "Scroll transcript"},
		{"f1", "Toggle this help"},
		{"esc", "Quit (or close help)"},
		{"quit exit bye", "Leave from the prompt"},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n\n")
	for _, kb := range bindings {
		b.WriteString(keyStyle.Render(fmt.Sprintf("%-14s", kb.key)))
		b.WriteString(descStyle.Render(kb.desc))
		b.WriteString("\n")
	}

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()))
}
