package tui

import (
	"context"
	"fmt"
	"strings"

	"browsebot-cli/internal/api"
	"browsebot-cli/internal/chat"
	"browsebot-cli/internal/config"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
)

// ─── App mode ───────────────────────────────────────────────────────────────

type appMode int

const (
	modeIdle appMode = iota
	modeStreaming
)

// ─── Model ──────────────────────────────────────────────────────────────────

type model struct {
	width  int
	height int

	// Bubble Tea components
	input   textinput.Model
	spinner spinner.Model

	// App state
	mode    appMode
	cfg     *config.Config
	client  api.BrowsebotAPI
	session *chat.Session
	version string
	profile string
	log     zerolog.Logger

	// Turn state
	transcript *transcript
	cancelTurn context.CancelFunc

	// UI state
	ready        bool
	cmdMenuIdx   int    // selected index in command menu
	cmdMenuOpen  bool   // whether the command menu is visible
	lastInputVal string // track input changes to reset menu index

	// Input history
	history      []string
	historyIdx   int    // current position in history (-1 = not browsing)
	historySaved string // saved input value when entering history mode
}

func initialModel(version, profile string, log zerolog.Logger) model {
	ti := textinput.New()
	ti.Placeholder = "Ask anything, or type /help..."
	ti.Focus()
	ti.CharLimit = 4096
	ti.Prompt = "❯ "
	ti.PromptStyle = promptSymbol
	ti.Cursor.Style = lipgloss.NewStyle().Foreground(colorTeal)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorTeal)

	cfg, err := config.Load(profile)
	if err != nil {
		cfg = &config.Config{Profile: profile}
	}

	client := api.NewClient(cfg, log)
	sess := chat.NewSession(client, chat.Options{
		Stream:     cfg.Stream,
		MaxSources: cfg.MaxSources,
	}, log)

	return model{
		input:      ti,
		spinner:    sp,
		version:    version,
		profile:    profile,
		cfg:        cfg,
		client:     client,
		session:    sess,
		log:        log.With().Str("component", "tui").Logger(),
		mode:       modeIdle,
		history:    make([]string, 0),
		historyIdx: -1,
	}
}

// ─── Init ───────────────────────────────────────────────────────────────────

func (m model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
	)
}

// ─── Update ─────────────────────────────────────────────────────────────────

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = m.width - 6

		if !m.ready {
			m.ready = true
			welcome := renderWelcome(m.version, m.cfg.Server, modeStr(m.cfg), m.width)
			cmds = append(cmds, tea.Println(welcome))
		}

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			if m.mode == modeStreaming {
				return m.cancelActiveTurn()
			}
			return m, tea.Quit

		case tea.KeyEsc:
			if m.mode == modeStreaming {
				return m.cancelActiveTurn()
			}
			if m.cmdMenuOpen {
				m.cmdMenuOpen = false
				m.cmdMenuIdx = 0
				return m, nil
			}

		case tea.KeyUp:
			if m.mode == modeIdle {
				if m.cmdMenuOpen {
					matches := matchCommands(m.input.Value())
					if len(matches) > 0 {
						m.cmdMenuIdx--
						if m.cmdMenuIdx < 0 {
							m.cmdMenuIdx = len(matches) - 1
						}
						return m, nil
					}
				} else if len(m.history) > 0 {
					if m.historyIdx == -1 {
						m.historySaved = m.input.Value()
						m.historyIdx = len(m.history) - 1
					} else if m.historyIdx > 0 {
						m.historyIdx--
					}
					m.input.SetValue(m.history[m.historyIdx])
					m.input.CursorEnd()
					return m, nil
				}
			}

		case tea.KeyDown:
			if m.mode == modeIdle {
				if m.cmdMenuOpen {
					matches := matchCommands(m.input.Value())
					if len(matches) > 0 {
						m.cmdMenuIdx++
						if m.cmdMenuIdx >= len(matches) {
							m.cmdMenuIdx = 0
						}
						return m, nil
					}
				} else if m.historyIdx != -1 {
					m.historyIdx++
					if m.historyIdx >= len(m.history) {
						m.historyIdx = -1
						m.input.SetValue(m.historySaved)
						m.historySaved = ""
					} else {
						m.input.SetValue(m.history[m.historyIdx])
					}
					m.input.CursorEnd()
					return m, nil
				}
			}

		case tea.KeyTab:
			if m.mode == modeIdle && m.cmdMenuOpen {
				matches := matchCommands(m.input.Value())
				if len(matches) > 0 {
					idx := m.cmdMenuIdx
					if idx < 0 || idx >= len(matches) {
						idx = 0
					}
					m.input.SetValue(matches[idx].name + " ")
					m.input.CursorEnd()
					m.cmdMenuOpen = false
					m.cmdMenuIdx = 0
				}
				return m, nil
			}

		case tea.KeyEnter:
			if m.mode == modeIdle && m.cmdMenuOpen && m.cmdMenuIdx >= 0 {
				matches := matchCommands(m.input.Value())
				if m.cmdMenuIdx < len(matches) {
					m.input.SetValue(matches[m.cmdMenuIdx].name + " ")
					m.input.CursorEnd()
					m.cmdMenuOpen = false
					m.cmdMenuIdx = 0
					return m, nil
				}
			}

			value := strings.TrimSpace(m.input.Value())
			if value == "" {
				return m, nil
			}

			if len(m.history) == 0 || m.history[len(m.history)-1] != value {
				m.history = append(m.history, value)
				if len(m.history) > 1000 {
					m.history = m.history[len(m.history)-1000:]
				}
			}
			m.historyIdx = -1
			m.historySaved = ""

			m.input.SetValue("")
			m.cmdMenuOpen = false
			m.cmdMenuIdx = 0

			return m.dispatchInput(value)
		}

	// ── Turn messages ─────────────────────────────────────────────────
	case ledgerTickMsg:
		if m.transcript == nil {
			return m, nil
		}
		for _, line := range m.transcript.advance(m.session.Snapshot()) {
			cmds = append(cmds, printLine(line))
		}
		if activeTurnCh != nil {
			cmds = append(cmds, waitForTurn(activeTurnCh))
		}
		return m, tea.Batch(cmds...)

	case turnDoneMsg:
		return m.finishTurn()

	case statusResultMsg:
		if msg.err != nil {
			cmds = append(cmds, tea.Println(errorMsgStyle.Render("  ✗ "+msg.err.Error())))
		} else {
			cmds = append(cmds, tea.Println(successMsgStyle.Render("  ✓ "+msg.info)))
		}
		return m, tea.Batch(cmds...)
	}

	// Update sub-components
	var cmd tea.Cmd

	if m.mode != modeStreaming {
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.spinner, cmd = m.spinner.Update(msg)
	cmds = append(cmds, cmd)

	// Track input changes to open/close the command menu
	newVal := m.input.Value()
	if newVal != m.lastInputVal {
		m.lastInputVal = newVal
		if m.historyIdx != -1 && m.historyIdx < len(m.history) && m.history[m.historyIdx] != newVal {
			m.historyIdx = -1
			m.historySaved = ""
		}
		if strings.HasPrefix(newVal, "/") {
			m.cmdMenuOpen = true
			m.cmdMenuIdx = 0
		} else {
			m.cmdMenuOpen = false
			m.cmdMenuIdx = 0
		}
	}

	return m, tea.Batch(cmds...)
}

// ─── Turn lifecycle ─────────────────────────────────────────────────────────

func (m model) dispatchInput(value string) (tea.Model, tea.Cmd) {
	if strings.HasPrefix(value, "/") {
		return m.handleCommand(value)
	}
	return m.submitQuestion(value)
}

func (m model) submitQuestion(q string) (tea.Model, tea.Cmd) {
	if m.session.Busy() {
		return m, tea.Println(warnMsgStyle.Render("  ! Still answering the previous question."))
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancelTurn = cancel
	m.transcript = newTranscript()
	m.mode = modeStreaming

	return m, tea.Batch(
		tea.Println(userPromptStyle.Render("❯ ")+q),
		tea.Println(""),
		beginTurn(m.session, ctx, q),
	)
}

func (m model) cancelActiveTurn() (tea.Model, tea.Cmd) {
	if m.cancelTurn != nil {
		m.cancelTurn()
	}
	// The turn goroutine notices the cancel, fails the open message, and
	// closes the channel; turnDoneMsg finishes the cleanup.
	return m, tea.Println(warnMsgStyle.Render("  ! Cancelled."))
}

func (m model) finishTurn() (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if m.transcript != nil {
		// Catch any snapshot that landed between the last tick and close.
		for _, line := range m.transcript.advance(m.session.Snapshot()) {
			cmds = append(cmds, printLine(line))
		}
		if m.session.Ledger().OpenID() != "" {
			for _, line := range m.transcript.abort() {
				cmds = append(cmds, printLine(line))
			}
			cmds = append(cmds, tea.Println(warnMsgStyle.Render("  ! The answer ended early; showing what arrived.")))
		}
	}
	cmds = append(cmds, tea.Println(""))

	m.mode = modeIdle
	m.cancelTurn = nil
	m.transcript = nil
	activeTurnCh = nil
	return m, tea.Sequence(cmds...)
}

// printLine turns one transcript line into a print command.
func printLine(line outputLine) tea.Cmd {
	switch line.kind {
	case lineNotice:
		return tea.Println(errorMsgStyle.Render("  ✗ " + line.text))
	case lineSources:
		return tea.Println(renderSources(line.sources))
	default:
		return tea.Println("  " + line.text)
	}
}

func renderSources(sources []api.Source) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(sourceHeaderStyle.Render("  📎 Sources:"))
	for i, s := range sources {
		title := s.Title
		if title == "" {
			title = s.URL
		}
		b.WriteString(fmt.Sprintf("\n     %d. %s", i+1, title))
		if s.URL != "" && s.URL != title {
			b.WriteString("\n        " + dimStyle.Render(s.URL))
		}
	}
	return b.String()
}

// ─── View ───────────────────────────────────────────────────────────────────
//
// Inline mode: View() only shows the input prompt + hints.
// All output is printed above via tea.Println.

func (m model) View() string {
	if !m.ready {
		return ""
	}

	var s strings.Builder

	if m.mode == modeStreaming {
		s.WriteString(m.spinner.View() + " " + statusStyle.Render("Browsing..."))
	} else {
		s.WriteString(m.input.View())
	}
	s.WriteString("\n")

	sepWidth := min(m.width, 80)
	if sepWidth < 20 {
		sepWidth = 20
	}
	s.WriteString(separatorStyle.Render(strings.Repeat("─", sepWidth)))
	s.WriteString("\n")

	s.WriteString(m.renderHints())

	return s.String()
}

// ─── Hint bar ───────────────────────────────────────────────────────────────

func (m model) renderHints() string {
	if m.mode == modeStreaming {
		return hintBarStyle.Render("  Esc cancel")
	}

	if m.cmdMenuOpen {
		matches := matchCommands(m.input.Value())
		if len(matches) > 0 {
			return m.renderCommandMenu(matches)
		}
	}

	return hintBarStyle.Render("  /help for commands")
}

func (m model) renderCommandMenu(matches []slashCmd) string {
	maxLen := 0
	for _, c := range matches {
		if len(c.name) > maxLen {
			maxLen = len(c.name)
		}
	}

	var lines []string
	for i, c := range matches {
		padded := c.name
		for len(padded) < maxLen {
			padded += " "
		}

		var line string
		if i == m.cmdMenuIdx {
			line = "  " + cmdSelectedNameStyle.Render(padded) + "  " + cmdSelectedDescStyle.Render(c.desc)
		} else {
			line = "  " + cmdNameStyle.Render(padded) + "  " + cmdDescStyle.Render(c.desc)
		}
		lines = append(lines, line)
	}

	lines = append(lines, hintBarStyle.Render("  ↑↓ navigate  Tab/Enter select"))

	return strings.Join(lines, "\n")
}

// ─── Helpers ────────────────────────────────────────────────────────────────

func modeStr(cfg *config.Config) string {
	if cfg.Stream {
		return "streaming"
	}
	return "request"
}
