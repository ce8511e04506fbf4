package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"browsebot-cli/internal/config"

	tea "github.com/charmbracelet/bubbletea"
)

// ─── Slash command registry ─────────────────────────────────────────────────

type slashCmd struct {
	name string
	desc string
}

var slashCommands = []slashCmd{
	{"/help", "Show available commands"},
	{"/config", "Show current configuration"},
	{"/status", "Check backend health"},
	{"/clear", "Clear the screen"},
	{"/quit", "Exit Browsebot"},
}

// matchCommands returns the registered commands whose name starts with the
// current input. A bare "/" matches everything.
func matchCommands(input string) []slashCmd {
	input = strings.ToLower(strings.TrimSpace(input))
	if !strings.HasPrefix(input, "/") {
		return nil
	}

	var out []slashCmd
	for _, c := range slashCommands {
		if strings.HasPrefix(c.name, input) {
			out = append(out, c)
		}
	}
	return out
}

// ─── Command dispatcher ─────────────────────────────────────────────────────

func (m model) handleCommand(input string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}

	switch strings.ToLower(parts[0]) {
	case "/help", "/h":
		return m.cmdHelp()
	case "/config":
		return m.cmdConfig()
	case "/status":
		return m.cmdStatus()
	case "/clear":
		return m.cmdClear()
	case "/quit", "/exit", "/q":
		return m, tea.Quit
	default:
		return m, tea.Println(errorMsgStyle.Render(fmt.Sprintf("  ✗ Unknown command: %s — type /help", parts[0])))
	}
}

// ─── /help ──────────────────────────────────────────────────────────────────

func (m model) cmdHelp() (tea.Model, tea.Cmd) {
	pad := func(s string, w int) string {
		for len(s) < w {
			s += " "
		}
		return s
	}

	lines := []tea.Cmd{
		tea.Println(""),
		tea.Println(dimStyle.Render("  Shortcuts:")),
		tea.Println(""),
	}
	for _, c := range slashCommands {
		lines = append(lines, tea.Println("  "+pad(hintKeyStyle.Render(c.name), 24)+dimStyle.Render(c.desc)))
	}
	lines = append(lines,
		tea.Println(""),
		tea.Println(dimStyle.Render("  Or just type a question to start browsing!")),
		tea.Println(dimStyle.Render("  Esc cancels an answer in progress. Mode and sources: browsebot set")),
		tea.Println(""),
	)
	return m, tea.Sequence(lines...)
}

// ─── /config ────────────────────────────────────────────────────────────────

func (m model) cmdConfig() (tea.Model, tea.Cmd) {
	return m, tea.Sequence(
		tea.Println(""),
		tea.Println(dimStyle.Render("  Configuration:")),
		tea.Println(fmt.Sprintf("    Profile:     %s", config.ProfileName(m.profile))),
		tea.Println(fmt.Sprintf("    Server:      %s", m.cfg.Server)),
		tea.Println(fmt.Sprintf("    Mode:        %s", modeStr(m.cfg))),
		tea.Println(fmt.Sprintf("    Max sources: %d", m.cfg.MaxSources)),
		tea.Println(""),
	)
}

// ─── /status ────────────────────────────────────────────────────────────────

func (m model) cmdStatus() (tea.Model, tea.Cmd) {
	client := m.client

	return m, tea.Sequence(
		tea.Println(statusStyle.Render("  ⟳ Checking backend...")),
		func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			health, err := client.Health(ctx)
			if err != nil {
				return statusResultMsg{err: err}
			}
			info, err := client.ServiceInfo(ctx)
			if err != nil {
				return statusResultMsg{info: health.Status}
			}
			return statusResultMsg{info: fmt.Sprintf("%s — %s", health.Status, info.Service)}
		},
	)
}

// ─── /clear ─────────────────────────────────────────────────────────────────

func (m model) cmdClear() (tea.Model, tea.Cmd) {
	return m, tea.ClearScreen
}
