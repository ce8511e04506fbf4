package tui

import (
	"context"

	"browsebot-cli/internal/chat"

	tea "github.com/charmbracelet/bubbletea"
)

// ─── Messages sent from the turn goroutine to Bubble Tea ────────────────────

// ledgerTickMsg signals that the session mutated the conversation and a new
// snapshot is worth rendering.
type ledgerTickMsg struct{}

// turnDoneMsg signals that Submit returned and the channel drained.
type turnDoneMsg struct{}

type statusResultMsg struct {
	info string
	err  error
}

// ─── Turn command ───────────────────────────────────────────────────────────
//
// beginTurn runs Submit in a goroutine and forwards every ledger change
// through a channel. The model's Update reads one message per waitForTurn
// and re-arms until the channel closes.

var activeTurnCh chan tea.Msg

func beginTurn(sess *chat.Session, ctx context.Context, query string) tea.Cmd {
	ch := make(chan tea.Msg, 64)
	activeTurnCh = ch

	sess.SetOnChange(func() {
		ch <- ledgerTickMsg{}
	})

	go func() {
		defer close(ch)
		sess.Submit(ctx, query)
	}()

	return waitForTurn(ch)
}

// waitForTurn reads the next message from the channel.
func waitForTurn(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return turnDoneMsg{}
		}
		return msg
	}
}
