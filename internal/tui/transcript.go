package tui

import (
	"strings"

	"browsebot-cli/internal/api"
	"browsebot-cli/internal/chat"
)

// ─── Transcript tracker ─────────────────────────────────────────────────────
//
// transcript converts successive conversation snapshots into printable line
// events for one bot turn. The model prints answer text as soon as each line
// completes; partial lines stay buffered so streaming output never tears.
// Pure state machine, no dependency on Bubble Tea — tested directly.

type lineKind int

const (
	lineText    lineKind = iota // one complete line of answer text
	lineNotice                  // failure notice (streamed text was replaced)
	lineSources                 // citations attached when the message closed
)

type outputLine struct {
	kind    lineKind
	text    string
	sources []api.Source
}

type transcript struct {
	botID    string // id of the bot message this turn tracks
	seen     string // bot text already consumed from snapshots
	buffer   string // trailing partial line not yet printed
	finished bool
}

func newTranscript() *transcript {
	return &transcript{}
}

// advance consumes a snapshot and returns the lines it unlocked. Safe to
// call repeatedly with identical snapshots; it only ever emits new content.
func (t *transcript) advance(msgs []chat.Message) []outputLine {
	if t.finished || len(msgs) == 0 {
		return nil
	}

	last := msgs[len(msgs)-1]
	if last.Sender != chat.SenderBot {
		return nil
	}
	if t.botID == "" {
		t.botID = last.ID
	}
	if last.ID != t.botID {
		return nil
	}

	var lines []outputLine

	if last.Streaming {
		return t.consume(last.Text, lines)
	}

	// The message closed. A body that no longer extends what we printed was
	// replaced by the failure notice.
	t.finished = true
	if last.Text == chat.ErrorReplyText && last.Text != t.seen {
		t.buffer = ""
		lines = append(lines, outputLine{kind: lineNotice, text: last.Text})
	} else {
		lines = t.consume(last.Text, lines)
		lines = t.flush(lines)
	}

	if len(last.Sources) > 0 {
		lines = append(lines, outputLine{kind: lineSources, sources: last.Sources})
	}
	return lines
}

// abort flushes whatever partial line is buffered, for turns that end
// without the message closing.
func (t *transcript) abort() []outputLine {
	if t.finished {
		return nil
	}
	t.finished = true
	return t.flush(nil)
}

func (t *transcript) consume(text string, lines []outputLine) []outputLine {
	if !strings.HasPrefix(text, t.seen) {
		return lines
	}
	delta := text[len(t.seen):]
	if delta == "" {
		return lines
	}
	t.seen = text

	combined := t.buffer + delta
	parts := strings.Split(combined, "\n")
	for i, p := range parts {
		if i < len(parts)-1 {
			lines = append(lines, outputLine{kind: lineText, text: p})
		} else {
			t.buffer = p
		}
	}
	return lines
}

func (t *transcript) flush(lines []outputLine) []outputLine {
	if t.buffer != "" {
		lines = append(lines, outputLine{kind: lineText, text: t.buffer})
		t.buffer = ""
	}
	return lines
}
