package display

import (
	"fmt"
	"io"

	"browsebot-cli/internal/api"
	"browsebot-cli/internal/chat"
)

// StreamPrinter writes one streaming turn to the terminal as conversation
// snapshots arrive. Tokens print as raw deltas the moment they land; the
// failure notice and citations print when the message closes.
type StreamPrinter struct {
	w          io.Writer
	botID      string
	printedLen int
	finished   bool
}

func NewStreamPrinter(w io.Writer) *StreamPrinter {
	return &StreamPrinter{w: w}
}

// Advance consumes a snapshot and prints whatever it unlocked. Repeated
// identical snapshots print nothing.
func (p *StreamPrinter) Advance(msgs []chat.Message) {
	if p.finished || len(msgs) == 0 {
		return
	}

	last := msgs[len(msgs)-1]
	if last.Sender != chat.SenderBot {
		return
	}
	if p.botID == "" {
		p.botID = last.ID
	}
	if last.ID != p.botID {
		return
	}

	if last.Streaming {
		p.printDelta(last.Text)
		return
	}

	p.finished = true
	if last.Text == chat.ErrorReplyText && p.printedLen != len(last.Text) {
		if p.printedLen > 0 {
			fmt.Fprintln(p.w)
		}
		fmt.Fprintf(p.w, "%s✗%s %s\n", Red, Reset, last.Text)
	} else {
		p.printDelta(last.Text)
		fmt.Fprintln(p.w)
	}

	if len(last.Sources) > 0 {
		p.printSources(last.Sources)
	}
}

// Finish closes out a turn whose message never closed, terminating the
// partial line.
func (p *StreamPrinter) Finish() {
	if p.finished {
		return
	}
	p.finished = true
	if p.printedLen > 0 {
		fmt.Fprintln(p.w)
	}
}

// Printed reports whether any answer text reached the terminal.
func (p *StreamPrinter) Printed() bool {
	return p.printedLen > 0
}

func (p *StreamPrinter) printDelta(text string) {
	if p.printedLen >= len(text) {
		return
	}
	fmt.Fprint(p.w, text[p.printedLen:])
	p.printedLen = len(text)
}

func (p *StreamPrinter) printSources(sources []api.Source) {
	fmt.Fprintf(p.w, "\n%s📎 Sources:%s\n", Bold+Blue, Reset)
	for i, s := range sources {
		title := s.Title
		if title == "" {
			title = s.URL
		}
		fmt.Fprintf(p.w, "   %d. %s\n", i+1, title)
		if s.URL != "" && s.URL != title {
			fmt.Fprintf(p.w, "      %s%s%s\n", Gray, s.URL, Reset)
		}
	}
}
