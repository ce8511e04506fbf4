package tui

import (
	"testing"

	"browsebot-cli/internal/api"
	"browsebot-cli/internal/chat"
)

func botMsg(id, text string, streaming bool, sources ...api.Source) chat.Message {
	return chat.Message{ID: id, Sender: chat.SenderBot, Text: text, Streaming: streaming, Sources: sources}
}

func userMsg(id, text string) chat.Message {
	return chat.Message{ID: id, Sender: chat.SenderUser, Text: text}
}

func collectText(lines []outputLine) []string {
	var out []string
	for _, l := range lines {
		if l.kind == lineText {
			out = append(out, l.text)
		}
	}
	return out
}

func hasKind(lines []outputLine, k lineKind) bool {
	for _, l := range lines {
		if l.kind == k {
			return true
		}
	}
	return false
}

func TestTranscriptStreamsCompleteLines(t *testing.T) {
	tr := newTranscript()
	u := userMsg("u1", "question")

	lines := tr.advance([]chat.Message{u, botMsg("b1", "first li", true)})
	if len(lines) != 0 {
		t.Fatalf("partial line emitted early: %+v", lines)
	}

	lines = tr.advance([]chat.Message{u, botMsg("b1", "first line\nsecond ", true)})
	got := collectText(lines)
	if len(got) != 1 || got[0] != "first line" {
		t.Fatalf("lines = %v, want [first line]", got)
	}

	lines = tr.advance([]chat.Message{u, botMsg("b1", "first line\nsecond part\n", true)})
	got = collectText(lines)
	if len(got) != 1 || got[0] != "second part" {
		t.Fatalf("lines = %v, want [second part]", got)
	}
}

func TestTranscriptCloseFlushesTail(t *testing.T) {
	tr := newTranscript()

	tr.advance([]chat.Message{botMsg("b1", "answer without newline", true)})
	lines := tr.advance([]chat.Message{botMsg("b1", "answer without newline", false)})

	got := collectText(lines)
	if len(got) != 1 || got[0] != "answer without newline" {
		t.Fatalf("lines = %v, want flushed tail", got)
	}
}

func TestTranscriptIdenticalSnapshotsEmitNothing(t *testing.T) {
	tr := newTranscript()
	snap := []chat.Message{botMsg("b1", "text\n", true)}

	first := tr.advance(snap)
	if len(collectText(first)) != 1 {
		t.Fatalf("first advance = %+v", first)
	}
	if again := tr.advance(snap); len(again) != 0 {
		t.Fatalf("repeated snapshot emitted %+v", again)
	}
}

func TestTranscriptErrorReplacement(t *testing.T) {
	tr := newTranscript()

	tr.advance([]chat.Message{botMsg("b1", "partial stream", true)})
	lines := tr.advance([]chat.Message{botMsg("b1", chat.ErrorReplyText, false)})

	if !hasKind(lines, lineNotice) {
		t.Fatalf("lines = %+v, want a notice", lines)
	}
	if hasKind(lines, lineText) {
		t.Errorf("replaced text must not leak as answer lines: %+v", lines)
	}
}

func TestTranscriptSourcesOnClose(t *testing.T) {
	tr := newTranscript()
	src := api.Source{URL: "https://go.dev", Title: "Go"}

	tr.advance([]chat.Message{botMsg("b1", "done\n", true)})
	lines := tr.advance([]chat.Message{botMsg("b1", "done\n", false, src)})

	var found bool
	for _, l := range lines {
		if l.kind == lineSources {
			found = true
			if len(l.sources) != 1 || l.sources[0].URL != "https://go.dev" {
				t.Errorf("sources = %+v", l.sources)
			}
		}
	}
	if !found {
		t.Fatalf("lines = %+v, want sources block", lines)
	}
}

func TestTranscriptNonStreamingMessage(t *testing.T) {
	// Request mode: the bot message appears already closed.
	tr := newTranscript()
	src := api.Source{URL: "https://x.org", Title: "X"}

	lines := tr.advance([]chat.Message{
		userMsg("u1", "q"),
		botMsg("b1", "line one\nline two", false, src),
	})

	got := collectText(lines)
	if len(got) != 2 || got[0] != "line one" || got[1] != "line two" {
		t.Fatalf("lines = %v", got)
	}
	if !hasKind(lines, lineSources) {
		t.Error("missing sources block")
	}
}

func TestTranscriptIgnoresOtherMessages(t *testing.T) {
	tr := newTranscript()

	tr.advance([]chat.Message{botMsg("b1", "mine", true)})
	lines := tr.advance([]chat.Message{botMsg("b1", "mine", false), botMsg("b2", "next turn", true)})
	if len(lines) != 0 {
		t.Errorf("advance tracked a foreign message: %+v", lines)
	}

	// Snapshot ending in a user message is also not ours.
	tr2 := newTranscript()
	if lines := tr2.advance([]chat.Message{userMsg("u1", "hello")}); len(lines) != 0 {
		t.Errorf("user message emitted lines: %+v", lines)
	}
}

func TestTranscriptAbort(t *testing.T) {
	tr := newTranscript()

	tr.advance([]chat.Message{botMsg("b1", "cut off mid", true)})
	lines := tr.abort()

	got := collectText(lines)
	if len(got) != 1 || got[0] != "cut off mid" {
		t.Fatalf("abort lines = %v, want buffered tail", got)
	}
	if again := tr.abort(); len(again) != 0 {
		t.Errorf("second abort emitted %+v", again)
	}
}
