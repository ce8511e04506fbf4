package chat

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"browsebot-cli/internal/api"
)

// ErrorReplyText replaces the body of a bot message whose stream failed.
const ErrorReplyText = "Sorry, something went wrong while answering. Please try again."

type Sender int

const (
	SenderUser Sender = iota
	SenderBot
)

func (s Sender) String() string {
	if s == SenderUser {
		return "user"
	}
	return "bot"
}

// Message is one entry in the conversation. A bot message is "open" while
// Streaming is true: its text and sources can still grow. Once closed it
// never changes again.
type Message struct {
	ID        string
	Sender    Sender
	Text      string
	Sources   []api.Source
	Streaming bool
}

// Ledger is the append-only conversation record. At most one message is
// open at any time. Mutations come from the session goroutine while
// renderers read snapshots, hence the lock.
type Ledger struct {
	mu      sync.RWMutex
	msgs    []Message
	openID  string
	entropy *ulid.MonotonicEntropy
}

func NewLedger() *Ledger {
	return &Ledger{
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}
}

// nextID must be called with mu held.
func (l *Ledger) nextID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), l.entropy).String()
}

// AppendUser records a user message and returns its id.
func (l *Ledger) AppendUser(text string) string {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := l.nextID()
	l.msgs = append(l.msgs, Message{ID: id, Sender: SenderUser, Text: text})
	return id
}

// AppendBot records an already-complete bot message, as produced by the
// non-streaming request path.
func (l *Ledger) AppendBot(text string, sources []api.Source) string {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := l.nextID()
	l.msgs = append(l.msgs, Message{ID: id, Sender: SenderBot, Text: text, Sources: sources})
	return id
}

// BeginBotMessage opens a new streaming bot message. It fails if another
// message is still open.
func (l *Ledger) BeginBotMessage() (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.openID != "" {
		return "", fmt.Errorf("message %s is still streaming", l.openID)
	}

	id := l.nextID()
	l.msgs = append(l.msgs, Message{ID: id, Sender: SenderBot, Streaming: true})
	l.openID = id
	return id, nil
}

// AppendToken appends a text fragment to the open message. Tokens addressed
// to anything but the open message are dropped.
func (l *Ledger) AppendToken(id, content string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if m := l.open(id); m != nil {
		m.Text += content
	}
}

// SetSources attaches citations to the open message, replacing any earlier
// set.
func (l *Ledger) SetSources(id string, sources []api.Source) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if m := l.open(id); m != nil {
		m.Sources = append([]api.Source(nil), sources...)
	}
}

// CloseOK finalizes the open message with the text it accumulated.
func (l *Ledger) CloseOK(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if m := l.open(id); m != nil {
		m.Streaming = false
		l.openID = ""
	}
}

// CloseError finalizes the open message as failed, replacing whatever text
// had streamed in with the fixed failure notice.
func (l *Ledger) CloseError(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if m := l.open(id); m != nil {
		m.Text = ErrorReplyText
		m.Streaming = false
		l.openID = ""
	}
}

// open returns the open message if id matches it, else nil. Must be called
// with mu held.
func (l *Ledger) open(id string) *Message {
	if id == "" || id != l.openID {
		return nil
	}
	for i := len(l.msgs) - 1; i >= 0; i-- {
		if l.msgs[i].ID == id {
			return &l.msgs[i]
		}
	}
	return nil
}

// Snapshot returns a copy of the conversation safe to read while streaming
// continues.
func (l *Ledger) Snapshot() []Message {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Message, len(l.msgs))
	copy(out, l.msgs)
	for i := range out {
		if len(out[i].Sources) > 0 {
			out[i].Sources = append([]api.Source(nil), out[i].Sources...)
		}
	}
	return out
}

// Len returns the number of messages recorded so far.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.msgs)
}

// OpenID returns the id of the currently streaming message, or "".
func (l *Ledger) OpenID() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.openID
}
