package chat

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"

	"browsebot-cli/internal/api"
	"browsebot-cli/internal/service"
)

// Options fix the behavior of a session when it is created. There is no
// mid-flight toggle: a submission runs entirely in the mode the session was
// built with.
type Options struct {
	Stream     bool
	MaxSources int
}

// Session drives one conversation against the backend: it owns the ledger,
// serializes submissions, and applies stream events in arrival order.
type Session struct {
	client   api.BrowsebotAPI
	opts     Options
	ledger   *Ledger
	log      zerolog.Logger
	busy     atomic.Bool
	onChange func()
}

func NewSession(client api.BrowsebotAPI, opts Options, log zerolog.Logger) *Session {
	return &Session{
		client: client,
		opts:   opts,
		ledger: NewLedger(),
		log:    log.With().Str("component", "session").Logger(),
	}
}

// SetOnChange registers a hook fired after every ledger mutation. Set it
// before the first Submit; it is invoked from the submitting goroutine.
func (s *Session) SetOnChange(fn func()) {
	s.onChange = fn
}

func (s *Session) Ledger() *Ledger {
	return s.ledger
}

func (s *Session) Snapshot() []Message {
	return s.ledger.Snapshot()
}

// Busy reports whether a submission is in flight.
func (s *Session) Busy() bool {
	return s.busy.Load()
}

func (s *Session) changed() {
	if s.onChange != nil {
		s.onChange()
	}
}

// Submit runs one full turn: user message in, bot reply out. It returns
// false without touching the ledger or the network when the query is blank
// or another submission is still running. It blocks until the turn is over;
// callers that need a live prompt run it in a goroutine and watch OnChange.
func (s *Session) Submit(ctx context.Context, query string) bool {
	if strings.TrimSpace(query) == "" {
		return false
	}
	if !s.busy.CompareAndSwap(false, true) {
		s.log.Debug().Msg("submit rejected: session busy")
		return false
	}
	defer s.busy.Store(false)

	s.ledger.AppendUser(query)
	s.changed()

	if s.opts.Stream {
		s.streamTurn(ctx, query)
	} else {
		s.requestTurn(ctx, query)
	}
	return true
}

func (s *Session) streamTurn(ctx context.Context, query string) {
	id, err := s.ledger.BeginBotMessage()
	if err != nil {
		s.log.Error().Err(err).Msg("cannot open bot message")
		return
	}
	s.changed()

	events, errc, err := s.client.QueryStream(ctx, query, s.opts.MaxSources)
	if err != nil {
		s.log.Warn().Err(err).Msg("stream request failed")
		s.ledger.CloseError(id)
		s.changed()
		return
	}

	closed := false
	for ev := range events {
		switch ev := ev.(type) {
		case api.StartEvent:
			s.log.Debug().Str("query", ev.Query).Msg("stream started")
		case api.TokenEvent:
			s.ledger.AppendToken(id, ev.Content)
		case api.SourcesEvent:
			s.ledger.SetSources(id, ev.Sources)
		case api.ErrorEvent:
			s.log.Warn().Str("error", ev.Message).Msg("server reported stream error")
			s.ledger.CloseError(id)
			closed = true
		case api.DoneEvent:
			s.ledger.CloseOK(id)
			closed = true
		}
		s.changed()
	}

	if closed {
		return
	}

	// The channel closed without a terminal frame. A cancelled context or a
	// broken read fails the message; a clean early EOF leaves it open with
	// whatever text arrived.
	if ctx.Err() != nil {
		s.log.Debug().Msg("stream cancelled")
		s.ledger.CloseError(id)
		s.changed()
		return
	}
	select {
	case err := <-errc:
		if err != nil {
			s.log.Warn().Err(err).Msg("stream transport failed")
			s.ledger.CloseError(id)
			s.changed()
			return
		}
	default:
	}
	s.log.Debug().Str("id", id).Msg("stream ended without done frame, message left open")
}

func (s *Session) requestTurn(ctx context.Context, query string) {
	resp, err := s.client.Query(ctx, query, s.opts.MaxSources)
	if err != nil {
		s.log.Warn().Err(err).Msg("query failed")
		s.ledger.AppendBot(ErrorReplyText, nil)
		s.changed()
		return
	}

	s.ledger.AppendBot(service.Normalize(resp.Answer), resp.Sources)
	s.changed()
}
