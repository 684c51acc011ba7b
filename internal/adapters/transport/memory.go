// Package transport contains chat-transport adapters. The real chat
// platform sits behind the secondary.Transport port; the adapters here are
// a line-oriented console transport for local runs and a recording
// in-memory transport for tests.
package transport

import (
	"context"
	"sync"
	"time"

	"github.com/example/standup/internal/apperr"
	"github.com/example/standup/internal/ports/secondary"
)

// SentMessage is one outbound send captured by the memory transport.
type SentMessage struct {
	ChatID string
	Text   string
	At     time.Time
}

// Memory is a recording transport. Failures can be injected per chat id to
// exercise the orchestrator's best-effort delivery paths.
type Memory struct {
	mu        sync.Mutex
	sent      []SentMessage
	transient map[string]int // chat id -> remaining transient failures
	permanent map[string]bool
	inbound   chan secondary.Inbound
}

// NewMemory creates an empty memory transport.
func NewMemory() *Memory {
	return &Memory{
		transient: make(map[string]int),
		permanent: make(map[string]bool),
		inbound:   make(chan secondary.Inbound, 64),
	}
}

// Send records the message, or fails according to the injected faults.
func (m *Memory) Send(ctx context.Context, chatID, text string) error {
	if err := ctx.Err(); err != nil {
		return apperr.Wrap(apperr.KindTransientTransport, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.permanent[chatID] {
		return apperr.New(apperr.KindPermanentTransport, "chat %s unreachable", chatID)
	}
	if n := m.transient[chatID]; n > 0 {
		m.transient[chatID] = n - 1
		return apperr.New(apperr.KindTransientTransport, "chat %s temporarily unavailable", chatID)
	}

	m.sent = append(m.sent, SentMessage{ChatID: chatID, Text: text, At: time.Now()})
	return nil
}

// FailTransient makes the next n sends to chatID fail transiently.
func (m *Memory) FailTransient(chatID string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transient[chatID] = n
}

// FailPermanent makes every send to chatID fail permanently.
func (m *Memory) FailPermanent(chatID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.permanent[chatID] = true
}

// Sent returns a copy of the recorded sends.
func (m *Memory) Sent() []SentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SentMessage, len(m.sent))
	copy(out, m.sent)
	return out
}

// SentTo returns the recorded sends for one chat id.
func (m *Memory) SentTo(chatID string) []SentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []SentMessage
	for _, s := range m.sent {
		if s.ChatID == chatID {
			out = append(out, s)
		}
	}
	return out
}

// Push injects an inbound message, as if the user had replied.
func (m *Memory) Push(msg secondary.Inbound) {
	m.inbound <- msg
}

// Updates implements secondary.InboundSource.
func (m *Memory) Updates() <-chan secondary.Inbound {
	return m.inbound
}

// CloseInbound ends the inbound stream.
func (m *Memory) CloseInbound() {
	close(m.inbound)
}

var (
	_ secondary.Transport     = (*Memory)(nil)
	_ secondary.InboundSource = (*Memory)(nil)
)
