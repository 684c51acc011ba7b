package transport

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/example/standup/internal/ports/secondary"
)

// Console is a stdio transport for local runs of `standup serve`. Outbound
// messages are printed one per line; inbound replies are read as
// `<chat_id>|<survey_id>|<text>` lines, the pipe-separated survey id
// standing in for the conversational correlation a real chat platform
// would provide.
type Console struct {
	mu  sync.Mutex
	out io.Writer
	in  chan secondary.Inbound
}

// NewConsole builds a console transport reading replies from in and
// printing sends to out.
func NewConsole(in io.Reader, out io.Writer) *Console {
	c := &Console{out: out, in: make(chan secondary.Inbound)}
	go c.readLoop(in)
	return c
}

// Send prints the outbound message.
func (c *Console) Send(ctx context.Context, chatID, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := fmt.Fprintf(c.out, "-> [%s] %s\n", chatID, strings.ReplaceAll(text, "\n", "\n   ")); err != nil {
		return fmt.Errorf("console write failed: %w", err)
	}
	return nil
}

// Updates implements secondary.InboundSource.
func (c *Console) Updates() <-chan secondary.Inbound {
	return c.in
}

func (c *Console) readLoop(in io.Reader) {
	defer close(c.in)
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "|", 3)
		if len(parts) != 3 {
			fmt.Fprintf(c.out, "!! expected chat_id|survey_id|text, got %q\n", line)
			continue
		}
		c.in <- secondary.Inbound{
			ChatID:      strings.TrimSpace(parts[0]),
			Correlation: strings.TrimSpace(parts[1]),
			Text:        parts[2],
		}
	}
}

var (
	_ secondary.Transport     = (*Console)(nil)
	_ secondary.InboundSource = (*Console)(nil)
)
