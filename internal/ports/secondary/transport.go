package secondary

import "context"

// Transport defines the secondary port for the chat transport.
//
// Send is best-effort and at-least-once. Failures are returned as apperr
// kinds: transient (timeout, flood control) or permanent (recipient
// blocked the bot, chat deleted). Callers never retry here.
type Transport interface {
	// Send delivers text to a chat. The context carries the per-send
	// deadline.
	Send(ctx context.Context, chatID, text string) error
}

// Inbound is one message arriving from the transport's update stream.
// Correlation ties the message to a prior outgoing prompt; the dialog
// layer resolves it to a survey id before the ingestor sees it.
type Inbound struct {
	ChatID      string
	Text        string
	Correlation string
}

// InboundSource defines the secondary port for the transport's inbound
// stream. The channel closes when the stream ends.
type InboundSource interface {
	Updates() <-chan Inbound
}
