// Package notify delivers scheduled reminders to one or more sinks.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"
)

// Message is one reminder to deliver.
type Message struct {
	Kind string    `json:"kind"`
	Date string    `json:"date"`
	Text string    `json:"text"`
	Sent time.Time `json:"sent_at"`
}

// ToJSON encodes m for the wire.
func (m Message) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// MessageFromJSON decodes a wire message.
func MessageFromJSON(data []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return Message{}, fmt.Errorf("unmarshal message: %w", err)
	}
	return m, nil
}

// Notifier delivers messages.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// Func adapts a function to Notifier.
type Func func(ctx context.Context, msg Message) error

// Notify calls f.
func (f Func) Notify(ctx context.Context, msg Message) error {
	return f(ctx, msg)
}

// Nop drops every message.
type Nop struct{}

// Notify does nothing.
func (Nop) Notify(context.Context, Message) error { return nil }

// Writer prints messages to an io.Writer, one block per message.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriter returns a Writer notifier.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Notify writes the message text followed by a blank line.
func (n *Writer) Notify(_ context.Context, msg Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	_, err := fmt.Fprintf(n.w, "%s\n\n", msg.Text)
	return err
}

// Multi fans a message out to every notifier. All are tried; errors are joined.
type Multi []Notifier

// Notify delivers msg to each notifier in order.
func (m Multi) Notify(ctx context.Context, msg Message) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
