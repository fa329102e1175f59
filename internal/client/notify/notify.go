// Package notify delivers short user-visible messages: failed backend calls,
// guard refusals and confirmations such as a password change.
package notify

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/dmitrijs2005/fleamarket/internal/client/client"
)

type Level int

const (
	Info Level = iota
	Success
	Warning
	Error
)

func (l Level) String() string {
	switch l {
	case Info:
		return "info"
	case Success:
		return "success"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// Notifier shows a message to the user. Implementations must not block.
type Notifier interface {
	Notify(ctx context.Context, level Level, msg string)
}

// Discard drops every notification.
var Discard Notifier = discard{}

type discard struct{}

func (discard) Notify(context.Context, Level, string) {}

// Writer prints one "[level] message" line per notification.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (n *Writer) Notify(_ context.Context, level Level, msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintf(n.w, "[%s] %s\n", level, msg)
}

// FailureObserver reports every failed backend call through n at Error
// level. Transport failures carry the generic network error text.
func FailureObserver(n Notifier) client.Observer {
	return client.ObserverFunc(func(ctx context.Context, f *client.Failure) {
		msg := f.Message
		if msg == "" {
			msg = client.MessageRequestFailed
		}
		n.Notify(ctx, Error, msg)
	})
}

// Notification is one message kept by a Recorder.
type Notification struct {
	Level   Level
	Message string
}

// Recorder keeps notifications in memory and optionally forwards them.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
	next  Notifier
}

// NewRecorder returns a Recorder forwarding to next, which may be nil.
func NewRecorder(next Notifier) *Recorder {
	return &Recorder{next: next}
}

func (r *Recorder) Notify(ctx context.Context, level Level, msg string) {
	r.mu.Lock()
	r.items = append(r.items, Notification{Level: level, Message: msg})
	r.mu.Unlock()
	if r.next != nil {
		r.next.Notify(ctx, level, msg)
	}
}

// All returns a copy of everything recorded so far.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.items...)
}

// Reset drops recorded notifications.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.items = nil
	r.mu.Unlock()
}
