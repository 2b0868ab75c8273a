package booking

import (
	"sync"
	"time"
)

// MessageKind classifies the transient message.
type MessageKind string

const (
	MessageNone    MessageKind = ""
	MessageSuccess MessageKind = "success"
	MessageFailure MessageKind = "failure"
)

// Message is what the confirmation area currently shows.
type Message struct {
	Kind MessageKind
	Text string
}

// Empty reports whether nothing is shown.
func (m Message) Empty() bool { return m.Text == "" }

// Stopper cancels a scheduled clear.
type Stopper interface {
	Stop() bool
}

// AfterFunc schedules f after d. time.AfterFunc is the default.
type AfterFunc func(d time.Duration, f func()) Stopper

// Presenter holds one message at a time and clears it after a fixed delay.
// A newer message cancels the pending clear of the older one.
type Presenter struct {
	mu        sync.Mutex
	delay     time.Duration
	afterFunc AfterFunc
	current   Message
	gen       uint64
	pending   Stopper
	listeners []func(Message)
}

// PresenterOption configures a Presenter.
type PresenterOption func(*Presenter)

// WithAfterFunc swaps the timer source, mainly for tests.
func WithAfterFunc(fn AfterFunc) PresenterOption {
	return func(p *Presenter) {
		if fn != nil {
			p.afterFunc = fn
		}
	}
}

// NewPresenter creates a presenter whose messages live for delay.
func NewPresenter(delay time.Duration, opts ...PresenterOption) *Presenter {
	p := &Presenter{
		delay: delay,
		afterFunc: func(d time.Duration, f func()) Stopper {
			return time.AfterFunc(d, f)
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Subscribe registers fn to be called with every change, including clears.
func (p *Presenter) Subscribe(fn func(Message)) {
	if fn == nil {
		return
	}
	p.mu.Lock()
	p.listeners = append(p.listeners, fn)
	p.mu.Unlock()
}

// Show replaces the current message and schedules its removal.
func (p *Presenter) Show(kind MessageKind, text string) {
	msg := Message{Kind: kind, Text: text}

	p.mu.Lock()
	if p.pending != nil {
		p.pending.Stop()
		p.pending = nil
	}
	p.gen++
	gen := p.gen
	p.current = msg
	listeners := p.snapshotListeners()
	p.mu.Unlock()

	notify(listeners, msg)

	// The timer may fire before afterFunc returns.
	timer := p.afterFunc(p.delay, func() { p.expire(gen) })
	p.mu.Lock()
	if p.gen == gen && !p.current.Empty() {
		p.pending = timer
	} else {
		timer.Stop()
	}
	p.mu.Unlock()
}

// Current returns what is shown right now.
func (p *Presenter) Current() Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Clear removes the message immediately.
func (p *Presenter) Clear() {
	p.mu.Lock()
	if p.pending != nil {
		p.pending.Stop()
		p.pending = nil
	}
	p.gen++
	changed := !p.current.Empty()
	p.current = Message{}
	listeners := p.snapshotListeners()
	p.mu.Unlock()

	if changed {
		notify(listeners, Message{})
	}
}

// expire clears the message only if it is still the one scheduled as gen.
func (p *Presenter) expire(gen uint64) {
	p.mu.Lock()
	if gen != p.gen {
		p.mu.Unlock()
		return
	}
	p.current = Message{}
	p.pending = nil
	listeners := p.snapshotListeners()
	p.mu.Unlock()

	notify(listeners, Message{})
}

func (p *Presenter) snapshotListeners() []func(Message) {
	out := make([]func(Message), len(p.listeners))
	copy(out, p.listeners)
	return out
}

func notify(listeners []func(Message), msg Message) {
	for _, fn := range listeners {
		fn(msg)
	}
}
