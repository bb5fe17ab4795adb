package protocol

import (
	"errors"
	"sync"
)

// ErrBridgeClosed reports a send or subscribe on a closed bridge.
var ErrBridgeClosed = errors.New("bridge closed")

// Bridge is an abstract bidirectional message channel to the peer process.
// Send enqueues one message toward the peer and OnMessage registers a
// callback invoked once per inbound message, returning an unsubscribe
// function.
type Bridge interface {
	Send(*Message) error
	OnMessage(fn func(*Message)) (func(), error)
	Close() error
}

// Pipe returns two bridge ends connected in process. A message sent on one
// end is delivered synchronously to the callbacks registered on the other.
// Useful for tests and for hosting both peers in a single process.
func Pipe() (Bridge, Bridge) {
	a := &pipeEnd{}
	b := &pipeEnd{}
	a.peer = b
	b.peer = a
	return a, b
}

type pipeEnd struct {
	mu        sync.Mutex
	callbacks []*pipeSub
	closed    bool
	peer      *pipeEnd
}

type pipeSub struct {
	fn func(*Message)
}

func (p *pipeEnd) Send(m *Message) error {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return ErrBridgeClosed
	}
	p.peer.deliver(m)
	return nil
}

func (p *pipeEnd) OnMessage(fn func(*Message)) (func(), error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, ErrBridgeClosed
	}
	sub := &pipeSub{fn: fn}
	p.callbacks = append(p.callbacks, sub)
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		for i, candidate := range p.callbacks {
			if candidate == sub {
				p.callbacks = append(p.callbacks[:i:i], p.callbacks[i+1:]...)
				return
			}
		}
	}, nil
}

func (p *pipeEnd) Close() error {
	p.mu.Lock()
	p.closed = true
	p.callbacks = nil
	p.mu.Unlock()
	return nil
}

func (p *pipeEnd) deliver(m *Message) {
	p.mu.Lock()
	snapshot := make([]*pipeSub, len(p.callbacks))
	copy(snapshot, p.callbacks)
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return
	}
	for _, sub := range snapshot {
		sub.fn(m)
	}
}
