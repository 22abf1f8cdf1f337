package session

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/muurk/heatlink/internal/logging"
	"github.com/muurk/heatlink/internal/protocol"
)

// Predicate decides whether a subscription wants a given message.
// Predicates must be precise: the protocol's only built-in correlation
// is the bundle id echoed by the gateway, so a sloppy predicate can
// steal another step's response.
type Predicate func(protocol.Message) bool

// Handler consumes a matched message. A non-nil error is fatal for the
// connection and escapes the dispatch call.
type Handler func(protocol.Message) error

type subscription struct {
	predicate Predicate
	handler   Handler
	once      bool
	spent     bool
}

// Bus is the single-threaded response dispatch hub. Workflow steps
// register predicate-gated handlers; every decoded inbound message is
// offered to all registered handlers in registration order.
//
// Bus is not safe for concurrent use: Subscribe and Dispatch must both
// be called from the connection's drain goroutine. Handlers may call
// Subscribe while a dispatch is in progress; such additions are staged
// and only become visible to the next Dispatch call.
type Bus struct {
	subs        []*subscription
	pending     []*subscription
	dispatching bool
}

// NewBus creates an empty dispatch hub.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a handler gated by predicate. When once is true
// the subscription is removed after its first match and can never fire
// twice. Registering from within a running dispatch is legal; the new
// subscription does not see the message currently being dispatched.
func (b *Bus) Subscribe(predicate Predicate, handler Handler, once bool) {
	sub := &subscription{predicate: predicate, handler: handler, once: once}
	if b.dispatching {
		b.pending = append(b.pending, sub)
		return
	}
	b.subs = append(b.subs, sub)
}

// Dispatch offers msg to every registered subscription in registration
// order. A message matching no subscription is expected (unsolicited or
// irrelevant traffic) and silently dropped. A handler error aborts the
// pass and is returned to the caller; continuing a session after a
// failed step would be unsafe.
func (b *Bus) Dispatch(msg protocol.Message) error {
	if b.dispatching {
		return fmt.Errorf("re-entrant dispatch (handler dispatched a message directly?)")
	}

	b.dispatching = true
	defer func() {
		b.dispatching = false
		b.compact()
	}()

	matched := 0
	for _, sub := range b.subs {
		if sub.spent || !sub.predicate(msg) {
			continue
		}
		if sub.once {
			// Marked spent before invocation so a matching message
			// dispatched later can never fire the handler twice.
			sub.spent = true
		}
		matched++
		if err := sub.handler(msg); err != nil {
			return err
		}
	}

	if matched == 0 {
		logging.Debug("unmatched message dropped",
			typeTagField(msg),
		)
	}
	return nil
}

// compact removes spent subscriptions and merges additions staged
// during the dispatch pass.
func (b *Bus) compact() {
	kept := b.subs[:0]
	for _, sub := range b.subs {
		if !sub.spent {
			kept = append(kept, sub)
		}
	}
	b.subs = append(kept, b.pending...)
	b.pending = nil
}

func typeTagField(msg protocol.Message) zap.Field {
	return zap.String("type_tag", fmt.Sprintf("0x%04x", msg.TypeTag()))
}

// Len returns the number of live subscriptions, including staged ones.
func (b *Bus) Len() int {
	n := len(b.pending)
	for _, sub := range b.subs {
		if !sub.spent {
			n++
		}
	}
	return n
}
