// Package signal is a small named-event sink. Emission is
// fire-and-forget: handlers run synchronously in connect order and
// their return values (there are none) are never consulted.
package signal

import (
	"github.com/sirupsen/logrus"
)

type Handler func(args ...any)

type Bus struct {
	handlers map[string][]Handler
}

func NewBus() *Bus {
	return &Bus{
		handlers: map[string][]Handler{},
	}
}

// Connect registers fn for the named event. There is no disconnect;
// subscribers live as long as the bus does.
func (b *Bus) Connect(name string, fn Handler) {
	b.handlers[name] = append(b.handlers[name], fn)
}

// Emit calls every handler registered for name. A panicking handler is
// logged and skipped, it never takes the emitter down.
func (b *Bus) Emit(name string, args ...any) {
	for _, fn := range b.handlers[name] {
		func() {
			defer func() {
				if r := recover(); r != nil {
					logrus.WithFields(logrus.Fields{
						"event": name,
						"panic": r,
					}).Errorln("signal handler panicked")
				}
			}()
			fn(args...)
		}()
	}
}
