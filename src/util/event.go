package util

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
)

// An Eventer is a type that is able to emit events.
type Eventer interface {
	Events() *Emitter
}

// listenerBuffer is the number of events a listener may lag behind before
// events are dropped for that listener.
const listenerBuffer = 32

// An Emitter broadcasts events to any number of listeners.
//
// The zero value is ready to use.
type Emitter struct {
	lock      sync.Mutex
	listeners map[chan interface{}]struct{}
}

// Events implements the Eventer interface.
func (emitter *Emitter) Events() *Emitter {
	return emitter
}

// Emit sends an event to all listeners. It never blocks on slow listeners.
func (emitter *Emitter) Emit(event interface{}) {
	emitter.lock.Lock()
	defer emitter.lock.Unlock()
	for listener := range emitter.listeners {
		select {
		case listener <- event:
		default:
			log.Debugf("Listener is lagging, dropped event %#v", event)
		}
	}
}

// Listen returns a channel that receives all events emitted after this call.
// The channel is closed once the context is done.
func (emitter *Emitter) Listen(ctx context.Context) <-chan interface{} {
	ch := make(chan interface{}, listenerBuffer)

	emitter.lock.Lock()
	if emitter.listeners == nil {
		emitter.listeners = map[chan interface{}]struct{}{}
	}
	emitter.listeners[ch] = struct{}{}
	emitter.lock.Unlock()

	go func() {
		<-ctx.Done()
		emitter.lock.Lock()
		delete(emitter.listeners, ch)
		close(ch)
		emitter.lock.Unlock()
	}()
	return ch
}
