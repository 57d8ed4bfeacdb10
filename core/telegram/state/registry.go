package state

import (
	"sync"

	tele "gopkg.in/telebot.v4"
)

// handlerRegistry maps FSM states to their step handlers. It is shared
// by all Manager implementations.
type handlerRegistry struct {
	mu       sync.RWMutex
	handlers map[State]tele.HandlerFunc
}

func newHandlerRegistry() *handlerRegistry {
	return &handlerRegistry{handlers: make(map[State]tele.HandlerFunc)}
}

// RegisterHandler binds a handler to a state. Later registrations win.
func (r *handlerRegistry) RegisterHandler(st State, handler tele.HandlerFunc) {
	if st == "" || st == StateIdle || handler == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[st] = handler
}

func (r *handlerRegistry) handler(st State) (tele.HandlerFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[st]
	return h, ok
}
