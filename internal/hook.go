package cheers

import (
	"github.com/charmbracelet/log"
)

// Hook is a function that is called after every state change
type Hook func(Event)

// AddHook registers h for every later event.
func (s *State) AddHook(h Hook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, h)
}

func (s *State) fire(ev Event) {
	s.mu.Lock()
	hooks := make([]Hook, len(s.hooks))
	copy(hooks, s.hooks)
	s.mu.Unlock()

	for _, h := range hooks {
		h(ev)
	}
}

// LogHook writes every event to the debug log
func LogHook() Hook {
	return func(ev Event) {
		log.Debug("State changed", "event", ev.Kind, "focused", ev.Focused, "total_cups", ev.TotalCups)
	}
}

// BroadcastHook pushes every event to the connected WebSocket clients
func BroadcastHook(hub *Hub) Hook {
	return func(ev Event) {
		hub.Broadcast(ev)
	}
}
