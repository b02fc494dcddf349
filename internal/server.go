package cheers

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"cheers/internal/carousel"
	"cheers/internal/config"
	"cheers/internal/db"
)

// Server encapsulates all the state and handlers for the cheers application
type Server struct {
	State    *State
	Hub      *Hub
	ctx      context.Context
	upgrader websocket.Upgrader
}

// NewServer opens the configured store and builds a session on it
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	kv, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	logs := db.NewLogStore(kv, cfg.StorageKey)
	cards := carousel.New(cfg.DrinkTypes, carousel.TimerScheduler{})
	state := NewState(cards, logs, func() time.Time { return time.Now().In(loc) })

	log.Info("Session ready", "backend", cfg.Backend, "cards", len(cfg.DrinkTypes), "date", state.Date())
	return NewServerWithState(ctx, state), nil
}

// NewServerWithState wraps an existing session
func NewServerWithState(ctx context.Context, state *State) *Server {
	server := &Server{
		State: state,
		Hub:   NewHub(),
		ctx:   ctx,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
	state.AddHook(LogHook())
	state.AddHook(BroadcastHook(server.Hub))
	return server
}

// corsMiddleware adds CORS headers to all responses
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// SetupRoutes configures all HTTP routes for the server
func (s *Server) SetupRoutes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", HealthHandler)
	mux.HandleFunc("/api/state", s.StateHandler)
	mux.HandleFunc("/api/date", s.DateHandler)
	mux.HandleFunc("/api/cards/", s.CardHandler)
	mux.HandleFunc("/api/swipe", s.SwipeHandler)
	mux.HandleFunc("/api/gesture", s.GestureHandler)
	mux.HandleFunc("/api/cheers", s.CheersHandler)
	mux.HandleFunc("/api/history", s.HistoryHandler)
	mux.HandleFunc("/api/history/", s.HistoryByIDHandler)
	mux.HandleFunc("/api/stats/", s.StatsHandler)
	mux.HandleFunc("/connect", s.WebsocketHandler)

	return corsMiddleware(mux)
}
