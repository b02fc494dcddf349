package cheers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"cheers/internal/db"
	"cheers/internal/stats"
)

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Error encoding response", "err", err)
	}
}

func allowMethod(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	return false
}

// @Summary Health check endpoint
// @Description Returns the health status of the API
// @Tags health
// @Produce plain
// @Success 200 {string} string "Healthy"
// @Router /health [get]
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Healthy"))
}

// @Summary Full session view
// @Description Cards, pending cups, today panel, calendar, totals and history recomputed from the log
// @Tags state
// @Produce json
// @Success 200 {object} View
// @Router /api/state [get]
func (s *Server) StateHandler(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, s.State.View(r.Context()))
}

// @Summary Get or select the logging date
// @Description Selecting a date clears every pending cup
// @Tags state
// @Accept x-www-form-urlencoded
// @Produce json
// @Param date formData string false "Date as YYYY-MM-DD"
// @Success 200 {object} map[string]string
// @Failure 400 {string} string "Bad request"
// @Router /api/date [get]
// @Router /api/date [post]
func (s *Server) DateHandler(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet, http.MethodPost) {
		return
	}
	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Failed to parse form", http.StatusBadRequest)
			return
		}
		if err := s.State.SetDate(r.FormValue("date")); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	writeJSON(w, map[string]string{"date": s.State.Date(), "today": s.State.Today()})
}

type cardResponse struct {
	Focused   int  `json:"focused"`
	Cups      int  `json:"cups"`
	Moved     bool `json:"moved"`
	TotalCups int  `json:"total_cups"`
	Ready     bool `json:"ready"`
}

func (s *Server) cardResponse(index int, moved bool) cardResponse {
	total := s.State.Cards.TotalPendingCups()
	cards := s.State.Cards.Cards()
	cups := 0
	if index >= 0 && index < len(cards) {
		cups = cards[index].PendingCups
	}
	return cardResponse{
		Focused:   s.State.Cards.Focused(),
		Cups:      cups,
		Moved:     moved,
		TotalCups: total,
		Ready:     total > 0,
	}
}

// @Summary Card actions
// @Description tap focuses a card or adds a cup to the focused one; press arms the long-press reset; release cancels it; /api/cards/reset clears all cards
// @Tags cards
// @Produce json
// @Param index path int true "Card index"
// @Param action path string true "tap, press or release"
// @Success 200 {object} cardResponse
// @Failure 400 {string} string "Bad request"
// @Failure 404 {string} string "Card not found"
// @Router /api/cards/{index}/{action} [post]
// @Router /api/cards/reset [post]
func (s *Server) CardHandler(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/api/cards/")
	if path == "reset" {
		s.State.Cards.ResetAll()
		writeJSON(w, s.cardResponse(s.State.Cards.Focused(), false))
		return
	}

	parts := strings.SplitN(path, "/", 2)
	if len(parts) != 2 {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	index, err := strconv.Atoi(parts[0])
	if err != nil {
		http.Error(w, "Invalid card index", http.StatusBadRequest)
		return
	}
	if index < 0 || index >= s.State.Cards.Len() {
		http.Error(w, "Card not found", http.StatusNotFound)
		return
	}

	switch parts[1] {
	case "tap":
		sel, _ := s.State.Tap(index)
		writeJSON(w, s.cardResponse(sel.Index, sel.Moved))
	case "press":
		s.State.Cards.StartLongPress(index)
		writeJSON(w, s.cardResponse(index, false))
	case "release":
		s.State.Cards.CancelLongPress()
		writeJSON(w, s.cardResponse(index, false))
	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

func formFloat(r *http.Request, key string) (float64, error) {
	return strconv.ParseFloat(r.FormValue(key), 64)
}

// @Summary Swipe the carousel
// @Description distance is start x minus end x; anything within 50px is ignored
// @Tags cards
// @Accept x-www-form-urlencoded
// @Produce json
// @Param distance formData number true "Swipe distance in pixels"
// @Success 200 {object} map[string]int
// @Failure 400 {string} string "Bad request"
// @Router /api/swipe [post]
func (s *Server) SwipeHandler(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}
	distance, err := formFloat(r, "distance")
	if err != nil {
		http.Error(w, "Failed to parse distance", http.StatusBadRequest)
		return
	}
	writeJSON(w, map[string]int{"focused": s.State.Swipe(distance)})
}

// @Summary Raw pointer event
// @Description Feeds touchstart, touchmove, touchend, mousedown or mouseup to the carousel
// @Tags cards
// @Accept x-www-form-urlencoded
// @Produce json
// @Param kind formData string true "Event kind"
// @Param x formData number false "Pointer x coordinate"
// @Param index formData int false "Card under the pointer (touchstart)"
// @Success 200 {object} cardResponse
// @Failure 400 {string} string "Bad request"
// @Router /api/gesture [post]
func (s *Server) GestureHandler(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	var x float64
	if r.FormValue("x") != "" {
		v, err := formFloat(r, "x")
		if err != nil {
			http.Error(w, "Failed to parse x", http.StatusBadRequest)
			return
		}
		x = v
	}
	index := s.State.Cards.Focused()
	if r.FormValue("index") != "" {
		v, err := strconv.Atoi(r.FormValue("index"))
		if err != nil {
			http.Error(w, "Failed to parse index", http.StatusBadRequest)
			return
		}
		index = v
	}

	if err := s.State.Gesture(r.FormValue("kind"), index, x); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	focused := s.State.Cards.Focused()
	writeJSON(w, s.cardResponse(focused, false))
}

type cheersResponse struct {
	Logged bool `json:"logged"`
	CheersResult
}

// @Summary Confirm pending cups
// @Description Logs one entry per card with pending cups on the selected date and clears the cards
// @Tags logs
// @Produce json
// @Success 200 {object} cheersResponse
// @Router /api/cheers [post]
func (s *Server) CheersHandler(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	res, ok := s.State.Cheers(r.Context())
	if !ok {
		res.Entries = []db.LogEntry{}
	}
	writeJSON(w, cheersResponse{Logged: ok, CheersResult: res})
}

// @Summary History list
// @Description Latest entries, newest date first
// @Tags logs
// @Produce json
// @Param limit query int false "Maximum entries (default 50, 0 for all)"
// @Success 200 {array} HistoryItem
// @Failure 400 {string} string "Bad request"
// @Router /api/history [get]
func (s *Server) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	limit := HistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, "Failed to parse limit", http.StatusBadRequest)
			return
		}
		limit = n
	}
	writeJSON(w, History(s.State.Logs.Logs(r.Context()), limit))
}

// @Summary Delete a history entry
// @Description Unknown ids are ignored
// @Tags logs
// @Produce json
// @Param id path number true "Entry id, fractional ids included"
// @Success 200 {object} map[string]bool
// @Failure 400 {string} string "Bad request"
// @Failure 500 {string} string "Internal server error"
// @Router /api/history/{id} [delete]
func (s *Server) HistoryByIDHandler(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodDelete) {
		return
	}
	id, err := db.ParseID(strings.TrimPrefix(r.URL.Path, "/api/history/"))
	if err != nil {
		http.Error(w, "Invalid id", http.StatusBadRequest)
		return
	}
	deleted, err := s.State.DeleteLog(r.Context(), id)
	if err != nil {
		log.Error("Failed to delete log", "id", id, "error", err)
		http.Error(w, "Failed to delete", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]bool{"deleted": deleted})
}

// @Summary Statistics
// @Description today, calendar (?year=&month=), monthly or totals
// @Tags stats
// @Produce json
// @Param name path string true "today, calendar, monthly or totals"
// @Param year query int false "Calendar year"
// @Param month query int false "Calendar month 1-12"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {string} string "Bad request"
// @Failure 404 {string} string "Not found"
// @Router /api/stats/{name} [get]
func (s *Server) StatsHandler(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	entries := s.State.Logs.Logs(r.Context())

	switch strings.TrimPrefix(r.URL.Path, "/api/stats/") {
	case "today":
		writeJSON(w, s.State.Panel(entries))
	case "calendar":
		now := s.State.now()
		year, month := now.Year(), now.Month()
		q := r.URL.Query()
		if v := q.Get("year"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				http.Error(w, "Failed to parse year", http.StatusBadRequest)
				return
			}
			year = n
		}
		if v := q.Get("month"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 || n > 12 {
				http.Error(w, "Failed to parse month", http.StatusBadRequest)
				return
			}
			month = time.Month(n)
		}
		writeJSON(w, s.State.Calendar(entries, year, month))
	case "monthly":
		writeJSON(w, stats.MonthlyTotals(entries))
	case "totals":
		writeJSON(w, stats.AggregateTotals(entries))
	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

// @Summary WebSocket connection endpoint
// @Description Live session updates; accepts get_state, tap:<index>, swipe:<distance> and cheers
// @Tags websocket
// @Accept json
// @Produce json
// @Success 101 {string} string "Switching Protocols to WebSocket"
// @Failure 400 {string} string "Bad Request"
// @Router /connect [get]
func (s *Server) WebsocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("Websocket upgrade failed", "err", err)
		return
	}
	log.Info("Client connected", "addr", conn.RemoteAddr())

	s.Hub.AddClient(conn)
	defer func() {
		s.Hub.RemoveClient(conn)
		conn.Close()
		log.Info("Client disconnected", "addr", conn.RemoteAddr())
	}()

	for {
		_, p, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error("Websocket read failed", "err", err)
			}
			return
		}
		s.handleMessage(conn, string(p))
	}
}
