package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"bubblevoyage/internal/game"
	"bubblevoyage/internal/journal"
	"bubblevoyage/internal/logger"
	"bubblevoyage/internal/ocean"
	"bubblevoyage/internal/settings"

	"github.com/gorilla/websocket"
)

// Controller is the game surface clients may drive.
type Controller interface {
	Start() error
	WriteLetter(l game.Letter) error
	Launch(currentID string) (string, error)
	AnswerQuiz(option int) (game.AnswerResult, error)
	ReturnToMap() error
	NewLetter() error
	UpdateSettings(s settings.Settings) settings.Settings
	Settings() settings.Settings
	Snapshot() game.Snapshot
}

// History lists past arrivals.
type History interface {
	Recent(ctx context.Context, limit int) ([]journal.Entry, error)
}

// DefaultSnapshotInterval paces progress updates while a bubble travels.
const DefaultSnapshotInterval = 100 * time.Millisecond

// Server exposes a session over HTTP and websockets.
type Server struct {
	ctrl     Controller
	hub      *Hub
	catalog  *ocean.Catalog
	history  History
	log      *logger.Logger
	interval time.Duration
	upgrader websocket.Upgrader

	mu   sync.Mutex
	last []byte
}

type ServerOption func(*Server)

func WithHistory(h History) ServerOption        { return func(s *Server) { s.history = h } }
func WithCatalog(c *ocean.Catalog) ServerOption { return func(s *Server) { s.catalog = c } }
func WithLogger(l *logger.Logger) ServerOption  { return func(s *Server) { s.log = l } }
func WithInterval(d time.Duration) ServerOption { return func(s *Server) { s.interval = d } }

func NewServer(ctrl Controller, opts ...ServerOption) *Server {
	s := &Server{
		ctrl:     ctrl,
		catalog:  ocean.DefaultCatalog(),
		log:      logger.Discard(),
		interval: DefaultSnapshotInterval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.hub = NewHub(s.log)
	return s
}

// Hub returns the client hub.
func (s *Server) Hub() *Hub { return s.hub }

// OnEvent forwards a session event to every client, followed by the
// snapshot it produced. Subscribe it on the session's event bus.
func (s *Server) OnEvent(e game.Event) {
	data, err := json.Marshal(eventMessage(e))
	if err != nil {
		s.log.Error("encode event %s: %v", e.Type, err)
		return
	}
	s.hub.Broadcast(data)
	s.publish(true)
}

// Run drives the hub and the periodic snapshot until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	go s.hub.Run(ctx)
	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			if s.hub.Clients() > 0 {
				s.publish(false)
			}
		}
	}
}

// publish broadcasts the snapshot if it changed since the last one, or
// always when force is set.
func (s *Server) publish(force bool) {
	snap := s.ctrl.Snapshot()
	data, err := json.Marshal(Message{Type: TypeSnapshot, Snapshot: &snap})
	if err != nil {
		s.log.Error("encode snapshot: %v", err)
		return
	}
	s.mu.Lock()
	same := bytes.Equal(data, s.last)
	s.last = data
	s.mu.Unlock()
	if same && !force {
		return
	}
	s.hub.Broadcast(data)
}

// apply runs one command. The returned message, if any, goes back to the
// sender only.
func (s *Server) apply(cmd Command) (*Message, error) {
	switch cmd.Type {
	case CmdStart:
		return nil, s.ctrl.Start()
	case CmdWriteLetter:
		if cmd.Letter == nil {
			return nil, game.ErrEmptyLetter
		}
		return nil, s.ctrl.WriteLetter(*cmd.Letter)
	case CmdLaunch:
		id, err := s.ctrl.Launch(cmd.CurrentID)
		if err != nil {
			return nil, err
		}
		return &Message{Type: TypeLaunched, JourneyID: id}, nil
	case CmdAnswer:
		res, err := s.ctrl.AnswerQuiz(cmd.Option)
		if err != nil {
			return nil, err
		}
		return &Message{Type: TypeAnswer, Answer: &res}, nil
	case CmdReturnToMap:
		return nil, s.ctrl.ReturnToMap()
	case CmdNewLetter:
		return nil, s.ctrl.NewLetter()
	case CmdSettings:
		if cmd.Settings == nil {
			cur := s.ctrl.Settings()
			return &Message{Type: TypeSettings, Settings: &cur}, nil
		}
		applied := s.ctrl.UpdateSettings(*cmd.Settings)
		return &Message{Type: TypeSettings, Settings: &applied}, nil
	}
	return nil, errUnknownCommand
}

// Handler routes the websocket and the read-only JSON endpoints.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", s.serveWS)
	mux.HandleFunc("GET /api/currents", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.catalog.All())
	})
	mux.HandleFunc("GET /api/state", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.ctrl.Snapshot())
	})
	mux.HandleFunc("GET /api/settings", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.ctrl.Settings())
	})
	mux.HandleFunc("GET /api/journal", s.serveJournal)
	return mux
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade: %v", err)
		return
	}
	c := newClient(s, conn)
	snap := s.ctrl.Snapshot()
	if data, err := json.Marshal(Message{Type: TypeSnapshot, Snapshot: &snap}); err == nil {
		c.send <- data
	}
	if !s.hub.add(c) {
		conn.Close()
		return
	}
	go c.writePump()
	go c.readPump()
}

func (s *Server) serveJournal(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeJSON(w, http.StatusOK, []journal.Entry{})
		return
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}
	entries, err := s.history.Recent(r.Context(), limit)
	if err != nil {
		s.log.Error("journal: %v", err)
		http.Error(w, "journal unavailable", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
