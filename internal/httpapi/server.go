package httpapi

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/hamed0406/healthdash/internal/dashboard"
	"github.com/hamed0406/healthdash/internal/domain"
	apimw "github.com/hamed0406/healthdash/internal/httpapi/middleware"
)

//go:embed templates/board.html
var templateFS embed.FS

var boardTmpl = template.Must(template.ParseFS(templateFS, "templates/board.html"))

// Board is the state the HTTP layer renders and triggers checks on.
type Board interface {
	Snapshot() []domain.ServiceHealth
	StartAll(ctx context.Context) <-chan []domain.ServiceHealth
	StartOne(ctx context.Context, index int) (<-chan domain.ServiceHealth, error)
}

// Options tunes the router; the zero value allows any origin and disables
// rate limiting.
type Options struct {
	AllowedOrigins []string
	CheckRPM       int
	CheckBurst     int
	// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP.
	// Only enable it behind a proxy that overwrites those headers.
	TrustProxy bool
}

// Server exposes a Board as an HTML page and a JSON API.
type Server struct {
	Logger *zap.Logger
	Board  Board

	// bg scopes checks that outlive the request that triggered them.
	bg context.Context
}

// NewServer returns a server whose background checks run under bg.
func NewServer(bg context.Context, l *zap.Logger, b Board) *Server {
	return &Server{Logger: l, Board: b, bg: bg}
}

func (s *Server) Router(opts Options) http.Handler {
	r := chi.NewRouter()
	if opts.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(apimw.RequestLog(s.Logger))
	r.Use(corsHandler(opts.AllowedOrigins))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/", s.handlePage)
	r.Get("/api/services", s.handleList)

	r.Group(func(r chi.Router) {
		r.Use(apimw.RateLimit(opts.CheckRPM, opts.CheckBurst))

		r.Post("/refresh", s.handleRefreshAll)
		r.Post("/refresh/{index}", s.handleRefreshOne)
		r.Post("/api/services/check", s.handleCheckAll)
		r.Post("/api/services/{index}/check", s.handleCheckOne)
	})

	return r
}

func corsHandler(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		return cors.AllowAll().Handler
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	})
}

type pageData struct {
	Services []domain.ServiceHealth
	Loading  bool
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	data := pageData{Services: s.Board.Snapshot()}
	for _, svc := range data.Services {
		if svc.Status == domain.StatusLoading {
			data.Loading = true
			break
		}
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := boardTmpl.Execute(w, data); err != nil {
		s.Logger.Warn("render_error", zap.Error(err))
	}
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Board.Snapshot())
}

func (s *Server) handleRefreshAll(w http.ResponseWriter, r *http.Request) {
	s.Board.StartAll(s.bg)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleRefreshOne(w http.ResponseWriter, r *http.Request) {
	if _, err := s.startOne(r); err != nil {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleCheckAll(w http.ResponseWriter, r *http.Request) {
	done := s.Board.StartAll(s.bg)
	if !wantsWait(r) {
		writeJSON(w, http.StatusAccepted, s.Board.Snapshot())
		return
	}
	select {
	case res := <-done:
		writeJSON(w, http.StatusOK, res)
	case <-r.Context().Done():
	}
}

func (s *Server) handleCheckOne(w http.ResponseWriter, r *http.Request) {
	done, err := s.startOne(r)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": dashboard.ErrUnknownService.Error()})
		return
	}
	if !wantsWait(r) {
		writeJSON(w, http.StatusAccepted, s.Board.Snapshot())
		return
	}
	select {
	case res := <-done:
		writeJSON(w, http.StatusOK, res)
	case <-r.Context().Done():
	}
}

func (s *Server) startOne(r *http.Request) (<-chan domain.ServiceHealth, error) {
	index, err := parseIndex(r)
	if err != nil {
		return nil, err
	}
	return s.Board.StartOne(s.bg, index)
}

func parseIndex(r *http.Request) (int, error) {
	i, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		return 0, errors.Join(dashboard.ErrUnknownService, err)
	}
	return i, nil
}

func wantsWait(r *http.Request) bool {
	ok, _ := strconv.ParseBool(r.URL.Query().Get("wait"))
	return ok
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
