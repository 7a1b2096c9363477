package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/conneroisu/collegedash/internal/navigation"
	"github.com/conneroisu/collegedash/internal/sections"
	"github.com/conneroisu/collegedash/internal/version"
	"github.com/conneroisu/collegedash/internal/views"
)

const (
	maxFormBytes = 4 << 10
	searchLimit  = 8
)

func (s *Server) registerRoutes(mux *http.ServeMux) {
	// Pages
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /go/{section}", s.handleGo)
	mux.HandleFunc("POST /navigate", s.handleNavigate)
	mux.HandleFunc("POST /back", s.handleBack)
	mux.HandleFunc("POST /home", s.handleHome)

	// JSON API
	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("GET /api/sections", s.handleSections)
	mux.HandleFunc("GET /api/search", s.handleSearch)
	mux.HandleFunc("POST /api/navigate", s.handleAPINavigate)
	mux.HandleFunc("POST /api/back", s.handleAPIBack)
	mux.HandleFunc("POST /api/home", s.handleAPIHome)

	mux.HandleFunc("GET /ws", s.handleWebSocket)
	mux.HandleFunc("GET /health", s.handleHealth)
}

// session returns the caller's router, issuing a session cookie when the
// request carries none or an unusable one.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*navigation.Router, string) {
	var current string
	if cookie, err := r.Cookie(s.config.Session.CookieName); err == nil {
		current = cookie.Value
	}

	router, id := s.sessions.Get(current)
	if id != current {
		http.SetCookie(w, &http.Cookie{
			Name:     s.config.Session.CookieName,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			Secure:   s.config.Server.Environment == "production",
			SameSite: http.SameSiteLaxMode,
		})
	}
	return router, id
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	router, _ := s.session(w, r)
	state := router.State()

	var buf bytes.Buffer
	if err := views.Page(state, views.RenderID(state.Active)).Render(r.Context(), &buf); err != nil {
		s.logger.Error(r.Context(), err, "Failed to render page", "section", state.Section)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}

// handleGo navigates from a link, such as a notification or bookmark.
func (s *Server) handleGo(w http.ResponseWriter, r *http.Request) {
	router, _ := s.session(w, r)
	router.Navigate(r.PathValue("section"))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if !r.PostForm.Has("section") {
		http.Error(w, "missing section", http.StatusBadRequest)
		return
	}

	router, _ := s.session(w, r)
	router.Navigate(r.PostForm.Get("section"))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleBack(w http.ResponseWriter, r *http.Request) {
	router, _ := s.session(w, r)
	router.Back()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	router, _ := s.session(w, r)
	router.Home()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	router, _ := s.session(w, r)
	s.writeJSON(w, r, http.StatusOK, router.State())
}

func (s *Server) handleSections(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, sections.Describe(s.aliases))
}

// searchResult is the palette's view of a match.
type searchResult struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Kind      string `json:"kind"`
	MatchedOn string `json:"matched_on"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	matches := sections.Search(s.aliases, r.URL.Query().Get("q"), searchLimit)
	results := make([]searchResult, 0, len(matches))
	for _, m := range matches {
		results = append(results, searchResult{
			ID:        m.Section.String(),
			Title:     m.Section.Title(),
			Kind:      m.Section.Kind().String(),
			MatchedOn: m.MatchedOn,
		})
	}
	s.writeJSON(w, r, http.StatusOK, results)
}

type navigateRequest struct {
	Section *string `json:"section"`
}

func (s *Server) handleAPINavigate(w http.ResponseWriter, r *http.Request) {
	var req navigateRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxFormBytes))
	if err := decoder.Decode(&req); err != nil || req.Section == nil {
		s.writeJSON(w, r, http.StatusBadRequest, map[string]string{"error": `expected {"section": "<id or alias>"}`})
		return
	}

	router, _ := s.session(w, r)
	router.Navigate(*req.Section)
	s.writeJSON(w, r, http.StatusOK, router.State())
}

func (s *Server) handleAPIBack(w http.ResponseWriter, r *http.Request) {
	router, _ := s.session(w, r)
	router.Back()
	s.writeJSON(w, r, http.StatusOK, router.State())
}

func (s *Server) handleAPIHome(w http.ResponseWriter, r *http.Request) {
	router, _ := s.session(w, r)
	router.Home()
	s.writeJSON(w, r, http.StatusOK, router.State())
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	_, id := s.session(w, r)
	s.hub.HandleWebSocket(w, r, id)
}

// handleHealth returns the server health status for health checks
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status":     "healthy",
		"timestamp":  time.Now().UTC(),
		"uptime":     time.Since(s.started).Round(time.Second).String(),
		"version":    version.Short(),
		"build_info": version.Get(),
		"checks": map[string]interface{}{
			"sessions":  map[string]interface{}{"status": "healthy", "active": s.sessions.Len()},
			"websocket": map[string]interface{}{"status": "healthy", "clients": s.hub.TotalClients()},
			"aliases": map[string]interface{}{
				"status":   "healthy",
				"entries":  s.aliases.Len(),
				"watching": s.reloader != nil,
			},
		},
	}
	s.writeJSON(w, r, http.StatusOK, health)
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Warn(r.Context(), err, "Failed to encode response")
	}
}
