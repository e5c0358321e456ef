// internal/httpserver/routes_users.go
//
// Account routes:
//   - POST /api/users → register, returns {token}
//   - POST /api/auth  → login, returns {token}
//   - GET  /api/auth  → current user (private)

package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/connect2pros/internal/social"
)

type tokenRes struct {
	Token string `json:"token"`
}

// mountUsers registers the account routes.
func (s *Server) mountUsers(r chi.Router) {
	r.Post("/users", s.handleRegister)
	r.Post("/auth", s.handleLogin)
	r.With(s.requireAuth()).Get("/auth", s.handleMe)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body social.RegisterInput
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	tok, err := s.svc.Register(r.Context(), body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenRes{Token: tok})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body social.LoginInput
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	tok, err := s.svc.Login(r.Context(), body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenRes{Token: tok})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	u, err := s.svc.CurrentUser(r.Context(), caller(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}
