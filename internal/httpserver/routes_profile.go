// internal/httpserver/routes_profile.go
//
// Profile routes under /api/profile:
//   - GET    /                       → all profiles (public)
//   - GET    /user/{user_id}         → one user's profile (public)
//   - GET    /github/{username}      → GitHub repository proxy (public)
//   - GET    /me                     → caller's profile
//   - POST   /                       → create or update caller's profile
//   - DELETE /                       → delete caller's account, profile and posts
//   - PUT    /experience             → add experience entry
//   - DELETE /experience/{exp_id}    → remove experience entry
//   - PUT    /education              → add education entry
//   - DELETE /education/{edu_id}     → remove education entry

package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/connect2pros/internal/model"
	"github.com/robalobadob/connect2pros/internal/social"
)

// mountProfile registers all /profile routes.
func (s *Server) mountProfile(r chi.Router) {
	r.Route("/profile", func(r chi.Router) {
		r.Get("/", s.handleListProfiles)
		r.Get("/user/{user_id}", s.handleProfileByUser)
		r.Get("/github/{username}", s.handleGitHub)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth())
			r.Get("/me", s.handleMyProfile)
			r.Post("/", s.handleUpsertProfile)
			r.Delete("/", s.handleDeleteAccount)
			r.Put("/experience", s.handleAddExperience)
			r.Delete("/experience/{exp_id}", s.handleRemoveExperience)
			r.Put("/education", s.handleAddEducation)
			r.Delete("/education/{edu_id}", s.handleRemoveEducation)
		})
	})
}

// writeProfile answers with p or the error that prevented producing it.
func writeProfile(w http.ResponseWriter, r *http.Request, p *model.Profile, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.ListProfiles(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if list == nil {
		list = []*model.Profile{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleProfileByUser(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.ProfileByUser(r.Context(), chi.URLParam(r, "user_id"))
	writeProfile(w, r, p, err)
}

func (s *Server) handleGitHub(w http.ResponseWriter, r *http.Request) {
	repos, err := s.svc.GitHubRepos(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, repos)
}

func (s *Server) handleMyProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.MyProfile(r.Context(), caller(r))
	writeProfile(w, r, p, err)
}

func (s *Server) handleUpsertProfile(w http.ResponseWriter, r *http.Request) {
	var body social.ProfileInput
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := s.svc.UpsertProfile(r.Context(), caller(r), body)
	writeProfile(w, r, p, err)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteAccount(r.Context(), caller(r)); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, msgBody{Msg: social.MsgUserRemoved})
}

func (s *Server) handleAddExperience(w http.ResponseWriter, r *http.Request) {
	var body social.ExperienceInput
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := s.svc.AddExperience(r.Context(), caller(r), body)
	writeProfile(w, r, p, err)
}

func (s *Server) handleRemoveExperience(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.RemoveExperience(r.Context(), caller(r), chi.URLParam(r, "exp_id"))
	writeProfile(w, r, p, err)
}

func (s *Server) handleAddEducation(w http.ResponseWriter, r *http.Request) {
	var body social.EducationInput
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := s.svc.AddEducation(r.Context(), caller(r), body)
	writeProfile(w, r, p, err)
}

func (s *Server) handleRemoveEducation(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.RemoveEducation(r.Context(), caller(r), chi.URLParam(r, "edu_id"))
	writeProfile(w, r, p, err)
}
