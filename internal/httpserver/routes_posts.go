// internal/httpserver/routes_posts.go
//
// Post routes under /api/posts (all private):
//   - POST   /                           → create post
//   - GET    /                           → all posts, newest first
//   - GET    /{id}                       → one post
//   - DELETE /{id}                       → delete own post
//   - PUT    /like/{id}, /unlike/{id}    → toggle caller's like, returns likes
//   - POST   /comment/{id}               → add comment, returns comments
//   - DELETE /{id}/comment/{comment_id}  → delete own comment

package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/connect2pros/internal/model"
	"github.com/robalobadob/connect2pros/internal/social"
)

// mountPosts registers all /posts routes behind the Auth Gate.
func (s *Server) mountPosts(r chi.Router) {
	r.Route("/posts", func(r chi.Router) {
		r.Use(s.requireAuth())
		r.Post("/", s.handleCreatePost)
		r.Get("/", s.handleListPosts)
		r.Put("/like/{id}", s.handleLike)
		r.Put("/unlike/{id}", s.handleUnlike)
		r.Post("/comment/{id}", s.handleAddComment)
		r.Get("/{id}", s.handleGetPost)
		r.Delete("/{id}", s.handleDeletePost)
		r.Delete("/{id}/comment/{comment_id}", s.handleDeleteComment)
	})
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var body social.TextInput
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := s.svc.CreatePost(r.Context(), caller(r), body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.ListPosts(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if list == nil {
		list = []*model.Post{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.GetPost(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeletePost(r.Context(), caller(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, msgBody{Msg: social.MsgPostRemoved})
}

func (s *Server) handleLike(w http.ResponseWriter, r *http.Request) {
	likes, err := s.svc.Like(r.Context(), caller(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, likes)
}

func (s *Server) handleUnlike(w http.ResponseWriter, r *http.Request) {
	likes, err := s.svc.Unlike(r.Context(), caller(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, likes)
}

func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	var body social.TextInput
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	comments, err := s.svc.AddComment(r.Context(), caller(r), chi.URLParam(r, "id"), body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

func (s *Server) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	err := s.svc.DeleteComment(r.Context(), caller(r), chi.URLParam(r, "id"), chi.URLParam(r, "comment_id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, msgBody{Msg: social.MsgCommentDeleted})
}
