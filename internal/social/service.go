// Package social implements the account, profile and post operations behind
// the REST API. Every method returns either a result or an *apperr.Error
// (possibly wrapped) describing what the client should see.
//
// Ownership rules: a resource records its owner when it is created. Deleting
// a post or comment first loads it (NotFound if missing) and then compares
// the owner with the caller (Unauthorized on mismatch). Profile entries are
// always reached through the caller's own profile.
//
// Read-modify-write sequences are guarded by the store's version check;
// a concurrent writer surfaces as apperr Conflict instead of a lost update.
package social

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/robalobadob/connect2pros/internal/apperr"
	"github.com/robalobadob/connect2pros/internal/auth"
	"github.com/robalobadob/connect2pros/internal/github"
	"github.com/robalobadob/connect2pros/internal/store"
)

// RepoFinder looks up a GitHub user's repositories.
type RepoFinder interface {
	Repos(ctx context.Context, username string) (json.RawMessage, error)
}

// Service holds the collaborators shared by all operations.
type Service struct {
	users    store.Users
	profiles store.Profiles
	posts    store.Posts
	tokens   *auth.TokenService
	github   RepoFinder
	now      func() time.Time
}

// NewService wires a Service over st.
func NewService(st store.Store, tokens *auth.TokenService, gh RepoFinder) *Service {
	return &Service{
		users:    st.Users(),
		profiles: st.Profiles(),
		posts:    st.Posts(),
		tokens:   tokens,
		github:   gh,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Client-facing messages.
const (
	msgUserExists     = "User already exists"
	msgUserNotFound   = "User not found"
	msgNoProfile      = "There is no profile for this user"
	msgPostNotFound   = "Post: Not Found"
	msgNotOwner       = "User: Unauthorized"
	msgAlreadyLiked   = "Post: Already Liked"
	msgNotYetLiked    = "Post: Has not yet been liked"
	msgNoComment      = "Comment: Does not Exists"
	msgNoExperience   = "Experience: Not Found"
	msgNoEducation    = "Education: Not Found"
	msgNoGitHub       = "No GitHub profile found"
	MsgUserRemoved    = "User Removed"
	MsgPostRemoved    = "Post: Removed"
	MsgCommentDeleted = "Comment: Deleted"
)

func errUserNotFound() error { return apperr.NotFound(http.StatusBadRequest, msgUserNotFound) }
func errNoProfile() error    { return apperr.NotFound(http.StatusBadRequest, msgNoProfile) }
func errPostNotFound() error { return apperr.NotFound(http.StatusNotFound, msgPostNotFound) }

// lookupErr maps a store read failure: ErrNotFound becomes notFound, anything
// else is internal.
func lookupErr(err error, notFound func() error) error {
	if errors.Is(err, store.ErrNotFound) {
		return notFound()
	}
	return apperr.Internal(err)
}

// saveErr maps a versioned-update failure.
func saveErr(err error, notFound func() error) error {
	switch {
	case errors.Is(err, store.ErrConflict):
		return apperr.Conflict(err)
	case errors.Is(err, store.ErrNotFound):
		return notFound()
	default:
		return apperr.Internal(err)
	}
}

// parseID converts a hex path parameter; a malformed id is reported as notFound.
func parseID(hex string, notFound func() error) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, notFound()
	}
	return id, nil
}

// GitHubRepos proxies the repository list for username.
func (s *Service) GitHubRepos(ctx context.Context, username string) (json.RawMessage, error) {
	repos, err := s.github.Repos(ctx, username)
	if errors.Is(err, github.ErrNoProfile) {
		return nil, apperr.NotFound(http.StatusNotFound, msgNoGitHub)
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return repos, nil
}
