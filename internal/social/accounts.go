package social

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/robalobadob/connect2pros/internal/apperr"
	"github.com/robalobadob/connect2pros/internal/auth"
	"github.com/robalobadob/connect2pros/internal/model"
	"github.com/robalobadob/connect2pros/internal/store"
)

// bcrypt ignores everything past 72 bytes and x/crypto rejects longer input.
const maxPasswordBytes = 72

// RegisterInput is the body of POST /api/users.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginInput is the body of POST /api/auth.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an account and returns a token for it.
func (s *Service) Register(ctx context.Context, in RegisterInput) (string, error) {
	email := normalizeEmail(in.Email)

	var c checks
	c.require(present(in.Name), "name", "Name is required")
	c.require(validEmail(email), "email", "Email is invalid")
	c.require(len(in.Password) >= 6, "password", "Password should contain 6 or more characters")
	c.require(len(in.Password) <= maxPasswordBytes, "password", "Password should contain at most 72 characters")
	if err := c.err(); err != nil {
		return "", err
	}

	_, err := s.users.ByEmail(ctx, email)
	switch {
	case err == nil:
		return "", apperr.AlreadyExists(msgUserExists)
	case !errors.Is(err, store.ErrNotFound):
		return "", apperr.Internal(err)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return "", apperr.Internal(fmt.Errorf("hash password: %w", err))
	}

	u := &model.User{
		ID:       primitive.NewObjectID(),
		Name:     strings.TrimSpace(in.Name),
		Email:    email,
		Password: hash,
		Avatar:   gravatarURL(email),
		Date:     s.now(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return "", apperr.AlreadyExists(msgUserExists)
		}
		return "", apperr.Internal(err)
	}
	log.Info().Str("user", u.ID.Hex()).Msg("user registered")

	return s.issue(u.ID)
}

// Login checks credentials and returns a fresh token.
func (s *Service) Login(ctx context.Context, in LoginInput) (string, error) {
	email := normalizeEmail(in.Email)

	var c checks
	c.require(validEmail(email), "email", "Email is invalid")
	c.require(in.Password != "", "password", "Password is required")
	if err := c.err(); err != nil {
		return "", err
	}

	if len(in.Password) > maxPasswordBytes {
		return "", apperr.InvalidCredentials()
	}

	u, err := s.users.ByEmail(ctx, email)
	if err != nil {
		return "", lookupErr(err, func() error { return apperr.InvalidCredentials() })
	}
	ok, err := auth.CheckPassword(u.Password, in.Password)
	if err != nil {
		return "", apperr.Internal(fmt.Errorf("check password: %w", err))
	}
	if !ok {
		return "", apperr.InvalidCredentials()
	}
	return s.issue(u.ID)
}

func (s *Service) issue(id primitive.ObjectID) (string, error) {
	tok, err := s.tokens.Issue(id.Hex())
	if err != nil {
		return "", apperr.Internal(err)
	}
	return tok, nil
}

// CurrentUser returns the caller's account. The password hash never leaves
// the process: model.User omits it from JSON.
func (s *Service) CurrentUser(ctx context.Context, uid primitive.ObjectID) (*model.User, error) {
	u, err := s.users.ByID(ctx, uid)
	if err != nil {
		return nil, lookupErr(err, errUserNotFound)
	}
	return u, nil
}

// DeleteAccount removes the caller's posts, profile and user record.
// Comments and likes the caller left on other people's posts remain.
func (s *Service) DeleteAccount(ctx context.Context, uid primitive.ObjectID) error {
	n, err := s.posts.DeleteByUser(ctx, uid)
	if err != nil {
		return apperr.Internal(fmt.Errorf("delete posts: %w", err))
	}
	if err := s.profiles.DeleteByUser(ctx, uid); err != nil {
		return apperr.Internal(fmt.Errorf("delete profile: %w", err))
	}
	if err := s.users.Delete(ctx, uid); err != nil && !errors.Is(err, store.ErrNotFound) {
		return apperr.Internal(fmt.Errorf("delete user: %w", err))
	}
	log.Info().Str("user", uid.Hex()).Int64("posts", n).Msg("account removed")
	return nil
}
