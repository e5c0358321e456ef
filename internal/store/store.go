// internal/store/store.go
//
// Persistence interfaces for users, profiles and posts.
// Implementations: in-memory (this package), MongoDB (mongostore) and SQLite
// (sqlitestore).
//
// Update methods are version-checked: the stored document is replaced only if
// its version still equals the caller's copy, and the caller's Version is
// bumped on success. A stale copy yields ErrConflict.

package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/robalobadob/connect2pros/internal/model"
)

var (
	ErrNotFound  = errors.New("store: not found")
	ErrDuplicate = errors.New("store: duplicate key")
	ErrConflict  = errors.New("store: version conflict")
)

// Users persists accounts. Email is unique.
type Users interface {
	Create(ctx context.Context, u *model.User) error
	ByID(ctx context.Context, id primitive.ObjectID) (*model.User, error)
	ByEmail(ctx context.Context, email string) (*model.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// Profiles persists profiles. There is at most one per user.
type Profiles interface {
	Create(ctx context.Context, p *model.Profile) error
	ByUser(ctx context.Context, user primitive.ObjectID) (*model.Profile, error)
	List(ctx context.Context) ([]*model.Profile, error)
	Update(ctx context.Context, p *model.Profile) error
	DeleteByUser(ctx context.Context, user primitive.ObjectID) error
}

// Posts persists feed posts.
type Posts interface {
	Create(ctx context.Context, p *model.Post) error
	ByID(ctx context.Context, id primitive.ObjectID) (*model.Post, error)
	// List returns every post, newest first.
	List(ctx context.Context) ([]*model.Post, error)
	Update(ctx context.Context, p *model.Post) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByUser(ctx context.Context, user primitive.ObjectID) (int64, error)
}

// Store bundles the repositories of one backend.
type Store interface {
	Users() Users
	Profiles() Profiles
	Posts() Posts
	Close(ctx context.Context) error
}
