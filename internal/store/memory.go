// internal/store/memory.go
//
// In-memory implementation of Store.
// Used by tests and by `DATABASE_URI=memory://` for local development.
//
// Characteristics:
//   - Documents are keyed by ID in maps guarded by one RWMutex.
//   - Every read and write copies the document, so callers never share
//     memory with the store (same semantics as a real database round-trip).
//   - State is lost when the process restarts.

package store

import (
	"context"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/robalobadob/connect2pros/internal/model"
)

type memory struct {
	mu       sync.RWMutex
	users    map[primitive.ObjectID]model.User
	profiles map[primitive.ObjectID]*model.Profile // keyed by owning user
	posts    map[primitive.ObjectID]*model.Post
}

// NewMemoryStore constructs an empty in-memory Store.
func NewMemoryStore() Store {
	return &memory{
		users:    make(map[primitive.ObjectID]model.User),
		profiles: make(map[primitive.ObjectID]*model.Profile),
		posts:    make(map[primitive.ObjectID]*model.Post),
	}
}

func (m *memory) Users() Users                    { return memUsers{m} }
func (m *memory) Profiles() Profiles              { return memProfiles{m} }
func (m *memory) Posts() Posts                    { return memPosts{m} }
func (m *memory) Close(ctx context.Context) error { return nil }

// ------------------------------- users -------------------------------------

type memUsers struct{ m *memory }

func (r memUsers) Create(ctx context.Context, u *model.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.users[u.ID]; ok {
		return ErrDuplicate
	}
	for _, existing := range r.m.users {
		if existing.Email == u.Email {
			return ErrDuplicate
		}
	}
	r.m.users[u.ID] = *u
	return nil
}

func (r memUsers) ByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	u, ok := r.m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (r memUsers) ByEmail(ctx context.Context, email string) (*model.User, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	for _, u := range r.m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (r memUsers) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.users[id]; !ok {
		return ErrNotFound
	}
	delete(r.m.users, id)
	return nil
}

// ------------------------------ profiles -----------------------------------

type memProfiles struct{ m *memory }

func (r memProfiles) Create(ctx context.Context, p *model.Profile) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.profiles[p.User]; ok {
		return ErrDuplicate
	}
	r.m.profiles[p.User] = p.Clone()
	return nil
}

func (r memProfiles) ByUser(ctx context.Context, user primitive.ObjectID) (*model.Profile, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	p, ok := r.m.profiles[user]
	if !ok {
		return nil, ErrNotFound
	}
	return p.Clone(), nil
}

func (r memProfiles) List(ctx context.Context) ([]*model.Profile, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	out := make([]*model.Profile, 0, len(r.m.profiles))
	for _, p := range r.m.profiles {
		out = append(out, p.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (r memProfiles) Update(ctx context.Context, p *model.Profile) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cur, ok := r.m.profiles[p.User]
	if !ok || cur.ID != p.ID {
		return ErrNotFound
	}
	if cur.Version != p.Version {
		return ErrConflict
	}
	p.Version++
	r.m.profiles[p.User] = p.Clone()
	return nil
}

func (r memProfiles) DeleteByUser(ctx context.Context, user primitive.ObjectID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	delete(r.m.profiles, user)
	return nil
}

// -------------------------------- posts ------------------------------------

type memPosts struct{ m *memory }

func (r memPosts) Create(ctx context.Context, p *model.Post) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.posts[p.ID]; ok {
		return ErrDuplicate
	}
	r.m.posts[p.ID] = p.Clone()
	return nil
}

func (r memPosts) ByID(ctx context.Context, id primitive.ObjectID) (*model.Post, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	p, ok := r.m.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p.Clone(), nil
}

func (r memPosts) List(ctx context.Context) ([]*model.Post, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	out := make([]*model.Post, 0, len(r.m.posts))
	for _, p := range r.m.posts {
		out = append(out, p.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].ID.Hex() > out[j].ID.Hex()
		}
		return out[i].Date.After(out[j].Date)
	})
	return out, nil
}

func (r memPosts) Update(ctx context.Context, p *model.Post) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cur, ok := r.m.posts[p.ID]
	if !ok {
		return ErrNotFound
	}
	if cur.Version != p.Version {
		return ErrConflict
	}
	p.Version++
	r.m.posts[p.ID] = p.Clone()
	return nil
}

func (r memPosts) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.posts[id]; !ok {
		return ErrNotFound
	}
	delete(r.m.posts, id)
	return nil
}

func (r memPosts) DeleteByUser(ctx context.Context, user primitive.ObjectID) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var n int64
	for id, p := range r.m.posts {
		if p.User == user {
			delete(r.m.posts, id)
			n++
		}
	}
	return n, nil
}
