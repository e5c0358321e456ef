// Package storetest is a contract suite run against every store backend.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/robalobadob/connect2pros/internal/model"
	"github.com/robalobadob/connect2pros/internal/store"
)

// Run exercises st through the store.Store interface. newStore must return
// an empty store each call.
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	t.Run("users", func(t *testing.T) { testUsers(t, newStore(t)) })
	t.Run("profiles", func(t *testing.T) { testProfiles(t, newStore(t)) })
	t.Run("posts", func(t *testing.T) { testPosts(t, newStore(t)) })
}

func now() time.Time { return time.Now().UTC().Truncate(time.Millisecond) }

func testUsers(t *testing.T, st store.Store) {
	ctx := context.Background()
	users := st.Users()

	u := &model.User{ID: primitive.NewObjectID(), Name: "A", Email: "a@x.com", Password: "hash", Avatar: "//gravatar", Date: now()}
	require.NoError(t, users.Create(ctx, u))

	dup := &model.User{ID: primitive.NewObjectID(), Name: "B", Email: "a@x.com", Password: "hash", Date: now()}
	assert.ErrorIs(t, users.Create(ctx, dup), store.ErrDuplicate)

	got, err := users.ByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, got.Email)
	assert.Equal(t, "hash", got.Password)
	assert.True(t, u.Date.Equal(got.Date))

	got, err = users.ByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = users.ByEmail(ctx, "nobody@x.com")
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, users.Delete(ctx, u.ID))
	_, err = users.ByID(ctx, u.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, users.Delete(ctx, u.ID), store.ErrNotFound)
}

func testProfiles(t *testing.T, st store.Store) {
	ctx := context.Background()
	profiles := st.Profiles()
	owner := primitive.NewObjectID()

	p := &model.Profile{
		ID:         primitive.NewObjectID(),
		User:       owner,
		Status:     "Developer",
		Skills:     []string{"go", "sql"},
		Experience: []model.Experience{},
		Education:  []model.Education{},
		Date:       now(),
	}
	require.NoError(t, profiles.Create(ctx, p))

	second := &model.Profile{ID: primitive.NewObjectID(), User: owner, Status: "x", Date: now()}
	assert.ErrorIs(t, profiles.Create(ctx, second), store.ErrDuplicate, "one profile per user")

	got, err := profiles.ByUser(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "sql"}, got.Skills)
	assert.Equal(t, int64(0), got.Version)

	// Two readers race on the same version; the second write must lose.
	a, err := profiles.ByUser(ctx, owner)
	require.NoError(t, err)
	b, err := profiles.ByUser(ctx, owner)
	require.NoError(t, err)

	a.Bio = "first"
	require.NoError(t, profiles.Update(ctx, a))
	assert.Equal(t, int64(1), a.Version)

	b.Bio = "second"
	assert.ErrorIs(t, profiles.Update(ctx, b), store.ErrConflict)

	got, err = profiles.ByUser(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, "first", got.Bio)

	list, err := profiles.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, profiles.DeleteByUser(ctx, owner))
	_, err = profiles.ByUser(ctx, owner)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func testPosts(t *testing.T, st store.Store) {
	ctx := context.Background()
	posts := st.Posts()
	alice, bob := primitive.NewObjectID(), primitive.NewObjectID()

	older := &model.Post{ID: primitive.NewObjectID(), User: alice, Text: "old", Likes: []model.Like{}, Comments: []model.Comment{}, Date: now().Add(-time.Hour)}
	newer := &model.Post{ID: primitive.NewObjectID(), User: bob, Text: "new", Likes: []model.Like{}, Comments: []model.Comment{}, Date: now()}
	require.NoError(t, posts.Create(ctx, older))
	require.NoError(t, posts.Create(ctx, newer))

	list, err := posts.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID, "newest first")
	assert.Equal(t, older.ID, list[1].ID)

	got, err := posts.ByID(ctx, older.ID)
	require.NoError(t, err)
	got.Likes = append([]model.Like{{User: bob}}, got.Likes...)
	require.NoError(t, posts.Update(ctx, got))

	stale, err := posts.ByID(ctx, older.ID)
	require.NoError(t, err)
	assert.Len(t, stale.Likes, 1)
	stale.Version--
	assert.ErrorIs(t, posts.Update(ctx, stale), store.ErrConflict)

	_, err = posts.ByID(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, store.ErrNotFound)

	n, err := posts.DeleteByUser(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, posts.Delete(ctx, newer.ID))
	assert.ErrorIs(t, posts.Delete(ctx, newer.ID), store.ErrNotFound)

	list, err = posts.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}
