package social

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/robalobadob/connect2pros/internal/apperr"
	"github.com/robalobadob/connect2pros/internal/model"
)

func TestRegister_DuplicateEmail(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	tok, err := s.Register(ctx, RegisterInput{Name: "A", Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, tok)

	_, err = s.Register(ctx, RegisterInput{Name: "A2", Email: "a@x.com", Password: "secret2"})
	ae := requireKind(t, err, apperr.KindAlreadyExists, http.StatusBadRequest)
	assert.Equal(t, "User already exists", ae.Msg)

	_, err = s.Register(ctx, RegisterInput{Name: "A3", Email: " A@X.com", Password: "secret3"})
	requireKind(t, err, apperr.KindAlreadyExists, http.StatusBadRequest)
}

func TestRegister_Validation(t *testing.T) {
	s, _ := newTestService(t)

	_, err := s.Register(context.Background(), RegisterInput{Name: " ", Email: "not-an-email", Password: "123"})
	ae := requireKind(t, err, apperr.KindValidation, http.StatusBadRequest)

	params := []string{}
	for _, f := range ae.Fields {
		params = append(params, f.Param)
	}
	assert.Equal(t, []string{"name", "email", "password"}, params)
}

func TestPasswordLengthLimit(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	long := strings.Repeat("p", maxPasswordBytes+1)

	_, err := s.Register(ctx, RegisterInput{Name: "A", Email: "a@x.com", Password: long})
	ae := requireKind(t, err, apperr.KindValidation, http.StatusBadRequest)
	assert.Equal(t, "password", ae.Fields[0].Param)

	register(t, s, "A", "a@x.com")
	_, err = s.Login(ctx, LoginInput{Email: "a@x.com", Password: long})
	requireKind(t, err, apperr.KindInvalidCredentials, http.StatusBadRequest)
}

func TestRegister_TrimsName(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	uid := register(t, s, "  Alice \t", "alice@x.com")

	u, err := s.CurrentUser(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, "Alice", u.Name)

	p, err := s.CreatePost(ctx, uid, TextInput{Text: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "Alice", p.Name)
}

func TestRegister_StoresHashAndGravatar(t *testing.T) {
	s, st := newTestService(t)
	uid := register(t, s, "A", "a@x.com")

	u, err := st.Users().ByID(context.Background(), uid)
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", u.Password)
	assert.Equal(t, gravatarURL("a@x.com"), u.Avatar)
}

func TestLogin(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	uid := register(t, s, "A", "a@x.com")

	tok, err := s.Login(ctx, LoginInput{Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)
	claims, err := s.tokens.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, uid.Hex(), claims.User.ID)

	_, err = s.Login(ctx, LoginInput{Email: "a@x.com", Password: "wrong"})
	ae := requireKind(t, err, apperr.KindInvalidCredentials, http.StatusBadRequest)
	assert.Equal(t, "Invalid Credentials", ae.Msg)

	_, err = s.Login(ctx, LoginInput{Email: "nobody@x.com", Password: "secret1"})
	requireKind(t, err, apperr.KindInvalidCredentials, http.StatusBadRequest)

	_, err = s.Login(ctx, LoginInput{Email: "a@x.com"})
	requireKind(t, err, apperr.KindValidation, http.StatusBadRequest)
}

func TestLogin_CorruptHashIsInternal(t *testing.T) {
	s, st := newTestService(t)
	ctx := context.Background()
	require.NoError(t, st.Users().Create(ctx, &model.User{ID: primitive.NewObjectID(), Name: "B", Email: "b@x.com", Password: "garbage"}))

	_, err := s.Login(ctx, LoginInput{Email: "b@x.com", Password: "secret1"})
	requireKind(t, err, apperr.KindInternal, http.StatusInternalServerError)
}

func TestCurrentUser_OmitsPassword(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	uid := register(t, s, "A", "a@x.com")

	u, err := s.CurrentUser(ctx, uid)
	require.NoError(t, err)
	b, err := json.Marshal(u)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "password")
	assert.Contains(t, string(b), `"email":"a@x.com"`)

	_, err = s.CurrentUser(ctx, primitive.NewObjectID())
	ae := requireKind(t, err, apperr.KindNotFound, http.StatusBadRequest)
	assert.Equal(t, "User not found", ae.Msg)
}

func TestDeleteAccount_RemovesPostsProfileAndUser(t *testing.T) {
	s, st := newTestService(t)
	ctx := context.Background()
	alice := register(t, s, "Alice", "alice@x.com")
	bob := register(t, s, "Bob", "bob@x.com")

	_, err := s.UpsertProfile(ctx, alice, profileInput("Developer", "go"))
	require.NoError(t, err)
	_, err = s.CreatePost(ctx, alice, TextInput{Text: "mine"})
	require.NoError(t, err)
	bobs, err := s.CreatePost(ctx, bob, TextInput{Text: "his"})
	require.NoError(t, err)

	require.NoError(t, s.DeleteAccount(ctx, alice))

	_, err = st.Users().ByID(ctx, alice)
	assert.Error(t, err)
	_, err = s.MyProfile(ctx, alice)
	requireKind(t, err, apperr.KindNotFound, http.StatusBadRequest)

	posts, err := s.ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, bobs.ID, posts[0].ID)

	// Deleting again is harmless.
	require.NoError(t, s.DeleteAccount(ctx, alice))
}
