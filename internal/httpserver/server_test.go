package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/connect2pros/internal/auth"
	"github.com/robalobadob/connect2pros/internal/config"
	"github.com/robalobadob/connect2pros/internal/github"
	"github.com/robalobadob/connect2pros/internal/social"
	"github.com/robalobadob/connect2pros/internal/store"
)

type fakeRepos map[string]json.RawMessage

func (f fakeRepos) Repos(ctx context.Context, username string) (json.RawMessage, error) {
	if username == "broken" {
		return nil, errors.New("upstream exploded")
	}
	body, ok := f[username]
	if !ok {
		return nil, github.ErrNoProfile
	}
	return body, nil
}

type testAPI struct {
	t      *testing.T
	h      http.Handler
	tokens *auth.TokenService
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	tokens := auth.NewTokenService([]byte("test-secret"), time.Hour)
	gh := fakeRepos{"octocat": json.RawMessage(`[{"name":"hello-world"}]`)}
	svc := social.NewService(store.NewMemoryStore(), tokens, gh)
	cfg := &config.Config{ClientOrigin: "http://localhost:3000", RequestTimeout: 5 * time.Second}
	return &testAPI{t: t, h: New(svc, tokens, cfg).Router(), tokens: tokens}
}

func (a *testAPI) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(a.t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(TokenHeader, token)
	}
	rec := httptest.NewRecorder()
	a.h.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) register(name, email string) string {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/api/users", "", map[string]string{"name": name, "email": email, "password": "secret1"})
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())
	var res struct{ Token string }
	require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.NotEmpty(a.t, res.Token)
	return res.Token
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealthAndIndex(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())

	rec = api.do(http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	rec = api.do(http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"not_found","path":"/nope"}`, rec.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(http.MethodOptions, "/api/posts", "", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), TokenHeader)
}

func TestAuthGate(t *testing.T) {
	api := newTestAPI(t)
	tok := api.register("A", "a@x.com")

	rec := api.do(http.MethodGet, "/api/auth", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"msg":"No token - Authorization Denied"}`, rec.Body.String())

	rec = api.do(http.MethodGet, "/api/auth", "not.a.token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"msg":"Invalid Token"}`, rec.Body.String())

	foreign, err := auth.NewTokenService([]byte("other-secret"), time.Hour).Issue("64b7f0c2a1b2c3d4e5f60718")
	require.NoError(t, err)
	rec = api.do(http.MethodGet, "/api/posts", foreign, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"msg":"Invalid Token"}`, rec.Body.String())

	// A token whose user id is not an ObjectID.
	odd, err := api.tokens.Issue("alice")
	require.NoError(t, err)
	rec = api.do(http.MethodGet, "/api/posts", odd, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(http.MethodGet, "/api/auth", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[map[string]any](t, rec)
	assert.Equal(t, "a@x.com", me["email"])
	assert.NotContains(t, me, "password")

	claims, err := api.tokens.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, claims.User.ID, me["_id"])
}

func TestRegisterAndLogin(t *testing.T) {
	api := newTestAPI(t)
	api.register("A", "a@x.com")

	rec := api.do(http.MethodPost, "/api/auth", "", map[string]string{"email": "a@x.com", "password": "wrong"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"errors":[{"msg":"Invalid Credentials"}]}`, rec.Body.String())

	rec = api.do(http.MethodPost, "/api/auth", "", map[string]string{"email": "a@x.com", "password": "secret1"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decode[tokenRes](t, rec).Token)

	rec = api.do(http.MethodPost, "/api/users", "", map[string]string{"name": "A", "email": "a@x.com", "password": "secret1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"errors":[{"msg":"User already exists"}]}`, rec.Body.String())
}

func TestValidationBody(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodPost, "/api/users", "", map[string]string{"name": "A", "email": "a@x.com", "password": "123"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t,
		`{"errors":[{"msg":"Password should contain 6 or more characters","param":"password","location":"body"}]}`,
		rec.Body.String())

	rec = api.do(http.MethodPost, "/api/users", "", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	errs := decode[errorsBody](t, rec)
	require.Len(t, errs.Errors, 1)
	assert.Equal(t, "body", errs.Errors[0].Param)
}

func TestProfileRoutes(t *testing.T) {
	api := newTestAPI(t)
	tok := api.register("Alice", "alice@x.com")

	rec := api.do(http.MethodGet, "/api/profile/me", tok, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"msg":"There is no profile for this user"}`, rec.Body.String())

	rec = api.do(http.MethodPost, "/api/profile", tok, map[string]any{"status": "Developer", "skills": "go, sql", "company": "Acme"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = api.do(http.MethodPost, "/api/profile", tok, map[string]any{"status": "Lead", "skills": []string{"go"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	p := decode[map[string]any](t, rec)
	assert.Equal(t, "Lead", p["status"])
	assert.Equal(t, "Acme", p["company"])
	owner := p["user"].(map[string]any)
	assert.Equal(t, "Alice", owner["name"])

	rec = api.do(http.MethodGet, "/api/profile", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 1)

	rec = api.do(http.MethodGet, "/api/profile/user/"+owner["_id"].(string), "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = api.do(http.MethodGet, "/api/profile/user/garbage", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodPut, "/api/profile/experience", tok, map[string]any{"title": "Dev", "company": "Acme", "from": "2020-01-01", "current": true})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	exp := decode[map[string]any](t, rec)["experience"].([]any)
	require.Len(t, exp, 1)
	expID := exp[0].(map[string]any)["_id"].(string)

	rec = api.do(http.MethodDelete, "/api/profile/experience/"+expID, tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[map[string]any](t, rec)["experience"])
	rec = api.do(http.MethodDelete, "/api/profile/experience/"+expID, tok, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(http.MethodPut, "/api/profile/education", tok, map[string]any{"school": "MIT"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = api.do(http.MethodPut, "/api/profile/education", tok, map[string]any{"school": "MIT", "degree": "BSc", "fieldOfStudy": "CS", "from": "2010-09-01"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	edu := decode[map[string]any](t, rec)["education"].([]any)
	require.Len(t, edu, 1)
	eduID := edu[0].(map[string]any)["_id"].(string)
	rec = api.do(http.MethodDelete, "/api/profile/education/"+eduID, tok, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGitHubRoute(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodGet, "/api/profile/github/octocat", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"name":"hello-world"}]`, rec.Body.String())

	rec = api.do(http.MethodGet, "/api/profile/github/ghost", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"msg":"No GitHub profile found"}`, rec.Body.String())

	rec = api.do(http.MethodGet, "/api/profile/github/broken", "", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"msg":"Server Error"}`, rec.Body.String())
}

func TestPostRoutes(t *testing.T) {
	api := newTestAPI(t)
	alice := api.register("Alice", "alice@x.com")
	bob := api.register("Bob", "bob@x.com")

	rec := api.do(http.MethodPost, "/api/posts", alice, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodPost, "/api/posts", alice, map[string]string{"text": "hello"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	post := decode[map[string]any](t, rec)
	id := post["_id"].(string)
	assert.Equal(t, "Alice", post["name"])

	rec = api.do(http.MethodGet, "/api/posts", bob, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 1)

	rec = api.do(http.MethodPut, "/api/posts/like/"+id, bob, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 1)
	rec = api.do(http.MethodPut, "/api/posts/like/"+id, bob, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"msg":"Post: Already Liked"}`, rec.Body.String())
	rec = api.do(http.MethodPut, "/api/posts/unlike/"+id, bob, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
	rec = api.do(http.MethodPut, "/api/posts/unlike/"+id, bob, nil)
	assert.JSONEq(t, `{"msg":"Post: Has not yet been liked"}`, rec.Body.String())

	rec = api.do(http.MethodPost, "/api/posts/comment/"+id, bob, map[string]string{"text": "nice"})
	require.Equal(t, http.StatusOK, rec.Code)
	comments := decode[[]map[string]any](t, rec)
	require.Len(t, comments, 1)
	cid := comments[0]["_id"].(string)

	rec = api.do(http.MethodDelete, "/api/posts/"+id+"/comment/"+cid, alice, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = api.do(http.MethodDelete, "/api/posts/"+id+"/comment/"+cid, bob, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"msg":"Comment: Deleted"}`, rec.Body.String())
	rec = api.do(http.MethodDelete, "/api/posts/"+id+"/comment/"+cid, bob, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"msg":"Comment: Does not Exists"}`, rec.Body.String())

	rec = api.do(http.MethodDelete, "/api/posts/"+id, bob, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"msg":"User: Unauthorized"}`, rec.Body.String())

	rec = api.do(http.MethodDelete, "/api/posts/"+id, alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"msg":"Post: Removed"}`, rec.Body.String())

	rec = api.do(http.MethodGet, "/api/posts/"+id, alice, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"msg":"Post: Not Found"}`, rec.Body.String())

	rec = api.do(http.MethodGet, "/api/posts/not-an-id", alice, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteAccount(t *testing.T) {
	api := newTestAPI(t)
	tok := api.register("Alice", "alice@x.com")
	rec := api.do(http.MethodPost, "/api/posts", tok, map[string]string{"text": "hello"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(http.MethodDelete, "/api/profile", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"msg":"User Removed"}`, rec.Body.String())

	// The token is still valid but its user is gone.
	rec = api.do(http.MethodGet, "/api/auth", tok, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"msg":"User not found"}`, rec.Body.String())

	other := api.register("Bob", "bob@x.com")
	rec = api.do(http.MethodGet, "/api/posts", other, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestMethodNotAllowedIsJSON(t *testing.T) {
	api := newTestAPI(t)
	tok := api.register("Alice", "alice@x.com")

	rec := api.do(http.MethodDelete, "/api/profile/experience", tok, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.JSONEq(t, `{"error":"method_not_allowed","method":"DELETE","path":"/api/profile/experience"}`, rec.Body.String())
}

func TestTrailingDataAfterBodyIsRejected(t *testing.T) {
	api := newTestAPI(t)
	tok := api.register("Alice", "alice@x.com")

	rec := api.do(http.MethodPost, "/api/posts", tok, `{"text":"hi"} trailing`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	errs := decode[errorsBody](t, rec)
	require.Len(t, errs.Errors, 1)
	assert.Equal(t, "body", errs.Errors[0].Param)

	rec = api.do(http.MethodPost, "/api/posts", tok, `{"text":"a"}{"text":"b"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodPost, "/api/posts", tok, "{\"text\":\"hi\"}\n")
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = api.do(http.MethodGet, "/api/posts", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 1)
}

func TestEducationWithoutFromDate(t *testing.T) {
	api := newTestAPI(t)
	tok := api.register("Alice", "alice@x.com")
	rec := api.do(http.MethodPost, "/api/profile", tok, map[string]any{"status": "Student", "skills": "math"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = api.do(http.MethodPut, "/api/profile/education", tok, map[string]string{"school": "S", "degree": "D", "fieldOfStudy": "F"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	edu := decode[map[string]any](t, rec)["education"].([]any)
	require.Len(t, edu, 1)
	assert.NotContains(t, edu[0].(map[string]any), "from")
}

func TestProfileAfterAccountDeletion(t *testing.T) {
	api := newTestAPI(t)
	tok := api.register("Alice", "alice@x.com")
	rec := api.do(http.MethodDelete, "/api/profile", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(http.MethodPost, "/api/profile", tok, map[string]any{"status": "Developer", "skills": "go"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"msg":"User not found"}`, rec.Body.String())

	rec = api.do(http.MethodGet, "/api/profile", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}
