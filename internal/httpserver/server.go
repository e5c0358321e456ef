// internal/httpserver/server.go
//
// HTTP server wiring for the connect2pros API.
// Responsibilities:
//   - Router + middleware (request IDs, real IP, panic recovery, timeouts,
//     access logging, JSON content type, CORS).
//   - Public endpoints: "/" (landing page), "/health".
//   - API routes under /api, mounted from routes_*.go.
//   - Auth Gate: verifies the `x-auth-token` header and attaches the caller's
//     identity to the request context.
//   - Response helpers mapping apperr.Error onto status codes and bodies.
//
// Notes:
//   - Handlers never build error bodies by hand; they return the service error
//     to writeError, which picks the `{"msg":...}` or `{"errors":[...]}` shape.
//   - Internal errors are logged with detail and answered with "Server Error".

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/robalobadob/connect2pros/assets"
	"github.com/robalobadob/connect2pros/internal/apperr"
	"github.com/robalobadob/connect2pros/internal/auth"
	"github.com/robalobadob/connect2pros/internal/config"
	"github.com/robalobadob/connect2pros/internal/social"
)

// TokenHeader carries the bearer token on private routes.
const TokenHeader = "x-auth-token"

const maxBodyBytes = 1 << 20

// Server bundles the router and the domain service.
type Server struct {
	r      *chi.Mux
	svc    *social.Service
	tokens *auth.TokenService
}

// New constructs a Server, installs middleware, and registers routes.
func New(svc *social.Service, tokens *auth.TokenService, cfg *config.Config) *Server {
	s := &Server{r: chi.NewRouter(), svc: svc, tokens: tokens}

	// --- middleware ---
	s.r.Use(chimw.RequestID) // add X-Request-ID
	s.r.Use(chimw.RealIP)    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer) // recover from panics
	if cfg.RequestTimeout > 0 {
		s.r.Use(chimw.Timeout(cfg.RequestTimeout)) // bound handler time
	}
	s.r.Use(hlog.NewHandler(log.Logger))
	s.r.Use(hlog.AccessHandler(accessLog))
	s.r.Use(jsonContentType)
	s.r.Use(cors(cfg.ClientOrigin))

	// --- diagnostics ---
	s.r.Get("/", handleIndex)
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	s.r.Route("/api", func(r chi.Router) {
		s.mountUsers(r)
		s.mountProfile(r)
		s.mountPosts(r)
	})

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})
	s.r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method_not_allowed", "method": r.Method, "path": r.URL.Path})
	})

	return s
}

// Start serves HTTP on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	hs := &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- hs.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := hs.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

func handleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := assets.IndexPage()
	if err != nil {
		writeError(w, r, apperr.Internal(err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(page)
}

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors allows the configured browser client to call the API with a token header.
func cors(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+TokenHeader)
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func accessLog(r *http.Request, status, size int, d time.Duration) {
	hlog.FromRequest(r).Info().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("request_id", chimw.GetReqID(r.Context())).
		Int("status", status).
		Int("size", size).
		Dur("duration", d).
		Msg("request")
}

// ------------------------------ auth gate ----------------------------------

// Identity is the authenticated caller attached by requireAuth.
type Identity struct {
	UserID primitive.ObjectID
}

// ctxUserKey is the context key type for storing Identity.
type ctxUserKey struct{}

// IdentityFrom returns the identity requireAuth stored in ctx.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxUserKey{}).(Identity)
	return id, ok
}

const msgNoToken = "No token - Authorization Denied"

// requireAuth enforces a valid token and injects the caller's Identity into
// the request context. It never touches the store.
func (s *Server) requireAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := r.Header.Get(TokenHeader)
			if tok == "" {
				writeError(w, r, apperr.Unauthorized(msgNoToken))
				return
			}
			claims, err := s.tokens.Verify(tok)
			if err != nil {
				writeError(w, r, apperr.InvalidToken())
				return
			}
			uid, err := primitive.ObjectIDFromHex(claims.User.ID)
			if err != nil {
				writeError(w, r, apperr.InvalidToken())
				return
			}
			ctx := context.WithValue(r.Context(), ctxUserKey{}, Identity{UserID: uid})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// caller returns the gated identity. Only valid behind requireAuth.
func caller(r *http.Request) primitive.ObjectID {
	id, _ := IdentityFrom(r.Context())
	return id.UserID
}

// ------------------------------- responses ---------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encode response")
	}
}

type msgBody struct {
	Msg string `json:"msg"`
}

type errorsBody struct {
	Errors []apperr.FieldError `json:"errors"`
}

// writeError classifies err and writes the matching status and body.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	e := apperr.From(err)
	if e.Kind == apperr.KindInternal {
		hlog.FromRequest(r).Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request failed")
	}
	if !e.Listed() {
		writeJSON(w, e.Status, msgBody{Msg: e.Msg})
		return
	}
	fields := e.Fields
	if len(fields) == 0 {
		fields = []apperr.FieldError{{Msg: e.Msg}}
	}
	writeJSON(w, e.Status, errorsBody{Errors: fields})
}

// decodeJSON reads a request body holding a single JSON value into v. An
// empty body leaves v untouched so that field validation reports what is
// missing; anything after the first value is rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	invalid := apperr.Validation(apperr.FieldError{
		Msg:      "Invalid JSON body",
		Param:    "body",
		Location: "body",
	})
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return invalid
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return invalid
	}
	return nil
}
