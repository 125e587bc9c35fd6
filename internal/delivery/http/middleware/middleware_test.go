package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"clinic-booking/config"
	"clinic-booking/internal/domain/entity"
	"clinic-booking/internal/repository"
	"clinic-booking/internal/testutil"
	"clinic-booking/pkg/jwt"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoPrincipal() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if p, ok := GetPrincipalFromContext(r.Context()); ok {
			w.Header().Set("X-Subject", p.Subject())
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestClientIP(t *testing.T) {
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetClientIPFromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.5:4242"
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")

	ClientIP(false)(next).ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "10.0.0.5", seen)

	ClientIP(true)(next).ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "203.0.113.9", seen)

	assert.Equal(t, "unknown", GetClientIPFromContext(context.Background()))
}

func TestRateLimiter_PerAddress(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 0.001, Burst: 1})
	handler := ClientIP(false)(rl.Limit(echoPrincipal()))

	send := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, send("10.0.0.1:1000"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1:1001"))
	assert.Equal(t, http.StatusNoContent, send("10.0.0.2:1000"))
}

func TestAuthenticate(t *testing.T) {
	client, _ := testutil.NewTestRedis(t)
	log, _ := testutil.NewTestLogger()
	sessions := repository.NewSessionRepository(client)
	jwtService := jwt.NewJWTService(config.JWTConfig{Secret: "test-secret", AccessExpiry: time.Hour})
	auth := NewAuthMiddleware(jwtService, sessions, log)
	ctx := context.Background()

	principal := jwt.Principal{Role: entity.RoleDoctor, Username: "ivanov", DoctorID: 3}
	token, tokenID, err := jwtService.GenerateAccessToken(principal)
	require.NoError(t, err)

	call := func(h http.Handler, header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}
	protected := auth.Authenticate(echoPrincipal())

	assert.Equal(t, http.StatusUnauthorized, call(protected, "").Code)
	assert.Equal(t, http.StatusUnauthorized, call(protected, "Token "+token).Code)
	assert.Equal(t, http.StatusForbidden, call(protected, "Bearer garbage").Code)

	// Not stored yet, so it reads as revoked.
	assert.Equal(t, http.StatusForbidden, call(protected, "Bearer "+token).Code)

	require.NoError(t, sessions.Store(ctx, principal.Subject(), tokenID, time.Hour))
	rec := call(protected, "Bearer "+token)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "doctor:3", rec.Header().Get("X-Subject"))

	optional := auth.OptionalAuthenticate(echoPrincipal())
	assert.Equal(t, "doctor:3", call(optional, "Bearer "+token).Header().Get("X-Subject"))
	rec = call(optional, "Bearer garbage")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Subject"))
}

func TestRequireRole(t *testing.T) {
	call := func(ctx context.Context, h http.Handler) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}
	admin := WithPrincipal(context.Background(), jwt.Principal{Role: entity.RoleAdmin, Username: "admin"}, "t1")
	doctor := WithPrincipal(context.Background(), jwt.Principal{Role: entity.RoleDoctor, DoctorID: 1}, "t2")

	assert.Equal(t, http.StatusNoContent, call(admin, RequireAdmin(echoPrincipal())))
	assert.Equal(t, http.StatusForbidden, call(doctor, RequireAdmin(echoPrincipal())))
	assert.Equal(t, http.StatusNoContent, call(doctor, RequireDoctor(echoPrincipal())))
	assert.Equal(t, http.StatusUnauthorized, call(context.Background(), RequireDoctor(echoPrincipal())))
}

func corsRouter() *mux.Router {
	router := mux.NewRouter()
	noContent := func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }
	router.HandleFunc("/api/v1/appointments/{id:[0-9]+}", noContent).Methods(http.MethodDelete)
	router.HandleFunc("/api/v1/doctors", noContent).Methods(http.MethodGet)
	return router
}

func preflight(h http.Handler, origin, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodOptions, path, nil)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", method)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCORS_PreflightFollowsRoutes(t *testing.T) {
	cors := NewCORSMiddleware(config.CORSConfig{AllowedOrigins: []string{"https://clinic.example/"}})
	handler := cors.Handle(corsRouter())

	rec := preflight(handler, "https://clinic.example", http.MethodDelete, "/api/v1/appointments/7")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://clinic.example", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "DELETE, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")
	assert.Equal(t, "Origin", rec.Header().Get("Vary"))

	assert.Equal(t, http.StatusMethodNotAllowed, preflight(handler, "https://clinic.example", http.MethodPut, "/api/v1/appointments/7").Code)
	assert.Equal(t, http.StatusNotFound, preflight(handler, "https://clinic.example", http.MethodGet, "/api/v1/unknown").Code)

	rec = preflight(handler, "https://evil.example", http.MethodDelete, "/api/v1/appointments/7")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_SimpleRequests(t *testing.T) {
	handler := NewCORSMiddleware(config.CORSConfig{AllowedOrigins: []string{"*"}}).Handle(corsRouter())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/doctors", nil)
	req.Header.Set("Origin", "https://anywhere.example")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	// Requests without an Origin are not cross-origin and get no CORS headers.
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/doctors", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
