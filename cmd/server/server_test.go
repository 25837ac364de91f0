package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Simplici0/exportquote/internal/config"
	"github.com/Simplici0/exportquote/internal/db"
	"github.com/Simplici0/exportquote/internal/migrations"
	"github.com/Simplici0/exportquote/internal/seed"
)

const (
	testEmail    = "admin@example.com"
	testPassword = "s3cret"
)

type testServer struct {
	t       *testing.T
	handler http.Handler
	cookie  *http.Cookie
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()

	database, err := db.Open(ctx, filepath.Join(t.TempDir(), "server-test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	require.NoError(t, migrations.Up(ctx, database))
	_, err = seed.Run(ctx, database, seed.Config{AdminEmail: testEmail, AdminPassword: testPassword})
	require.NoError(t, err)

	cfg := config.Config{
		SessionSecret:      "test-secret",
		HistoryLimit:       50,
		RateProvider:       "static",
		MasterDataCacheTTL: time.Minute,
	}
	srv := newServer(database, cfg, zap.NewNop())
	return &testServer{t: t, handler: srv.routes()}
}

func (ts *testServer) do(method, path string, body any) *httptest.ResponseRecorder {
	ts.t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(ts.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if ts.cookie != nil {
		req.AddCookie(ts.cookie)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) login() {
	ts.t.Helper()
	rec := ts.do(http.MethodPost, "/login", map[string]string{"email": testEmail, "password": testPassword})
	require.Equal(ts.t, http.StatusOK, rec.Code, rec.Body.String())

	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookieName {
			ts.cookie = c
		}
	}
	require.NotNil(ts.t, ts.cookie)
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type errorEnvelope struct {
	Error struct {
		Code    string   `json:"code"`
		Message string   `json:"message"`
		Missing []string `json:"missing"`
	} `json:"error"`
}

func requireError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) errorEnvelope {
	t.Helper()
	require.Equal(t, status, rec.Code, rec.Body.String())
	env := decodeBody[errorEnvelope](t, rec)
	require.Equal(t, code, env.Error.Code)
	return env
}

func TestHealthzIsPublic(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[map[string]any](t, rec)
	require.Equal(t, "ok", body["status"])
	require.EqualValues(t, 2, body["schema_version"])
}

func TestAuthRequiredAndLogin(t *testing.T) {
	ts := newTestServer(t)

	requireError(t, ts.do(http.MethodGet, "/api/quotes", nil), http.StatusUnauthorized, "unauthorized")
	requireError(t, ts.do(http.MethodPost, "/login", map[string]string{"email": testEmail, "password": "wrong"}), http.StatusUnauthorized, "unauthorized")

	ts.cookie = &http.Cookie{Name: sessionCookieName, Value: "forged.deadbeef"}
	requireError(t, ts.do(http.MethodGet, "/api/quotes", nil), http.StatusUnauthorized, "unauthorized")

	ts.cookie = nil
	ts.login()
	rec := ts.do(http.MethodGet, "/api/quotes", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `[]`, rec.Body.String())
}

func TestLoginAcceptsFormPost(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader("email=ADMIN@example.com&password="+testPassword))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestSessionRoundTrip(t *testing.T) {
	a := newAuthService(nil, "secret")
	value := a.createSessionValue("admin@example.com")

	email, ok := a.verifySessionValue(value)
	require.True(t, ok)
	require.Equal(t, "admin@example.com", email)

	_, ok = newAuthService(nil, "other").verifySessionValue(value)
	require.False(t, ok)
	_, ok = a.verifySessionValue("no-dot")
	require.False(t, ok)
}

func TestInvalidJSON(t *testing.T) {
	ts := newTestServer(t)
	ts.login()

	requireError(t, ts.do(http.MethodPost, "/api/quotes", "{not json"), http.StatusBadRequest, "invalid_json")
}
