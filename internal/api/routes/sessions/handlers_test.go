package sessions

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/matt-dz/recetario/internal/api/middleware"
	"github.com/matt-dz/recetario/internal/api/token"
	"github.com/matt-dz/recetario/internal/config"
	"github.com/matt-dz/recetario/internal/env"
	"github.com/matt-dz/recetario/internal/jwt"
	"github.com/matt-dz/recetario/internal/session"
)

func testEnv(t *testing.T) *env.Env {
	t.Helper()
	secret := config.AppSecretValue("test-secret-32-bytes-long-12345")
	e := env.Null()
	e.Config = &config.Config{AppSecret: config.AppSecret{Value: &secret, Version: "1"}}
	return e
}

func bearer(t *testing.T, e *env.Env, userID string) string {
	t.Helper()
	raw, err := token.NewAccessToken(jwt.JWTParams{UserID: userID, Email: userID + "@example.com"}, e)
	if err != nil {
		t.Fatal(err)
	}
	return "Bearer " + raw
}

func newServer(t *testing.T, e *env.Env, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(middleware.InjectEnv(e)(middleware.IdentifyRequest(h)))
	t.Cleanup(srv.Close)
	return srv
}

func TestGetSession(t *testing.T) {
	e := testEnv(t)
	srv := newServer(t, e, HandleGetSession)

	tests := []struct {
		name string
		auth string
		want session.State
	}{
		{name: "anonymous", want: session.Anonymous},
		{name: "signed in", auth: bearer(t, e, "u1"),
			want: session.State{Authenticated: true, UserID: "u1", Email: "u1@example.com"}},
		{name: "invalid token is anonymous", auth: "Bearer junk", want: session.Anonymous},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
			if tt.auth != "" {
				req.Header.Set(token.AuthorizationHeader, tt.auth)
			}
			resp, err := srv.Client().Do(req)
			if err != nil {
				t.Fatal(err)
			}
			defer func() { _ = resp.Body.Close() }()
			var got session.State
			if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("state = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func dial(t *testing.T, srv *httptest.Server, auth string) *websocket.Conn {
	t.Helper()
	header := http.Header{}
	if auth != "" {
		header.Set(token.AuthorizationHeader, auth)
	}
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), header)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) session.Event {
	t.Helper()
	var ev session.Event
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("reading event: %v", err)
	}
	return ev
}

func TestWatchSession(t *testing.T) {
	e := testEnv(t)
	srv := newServer(t, e, HandleWatchSession)
	conn := dial(t, srv, bearer(t, e, "u1"))

	first := readEvent(t, conn)
	if first.Kind != session.KindSignedIn || first.State == nil || first.State.UserID != "u1" {
		t.Fatalf("first event = %+v", first)
	}

	e.Sessions.Publish("u1", session.Progress("recipe", 40))
	ev := readEvent(t, conn)
	if ev.Kind != session.KindUploadProgress || ev.Upload == nil || ev.Upload.Percent != 40 {
		t.Errorf("progress event = %+v", ev)
	}

	e.Sessions.Publish("u2", session.Progress("recipe", 10))
	e.Sessions.Publish("u1", session.SignedOut())
	ev = readEvent(t, conn)
	if ev.Kind != session.KindSignedOut {
		t.Errorf("expected sign-out after other users' events were filtered, got %+v", ev)
	}

	if _, _, err := conn.ReadMessage(); !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Errorf("expected normal close, got %v", err)
	}
}

func TestWatchSessionAnonymous(t *testing.T) {
	e := testEnv(t)
	srv := newServer(t, e, HandleWatchSession)
	conn := dial(t, srv, "")

	ev := readEvent(t, conn)
	if ev.State == nil || ev.State.Authenticated {
		t.Errorf("event = %+v", ev)
	}
	if _, _, err := conn.ReadMessage(); !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Errorf("expected normal close, got %v", err)
	}
}

func TestCheckOrigin(t *testing.T) {
	tests := []struct {
		name   string
		conf   config.Config
		origin string
		want   bool
	}{
		{name: "no origin", conf: config.Config{Env: config.EnvProd}, want: true},
		{name: "dev any origin", conf: config.Config{}, origin: "http://localhost:5173", want: true},
		{name: "prod host origin", conf: config.Config{Env: config.EnvProd, HostOrigin: "https://r.example.com"},
			origin: "https://r.example.com", want: true},
		{name: "prod foreign origin", conf: config.Config{Env: config.EnvProd, HostOrigin: "https://r.example.com"},
			origin: "https://evil.example.com", want: false},
		{name: "listed origin", conf: config.Config{HTTP: config.HTTP{AllowedOrigins: []string{"https://a.example.com"}}},
			origin: "https://b.example.com", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := env.Null()
			e.Config = &tt.conf
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			if got := checkOrigin(e)(r); got != tt.want {
				t.Errorf("checkOrigin() = %v, want %v", got, tt.want)
			}
		})
	}
}
