package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/goccy/go-json"

	apiError "github.com/matt-dz/recetario/internal/api/error"
	"github.com/matt-dz/recetario/internal/api/token"
	"github.com/matt-dz/recetario/internal/config"
	"github.com/matt-dz/recetario/internal/env"
	mHttp "github.com/matt-dz/recetario/internal/http"
	"github.com/matt-dz/recetario/internal/identity"
	"github.com/matt-dz/recetario/internal/session"
)

const strongPassword = "Correct-Horse-Battery-9"

func testEnv(t *testing.T) *env.Env {
	t.Helper()
	secret := config.AppSecretValue("test-secret-32-bytes-long-12345")
	e := env.Null()
	e.Config = &config.Config{AppSecret: config.AppSecret{Value: &secret, Version: "1"}}
	return e
}

func serve(e *env.Env, h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req = req.WithContext(env.WithCtx(req.Context(), e))
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func accessCookie(t *testing.T, e *env.Env, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == token.AccessTokenName(e) {
			return c
		}
	}
	t.Fatal("access token cookie not set")
	return nil
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) apiError.ErrorCode {
	t.Helper()
	var body apiError.Error
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding error body %q: %v", rec.Body.String(), err)
	}
	return body.Code
}

func TestSignUpAndLogin(t *testing.T) {
	e := testEnv(t)

	rec := serve(e, HandleSignUp,
		`{"email":"Ana@Example.com","password":"`+strongPassword+`","display_name":"Ana Lopez"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var signedUp SessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &signedUp); err != nil {
		t.Fatal(err)
	}
	if !signedUp.State.Authenticated || signedUp.State.Email != "ana@example.com" {
		t.Errorf("state = %+v", signedUp.State)
	}
	if !signedUp.NewProfile || signedUp.Profile.Name != "Ana" || signedUp.Profile.Surname != "Lopez" {
		t.Errorf("profile = %+v, new = %v", signedUp.Profile, signedUp.NewProfile)
	}
	cookie := accessCookie(t, e, rec)
	claims, err := token.ValidateAccessToken(cookie.Value, e)
	if err != nil {
		t.Fatalf("issued token is invalid: %v", err)
	}
	if claims.Subject != signedUp.State.UserID {
		t.Errorf("token subject = %q, want %q", claims.Subject, signedUp.State.UserID)
	}

	var (
		mu     sync.Mutex
		events []session.Event
	)
	unsubscribe := e.Sessions.Subscribe(signedUp.State.UserID, func(ev session.Event) {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	})
	defer unsubscribe()

	rec = serve(e, HandleLogin, `{"email":"ana@example.com","password":"`+strongPassword+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var loggedIn SessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &loggedIn); err != nil {
		t.Fatal(err)
	}
	if loggedIn.NewProfile || loggedIn.State.UserID != signedUp.State.UserID {
		t.Errorf("login response = %+v", loggedIn)
	}
	mu.Lock()
	if len(events) != 1 || events[0].Kind != session.KindSignedIn {
		t.Errorf("published events = %+v", events)
	}
	mu.Unlock()
}

func TestSignUpErrors(t *testing.T) {
	e := testEnv(t)
	if rec := serve(e, HandleSignUp, `{"email":"cook@example.com","password":"`+strongPassword+`"}`); rec.Code != http.StatusCreated {
		t.Fatalf("seeding account: %d %s", rec.Code, rec.Body.String())
	}

	tests := []struct {
		name string
		body string
		want apiError.ErrorCode
	}{
		{name: "malformed body", body: `{"email":`, want: apiError.BadRequest},
		{name: "unknown field", body: `{"email":"a@b.com","password":"x","admin":true}`, want: apiError.BadRequest},
		{name: "missing password", body: `{"email":"a@b.com"}`, want: apiError.BadRequest},
		{name: "weak password", body: `{"email":"new@example.com","password":"short"}`, want: apiError.WeakPassword},
		{name: "taken email", body: `{"email":"COOK@example.com","password":"` + strongPassword + `"}`, want: apiError.EmailConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(e, HandleSignUp, tt.body)
			if rec.Code != tt.want.StatusCode() {
				t.Errorf("status = %d, want %d", rec.Code, tt.want.StatusCode())
			}
			if got := errorCode(t, rec); got != tt.want {
				t.Errorf("code = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	e := testEnv(t)
	serve(e, HandleSignUp, `{"email":"cook@example.com","password":"`+strongPassword+`"}`)

	for _, body := range []string{
		`{"email":"cook@example.com","password":"Wrong-Password-123"}`,
		`{"email":"nobody@example.com","password":"` + strongPassword + `"}`,
	} {
		rec := serve(e, HandleLogin, body)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d for %s", rec.Code, body)
		}
		if got := errorCode(t, rec); got != apiError.InvalidCredentials {
			t.Errorf("code = %s", got)
		}
	}
}

func TestGoogleLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("id_token") != "valid" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"aud":"client","sub":"42","email":"ana@gmail.com","email_verified":"true",
			"name":"Ana Maria Lopez Garcia","picture":"https://lh3/p.jpg"}`))
	}))
	defer srv.Close()

	e := testEnv(t)
	client := mHttp.DefaultConfig()
	client.RetryMax = 0
	e.Google = identity.NewGoogleVerifier(mHttp.New(client, nil), srv.URL, "client")

	rec := serve(e, HandleGoogleLogin, `{"id_token":"valid"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp SessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Profile.Name != "Ana Maria" || resp.Profile.Surname != "Lopez Garcia" {
		t.Errorf("profile = %+v", resp.Profile)
	}
	if resp.Profile.PhotoURL != "https://lh3/p.jpg" {
		t.Errorf("photo = %q", resp.Profile.PhotoURL)
	}

	rec = serve(e, HandleGoogleLogin, `{"id_token":"forged"}`)
	if got := errorCode(t, rec); got != apiError.InvalidIDToken {
		t.Errorf("code = %s, want %s", got, apiError.InvalidIDToken)
	}

	e.Google = identity.NewGoogleVerifier(mHttp.New(client, nil), srv.URL, "")
	rec = serve(e, HandleGoogleLogin, `{"id_token":"valid"}`)
	if got := errorCode(t, rec); got != apiError.ProviderDisabled {
		t.Errorf("code = %s, want %s", got, apiError.ProviderDisabled)
	}
}

func TestLogout(t *testing.T) {
	e := testEnv(t)
	var got []session.Event
	unsubscribe := e.Sessions.Subscribe("u1", func(ev session.Event) { got = append(got, ev) })
	defer unsubscribe()

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	ctx := token.UserIDWithCtx(env.WithCtx(context.Background(), e), "u1")
	rec := httptest.NewRecorder()
	HandleLogout(rec, req.WithContext(ctx))

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d", rec.Code)
	}
	if c := accessCookie(t, e, rec); c.MaxAge >= 0 {
		t.Errorf("cookie not cleared: %+v", c)
	}
	if len(got) != 1 || got[0].Kind != session.KindSignedOut || got[0].State.Authenticated {
		t.Errorf("published events = %+v", got)
	}
}
