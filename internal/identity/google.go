package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/goccy/go-json"
	"github.com/hashicorp/go-retryablehttp"
	mHttp "github.com/matt-dz/recetario/internal/http"
	mJson "github.com/matt-dz/recetario/internal/json"
)

var (
	ErrInvalidIDToken   = errors.New("invalid id token")
	ErrAudienceMismatch = errors.New("id token issued for another client")
	ErrEmailNotVerified = errors.New("google email not verified")
	ErrGoogleDisabled   = errors.New("google sign-in not configured")
)

// GoogleIdentity is the verified content of a Google ID token.
type GoogleIdentity struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

type tokenInfo struct {
	Audience      string `json:"aud"`
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified string `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	Expiry        string `json:"exp"`
}

// GoogleVerifier checks ID tokens against Google's tokeninfo endpoint.
type GoogleVerifier struct {
	http         mHttp.HTTPDoer
	tokenInfoURL string
	clientID     string
}

func NewGoogleVerifier(httpClient mHttp.HTTPDoer, tokenInfoURL, clientID string) *GoogleVerifier {
	return &GoogleVerifier{
		http:         httpClient,
		tokenInfoURL: tokenInfoURL,
		clientID:     clientID,
	}
}

func (g *GoogleVerifier) Verify(ctx context.Context, idToken string) (GoogleIdentity, error) {
	if g == nil || g.clientID == "" {
		return GoogleIdentity{}, ErrGoogleDisabled
	}
	if idToken == "" {
		return GoogleIdentity{}, ErrInvalidIDToken
	}

	u, err := url.Parse(g.tokenInfoURL)
	if err != nil {
		return GoogleIdentity{}, fmt.Errorf("parsing tokeninfo url: %w", err)
	}
	q := u.Query()
	q.Set("id_token", idToken)
	u.RawQuery = q.Encode()

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return GoogleIdentity{}, fmt.Errorf("creating tokeninfo request: %w", err)
	}
	resp, err := g.http.Do(req)
	if err != nil {
		return GoogleIdentity{}, fmt.Errorf("calling tokeninfo: %w", err)
	}
	if err := mHttp.ExpectStatus2xx(resp); err != nil {
		var statusErr *mHttp.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusBadRequest {
			return GoogleIdentity{}, ErrInvalidIDToken
		}
		return GoogleIdentity{}, fmt.Errorf("calling tokeninfo: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var info tokenInfo
	if err := mJson.DecodeJSON(&info, json.NewDecoder(resp.Body)); err != nil {
		return GoogleIdentity{}, fmt.Errorf("decoding tokeninfo: %w", err)
	}
	if info.Audience != g.clientID {
		return GoogleIdentity{}, ErrAudienceMismatch
	}
	if info.Subject == "" {
		return GoogleIdentity{}, ErrInvalidIDToken
	}
	if info.EmailVerified != "true" {
		return GoogleIdentity{}, ErrEmailNotVerified
	}
	return GoogleIdentity{
		Subject: info.Subject,
		Email:   info.Email,
		Name:    info.Name,
		Picture: info.Picture,
	}, nil
}
