// Package auth acquires OAuth2 access tokens for the Reddit API.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"reddit-client/internal/models"
)

const (
	tokenPath     = "/api/v1/access_token"
	authorizePath = "/api/v1/authorize"

	// tokens are renewed this long before the server says they expire
	expiryMargin = time.Minute
)

// ErrCodeRedeemed is returned once a temporary authorization code token has
// expired: the code is single use and no refresh token was issued.
var ErrCodeRedeemed = errors.New("authorization code already redeemed and no refresh token was issued")

type GrantType string

const (
	GrantPassword          GrantType = "password"
	GrantClientCredentials GrantType = "client_credentials"
	GrantAuthorizationCode GrantType = "authorization_code"
)

type Scope string

const (
	ScopeIdentity   Scope = "identity"
	ScopeRead       Scope = "read"
	ScopeSubmit     Scope = "submit"
	ScopeVote       Scope = "vote"
	ScopeEdit       Scope = "edit"
	ScopeHistory    Scope = "history"
	ScopeMySubs     Scope = "mysubreddits"
	ScopePrivateMsg Scope = "privatemessages"
	ScopeAll        Scope = "*"
)

// Doer is satisfied by utils.RetryableClient.
type Doer interface {
	Do(req *http.Request) (*http.Response, []byte, error)
}

type Credentials struct {
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	// Code and RedirectURI are used by the authorization code grant.
	// RefreshToken, from an earlier "permanent" authorization, replaces Code.
	Code         string
	RedirectURI  string
	RefreshToken string
}

// Authenticator fetches and caches an access token. It satisfies
// client.TokenSource.
type Authenticator struct {
	doer      Doer
	tokenURL  string
	userAgent string
	grant     GrantType
	creds     Credentials
	now       func() time.Time

	mu       sync.Mutex
	token    string
	expires  time.Time
	refresh  string
	redeemed bool
}

func NewAuthenticator(doer Doer, baseURL, userAgent string, grant GrantType, creds Credentials) (*Authenticator, error) {
	if creds.ClientID == "" {
		return nil, &AuthError{Err: fmt.Errorf("client id is required")}
	}

	switch grant {
	case GrantPassword:
		if creds.Username == "" || creds.Password == "" {
			return nil, &AuthError{Err: fmt.Errorf("username and password are required for the password grant")}
		}
	case GrantAuthorizationCode:
		if creds.RefreshToken == "" && (creds.Code == "" || creds.RedirectURI == "") {
			return nil, &AuthError{Err: fmt.Errorf("code and redirect uri, or a refresh token, are required for the authorization code grant")}
		}
	case GrantClientCredentials:
	default:
		return nil, &AuthError{Err: fmt.Errorf("unsupported grant type %q", grant)}
	}

	if _, err := url.Parse(baseURL); err != nil {
		return nil, &AuthError{Err: fmt.Errorf("failed to parse base URL: %w", err)}
	}

	return &Authenticator{
		doer:      doer,
		tokenURL:  strings.TrimRight(baseURL, "/") + tokenPath,
		userAgent: userAgent,
		grant:     grant,
		creds:     creds,
		now:       time.Now,
		refresh:   creds.RefreshToken,
	}, nil
}

// Token returns the cached token or fetches a new one once it is close to
// expiry. An authorization code is redeemed once; later renewals use the
// refresh token the server returned with it.
func (a *Authenticator) Token(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.token != "" && a.now().Before(a.expires) {
		return a.token, nil
	}
	if a.grant == GrantAuthorizationCode && a.redeemed && a.refresh == "" {
		return "", &AuthError{Err: ErrCodeRedeemed}
	}

	resp, err := a.fetch(ctx)
	if err != nil {
		return "", err
	}

	if a.grant == GrantAuthorizationCode {
		a.redeemed = true
	}
	if resp.RefreshToken != "" {
		a.refresh = resp.RefreshToken
	}
	a.token = resp.AccessToken
	a.expires = a.now().Add(time.Duration(resp.ExpiresIn)*time.Second - expiryMargin)
	return a.token, nil
}

func (a *Authenticator) form() url.Values {
	form := url.Values{"grant_type": {string(a.grant)}}
	switch a.grant {
	case GrantPassword:
		form.Set("username", a.creds.Username)
		form.Set("password", a.creds.Password)
	case GrantAuthorizationCode:
		if a.refresh != "" {
			form.Set("grant_type", "refresh_token")
			form.Set("refresh_token", a.refresh)
			break
		}
		form.Set("code", a.creds.Code)
		form.Set("redirect_uri", a.creds.RedirectURI)
	}
	return form
}

func (a *Authenticator) fetch(ctx context.Context) (models.AuthResponse, error) {
	var tokenResp models.AuthResponse

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.tokenURL, strings.NewReader(a.form().Encode()))
	if err != nil {
		return tokenResp, &AuthError{Err: fmt.Errorf("failed to create token request: %w", err)}
	}

	req.SetBasicAuth(a.creds.ClientID, a.creds.ClientSecret)
	req.Header.Set("User-Agent", a.userAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, body, err := a.doer.Do(req)
	if err != nil {
		return tokenResp, &AuthError{Err: fmt.Errorf("failed to execute token request: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return tokenResp, &AuthError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return tokenResp, &AuthError{
			StatusCode: resp.StatusCode,
			Body:       string(body),
			Err:        fmt.Errorf("failed to unmarshal token response: %w", err),
		}
	}

	// a 200 with {"error": "invalid_grant"} is how bad passwords are reported
	if tokenResp.AccessToken == "" {
		return tokenResp, &AuthError{
			StatusCode: resp.StatusCode,
			Body:       string(body),
			Err:        fmt.Errorf("access token was empty in response"),
		}
	}

	return tokenResp, nil
}

// AuthorizeURL is the page an installed app sends the user to. duration is
// "temporary" or "permanent".
func AuthorizeURL(baseURL, clientID, redirectURI, state, duration string, scopes ...Scope) string {
	if duration == "" {
		duration = "temporary"
	}

	parts := make([]string, 0, len(scopes))
	for _, s := range scopes {
		parts = append(parts, string(s))
	}

	params := url.Values{
		"client_id":     {clientID},
		"response_type": {"code"},
		"state":         {state},
		"redirect_uri":  {redirectURI},
		"duration":      {duration},
		"scope":         {strings.Join(parts, " ")},
	}
	return strings.TrimRight(baseURL, "/") + authorizePath + "?" + params.Encode()
}

// AuthError represents an error that occurred during authentication.
type AuthError struct {
	StatusCode int
	// Body contains the raw response body from the server, which may hold more details.
	Body string
	Err  error
}

func (e *AuthError) Error() string {
	var sb strings.Builder
	sb.WriteString("auth error")

	if e.StatusCode != 0 {
		fmt.Fprintf(&sb, ": status code %d", e.StatusCode)
	}

	if e.Body != "" {
		fmt.Fprintf(&sb, ", body: %q", e.Body)
	}

	if e.Err != nil {
		fmt.Fprintf(&sb, ", err: %v", e.Err)
	}

	return sb.String()
}

func (e *AuthError) Unwrap() error { return e.Err }
