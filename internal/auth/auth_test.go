package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reddit-client/pkg/utils"
)

func doer(t *testing.T) Doer {
	t.Helper()
	c, err := utils.NewRetryableClient(utils.ClientOptions{MaxRetries: 1, Logger: zerolog.Nop()})
	require.NoError(t, err)
	return c
}

func TestPasswordGrant(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, tokenPath, r.URL.Path)

		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "cid", user)
		assert.Equal(t, "csecret", pass)

		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "password", r.PostForm.Get("grant_type"))
		assert.Equal(t, "bot", r.PostForm.Get("username"))
		assert.Equal(t, "pw", r.PostForm.Get("password"))

		_, _ = w.Write([]byte(`{"access_token":"tok","token_type":"bearer","expires_in":3600,"scope":"*"}`))
	}))
	defer srv.Close()

	a, err := NewAuthenticator(doer(t), srv.URL, "test/1.0", GrantPassword, Credentials{
		ClientID: "cid", ClientSecret: "csecret", Username: "bot", Password: "pw",
	})
	require.NoError(t, err)

	tok, err := a.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok", tok)

	_, err = a.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load(), "cached token reused")
}

func TestTokenRefreshedNearExpiry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"access_token":"tok","expires_in":3600}`))
	}))
	defer srv.Close()

	a, err := NewAuthenticator(doer(t), srv.URL, "test/1.0", GrantClientCredentials, Credentials{ClientID: "cid"})
	require.NoError(t, err)

	now := time.Now()
	a.now = func() time.Time { return now }
	_, err = a.Token(context.Background())
	require.NoError(t, err)

	now = now.Add(59*time.Minute + time.Second)
	_, err = a.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestAuthorizationCodeRenewsWithRefreshToken(t *testing.T) {
	var forms []url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		forms = append(forms, r.PostForm)
		if len(forms) == 1 {
			_, _ = w.Write([]byte(`{"access_token":"first","expires_in":3600,"refresh_token":"keep"}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"second","expires_in":3600}`))
	}))
	defer srv.Close()

	a, err := NewAuthenticator(doer(t), srv.URL, "test/1.0", GrantAuthorizationCode, Credentials{
		ClientID: "cid", Code: "once", RedirectURI: "http://localhost:8080/cb",
	})
	require.NoError(t, err)

	now := time.Now()
	a.now = func() time.Time { return now }
	tok, err := a.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "first", tok)

	now = now.Add(2 * time.Hour)
	tok, err = a.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "second", tok)

	require.Len(t, forms, 2)
	assert.Equal(t, "authorization_code", forms[0].Get("grant_type"))
	assert.Equal(t, "once", forms[0].Get("code"))
	assert.Equal(t, "refresh_token", forms[1].Get("grant_type"))
	assert.Equal(t, "keep", forms[1].Get("refresh_token"))
	assert.False(t, forms[1].Has("code"))
}

func TestTemporaryAuthorizationCodeIsNotReplayed(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"access_token":"tok","expires_in":3600}`))
	}))
	defer srv.Close()

	a, err := NewAuthenticator(doer(t), srv.URL, "test/1.0", GrantAuthorizationCode, Credentials{
		ClientID: "cid", Code: "once", RedirectURI: "http://localhost:8080/cb",
	})
	require.NoError(t, err)

	now := time.Now()
	a.now = func() time.Time { return now }
	_, err = a.Token(context.Background())
	require.NoError(t, err)

	now = now.Add(2 * time.Hour)
	_, err = a.Token(context.Background())
	assert.ErrorIs(t, err, ErrCodeRedeemed)
	assert.Equal(t, int32(1), calls.Load())
}

func TestTokenErrors(t *testing.T) {
	cases := map[string]struct {
		status int
		body   string
	}{
		"unauthorized":  {http.StatusUnauthorized, `{"message":"Unauthorized"}`},
		"invalid grant": {http.StatusOK, `{"error":"invalid_grant"}`},
		"not json":      {http.StatusOK, `<html>`},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			a, err := NewAuthenticator(doer(t), srv.URL, "test/1.0", GrantClientCredentials, Credentials{ClientID: "cid"})
			require.NoError(t, err)

			_, err = a.Token(context.Background())
			var authErr *AuthError
			require.True(t, errors.As(err, &authErr))
			assert.Equal(t, tc.status, authErr.StatusCode)
			assert.Equal(t, tc.body, authErr.Body)
		})
	}
}

func TestNewAuthenticatorValidates(t *testing.T) {
	_, err := NewAuthenticator(nil, "https://www.reddit.com", "ua", GrantPassword, Credentials{ClientID: "cid"})
	assert.Error(t, err)

	_, err = NewAuthenticator(nil, "https://www.reddit.com", "ua", GrantClientCredentials, Credentials{})
	assert.Error(t, err)

	_, err = NewAuthenticator(nil, "https://www.reddit.com", "ua", GrantType("implicit"), Credentials{ClientID: "cid"})
	assert.Error(t, err)

	_, err = NewAuthenticator(nil, "https://www.reddit.com", "ua", GrantAuthorizationCode, Credentials{ClientID: "cid"})
	assert.Error(t, err)

	_, err = NewAuthenticator(nil, "https://www.reddit.com", "ua", GrantAuthorizationCode, Credentials{ClientID: "cid", RefreshToken: "r"})
	assert.NoError(t, err)
}

func TestAuthorizeURL(t *testing.T) {
	raw := AuthorizeURL("https://www.reddit.com/", "cid", "http://localhost:8080/cb", "xyz", "permanent", ScopeIdentity, ScopeRead)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, authorizePath, u.Path)

	q := u.Query()
	assert.Equal(t, "cid", q.Get("client_id"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "xyz", q.Get("state"))
	assert.Equal(t, "permanent", q.Get("duration"))
	assert.Equal(t, "identity read", q.Get("scope"))
}

func TestAuthErrorMessage(t *testing.T) {
	err := &AuthError{StatusCode: 401, Body: "nope"}
	assert.Equal(t, `auth error: status code 401, body: "nope"`, err.Error())
}
