package xero

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bankreco/bankreco/pkg/status"
)

func TestAccessTokenWithoutTokens(t *testing.T) {
	s := NewTokenStore(Config{}, afero.NewMemMapFs())
	_, err := s.AccessToken(context.Background())
	assert.ErrorIs(t, err, status.ErrNoTokens)
}

func TestAccessTokenStillValid(t *testing.T) {
	s := NewTokenStore(Config{}, afero.NewMemMapFs())
	require.NoError(t, s.Save(Tokens{
		AccessToken: "live",
		ExpiresAt:   time.Now().Add(time.Hour).Unix(),
	}))

	access, err := s.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "live", access)
}

func TestRefreshRotatesAndPersists(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/connect/token", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.FormValue("grant_type"))
		assert.Equal(t, "old-refresh", r.FormValue("refresh_token"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"fresh","refresh_token":"rotated","expires_in":1800}`))
	}))
	defer srv.Close()

	s := NewTokenStore(Config{ClientID: "cid", ClientSecret: "secret", IdentityBase: srv.URL}, afero.NewMemMapFs())
	require.NoError(t, s.Save(Tokens{
		AccessToken:  "stale",
		RefreshToken: "old-refresh",
		ExpiresAt:    time.Now().Add(-time.Minute).Unix(),
		TenantID:     "tenant-1",
	}))

	access, err := s.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh", access)

	persisted, err := s.Load()
	require.NoError(t, err)
	require.NotNil(t, persisted)
	assert.Equal(t, "rotated", persisted.RefreshToken)
	assert.Equal(t, "tenant-1", persisted.TenantID)
	assert.Greater(t, persisted.ExpiresAt, time.Now().Unix())
}

func TestTenantIDEnvOverride(t *testing.T) {
	s := NewTokenStore(Config{TenantID: "forced"}, afero.NewMemMapFs())
	tenant, err := s.TenantID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "forced", tenant)
}

func TestTenantIDFromConnections(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/connections", r.URL.Path)
		assert.Equal(t, "Bearer live", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"tenantId":"tenant-xyz","tenantName":"Acme"}]`))
	}))
	defer srv.Close()

	s := NewTokenStore(Config{APIBase: srv.URL}, afero.NewMemMapFs())
	require.NoError(t, s.Save(Tokens{
		AccessToken: "live",
		ExpiresAt:   time.Now().Add(time.Hour).Unix(),
	}))

	tenant, err := s.TenantID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tenant-xyz", tenant)

	// second call served from the cache, no request needed
	srv.Close()
	tenant, err = s.TenantID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tenant-xyz", tenant)
}

func TestExchangePersistsTokens(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.FormValue("grant_type"))
		assert.Equal(t, "the-code", r.FormValue("code"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"first","refresh_token":"first-refresh","expires_in":1800}`))
	}))
	defer srv.Close()

	s := NewTokenStore(Config{ClientID: "cid", IdentityBase: srv.URL}, afero.NewMemMapFs())
	tokens, err := s.Exchange(context.Background(), "the-code")
	require.NoError(t, err)
	assert.Equal(t, "first", tokens.AccessToken)

	persisted, err := s.Load()
	require.NoError(t, err)
	require.NotNil(t, persisted)
	assert.Equal(t, "first-refresh", persisted.RefreshToken)
	assert.Greater(t, persisted.ExpiresAt, int64(0))
}

func TestAuthorizeURL(t *testing.T) {
	s := NewTokenStore(Config{ClientID: "cid", RedirectURI: "http://localhost/callback"}, afero.NewMemMapFs())
	u := s.AuthorizeURL("xyz123")
	assert.Contains(t, u, "https://login.xero.com/identity/connect/authorize?")
	assert.Contains(t, u, "client_id=cid")
	assert.Contains(t, u, "state=xyz123")
	assert.Contains(t, u, "response_type=code")
}
