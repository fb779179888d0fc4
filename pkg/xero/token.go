// Package xero integrates with the Xero accounting API: OAuth token
// management, REST calls and payment posting.
package xero

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/afero"

	"github.com/bankreco/bankreco/pkg/status"
)

const (
	defaultIdentityBase = "https://identity.xero.com"
	defaultAPIBase      = "https://api.xero.com"

	// TokenFile is where tokens and the cached tenant id persist between runs.
	TokenFile = "xero_tokens.json"

	// tokens are refreshed a little before their actual expiry
	expiryBuffer = 60 * time.Second

	defaultExpiresIn = 1800
)

var timeNow = time.Now

// Config carries the OAuth application settings. IdentityBase and APIBase
// default to the public Xero endpoints and exist so tests can point the
// client at a local server.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string

	// TenantID overrides tenant discovery when set.
	TenantID string

	IdentityBase string
	APIBase      string
}

func (c Config) identityBase() string {
	if c.IdentityBase != "" {
		return strings.TrimSuffix(c.IdentityBase, "/")
	}
	return defaultIdentityBase
}

func (c Config) apiBase() string {
	if c.APIBase != "" {
		return strings.TrimSuffix(c.APIBase, "/")
	}
	return defaultAPIBase
}

// ConfigFromEnv builds a Config from the XERO_* environment variables.
func ConfigFromEnv() Config {
	return Config{
		ClientID:     os.Getenv("XERO_CLIENT_ID"),
		ClientSecret: os.Getenv("XERO_CLIENT_SECRET"),
		RedirectURI:  os.Getenv("XERO_REDIRECT_URI"),
		TenantID:     os.Getenv("XERO_TENANT_ID"),
	}
}

// Tokens is the persisted token document. ExpiresAt is absolute unix time
// computed from the expires_in the identity server returns. TenantID is
// cached alongside the tokens once discovered.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int64  `json:"expires_in,omitempty"`
	ExpiresAt    int64  `json:"expires_at,omitempty"`
	TenantID     string `json:"tenant_id,omitempty"`
}

func (t *Tokens) withExpiresAt() {
	ttl := t.ExpiresIn
	if ttl == 0 {
		ttl = defaultExpiresIn
	}
	t.ExpiresAt = timeNow().Unix() + ttl
}

// TokenStore persists tokens on a file system and keeps them fresh.
type TokenStore struct {
	cfg Config
	fs  afero.Fs
	hc  *http.Client
	mu  sync.Mutex
}

// NewTokenStore builds a token store. A nil fs defaults to the OS file
// system rooted at the working directory.
func NewTokenStore(cfg Config, fs afero.Fs) *TokenStore {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &TokenStore{cfg: cfg, fs: fs, hc: &http.Client{Timeout: 60 * time.Second}}
}

// Config returns the store's OAuth settings.
func (s *TokenStore) Config() Config {
	return s.cfg
}

// Save persists tokens, computing ExpiresAt when only ExpiresIn is set.
func (s *TokenStore) Save(t Tokens) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(t)
}

func (s *TokenStore) save(t Tokens) error {
	if t.ExpiresAt == 0 && t.ExpiresIn != 0 {
		t.withExpiresAt()
	}
	data, err := jsoniter.Marshal(t)
	if err != nil {
		return err
	}
	return afero.WriteFile(s.fs, TokenFile, data, 0600)
}

// Load reads the persisted tokens. A missing file yields (nil, nil).
func (s *TokenStore) Load() (*Tokens, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *TokenStore) load() (*Tokens, error) {
	data, err := afero.ReadFile(s.fs, TokenFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var t Tokens
	if err := jsoniter.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// StoreInitial persists the tokens obtained from the OAuth callback
// exchange, optionally along with an already known tenant id.
func (s *TokenStore) StoreInitial(t Tokens, tenantID string) error {
	t.withExpiresAt()
	if tenantID != "" {
		t.TenantID = tenantID
	}
	return s.Save(t)
}

// Refresh exchanges the current refresh token for new tokens. The identity
// server rotates refresh tokens, so the returned one is always persisted.
// Cached fields such as the tenant id survive the refresh.
func (s *TokenStore) Refresh(ctx context.Context) (*Tokens, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.load()
	if err != nil {
		return nil, err
	}
	if current == nil || current.RefreshToken == "" {
		return nil, status.ErrNoTokens
	}

	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {current.RefreshToken},
		"client_id":     {s.cfg.ClientID},
		"client_secret": {s.cfg.ClientSecret},
	}
	fresh, err := s.postTokenForm(ctx, form)
	if err != nil {
		return nil, err
	}

	fresh.TenantID = current.TenantID
	fresh.withExpiresAt()
	if err := s.save(*fresh); err != nil {
		return nil, err
	}
	return fresh, nil
}

func (s *TokenStore) postTokenForm(ctx context.Context, form url.Values) (*Tokens, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.cfg.identityBase()+"/connect/token", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token request failed (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var t Tokens
	if err := jsoniter.Unmarshal(body, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// AccessToken returns a valid access token, refreshing first when the
// current one is expired or about to expire.
func (s *TokenStore) AccessToken(ctx context.Context) (string, error) {
	t, err := s.Load()
	if err != nil {
		return "", err
	}
	if t == nil {
		return "", status.ErrNoTokens
	}
	if t.ExpiresAt <= timeNow().Add(expiryBuffer).Unix() {
		t, err = s.Refresh(ctx)
		if err != nil {
			return "", err
		}
	}
	return t.AccessToken, nil
}

// TenantID resolves the organisation to act on. An explicit Config.TenantID
// wins, then the cached value from the token file, then a lookup against
// GET /connections whose first tenant is cached for next time.
func (s *TokenStore) TenantID(ctx context.Context) (string, error) {
	if s.cfg.TenantID != "" {
		return s.cfg.TenantID, nil
	}

	t, err := s.Load()
	if err != nil {
		return "", err
	}
	if t != nil && t.TenantID != "" {
		return t.TenantID, nil
	}

	access, err := s.AccessToken(ctx)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.apiBase()+"/connections", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+access)

	resp, err := s.hc.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("connections request failed (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var conns []struct {
		TenantID string `json:"tenantId"`
	}
	if err := jsoniter.Unmarshal(body, &conns); err != nil {
		return "", err
	}
	if len(conns) == 0 {
		return "", status.ErrNoTenant
	}

	tenant := conns[0].TenantID
	s.mu.Lock()
	defer s.mu.Unlock()
	cached, err := s.load()
	if err != nil {
		return "", err
	}
	if cached == nil {
		cached = &Tokens{}
	}
	cached.TenantID = tenant
	if err := s.save(*cached); err != nil {
		return "", err
	}
	return tenant, nil
}
