package xero

import (
	"context"
	"net/url"
)

// Scopes requested during the authorization code flow.
const oauthScopes = "openid profile email accounting.transactions accounting.contacts"

// AuthorizeURL builds the login URL the user is redirected to.
func (s *TokenStore) AuthorizeURL(state string) string {
	q := url.Values{
		"response_type": {"code"},
		"client_id":     {s.cfg.ClientID},
		"redirect_uri":  {s.cfg.RedirectURI},
		"scope":         {oauthScopes},
		"state":         {state},
	}
	return "https://login.xero.com/identity/connect/authorize?" + q.Encode()
}

// Exchange trades the authorization code from the OAuth callback for tokens
// and persists them.
func (s *TokenStore) Exchange(ctx context.Context, code string) (*Tokens, error) {
	form := url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"redirect_uri":  {s.cfg.RedirectURI},
		"client_id":     {s.cfg.ClientID},
		"client_secret": {s.cfg.ClientSecret},
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.postTokenForm(ctx, form)
	if err != nil {
		return nil, err
	}
	t.withExpiresAt()
	if err := s.save(*t); err != nil {
		return nil, err
	}
	return t, nil
}
