// Package oauth wraps the authorization-code flow with the external
// identity provider and turns the exchanged token into a Principal.
package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/guruunoob/goobex-website/internal/domain/entity"
)

type Provider struct {
	cfg         *oauth2.Config
	userInfoURL string
}

func NewProvider(clientID, clientSecret, redirectURL, authURL, tokenURL, userInfoURL string, scopes []string) *Provider {
	return &Provider{
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  authURL,
				TokenURL: tokenURL,
			},
		},
		userInfoURL: userInfoURL,
	}
}

// AuthCodeURL returns the provider consent screen URL for the state.
func (p *Provider) AuthCodeURL(state string) string {
	return p.cfg.AuthCodeURL(state)
}

// ExchangePrincipal trades the callback code for a token and fetches
// the userinfo claims this system needs.
func (p *Provider) ExchangePrincipal(ctx context.Context, code string) (*entity.Principal, error) {
	tok, err := p.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("oauth: code exchange: %w", err)
	}

	client := p.cfg.Client(ctx, tok)
	resp, err := client.Get(p.userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("oauth: userinfo: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("oauth: userinfo: http %d", resp.StatusCode)
	}

	var claims struct {
		Email     string `json:"email"`
		GivenName string `json:"given_name"`
		Picture   string `json:"picture"`
		Locale    string `json:"locale"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&claims); err != nil {
		return nil, fmt.Errorf("oauth: decode userinfo: %w", err)
	}
	if claims.Email == "" {
		return nil, fmt.Errorf("oauth: userinfo missing email claim")
	}

	return &entity.Principal{
		Email:     claims.Email,
		GivenName: claims.GivenName,
		Picture:   claims.Picture,
		Locale:    claims.Locale,
	}, nil
}
