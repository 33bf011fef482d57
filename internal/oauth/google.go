package oauth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

const (
	googleName   = "google"
	googleIssuer = "https://accounts.google.com"
)

// Google autentica usuarios contra el endpoint OpenID Connect de Google.
type Google struct {
	config   *oauth2.Config
	verifier *oidc.IDTokenVerifier
}

// NewGoogle descubre la metadata del issuer, por lo que hace I/O de red.
func NewGoogle(ctx context.Context, clientID, clientSecret, redirectURL string) (*Google, error) {
	return newOIDCProvider(ctx, googleIssuer, clientID, clientSecret, redirectURL)
}

func newOIDCProvider(ctx context.Context, issuer, clientID, clientSecret, redirectURL string) (*Google, error) {
	if clientID == "" || clientSecret == "" || redirectURL == "" {
		return nil, errors.New("google oauth config missing required fields")
	}

	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("init google oidc provider: %w", err)
	}

	return &Google{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
		verifier: provider.Verifier(&oidc.Config{ClientID: clientID}),
	}, nil
}

func (g *Google) Name() string  { return googleName }
func (g *Google) Label() string { return "Google" }

func (g *Google) AuthCodeURL(state, codeChallenge string) string {
	return g.config.AuthCodeURL(
		state,
		oauth2.AccessTypeOnline,
		oauth2.SetAuthURLParam("code_challenge", codeChallenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
		oauth2.SetAuthURLParam("prompt", "select_account"),
	)
}

func (g *Google) Exchange(ctx context.Context, code, codeVerifier string) (Identity, error) {
	token, err := g.config.Exchange(ctx, code, oauth2.VerifierOption(codeVerifier))
	if err != nil {
		return Identity{}, fmt.Errorf("google token exchange: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return Identity{}, errors.New("google did not return id_token")
	}

	idToken, err := g.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return Identity{}, fmt.Errorf("google id_token verification: %w", err)
	}

	var claims struct {
		Subject       string `json:"sub"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return Identity{}, fmt.Errorf("google id_token claims: %w", err)
	}
	if claims.Subject == "" || claims.Email == "" {
		return Identity{}, errors.New("google id_token missing required claims")
	}

	return Identity{
		Provider:      googleName,
		Subject:       claims.Subject,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
		DisplayName:   strings.TrimSpace(claims.Name),
	}, nil
}
