package oauth

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/profilekit/profilekit/internal/config"
	"golang.org/x/oauth2"
)

const googleIssuer = "https://accounts.google.com"

// Profile is the subset of verified ID-token claims the service keeps
// after a Google login.
type Profile struct {
	Subject string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
}

// GoogleClient handles the Google OAuth login: consent URL, code
// exchange and ID-token verification. Constructed once at startup and
// injected into the handlers.
type GoogleClient struct {
	conf     *oauth2.Config
	verifier *oidc.IDTokenVerifier
}

// NewGoogle discovers the Google OIDC endpoints and builds the client.
func NewGoogle(ctx context.Context, cfg config.GoogleConfig) (*GoogleClient, error) {
	provider, err := oidc.NewProvider(ctx, googleIssuer)
	if err != nil {
		return nil, fmt.Errorf("oidc provider: %w", err)
	}
	conf := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.Callback,
		Endpoint:     provider.Endpoint(),
		Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
	}
	ver := provider.Verifier(&oidc.Config{ClientID: cfg.ClientID})
	return &GoogleClient{conf: conf, verifier: ver}, nil
}

// AuthCodeURL returns the consent-page URL for the given state.
func (g *GoogleClient) AuthCodeURL(state string) string {
	return g.conf.AuthCodeURL(state)
}

// Exchange trades the authorization code for tokens and returns the
// verified ID-token profile.
func (g *GoogleClient) Exchange(ctx context.Context, code string) (*Profile, error) {
	tok, err := g.conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("code exchange: %w", err)
	}
	rawID, ok := tok.Extra("id_token").(string)
	if !ok || rawID == "" {
		return nil, fmt.Errorf("token response missing id_token")
	}
	idt, err := g.verifier.Verify(ctx, rawID)
	if err != nil {
		return nil, fmt.Errorf("verify id token: %w", err)
	}
	var p Profile
	if err := idt.Claims(&p); err != nil {
		return nil, fmt.Errorf("parse id token claims: %w", err)
	}
	if p.Subject == "" {
		p.Subject = idt.Subject
	}
	return &p, nil
}
