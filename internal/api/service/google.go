package service

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
)

const googleIssuer = "https://accounts.google.com"

// GoogleIdentity is the subset of ID token claims the account store needs.
type GoogleIdentity struct {
	Subject string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// IdentityVerifier verifies a raw federated ID token and extracts the
// identity claims.
type IdentityVerifier interface {
	Verify(ctx context.Context, rawIDToken string) (*GoogleIdentity, error)
}

type googleVerifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewGoogleVerifier builds an IdentityVerifier against Google's OIDC
// discovery endpoint. Returns an error when the provider is unreachable so
// the caller can decide whether federated login is optional.
func NewGoogleVerifier(ctx context.Context, clientID string) (IdentityVerifier, error) {
	provider, err := oidc.NewProvider(ctx, googleIssuer)
	if err != nil {
		return nil, fmt.Errorf("query oidc provider: %w", err)
	}
	return &googleVerifier{
		verifier: provider.Verifier(&oidc.Config{ClientID: clientID}),
	}, nil
}

func (g *googleVerifier) Verify(ctx context.Context, rawIDToken string) (*GoogleIdentity, error) {
	idToken, err := g.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("verify id token: %w", err)
	}

	var identity GoogleIdentity
	if err := idToken.Claims(&identity); err != nil {
		return nil, fmt.Errorf("decode id token claims: %w", err)
	}
	if identity.Subject == "" {
		identity.Subject = idToken.Subject
	}
	return &identity, nil
}
