package auth

import (
	"context"

	"google.golang.org/api/idtoken"
)

// GoogleIdentity is the subset of an ID-token payload the app cares about.
type GoogleIdentity struct {
	GoogleID string // "sub" claim
	Email    string
	Name     string
	Picture  string
}

// GoogleVerifier verifies a Google ID token and extracts the caller's identity.
type GoogleVerifier interface {
	Verify(ctx context.Context, idToken string) (GoogleIdentity, error)
}

// GoogleTokenVerifier validates ID tokens against Google's public keys for a
// fixed OAuth client ID.
type GoogleTokenVerifier struct {
	clientID string
}

// NewGoogleTokenVerifier creates a verifier bound to the given OAuth client ID.
func NewGoogleTokenVerifier(clientID string) *GoogleTokenVerifier {
	return &GoogleTokenVerifier{clientID: clientID}
}

func (v *GoogleTokenVerifier) Verify(ctx context.Context, idToken string) (GoogleIdentity, error) {
	payload, err := idtoken.Validate(ctx, idToken, v.clientID)
	if err != nil {
		return GoogleIdentity{}, err
	}

	ident := GoogleIdentity{GoogleID: payload.Subject}
	if email, ok := payload.Claims["email"].(string); ok {
		ident.Email = email
	}
	if name, ok := payload.Claims["name"].(string); ok {
		ident.Name = name
	}
	if picture, ok := payload.Claims["picture"].(string); ok {
		ident.Picture = picture
	}
	return ident, nil
}
