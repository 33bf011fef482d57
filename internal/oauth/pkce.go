package oauth

import (
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// PKCE es un verifier y su challenge S256.
type PKCE struct {
	Verifier  string
	Challenge string
}

func NewPKCE() PKCE {
	verifier := oauth2.GenerateVerifier()
	return PKCE{
		Verifier:  verifier,
		Challenge: oauth2.S256ChallengeFromVerifier(verifier),
	}
}

// NewState devuelve un valor opaco para el parámetro state.
func NewState() string {
	return uuid.NewString()
}
