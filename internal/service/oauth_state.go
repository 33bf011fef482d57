package service

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// OAuthStateService firma el estado de un inicio de sesión OAuth en curso.
// El token viaja en una cookie de corta duración entre el redirect y el callback.
type OAuthStateService struct {
	secret []byte
	ttl    time.Duration
	issuer string
}

// OAuthFlow es lo que el callback necesita para completar el intercambio.
type OAuthFlow struct {
	ProfileID string
	Provider  string
	State     string
	Verifier  string
}

type oauthStateClaims struct {
	Provider  string `json:"prv"`
	Verifier  string `json:"cv"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

var (
	ErrOAuthStateInvalid  = errors.New("oauth state invalid")
	ErrOAuthStateExpired  = errors.New("oauth state expired")
	ErrOAuthStateMismatch = errors.New("oauth state mismatch")
)

const oauthStateTokenType = "oauth_state"

func NewOAuthStateService(secret string, ttl time.Duration) *OAuthStateService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &OAuthStateService{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: "ai3d-studio",
	}
}

// TTL es la vida del token; la cookie usa el mismo valor.
func (s *OAuthStateService) TTL() time.Duration {
	return s.ttl
}

func (s *OAuthStateService) Issue(flow OAuthFlow) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrOAuthStateInvalid
	}
	if strings.TrimSpace(flow.ProfileID) == "" || flow.Provider == "" || flow.State == "" || flow.Verifier == "" {
		return "", ErrOAuthStateInvalid
	}
	now := time.Now().UTC()
	claims := oauthStateClaims{
		Provider:  flow.Provider,
		Verifier:  flow.Verifier,
		TokenType: oauthStateTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        flow.State,
			Issuer:    s.issuer,
			Subject:   flow.ProfileID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify valida el token contra los parámetros recibidos en el callback.
func (s *OAuthStateService) Verify(token, profileID, provider, state string) (OAuthFlow, error) {
	if len(s.secret) == 0 || strings.TrimSpace(token) == "" {
		return OAuthFlow{}, ErrOAuthStateInvalid
	}
	var claims oauthStateClaims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
	)
	_, err := parser.ParseWithClaims(token, &claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return OAuthFlow{}, ErrOAuthStateExpired
		}
		return OAuthFlow{}, ErrOAuthStateInvalid
	}
	if claims.TokenType != oauthStateTokenType || claims.Verifier == "" {
		return OAuthFlow{}, ErrOAuthStateInvalid
	}
	if claims.Subject != profileID || claims.Provider != provider || claims.ID != state {
		return OAuthFlow{}, ErrOAuthStateMismatch
	}
	return OAuthFlow{
		ProfileID: claims.Subject,
		Provider:  claims.Provider,
		State:     claims.ID,
		Verifier:  claims.Verifier,
	}, nil
}
