package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"ai3d-studio/internal/domain"
	"ai3d-studio/internal/oauth"
)

// OAuthAccessDenied es el valor de error que devuelve el proveedor cuando el usuario
// cierra o rechaza la pantalla de consentimiento.
const OAuthAccessDenied = "access_denied"

// OAuthStart es el comienzo de un redirect OAuth.
type OAuthStart struct {
	Provider string
	URL      string
	State    string
	Verifier string
}

// OAuthCompletion es el resultado del callback OAuth: un código con su verifier,
// o el parámetro error del proveedor.
type OAuthCompletion struct {
	Provider string
	Code     string
	Verifier string
	Error    string
}

// IdentityAdapter envuelve al proveedor de identidad. Tras cada éxito escribe el
// CredentialStore y publica un cambio de autenticación; cada fallo sale como *AuthError.
type IdentityAdapter struct {
	logger    *zap.Logger
	provider  IdentityProvider
	providers *oauth.Registry
	store     CredentialStore
	bus       *AuthEventBus
}

func NewIdentityAdapter(logger *zap.Logger, provider IdentityProvider, providers *oauth.Registry, store CredentialStore, bus *AuthEventBus) *IdentityAdapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IdentityAdapter{
		logger:    logger,
		provider:  provider,
		providers: providers,
		store:     store,
		bus:       bus,
	}
}

func (a *IdentityAdapter) SignInWithPassword(ctx context.Context, profileID, email, password string) (domain.UserIdentity, error) {
	user, err := a.provider.SignInWithPassword(ctx, profileID, email, password)
	if err != nil {
		return domain.UserIdentity{}, a.fail(err, opSignIn, "", profileID)
	}
	identity := domain.UserIdentity{
		Email:       strings.TrimSpace(email),
		DisplayName: user.DisplayName,
	}
	a.commit(ctx, profileID, identity)
	return identity, nil
}

func (a *IdentityAdapter) SignUpWithPassword(ctx context.Context, profileID, email, password, displayName string) (domain.UserIdentity, error) {
	if _, err := a.provider.CreateUser(ctx, profileID, email, password, displayName); err != nil {
		return domain.UserIdentity{}, a.fail(err, opSignUp, "", profileID)
	}
	identity := domain.UserIdentity{
		Email:       strings.TrimSpace(email),
		DisplayName: strings.TrimSpace(displayName),
	}
	a.commit(ctx, profileID, identity)
	return identity, nil
}

// BeginOAuth prepara el redirect al proveedor con state y PKCE nuevos.
func (a *IdentityAdapter) BeginOAuth(providerName string) (OAuthStart, error) {
	p, err := a.providers.Get(providerName)
	if err != nil {
		return OAuthStart{}, toAuthError(err, opOAuth, providerLabel(nil, providerName))
	}
	pkce := oauth.NewPKCE()
	state := oauth.NewState()
	return OAuthStart{
		Provider: p.Name(),
		URL:      p.AuthCodeURL(state, pkce.Challenge),
		State:    state,
		Verifier: pkce.Verifier,
	}, nil
}

func (a *IdentityAdapter) SignInWithOAuth(ctx context.Context, profileID string, c OAuthCompletion) (domain.UserIdentity, error) {
	p, err := a.providers.Get(c.Provider)
	label := providerLabel(p, c.Provider)
	if err != nil {
		return domain.UserIdentity{}, a.fail(err, opOAuth, label, profileID)
	}

	switch {
	case c.Error == OAuthAccessDenied:
		return domain.UserIdentity{}, a.fail(newProviderError(codePopupClosedByUser), opOAuth, label, profileID)
	case c.Error != "":
		return domain.UserIdentity{}, a.fail(newProviderError("oauth/"+c.Error), opOAuth, label, profileID)
	}

	asserted, err := p.Exchange(ctx, c.Code, c.Verifier)
	if err != nil {
		return domain.UserIdentity{}, a.fail(err, opOAuth, label, profileID)
	}
	user, err := a.provider.SignInWithOAuth(ctx, profileID, asserted)
	if err != nil {
		return domain.UserIdentity{}, a.fail(err, opOAuth, label, profileID)
	}

	identity := domain.UserIdentity{
		Email:       asserted.Email,
		DisplayName: asserted.DisplayName,
	}
	if identity.DisplayName == "" {
		identity.DisplayName = user.DisplayName
	}
	a.commit(ctx, profileID, identity)
	return identity, nil
}

// SignOut nunca falla: el registro local se borra aunque el proveedor no responda.
func (a *IdentityAdapter) SignOut(ctx context.Context, profileID string) {
	if err := a.provider.SignOut(ctx, profileID); err != nil {
		a.logger.Warn("provider sign-out failed", zap.Error(err), zap.String("profile", profileID))
	}
	a.store.Clear(ctx, profileID)
	a.bus.Publish(profileID)
}

func (a *IdentityAdapter) commit(ctx context.Context, profileID string, identity domain.UserIdentity) {
	a.store.Write(ctx, profileID, domain.CredentialRecord{
		LoggedIn: true,
		Email:    identity.Email,
		Name:     identity.DisplayName,
	})
	a.bus.Publish(profileID)
}

func (a *IdentityAdapter) fail(err error, op operation, provider, profileID string) error {
	authErr := toAuthError(err, op, provider)
	if authErr.Kind == Unknown {
		a.logger.Error("identity provider call failed", zap.Error(err), zap.String("op", string(op)), zap.String("profile", profileID))
	} else {
		a.logger.Info("identity provider rejected request", zap.String("kind", string(authErr.Kind)), zap.String("op", string(op)), zap.String("profile", profileID))
	}
	return authErr
}

func providerLabel(p oauth.Provider, name string) string {
	if p != nil {
		return p.Label()
	}
	return name
}
