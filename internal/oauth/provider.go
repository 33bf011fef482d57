package oauth

import (
	"context"
	"fmt"
	"sort"
)

// Identity es lo que el proveedor OAuth afirma del usuario tras un canje exitoso.
type Identity struct {
	Provider      string
	Subject       string
	Email         string
	EmailVerified bool
	DisplayName   string
}

// Provider es un método de inicio de sesión OAuth externo. Solo informa la identidad;
// el alta de cuentas y las sesiones quedan a cargo del llamador.
type Provider interface {
	// Name es el identificador de rutas y registro, p. ej. "google".
	Name() string
	// Label es el nombre visible, p. ej. "Google".
	Label() string
	// AuthCodeURL arma la URL de consentimiento con state y el challenge PKCE S256.
	AuthCodeURL(state, codeChallenge string) string
	// Exchange canjea el código de autorización por una identidad verificada.
	Exchange(ctx context.Context, code, codeVerifier string) (Identity, error)
}

// Registry guarda los proveedores configurados por nombre.
type Registry struct {
	providers map[string]Provider
}

func NewRegistry(list ...Provider) *Registry {
	m := make(map[string]Provider, len(list))
	for _, p := range list {
		if p == nil {
			continue
		}
		m[p.Name()] = p
	}
	return &Registry{providers: m}
}

// Get devuelve el proveedor registrado con ese nombre.
func (r *Registry) Get(name string) (Provider, error) {
	if r == nil {
		return nil, fmt.Errorf("unknown oauth provider: %s", name)
	}
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("unknown oauth provider: %s", name)
	}
	return p, nil
}

// Names lista los nombres registrados en orden lexicográfico.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
