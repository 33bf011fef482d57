package service

import (
	"context"
)

// PageGuard decide si una página protegida puede mostrarse para un perfil.
type PageGuard struct {
	store CredentialStore
	bus   *AuthEventBus
}

func NewPageGuard(store CredentialStore, bus *AuthEventBus) *PageGuard {
	return &PageGuard{store: store, bus: bus}
}

// Check lee el CredentialStore en el momento de la llamada.
func (g *PageGuard) Check(ctx context.Context, profileID string) bool {
	return g.store.Read(ctx, profileID).LoggedIn
}

// Watch devuelve un canal que se cierra cuando el perfil deja de estar autenticado,
// incluida una salida hecha desde otra pestaña. stop libera la suscripción y es idempotente.
func (g *PageGuard) Watch(ctx context.Context, profileID string) (signedOut <-chan struct{}, stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	signals := make(chan struct{}, 1)
	unsubscribe := g.bus.Subscribe(profileID, func() {
		select {
		case signals <- struct{}{}:
		default:
		}
	})

	out := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer unsubscribe()
		if !g.Check(ctx, profileID) {
			close(out)
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case <-signals:
				if !g.Check(ctx, profileID) && ctx.Err() == nil {
					close(out)
					return
				}
			}
		}
	}()

	return out, func() {
		cancel()
		<-done
	}
}
