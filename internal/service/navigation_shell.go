package service

import (
	"context"
	"sync"

	"ai3d-studio/internal/domain"
)

// NavigationShell es la barra de navegación de una pestaña.
// El estado inicial se lee de forma síncrona al crearla, así nunca se muestra
// un estado intermedio.
type NavigationShell struct {
	store     CredentialStore
	profileID string

	mu    sync.RWMutex
	state domain.NavState

	signals     chan struct{}
	unsubscribe func()
}

func NewNavigationShell(ctx context.Context, store CredentialStore, bus *AuthEventBus, profileID string) *NavigationShell {
	s := &NavigationShell{
		store:     store,
		profileID: profileID,
		state:     domain.NavStateFrom(store.Read(ctx, profileID)),
		signals:   make(chan struct{}, 1),
	}
	s.unsubscribe = bus.Subscribe(profileID, s.signal)
	return s
}

// signal corre en la goroutine de quien publica; sólo marca la pestaña como pendiente.
func (s *NavigationShell) signal() {
	select {
	case s.signals <- struct{}{}:
	default:
	}
}

// Signals entrega una señal por cada ráfaga de cambios de autenticación.
func (s *NavigationShell) Signals() <-chan struct{} {
	return s.signals
}

// Refresh relee el CredentialStore. changed indica si el estado visible cambió.
func (s *NavigationShell) Refresh(ctx context.Context) (state domain.NavState, changed bool) {
	next := domain.NavStateFrom(s.store.Read(ctx, s.profileID))

	s.mu.Lock()
	defer s.mu.Unlock()
	changed = next != s.state
	s.state = next
	return next, changed
}

func (s *NavigationShell) State() domain.NavState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *NavigationShell) Close() {
	s.unsubscribe()
}
