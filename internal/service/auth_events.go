package service

import "sync"

// AuthEventBus es el canal dedicado a cambios de estado de autenticación.
// Las señales no llevan payload: cada suscriptor relee el CredentialStore.
// Los suscriptores se agrupan por perfil de navegador (todas sus pestañas).
type AuthEventBus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[string]map[uint64]func()
}

func NewAuthEventBus() *AuthEventBus {
	return &AuthEventBus{
		subs: make(map[string]map[uint64]func()),
	}
}

// Publish entrega una señal a cada suscriptor del perfil registrado al momento de la llamada.
// Los handlers corren en la goroutine del llamador y no deben bloquear.
func (b *AuthEventBus) Publish(profileID string) {
	b.mu.RLock()
	handlers := make([]func(), 0, len(b.subs[profileID]))
	for _, h := range b.subs[profileID] {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h()
	}
}

// Subscribe registra handler para el perfil. No hay replay de eventos previos.
// La función devuelta desuscribe y es idempotente.
func (b *AuthEventBus) Subscribe(profileID string, handler func()) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	if b.subs[profileID] == nil {
		b.subs[profileID] = make(map[uint64]func())
	}
	b.subs[profileID][id] = handler
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs[profileID], id)
			if len(b.subs[profileID]) == 0 {
				delete(b.subs, profileID)
			}
		})
	}
}
