package service

// SubscriberCount devuelve cuántos suscriptores tiene un perfil.
func (b *AuthEventBus) SubscriberCount(profileID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[profileID])
}
