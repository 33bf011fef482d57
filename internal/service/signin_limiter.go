package service

import (
	"strings"
	"sync"
	"time"
)

// SignInLimiter cuenta intentos fallidos de inicio de sesión por email.
// Blocked y RecordFailure son llamadas separadas: intentos concurrentes que pasan
// Blocked antes de registrar su fallo pueden dejar el contador por encima de max.
// El bloqueo se aplica igual al siguiente intento.
type SignInLimiter interface {
	Blocked(key string) bool
	RecordFailure(key string)
	Reset(key string)
}

type signInLimiter struct {
	mu     sync.Mutex
	window time.Duration
	max    int
	hits   map[string][]time.Time
}

// NewSignInLimiter crea un limitador en memoria con ventana deslizante.
func NewSignInLimiter(window time.Duration, max int) SignInLimiter {
	if max <= 0 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &signInLimiter{
		window: window,
		max:    max,
		hits:   make(map[string][]time.Time),
	}
}

func (l *signInLimiter) Blocked(key string) bool {
	key = normalizeLimiterKey(key)
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.prune(key, time.Now().UTC())) >= l.max
}

func (l *signInLimiter) RecordFailure(key string) {
	key = normalizeLimiterKey(key)
	if key == "" {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now().UTC()
	l.hits[key] = append(l.prune(key, now), now)
}

func (l *signInLimiter) Reset(key string) {
	key = normalizeLimiterKey(key)
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.hits, key)
}

// prune descarta los intentos fuera de la ventana. Requiere l.mu.
func (l *signInLimiter) prune(key string, now time.Time) []time.Time {
	cutoff := now.Add(-l.window)
	entries := l.hits[key]
	kept := entries[:0]
	for _, ts := range entries {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) == 0 {
		delete(l.hits, key)
		return nil
	}
	l.hits[key] = kept
	return kept
}

func normalizeLimiterKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
