package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ProviderSessionStore guarda la sesión del proveedor de identidad por perfil de navegador.
// Es independiente del CredentialStore: éste solo refleja lo que la UI muestra.
type ProviderSessionStore interface {
	Store(profileID, userID string, ttl time.Duration) error
	Exists(profileID string) (bool, error)
	Revoke(profileID string) error
}

type memoryProviderSessionStore struct {
	mu    sync.Mutex
	items map[string]time.Time
}

func NewMemoryProviderSessionStore() ProviderSessionStore {
	return &memoryProviderSessionStore{
		items: make(map[string]time.Time),
	}
}

func (s *memoryProviderSessionStore) Store(profileID, _ string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if strings.TrimSpace(profileID) == "" {
		return nil
	}
	s.items[profileID] = time.Now().UTC().Add(ttl)
	return nil
}

func (s *memoryProviderSessionStore) Exists(profileID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.items[profileID]
	if !ok {
		return false, nil
	}
	if time.Now().UTC().After(exp) {
		delete(s.items, profileID)
		return false, nil
	}
	return true, nil
}

func (s *memoryProviderSessionStore) Revoke(profileID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, profileID)
	return nil
}

type redisKVClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type redisProviderSessionStore struct {
	client redisKVClient
	prefix string
}

func NewRedisProviderSessionStore(client *redis.Client) ProviderSessionStore {
	if client == nil {
		return nil
	}
	return &redisProviderSessionStore{
		client: client,
		prefix: "ai3d:provider-session:",
	}
}

func (s *redisProviderSessionStore) Store(profileID, userID string, ttl time.Duration) error {
	profileID = strings.TrimSpace(profileID)
	if profileID == "" {
		return nil
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	return s.client.Set(ctx, s.prefix+profileID, userID, ttl).Err()
}

func (s *redisProviderSessionStore) Exists(profileID string) (bool, error) {
	profileID = strings.TrimSpace(profileID)
	if profileID == "" {
		return false, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	n, err := s.client.Exists(ctx, s.prefix+profileID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *redisProviderSessionStore) Revoke(profileID string) error {
	profileID = strings.TrimSpace(profileID)
	if profileID == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	return s.client.Del(ctx, s.prefix+profileID).Err()
}
