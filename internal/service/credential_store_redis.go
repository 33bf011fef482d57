package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"ai3d-studio/internal/domain"
)

const (
	credentialKeyPrefix      = "ai3d:credentials:"
	CredentialChangedChannel = "ai3d:credentials:changed"
	credentialOpTimeout      = 500 * time.Millisecond
)

// CredentialChange es el aviso publicado en Redis tras cada mutación.
// Origin identifica la instancia que escribió para que no se re-publique a sí misma.
type CredentialChange struct {
	ProfileID string `json:"profile"`
	Origin    string `json:"origin"`
}

type redisCredentialStore struct {
	client   *redis.Client
	logger   *zap.Logger
	instance string
}

// NewRedisCredentialStore crea un CredentialStore compartido entre instancias.
// instanceID se adjunta a cada aviso de cambio.
func NewRedisCredentialStore(client *redis.Client, logger *zap.Logger, instanceID string) CredentialStore {
	if client == nil {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &redisCredentialStore{
		client:   client,
		logger:   logger,
		instance: instanceID,
	}
}

func (s *redisCredentialStore) key(profileID string) string {
	return credentialKeyPrefix + profileID
}

func (s *redisCredentialStore) Write(ctx context.Context, profileID string, rec domain.CredentialRecord) {
	ctx, cancel := context.WithTimeout(ctx, credentialOpTimeout)
	defer cancel()

	set, del := recordFields(rec)
	key := s.key(profileID)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if len(del) > 0 {
			pipe.HDel(ctx, key, del...)
		}
		if len(set) > 0 {
			args := make([]interface{}, 0, len(set)*2)
			for field, value := range set {
				args = append(args, field, value)
			}
			pipe.HSet(ctx, key, args...)
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("credential store write failed", zap.Error(err), zap.String("profile", profileID))
		return
	}
	s.announce(ctx, profileID)
}

func (s *redisCredentialStore) Read(ctx context.Context, profileID string) domain.CredentialRecord {
	ctx, cancel := context.WithTimeout(ctx, credentialOpTimeout)
	defer cancel()

	fields, err := s.client.HGetAll(ctx, s.key(profileID)).Result()
	if err != nil {
		s.logger.Warn("credential store read failed", zap.Error(err), zap.String("profile", profileID))
		return domain.CredentialRecord{}
	}
	return recordFromFields(fields)
}

func (s *redisCredentialStore) Clear(ctx context.Context, profileID string) {
	ctx, cancel := context.WithTimeout(ctx, credentialOpTimeout)
	defer cancel()

	if err := s.client.Del(ctx, s.key(profileID)).Err(); err != nil {
		s.logger.Warn("credential store clear failed", zap.Error(err), zap.String("profile", profileID))
		return
	}
	s.announce(ctx, profileID)
}

func (s *redisCredentialStore) SetName(ctx context.Context, profileID string, name string) {
	ctx, cancel := context.WithTimeout(ctx, credentialOpTimeout)
	defer cancel()

	var err error
	if name == "" {
		err = s.client.HDel(ctx, s.key(profileID), domain.FieldName).Err()
	} else {
		err = s.client.HSet(ctx, s.key(profileID), domain.FieldName, name).Err()
	}
	if err != nil {
		s.logger.Warn("credential store name write failed", zap.Error(err), zap.String("profile", profileID))
		return
	}
	s.announce(ctx, profileID)
}

func (s *redisCredentialStore) announce(ctx context.Context, profileID string) {
	payload, err := json.Marshal(CredentialChange{ProfileID: profileID, Origin: s.instance})
	if err != nil {
		return
	}
	if err := s.client.Publish(ctx, CredentialChangedChannel, payload).Err(); err != nil {
		s.logger.Warn("credential change publish failed", zap.Error(err), zap.String("profile", profileID))
	}
}
