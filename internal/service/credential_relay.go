package service

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CredentialRelay reenvía al bus local los cambios de credenciales hechos por otras instancias.
// Es el equivalente del evento storage entre pestañas.
type CredentialRelay struct {
	client   *redis.Client
	bus      *AuthEventBus
	logger   *zap.Logger
	instance string
}

func NewCredentialRelay(client *redis.Client, bus *AuthEventBus, logger *zap.Logger, instanceID string) *CredentialRelay {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CredentialRelay{
		client:   client,
		bus:      bus,
		logger:   logger,
		instance: instanceID,
	}
}

// Run bloquea hasta que ctx se cancele. ready, si no es nil, se cierra una vez que la
// suscripción quedó confirmada por Redis.
func (r *CredentialRelay) Run(ctx context.Context, ready chan<- struct{}) error {
	pubsub := r.client.Subscribe(ctx, CredentialChangedChannel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	if ready != nil {
		close(ready)
	}

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			r.handle(msg.Payload)
		}
	}
}

func (r *CredentialRelay) handle(payload string) {
	var change CredentialChange
	if err := json.Unmarshal([]byte(payload), &change); err != nil {
		r.logger.Warn("invalid credential change notice", zap.Error(err))
		return
	}
	if change.ProfileID == "" || change.Origin == r.instance {
		return
	}
	r.bus.Publish(change.ProfileID)
}
