package service

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"ai3d-studio/internal/domain"
)

func credentialStores(t *testing.T) map[string]CredentialStore {
	t.Helper()
	_, client := newTestRedis(t)
	return map[string]CredentialStore{
		"memory": NewMemoryCredentialStore(),
		"redis":  NewRedisCredentialStore(client, zap.NewNop(), "test"),
	}
}

func TestCredentialStore_WriteReadClear(t *testing.T) {
	for name, store := range credentialStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			if rec := store.Read(ctx, "p1"); rec != (domain.CredentialRecord{}) {
				t.Fatalf("expected empty record, got %+v", rec)
			}

			want := domain.CredentialRecord{LoggedIn: true, Email: "john@example.com", Name: "John Doe"}
			store.Write(ctx, "p1", want)
			if got := store.Read(ctx, "p1"); got != want {
				t.Fatalf("expected %+v, got %+v", want, got)
			}

			store.Write(ctx, "p1", domain.CredentialRecord{LoggedIn: true, Email: "jane@example.com"})
			got := store.Read(ctx, "p1")
			if got.Name != "" || got.Email != "jane@example.com" {
				t.Fatalf("expected write to replace all fields, got %+v", got)
			}

			store.Clear(ctx, "p1")
			if rec := store.Read(ctx, "p1"); rec != (domain.CredentialRecord{}) {
				t.Fatalf("expected cleared record, got %+v", rec)
			}
			store.Clear(ctx, "p1")
		})
	}
}

func TestCredentialStore_SetName(t *testing.T) {
	for name, store := range credentialStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store.Write(ctx, "p1", domain.CredentialRecord{LoggedIn: true, Email: "john@example.com"})

			store.SetName(ctx, "p1", "Johnny")
			got := store.Read(ctx, "p1")
			if !got.LoggedIn || got.Email != "john@example.com" || got.Name != "Johnny" {
				t.Fatalf("expected only name updated, got %+v", got)
			}

			store.SetName(ctx, "p1", "")
			if got := store.Read(ctx, "p1"); got.Name != "" || !got.LoggedIn {
				t.Fatalf("expected name removed, got %+v", got)
			}
		})
	}
}

func TestCredentialStore_ProfilesAreIsolated(t *testing.T) {
	for name, store := range credentialStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store.Write(ctx, "p1", domain.CredentialRecord{LoggedIn: true, Email: "a@example.com"})
			if got := store.Read(ctx, "p2"); got.LoggedIn {
				t.Fatalf("expected p2 untouched, got %+v", got)
			}
		})
	}
}

func TestRedisCredentialStore_StorageFormat(t *testing.T) {
	mr, client := newTestRedis(t)
	store := NewRedisCredentialStore(client, zap.NewNop(), "test")
	ctx := context.Background()

	store.Write(ctx, "p1", domain.CredentialRecord{LoggedIn: true, Email: "john@example.com"})
	if got := mr.HGet("ai3d:credentials:p1", "isLoggedIn"); got != "true" {
		t.Fatalf("expected flag stored as \"true\", got %q", got)
	}
	if got := mr.HGet("ai3d:credentials:p1", "userEmail"); got != "john@example.com" {
		t.Fatalf("expected raw email, got %q", got)
	}
	if mr.HGet("ai3d:credentials:p1", "userName") != "" {
		t.Fatalf("expected absent name field")
	}

	store.Write(ctx, "p1", domain.CredentialRecord{})
	if mr.Exists("ai3d:credentials:p1") {
		t.Fatalf("expected key removed when every field is empty")
	}
}

func TestRedisCredentialStore_UnavailableReadsAnonymous(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 50 * time.Millisecond,
	})
	defer client.Close()
	store := NewRedisCredentialStore(client, zap.NewNop(), "test")
	ctx := context.Background()

	store.Write(ctx, "p1", domain.CredentialRecord{LoggedIn: true, Email: "a@example.com"})
	if got := store.Read(ctx, "p1"); got.LoggedIn {
		t.Fatalf("expected anonymous record when redis is down, got %+v", got)
	}
}
