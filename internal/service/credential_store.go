package service

import (
	"context"
	"sync"

	"ai3d-studio/internal/domain"
)

// CredentialStore persiste el registro de sesión visible para la UI de cada perfil.
// Las escrituras nunca fallan de forma observable: los errores se registran y se descartan.
// Escrituras concurrentes sobre el mismo perfil: gana la última.
type CredentialStore interface {
	Write(ctx context.Context, profileID string, rec domain.CredentialRecord)
	Read(ctx context.Context, profileID string) domain.CredentialRecord
	Clear(ctx context.Context, profileID string)
	SetName(ctx context.Context, profileID string, name string)
}

// recordFields convierte un registro al formato de almacenamiento: "true" o ausencia
// para el flag, strings crudos para email y nombre. Campos vacíos se eliminan.
func recordFields(rec domain.CredentialRecord) (set map[string]string, del []string) {
	set = make(map[string]string, 3)
	if rec.LoggedIn {
		set[domain.FieldLoggedIn] = "true"
	} else {
		del = append(del, domain.FieldLoggedIn)
	}
	if rec.Email != "" {
		set[domain.FieldEmail] = rec.Email
	} else {
		del = append(del, domain.FieldEmail)
	}
	if rec.Name != "" {
		set[domain.FieldName] = rec.Name
	} else {
		del = append(del, domain.FieldName)
	}
	return set, del
}

func recordFromFields(fields map[string]string) domain.CredentialRecord {
	return domain.CredentialRecord{
		LoggedIn: fields[domain.FieldLoggedIn] == "true",
		Email:    fields[domain.FieldEmail],
		Name:     fields[domain.FieldName],
	}
}

type memoryCredentialStore struct {
	mu       sync.RWMutex
	profiles map[string]map[string]string
}

// NewMemoryCredentialStore crea un CredentialStore en memoria, local al proceso.
func NewMemoryCredentialStore() CredentialStore {
	return &memoryCredentialStore{
		profiles: make(map[string]map[string]string),
	}
}

func (s *memoryCredentialStore) Write(_ context.Context, profileID string, rec domain.CredentialRecord) {
	set, _ := recordFields(rec)
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(set) == 0 {
		delete(s.profiles, profileID)
		return
	}
	s.profiles[profileID] = set
}

func (s *memoryCredentialStore) Read(_ context.Context, profileID string) domain.CredentialRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return recordFromFields(s.profiles[profileID])
}

func (s *memoryCredentialStore) Clear(_ context.Context, profileID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.profiles, profileID)
}

func (s *memoryCredentialStore) SetName(_ context.Context, profileID string, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fields := s.profiles[profileID]
	if name == "" {
		delete(fields, domain.FieldName)
		return
	}
	if fields == nil {
		fields = make(map[string]string, 1)
		s.profiles[profileID] = fields
	}
	fields[domain.FieldName] = name
}
