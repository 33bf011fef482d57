package domain

import "time"

// User es una cuenta del directorio de identidad.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name,omitempty"`
	AuthProvider string    `json:"auth_provider,omitempty"`
	AuthSubject  string    `json:"-"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserIdentity es lo que el proveedor de identidad devuelve tras autenticar.
type UserIdentity struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
}
