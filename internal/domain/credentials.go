package domain

// Nombres de campo del registro de credenciales en el almacenamiento.
const (
	FieldLoggedIn = "isLoggedIn"
	FieldEmail    = "userEmail"
	FieldName     = "userName"
)

// CredentialRecord es el estado de sesión visible para la UI de un perfil de navegador.
// No está verificado criptográficamente; sólo decide qué se renderiza.
type CredentialRecord struct {
	LoggedIn bool   `json:"isLoggedIn"`
	Email    string `json:"userEmail"`
	Name     string `json:"userName"`
}

// DisplayLabel resuelve el nombre a mostrar: nombre, email o "User".
func (r CredentialRecord) DisplayLabel() string {
	switch {
	case r.Name != "":
		return r.Name
	case r.Email != "":
		return r.Email
	default:
		return "User"
	}
}
