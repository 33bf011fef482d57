package domain

// NavMode distingue los dos estados de la barra de navegación.
type NavMode string

const (
	NavAnonymous     NavMode = "anonymous"
	NavAuthenticated NavMode = "authenticated"
)

// NavState es lo que la barra de navegación renderiza.
type NavState struct {
	Mode  NavMode `json:"mode"`
	Label string  `json:"label,omitempty"`
	Email string  `json:"email,omitempty"`
}

// NavStateFrom deriva el estado de navegación de un registro de credenciales.
func NavStateFrom(rec CredentialRecord) NavState {
	if !rec.LoggedIn {
		return NavState{Mode: NavAnonymous}
	}
	return NavState{
		Mode:  NavAuthenticated,
		Label: rec.DisplayLabel(),
		Email: rec.Email,
	}
}

// Authenticated indica si el estado corresponde a una sesión iniciada.
func (s NavState) Authenticated() bool {
	return s.Mode == NavAuthenticated
}
