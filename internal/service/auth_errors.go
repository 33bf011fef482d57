package service

import (
	"errors"
	"fmt"
)

// AuthErrorKind clasifica los fallos del proveedor de identidad sin exponer su vocabulario.
type AuthErrorKind string

const (
	InvalidCredential                AuthErrorKind = "InvalidCredential"
	InvalidEmailFormat               AuthErrorKind = "InvalidEmailFormat"
	RateLimited                      AuthErrorKind = "RateLimited"
	EmailAlreadyInUse                AuthErrorKind = "EmailAlreadyInUse"
	WeakPassword                     AuthErrorKind = "WeakPassword"
	AccountExistsDifferentCredential AuthErrorKind = "AccountExistsDifferentCredential"
	PopupClosedByUser                AuthErrorKind = "PopupClosedByUser"
	Unknown                          AuthErrorKind = "Unknown"
)

// AuthError es el único error que el IdentityAdapter devuelve.
type AuthError struct {
	Kind    AuthErrorKind
	Message string
	cause   error
}

func (e *AuthError) Error() string {
	return e.Message
}

func (e *AuthError) Unwrap() error {
	return e.cause
}

// AsAuthError extrae un *AuthError de err.
func AsAuthError(err error) (*AuthError, bool) {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr, true
	}
	return nil, false
}

// Códigos del proveedor de identidad. No salen del paquete.
const (
	codeInvalidCredential      = "auth/invalid-credential"
	codeUserNotFound           = "auth/user-not-found"
	codeWrongPassword          = "auth/wrong-password"
	codeInvalidEmail           = "auth/invalid-email"
	codeTooManyRequests        = "auth/too-many-requests"
	codeEmailAlreadyInUse      = "auth/email-already-in-use"
	codeWeakPassword           = "auth/weak-password"
	codeAccountExistsOtherCred = "auth/account-exists-with-different-credential"
	codePopupClosedByUser      = "auth/popup-closed-by-user"
)

// providerError es un fallo con código propio del proveedor.
type providerError struct {
	code string
}

func (e *providerError) Error() string {
	return "identity provider: " + e.code
}

func newProviderError(code string) error {
	return &providerError{code: code}
}

var kindByCode = map[string]AuthErrorKind{
	codeInvalidCredential:      InvalidCredential,
	codeUserNotFound:           InvalidCredential,
	codeWrongPassword:          InvalidCredential,
	codeInvalidEmail:           InvalidEmailFormat,
	codeTooManyRequests:        RateLimited,
	codeEmailAlreadyInUse:      EmailAlreadyInUse,
	codeWeakPassword:           WeakPassword,
	codeAccountExistsOtherCred: AccountExistsDifferentCredential,
	codePopupClosedByUser:      PopupClosedByUser,
}

var messageByKind = map[AuthErrorKind]string{
	InvalidCredential:                "Invalid email or password. Please try again.",
	InvalidEmailFormat:               "Invalid email format.",
	RateLimited:                      "Too many failed login attempts. Please try again later.",
	EmailAlreadyInUse:                "Email is already in use. Please use a different email or sign in.",
	WeakPassword:                     "Password is too weak. Please use a stronger password.",
	AccountExistsDifferentCredential: "An account already exists with the same email address but different sign-in credentials.",
	PopupClosedByUser:                "Sign-in popup was closed before completing the sign-in.",
}

// operation describe la acción del usuario; define el mensaje genérico de Unknown.
type operation string

const (
	opSignIn operation = "sign-in"
	opSignUp operation = "sign-up"
	opOAuth  operation = "oauth"
)

func fallbackMessage(op operation, provider string) string {
	switch op {
	case opSignUp:
		return "Failed to create account"
	case opOAuth:
		return fmt.Sprintf("Failed to sign in with %s", provider)
	default:
		return "Failed to sign in"
	}
}

// toAuthError traduce cualquier error del proveedor a un AuthError.
// Códigos desconocidos y errores sin código terminan en Unknown.
func toAuthError(err error, op operation, provider string) *AuthError {
	if authErr, ok := AsAuthError(err); ok {
		return authErr
	}
	var pe *providerError
	if errors.As(err, &pe) {
		if kind, ok := kindByCode[pe.code]; ok {
			return &AuthError{Kind: kind, Message: messageByKind[kind], cause: err}
		}
	}
	return &AuthError{Kind: Unknown, Message: fallbackMessage(op, provider), cause: err}
}

// OAuthFailureMessage reconstruye el mensaje de un fallo OAuth a partir de su tipo,
// para mostrarlo después del redirect de vuelta a la página de inicio de sesión.
func OAuthFailureMessage(kind AuthErrorKind, providerLabel string) string {
	if msg, ok := messageByKind[kind]; ok {
		return msg
	}
	return fallbackMessage(opOAuth, providerLabel)
}
