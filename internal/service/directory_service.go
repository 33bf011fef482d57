package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"ai3d-studio/internal/domain"
	"ai3d-studio/internal/oauth"
	"ai3d-studio/internal/repository"
)

// IdentityProvider es la frontera con el proveedor de identidad externo.
// Sus errores llevan códigos propios del proveedor que sólo el IdentityAdapter interpreta.
type IdentityProvider interface {
	SignInWithPassword(ctx context.Context, profileID, email, password string) (domain.User, error)
	CreateUser(ctx context.Context, profileID, email, password, displayName string) (domain.User, error)
	SignInWithOAuth(ctx context.Context, profileID string, identity oauth.Identity) (domain.User, error)
	SignOut(ctx context.Context, profileID string) error
}

const (
	minPasswordLength  = 6
	passwordProvider   = "password"
	defaultSessionTTL  = 30 * 24 * time.Hour
	defaultMaxFailures = 5
)

// DirectoryService implementa IdentityProvider sobre el directorio de usuarios en Postgres.
type DirectoryService struct {
	logger     *zap.Logger
	users      repository.UserRepository
	limiter    SignInLimiter
	sessions   ProviderSessionStore
	sessionTTL time.Duration
	validate   *validator.Validate
}

type DirectoryOptions struct {
	Limiter    SignInLimiter
	Sessions   ProviderSessionStore
	SessionTTL time.Duration
}

func NewDirectoryService(logger *zap.Logger, users repository.UserRepository, opts DirectoryOptions) *DirectoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Limiter == nil {
		opts.Limiter = NewSignInLimiter(15*time.Minute, defaultMaxFailures)
	}
	if opts.Sessions == nil {
		opts.Sessions = NewMemoryProviderSessionStore()
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = defaultSessionTTL
	}
	return &DirectoryService{
		logger:     logger,
		users:      users,
		limiter:    opts.Limiter,
		sessions:   opts.Sessions,
		sessionTTL: opts.SessionTTL,
		validate:   validator.New(),
	}
}

var errDirectoryNotConfigured = errors.New("directory service not configured")

func (s *DirectoryService) SignInWithPassword(ctx context.Context, profileID, emailAddr, password string) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errDirectoryNotConfigured
	}

	emailAddr = normalizeEmail(emailAddr)
	if !s.validEmail(emailAddr) {
		return domain.User{}, newProviderError(codeInvalidEmail)
	}
	if s.limiter.Blocked(emailAddr) {
		return domain.User{}, newProviderError(codeTooManyRequests)
	}
	if password == "" {
		return domain.User{}, newProviderError(codeInvalidCredential)
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.limiter.RecordFailure(emailAddr)
			return domain.User{}, newProviderError(codeUserNotFound)
		}
		return domain.User{}, err
	}
	if user.PasswordHash == "" {
		return domain.User{}, newProviderError(codeInvalidCredential)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.limiter.RecordFailure(emailAddr)
		return domain.User{}, newProviderError(codeWrongPassword)
	}

	s.limiter.Reset(emailAddr)
	if err := s.openSession(profileID, user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (s *DirectoryService) CreateUser(ctx context.Context, profileID, emailAddr, password, displayName string) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errDirectoryNotConfigured
	}

	emailAddr = normalizeEmail(emailAddr)
	if !s.validEmail(emailAddr) {
		return domain.User{}, newProviderError(codeInvalidEmail)
	}
	if len(password) < minPasswordLength {
		return domain.User{}, newProviderError(codeWeakPassword)
	}

	if _, err := s.users.GetByEmail(ctx, emailAddr); err == nil {
		return domain.User{}, newProviderError(codeEmailAlreadyInUse)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}

	user := domain.User{
		ID:           uuid.NewString(),
		Email:        emailAddr,
		DisplayName:  strings.TrimSpace(displayName),
		AuthProvider: passwordProvider,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			return domain.User{}, newProviderError(codeEmailAlreadyInUse)
		}
		return domain.User{}, err
	}

	s.logger.Info("user created", zap.String("user_id", user.ID), zap.String("provider", passwordProvider))
	if err := s.openSession(profileID, user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// SignInWithOAuth busca al usuario por (proveedor, sujeto) y lo crea si no existe.
// Un email ya registrado con otra credencial no se vincula automáticamente.
func (s *DirectoryService) SignInWithOAuth(ctx context.Context, profileID string, identity oauth.Identity) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errDirectoryNotConfigured
	}

	provider := strings.ToLower(strings.TrimSpace(identity.Provider))
	subject := strings.TrimSpace(identity.Subject)
	emailAddr := normalizeEmail(identity.Email)
	if provider == "" || subject == "" {
		return domain.User{}, errors.New("oauth identity missing provider or subject")
	}

	user, err := s.users.GetByAuth(ctx, provider, subject)
	if err == nil {
		if err := s.openSession(profileID, user); err != nil {
			return domain.User{}, err
		}
		return user, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, err
	}

	if emailAddr != "" {
		if _, err := s.users.GetByEmail(ctx, emailAddr); err == nil {
			return domain.User{}, newProviderError(codeAccountExistsOtherCred)
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, err
		}
	}

	user = domain.User{
		ID:           uuid.NewString(),
		Email:        emailAddr,
		DisplayName:  strings.TrimSpace(identity.DisplayName),
		AuthProvider: provider,
		AuthSubject:  subject,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			return domain.User{}, newProviderError(codeAccountExistsOtherCred)
		}
		return domain.User{}, err
	}

	s.logger.Info("user created", zap.String("user_id", user.ID), zap.String("provider", provider))
	if err := s.openSession(profileID, user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// SignOut revoca la sesión del proveedor. Un perfil sin sesión abierta no es un error.
func (s *DirectoryService) SignOut(_ context.Context, profileID string) error {
	open, err := s.sessions.Exists(profileID)
	if err != nil {
		return err
	}
	if !open {
		s.logger.Debug("sign-out without provider session", zap.String("profile", profileID))
		return nil
	}
	return s.sessions.Revoke(profileID)
}

func (s *DirectoryService) openSession(profileID string, user domain.User) error {
	return s.sessions.Store(profileID, user.ID, s.sessionTTL)
}

func (s *DirectoryService) validEmail(emailAddr string) bool {
	return s.validate.Var(emailAddr, "required,email") == nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
