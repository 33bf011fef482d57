package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"ai3d-studio/internal/domain"
	"ai3d-studio/internal/oauth"
	"ai3d-studio/internal/repository"
)

type mockUserRepo struct {
	usersByID    map[string]domain.User
	usersByEmail map[string]string
	usersByAuth  map[string]string
	createErr    error
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		usersByID:    make(map[string]domain.User),
		usersByEmail: make(map[string]string),
		usersByAuth:  make(map[string]string),
	}
}

func (m *mockUserRepo) Create(_ context.Context, user domain.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.usersByID[user.ID] = user
	if user.Email != "" {
		m.usersByEmail[strings.ToLower(user.Email)] = user.ID
	}
	if user.AuthProvider != "" && user.AuthSubject != "" {
		m.usersByAuth[user.AuthProvider+"|"+user.AuthSubject] = user.ID
	}
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (domain.User, error) {
	user, ok := m.usersByID[id]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return user, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (domain.User, error) {
	id, ok := m.usersByEmail[strings.ToLower(email)]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return m.GetByID(context.Background(), id)
}

func (m *mockUserRepo) GetByAuth(_ context.Context, provider, subject string) (domain.User, error) {
	id, ok := m.usersByAuth[provider+"|"+subject]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return m.GetByID(context.Background(), id)
}

func providerCode(err error) string {
	var pe *providerError
	if errors.As(err, &pe) {
		return pe.code
	}
	return ""
}

func newTestDirectory(repo *mockUserRepo) (*DirectoryService, ProviderSessionStore) {
	sessions := NewMemoryProviderSessionStore()
	svc := NewDirectoryService(zap.NewNop(), repo, DirectoryOptions{
		Limiter:  NewSignInLimiter(time.Minute, 3),
		Sessions: sessions,
	})
	return svc, sessions
}

func TestDirectoryServiceCreateUser_Success(t *testing.T) {
	repo := newMockUserRepo()
	svc, sessions := newTestDirectory(repo)

	user, err := svc.CreateUser(context.Background(), "p1", " New@Example.com ", "secret1", " Ada Lovelace ")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if user.Email != "new@example.com" || user.DisplayName != "Ada Lovelace" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if user.PasswordHash == "" || user.PasswordHash == "secret1" {
		t.Fatalf("expected hashed password")
	}
	if ok, _ := sessions.Exists("p1"); !ok {
		t.Fatalf("expected provider session for profile")
	}
}

func TestDirectoryServiceCreateUser_Failures(t *testing.T) {
	repo := newMockUserRepo()
	svc, _ := newTestDirectory(repo)
	if _, err := svc.CreateUser(context.Background(), "p0", "taken@example.com", "secret1", ""); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	cases := []struct {
		name     string
		email    string
		password string
		code     string
	}{
		{"invalid email", "not-an-email", "secret1", codeInvalidEmail},
		{"empty email", "", "secret1", codeInvalidEmail},
		{"weak password", "a@example.com", "12345", codeWeakPassword},
		{"email taken", "Taken@example.com", "secret1", codeEmailAlreadyInUse},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateUser(context.Background(), "p1", tc.email, tc.password, "")
			if got := providerCode(err); got != tc.code {
				t.Fatalf("expected %s, got %q (%v)", tc.code, got, err)
			}
		})
	}
}

func TestDirectoryServiceCreateUser_DuplicateFromRepo(t *testing.T) {
	repo := newMockUserRepo()
	repo.createErr = repository.ErrDuplicateUser
	svc, _ := newTestDirectory(repo)

	_, err := svc.CreateUser(context.Background(), "p1", "race@example.com", "secret1", "")
	if got := providerCode(err); got != codeEmailAlreadyInUse {
		t.Fatalf("expected %s, got %q", codeEmailAlreadyInUse, got)
	}
}

func TestDirectoryServiceSignInWithPassword(t *testing.T) {
	repo := newMockUserRepo()
	svc, sessions := newTestDirectory(repo)
	if _, err := svc.CreateUser(context.Background(), "seed", "user@example.com", "secret1", "Test"); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if err := repo.Create(context.Background(), domain.User{ID: "oauth-only", Email: "oauth@example.com", AuthProvider: "google", AuthSubject: "g1"}); err != nil {
		t.Fatalf("seed oauth user: %v", err)
	}

	t.Run("success", func(t *testing.T) {
		user, err := svc.SignInWithPassword(context.Background(), "p1", "USER@example.com", "secret1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if user.DisplayName != "Test" {
			t.Fatalf("expected display name Test, got %q", user.DisplayName)
		}
		if ok, _ := sessions.Exists("p1"); !ok {
			t.Fatalf("expected provider session for profile")
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.SignInWithPassword(context.Background(), "p1", "ghost@example.com", "secret1")
		if got := providerCode(err); got != codeUserNotFound {
			t.Fatalf("expected %s, got %q", codeUserNotFound, got)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.SignInWithPassword(context.Background(), "p1", "user@example.com", "nope123")
		if got := providerCode(err); got != codeWrongPassword {
			t.Fatalf("expected %s, got %q", codeWrongPassword, got)
		}
	})

	t.Run("account without password", func(t *testing.T) {
		_, err := svc.SignInWithPassword(context.Background(), "p1", "oauth@example.com", "secret1")
		if got := providerCode(err); got != codeInvalidCredential {
			t.Fatalf("expected %s, got %q", codeInvalidCredential, got)
		}
	})

	t.Run("invalid email", func(t *testing.T) {
		_, err := svc.SignInWithPassword(context.Background(), "p1", "user@", "secret1")
		if got := providerCode(err); got != codeInvalidEmail {
			t.Fatalf("expected %s, got %q", codeInvalidEmail, got)
		}
	})
}

func TestDirectoryServiceSignInWithPassword_Throttled(t *testing.T) {
	repo := newMockUserRepo()
	svc, _ := newTestDirectory(repo)
	if _, err := svc.CreateUser(context.Background(), "seed", "user@example.com", "secret1", ""); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	for i := 0; i < 3; i++ {
		_, err := svc.SignInWithPassword(context.Background(), "p1", "user@example.com", "bad-pass")
		if got := providerCode(err); got != codeWrongPassword {
			t.Fatalf("attempt %d: expected %s, got %q", i, codeWrongPassword, got)
		}
	}

	_, err := svc.SignInWithPassword(context.Background(), "p1", "user@example.com", "secret1")
	if got := providerCode(err); got != codeTooManyRequests {
		t.Fatalf("expected %s, got %q", codeTooManyRequests, got)
	}
}

func TestDirectoryServiceSignInWithOAuth(t *testing.T) {
	repo := newMockUserRepo()
	svc, sessions := newTestDirectory(repo)

	identity := oauth.Identity{Provider: "GitHub", Subject: "42", Email: "octo@example.com", DisplayName: "Octo"}
	first, err := svc.SignInWithOAuth(context.Background(), "p1", identity)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if first.ID == "" || first.AuthProvider != "github" || first.AuthSubject != "42" {
		t.Fatalf("expected new oauth user, got %+v", first)
	}
	if ok, _ := sessions.Exists("p1"); !ok {
		t.Fatalf("expected provider session for profile")
	}

	again, err := svc.SignInWithOAuth(context.Background(), "p2", identity)
	if err != nil {
		t.Fatalf("expected success on repeat sign-in, got %v", err)
	}
	if again.ID != first.ID {
		t.Fatalf("expected same user, got %s and %s", first.ID, again.ID)
	}
}

func TestDirectoryServiceSignInWithOAuth_EmailOwnedByOtherCredential(t *testing.T) {
	repo := newMockUserRepo()
	svc, _ := newTestDirectory(repo)
	if _, err := svc.CreateUser(context.Background(), "seed", "user@example.com", "secret1", ""); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	_, err := svc.SignInWithOAuth(context.Background(), "p1", oauth.Identity{
		Provider: "google",
		Subject:  "g-1",
		Email:    "User@example.com",
	})
	if got := providerCode(err); got != codeAccountExistsOtherCred {
		t.Fatalf("expected %s, got %q", codeAccountExistsOtherCred, got)
	}
}

func TestDirectoryServiceSignInWithOAuth_MissingSubject(t *testing.T) {
	svc, _ := newTestDirectory(newMockUserRepo())
	_, err := svc.SignInWithOAuth(context.Background(), "p1", oauth.Identity{Provider: "google"})
	if err == nil || providerCode(err) != "" {
		t.Fatalf("expected plain error without provider code, got %v", err)
	}
}

func TestDirectoryServiceSignOut_RevokesSession(t *testing.T) {
	repo := newMockUserRepo()
	svc, sessions := newTestDirectory(repo)
	if _, err := svc.CreateUser(context.Background(), "p1", "user@example.com", "secret1", ""); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if ok, _ := sessions.Exists("p1"); !ok {
		t.Fatalf("expected session before sign-out")
	}
	if err := svc.SignOut(context.Background(), "p1"); err != nil {
		t.Fatalf("sign out: %v", err)
	}
	if ok, _ := sessions.Exists("p1"); ok {
		t.Fatalf("expected session revoked")
	}
	if err := svc.SignOut(context.Background(), "p1"); err != nil {
		t.Fatalf("second sign out must be a no-op, got %v", err)
	}
}
