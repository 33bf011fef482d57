package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"ai3d-studio/internal/catalog"
	"ai3d-studio/internal/domain"
	"ai3d-studio/internal/oauth"
	"ai3d-studio/internal/service"
)

type mockUserRepo struct {
	usersByID    map[string]domain.User
	usersByEmail map[string]string
	usersByAuth  map[string]string
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		usersByID:    make(map[string]domain.User),
		usersByEmail: make(map[string]string),
		usersByAuth:  make(map[string]string),
	}
}

func (m *mockUserRepo) Create(_ context.Context, user domain.User) error {
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

type fakeOAuthProvider struct{}

func (fakeOAuthProvider) Name() string  { return "google" }
func (fakeOAuthProvider) Label() string { return "Google" }

func (fakeOAuthProvider) AuthCodeURL(state, challenge string) string {
	return "https://accounts.example.com/o/auth?state=" + state + "&code_challenge=" + challenge
}

func (fakeOAuthProvider) Exchange(_ context.Context, code, verifier string) (oauth.Identity, error) {
	if code != "good-code" || verifier == "" {
		return oauth.Identity{}, errors.New("exchange rejected")
	}
	return oauth.Identity{
		Provider:    "google",
		Subject:     "g-1",
		Email:       "ada@example.com",
		DisplayName: "Ada Lovelace",
	}, nil
}

type testApp struct {
	router *gin.Engine
	store  service.CredentialStore
	bus    *service.AuthEventBus
	repo   *mockUserRepo
}

func newTestApp(t *testing.T) testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zap.NewNop()
	store := service.NewMemoryCredentialStore()
	bus := service.NewAuthEventBus()
	repo := newMockUserRepo()
	providers := oauth.NewRegistry(fakeOAuthProvider{})

	directory := service.NewDirectoryService(logger, repo, service.DirectoryOptions{})
	adapter := service.NewIdentityAdapter(logger, directory, providers, store, bus)
	states := service.NewOAuthStateService("test-secret", time.Minute)
	guard := service.NewPageGuard(store, bus)

	content, err := catalog.Load()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}

	router := NewRouter(
		logger,
		false,
		guard,
		NewAuthHandler(logger, adapter, states, false),
		NewPageHandler(logger, store, bus, content, providers),
		NewEventsHandler(logger, store, bus, guard, time.Hour),
	)
	return testApp{router: router, store: store, bus: bus, repo: repo}
}

func newProfile() string {
	return uuid.NewString()
}

func (a testApp) do(t *testing.T, method, path, profile string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if profile != "" {
		req.AddCookie(&http.Cookie{Name: profileCookie, Value: profile})
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func navMode(t *testing.T, body map[string]any) string {
	t.Helper()
	nav, ok := body["nav"].(map[string]any)
	if !ok {
		t.Fatalf("expected nav in response, got %+v", body)
	}
	mode, _ := nav["mode"].(string)
	return mode
}

func (a testApp) signUp(t *testing.T, profile string) {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/auth/signup", profile, map[string]any{
		"first_name":       "John",
		"last_name":        "Doe",
		"email":            "john@example.com",
		"password":         "Str0ngPass!",
		"confirm_password": "Str0ngPass!",
		"agree_to_terms":   true,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("sign up: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
}
