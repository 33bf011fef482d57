package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"ai3d-studio/internal/domain"
	"ai3d-studio/internal/service"
)

func TestProfileMiddleware_AssignsAndKeepsProfile(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ProfileMiddleware(true))
	r.GET("/who", func(c *gin.Context) {
		c.String(http.StatusOK, ProfileID(c))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/who", nil))
	cookie := findCookie(rec, profileCookie)
	if cookie == nil || cookie.Value != rec.Body.String() {
		t.Fatalf("expected a new profile cookie matching the context value")
	}
	if !cookie.HttpOnly || !cookie.Secure || cookie.SameSite != http.SameSiteLaxMode {
		t.Fatalf("unexpected cookie attributes %+v", cookie)
	}

	req := httptest.NewRequest(http.MethodGet, "/who", nil)
	req.AddCookie(&http.Cookie{Name: profileCookie, Value: cookie.Value})
	rec2 := httptest.NewRecorder()
	r.ServeHTTP(rec2, req)
	if rec2.Body.String() != cookie.Value {
		t.Fatalf("expected profile to be kept, got %q", rec2.Body.String())
	}
	if findCookie(rec2, profileCookie) != nil {
		t.Fatalf("expected no new cookie for a known profile")
	}

	bad := httptest.NewRequest(http.MethodGet, "/who", nil)
	bad.AddCookie(&http.Cookie{Name: profileCookie, Value: "../../etc"})
	rec3 := httptest.NewRecorder()
	r.ServeHTTP(rec3, bad)
	if rec3.Body.String() == "../../etc" {
		t.Fatalf("expected malformed profile to be replaced")
	}
}

func TestPageGuardMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := service.NewMemoryCredentialStore()
	guard := service.NewPageGuard(store, service.NewAuthEventBus())
	signedIn := newProfile()
	store.Write(context.Background(), signedIn, domain.CredentialRecord{LoggedIn: true})

	ran := false
	r := gin.New()
	r.Use(ProfileMiddleware(false))
	r.GET("/protected", PageGuardMiddleware(guard), func(c *gin.Context) {
		ran = true
		c.Status(http.StatusOK)
	})

	serve := func(profile, accept string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.AddCookie(&http.Cookie{Name: profileCookie, Value: profile})
		if accept != "" {
			req.Header.Set("Accept", accept)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	t.Run("allows signed-in profile", func(t *testing.T) {
		ran = false
		rec := serve(signedIn, "")
		if rec.Code != http.StatusOK || !ran {
			t.Fatalf("expected handler to run, got %d", rec.Code)
		}
	})

	t.Run("redirects browser", func(t *testing.T) {
		ran = false
		rec := serve(newProfile(), "text/html")
		if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/auth/login" {
			t.Fatalf("expected redirect, got %d", rec.Code)
		}
		if ran {
			t.Fatalf("expected handler not to run")
		}
	})

	t.Run("json client gets 401", func(t *testing.T) {
		ran = false
		rec := serve(newProfile(), "application/json")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		if ran {
			t.Fatalf("expected handler not to run")
		}
	})

	t.Run("missing guard", func(t *testing.T) {
		r2 := gin.New()
		r2.GET("/protected", PageGuardMiddleware(nil), func(c *gin.Context) { c.Status(http.StatusOK) })
		rec := httptest.NewRecorder()
		r2.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/protected", nil))
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
	})
}
