package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jocilejr/whatsbot/internal/auth"
)

var testTokenConfig = auth.TokenConfig{Secret: "secret", Expiry: time.Hour, Issuer: "test"}

func newToken(t *testing.T, ownerID string) string {
	t.Helper()
	tok, err := auth.CreateToken(ownerID, testTokenConfig)
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}
	return tok
}

func TestRequireAuth_SetsOwnerID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tok := newToken(t, "owner-1")

	r := gin.New()
	r.GET("/", RequireAuth(testTokenConfig), func(c *gin.Context) {
		id, ok := OwnerIDFromContext(c)
		if !ok || id != "owner-1" {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestRequireAuth_RejectsMissingOrBadToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", RequireAuth(testTokenConfig), func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, header := range []string{"", "Bearer", "Basic abc", "Bearer garbage"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401, got %d", header, w.Code)
		}
	}
}

func TestRequireOwner(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tok := newToken(t, "owner-1")

	r := gin.New()
	r.GET("/users/:userId", RequireAuth(testTokenConfig), RequireOwner("userId"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	cases := map[string]int{
		"/users/owner-1": http.StatusOK,
		"/users/owner-2": http.StatusForbidden,
	}
	for path, want := range cases {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != want {
			t.Fatalf("%s: expected %d, got %d", path, want, w.Code)
		}
	}
}
