package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/technosupport/ts-dvr-gateway/internal/tokens"
)

type fakeBlacklist struct {
	revoked map[string]bool
}

func (f *fakeBlacklist) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	return f.revoked[jti], nil
}

func (f *fakeBlacklist) AddToBlacklist(ctx context.Context, jti string, ttl time.Duration) error {
	f.revoked[jti] = true
	return nil
}

func newAuthed(t *testing.T) (*JWTAuth, *tokens.Manager, *fakeBlacklist) {
	t.Helper()
	mgr := tokens.NewManager("test-key")
	bl := &fakeBlacklist{revoked: map[string]bool{}}
	return NewJWTAuth(mgr, bl), mgr, bl
}

func TestJWTAuthMiddleware_Success(t *testing.T) {
	jwtAuth, mgr, _ := newAuthed(t)

	tok, _ := mgr.GenerateAccessToken("user-1", "operator")

	var gotCtx *AuthContext
	h := jwtAuth.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCtx, _ = GetAuthContext(r.Context())
	}))

	req := httptest.NewRequest("GET", "/api/v1/events", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if gotCtx == nil || gotCtx.UserID != "user-1" || gotCtx.Username != "operator" {
		t.Errorf("auth context = %+v", gotCtx)
	}
}

func TestJWTAuthMiddleware_MissingHeader(t *testing.T) {
	jwtAuth, _, _ := newAuthed(t)

	h := jwtAuth.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run")
	}))

	req := httptest.NewRequest("GET", "/api/v1/events", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestJWTAuthMiddleware_RefreshTokenRejected(t *testing.T) {
	jwtAuth, mgr, _ := newAuthed(t)
	tok, _ := mgr.GenerateRefreshToken("user-1", "operator")

	h := jwtAuth.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run")
	}))

	req := httptest.NewRequest("GET", "/api/v1/events", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestJWTAuthMiddleware_Blacklisted(t *testing.T) {
	jwtAuth, mgr, bl := newAuthed(t)

	tok, _ := mgr.GenerateAccessToken("user-1", "operator")
	claims, _ := mgr.ValidateToken(tok)
	bl.revoked[claims.ID] = true

	h := jwtAuth.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run")
	}))

	req := httptest.NewRequest("GET", "/api/v1/events", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
