package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/darab-cement/cms-service/internal/models"
	"github.com/darab-cement/cms-service/internal/services"
)

// stubAuth resolves tokens from a fixed table
type stubAuth struct {
	users map[string]*models.User
}

func (s *stubAuth) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error) {
	return nil, nil
}

func (s *stubAuth) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	return nil, nil
}

func (s *stubAuth) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if user, ok := s.users[token]; ok {
		return user, nil
	}
	return nil, services.ErrInvalidToken
}

func (s *stubAuth) IssueToken(user *models.User) (string, error) { return "", nil }

func (s *stubAuth) SeedAdmin(ctx context.Context, email, password string) error { return nil }

func newStubAuth() *stubAuth {
	return &stubAuth{users: map[string]*models.User{
		"user-token":  {ID: 1, Email: "user@darab.ir", Role: models.RoleUser, IsActive: true},
		"admin-token": {ID: 2, Email: "admin@darab.ir", Role: models.RoleAdmin, IsActive: true},
	}}
}

func authRouter(mw ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	chain := append(mw, func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			c.JSON(http.StatusOK, gin.H{"user": nil})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user.Email})
	})
	router.GET("/whoami", chain...)
	return router
}

func whoami(router *gin.Engine, authorization string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	am := NewAuthMiddleware(newStubAuth())
	router := authRouter(am.RequireAuth())

	w := whoami(router, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "authorization header missing", decodeError(t, w).Message)

	w = whoami(router, "Token abc")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = whoami(router, "Bearer unknown")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid or expired token", decodeError(t, w).Message)

	w = whoami(router, "Bearer user-token")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user@darab.ir")
}

func TestOptionalAuth(t *testing.T) {
	am := NewAuthMiddleware(newStubAuth())
	router := authRouter(am.OptionalAuth())

	w := whoami(router, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user":null}`, w.Body.String())

	w = whoami(router, "Bearer unknown")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user":null}`, w.Body.String())

	w = whoami(router, "bearer admin-token")
	assert.JSONEq(t, `{"user":"admin@darab.ir"}`, w.Body.String())
}

func TestRequireRoleMiddleware(t *testing.T) {
	am := NewAuthMiddleware(newStubAuth())
	router := authRouter(am.RequireAuth(), am.RequireRoleMiddleware(models.RoleAdmin))

	assert.Equal(t, http.StatusForbidden, whoami(router, "Bearer user-token").Code)
	assert.Equal(t, http.StatusOK, whoami(router, "Bearer admin-token").Code)

	// Admins pass any role check
	router = authRouter(am.RequireAuth(), am.RequireRoleMiddleware(models.RoleUser))
	assert.Equal(t, http.StatusOK, whoami(router, "Bearer admin-token").Code)
	assert.Equal(t, http.StatusOK, whoami(router, "Bearer user-token").Code)

	// Without RequireAuth there is no role in the context
	router = authRouter(am.RequireRoleMiddleware(models.RoleUser))
	assert.Equal(t, http.StatusForbidden, whoami(router, "Bearer user-token").Code)
}

func TestBearerToken(t *testing.T) {
	token, err := bearerToken("Bearer  abc ")
	assert.NoError(t, err)
	assert.Equal(t, "abc", token)

	_, err = bearerToken("Bearer ")
	assert.Error(t, err)
}
