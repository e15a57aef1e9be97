package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/darab-cement/cms-service/internal/config"
	"github.com/darab-cement/cms-service/internal/metrics"
	"github.com/darab-cement/cms-service/internal/services"
)

// stubServiceManager only provides auth; route registration never calls the other services
type stubServiceManager struct {
	auth      services.AuthService
	healthErr error
}

func (s *stubServiceManager) Auth() services.AuthService                     { return s.auth }
func (s *stubServiceManager) User() services.UserService                     { return nil }
func (s *stubServiceManager) Poll() services.PollService                     { return nil }
func (s *stubServiceManager) SimplePoll() services.SimplePollService         { return nil }
func (s *stubServiceManager) Post() services.PostService                     { return nil }
func (s *stubServiceManager) Catalog() services.CatalogService               { return nil }
func (s *stubServiceManager) Media() services.MediaService                   { return nil }
func (s *stubServiceManager) Personnel() services.PersonnelService           { return nil }
func (s *stubServiceManager) Ticket() services.TicketService                 { return nil }
func (s *stubServiceManager) LandingSetting() services.LandingSettingService { return nil }
func (s *stubServiceManager) Initialize(ctx context.Context) error           { return nil }
func (s *stubServiceManager) HealthCheck(ctx context.Context) error          { return s.healthErr }
func (s *stubServiceManager) Shutdown(ctx context.Context) error             { return nil }

func newTestRouter(sm *stubServiceManager) *gin.Engine {
	m := metrics.New()
	router := gin.New()
	SetupMiddleware(router, newTestLogger(), m, []string{"https://darabcement.ir"})
	NewHandlerManager(sm, newTestLogger(), m, config.UploadConfig{}).SetupRoutes(router)
	return router
}

func serve(router *gin.Engine, method, path, authorization string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestSetupRoutes_Health(t *testing.T) {
	sm := &stubServiceManager{auth: newStubAuth()}
	router := newTestRouter(sm)

	w := serve(router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	sm.healthErr = errors.New("database down")
	w = serve(router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestSetupRoutes_Guards(t *testing.T) {
	router := newTestRouter(&stubServiceManager{auth: newStubAuth()})

	tests := []struct {
		method, path, auth string
		status             int
	}{
		{http.MethodPost, "/api/polls", "", http.StatusUnauthorized},
		{http.MethodGet, "/api/users", "", http.StatusUnauthorized},
		{http.MethodGet, "/api/users", "Bearer user-token", http.StatusForbidden},
		{http.MethodGet, "/api/polls/admin/dashboard", "Bearer user-token", http.StatusForbidden},
		{http.MethodDelete, "/api/simple-polls/1", "Bearer user-token", http.StatusForbidden},
		{http.MethodPost, "/api/personnel", "Bearer user-token", http.StatusForbidden},
		{http.MethodGet, "/api/tickets", "", http.StatusUnauthorized},
		{http.MethodGet, "/api/tickets/stats", "Bearer user-token", http.StatusForbidden},
		{http.MethodGet, "/api/landing-settings", "", http.StatusUnauthorized},
		{http.MethodGet, "/api/unknown", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			assert.Equal(t, tt.status, serve(router, tt.method, tt.path, tt.auth).Code)
		})
	}
}

func TestSetupRoutes_Metrics(t *testing.T) {
	router := newTestRouter(&stubServiceManager{auth: newStubAuth()})

	serve(router, http.MethodGet, "/health", "")
	w := serve(router, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORSMiddleware(t *testing.T) {
	router := newTestRouter(&stubServiceManager{auth: newStubAuth()})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/posts", nil)
	req.Header.Set("Origin", "https://darabcement.ir")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://darabcement.ir", w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example")
	router.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
