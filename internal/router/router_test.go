package router_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/interview-agent-api/internal/config"
	"github.com/noah-isme/interview-agent-api/internal/dto"
	"github.com/noah-isme/interview-agent-api/internal/handler"
	"github.com/noah-isme/interview-agent-api/internal/router"
	"github.com/noah-isme/interview-agent-api/internal/service"
)

const testSecret = "router-secret"

type profileService struct {
	service.CandidateService
}

func (profileService) Profile(_ context.Context, candidateID string) (dto.CandidateResponse, error) {
	return dto.CandidateResponse{ID: candidateID}, nil
}

func signed(t *testing.T, sub, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  sub,
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	raw, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return raw
}

func newApp() *fiber.App {
	cfg := config.Config{AppName: "Interview Agent API", JWTSecret: testSecret}
	app := fiber.New()
	router.Register(app, cfg, router.Dependencies{
		CandidateHandler: handler.NewCandidateHandler(profileService{}, nil, zerolog.Nop()),
	})
	return app
}

func TestHealthIsPublic(t *testing.T) {
	resp, err := newApp().Test(httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "Interview Agent API", resp.Header.Get("X-Application"))
}

func TestMetricsEndpoint(t *testing.T) {
	resp, err := newApp().Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCandidateRoutesRequireToken(t *testing.T) {
	app := newApp()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/candidate/me", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/candidate/me", nil)
	req.Header.Set("Authorization", "Bearer "+signed(t, "co-1", service.RoleCompany))
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/candidate/me", nil)
	req.Header.Set("Authorization", "Bearer "+signed(t, "cand-1", service.RoleCandidate))
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
