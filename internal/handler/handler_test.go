package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/classdesk/classdesk-api/internal/middleware"
	"github.com/classdesk/classdesk-api/internal/service"
	"github.com/classdesk/classdesk-api/internal/store"
	"github.com/classdesk/classdesk-api/pkg/config"
)

const testUserID = "teacher"

type testEnv struct {
	router *gin.Engine
	auth   *service.AuthService
}

// newTestEnv wires the handlers under test against an in-memory store,
// mirroring the offline wiring of the server entrypoint.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := store.NewMemoryStore(nil)
	xp := service.NewXPService(st, nil)
	authSvc := service.NewAuthService(st, config.SessionConfig{Secret: "test-secret", TTL: time.Hour}, nil, nil)
	classSvc := service.NewClassService(st, nil, xp, nil)
	attendanceSvc := service.NewAttendanceService(st, xp, nil)
	todoSvc := service.NewTodoService(st, nil, nil)
	focusSvc := service.NewFocusService(nil)

	router := gin.New()
	authHandler := NewAuthHandler(authSvc, testUserID)
	router.GET("/auth/status", authHandler.Status)
	router.POST("/auth/setup", authHandler.Setup)
	router.POST("/auth/unlock", authHandler.Unlock)

	protected := router.Group("/", middleware.Session(authSvc))
	classHandler := NewClassHandler(classSvc, testUserID)
	protected.GET("/classes", classHandler.List)
	protected.POST("/classes", classHandler.Create)
	attendanceHandler := NewAttendanceHandler(attendanceSvc, testUserID)
	protected.POST("/classes/:id/students/:studentId/attendance/toggle", attendanceHandler.Toggle)
	todoHandler := NewTodoHandler(todoSvc, testUserID)
	protected.GET("/todos", todoHandler.List)
	protected.POST("/todos", todoHandler.Create)
	focusHandler := NewFocusHandler(focusSvc, testUserID)
	protected.POST("/focus/start", focusHandler.Start)
	protected.GET("/focus", focusHandler.State)
	scoreHandler := NewScoreHandler()
	protected.POST("/scores/analyze", scoreHandler.Analyze)

	return &testEnv{router: router, auth: authSvc}
}

func (e *testEnv) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) unlock(t *testing.T) string {
	t.Helper()
	rec := e.request(t, http.MethodPost, "/auth/setup", "", gin.H{"pin": "2468"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var envelope struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NotEmpty(t, envelope.Data.Token)
	return envelope.Data.Token
}

func TestAuthEndpoints(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, http.MethodGet, "/auth/status", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"configured":false`)

	token := env.unlock(t)
	require.NotEmpty(t, token)

	rec = env.request(t, http.MethodPost, "/auth/unlock", "", gin.H{"pin": "9999"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "WRONG_PIN")

	rec = env.request(t, http.MethodPost, "/auth/unlock", "", gin.H{"pin": "2468"})
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestProtectedRoutesRequiresSession(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, http.MethodGet, "/classes", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.request(t, http.MethodGet, "/classes", "garbage-token", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	token := env.unlock(t)
	rec = env.request(t, http.MethodGet, "/classes", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "J1 - Japanese History")
}

func TestClassCreateEndpoint(t *testing.T) {
	env := newTestEnv(t)
	token := env.unlock(t)

	rec := env.request(t, http.MethodPost, "/classes", token, gin.H{"name": "J2 - Geography", "layout": "rows"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.request(t, http.MethodPost, "/classes", token, gin.H{"layout": "rows"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAttendanceToggleEndpoint(t *testing.T) {
	env := newTestEnv(t)
	token := env.unlock(t)

	rec := env.request(t, http.MethodPost, "/classes/c1/students/1/attendance/toggle?date=2026-03-02", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "absent")

	rec = env.request(t, http.MethodPost, "/classes/missing/students/1/attendance/toggle?date=2026-03-02", token, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTodoEndpoints(t *testing.T) {
	env := newTestEnv(t)
	token := env.unlock(t)

	rec := env.request(t, http.MethodPost, "/todos", token, gin.H{"text": "Print handouts"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.request(t, http.MethodGet, "/todos", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Print handouts")
}

func TestFocusEndpoints(t *testing.T) {
	env := newTestEnv(t)
	token := env.unlock(t)

	rec := env.request(t, http.MethodPost, "/focus/start", token, gin.H{"seconds": 300})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.request(t, http.MethodGet, "/focus", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"running":true`)

	rec = env.request(t, http.MethodPost, "/focus/start", token, gin.H{"seconds": 0})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScoreAnalyzeEndpoint(t *testing.T) {
	env := newTestEnv(t)
	token := env.unlock(t)

	rec := env.request(t, http.MethodPost, "/scores/analyze", token, gin.H{"text": "Alice 85\nBob 42\nCarol 58"})
	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data struct {
			Average        float64 `json:"average"`
			Recommendation string  `json:"recommendation"`
			Struggling     []struct {
				Name string `json:"name"`
			} `json:"struggling"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.InDelta(t, 61.6667, envelope.Data.Average, 0.001)
	require.Len(t, envelope.Data.Struggling, 2)

	rec = env.request(t, http.MethodPost, "/scores/analyze", token, gin.H{"text": "   \n  "})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
