package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/onboardhq/onboard/internal/middleware"
	"github.com/onboardhq/onboard/internal/model"
	"github.com/onboardhq/onboard/internal/repository"
	"github.com/onboardhq/onboard/internal/service"
)

// newTestRouter wires the auth and collaborator surfaces against an
// in-memory database, mirroring the production route layout.
func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:handler_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := db.AutoMigrate(&model.User{}, &model.Collaborator{}, &model.CalendarEvent{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	authService := service.NewAuthService(repository.NewUserRepository(db), nil, "test-secret", time.Hour, 0)
	collaboratorService := service.NewCollaboratorService(repository.NewCollaboratorRepository(db), nil)

	authHandler := NewAuthHandler(authService)
	collaboratorHandler := NewCollaboratorHandler(collaboratorService)
	authMiddleware := middleware.NewAuthMiddleware(authService)

	router := gin.New()
	api := router.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/verify", authHandler.Verify)

	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	protected.GET("/collaborators", collaboratorHandler.List)

	manager := protected.Group("")
	manager.Use(authMiddleware.RequireRole(model.RoleManager))
	manager.POST("/collaborators", collaboratorHandler.Create)

	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func registerUser(t *testing.T, router *gin.Engine, username string) (token, role string) {
	t.Helper()

	w := doJSON(t, router, http.MethodPost, "/api/auth/register", "", gin.H{
		"full_name": username,
		"username":  username,
		"email":     username + "@corp.com",
		"password":  "secret1",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d body %s", username, w.Code, w.Body.String())
	}

	var resp struct {
		Token string `json:"token"`
		User  struct {
			Role string `json:"role"`
		} `json:"user"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode register response: %v", err)
	}
	return resp.Token, resp.User.Role
}

func TestAuthFlow(t *testing.T) {
	router := newTestRouter(t)

	token, role := registerUser(t, router, "alice")
	if role != model.RoleAdmin {
		t.Fatalf("first user role = %q, want admin", role)
	}

	// Short password rejected at binding.
	w := doJSON(t, router, http.MethodPost, "/api/auth/register", "", gin.H{
		"full_name": "Bob", "username": "bob", "email": "bob@corp.com", "password": "12345",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("short password: status %d", w.Code)
	}

	// Login with wrong password.
	w = doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"username": "alice", "password": "wrong",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bad login: status %d", w.Code)
	}

	// Verify round-trip.
	w = doJSON(t, router, http.MethodPost, "/api/auth/verify", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("verify: status %d body %s", w.Code, w.Body.String())
	}
	var verify struct {
		Valid bool `json:"valid"`
		User  struct {
			Username string `json:"username"`
		} `json:"user"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &verify); err != nil || !verify.Valid || verify.User.Username != "alice" {
		t.Fatalf("verify response: %v %s", err, w.Body.String())
	}

	w = doJSON(t, router, http.MethodPost, "/api/auth/verify", "garbage", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("verify garbage token: status %d", w.Code)
	}
}

func TestRoleGating(t *testing.T) {
	router := newTestRouter(t)

	adminToken, _ := registerUser(t, router, "alice") // first user: admin
	viewerToken, role := registerUser(t, router, "bob")
	if role != model.RoleViewer {
		t.Fatalf("second user role = %q, want viewer", role)
	}

	// No token.
	w := doJSON(t, router, http.MethodGet, "/api/collaborators", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated list: status %d", w.Code)
	}

	// Viewer may read.
	w = doJSON(t, router, http.MethodGet, "/api/collaborators", viewerToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("viewer list: status %d body %s", w.Code, w.Body.String())
	}

	newHire := gin.H{"full_name": "Carla Diaz", "email": "carla@corp.com", "hire_date": "2026-03-01"}

	// Viewer may not write.
	w = doJSON(t, router, http.MethodPost, "/api/collaborators", viewerToken, newHire)
	if w.Code != http.StatusForbidden {
		t.Fatalf("viewer create: status %d", w.Code)
	}

	// Admin outranks manager.
	w = doJSON(t, router, http.MethodPost, "/api/collaborators", adminToken, newHire)
	if w.Code != http.StatusCreated {
		t.Fatalf("admin create: status %d body %s", w.Code, w.Body.String())
	}

	// Duplicate email conflicts.
	w = doJSON(t, router, http.MethodPost, "/api/collaborators", adminToken, newHire)
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate create: status %d body %s", w.Code, w.Body.String())
	}
}
