package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"users-service/internal/crypto"
	"users-service/internal/handler"
	"users-service/internal/middleware"
	"users-service/internal/models"
	"users-service/internal/repository"
	"users-service/internal/service"
	"users-service/internal/token"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeUserRepo is an in-memory UserRepository with the same uniqueness
// guarantees as the users table.
type fakeUserRepo struct {
	mu     sync.Mutex
	users  []*models.User
	nextID int64
}

func (f *fakeUserRepo) CreateUser(user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, existing := range f.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return repository.ErrDuplicateUser
		}
	}

	f.nextID++
	user.ID = f.nextID
	user.CreatedAt = time.Now()
	clone := *user
	f.users = append(f.users, &clone)
	return nil
}

func (f *fakeUserRepo) GetUserByEmail(email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, user := range f.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeUserRepo) GetUserByID(id int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, user := range f.users {
		if user.ID == id {
			clone := *user
			return &clone, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeUserRepo) GetAllUsers() ([]*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	users := make([]*models.User, 0, len(f.users))
	for _, user := range f.users {
		clone := *user
		users = append(users, &clone)
	}
	return users, nil
}

// setActive flips the active flag directly in storage, the way an operator
// would against the database.
func (f *fakeUserRepo) setActive(id int64, active bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, user := range f.users {
		if user.ID == id {
			user.Active = active
		}
	}
}

// testApp wires the real handlers, service, hasher and token service over
// the in-memory store, mirroring server.setupRoutes.
type testApp struct {
	router *gin.Engine
	repo   *fakeUserRepo
	hasher *crypto.PasswordHasher
	t      *testing.T
}

func newTestApp(t *testing.T, lifetime time.Duration) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := &fakeUserRepo{}
	hasher := crypto.NewPasswordHasher(4)
	tokenService := token.NewService([]byte("test-secret"), lifetime)
	authService := service.NewAuthService(repo, hasher, tokenService, zap.NewNop())

	log := logrus.New()
	authHandler := handler.NewAuthHandler(authService, log)
	userHandler := handler.NewUserHandler(authService, repo, log)

	authenticated := middleware.Authenticate(tokenService, repo, zap.NewNop())

	router := gin.New()
	router.GET("/ping", userHandler.Ping)
	router.GET("/users/ping", userHandler.Ping)

	authGroup := router.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.GET("/logout", authenticated, authHandler.Logout)
	authGroup.GET("/status", authenticated, authHandler.Status)

	router.GET("/users", userHandler.GetAllUsers)
	router.GET("/users/:id", userHandler.GetUserByID)
	router.POST("/users", authenticated, middleware.RequireAdmin(), userHandler.CreateUser)

	return &testApp{router: router, repo: repo, hasher: hasher, t: t}
}

// addUser seeds a user directly in storage, like the original test fixtures.
func (a *testApp) addUser(username, email, password string, admin bool) *models.User {
	a.t.Helper()

	passwordHash, err := a.hasher.Hash(password)
	require.NoError(a.t, err)

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Active:       true,
		Admin:        admin,
	}
	require.NoError(a.t, a.repo.CreateUser(user))
	return user
}

func (a *testApp) post(path, authHeader string, payload any) *httptest.ResponseRecorder {
	a.t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(a.t, err)

	req, err := http.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	require.NoError(a.t, err)
	req.Header.Set("Content-Type", "application/json")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) get(path, authHeader string) *httptest.ResponseRecorder {
	a.t.Helper()

	req, err := http.NewRequest(http.MethodGet, path, nil)
	require.NoError(a.t, err)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

// login runs POST /auth/login and returns the issued token.
func (a *testApp) login(email, password string) string {
	a.t.Helper()

	w := a.post("/auth/login", "", gin.H{"email": email, "password": password})
	require.Equal(a.t, http.StatusOK, w.Code)

	body := decodeBody(a.t, w)
	tokenString, _ := body["auth_token"].(string)
	require.NotEmpty(a.t, tokenString)
	return tokenString
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	body := map[string]any{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}
