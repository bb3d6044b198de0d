package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"farmershub/internal/app/hub/entity"
	"farmershub/internal/app/hub/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func decodeAuth(t *testing.T, w *httptest.ResponseRecorder) entity.AuthResponse {
	t.Helper()

	var resp entity.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestRegisterHandler_Success(t *testing.T) {
	router := setupTestRouter()

	authService := new(MockAuthService)
	authService.On("Register", mock.Anything, mock.AnythingOfType("*entity.RegisterRequest")).Return(&entity.AuthResponse{
		Success: true,
		User:    &entity.SessionUser{ID: uuid.New(), Username: "new_farmer", Role: "user"},
		Token:   "jwt-token",
	}, nil)

	h := NewAuthHandler(authService)
	router.POST("/auth/register", h.Register)

	body, _ := json.Marshal(entity.RegisterRequest{Username: "new_farmer", Password: "Secret1pass", FullName: "New Farmer"})
	req, _ := http.NewRequest(http.MethodPost, "/auth/register", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	resp := decodeAuth(t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, "jwt-token", resp.Token)
}

func TestRegisterHandler_ValidationError(t *testing.T) {
	router := setupTestRouter()

	authService := new(MockAuthService)
	authService.On("Register", mock.Anything, mock.Anything).Return(nil, &service.ValidationError{
		Fields: map[string]string{"username": "Username must be 3-20 characters"},
	})

	h := NewAuthHandler(authService)
	router.POST("/auth/register", h.Register)

	body, _ := json.Marshal(entity.RegisterRequest{Username: "x", Password: "weak", FullName: "X"})
	req, _ := http.NewRequest(http.MethodPost, "/auth/register", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	resp := decodeAuth(t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, "Username must be 3-20 characters", resp.Error)
}

func TestRegisterHandler_MissingFieldsRejectedBeforeService(t *testing.T) {
	router := setupTestRouter()

	authService := new(MockAuthService)
	h := NewAuthHandler(authService)
	router.POST("/auth/register", h.Register)

	// Без пароля запрос не доходит до сервиса
	body, _ := json.Marshal(map[string]string{"username": "new_farmer", "full_name": "New Farmer"})
	req, _ := http.NewRequest(http.MethodPost, "/auth/register", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, decodeAuth(t, w).Success)
	authService.AssertNotCalled(t, "Register")
}

func TestRegisterHandler_UsernameTaken(t *testing.T) {
	router := setupTestRouter()

	authService := new(MockAuthService)
	authService.On("Register", mock.Anything, mock.Anything).Return(nil, service.ErrUserExists)

	h := NewAuthHandler(authService)
	router.POST("/auth/register", h.Register)

	body, _ := json.Marshal(entity.RegisterRequest{Username: "farmer_ali", Password: "Secret1pass", FullName: "Ali"})
	req, _ := http.NewRequest(http.MethodPost, "/auth/register", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.False(t, decodeAuth(t, w).Success)
}

func TestLoginHandler_InvalidCredentials(t *testing.T) {
	router := setupTestRouter()

	authService := new(MockAuthService)
	authService.On("Login", mock.Anything, mock.Anything).Return(nil, service.ErrInvalidCredentials)

	h := NewAuthHandler(authService)
	router.POST("/auth/login", h.Login)

	body, _ := json.Marshal(entity.LoginRequest{Username: "farmer_ali", Password: "wrong"})
	req, _ := http.NewRequest(http.MethodPost, "/auth/login", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	resp := decodeAuth(t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, "Invalid username or password", resp.Error)
}

func TestLoginHandler_InactiveAccount(t *testing.T) {
	router := setupTestRouter()

	authService := new(MockAuthService)
	authService.On("Login", mock.Anything, mock.Anything).Return(nil, service.ErrAccountInactive)

	h := NewAuthHandler(authService)
	router.POST("/auth/login", h.Login)

	body, _ := json.Marshal(entity.LoginRequest{Username: "farmer_ali", Password: "Secret1pass"})
	req, _ := http.NewRequest(http.MethodPost, "/auth/login", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestLogoutHandler_Success(t *testing.T) {
	router := setupTestRouter()
	user := &entity.SessionUser{ID: uuid.New(), Username: "farmer_ali", Role: "user"}

	authService := new(MockAuthService)
	authService.On("Logout", mock.Anything, "test-session").Return(nil)

	h := NewAuthHandler(authService)
	router.POST("/auth/logout", testUserMiddleware(user), h.Logout)

	req, _ := http.NewRequest(http.MethodPost, "/auth/logout", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeAuth(t, w).Success)
	authService.AssertExpectations(t)
}

func TestGetMeHandler(t *testing.T) {
	router := setupTestRouter()
	user := &entity.SessionUser{ID: uuid.New(), Username: "farmer_ali", Role: "user"}

	h := NewAuthHandler(new(MockAuthService))
	router.GET("/auth/me", testUserMiddleware(user), h.GetMe)

	req, _ := http.NewRequest(http.MethodGet, "/auth/me", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var got entity.SessionUser
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, user.Username, got.Username)
}

func TestGetMeHandler_NoUserInContext(t *testing.T) {
	router := setupTestRouter()

	h := NewAuthHandler(new(MockAuthService))
	router.GET("/auth/me", h.GetMe)

	req, _ := http.NewRequest(http.MethodGet, "/auth/me", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
