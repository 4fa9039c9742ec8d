package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floworx/triage-agent/internal/types"
)

func testAuthHandler() *AuthHandler {
	userService, _ := testUserService()
	return NewAuthHandler(userService, testJWTService())
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func TestAuthRegister(t *testing.T) {
	h := testAuthHandler()

	w := postJSON(t, h.Register, "/api/v1/auth/register", types.CreateUserRequest{
		Name:     "Artem",
		Email:    "artem@floworx.example",
		Password: "hunter2hunter2",
	})

	require.Equal(t, http.StatusCreated, w.Code)

	var resp types.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	require.NotNil(t, resp.User)
	assert.Equal(t, "artem@floworx.example", resp.User.Email)
}

func TestAuthRegisterInvalidBody(t *testing.T) {
	h := testAuthHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()
	h.Register(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthRegisterValidation(t *testing.T) {
	h := testAuthHandler()

	tests := []struct {
		name string
		req  types.CreateUserRequest
	}{
		{"missing name", types.CreateUserRequest{Email: "a@b.com", Password: "hunter2hunter2"}},
		{"bad email", types.CreateUserRequest{Name: "A", Email: "not-an-email", Password: "hunter2hunter2"}},
		{"short password", types.CreateUserRequest{Name: "A", Email: "a@b.com", Password: "short"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, h.Register, "/api/v1/auth/register", tt.req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), "validation error")
		})
	}
}

func TestAuthRegisterDuplicate(t *testing.T) {
	h := testAuthHandler()

	req := types.CreateUserRequest{Name: "Artem", Email: "artem@floworx.example", Password: "hunter2hunter2"}
	w := postJSON(t, h.Register, "/api/v1/auth/register", req)
	require.Equal(t, http.StatusCreated, w.Code)

	w = postJSON(t, h.Register, "/api/v1/auth/register", req)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAuthLogin(t *testing.T) {
	h := testAuthHandler()

	w := postJSON(t, h.Register, "/api/v1/auth/register", types.CreateUserRequest{
		Name: "Artem", Email: "artem@floworx.example", Password: "hunter2hunter2",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = postJSON(t, h.Login, "/api/v1/auth/login", types.LoginRequest{
		Email: "artem@floworx.example", Password: "hunter2hunter2",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp types.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
}

func TestAuthLoginBadCredentials(t *testing.T) {
	h := testAuthHandler()

	w := postJSON(t, h.Login, "/api/v1/auth/login", types.LoginRequest{
		Email: "nobody@floworx.example", Password: "whatever",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthTokenRoundTrip(t *testing.T) {
	// A token minted by register must validate back to the same user.
	h := testAuthHandler()

	w := postJSON(t, h.Register, "/api/v1/auth/register", types.CreateUserRequest{
		Name: "Artem", Email: "artem@floworx.example", Password: "hunter2hunter2",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp types.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	claims, err := h.jwtService.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
}
