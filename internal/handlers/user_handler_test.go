package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"accountsvc/internal/models"
	"accountsvc/internal/services"
)

func requestAs(t *testing.T, userID int, method, path, body string, handler gin.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Handle(method, path, func(c *gin.Context) {
		if userID != 0 {
			c.Set("user_id", userID)
		}
		handler(c)
	})

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestProfileDetails(t *testing.T) {
	h := NewUserHandler(&stubAccountService{
		ProfileDetailsFunc: func(userID int) (*models.User, error) {
			require.Equal(t, 7, userID)
			return &models.User{ID: 7, Name: "A", Email: "a@x.com", PasswordHash: "hash", OTP: "123456"}, nil
		},
	})

	w := requestAs(t, 7, http.MethodGet, "/api/user/profile/details", "", h.ProfileDetails)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeEnvelope(t, w)
	data, ok := resp["data"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 7, data["id"])
	assert.NotContains(t, data, "password_hash")
	assert.NotContains(t, data, "otp")
}

func TestProfileDetailsNotFound(t *testing.T) {
	h := NewUserHandler(&stubAccountService{
		ProfileDetailsFunc: func(userID int) (*models.User, error) {
			return nil, services.ErrUserNotFound
		},
	})

	w := requestAs(t, 7, http.MethodGet, "/api/user/profile/details", "", h.ProfileDetails)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "User not found", decodeEnvelope(t, w)["msg"])
}

func TestProfileDetailsWithoutAuthContext(t *testing.T) {
	h := NewUserHandler(&stubAccountService{})

	w := requestAs(t, 0, http.MethodGet, "/api/user/profile/details", "", h.ProfileDetails)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestEditProfile(t *testing.T) {
	var got models.EditProfileRequest
	h := NewUserHandler(&stubAccountService{
		UpdateProfileFunc: func(userID int, name, email, role string) error {
			require.Equal(t, 7, userID)
			got = models.EditProfileRequest{Name: name, Email: email, Role: role}
			return nil
		},
	})

	w := requestAs(t, 7, http.MethodPost, "/api/edit/profile",
		`{"name":"B","email":"b@x.com","role":"admin"}`, h.EditProfile)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, models.EditProfileRequest{Name: "B", Email: "b@x.com", Role: "admin"}, got)

	w = requestAs(t, 7, http.MethodPost, "/api/edit/profile",
		`{"name":"B","email":"b@x.com"}`, h.EditProfile)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Role is required", decodeEnvelope(t, w)["msg"])
}

func TestChangePassword(t *testing.T) {
	h := NewUserHandler(&stubAccountService{
		ChangePasswordFunc: func(userID int, password string) error {
			require.Equal(t, 7, userID)
			require.Equal(t, "pass2", password)
			return nil
		},
	})

	w := requestAs(t, 7, http.MethodPost, "/api/change/password", `{"password":"pass2"}`, h.ChangePassword)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Password changed successfully", decodeEnvelope(t, w)["msg"])

	w = requestAs(t, 7, http.MethodPost, "/api/change/password", `{}`, h.ChangePassword)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Password is required", decodeEnvelope(t, w)["msg"])
}
