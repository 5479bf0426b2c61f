package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/josh-kwaku/hotel-booking/internal/auth"
	"github.com/josh-kwaku/hotel-booking/internal/domain"
)

type mockUserReader struct {
	user *domain.User
}

func (m *mockUserReader) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	if m.user == nil || m.user.Email != email {
		return nil, domain.ErrNotFound
	}
	return m.user, nil
}

func (m *mockUserReader) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	if m.user == nil || m.user.ID != id {
		return nil, domain.ErrNotFound
	}
	return m.user, nil
}

func testUser(t *testing.T, status domain.UserStatus) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	return &domain.User{ID: uuid.New(), Email: "guest@test.com", Name: "Guest", PasswordHash: string(hash), Status: status}
}

func TestAuthHandler_Login(t *testing.T) {
	tokens := auth.NewTokens("secret", "hotel-booking", time.Hour)

	tests := []struct {
		name       string
		status     domain.UserStatus
		body       string
		wantStatus int
		wantCode   string
	}{
		{name: "valid", status: domain.UserStatusActive, body: `{"email":"guest@test.com","password":"password123"}`, wantStatus: http.StatusOK},
		{name: "wrong password", status: domain.UserStatusActive, body: `{"email":"guest@test.com","password":"nope"}`, wantStatus: http.StatusUnauthorized, wantCode: "INVALID_CREDENTIALS"},
		{name: "unknown email", status: domain.UserStatusActive, body: `{"email":"who@test.com","password":"password123"}`, wantStatus: http.StatusUnauthorized, wantCode: "INVALID_CREDENTIALS"},
		{name: "suspended", status: domain.UserStatusSuspended, body: `{"email":"guest@test.com","password":"password123"}`, wantStatus: http.StatusUnauthorized, wantCode: "INVALID_CREDENTIALS"},
		{name: "missing fields", status: domain.UserStatusActive, body: `{}`, wantStatus: http.StatusBadRequest, wantCode: "VALIDATION_FAILED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := testUser(t, tt.status)
			rec := httptest.NewRecorder()
			NewAuthHandler(&mockUserReader{user: user}, tokens).Login(rec, newRequest(t, http.MethodPost, "/api/v1/auth/login", tt.body, uuid.Nil))

			require.Equal(t, tt.wantStatus, rec.Code)
			env := decodeEnvelope(t, rec)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, env.Error.Code)
				return
			}
			data := decodeData(t, env)
			assert.Equal(t, "Bearer", data["token_type"])
			assert.Equal(t, float64(3600), data["expires_in"])

			claims, err := tokens.Validate(data["token"].(string))
			require.NoError(t, err)
			assert.Equal(t, user.ID, claims.UserID)
		})
	}
}

func TestAuthHandler_Profile(t *testing.T) {
	user := testUser(t, domain.UserStatusActive)
	h := NewAuthHandler(&mockUserReader{user: user}, auth.NewTokens("secret", "hotel-booking", time.Hour))

	rec := httptest.NewRecorder()
	h.Profile(rec, newRequest(t, http.MethodGet, "/api/v1/auth/profile", nil, user.ID))

	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeData(t, decodeEnvelope(t, rec))
	assert.Equal(t, "guest@test.com", data["email"])
	assert.NotContains(t, rec.Body.String(), "password")
}
