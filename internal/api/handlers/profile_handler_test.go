package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gharbazaar/backend/internal/api/handlers"
	"github.com/gharbazaar/backend/internal/api/middleware"
	"github.com/gharbazaar/backend/internal/application/services"
	"github.com/gharbazaar/backend/internal/domain/entities"
	"github.com/gharbazaar/backend/internal/infrastructure/identity"
	apperrors "github.com/gharbazaar/backend/pkg/errors"
)

// fakeProfileRepo is an in-memory ProfileRepository for handler tests
type fakeProfileRepo struct {
	mu       sync.Mutex
	profiles map[string]*entities.UserProfile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[string]*entities.UserProfile)}
}

func (r *fakeProfileRepo) Get(ctx context.Context, principal string) (*entities.UserProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.profiles[principal]; ok {
		clone := *p
		return &clone, nil
	}
	return nil, apperrors.NewNotFoundError(fmt.Sprintf("profile for %s not found", principal))
}

func (r *fakeProfileRepo) Save(ctx context.Context, profile *entities.UserProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.profiles[profile.Principal]; ok {
		// Upsert semantics: role is only written on first insert
		profile.Role = existing.Role
	}
	clone := *profile
	r.profiles[profile.Principal] = &clone
	return nil
}

func (r *fakeProfileRepo) SetRole(ctx context.Context, principal string, role entities.UserRole) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[principal]
	if !ok {
		return apperrors.NewNotFoundError(fmt.Sprintf("profile for %s not found", principal))
	}
	p.Role = role
	return nil
}

type profileEnv struct {
	repo    *fakeProfileRepo
	manager *identity.Manager
	server  http.Handler
}

func newProfileEnv(t *testing.T) *profileEnv {
	t.Helper()

	repo := newFakeProfileRepo()
	handler := handlers.NewProfileHandler(services.NewProfileService(repo))

	manager, err := identity.NewManager("test-signing-key")
	assert.NoError(t, err)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/profile", handler.GetProfile)
	mux.HandleFunc("PUT /api/profile", handler.SaveProfile)
	mux.HandleFunc("POST /api/admin/roles", handler.SetRole)

	return &profileEnv{
		repo:    repo,
		manager: manager,
		server:  middleware.AuthMiddleware(manager)(mux),
	}
}

func (e *profileEnv) request(t *testing.T, method, path, principal, role string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		assert.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if principal != "" {
		token, err := e.manager.Issue(principal, role, time.Hour)
		assert.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.server.ServeHTTP(rec, req)
	return rec
}

func TestGetProfile_MissingProfileIsNull(t *testing.T) {
	env := newProfileEnv(t)

	rec := env.request(t, http.MethodGet, "/api/profile", "user-1", "user", nil)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Profile *entities.UserProfile `json:"profile"`
	}
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Nil(t, resp.Profile)
}

func TestGetProfile_RequiresAuth(t *testing.T) {
	env := newProfileEnv(t)

	rec := env.request(t, http.MethodGet, "/api/profile", "", "", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSaveProfile_RoundTrip(t *testing.T) {
	env := newProfileEnv(t)

	body := map[string]string{"name": "Rajesh Kumar", "email": "rajesh@example.com"}
	rec := env.request(t, http.MethodPut, "/api/profile", "user-1", "user", body)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.request(t, http.MethodGet, "/api/profile", "user-1", "user", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Profile *entities.UserProfile `json:"profile"`
	}
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	if assert.NotNil(t, resp.Profile) {
		assert.Equal(t, "user-1", resp.Profile.Principal)
		assert.Equal(t, "Rajesh Kumar", resp.Profile.Name)
		assert.Equal(t, entities.RoleUser, resp.Profile.Role)
	}
}

func TestSetRole_AdminOnly(t *testing.T) {
	env := newProfileEnv(t)
	env.repo.profiles["user-2"] = &entities.UserProfile{Principal: "user-2", Role: entities.RoleUser}

	body := map[string]string{"principal": "user-2", "role": "admin"}

	rec := env.request(t, http.MethodPost, "/api/admin/roles", "user-1", "user", body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.request(t, http.MethodPost, "/api/admin/roles", "admin-1", "admin", body)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, entities.RoleAdmin, env.repo.profiles["user-2"].Role)
}
