package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"shoe-storefront/internal/domain"
	"shoe-storefront/internal/repository"
	"shoe-storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubAddresses struct {
	service.AddressService
	byUser map[uuid.UUID][]*domain.Address
}

func (s *stubAddresses) List(ctx context.Context, userID uuid.UUID) ([]*domain.Address, error) {
	return s.byUser[userID], nil
}

func (s *stubAddresses) SetDefault(ctx context.Context, userID, id uuid.UUID) ([]*domain.Address, error) {
	found := false
	for _, a := range s.byUser[userID] {
		a.IsDefault = a.ID == id
		found = found || a.IsDefault
	}
	if !found {
		return nil, repository.ErrAddressNotFound
	}
	return s.byUser[userID], nil
}

func newTestUserHandler() (*UserHandler, service.UserService) {
	userService := service.NewUserService(newMockUserRepository(), newMockRefreshTokenRepository(), service.TokenConfig{Secret: "test-secret"})
	return NewUserHandler(userService, &stubAddresses{}, zap.NewNop()), userService
}

func testProperties(minSuccessful int) *gopter.Properties {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = minSuccessful
	return gopter.NewProperties(params)
}

// Feature: storefront-api, Property: invalid registration data is rejected
func TestProperty_InvalidRegistrationDataIsRejected(t *testing.T) {
	properties := testProperties(50)

	properties.Property("registration with invalid data returns validation errors", prop.ForAll(
		func(invalidCase int) bool {
			handler, _ := newTestUserHandler()

			var reqBody service.RegisterInput
			switch invalidCase % 4 {
			case 0:
				reqBody = service.RegisterInput{Email: "", Password: "ValidPass123", DisplayName: "Jane"}
			case 1:
				reqBody = service.RegisterInput{Email: "not-an-email", Password: "ValidPass123", DisplayName: "Jane"}
			case 2:
				reqBody = service.RegisterInput{Email: "jane@example.com", Password: "short", DisplayName: "Jane"}
			case 3:
				reqBody = service.RegisterInput{Email: "jane@example.com", Password: "ValidPass123"}
			}

			w := doJSON(t, http.HandlerFunc(handler.Register), http.MethodPost, "/api/users/register", reqBody)
			if w.Code != http.StatusBadRequest {
				t.Logf("FAIL: Expected 400 status code, got %d", w.Code)
				return false
			}

			var env errorEnvelope
			decodeBody(t, w, &env)
			return env.Error.Message == "validation failed" && env.Error.Details["validation_errors"] != nil
		},
		gen.IntRange(0, 100),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Feature: storefront-api, Property: valid login returns both tokens
func TestProperty_ValidLoginReturnsBothTokens(t *testing.T) {
	properties := testProperties(20)

	properties.Property("registered users can log in and refresh", prop.ForAll(
		func(email, password, displayName string) bool {
			handler, userService := newTestUserHandler()

			w := doJSON(t, http.HandlerFunc(handler.Register), http.MethodPost, "/api/users/register", service.RegisterInput{
				Email:       email,
				Password:    password,
				DisplayName: displayName,
			})
			if w.Code != http.StatusCreated {
				t.Logf("FAIL: register returned %d: %s", w.Code, w.Body.String())
				return false
			}

			w = doJSON(t, http.HandlerFunc(handler.Login), http.MethodPost, "/api/users/login", LoginRequest{Email: email, Password: password})
			if w.Code != http.StatusOK {
				t.Logf("FAIL: login returned %d", w.Code)
				return false
			}

			var loginResp LoginResponse
			decodeBody(t, w, &loginResp)
			if loginResp.AccessToken == "" || loginResp.RefreshToken == "" || loginResp.User == nil {
				return false
			}

			claims, err := userService.ValidateToken(loginResp.AccessToken)
			if err != nil || claims.UserID != loginResp.User.ID || claims.Role != domain.RoleUser {
				return false
			}

			w = doJSON(t, http.HandlerFunc(handler.RefreshToken), http.MethodPost, "/api/users/refresh", RefreshRequest{RefreshToken: loginResp.RefreshToken})
			return w.Code == http.StatusOK
		},
		gen.RegexMatch(`[a-z]{3,10}@[a-z]{3,8}\.(com|org|net)`),
		gen.RegexMatch(`[A-Za-z0-9!@#$%]{8,20}`),
		gen.RegexMatch(`[A-Z][a-z]{2,15}`),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestUserHandler_DuplicateRegistrationConflicts(t *testing.T) {
	handler, _ := newTestUserHandler()
	body := service.RegisterInput{Email: "jane@example.com", Password: "ValidPass123", DisplayName: "Jane"}

	w := doJSON(t, http.HandlerFunc(handler.Register), http.MethodPost, "/api/users/register", body)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, http.HandlerFunc(handler.Register), http.MethodPost, "/api/users/register", body)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestUserHandler_WrongPasswordIsUnauthorized(t *testing.T) {
	handler, userService := newTestUserHandler()
	_, err := userService.Register(context.Background(), service.RegisterInput{
		Email: "jane@example.com", Password: "ValidPass123", DisplayName: "Jane",
	})
	require.NoError(t, err)

	w := doJSON(t, http.HandlerFunc(handler.Login), http.MethodPost, "/api/users/login", LoginRequest{Email: "jane@example.com", Password: "nope-nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUserHandler_ProfileRoundTrip(t *testing.T) {
	handler, userService := newTestUserHandler()
	user, err := userService.Register(context.Background(), service.RegisterInput{
		Email: "jane@example.com", Password: "ValidPass123", DisplayName: "Jane",
	})
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(asUser(user.ID, domain.RoleUser))
	r.Get("/profile", handler.GetProfile)
	r.Put("/profile", handler.UpdateProfile)

	w := doJSON(t, r, http.MethodPut, "/profile", service.ProfileInput{DisplayName: "Jane D", PhoneNumber: "600-111-222"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodGet, "/profile", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got domain.User
	decodeBody(t, w, &got)
	assert.Equal(t, "Jane D", got.DisplayName)
	assert.Equal(t, "600111222", got.PhoneNumber)

	w = doJSON(t, r, http.MethodPut, "/profile", service.ProfileInput{DisplayName: "Jane", PhoneNumber: "123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserHandler_ProfileRequiresIdentity(t *testing.T) {
	handler, _ := newTestUserHandler()

	w := httptest.NewRecorder()
	handler.GetProfile(w, httptest.NewRequest(http.MethodGet, "/api/users/profile", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUserHandler_SetDefaultAddress(t *testing.T) {
	userID := uuid.New()
	first := &domain.Address{ID: uuid.New(), Title: "Home", IsDefault: true}
	second := &domain.Address{ID: uuid.New(), Title: "Work"}
	addresses := &stubAddresses{byUser: map[uuid.UUID][]*domain.Address{userID: {first, second}}}
	handler := NewUserHandler(nil, addresses, zap.NewNop())

	r := chi.NewRouter()
	handler.RegisterRoutes(r, asUser(userID, domain.RoleUser), passThrough)

	w := doJSON(t, r, http.MethodPost, "/api/users/addresses/"+second.ID.String()+"/default", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got []domain.Address
	decodeBody(t, w, &got)
	require.Len(t, got, 2)
	assert.False(t, got[0].IsDefault)
	assert.True(t, got[1].IsDefault)

	w = doJSON(t, r, http.MethodPost, "/api/users/addresses/"+uuid.NewString()+"/default", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/users/addresses/not-a-uuid/default", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
