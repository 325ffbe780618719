package shelter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"resiliencehub/internal/user"
	"resiliencehub/pkg/constants"
	"resiliencehub/pkg/token"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubVerifier map[string]*token.Claims

func (s stubVerifier) Verify(_ context.Context, tokenString string) (*token.Claims, error) {
	if c, ok := s[tokenString]; ok {
		return c, nil
	}
	return nil, errors.New("unknown token")
}

type stubProfiles struct {
	users       *fakeUsers
	invalidated []string
}

func (p *stubProfiles) Profile(ctx context.Context, uid string) (*user.Profile, error) {
	return p.users.FindByID(ctx, uid)
}

func (p *stubProfiles) Invalidate(_ context.Context, uid string) {
	p.invalidated = append(p.invalidated, uid)
}

func setupShelterRouter(shelters *fakeShelters, users *fakeUsers) (*gin.Engine, *stubProfiles) {
	gin.SetMode(gin.TestMode)

	profiles := &stubProfiles{users: users}
	handler := NewShelterHandler(NewShelterService(shelters, users, zap.NewNop().Sugar()), profiles, zap.NewNop().Sugar())

	verifier := stubVerifier{
		"user":  {UserType: constants.UserTypeUser, RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"}},
		"admin": {UserType: constants.UserTypeAdmin, RegisteredClaims: jwt.RegisteredClaims{Subject: "admin-1"}},
		"other": {UserType: constants.UserTypeAdmin, RegisteredClaims: jwt.RegisteredClaims{Subject: "admin-2"}},
	}

	r := gin.New()
	RegisterRoutes(r, handler, verifier)
	return r, profiles
}

func call(r http.Handler, method, path, bearer string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+bearer)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCheckInEndpoint(t *testing.T) {
	sh := newShelter(1, 0, true)
	shelters := newFakeShelters(sh)
	users := newFakeUsers(&user.Profile{UID: "u1", Name: "Ana"})
	r, profiles := setupShelterRouter(shelters, users)

	w := call(r, http.MethodPost, "/api/v1/checkin", "user", CheckInRequest{Code: `{"shelterId":"` + sh.ID.Hex() + `"}`})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Escola Municipal")
	assert.Equal(t, []string{"u1"}, profiles.invalidated)

	w = call(r, http.MethodPost, "/api/v1/checkin", "user", CheckInRequest{Code: sh.ID.Hex()})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = call(r, http.MethodPost, "/api/v1/checkin", "user", CheckInRequest{Code: "nowhere"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = call(r, http.MethodPost, "/api/v1/checkin", "user", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminRoutes(t *testing.T) {
	sh := newShelter(5, 0, true)
	shelters := newFakeShelters(sh)
	r, _ := setupShelterRouter(shelters, newFakeUsers(&user.Profile{UID: "u1"}))

	w := call(r, http.MethodGet, "/api/v1/shelters/mine", "user", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = call(r, http.MethodGet, "/api/v1/shelters/mine", "admin", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), sh.ID.Hex())

	w = call(r, http.MethodPost, "/api/v1/shelters/"+sh.ID.Hex()+"/toggle", "admin", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, shelters.get(sh.ID).Active)

	w = call(r, http.MethodPost, "/api/v1/shelters/"+sh.ID.Hex()+"/checkout/u1", "admin", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, -1, shelters.get(sh.ID).CurrentOccupancy)

	w = call(r, http.MethodGet, "/api/v1/shelters/"+sh.ID.Hex()+"/qrcode?size=128", "admin", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))

	w = call(r, http.MethodGet, "/api/v1/shelters/"+sh.ID.Hex()+"/qrcode?size=big", "admin", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = call(r, http.MethodPost, "/api/v1/shelters", "admin", CreateShelterRequest{Name: "Ginásio", Capacity: 20})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestGetShelterEndpoints(t *testing.T) {
	sh := newShelter(5, 0, true)
	r, _ := setupShelterRouter(newFakeShelters(sh), newFakeUsers())

	w := call(r, http.MethodGet, "/api/v1/shelters/"+sh.ID.Hex(), "user", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = call(r, http.MethodGet, "/api/v1/shelters/bad-id", "user", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = call(r, http.MethodGet, "/api/v1/shelters/active", "user", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), sh.ID.Hex())
}

func TestAdminRoutesRejectForeignAdmin(t *testing.T) {
	sh := newShelter(5, 1, true)
	shelters := newFakeShelters(sh)
	r, _ := setupShelterRouter(shelters, newFakeUsers(&user.Profile{UID: "u1"}))

	for _, path := range []string{"/toggle", "/occupants", "/qrcode"} {
		method := http.MethodGet
		if path == "/toggle" {
			method = http.MethodPost
		}
		w := call(r, method, "/api/v1/shelters/"+sh.ID.Hex()+path, "other", nil)
		assert.Equal(t, http.StatusForbidden, w.Code, path)
	}
	assert.True(t, shelters.get(sh.ID).Active)

	w := call(r, http.MethodPost, "/api/v1/shelters/"+sh.ID.Hex()+"/checkout/u1", "other", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBackendFailureIsNotLeaked(t *testing.T) {
	sh := newShelter(5, 0, true)
	shelters := newFakeShelters(sh)
	shelters.addErr = errors.New("store unavailable")
	r, _ := setupShelterRouter(shelters, newFakeUsers(&user.Profile{UID: "u1"}))

	w := call(r, http.MethodPost, "/api/v1/checkin", "user", CheckInRequest{Code: sh.ID.Hex()})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "store unavailable")
	assert.Contains(t, w.Body.String(), "something went wrong")
}

func TestCheckInWithoutProfileDocument(t *testing.T) {
	sh := newShelter(5, 0, true)
	shelters := newFakeShelters(sh)
	r, profiles := setupShelterRouter(shelters, newFakeUsers())

	w := call(r, http.MethodPost, "/api/v1/checkin", "user", CheckInRequest{Code: sh.ID.Hex()})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), ErrPartialWrite.Error())
	assert.Equal(t, 1, shelters.get(sh.ID).CurrentOccupancy)
	assert.Equal(t, []string{"u1"}, profiles.invalidated)
}
