package subusers

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/panel-subusers/internal/config"
	"github.com/magabrotheeeer/panel-subusers/internal/lib/jwt"
	"github.com/magabrotheeeer/panel-subusers/internal/models"
	services "github.com/magabrotheeeer/panel-subusers/internal/services/subuser"
)

type ServiceMock struct{ mock.Mock }

func (m *ServiceMock) Authorize(ctx context.Context, serverID, actorID int, admin bool) error {
	return m.Called(ctx, serverID, actorID, admin).Error(0)
}
func (m *ServiceMock) ReadByPublicID(ctx context.Context, publicID string) (*models.Subuser, error) {
	args := m.Called(ctx, publicID)
	sub, _ := args.Get(0).(*models.Subuser)
	return sub, args.Error(1)
}
func (m *ServiceMock) Create(ctx context.Context, userID, serverID int, permissions []string) (*models.Subuser, error) {
	args := m.Called(ctx, userID, serverID, permissions)
	sub, _ := args.Get(0).(*models.Subuser)
	return sub, args.Error(1)
}
func (m *ServiceMock) List(ctx context.Context, serverID int) ([]*models.Subuser, error) {
	args := m.Called(ctx, serverID)
	subs, _ := args.Get(0).([]*models.Subuser)
	return subs, args.Error(1)
}
func (m *ServiceMock) Read(ctx context.Context, id int) (*models.Subuser, error) {
	args := m.Called(ctx, id)
	sub, _ := args.Get(0).(*models.Subuser)
	return sub, args.Error(1)
}
func (m *ServiceMock) UpdatePermissions(ctx context.Context, id int, permissions []string) ([]string, error) {
	args := m.Called(ctx, id, permissions)
	perms, _ := args.Get(0).([]string)
	return perms, args.Error(1)
}
func (m *ServiceMock) Revoke(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}
func (m *ServiceMock) ResolveCredential(ctx context.Context, sub *models.Subuser) (*models.DaemonKey, bool, error) {
	args := m.Called(ctx, sub)
	dk, _ := args.Get(0).(*models.DaemonKey)
	return dk, args.Bool(1), args.Error(2)
}
func (m *ServiceMock) PublicID(sub *models.Subuser) (string, error) {
	args := m.Called(sub)
	return args.String(0), args.Error(1)
}
func (m *ServiceMock) GrantedPermissions(ctx context.Context, sub *models.Subuser) ([]string, error) {
	args := m.Called(ctx, sub)
	perms, _ := args.Get(0).([]string)
	return perms, args.Error(1)
}

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

type routesFixture struct {
	router  *chi.Mux
	service *ServiceMock
	tokens  *jwt.MakerImpl
}

func newRoutesFixture() *routesFixture {
	svc := new(ServiceMock)
	tokens := jwt.NewJWTMaker("routes-secret", time.Hour)
	r := chi.NewRouter()
	RegisterRoutes(r, slog.New(slog.NewTextHandler(io.Discard, nil)),
		config.HTTPServer{RateLimit: 1000, RateBurst: 1000}, svc, tokens, okPinger{})
	return &routesFixture{router: r, service: svc, tokens: tokens}
}

func (f *routesFixture) do(t *testing.T, method, path, body string, userID int, role string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if userID > 0 {
		token, err := f.tokens.GenerateToken(userID, "tester", role)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

func TestRoutes_PublicEndpoints(t *testing.T) {
	f := newRoutesFixture()

	rr := f.do(t, http.MethodGet, "/health", "", 0, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = f.do(t, http.MethodGet, "/metrics", "", 0, "")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRoutes_RequireToken(t *testing.T) {
	f := newRoutesFixture()

	rr := f.do(t, http.MethodGet, "/api/v1/servers/12/users", "", 0, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	f.service.AssertNotCalled(t, "Authorize", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRoutes_OwnerFlow(t *testing.T) {
	f := newRoutesFixture()
	sub := &models.Subuser{ID: 3, UserID: 5, ServerID: 12}

	f.service.On("Authorize", mock.Anything, 12, 1, false).Return(nil)
	f.service.On("Create", mock.Anything, 5, 12, []string{"power-start"}).Return(sub, nil).Once()
	f.service.On("ReadByPublicID", mock.Anything, "xQ3vL9pA").Return(sub, nil)
	f.service.On("PublicID", sub).Return("xQ3vL9pA", nil)
	f.service.On("GrantedPermissions", mock.Anything, sub).Return([]string{"power-start"}, nil)
	f.service.On("ResolveCredential", mock.Anything, sub).Return(nil, false, nil).Once()
	f.service.On("Revoke", mock.Anything, 3).Return(nil).Once()

	rr := f.do(t, http.MethodPost, "/api/v1/servers/12/users", `{"user_id":5,"permissions":["power-start"]}`, 1, jwt.RoleUser)
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, rr.Body.String(), `"hashid":"xQ3vL9pA"`)

	rr = f.do(t, http.MethodGet, "/api/v1/servers/12/users/xQ3vL9pA", "", 1, jwt.RoleUser)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = f.do(t, http.MethodGet, "/api/v1/servers/12/users/xQ3vL9pA/key", "", 1, jwt.RoleUser)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = f.do(t, http.MethodDelete, "/api/v1/servers/12/users/xQ3vL9pA", "", 1, jwt.RoleUser)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	f.service.AssertExpectations(t)
}

func TestRoutes_AccessChecks(t *testing.T) {
	f := newRoutesFixture()
	foreign := &models.Subuser{ID: 4, UserID: 5, ServerID: 13}

	f.service.On("Authorize", mock.Anything, 12, 7, false).Return(services.ErrForbidden).Once()
	rr := f.do(t, http.MethodGet, "/api/v1/servers/12/users", "", 7, jwt.RoleUser)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = f.do(t, http.MethodGet, "/api/v1/servers/abc/users", "", 7, jwt.RoleUser)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	f.service.On("Authorize", mock.Anything, 12, 9, true).Return(nil).Once()
	f.service.On("ReadByPublicID", mock.Anything, "Zk1pQ0aa").Return(foreign, nil).Once()
	rr = f.do(t, http.MethodGet, "/api/v1/servers/12/users/Zk1pQ0aa", "", 9, jwt.RoleAdmin)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	f.service.AssertExpectations(t)
}
