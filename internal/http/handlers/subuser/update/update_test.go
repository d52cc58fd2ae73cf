package update

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/panel-subusers/internal/http/middlewarectx"
	"github.com/magabrotheeeer/panel-subusers/internal/models"
	services "github.com/magabrotheeeer/panel-subusers/internal/services/subuser"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) UpdatePermissions(ctx context.Context, id int, permissions []string) ([]string, error) {
	args := m.Called(ctx, id, permissions)
	perms, _ := args.Get(0).([]string)
	return perms, args.Error(1)
}

func (m *MockService) Read(ctx context.Context, id int) (*models.Subuser, error) {
	args := m.Called(ctx, id)
	sub, _ := args.Get(0).(*models.Subuser)
	return sub, args.Error(1)
}

func (m *MockService) PublicID(sub *models.Subuser) (string, error) {
	args := m.Called(sub)
	return args.String(0), args.Error(1)
}

func (m *MockService) GrantedPermissions(ctx context.Context, sub *models.Subuser) ([]string, error) {
	args := m.Called(ctx, sub)
	perms, _ := args.Get(0).([]string)
	return perms, args.Error(1)
}

func TestUpdateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sub := &models.Subuser{ID: 3, UserID: 5, ServerID: 12}
	fresh := &models.Subuser{ID: 3, UserID: 5, ServerID: 12, UpdatedAt: time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)}

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "замена прав",
			body: `{"permissions":["send-command"]}`,
			setupMock: func(m *MockService) {
				m.On("UpdatePermissions", mock.Anything, 3, []string{"send-command"}).Return([]string{"send-command"}, nil).Once()
				m.On("Read", mock.Anything, 3).Return(fresh, nil).Once()
				m.On("PublicID", fresh).Return("xQ3vL9pA", nil).Once()
				m.On("GrantedPermissions", mock.Anything, fresh).Return([]string{"send-command"}, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"updated_at":"2024-05-02T00:00:00Z"`,
		},
		{
			name: "снятие всех прав",
			body: `{"permissions":[]}`,
			setupMock: func(m *MockService) {
				m.On("UpdatePermissions", mock.Anything, 3, []string{}).Return([]string{}, nil).Once()
				m.On("Read", mock.Anything, 3).Return(fresh, nil).Once()
				m.On("PublicID", fresh).Return("xQ3vL9pA", nil).Once()
				m.On("GrantedPermissions", mock.Anything, fresh).Return([]string{}, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"permissions":[]`,
		},
		{
			name: "неизвестное право",
			body: `{"permissions":["fly"]}`,
			setupMock: func(m *MockService) {
				m.On("UpdatePermissions", mock.Anything, 3, []string{"fly"}).
					Return(nil, &services.ValidationError{Field: "permissions", Rule: services.RulePermission, Value: "fly"}).Once()
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `unknown permission`,
		},
		{
			name:           "пустое имя права",
			body:           `{"permissions":[""]}`,
			setupMock:      func(*MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name:           "некорректный JSON",
			body:           `[`,
			setupMock:      func(*MockService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "запись удалена параллельно",
			body: `{"permissions":[]}`,
			setupMock: func(m *MockService) {
				m.On("UpdatePermissions", mock.Anything, 3, []string{}).Return(nil, services.ErrSubuserNotFound).Once()
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			req := httptest.NewRequest(http.MethodPut, "/servers/12/users/xQ3vL9pA", strings.NewReader(tt.body))
			req = req.WithContext(context.WithValue(req.Context(), middlewarectx.Subuser, sub))
			rr := httptest.NewRecorder()

			New(logger, mockService).ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			if tt.expectedBody != "" {
				assert.Contains(t, rr.Body.String(), tt.expectedBody)
			}
			mockService.AssertExpectations(t)
		})
	}
}
