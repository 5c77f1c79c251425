package client

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"ringslot/internal/user"
)

type MockClientRepo struct{ mock.Mock }

func (m *MockClientRepo) List(ctx context.Context) ([]ClientSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ClientSummary), args.Error(1)
}

func (m *MockClientRepo) GetByID(ctx context.Context, id int) (*ClientWithSubscription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ClientWithSubscription), args.Error(1)
}

type MockUserRepo struct{ mock.Mock }

func (m *MockUserRepo) Create(ctx context.Context, email, passwordHash, fullName, phone, role string) (*user.User, error) {
	args := m.Called(ctx, email, passwordHash, fullName, phone, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepo) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepo) FindByID(ctx context.Context, id int) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func setupClientRouter(repo Repository, userRepo user.Repository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := &Handler{repo: repo, userRepo: userRepo}

	r := gin.New()
	r.GET("/admin/clients", h.List)
	r.GET("/admin/clients/:clientID", h.Get)
	r.POST("/admin/clients", h.Create)
	return r
}

func TestListClientsHandler(t *testing.T) {
	repo := new(MockClientRepo)
	repo.On("List", mock.Anything).Return([]ClientSummary{
		{ID: 1, FullName: "Anna K", Email: "anna@example.com", SubscriptionsCount: 2},
	}, nil)

	r := setupClientRouter(repo, new(MockUserRepo))
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/admin/clients", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"subscriptions_count":2`)
}

func TestGetClientHandler(t *testing.T) {
	repo := new(MockClientRepo)
	repo.On("GetByID", mock.Anything, 1).
		Return(&ClientWithSubscription{ID: 1, FullName: "Anna K", Email: "anna@example.com", Role: "client"}, nil)
	repo.On("GetByID", mock.Anything, 99).Return(nil, ErrClientNotFound)

	r := setupClientRouter(repo, new(MockUserRepo))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/admin/clients/1", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/admin/clients/99", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/admin/clients/abc", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateClientHandler(t *testing.T) {
	repo := new(MockClientRepo)
	userRepo := new(MockUserRepo)
	userRepo.On("EmailExists", mock.Anything, "anna@example.com").Return(false, nil)
	userRepo.On("Create", mock.Anything, "anna@example.com", "", "Anna K", "+7 900", "client").
		Return(&user.User{ID: 1, Email: "anna@example.com", FullName: "Anna K", Role: "client"}, nil)

	r := setupClientRouter(repo, userRepo)
	w := httptest.NewRecorder()
	body := bytes.NewBufferString(`{"full_name": "Anna K", "email": "Anna@Example.com", "phone": "+7 900"}`)
	req, _ := http.NewRequest(http.MethodPost, "/admin/clients", body)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	userRepo.AssertExpectations(t)
}

func TestCreateClientValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"Missing name", `{"email": "a@b.c"}`},
		{"Missing email", `{"full_name": "Anna K"}`},
		{"Bad email", `{"full_name": "Anna K", "email": "not-an-email"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userRepo := new(MockUserRepo)
			r := setupClientRouter(new(MockClientRepo), userRepo)

			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodPost, "/admin/clients", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), "validation failed")
			userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestCreateClientDuplicateEmail(t *testing.T) {
	userRepo := new(MockUserRepo)
	userRepo.On("EmailExists", mock.Anything, "anna@example.com").Return(true, nil)

	r := setupClientRouter(new(MockClientRepo), userRepo)
	w := httptest.NewRecorder()
	body := bytes.NewBufferString(`{"full_name": "Anna K", "email": "anna@example.com"}`)
	req, _ := http.NewRequest(http.MethodPost, "/admin/clients", body)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}
