package thread

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"collaborative-whiteboard/internal/errors"
	"collaborative-whiteboard/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) CreateThread(ctx context.Context, roomID, author string, x, y float64, body string) (*Thread, error) {
	args := m.Called(ctx, roomID, author, x, y, body)
	if t, ok := args.Get(0).(*Thread); ok {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockService) AddComment(ctx context.Context, threadID, author, body string) (*Thread, error) {
	args := m.Called(ctx, threadID, author, body)
	if t, ok := args.Get(0).(*Thread); ok {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockService) Focus(ctx context.Context, threadID string) (*Thread, error) {
	args := m.Called(ctx, threadID)
	if t, ok := args.Get(0).(*Thread); ok {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockService) SetResolved(ctx context.Context, threadID string, resolved bool) (*Thread, error) {
	args := m.Called(ctx, threadID, resolved)
	if t, ok := args.Get(0).(*Thread); ok {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockService) ListThreads(ctx context.Context, roomID string, includeResolved bool, page, pageSize int) (*PaginatedThreads, error) {
	args := m.Called(ctx, roomID, includeResolved, page, pageSize)
	if r, ok := args.Get(0).(*PaginatedThreads); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func setupRouter(service Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.ErrorHandler())
	router.Use(func(c *gin.Context) {
		c.Set("participant_id", "p-1")
		c.Set("participant_name", "ada")
	})

	handler := NewHandler(service)
	router.GET("/rooms/:id/threads", handler.List)
	router.POST("/rooms/:id/threads", handler.Create)
	router.POST("/threads/:id/comments", handler.AddComment)
	router.POST("/threads/:id/focus", handler.Focus)
	router.POST("/threads/:id/resolve", handler.Resolve)
	return router
}

func postJSON(router *gin.Engine, path string, payload any) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(payload)
	req, _ := http.NewRequest(http.MethodPost, path, bytes.NewBuffer(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateThreadHandler(t *testing.T) {
	service := new(MockService)
	router := setupRouter(service)

	service.On("CreateThread", mock.Anything, "room-1", "ada", 120.0, 80.0, "check alignment").
		Return(&Thread{ID: "t-1", RoomID: "room-1", AnchorX: 120, AnchorY: 80, ZIndex: 1}, nil)

	w := postJSON(router, "/rooms/room-1/threads", gin.H{"x": 120, "y": 80, "body": "check alignment"})

	assert.Equal(t, http.StatusCreated, w.Code)

	var created Thread
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "t-1", created.ID)
	assert.Equal(t, int64(1), created.ZIndex)
	service.AssertExpectations(t)
}

func TestCreateThreadHandlerMissingBody(t *testing.T) {
	service := new(MockService)
	router := setupRouter(service)

	w := postJSON(router, "/rooms/room-1/threads", gin.H{"x": 10, "y": 10})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	service.AssertNotCalled(t, "CreateThread")
}

func TestCreateThreadHandlerZeroAnchorAccepted(t *testing.T) {
	service := new(MockService)
	router := setupRouter(service)

	service.On("CreateThread", mock.Anything, "room-1", "ada", 0.0, 0.0, "origin note").
		Return(&Thread{ID: "t-2"}, nil)

	w := postJSON(router, "/rooms/room-1/threads", gin.H{"body": "origin note"})

	assert.Equal(t, http.StatusCreated, w.Code)
	service.AssertExpectations(t)
}

func TestListThreadsHandler(t *testing.T) {
	service := new(MockService)
	router := setupRouter(service)

	service.On("ListThreads", mock.Anything, "room-1", false, 1, 50).
		Return(&PaginatedThreads{
			Data: []Thread{{ID: "t-1"}},
			Meta: ThreadsMeta{Total: 1, CurrentPage: 1, PerPage: 50, TotalPage: 1},
		}, nil)

	req, _ := http.NewRequest(http.MethodGet, "/rooms/room-1/threads", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var result PaginatedThreads
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Len(t, result.Data, 1)
	service.AssertExpectations(t)
}

func TestListThreadsHandlerIncludeResolved(t *testing.T) {
	service := new(MockService)
	router := setupRouter(service)

	service.On("ListThreads", mock.Anything, "room-1", true, 2, 10).
		Return(&PaginatedThreads{}, nil)

	req, _ := http.NewRequest(http.MethodGet, "/rooms/room-1/threads?resolved=true&page=2&per_page=10", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	service.AssertExpectations(t)
}

func TestAddCommentHandler(t *testing.T) {
	service := new(MockService)
	router := setupRouter(service)

	service.On("AddComment", mock.Anything, "t-1", "ada", "agreed").
		Return(&Thread{ID: "t-1", Comments: []Comment{{Body: "first"}, {Body: "agreed"}}}, nil)

	w := postJSON(router, "/threads/t-1/comments", gin.H{"body": "agreed"})

	assert.Equal(t, http.StatusCreated, w.Code)
	service.AssertExpectations(t)
}

func TestFocusHandler(t *testing.T) {
	service := new(MockService)
	router := setupRouter(service)

	service.On("Focus", mock.Anything, "t-1").
		Return(&Thread{ID: "t-1", ZIndex: 9}, nil)

	req, _ := http.NewRequest(http.MethodPost, "/threads/t-1/focus", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var focused Thread
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &focused))
	assert.Equal(t, int64(9), focused.ZIndex)
	service.AssertExpectations(t)
}

func TestFocusHandlerNotFound(t *testing.T) {
	service := new(MockService)
	router := setupRouter(service)

	service.On("Focus", mock.Anything, "missing").
		Return(nil, errors.NotFound("Thread not found", nil))

	req, _ := http.NewRequest(http.MethodPost, "/threads/missing/focus", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestResolveHandler(t *testing.T) {
	service := new(MockService)
	router := setupRouter(service)

	service.On("SetResolved", mock.Anything, "t-1", true).
		Return(&Thread{ID: "t-1", Resolved: true}, nil)

	w := postJSON(router, "/threads/t-1/resolve", gin.H{"resolved": true})

	assert.Equal(t, http.StatusOK, w.Code)
	service.AssertExpectations(t)
}

func TestResolveHandlerMissingFlag(t *testing.T) {
	service := new(MockService)
	router := setupRouter(service)

	w := postJSON(router, "/threads/t-1/resolve", gin.H{})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	service.AssertNotCalled(t, "SetResolved")
}
