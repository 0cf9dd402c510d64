package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"pixel-canvas/internal/domain"
	"pixel-canvas/internal/middleware"
	"pixel-canvas/internal/repository"
	"pixel-canvas/internal/repository/mocks"
	"pixel-canvas/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// asUser 模拟认证中间件：从 X-Test-User 头读取用户 ID
func asUser(c *gin.Context) {
	if v := c.GetHeader("X-Test-User"); v != "" {
		id, _ := strconv.Atoi(v)
		c.Set(middleware.ContextUserIDKey, uint(id))
	}
	c.Next()
}

func newCanvasRouter(repo *mocks.CanvasRepository) *gin.Engine {
	canvasSvc := service.NewCanvasService(repo, nil, nil, service.CanvasLimits{DefaultSize: 2, MaxSize: 4, PixelSize: 10})
	previewSvc := service.NewPreviewService(repo, nil, 5, 0)
	h := NewCanvasHandler(canvasSvc, previewSvc)

	r := gin.New()
	r.Use(asUser)
	r.GET("/api/canvases/public", h.ListPublic)
	r.GET("/api/canvases", h.ListMine)
	r.POST("/api/canvases", h.Create)
	r.GET("/api/canvases/:id", h.Get)
	r.GET("/api/canvases/:id/editor", h.Editor)
	r.POST("/api/canvases/:id/update", h.UpdateGrid)
	r.DELETE("/api/canvases/:id", h.Delete)
	r.GET("/api/canvases/:id/preview.png", h.Preview)
	return r
}

func do(r http.Handler, method, path, user, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func storedCanvas() *domain.Canvas {
	return &domain.Canvas{ID: 1, UserID: 3, Title: "cat", Size: 2, GridData: `[["#000",null],[null,null]]`}
}

func TestCanvasHandler_UpdateGrid(t *testing.T) {
	cases := []struct {
		name     string
		user     string
		body     string
		wantCode int
		wantBody string
		persist  bool
	}{
		{"owner saves", "3", `{"gridData":[["#f00",null],[null,"#0f0"]]}`, http.StatusOK, `{"success":true}`, true},
		{"non owner", "4", `{"gridData":[[null,null],[null,null]]}`, http.StatusForbidden, "", false},
		{"missing gridData", "3", `{"grid":[]}`, http.StatusBadRequest, "", false},
		{"null gridData", "3", `{"gridData":null}`, http.StatusBadRequest, "", false},
		{"wrong cell type", "3", `{"gridData":[[1,2],[3,4]]}`, http.StatusBadRequest, "", false},
		{"malformed json", "3", `{"gridData":`, http.StatusBadRequest, "", false},
		{"shape mismatch", "3", `{"gridData":[[null]]}`, http.StatusBadRequest, "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := new(mocks.CanvasRepository)
			repo.On("FindByID", mock.Anything, uint(1)).Return(storedCanvas(), nil).Maybe()
			if tc.persist {
				repo.On("UpdateGrid", mock.Anything, uint(1), `[["#f00",null],[null,"#0f0"]]`).Return(nil).Once()
			}

			w := do(newCanvasRouter(repo), http.MethodPost, "/api/canvases/1/update", tc.user, tc.body)

			assert.Equal(t, tc.wantCode, w.Code, w.Body.String())
			if tc.wantBody != "" {
				assert.JSONEq(t, tc.wantBody, w.Body.String())
			} else {
				assert.Contains(t, w.Body.String(), `"error"`)
			}
			if !tc.persist {
				repo.AssertNotCalled(t, "UpdateGrid", mock.Anything, mock.Anything, mock.Anything)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestCanvasHandler_UpdateGrid_UnknownCanvas(t *testing.T) {
	repo := new(mocks.CanvasRepository)
	repo.On("FindByID", mock.Anything, uint(9)).Return(nil, repository.ErrCanvasNotFound)

	w := do(newCanvasRouter(repo), http.MethodPost, "/api/canvases/9/update", "3", `{"gridData":[[null,null],[null,null]]}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(newCanvasRouter(repo), http.MethodPost, "/api/canvases/abc/update", "3", `{"gridData":[]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCanvasHandler_Editor(t *testing.T) {
	repo := new(mocks.CanvasRepository)
	repo.On("FindByID", mock.Anything, uint(1)).Return(storedCanvas(), nil)
	r := newCanvasRouter(repo)

	w := do(r, http.MethodGet, "/api/canvases/1/editor", "3", "")
	require.Equal(t, http.StatusOK, w.Code)
	var got struct {
		CanvasID  uint        `json:"canvasId"`
		GridSize  int         `json:"gridSize"`
		PixelSize int         `json:"pixelSize"`
		GridData  [][]*string `json:"gridData"`
		Editable  bool        `json:"editable"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, uint(1), got.CanvasID)
	assert.Equal(t, 2, got.GridSize)
	assert.Equal(t, 10, got.PixelSize)
	assert.True(t, got.Editable)
	require.NotNil(t, got.GridData[0][0])
	assert.Equal(t, "#000", *got.GridData[0][0])

	// 私有画布对其他人不可见
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodGet, "/api/canvases/1/editor", "4", "").Code)
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodGet, "/api/canvases/1/editor", "", "").Code)
}

func TestCanvasHandler_Get_CorruptGridServedEmpty(t *testing.T) {
	repo := new(mocks.CanvasRepository)
	canvas := storedCanvas()
	canvas.IsPublic = true
	canvas.GridData = `{not json`
	repo.On("FindByID", mock.Anything, uint(1)).Return(canvas, nil)
	r := newCanvasRouter(repo)

	w := do(r, http.MethodGet, "/api/canvases/1", "", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var got struct {
		Title    string      `json:"title"`
		GridData [][]*string `json:"grid_data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "cat", got.Title)
	assert.Equal(t, [][]*string{{nil, nil}, {nil, nil}}, got.GridData)
}

func TestCanvasHandler_CreateAndList(t *testing.T) {
	repo := new(mocks.CanvasRepository)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Canvas")).
		Run(func(args mock.Arguments) { args.Get(1).(*domain.Canvas).ID = 5 }).
		Return(nil).Once()
	repo.On("ListByOwner", mock.Anything, uint(3)).Return([]domain.Canvas{*storedCanvas()}, nil).Once()
	repo.On("ListPublic", mock.Anything).Return([]domain.Canvas{}, nil).Once()
	r := newCanvasRouter(repo)

	w := do(r, http.MethodPost, "/api/canvases", "3", `{"title":"new","is_public":true}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"id":5`)
	assert.Contains(t, w.Body.String(), `"size":2`)

	w = do(r, http.MethodPost, "/api/canvases", "3", `{"size":99}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/api/canvases", "3", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"title":"cat"`)
	assert.NotContains(t, w.Body.String(), "grid_data")

	w = do(r, http.MethodGet, "/api/canvases/public", "", "")
	assert.JSONEq(t, `{"canvases":[]}`, w.Body.String())
}

func TestCanvasHandler_DeleteAndPreview(t *testing.T) {
	repo := new(mocks.CanvasRepository)
	repo.On("FindByID", mock.Anything, uint(1)).Return(storedCanvas(), nil)
	repo.On("Delete", mock.Anything, uint(1)).Return(nil).Once()
	r := newCanvasRouter(repo)

	w := do(r, http.MethodGet, "/api/canvases/1/preview.png", "3", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")))

	assert.Equal(t, http.StatusForbidden, do(r, http.MethodDelete, "/api/canvases/1", "4", "").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodDelete, "/api/canvases/1", "3", "").Code)
	repo.AssertExpectations(t)
}
