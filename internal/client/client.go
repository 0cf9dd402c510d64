// Package client 是编辑器和服务端之间的 HTTP 客户端，实现了 pixelcanvas.Saver。
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"pixel-canvas/internal/pixelcanvas"
)

// EditorInit 是 GET /api/canvases/:id/editor 返回的编辑器初始化数据
type EditorInit struct {
	CanvasID  uint        `json:"canvasId"`
	Title     string      `json:"title"`
	GridSize  int         `json:"gridSize"`
	PixelSize int         `json:"pixelSize"`
	GridData  [][]*string `json:"gridData"`
	Editable  bool        `json:"editable"`
}

// EditorConfig 把初始化数据转换为编辑器配置
func (e *EditorInit) EditorConfig() pixelcanvas.Config {
	return pixelcanvas.Config{
		GridSize:    e.GridSize,
		CellSize:    e.PixelSize,
		InitialGrid: e.GridData,
		Editable:    e.Editable,
		CanvasID:    fmt.Sprint(e.CanvasID),
	}
}

// APIError 是服务端返回的非 2xx 响应
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.StatusCode)
	}
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// Client 访问画布服务的 HTTP API
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        *logrus.Entry
}

// Option 配置 Client
type Option func(*Client)

// WithHTTPClient 替换底层 http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithToken 设置 Bearer token
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New 创建 Client 实例
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		log:        logrus.WithField("component", "client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Login 获取 JWT token
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var resp struct {
		Token string `json:"token"`
	}
	body := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", fmt.Errorf("login response did not contain a token")
	}
	return resp.Token, nil
}

// FetchEditorConfig 获取画布的编辑器初始化数据
func (c *Client) FetchEditorConfig(ctx context.Context, canvasID string) (*EditorInit, error) {
	var cfg EditorInit
	if err := c.do(ctx, http.MethodGet, "/api/canvases/"+url.PathEscape(canvasID)+"/editor", nil, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SaveGrid 实现 pixelcanvas.Saver：把完整网格提交到持久化端点。
// 非 2xx 或响应中 success 不为 true 都视为失败。
func (c *Client) SaveGrid(ctx context.Context, canvasID string, grid [][]*string) error {
	var resp struct {
		Success bool `json:"success"`
	}
	body := map[string]interface{}{"gridData": grid}
	if err := c.do(ctx, http.MethodPost, "/api/canvases/"+url.PathEscape(canvasID)+"/update", body, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("server did not confirm the save")
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var reqBody io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	c.log.WithFields(logrus.Fields{
		"method":     method,
		"path":       path,
		"status":     resp.StatusCode,
		"latency_ms": time.Since(start).Milliseconds(),
	}).Debug("API request completed")

	data, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var body struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &body) == nil {
			apiErr.Message = body.Error
		}
		return apiErr
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

var _ pixelcanvas.Saver = (*Client)(nil)
