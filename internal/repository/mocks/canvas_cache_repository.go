package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"pixel-canvas/internal/domain"
)

// CanvasCacheRepository 是 repository.CanvasCacheRepository 的 mock
type CanvasCacheRepository struct {
	mock.Mock
}

// GetGrid provides a mock function
func (m *CanvasCacheRepository) GetGrid(ctx context.Context, canvasID uint) (domain.GridRows, error) {
	args := m.Called(ctx, canvasID)
	rows, _ := args.Get(0).(domain.GridRows)
	return rows, args.Error(1)
}

// SetGrid provides a mock function
func (m *CanvasCacheRepository) SetGrid(ctx context.Context, canvasID uint, rows domain.GridRows, ttl time.Duration) error {
	args := m.Called(ctx, canvasID, rows, ttl)
	return args.Error(0)
}

// GetPreview provides a mock function
func (m *CanvasCacheRepository) GetPreview(ctx context.Context, canvasID uint) ([]byte, error) {
	args := m.Called(ctx, canvasID)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

// SetPreview provides a mock function
func (m *CanvasCacheRepository) SetPreview(ctx context.Context, canvasID uint, png []byte, ttl time.Duration) error {
	args := m.Called(ctx, canvasID, png, ttl)
	return args.Error(0)
}

// Invalidate provides a mock function
func (m *CanvasCacheRepository) Invalidate(ctx context.Context, canvasID uint) error {
	args := m.Called(ctx, canvasID)
	return args.Error(0)
}

// CheckRateLimit provides a mock function
func (m *CanvasCacheRepository) CheckRateLimit(ctx context.Context, key string, limit int, duration time.Duration) (bool, error) {
	args := m.Called(ctx, key, limit, duration)
	return args.Bool(0), args.Error(1)
}
