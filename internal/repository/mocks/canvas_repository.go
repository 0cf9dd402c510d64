package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"pixel-canvas/internal/domain"
)

// CanvasRepository 是 repository.CanvasRepository 的 mock
type CanvasRepository struct {
	mock.Mock
}

// FindByID provides a mock function
func (m *CanvasRepository) FindByID(ctx context.Context, id uint) (*domain.Canvas, error) {
	args := m.Called(ctx, id)
	canvas, _ := args.Get(0).(*domain.Canvas)
	return canvas, args.Error(1)
}

// ListByOwner provides a mock function
func (m *CanvasRepository) ListByOwner(ctx context.Context, userID uint) ([]domain.Canvas, error) {
	args := m.Called(ctx, userID)
	canvases, _ := args.Get(0).([]domain.Canvas)
	return canvases, args.Error(1)
}

// ListPublic provides a mock function
func (m *CanvasRepository) ListPublic(ctx context.Context) ([]domain.Canvas, error) {
	args := m.Called(ctx)
	canvases, _ := args.Get(0).([]domain.Canvas)
	return canvases, args.Error(1)
}

// Create provides a mock function
func (m *CanvasRepository) Create(ctx context.Context, canvas *domain.Canvas) error {
	args := m.Called(ctx, canvas)
	return args.Error(0)
}

// UpdateGrid provides a mock function
func (m *CanvasRepository) UpdateGrid(ctx context.Context, id uint, gridData string) error {
	args := m.Called(ctx, id, gridData)
	return args.Error(0)
}

// Delete provides a mock function
func (m *CanvasRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
