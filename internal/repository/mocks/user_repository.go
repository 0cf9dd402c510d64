// Package mocks 提供 repository 接口的 testify mock 实现。
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"pixel-canvas/internal/domain"
)

// UserRepository 是 repository.UserRepository 的 mock
type UserRepository struct {
	mock.Mock
}

// FindByUsername provides a mock function
func (m *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

// FindByID provides a mock function
func (m *UserRepository) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

// Save provides a mock function
func (m *UserRepository) Save(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
