package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/reciperealm/reciperealm-v2/client/internal/types"
)

// MockAPI is a mock implementation of the coordinator.API interface
type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) FetchRecipes(ctx context.Context, authenticated bool) ([]types.Recipe, error) {
	args := m.Called(ctx, authenticated)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Recipe), args.Error(1)
}

func (m *MockAPI) FetchProfile(ctx context.Context) (types.UserProfile, error) {
	args := m.Called(ctx)
	return args.Get(0).(types.UserProfile), args.Error(1)
}

func (m *MockAPI) ToggleLike(ctx context.Context, id string) (types.LikeResult, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(types.LikeResult), args.Error(1)
}

func (m *MockAPI) SetRating(ctx context.Context, id string, rating int) (float64, error) {
	args := m.Called(ctx, id, rating)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockAPI) CreateRecipe(ctx context.Context, req types.PublishRequest) (types.Recipe, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(types.Recipe), args.Error(1)
}

func (m *MockAPI) DeleteRecipe(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
