package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"tarvee/internal/catalog"
	"tarvee/internal/model"
	"tarvee/internal/service"
)

type MockListingService struct {
	mock.Mock
}

func (m *MockListingService) Feed(ctx context.Context, q catalog.Query) ([]model.Listing, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Listing), args.Error(1)
}

func (m *MockListingService) Create(ctx context.Context, ownerID string, in service.CreateListingInput) (*model.Listing, error) {
	args := m.Called(ctx, ownerID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Listing), args.Error(1)
}
