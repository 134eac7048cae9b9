package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"referensi/internal/model"
	"referensi/internal/query"
	"referensi/internal/service"
)

type MockReferenceService struct {
	mock.Mock
}

func (m *MockReferenceService) Search(ctx context.Context, keyword string, categoryID *int64) ([]model.Document, error) {
	args := m.Called(ctx, keyword, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Document), args.Error(1)
}

func (m *MockReferenceService) ListPage(ctx context.Context, req query.PageRequest) (*service.PageResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PageResult), args.Error(1)
}

func (m *MockReferenceService) Discover(ctx context.Context) ([]model.Document, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Document), args.Error(1)
}

func (m *MockReferenceService) Categories(ctx context.Context) ([]model.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Category), args.Error(1)
}

func (m *MockReferenceService) Get(ctx context.Context, id int64) (*model.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockReferenceService) DownloadURL(ctx context.Context, id int64) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}
