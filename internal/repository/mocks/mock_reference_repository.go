package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"referensi/internal/model"
	"referensi/internal/query"
	"referensi/internal/repository"
)

type MockReferenceRepository struct {
	mock.Mock
}

func (m *MockReferenceRepository) Search(ctx context.Context, f query.Filter) ([]model.DocumentRow, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DocumentRow), args.Error(1)
}

func (m *MockReferenceRepository) List(ctx context.Context, f query.Filter, pq repository.PageQuery) (*repository.PageResult[model.DocumentRow], error) {
	args := m.Called(ctx, f, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.DocumentRow]), args.Error(1)
}

func (m *MockReferenceRepository) Random(ctx context.Context, n int) ([]model.DocumentRow, error) {
	args := m.Called(ctx, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DocumentRow), args.Error(1)
}

func (m *MockReferenceRepository) FindByID(ctx context.Context, id int64) (*model.DocumentRow, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DocumentRow), args.Error(1)
}

func (m *MockReferenceRepository) Categories(ctx context.Context) ([]model.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Category), args.Error(1)
}

func (m *MockReferenceRepository) CategoryExists(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}
