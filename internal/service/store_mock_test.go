package service

import (
	"context"

	"armar/internal/database"

	"github.com/stretchr/testify/mock"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) CreateDocument(ctx context.Context, collection string, record any) (string, error) {
	args := m.Called(ctx, collection, record)
	return args.String(0), args.Error(1)
}

func (m *mockStore) GetDocuments(ctx context.Context, collection string, limit int) ([]database.Document, error) {
	args := m.Called(ctx, collection, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]database.Document), args.Error(1)
}

func (m *mockStore) Status(ctx context.Context) database.Status {
	args := m.Called(ctx)
	return args.Get(0).(database.Status)
}

func (m *mockStore) Close(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
