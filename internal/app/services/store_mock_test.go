package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dispatchhq/dispatchd/internal/app/ports"
)

// MockIntegrationStore mocks the integration store port for error-path
// tests where the map-backed fake cannot fail on demand.
type MockIntegrationStore struct {
	mock.Mock
}

func (m *MockIntegrationStore) Get(ctx context.Context, id int64) (ports.IntegrationRecord, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(ports.IntegrationRecord), args.Error(1)
}

func (m *MockIntegrationStore) ListForProject(ctx context.Context, projectID int64) ([]ports.IntegrationRecord, error) {
	args := m.Called(ctx, projectID)
	records, _ := args.Get(0).([]ports.IntegrationRecord)
	return records, args.Error(1)
}

func (m *MockIntegrationStore) ListInheritable(ctx context.Context, kind string) ([]ports.IntegrationRecord, error) {
	args := m.Called(ctx, kind)
	records, _ := args.Get(0).([]ports.IntegrationRecord)
	return records, args.Error(1)
}

func (m *MockIntegrationStore) Save(ctx context.Context, record ports.IntegrationRecord) (int64, error) {
	args := m.Called(ctx, record)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockIntegrationStore) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

var _ ports.IntegrationStore = (*MockIntegrationStore)(nil)
