package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/dispatchhq/dispatchd/internal/app/ports"
	"github.com/dispatchhq/dispatchd/internal/integration"
)

func TestRepositoryLoadPropagatesStoreError(t *testing.T) {
	t.Parallel()

	store := &MockIntegrationStore{}
	store.On("Get", mock.Anything, int64(7)).Return(ports.IntegrationRecord{}, errors.New("disk gone"))

	repo := NewIntegrationRepository(store, testCipher(t))
	if _, err := repo.Load(context.Background(), 7); err == nil {
		t.Fatal("store failures must surface to the caller")
	}
	store.AssertExpectations(t)
}

func TestRepositorySavePropagatesStoreError(t *testing.T) {
	t.Parallel()

	store := &MockIntegrationStore{}
	store.On("Save", mock.Anything, mock.Anything).Return(int64(0), errors.New("readonly database"))

	repo := NewIntegrationRepository(store, testCipher(t))
	instance := integration.New("slack")
	instance.ProjectID = int64p(1)
	instance.SetProp("webhook", "https://hooks.example.com/x")

	if err := repo.Save(context.Background(), instance); err == nil {
		t.Fatal("store failures must surface to the caller")
	}
	if !instance.Dirty() {
		t.Fatal("dirty tracking must survive a failed save")
	}
	store.AssertExpectations(t)
}

func TestRepositoryListForProjectPropagatesStoreError(t *testing.T) {
	t.Parallel()

	store := &MockIntegrationStore{}
	store.On("ListForProject", mock.Anything, int64(1)).Return(nil, errors.New("disk gone"))

	repo := NewIntegrationRepository(store, testCipher(t))
	if _, err := repo.ListForProject(context.Background(), 1); err == nil {
		t.Fatal("store failures must surface to the caller")
	}
	store.AssertExpectations(t)
}
