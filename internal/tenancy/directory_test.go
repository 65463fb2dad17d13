package tenancy

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"nominas/backend/internal/identity"
	"nominas/backend/internal/repository"
	"nominas/backend/pkg/models"
)

var testDefaults = Defaults{RegionID: 1, LocationID: 1, TypeCode: models.TenantTypeIndividual}

func newTestDirectory(repo repository.Repository) *Directory {
	return NewDirectory(repo, &NoOpLogger{}, testDefaults, time.Second)
}

func TestResolveOrCreate_ExistingTenant(t *testing.T) {
	mockRepo := new(MockRepository)
	existing := &models.Tenant{ID: 7, Email: "a@x.com", Name: "a"}
	mockRepo.On("FindTenantByEmail", mock.Anything, "a@x.com").Return(existing, nil)

	d := newTestDirectory(mockRepo)
	tenant, err := d.ResolveOrCreate(context.Background(), identity.Identity{Email: "a@x.com", Name: "a"})

	assert.NoError(t, err)
	assert.Equal(t, int64(7), tenant.ID)
	// No mutation on the existing-tenant path
	mockRepo.AssertNotCalled(t, "CreateTenant", mock.Anything, mock.Anything)
	mockRepo.AssertExpectations(t)
}

func TestResolveOrCreate_CreatesFromCatalog(t *testing.T) {
	mockRepo := new(MockRepository)
	mockRepo.On("FindTenantByEmail", mock.Anything, "b@x.com").Return(nil, repository.ErrNotFound)
	mockRepo.On("FirstRegion", mock.Anything).Return(&models.Region{ID: 3, Name: "Centro"}, nil)
	mockRepo.On("FirstLocationInRegion", mock.Anything, int64(3)).Return(&models.Location{ID: 31, RegionID: 3}, nil)
	mockRepo.On("CreateTenant", mock.Anything, mock.MatchedBy(func(tenant *models.Tenant) bool {
		return tenant.Email == "b@x.com" &&
			tenant.RegionID == 3 &&
			tenant.LocationID == 31 &&
			tenant.TypeCode == models.TenantTypeIndividual &&
			strings.HasPrefix(tenant.TaxID, "PEND-")
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Tenant).ID = 42
	}).Return(nil)

	d := newTestDirectory(mockRepo)
	tenant, err := d.ResolveOrCreate(context.Background(), identity.Identity{Email: "b@x.com", Name: "b"})

	assert.NoError(t, err)
	assert.Equal(t, int64(42), tenant.ID)
	mockRepo.AssertExpectations(t)
}

func TestResolveOrCreate_EmptyCatalogUsesDefaults(t *testing.T) {
	mockRepo := new(MockRepository)
	mockRepo.On("FindTenantByEmail", mock.Anything, "c@x.com").Return(nil, repository.ErrNotFound)
	mockRepo.On("FirstRegion", mock.Anything).Return(nil, repository.ErrNotFound)
	mockRepo.On("FirstLocationInRegion", mock.Anything, testDefaults.RegionID).Return(nil, repository.ErrNotFound)
	mockRepo.On("CreateTenant", mock.Anything, mock.MatchedBy(func(tenant *models.Tenant) bool {
		return tenant.RegionID == testDefaults.RegionID && tenant.LocationID == testDefaults.LocationID
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Tenant).ID = 1
	}).Return(nil)

	d := newTestDirectory(mockRepo)
	tenant, err := d.ResolveOrCreate(context.Background(), identity.Identity{Email: "c@x.com", Name: "c"})

	assert.NoError(t, err)
	assert.Equal(t, int64(1), tenant.ID)
	mockRepo.AssertExpectations(t)
}

func TestResolveOrCreate_LostRaceReadsWinner(t *testing.T) {
	mockRepo := new(MockRepository)
	winner := &models.Tenant{ID: 9, Email: "d@x.com"}
	// First lookup misses, insert collides, re-read finds the winner.
	mockRepo.On("FindTenantByEmail", mock.Anything, "d@x.com").Return(nil, repository.ErrNotFound).Once()
	mockRepo.On("FirstRegion", mock.Anything).Return(nil, repository.ErrNotFound)
	mockRepo.On("FirstLocationInRegion", mock.Anything, mock.Anything).Return(nil, repository.ErrNotFound)
	mockRepo.On("CreateTenant", mock.Anything, mock.Anything).Return(repository.ErrDuplicateTenant)
	mockRepo.On("FindTenantByEmail", mock.Anything, "d@x.com").Return(winner, nil).Once()

	d := newTestDirectory(mockRepo)
	tenant, err := d.ResolveOrCreate(context.Background(), identity.Identity{Email: "d@x.com", Name: "d"})

	assert.NoError(t, err)
	assert.Equal(t, int64(9), tenant.ID)
	mockRepo.AssertExpectations(t)
}

func TestResolveOrCreate_CreateFailurePropagates(t *testing.T) {
	mockRepo := new(MockRepository)
	storeErr := errors.New("connection reset")
	mockRepo.On("FindTenantByEmail", mock.Anything, "e@x.com").Return(nil, repository.ErrNotFound)
	mockRepo.On("FirstRegion", mock.Anything).Return(nil, repository.ErrNotFound)
	mockRepo.On("FirstLocationInRegion", mock.Anything, mock.Anything).Return(nil, repository.ErrNotFound)
	mockRepo.On("CreateTenant", mock.Anything, mock.Anything).Return(storeErr)

	d := newTestDirectory(mockRepo)
	tenant, err := d.ResolveOrCreate(context.Background(), identity.Identity{Email: "e@x.com", Name: "e"})

	assert.Nil(t, tenant, "must never fabricate a tenant on failure")
	assert.ErrorIs(t, err, storeErr)
}

func TestProvisionalTaxIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := provisionalTaxID()
		assert.True(t, strings.HasPrefix(id, "PEND-"))
		assert.False(t, seen[id], "tax id %s repeated", id)
		seen[id] = true
	}
}
