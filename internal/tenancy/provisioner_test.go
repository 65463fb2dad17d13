package tenancy

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestEnsure_ExistingSchemaIsNoOp(t *testing.T) {
	mockRepo := new(MockRepository)
	mockRepo.On("SchemaExists", mock.Anything, "tenant_5").Return(true, nil)

	p := NewProvisioner(mockRepo, &NoOpLogger{}, time.Second)
	schema, err := p.Ensure(context.Background(), 5)

	assert.NoError(t, err)
	assert.Equal(t, "tenant_5", schema)
	mockRepo.AssertNotCalled(t, "CreateTenantSchema", mock.Anything, mock.Anything)
}

func TestEnsure_CreatesMissingSchema(t *testing.T) {
	mockRepo := new(MockRepository)
	mockRepo.On("SchemaExists", mock.Anything, "tenant_5").Return(false, nil)
	mockRepo.On("CreateTenantSchema", mock.Anything, int64(5)).Return(nil)

	p := NewProvisioner(mockRepo, &NoOpLogger{}, time.Second)
	schema, err := p.Ensure(context.Background(), 5)

	assert.NoError(t, err)
	assert.Equal(t, "tenant_5", schema)
	mockRepo.AssertExpectations(t)
}

func TestEnsure_CreateFailurePropagates(t *testing.T) {
	mockRepo := new(MockRepository)
	createErr := errors.New("disk full")
	mockRepo.On("SchemaExists", mock.Anything, "tenant_5").Return(false, nil)
	mockRepo.On("CreateTenantSchema", mock.Anything, int64(5)).Return(createErr)

	p := NewProvisioner(mockRepo, &NoOpLogger{}, time.Second)
	schema, err := p.Ensure(context.Background(), 5)

	assert.Empty(t, schema)
	assert.ErrorIs(t, err, createErr)
}

func TestBindingFromContext_FailClosed(t *testing.T) {
	// No binding at all
	_, ok := BindingFromContext(context.Background())
	assert.False(t, ok)

	// Binding without a schema must not pass either
	ctx := WithBinding(context.Background(), SessionBinding{Email: "a@x.com", TenantID: 1})
	_, ok = BindingFromContext(ctx)
	assert.False(t, ok)

	// Complete binding passes
	ctx = WithBinding(context.Background(), SessionBinding{Email: "a@x.com", TenantID: 1, Schema: "tenant_1"})
	b, ok := BindingFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "tenant_1", b.Schema)
}
