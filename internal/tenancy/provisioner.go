package tenancy

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"nominas/backend/internal/repository"
)

// Provisioner lazily creates per-tenant schemas. Creation is idempotent
// and advisory-locked in the repository, so Ensure is safe to call on
// every request and under concurrency for the same tenant.
type Provisioner struct {
	repo        repository.Repository
	logger      Logger
	timeout     time.Duration
	provisioned metric.Int64Counter
}

// NewProvisioner creates a Provisioner. timeout bounds each schema
// creation attempt.
func NewProvisioner(repo repository.Repository, logger Logger, timeout time.Duration) *Provisioner {
	meter := otel.Meter("nominas/backend/tenancy")
	provisioned, _ := meter.Int64Counter("schemas.provisioned",
		metric.WithDescription("Tenant schemas created"))
	return &Provisioner{
		repo:        repo,
		logger:      logger,
		timeout:     timeout,
		provisioned: provisioned,
	}
}

// Ensure guarantees the tenant's schema exists and returns its name.
// The name is derived from the tenant id alone. When the schema is
// missing (first access, or a prior request failed between tenant
// creation and schema creation) it is created now; on timeout the
// request fails and the next request retries.
func (p *Provisioner) Ensure(ctx context.Context, tenantID int64) (string, error) {
	schema := repository.TenantSchemaName(tenantID)

	exists, err := p.repo.SchemaExists(ctx, schema)
	if err != nil {
		return "", fmt.Errorf("schema check for tenant %d: %w", tenantID, err)
	}
	if exists {
		return schema, nil
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.repo.CreateTenantSchema(ctx, tenantID); err != nil {
		return "", fmt.Errorf("schema create for tenant %d: %w", tenantID, err)
	}
	p.provisioned.Add(ctx, 1)
	p.logger.Info("tenant schema created", "tenant_id", tenantID, "schema", schema)
	return schema, nil
}
