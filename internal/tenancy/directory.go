package tenancy

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"nominas/backend/internal/identity"
	"nominas/backend/internal/repository"
	"nominas/backend/pkg/models"
)

// Logger defines the logging interface compatible with the application
// logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

// Defaults are the fallback reference ids used when the catalog cannot
// supply a value at tenant-creation time. They are injected from
// configuration so tests and deployments can override them.
type Defaults struct {
	RegionID   int64
	LocationID int64
	TypeCode   int
}

// Directory maps identity emails to tenant records, creating a record
// on first access.
type Directory struct {
	repo     repository.Repository
	logger   Logger
	defaults Defaults
	timeout  time.Duration
	created  metric.Int64Counter
}

// NewDirectory creates a Directory. timeout bounds each create attempt.
func NewDirectory(repo repository.Repository, logger Logger, defaults Defaults, timeout time.Duration) *Directory {
	meter := otel.Meter("nominas/backend/tenancy")
	created, _ := meter.Int64Counter("tenants.created",
		metric.WithDescription("Tenant records created on first access"))
	return &Directory{
		repo:     repo,
		logger:   logger,
		defaults: defaults,
		timeout:  timeout,
		created:  created,
	}
}

// ResolveOrCreate returns the tenant record keyed by the identity's
// email, creating it if absent. Creation picks the first region and
// location from the reference catalog (configured defaults when the
// catalog is empty), the default type code, and a generated provisional
// tax id. A lost race against a concurrent first request resolves by
// re-reading the winner's row, so both callers observe one record.
func (d *Directory) ResolveOrCreate(ctx context.Context, id identity.Identity) (*models.Tenant, error) {
	tenant, err := d.repo.FindTenantByEmail(ctx, id.Email)
	if err == nil {
		return tenant, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("tenant lookup for %s: %w", id.Email, err)
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	regionID := d.defaults.RegionID
	if region, err := d.repo.FirstRegion(ctx); err == nil {
		regionID = region.ID
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("region lookup: %w", err)
	}

	locationID := d.defaults.LocationID
	if loc, err := d.repo.FirstLocationInRegion(ctx, regionID); err == nil {
		locationID = loc.ID
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("location lookup: %w", err)
	}

	tenant = &models.Tenant{
		Email:       id.Email,
		Name:        id.Name,
		ContactName: id.Name,
		Phone:       id.Phone,
		RegionID:    regionID,
		LocationID:  locationID,
		TaxID:       provisionalTaxID(),
		TypeCode:    d.defaults.TypeCode,
	}

	err = d.repo.CreateTenant(ctx, tenant)
	if err == nil {
		d.created.Add(ctx, 1)
		d.logger.Info("tenant created", "email", tenant.Email, "id", tenant.ID)
		return tenant, nil
	}
	if errors.Is(err, repository.ErrDuplicateTenant) {
		// Concurrent first request won the insert; use its row.
		d.logger.Debug("tenant create lost race, re-reading", "email", id.Email)
		tenant, err = d.repo.FindTenantByEmail(ctx, id.Email)
		if err != nil {
			return nil, fmt.Errorf("tenant re-read after duplicate for %s: %w", id.Email, err)
		}
		return tenant, nil
	}
	return nil, fmt.Errorf("tenant create for %s: %w", id.Email, err)
}

// provisionalTaxID generates a unique placeholder tax id. Real tax ids
// are captured later through the dashboard; the placeholder keeps the
// column's uniqueness constraint satisfied and is visibly provisional.
func provisionalTaxID() string {
	return "PEND-" + strings.ToUpper(uuid.NewString())
}
