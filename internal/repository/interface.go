package repository

import (
	"context"
	"errors"

	"nominas/backend/pkg/models"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("repository: not found")

// ErrDuplicateTenant is returned when a tenant insert collides with an
// existing email or tax id. Callers use it to detect a lost
// first-access race and re-read the winner's row.
var ErrDuplicateTenant = errors.New("repository: tenant already exists")

// Repository is the database contract for the tenant directory and
// schema provisioning.
type Repository interface {
	// FindTenantByEmail returns the tenant keyed by email, or
	// ErrNotFound.
	FindTenantByEmail(ctx context.Context, email string) (*models.Tenant, error)
	// CreateTenant inserts a tenant atomically, filling ID and
	// timestamps on success. Returns ErrDuplicateTenant if the email
	// or tax id is already taken.
	CreateTenant(ctx context.Context, tenant *models.Tenant) error
	// FirstRegion returns the first region in catalog order, or
	// ErrNotFound when the catalog is empty.
	FirstRegion(ctx context.Context) (*models.Region, error)
	// FirstLocationInRegion returns the first location of a region in
	// catalog order, or ErrNotFound.
	FirstLocationInRegion(ctx context.Context, regionID int64) (*models.Location, error)
	// SchemaExists reports whether the named schema is present in the
	// database catalog.
	SchemaExists(ctx context.Context, name string) (bool, error)
	// CreateTenantSchema creates the tenant's schema and its fixed
	// table set. Idempotent and safe under concurrent invocation for
	// the same tenant.
	CreateTenantSchema(ctx context.Context, tenantID int64) error
}
