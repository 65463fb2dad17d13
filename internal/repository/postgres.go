package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"nominas/backend/pkg/models"
)

// uniqueViolation is the postgres error code for unique constraint
// violations.
const uniqueViolation = "23505"

// provisionLockClass namespaces the advisory lock used to serialize
// schema creation per tenant.
const provisionLockClass = 4201

// TenantSchemaName derives the schema name for a tenant. The name is a
// function of the integer id only, which keeps it inside a safe
// identifier charset.
func TenantSchemaName(tenantID int64) string {
	return fmt.Sprintf("tenant_%d", tenantID)
}

// PostgresRepository is a PostgreSQL implementation of the Repository
// interface. The tenant directory and reference catalog tables live in
// the shared schema; tenant tables live in per-tenant schemas.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgresRepository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// FindTenantByEmail returns the tenant keyed by email, or ErrNotFound.
func (r *PostgresRepository) FindTenantByEmail(ctx context.Context, email string) (*models.Tenant, error) {
	var t models.Tenant
	err := r.db.QueryRow(ctx,
		`SELECT id, email, name, contact_name, phone, address, region_id, location_id, tax_id, type_code, created_at, updated_at
		 FROM tenants WHERE email = $1`, email).
		Scan(&t.ID, &t.Email, &t.Name, &t.ContactName, &t.Phone, &t.Address,
			&t.RegionID, &t.LocationID, &t.TaxID, &t.TypeCode, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find tenant by email: %w", err)
	}
	return &t, nil
}

// CreateTenant inserts a tenant inside a transaction and fills ID and
// timestamps from the database. A unique violation on email or tax id
// surfaces as ErrDuplicateTenant.
func (r *PostgresRepository) CreateTenant(ctx context.Context, tenant *models.Tenant) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("create tenant: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO tenants (email, name, contact_name, phone, address, region_id, location_id, tax_id, type_code)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, created_at, updated_at`,
		tenant.Email, tenant.Name, tenant.ContactName, tenant.Phone, tenant.Address,
		tenant.RegionID, tenant.LocationID, tenant.TaxID, tenant.TypeCode).
		Scan(&tenant.ID, &tenant.CreatedAt, &tenant.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: %s", ErrDuplicateTenant, pgErr.ConstraintName)
		}
		return fmt.Errorf("create tenant: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("create tenant: commit: %w", err)
	}
	return nil
}

// FirstRegion returns the first region in catalog order.
func (r *PostgresRepository) FirstRegion(ctx context.Context) (*models.Region, error) {
	var region models.Region
	err := r.db.QueryRow(ctx, "SELECT id, name FROM regions ORDER BY id LIMIT 1").
		Scan(&region.ID, &region.Name)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("first region: %w", err)
	}
	return &region, nil
}

// FirstLocationInRegion returns the first location of a region in
// catalog order.
func (r *PostgresRepository) FirstLocationInRegion(ctx context.Context, regionID int64) (*models.Location, error) {
	var loc models.Location
	err := r.db.QueryRow(ctx,
		"SELECT id, region_id, name FROM locations WHERE region_id = $1 ORDER BY id LIMIT 1", regionID).
		Scan(&loc.ID, &loc.RegionID, &loc.Name)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("first location in region %d: %w", regionID, err)
	}
	return &loc, nil
}

// SchemaExists reports whether the named schema is present.
func (r *PostgresRepository) SchemaExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM information_schema.schemata WHERE schema_name = $1)", name).
		Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("schema exists: %w", err)
	}
	return exists, nil
}

// CreateTenantSchema creates the tenant schema and its fixed table set
// in one transaction. An advisory transaction lock keyed by tenant id
// serializes concurrent first-requests for the same tenant, and the
// IF NOT EXISTS forms make re-invocation a no-op.
func (r *PostgresRepository) CreateTenantSchema(ctx context.Context, tenantID int64) error {
	schema := TenantSchemaName(tenantID)
	if err := validateTenantSchemaName(schema); err != nil {
		return err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("create tenant schema: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1, $2)", provisionLockClass, int32(tenantID)); err != nil {
		return fmt.Errorf("create tenant schema: lock: %w", err)
	}

	stmts := []string{
		fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schema),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.employees (
			id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			full_name TEXT NOT NULL,
			email TEXT NOT NULL DEFAULT '',
			position TEXT NOT NULL DEFAULT '',
			salary NUMERIC(12,2) NOT NULL DEFAULT 0,
			hired_at DATE NOT NULL DEFAULT CURRENT_DATE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, schema),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.payrolls (
			id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			period_start DATE NOT NULL,
			period_end DATE NOT NULL,
			status TEXT NOT NULL DEFAULT 'draft',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, schema),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.payroll_items (
			id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			payroll_id BIGINT NOT NULL REFERENCES %s.payrolls(id),
			employee_id BIGINT NOT NULL REFERENCES %s.employees(id),
			concept TEXT NOT NULL,
			amount NUMERIC(12,2) NOT NULL
		)`, schema, schema, schema),
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("create tenant schema %s: %w", schema, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("create tenant schema %s: commit: %w", schema, err)
	}
	return nil
}

// EnsureSharedTables creates the tenant directory and reference catalog
// tables in the shared schema. Used by the seed command and tests.
func (r *PostgresRepository) EnsureSharedTables(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS regions (
			id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			name TEXT NOT NULL UNIQUE
		)`,
		`CREATE TABLE IF NOT EXISTS locations (
			id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			region_id BIGINT NOT NULL REFERENCES regions(id),
			name TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS tenant_types (
			code INT PRIMARY KEY,
			name TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS tenants (
			id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			contact_name TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			address TEXT NOT NULL DEFAULT '',
			region_id BIGINT NOT NULL REFERENCES regions(id),
			location_id BIGINT NOT NULL REFERENCES locations(id),
			tax_id TEXT NOT NULL UNIQUE,
			type_code INT NOT NULL REFERENCES tenant_types(code),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure shared tables: %w", err)
		}
	}
	return nil
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
