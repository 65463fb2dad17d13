package repository

import (
	"context"
	"fmt"
	"regexp"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// tenantSchemaPattern is the only shape a tenant schema name may take.
// Names are always regenerated from the integer tenant id, never taken
// from request input, and this check backstops that rule before any
// name is interpolated into SQL.
var tenantSchemaPattern = regexp.MustCompile(`^tenant_[0-9]+$`)

// sharedSchemaPattern constrains the configured shared schema to a
// plain lowercase identifier.
var sharedSchemaPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

func validateTenantSchemaName(name string) error {
	if !tenantSchemaPattern.MatchString(name) {
		return fmt.Errorf("invalid tenant schema name %q", name)
	}
	return nil
}

// ScopedStore runs tenant-scoped queries. Every call checks out one
// pooled connection, opens a transaction and binds the search path with
// SET LOCAL, so the binding ends with the transaction and a connection
// can never return to the pool carrying another tenant's scope.
type ScopedStore struct {
	db     *pgxpool.Pool
	shared string
}

// NewScopedStore creates a ScopedStore. shared is the schema searched
// after the tenant schema (the reference catalog's home). It is
// validated eagerly so a bad configuration fails at startup, not on the
// first request.
func NewScopedStore(db *pgxpool.Pool, shared string) (*ScopedStore, error) {
	if !sharedSchemaPattern.MatchString(shared) {
		return nil, fmt.Errorf("invalid shared schema name %q", shared)
	}
	return &ScopedStore{db: db, shared: shared}, nil
}

// WithSchema binds the search path to [schema, shared] and runs fn
// inside the same transaction. fn's queries may use unqualified table
// names; tenant tables shadow shared ones. The transaction commits when
// fn returns nil and rolls back otherwise.
func (s *ScopedStore) WithSchema(ctx context.Context, schema string, fn func(ctx context.Context, tx pgx.Tx) error) error {
	if err := validateTenantSchemaName(schema); err != nil {
		return err
	}

	conn, err := s.db.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("scoped query: acquire: %w", err)
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("scoped query: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	// SET LOCAL takes no bind parameters; both identifiers are
	// validated above.
	bind := fmt.Sprintf("SET LOCAL search_path TO %s, %s",
		pgx.Identifier{schema}.Sanitize(), pgx.Identifier{s.shared}.Sanitize())
	if _, err := tx.Exec(ctx, bind); err != nil {
		return fmt.Errorf("scoped query: bind search_path: %w", err)
	}

	if err := fn(ctx, tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
