package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"nominas/backend/pkg/models"
)

// EmployeeStore reads and writes employees inside a tenant schema. The
// schema comes from the request's session binding; the queries
// themselves use unqualified table names and rely on the scope bound by
// ScopedStore.
type EmployeeStore struct {
	scoped *ScopedStore
}

// NewEmployeeStore creates a new EmployeeStore.
func NewEmployeeStore(scoped *ScopedStore) *EmployeeStore {
	return &EmployeeStore{scoped: scoped}
}

// List returns all employees in the tenant schema ordered by name.
func (s *EmployeeStore) List(ctx context.Context, schema string) ([]*models.Employee, error) {
	var employees []*models.Employee
	err := s.scoped.WithSchema(ctx, schema, func(ctx context.Context, tx pgx.Tx) error {
		rows, err := tx.Query(ctx,
			"SELECT id, full_name, email, position, salary, hired_at, created_at, updated_at FROM employees ORDER BY full_name")
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var e models.Employee
			if err := rows.Scan(&e.ID, &e.FullName, &e.Email, &e.Position, &e.Salary,
				&e.HiredAt, &e.CreatedAt, &e.UpdatedAt); err != nil {
				return err
			}
			employees = append(employees, &e)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return employees, nil
}

// Create inserts an employee into the tenant schema and fills its ID
// and timestamps.
func (s *EmployeeStore) Create(ctx context.Context, schema string, e *models.Employee) error {
	return s.scoped.WithSchema(ctx, schema, func(ctx context.Context, tx pgx.Tx) error {
		return tx.QueryRow(ctx,
			`INSERT INTO employees (full_name, email, position, salary, hired_at)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING id, created_at, updated_at`,
			e.FullName, e.Email, e.Position, e.Salary, e.HiredAt).
			Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	})
}
