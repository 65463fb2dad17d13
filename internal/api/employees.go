// Package api contains the HTTP handlers for the payroll service.
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"nominas/backend/internal/repository"
	"nominas/backend/internal/tenancy"
	"nominas/backend/pkg/models"
)

// Server holds the dependencies for the API server. Every handler runs
// behind the auth middleware and reads its tenant scope from the
// session binding; a request that somehow arrives without one is
// rejected, never served from a shared scope.
type Server struct {
	Employees *repository.EmployeeStore
}

// NewServer creates a new Server.
func NewServer(employees *repository.EmployeeStore) *Server {
	return &Server{Employees: employees}
}

// RegisterHandlers mounts the tenant-scoped routes on a group.
func (s *Server) RegisterHandlers(g *echo.Group) {
	g.GET("/employees", s.ListEmployees)
	g.POST("/employees", s.CreateEmployee)
}

// ListEmployees returns the employees of the caller's tenant.
// (GET /api/v1/employees)
func (s *Server) ListEmployees(c echo.Context) error {
	ctx := c.Request().Context()

	binding, ok := tenancy.BindingFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "no tenant bound to session")
	}

	employees, err := s.Employees.List(ctx, binding.Schema)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list employees")
	}
	if employees == nil {
		employees = []*models.Employee{}
	}
	return c.JSON(http.StatusOK, employees)
}

// CreateEmployee adds an employee to the caller's tenant.
// (POST /api/v1/employees)
func (s *Server) CreateEmployee(c echo.Context) error {
	ctx := c.Request().Context()

	binding, ok := tenancy.BindingFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "no tenant bound to session")
	}

	var employee models.Employee
	if err := c.Bind(&employee); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body: "+err.Error())
	}
	if employee.FullName == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "full_name is required")
	}

	if err := s.Employees.Create(ctx, binding.Schema, &employee); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to save employee")
	}
	return c.JSON(http.StatusCreated, employee)
}
