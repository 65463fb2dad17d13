package models

import (
	"time"
)

// Employee is a payroll employee row. It lives inside a tenant schema,
// so it carries no tenant column: isolation comes from the schema the
// query runs against.
type Employee struct {
	ID        int64     `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Position  string    `json:"position"`
	Salary    float64   `json:"salary"`
	HiredAt   time.Time `json:"hired_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
