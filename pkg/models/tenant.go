package models

import (
	"time"
)

// Tenant is the directory record for one customer company. Each tenant
// owns a dedicated schema named from its ID; the record itself lives in
// the shared schema alongside the reference catalog.
type Tenant struct {
	ID          int64     `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	ContactName string    `json:"contact_name"`
	Phone       string    `json:"phone"`
	Address     string    `json:"address"`
	RegionID    int64     `json:"region_id"`
	LocationID  int64     `json:"location_id"`
	TaxID       string    `json:"tax_id"`
	TypeCode    int       `json:"type_code"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
