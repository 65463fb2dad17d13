// Package models defines the domain models for the payroll service.
package models

// Tenant type codes, mirroring the classification used by the tax
// authority. New tenants default to the individual classification.
const (
	TenantTypeIndividual = 1
	TenantTypeCompany    = 2
)

// Region is a top-level geographic division in the reference catalog.
type Region struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Location is a municipality belonging to a region.
type Location struct {
	ID       int64  `json:"id"`
	RegionID int64  `json:"region_id"`
	Name     string `json:"name"`
}

// TenantType is a tenant classification entry in the reference catalog.
type TenantType struct {
	Code int    `json:"code"`
	Name string `json:"name"`
}
