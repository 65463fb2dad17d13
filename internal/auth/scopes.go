package auth

const (
	ScopeOpenID       = "openid"
	ScopeProfile      = "profile"
	ScopeEmail        = "email"
	ScopePayrollRead  = "nominas:read"
	ScopePayrollWrite = "nominas:write"
)

// AllScopes defines the full set of scopes requested by the frontend.
var AllScopes = []string{
	ScopeOpenID,
	ScopeProfile,
	ScopeEmail,
	ScopePayrollRead,
	ScopePayrollWrite,
}
