// config/security_config.go
package config

type SecurityLevel int

const (
	SecurityPublic SecurityLevel = iota // No authentication
	SecurityAccess                      // Agent access token required
)

// EndpointSecurityConfig maps "METHOD route-template" to its required security level
var EndpointSecurityConfig = map[string]SecurityLevel{
	// Public
	"GET /healthz":            SecurityPublic,
	"POST /api/v1/auth/login": SecurityPublic,

	// Files - Access Protected
	"PUT /api/v1/files": SecurityAccess,
	"GET /api/v1/files": SecurityAccess,

	// SRM booking flow - Access Protected
	"POST /api/v1/srm/flows":                   SecurityAccess,
	"GET /api/v1/srm/flows/{flowID}":           SecurityAccess,
	"DELETE /api/v1/srm/flows/{flowID}":        SecurityAccess,
	"POST /api/v1/srm/flows/{flowID}/customer": SecurityAccess,
	"POST /api/v1/srm/flows/{flowID}/vehicle":  SecurityAccess,
	"POST /api/v1/srm/flows/{flowID}/quote":    SecurityAccess,
	"POST /api/v1/srm/flows/{flowID}/payment":  SecurityAccess,
	"GET /api/v1/srm/customers":                SecurityAccess,
	"GET /api/v1/srm/vehicles":                 SecurityAccess,
}

// GetSecurityLevel returns the security level for a given route
func GetSecurityLevel(method, routeTemplate string) SecurityLevel {
	if level, exists := EndpointSecurityConfig[method+" "+routeTemplate]; exists {
		return level
	}
	// Default to highest security for unknown endpoints
	return SecurityAccess
}
