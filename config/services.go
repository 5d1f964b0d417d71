package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ServiceMode represents the available service modes.
type ServiceMode string

const (
	// ServiceModeHTTP runs the HTTP API server.
	ServiceModeHTTP ServiceMode = "http"
	// ServiceModeNotificationRelay relays notifications published by other
	// replicas from Redis to the local websocket subscribers.
	ServiceModeNotificationRelay ServiceMode = "notification-relay"
)

// ValidServiceModes returns all valid service mode names.
func ValidServiceModes() []ServiceMode {
	return []ServiceMode{
		ServiceModeHTTP,
		ServiceModeNotificationRelay,
	}
}

// ParseServices parses a comma-delimited string of service names and returns the enabled services.
// It validates that all service names are valid and returns an error if any are invalid.
func ParseServices(servicesStr string) (map[ServiceMode]bool, error) {
	services := make(map[ServiceMode]bool)

	if servicesStr == "" {
		return services, errors.New("at least one service must be specified")
	}

	for _, part := range strings.Split(servicesStr, ",") {
		serviceName := strings.TrimSpace(part)
		if serviceName == "" {
			continue
		}

		mode := ServiceMode(serviceName)
		switch mode {
		case ServiceModeHTTP, ServiceModeNotificationRelay:
			services[mode] = true
		default:
			return nil, fmt.Errorf(
				"invalid service name: %q (valid options: http, notification-relay)",
				serviceName,
			)
		}
	}

	if len(services) == 0 {
		return nil, errors.New("at least one valid service must be specified")
	}

	return services, nil
}

// IdentityConfig tunes actor resolution.
type IdentityConfig struct {
	// CacheTTL is how long a resolved actor stays in the Redis actor cache.
	CacheTTL time.Duration `env:"IDENTITY_CACHE_TTL" envDefault:"60s"`
	// DependencyTimeout bounds each call to the verifier, cache and account store.
	DependencyTimeout time.Duration `env:"DEPENDENCY_TIMEOUT" envDefault:"3s"`
}

// Sanitize applies guardrails to identity settings.
func (c *IdentityConfig) Sanitize() {
	if c.CacheTTL < 0 {
		c.CacheTTL = 0
	}
	if c.DependencyTimeout <= 0 {
		c.DependencyTimeout = 3 * time.Second
	}
}

// EligibilityConfig locates applicant facts inside profile documents.
// Values are JMESPath expressions; blank values use the built-in defaults.
type EligibilityConfig struct {
	BranchPath   string `env:"BRANCH_PATH"`
	CGPAPath     string `env:"CGPA_PATH"`
	GradYearPath string `env:"GRAD_YEAR_PATH"`
}

const (
	defaultBulkConcurrency = 8
	defaultBulkMaxIDs      = 500
)

// ApplicationsConfig tunes bulk status changes.
type ApplicationsConfig struct {
	BulkConcurrency int `env:"BULK_CONCURRENCY" envDefault:"8"`
	BulkMaxIDs      int `env:"BULK_MAX_IDS"     envDefault:"500"`
}

// Sanitize applies guardrails to bulk settings.
func (c *ApplicationsConfig) Sanitize() {
	if c.BulkConcurrency <= 0 {
		c.BulkConcurrency = defaultBulkConcurrency
	}
	if c.BulkMaxIDs <= 0 {
		c.BulkMaxIDs = defaultBulkMaxIDs
	}
}
