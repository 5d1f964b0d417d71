package config

// PageSizeLimit is the largest page any list query returns; the repositories
// clamp to it as well.
const PageSizeLimit = 200

const defaultMaxPageSize = 100

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	// Addr is the address to bind the HTTP server to.
	Addr string `env:"HTTP_ADDR" envDefault:":8080"`

	// MaxPageSize caps the limit query parameter on list endpoints. Values above
	// PageSizeLimit are lowered to it.
	MaxPageSize int `env:"HTTP_MAX_PAGE_SIZE" envDefault:"100"`

	// CompressionLevel is the gzip compression level (1-9).
	CompressionLevel int `env:"HTTP_COMPRESSION_LEVEL" envDefault:"6"`

	// AllowedOrigins lists browser origins allowed to open the notification stream.
	// Empty restricts the stream to same-origin requests.
	AllowedOrigins []string `env:"HTTP_ALLOWED_ORIGINS" envSeparator:","`
}

// Sanitize applies guardrails to HTTP configuration values.
func (h *HTTPConfig) Sanitize() {
	if h.CompressionLevel < 1 {
		h.CompressionLevel = 1
	}
	if h.CompressionLevel > 9 {
		h.CompressionLevel = 9
	}
	if h.MaxPageSize <= 0 {
		h.MaxPageSize = defaultMaxPageSize
	}
	if h.MaxPageSize > PageSizeLimit {
		h.MaxPageSize = PageSizeLimit
	}
}
