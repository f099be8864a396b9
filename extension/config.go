package extension

// Config holds the fabric extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.fabric" or "fabric" keys).
type Config struct {
	// DisableRoutes prevents HTTP route registration.
	DisableRoutes bool `json:"disable_routes" mapstructure:"disable_routes" yaml:"disable_routes"`

	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// MaxTraversalDepth controls the maximum depth for graph reachability
	// queries.
	MaxTraversalDepth int `json:"max_traversal_depth" mapstructure:"max_traversal_depth" yaml:"max_traversal_depth"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxTraversalDepth: 10,
	}
}
