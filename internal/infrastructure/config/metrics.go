package config

// MetricsConfig holds metrics collection and export configuration
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active
	Enabled bool `mapstructure:"enabled"`

	// OutputPath receives the Prometheus text exposition when a command exits
	OutputPath string `mapstructure:"output_path" validate:"required_if=Enabled true"`
}
