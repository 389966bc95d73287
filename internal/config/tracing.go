package config

// TracingConfig holds OTLP trace export configuration.
//
// Traces are exported to a local collector (e.g. a Datadog Agent or an
// OpenTelemetry Collector) over OTLP HTTP. The collector handles
// authentication, buffering, and forwarding to the backend.
type TracingConfig struct {
	// Endpoint is the OTLP HTTP endpoint (default: localhost:4318)
	Endpoint string `mapstructure:"endpoint"`
	// Environment is the deployment environment tag (default: dev)
	Environment string `mapstructure:"environment"`
	// ServiceName is the service name reported with spans (default: sqlmind)
	ServiceName string `mapstructure:"service_name"`
}
