// Package config defines the application's configuration structure and
// loading logic. Configuration comes from defaults, an optional
// config.yaml, and VOCABLE_-prefixed environment variables, with later
// sources overriding earlier ones.
package config
