// Package config handles application configuration loading and validation.
//
// Configuration is loaded from config.yml and validated using struct tags.
// A handful of environment variables (SA_CONFIG, SA_PORT, SA_GTFS_PATH)
// override file values for container deployments.
package config
