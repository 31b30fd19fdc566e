// Package config provides centralized configuration management.
//
// Configuration is layered: an optional YAML file (traffic-config.yaml) is
// read first, then environment variables with the TRAFFIC prefix override it.
// The Paths type derives every file-system location from a single base
// directory so the data pipeline, model store and exporters never compute
// paths on their own.
package config
