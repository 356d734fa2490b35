/*
Package handler implements the read-only status API: a small loopback HTTP
surface exposing the bridge's health, its directory mirror, and the set of
registered IRC sessions, plus the Prometheus metrics endpoint.
*/
package handler

import (
	"dircd/internal/bridge"
	"dircd/internal/configs"
	"dircd/internal/directory"
)

// AppDeps aggregates the shared dependencies injected into every handler.
type AppDeps struct {
	// Config is the loaded application configuration.
	Config *configs.AppConfig

	// Directory is the mirror of the remote platform.
	Directory *directory.Directory

	// Registry is the set of registered IRC sessions.
	Registry *bridge.Registry
}
