/*
This file contains the handlers behind the status API endpoints. All payloads
go through the resp package's unified JSON envelope.
*/
package handler

import (
	"net/http"

	"dircd/internal/pkg/resp"
)

// healthPayload is the response body of the /health endpoint.
type healthPayload struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
	Servers  int    `json:"servers"`
}

// HealthHandler reports liveness along with coarse size indicators.
func (deps *AppDeps) HealthHandler(w http.ResponseWriter, r *http.Request) {
	resp.RespondSuccess(w, r, healthPayload{
		Status:   "ok",
		Sessions: deps.Registry.Len(),
		Servers:  len(deps.Directory.Snapshot()),
	})
}

// DirectoryHandler returns the full directory mirror: servers, channels, and
// channel members as currently known.
func (deps *AppDeps) DirectoryHandler(w http.ResponseWriter, r *http.Request) {
	resp.RespondSuccess(w, r, deps.Directory.Snapshot())
}

// SessionsHandler returns the registered IRC sessions. Session IDs are opaque
// and carry no credentials, so exposing them on the loopback API is fine.
func (deps *AppDeps) SessionsHandler(w http.ResponseWriter, r *http.Request) {
	resp.RespondSuccess(w, r, deps.Registry.Infos())
}
