// Package web assembles the HTTP service.
package web

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"lolplayer/src/handler/api"
	"lolplayer/src/player"
	"lolplayer/src/util"
)

// New creates the router serving the remote control API for the controller.
func New(build, version string, ctrl *player.Controller) chi.Router {
	service := chi.NewRouter()
	service.Use(util.LogHandler)
	service.Use(middleware.Recoverer)

	service.Get("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"build":   build,
			"version": version,
		})
	})
	api.InitRouter(service, ctrl)
	return service
}
