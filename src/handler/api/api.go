// Package api exposes a playback controller over HTTP.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"lolplayer/src/player"
)

// InitRouter attaches all API routes to the specified router.
func InitRouter(r chi.Router, ctrl *player.Controller) {
	api := API{ctrl: ctrl}
	r.Route("/player", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(jsonCtx)
			r.Get("/status", api.playerStatus)
			r.Get("/playlist", api.playerPlaylist)
			r.Post("/library", api.playerLoadLibrary)
			r.Post("/current", api.playerSetCurrent)
			r.Post("/next", api.playerNext)
			r.Post("/previous", api.playerPrevious)
			r.Post("/toggle", api.playerToggle)
			r.Post("/stop", api.playerStop)
		})
		r.Get("/events", api.playerEvents)
		r.Get("/ws", api.playerWebSocket)
	})
}

// API contains the state that is accessible over the REST API.
type API struct {
	ctrl *player.Controller
}

// WriteError writes an error to the client.
//
// An attempt is made to tune the response format to the requestor.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	log.Errorf("Error serving %s: %v", r.RemoteAddr, err)
	w.WriteHeader(http.StatusBadRequest)

	if r.Header.Get("X-Requested-With") == "" {
		w.Write([]byte(err.Error()))
		return
	}
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": err.Error(),
	})
}

func jsonCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// eventMessage maps a controller event to the name and body it is sent to
// clients with.
func eventMessage(event interface{}) (string, interface{}, bool) {
	switch t := event.(type) {
	case player.PlaylistEvent:
		return "playlist", t, true
	case player.TrackEvent:
		return "track", t, true
	case player.PlayStateEvent:
		return "playstate", t, true
	case player.ErrorEvent:
		return "error", t, true
	default:
		log.Debugf("Unmapped event %#v", event)
		return "", nil, false
	}
}
