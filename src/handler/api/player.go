package api

import (
	"encoding/json"
	"errors"
	"net/http"
)

func (api *API) playerStatus(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(api.ctrl.Status())
}

func (api *API) playerPlaylist(w http.ResponseWriter, r *http.Request) {
	status := api.ctrl.Status()
	json.NewEncoder(w).Encode(map[string]interface{}{
		"directory": status.Directory,
		"index":     status.Index,
		"tracks":    api.ctrl.Playlist(),
	})
}

func (api *API) playerLoadLibrary(w http.ResponseWriter, r *http.Request) {
	var data struct {
		Directory string `json:"directory"`
	}
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		WriteError(w, r, err)
		return
	}
	if data.Directory == "" {
		WriteError(w, r, errors.New("no directory specified"))
		return
	}

	if err := api.ctrl.LoadLibrary(r.Context(), data.Directory); err != nil {
		WriteError(w, r, err)
		return
	}
	w.Write([]byte("{}"))
}

func (api *API) playerSetCurrent(w http.ResponseWriter, r *http.Request) {
	var data struct {
		Index *int `json:"index"`
	}
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		WriteError(w, r, err)
		return
	}
	if data.Index == nil {
		WriteError(w, r, errors.New("no index specified"))
		return
	}

	if err := api.ctrl.PlayIndex(*data.Index); err != nil {
		WriteError(w, r, err)
		return
	}
	w.Write([]byte("{}"))
}

func (api *API) playerNext(w http.ResponseWriter, r *http.Request) {
	api.respond(w, r, api.ctrl.Next())
}

func (api *API) playerPrevious(w http.ResponseWriter, r *http.Request) {
	api.respond(w, r, api.ctrl.Previous())
}

func (api *API) playerToggle(w http.ResponseWriter, r *http.Request) {
	api.respond(w, r, api.ctrl.TogglePause())
}

func (api *API) playerStop(w http.ResponseWriter, r *http.Request) {
	api.respond(w, r, api.ctrl.Stop())
}

func (api *API) respond(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		WriteError(w, r, err)
		return
	}
	w.Write([]byte("{}"))
}
