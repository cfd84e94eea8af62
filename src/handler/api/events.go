package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"lolplayer/src/util/eventsource"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsPongTimeout  = 60 * time.Second
	wsPingInterval = 54 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type wsMessage struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

func (api *API) playerEvents(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	listener := api.ctrl.Events().Listen(ctx)

	es, err := eventsource.Begin(w, r)
	if err != nil {
		log.Errorf("%v", err)
		return
	}
	defer es.Close()

	if err := es.EventJSON("status", api.ctrl.Status()); err != nil {
		return
	}
	for {
		select {
		case event, ok := <-listener:
			if !ok {
				return
			}
			name, body, ok := eventMessage(event)
			if !ok {
				continue
			}
			if err := es.EventJSON(name, body); err != nil {
				log.Debugf("Event stream closed: %v", err)
				return
			}
		case <-es.Done():
			log.Debug("Event stream client disconnected")
			return
		}
	}
}

func (api *API) playerWebSocket(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	listener := api.ctrl.Events().Listen(ctx)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Errorf("Could not upgrade websocket: %v", err)
		return
	}
	defer conn.Close()

	// Clients do not send anything, reading is only needed to process control
	// frames and to notice the connection going away.
	go func() {
		defer cancel()
		conn.SetReadLimit(512)
		conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Debugf("Websocket error: %v", err)
				}
				return
			}
		}
	}()

	write := func(msg wsMessage) error {
		conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		return conn.WriteJSON(msg)
	}
	if err := write(wsMessage{Event: "status", Data: api.ctrl.Status()}); err != nil {
		return
	}

	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()
	for {
		select {
		case event, ok := <-listener:
			if !ok {
				conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			name, body, ok := eventMessage(event)
			if !ok {
				continue
			}
			if err := write(wsMessage{Event: name, Data: body}); err != nil {
				log.Debugf("Websocket write error: %v", err)
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
