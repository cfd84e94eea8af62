package eventsource

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// An EventSource writes server-sent events to a hijacked HTTP connection.
type EventSource struct {
	conn net.Conn
	done chan struct{}
	lock sync.Mutex
	id   int
}

// Begin writes the event stream response headers and takes over the
// connection. The connection is closed when the request context is done or
// when the client disconnects, see Done.
func Begin(w http.ResponseWriter, r *http.Request) (*EventSource, error) {
	hj, ok := w.(http.Hijacker)
	if !ok {
		return nil, fmt.Errorf("could not start event source: connection can not be hijacked")
	}
	conn, buf, err := hj.Hijack()
	if err != nil {
		return nil, fmt.Errorf("could not start event source: %v", err)
	}

	// Timeouts of the server do not apply to long lived streams.
	conn.SetDeadline(time.Time{})

	fmt.Fprint(buf, "HTTP/1.1 200 OK\r\n")
	fmt.Fprint(buf, "Content-Type: text/event-stream\r\n")
	fmt.Fprint(buf, "Cache-Control: no-cache\r\n")
	fmt.Fprint(buf, "X-Accel-Buffering: no\r\n")
	fmt.Fprint(buf, "Connection: keep-alive\r\n\r\n")
	if err := buf.Flush(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("could not start event source: %v", err)
	}

	es := &EventSource{conn: conn, done: make(chan struct{})}
	go func() {
		// Clients do not send anything after the request, so reading only
		// returns once either side has closed the connection.
		io.Copy(io.Discard, buf.Reader)
		close(es.done)
	}()
	go func() {
		select {
		case <-r.Context().Done():
		case <-es.done:
		}
		conn.Close()
	}()
	return es, nil
}

// Done returns a channel that is closed once the connection is gone.
func (es *EventSource) Done() <-chan struct{} {
	return es.done
}

// Event writes a single event. An error is returned once the client has gone.
func (es *EventSource) Event(event, body string) error {
	es.lock.Lock()
	defer es.lock.Unlock()
	es.id++
	_, err := fmt.Fprintf(es.conn, "id: %d\nevent: %s\ndata: %s\n\n", es.id, event, body)
	return err
}

// EventJSON writes an event carrying body encoded as JSON.
func (es *EventSource) EventJSON(event string, body interface{}) error {
	b, err := json.Marshal(body)
	if err != nil {
		log.Errorf("Could not marshal event %q: %v", event, err)
		return nil
	}
	return es.Event(event, string(b))
}

// Close closes the underlying connection.
func (es *EventSource) Close() error {
	return es.conn.Close()
}
