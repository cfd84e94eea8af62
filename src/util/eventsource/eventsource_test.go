package eventsource

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventStream(t *testing.T) {
	returned := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer close(returned)
		es, err := Begin(w, r)
		if err != nil {
			t.Error(err)
			return
		}
		defer es.Close()
		es.EventJSON("greeting", map[string]string{"hello": "world"})
		<-es.Done()
	}))
	defer srv.Close()

	conn, err := net.Dial("tcp", strings.TrimPrefix(srv.URL, "http://"))
	require.NoError(t, err)
	fmt.Fprintf(conn, "GET / HTTP/1.1\r\nHost: test\r\n\r\n")
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var lines []string
	rd := bufio.NewReader(conn)
	for len(lines) < 3 || lines[len(lines)-1] != "" || !strings.HasPrefix(lines[len(lines)-2], "data:") {
		line, err := rd.ReadString('\n')
		require.NoError(t, err)
		lines = append(lines, strings.TrimRight(line, "\r\n"))
	}
	assert.Equal(t, "HTTP/1.1 200 OK", lines[0])
	assert.Contains(t, lines, "Content-Type: text/event-stream")
	assert.Contains(t, lines, "id: 1")
	assert.Contains(t, lines, "event: greeting")
	assert.Contains(t, lines, `data: {"hello":"world"}`)

	require.NoError(t, conn.Close())
	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("Handler did not notice the client disconnecting")
	}
}
