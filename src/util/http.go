package util

import (
	"bufio"
	"fmt"
	"net"
	"net/http"

	log "github.com/sirupsen/logrus"
)

// LogHandler provides middleware that logs all requests and response codes
// using logrus.
func LogHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rwi := &rwInterceptor{ResponseWriter: w}
		next.ServeHTTP(rwi, r)
		code := rwi.statusCode

		entry := log.WithField("remote", r.RemoteAddr)
		if rwi.hijacked {
			entry.Debugf("%s %s -> hijacked", r.Method, r.URL.Path)
		} else if code >= 500 {
			entry.Errorf("%s %s -> %d", r.Method, r.URL.Path, code)
		} else if code >= 400 {
			entry.Warnf("%s %s -> %d", r.Method, r.URL.Path, code)
		} else {
			entry.Debugf("%s %s -> %d", r.Method, r.URL.Path, code)
		}
	})
}

type rwInterceptor struct {
	http.ResponseWriter
	statusCode int
	hijacked   bool
}

func (rwi *rwInterceptor) WriteHeader(code int) {
	rwi.statusCode = code
	rwi.ResponseWriter.WriteHeader(code)
}

func (rwi *rwInterceptor) Write(b []byte) (int, error) {
	if rwi.statusCode == 0 {
		rwi.WriteHeader(http.StatusOK)
	}
	return rwi.ResponseWriter.Write(b)
}

// Hijack is required for the event source and websocket endpoints.
func (rwi *rwInterceptor) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := rwi.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer of type %T can not be hijacked", rwi.ResponseWriter)
	}
	rwi.hijacked = true
	return hj.Hijack()
}
