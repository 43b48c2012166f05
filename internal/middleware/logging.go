// internal/middleware/logging.go

package middleware

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// LogMiddleware logs each HTTP request with its method, path, remote
// address, and how long the handler took.
func LogMiddleware(logger *logrus.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			path := r.URL.Path
			method := r.Method

			next.ServeHTTP(w, r)

			logger.WithFields(logrus.Fields{
				"method":   method,
				"path":     path,
				"duration": time.Since(start),
				"remote":   r.RemoteAddr,
			}).Info("HTTP Request")
		})
	}
}

// LogWebSocketConnect records a successful WebSocket upgrade.
func LogWebSocketConnect(logger *logrus.Logger, remoteAddr, room, playerID string) {
	logger.WithFields(logrus.Fields{
		"remote": remoteAddr,
		"room":   room,
		"player": playerID,
	}).Info("WebSocket connected")
}

// LogWebSocketDisconnect records a WebSocket teardown, with the close
// error if the connection did not end cleanly.
func LogWebSocketDisconnect(logger *logrus.Logger, remoteAddr, room, playerID string, err error) {
	fields := logrus.Fields{
		"remote": remoteAddr,
		"room":   room,
		"player": playerID,
	}
	if err != nil {
		fields["error"] = err
	}
	logger.WithFields(fields).Info("WebSocket disconnected")
}
