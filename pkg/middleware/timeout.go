package middleware

import (
	"bytes"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/employee-portal/portal/backend/go-services/pkg/metrics"
)

// Timeout aborts requests that take longer than d with 408 and
// Connection: close. All API routes run under it. The handler chain keeps
// running in its own goroutine; after the deadline the parent only touches
// the underlying writer, never the gin.Context, and the buffered writer
// discards everything the orphaned chain still produces.
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}

		w := &timeoutWriter{ResponseWriter: c.Writer}
		c.Writer = w

		done := make(chan struct{})
		go func() {
			defer func() {
				// a panicking handler must not kill the server; gin's
				// Recovery sits outside this goroutine
				if r := recover(); r != nil {
					w.mu.Lock()
					if !w.timedOut {
						w.status = http.StatusInternalServerError
						w.body.Reset()
					}
					w.mu.Unlock()
				}
				close(done)
			}()
			c.Next()
		}()

		select {
		case <-done:
			w.flush()
		case <-time.After(d):
			w.mu.Lock()
			w.timedOut = true
			w.mu.Unlock()
			metrics.RequestTimeouts.Inc()

			dst := w.ResponseWriter
			dst.Header().Set("Connection", "close")
			dst.Header().Set("Content-Type", "application/json")
			dst.WriteHeader(http.StatusRequestTimeout)
			fmt.Fprintf(dst, `{"error":"Request timeout after %dms"}`, d.Milliseconds())
		}
	}
}

// timeoutWriter buffers the handler's response so nothing reaches the wire
// until the handler beat the deadline.
type timeoutWriter struct {
	gin.ResponseWriter

	mu       sync.Mutex
	body     bytes.Buffer
	status   int
	timedOut bool
}

func (w *timeoutWriter) WriteHeader(code int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timedOut {
		return
	}
	w.status = code
}

func (w *timeoutWriter) Write(b []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timedOut {
		return len(b), nil
	}
	return w.body.Write(b)
}

func (w *timeoutWriter) WriteString(s string) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timedOut {
		return len(s), nil
	}
	return w.body.WriteString(s)
}

func (w *timeoutWriter) Status() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.status != 0 {
		return w.status
	}
	return w.ResponseWriter.Status()
}

func (w *timeoutWriter) Written() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status != 0 || w.body.Len() > 0
}

func (w *timeoutWriter) flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timedOut {
		return
	}
	if w.status != 0 {
		w.ResponseWriter.WriteHeader(w.status)
	}
	if w.body.Len() > 0 {
		_, _ = w.ResponseWriter.Write(w.body.Bytes())
	}
}
