package httputil

import (
	"io"
	"net/http"

	"github.com/andybalholm/brotli"
)

// DecompressPayload wraps the request body in the right reader when the
// client compressed it.
func DecompressPayload(next http.Handler) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()

		if r.Header.Get("Content-Encoding") == "br" {
			r.Body = io.NopCloser(brotli.NewReader(r.Body))
		}

		next.ServeHTTP(w, r)
	})
}
