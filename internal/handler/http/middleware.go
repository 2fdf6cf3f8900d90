package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/shopifake/catalog/pkg/httputil"
)

// ContentTypeJSON rejects mutating requests whose Content-Type is not JSON.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 || r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			ct := r.Header.Get("Content-Type")
			if !strings.HasPrefix(ct, "application/json") {
				httputil.WriteJSON(w, http.StatusUnsupportedMediaType, httputil.ErrorResponse{
					Timestamp: time.Now().UTC(),
					Status:    http.StatusUnsupportedMediaType,
					Error:     http.StatusText(http.StatusUnsupportedMediaType),
					Message:   "Content-Type must be application/json",
					Path:      r.URL.Path,
				})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
