package middleware

import (
	"mime"
	"net/http"
	"strings"
)

// RequireContentType rejects requests whose Content-Type media type is not
// one of the accepted types with 415. Parameters such as charset are ignored.
func RequireContentType(accepted ...string) func(next http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(accepted))
	for _, t := range accepted {
		allowed[strings.ToLower(t)] = struct{}{}
	}
	message := "Content-Type must be " + strings.Join(accepted, " or ")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
			if err != nil {
				writeError(w, http.StatusUnsupportedMediaType, message)
				return
			}
			if _, ok := allowed[mediaType]; !ok {
				writeError(w, http.StatusUnsupportedMediaType, message)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
