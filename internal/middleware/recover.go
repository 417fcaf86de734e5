package middleware

import (
	"log"
	"net/http"
	"runtime/debug"
)

// Recover converts panics into a generic JSON 500 and logs the stack.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			log.Printf("panic serving %s %s [%s]: %v\n%s",
				r.Method, r.URL.Path, r.Header.Get(RequestIDHeader), rec, debug.Stack())
			WriteError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", r)
		}()
		next.ServeHTTP(w, r)
	})
}
