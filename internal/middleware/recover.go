package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"gamesales-api/internal/logging"
	"gamesales-api/internal/render"
)

// RecoverMiddleware turns a handler panic into a JSON 500 with the same
// {"detail": ...} body as every other error. http.ErrAbortHandler is re-raised
// so the server can abort the connection.
func RecoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			logging.FromContext(r.Context()).Error("panic while handling request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("panic", fmt.Sprint(rec)),
				slog.String("stack", string(debug.Stack())),
			)
			render.WriteError(w, http.StatusInternalServerError, "internal server error")
		}()
		next.ServeHTTP(w, r)
	})
}
