package httpx

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

func RecoveryMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := wrapResponseWriter(w)
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic recovered",
						zap.String("request_id", RequestIDFrom(r)),
						zap.String("error", fmt.Sprint(err)),
						zap.Stack("stack"),
					)
					if !rw.wroteHeader() {
						ServerError(rw)
					}
				}
			}()
			next.ServeHTTP(rw, r)
		})
	}
}
