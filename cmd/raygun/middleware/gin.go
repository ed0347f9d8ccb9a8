package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Gin is Recoverer for gin engines. Mount it after gin.Recovery so the
// engine's own recovery still sees the re-raised panic.
func Gin(c Capturer) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec != http.ErrAbortHandler {
				capturePanic(c, ctx.Request, rec)
			}
			panic(rec)
		}()
		ctx.Next()
	}
}
