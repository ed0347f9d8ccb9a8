package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestGinRepanics(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c := &recordingCapturer{}
	var recovered any

	engine := gin.New()
	engine.Use(func(ctx *gin.Context) {
		defer func() {
			recovered = recover()
			ctx.AbortWithStatus(http.StatusInternalServerError)
		}()
		ctx.Next()
	})
	engine.Use(Gin(c))
	engine.GET("/orders/:id", func(ctx *gin.Context) {
		panic(&orderError{id: ctx.Param("id")})
	})

	rr := httptest.NewRecorder()
	engine.ServeHTTP(rr, httptest.NewRequest("GET", "/orders/42", nil))

	if _, ok := recovered.(*orderError); !ok {
		t.Fatalf("recovered %v, want *orderError", recovered)
	}
	if len(c.calls) != 1 {
		t.Fatalf("captures = %d, want 1", len(c.calls))
	}
	if c.calls[0].req.URL != "http://example.com/orders/42" {
		t.Errorf("URL = %q", c.calls[0].req.URL)
	}
	if c.calls[0].err.Error() != "order 42 is nil" {
		t.Errorf("err = %v", c.calls[0].err)
	}
}

func TestGinPassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c := &recordingCapturer{}
	engine := gin.New()
	engine.Use(Gin(c))
	engine.GET("/health", func(ctx *gin.Context) {
		ctx.String(http.StatusOK, "ok")
	})

	rr := httptest.NewRecorder()
	engine.ServeHTTP(rr, httptest.NewRequest("GET", "/health", nil))

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
	if len(c.calls) != 0 {
		t.Errorf("captures = %d, want 0", len(c.calls))
	}
}
