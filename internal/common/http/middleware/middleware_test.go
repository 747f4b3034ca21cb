package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"codebench/internal/common/http/middleware"
	"codebench/internal/testutil"
	"codebench/pkg/utils/contextkey"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestTraceContextReusesIncomingIDs(t *testing.T) {
	router := gin.New()
	router.Use(middleware.TraceContext())
	var ctxRequestID string
	router.GET("/ping", func(c *gin.Context) {
		ctxRequestID, _ = c.Request.Context().Value(contextkey.RequestID).(string)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	testutil.AssertEqual(t, w.Header().Get(middleware.RequestIDHeader), "req-1")
	testutil.AssertEqual(t, ctxRequestID, "req-1")
	testutil.AssertTrue(t, w.Header().Get(middleware.TraceIDHeader) != "", "trace id generated")
}

func TestCORS(t *testing.T) {
	router := gin.New()
	router.Use(middleware.CORS(middleware.CORSConfig{Enabled: true, AllowedOrigins: []string{"http://localhost:3000"}}))
	router.POST("/submission/run/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		name   string
		method string
		origin string
		status int
		allow  string
	}{
		{name: "preflight allowed", method: http.MethodOptions, origin: "http://localhost:3000", status: http.StatusNoContent, allow: "http://localhost:3000"},
		{name: "preflight denied", method: http.MethodOptions, origin: "http://evil.test", status: http.StatusForbidden},
		{name: "simple allowed", method: http.MethodPost, origin: "http://localhost:3000", status: http.StatusOK, allow: "http://localhost:3000"},
		{name: "no origin", method: http.MethodPost, status: http.StatusOK},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, "/submission/run/two-sum", nil)
		if tt.origin != "" {
			req.Header.Set("Origin", tt.origin)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		testutil.AssertEqual(t, w.Code, tt.status)
		testutil.AssertEqual(t, w.Header().Get("Access-Control-Allow-Origin"), tt.allow)
	}
}
