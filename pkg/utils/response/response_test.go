package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"codebench/pkg/errors"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(handler gin.HandlerFunc) *httptest.ResponseRecorder {
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("trace_id", "trace-1")
		c.Next()
	})
	router.GET("/", handler)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	return w
}

func TestErrorEnvelope(t *testing.T) {
	w := serve(func(c *gin.Context) {
		Error(c, errors.New(errors.JudgeBusy).WithDetail("state", "submitting"))
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", w.Code)
	}
	var resp struct {
		Code    errors.ErrorCode  `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
		TraceID string            `json:"trace_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Code != errors.JudgeBusy || resp.TraceID != "trace-1" || resp.Details["state"] != "submitting" {
		t.Fatalf("unexpected envelope: %+v", resp)
	}
}

func TestErrorOmitsEmptyDetails(t *testing.T) {
	w := serve(func(c *gin.Context) { NotFound(c, "no such problem") })
	var raw map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := raw["details"]; ok {
		t.Fatalf("details should be omitted: %s", w.Body.String())
	}
	if raw["message"] != "no such problem" {
		t.Fatalf("message = %v", raw["message"])
	}
}

func TestRawSkipsEnvelope(t *testing.T) {
	w := serve(func(c *gin.Context) { Raw(c, []int{1, 2}) })
	if w.Body.String() != "[1,2]" {
		t.Fatalf("body = %s", w.Body.String())
	}
}
