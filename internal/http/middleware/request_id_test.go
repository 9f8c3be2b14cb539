package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRequestIDGeneratesWhenMissing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/health", nil)

	RequestID()(c)

	rid := GetRequestID(c)
	if rid == "" {
		t.Fatalf("no request id assigned")
	}
	if got := w.Header().Get("X-Request-ID"); got != rid {
		t.Fatalf("response header = %q, context id = %q", got, rid)
	}
}

func TestRequestIDKeepsCallerSuppliedID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/health", nil)
	c.Request.Header.Set("X-Request-ID", "upstream-42")

	RequestID()(c)

	if got := GetRequestID(c); got != "upstream-42" {
		t.Fatalf("request id = %q, want upstream-42", got)
	}
}
