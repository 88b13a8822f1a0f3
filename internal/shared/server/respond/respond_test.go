package respond

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestErrorBodyShape(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", func(c *gin.Context) {
		Error(c, http.StatusNotFound, "not_found", "Document not found")
	})

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/x", nil))

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] != "Document not found" || body["code"] != "not_found" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestOKExposesCacheHit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/hit", func(c *gin.Context) {
		c.Set("cacheHit", true)
		OK(c, gin.H{"summary": "s"})
	})
	r.GET("/plain", func(c *gin.Context) {
		OK(c, gin.H{"ok": true})
	})

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/hit", nil))
	if resp.Code != http.StatusOK || resp.Header().Get("X-Cache") != "HIT" {
		t.Fatalf("expected 200 with X-Cache HIT, got %d %q", resp.Code, resp.Header().Get("X-Cache"))
	}

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/plain", nil))
	if resp.Header().Get("X-Cache") != "" {
		t.Fatalf("expected no X-Cache header, got %q", resp.Header().Get("X-Cache"))
	}
}
