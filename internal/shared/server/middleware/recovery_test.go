package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"study-backend/internal/shared/telemetry"
)

func TestRecoveryLogsDocumentContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.InfoLevel)
	restore := telemetry.SetLogger(zap.New(core))
	defer restore()

	r := gin.New()
	r.Use(RequestID(), Recovery())
	r.POST("/generate/summary/:documentId", func(c *gin.Context) {
		c.Set("documentId", c.Param("documentId"))
		c.Set("generationKind", "summary")
		panic("boom")
	})

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/generate/summary/doc-9", nil))
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
	var body map[string]string
	_ = json.Unmarshal(resp.Body.Bytes(), &body)
	if body["code"] != "internal_error" {
		t.Fatalf("unexpected body: %v", body)
	}

	entries := logs.FilterMessage("http.panic").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 panic entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["document_id"] != "doc-9" || fields["kind"] != "summary" {
		t.Fatalf("unexpected fields: %v", fields)
	}
}
