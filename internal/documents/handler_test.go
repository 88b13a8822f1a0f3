package documents_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"study-backend/internal/documents"
	"study-backend/internal/shared/config"
	"study-backend/internal/shared/server"
)

func newRouter(t *testing.T) (*gin.Engine, *documents.MemoryRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	repo := documents.NewMemoryRepo()
	svc := &documents.Service{Repo: repo, MaxUploadBytes: 1 << 20}
	router := server.NewRouter(server.RouterDeps{
		Config:   config.Config{Env: "dev", MaxUploadBytes: 1 << 20, CORSAllowOrigin: []string{"*"}},
		Handlers: []server.RouteRegistrar{documents.NewHandler(svc)},
	})
	return router, repo
}

func multipartBody(t *testing.T, fileName, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+fileName+`"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func TestUploadAndGetDocument(t *testing.T) {
	router, _ := newRouter(t)

	body, contentType := multipartBody(t, "board.png", "image/png", []byte{0x89, 0x50, 0x4e, 0x47})
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var created documents.UploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode upload response: %v", err)
	}
	if created.DocumentID == "" || created.ExtractedText != "..." || created.TextLength != 0 {
		t.Fatalf("unexpected upload response: %+v", created)
	}

	reqGet := httptest.NewRequest(http.MethodGet, "/documents/"+created.DocumentID, nil)
	respGet := httptest.NewRecorder()
	router.ServeHTTP(respGet, reqGet)

	if respGet.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", respGet.Code)
	}
	var view documents.DocumentResponse
	if err := json.NewDecoder(respGet.Body).Decode(&view); err != nil {
		t.Fatalf("decode document: %v", err)
	}
	if !view.UseMultimodalFallback || !view.HasFileBytes || view.ExtractedText != documents.NoTextPlaceholder {
		t.Fatalf("unexpected view: %+v", view)
	}
	if strings.Contains(respGet.Body.String(), "fileBytes\"") {
		t.Fatal("raw bytes must not be returned")
	}
}

func TestUploadRejectsMissingFile(t *testing.T) {
	router, _ := newRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(""))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestUploadRejectsInvalidType(t *testing.T) {
	router, _ := newRouter(t)

	body, contentType := multipartBody(t, "run.exe", "application/x-msdownload", []byte("MZ"))
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	var errBody map[string]string
	_ = json.Unmarshal(resp.Body.Bytes(), &errBody)
	if errBody["code"] != "validation_error" || !strings.HasPrefix(errBody["error"], "Invalid file type") {
		t.Fatalf("unexpected error body: %v", errBody)
	}
}

func TestUploadText(t *testing.T) {
	router, repo := newRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/upload/text", strings.NewReader(`{"text":"Osmosis moves water across membranes."}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var created documents.UploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.ExtractedText != "Osmosis moves water across membranes...." {
		t.Fatalf("unexpected preview: %q", created.ExtractedText)
	}
	doc, err := repo.GetByID(req.Context(), created.DocumentID)
	if err != nil || !doc.IsPastedText() {
		t.Fatalf("expected stored pasted text, got %+v %v", doc, err)
	}

	short := httptest.NewRequest(http.MethodPost, "/upload/text", strings.NewReader(`{"text":"hi"}`))
	short.Header.Set("Content-Type", "application/json")
	shortResp := httptest.NewRecorder()
	router.ServeHTTP(shortResp, short)
	if shortResp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for short text, got %d", shortResp.Code)
	}
}

func TestGetDocumentNotFound(t *testing.T) {
	router, _ := newRouter(t)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/documents/nope", nil))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}
