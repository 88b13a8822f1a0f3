package documents

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"study-backend/internal/shared/server/respond"
)

// multipartOverhead is allowed on top of the file limit for form boundaries and headers.
const multipartOverhead = 1 << 20

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches document routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/upload", h.upload)
	rg.POST("/upload/text", h.uploadText)
	rg.GET("/documents/:documentId", h.get)
}

func (h *Handler) upload(c *gin.Context) {
	limit := h.Svc.maxUploadBytes()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+multipartOverhead)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(c, http.StatusBadRequest, "validation_error", "File too large")
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "No file uploaded")
		return
	}
	if fileHeader.Size > limit {
		respond.Error(c, http.StatusBadRequest, "validation_error", "File too large")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file")
		return
	}

	res, err := h.Svc.Upload(c.Request.Context(), UploadInput{
		FileName:  fileHeader.Filename,
		MediaType: fileHeader.Header.Get("Content-Type"),
		Data:      data,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.Set("documentId", res.Document.ID)
	respond.OK(c, toUploadResponse("File uploaded and processed successfully", res))
}

type uploadTextRequest struct {
	Text string `json:"text"`
}

func (h *Handler) uploadText(c *gin.Context) {
	var req uploadTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Text content is required")
		return
	}

	res, err := h.Svc.UploadText(c.Request.Context(), req.Text)
	if err != nil {
		writeError(c, err)
		return
	}

	c.Set("documentId", res.Document.ID)
	respond.OK(c, toUploadResponse("Text uploaded and processed successfully", res))
}

func (h *Handler) get(c *gin.Context) {
	id := c.Param("documentId")
	c.Set("documentId", id)

	doc, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, toResponse(doc))
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "Document not found")
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
