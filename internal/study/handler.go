package study

import (
	"github.com/gin-gonic/gin"

	"study-backend/internal/llm"
	"study-backend/internal/shared/server/respond"
)

// Handler wires generation endpoints to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches generation routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/generate/summary/:documentId", h.summary)
	rg.POST("/generate/flashcards/:documentId", h.flashcards)
	rg.POST("/generate/quiz/:documentId", h.quiz)
	rg.POST("/generate/all/:documentId", h.all)
}

func (h *Handler) summary(c *gin.Context) {
	id := begin(c, llm.KindSummary)
	summary, cached, err := h.Svc.Summary(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Set("cacheHit", cached)
	respond.OK(c, gin.H{"summary": summary})
}

func (h *Handler) flashcards(c *gin.Context) {
	id := begin(c, llm.KindFlashcards)
	cards, cached, err := h.Svc.Flashcards(c.Request.Context(), id, c.Query("more") == "true")
	if err != nil {
		writeError(c, err)
		return
	}
	c.Set("cacheHit", cached)
	respond.OK(c, gin.H{"flashcards": cards})
}

func (h *Handler) quiz(c *gin.Context) {
	id := begin(c, llm.KindQuiz)
	quiz, cached, err := h.Svc.Quiz(c.Request.Context(), id, c.Query("more") == "true")
	if err != nil {
		writeError(c, err)
		return
	}
	c.Set("cacheHit", cached)
	respond.OK(c, gin.H{"quiz": quiz})
}

func (h *Handler) all(c *gin.Context) {
	c.Set("generationKind", "all")
	id := c.Param("documentId")
	c.Set("documentId", id)

	out, err := h.Svc.GenerateAll(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, out)
}

func begin(c *gin.Context, kind llm.Kind) string {
	id := c.Param("documentId")
	c.Set("documentId", id)
	c.Set("generationKind", string(kind))
	return id
}

func writeError(c *gin.Context, err error) {
	status, code, message := statusFor(err)
	respond.Error(c, status, code, message)
}
