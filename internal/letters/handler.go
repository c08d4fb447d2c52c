package letters

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"smart-certify/certify-backend/internal/logging"
)

type Handler struct {
	drafter Drafter
	logger  *zap.Logger
}

func NewHandler(drafter Drafter, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{drafter: drafter, logger: logger}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/generate-letter", h.Generate)
}

func (h *Handler) Generate(c *gin.Context) {
	var req DraftRequest
	_ = c.ShouldBindJSON(&req)

	letter, err := h.drafter.Draft(c.Request.Context(), req)
	switch {
	case errors.Is(err, ErrMissingFields):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please fill in all required fields."})
	case err != nil:
		logging.FromContext(c.Request.Context(), h.logger).Error("Letter drafting failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to generate certificate. Please try again."})
	default:
		c.JSON(http.StatusOK, gin.H{"letter": letter})
	}
}
