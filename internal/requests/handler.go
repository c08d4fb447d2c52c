package requests

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"smart-certify/certify-backend/internal/certificates"
	"smart-certify/certify-backend/internal/logging"
)

const (
	xlsxContentType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	missingFieldsMsg = "Missing required fields: studentName, college, certificateType, generatedLetter"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes mounts the student endpoints on rg and the admin endpoints
// on rg/admin behind adminMiddleware.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, adminMiddleware ...gin.HandlerFunc) {
	rg.POST("/submit-request", h.Submit)
	rg.GET("/status", h.Status)

	admin := rg.Group("/admin", adminMiddleware...)
	{
		admin.GET("/requests", h.List)
		admin.GET("/requests/export", h.Export)
		admin.POST("/approve/:id", h.Approve)
		admin.POST("/reject/:id", h.Reject)
	}
}

func (h *Handler) Submit(c *gin.Context) {
	var in SubmitInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": missingFieldsMsg})
		return
	}

	req, err := h.service.Submit(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":   "Request submitted successfully",
		"requestId": req.ID,
		"status":    req.Status,
	})
}

func (h *Handler) Status(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Student name is required"})
		return
	}

	reqs, err := h.service.StatusByStudent(c.Request.Context(), name)
	if err != nil {
		h.respondError(c, err)
		return
	}

	entries := make([]StatusEntry, 0, len(reqs))
	for i := range reqs {
		entries = append(entries, toStatusEntry(&reqs[i]))
	}
	c.JSON(http.StatusOK, gin.H{"studentName": name, "requests": entries})
}

func (h *Handler) List(c *gin.Context) {
	reqs, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	entries := make([]AdminEntry, 0, len(reqs))
	for i := range reqs {
		entries = append(entries, toAdminEntry(&reqs[i]))
	}
	c.JSON(http.StatusOK, gin.H{"requests": entries})
}

func (h *Handler) Approve(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	in, ok := bindDecision(c)
	if !ok {
		return
	}

	req, err := h.service.Approve(c.Request.Context(), id, in.ApprovedBy)
	if err != nil {
		var genErr *certificates.GenerationError
		if errors.As(err, &genErr) {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Failed to approve certificate and generate PDF",
				"details": genErr.Error(),
			})
			return
		}
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Certificate approved and digitally signed PDF generated with official seal",
		"requestId":   req.ID,
		"status":      req.Status,
		"downloadUrl": req.DownloadURL(),
		"pdfFileName": deref(req.PDFPath),
		"sealApplied": true,
		"sealStatus":  "OFFICIAL_SEAL_APPLIED",
	})
}

func (h *Handler) Reject(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	in, ok := bindDecision(c)
	if !ok {
		return
	}

	req, err := h.service.Reject(c.Request.Context(), id, in.ApprovedBy)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Request rejected successfully",
		"requestId": req.ID,
		"status":    req.Status,
	})
}

func (h *Handler) Export(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.service.Export(c.Request.Context(), &buf); err != nil {
		h.respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="certificate-requests.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// bindDecision reads the optional decision body. An empty body leaves the
// approver blank for the service to reject; malformed JSON is a 400.
func bindDecision(c *gin.Context) (DecisionInput, bool) {
	var in DecisionInput
	if err := c.ShouldBindJSON(&in); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return in, false
	}
	return in, true
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return 0, false
	}
	return uint(id), true
}

func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrMissingFields):
		c.JSON(http.StatusBadRequest, gin.H{"error": missingFieldsMsg})
	case errors.Is(err, ErrMissingDecider):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ErrRequestNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Request not found or already processed"})
	case errors.Is(err, ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logging.FromContext(c.Request.Context(), h.logger).Error("Request handling failed",
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
