package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"smart-certify/certify-backend/internal/logging"
)

type Handler struct {
	service *Service
	logger  *zap.Logger
}

func NewHandler(service *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes mounts the auth endpoints on rg/auth. verifyMiddleware runs
// in front of the token check only.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, verifyMiddleware ...gin.HandlerFunc) {
	auth := rg.Group("/auth")
	{
		auth.POST("/student/signup", h.StudentSignup)
		auth.POST("/student/signin", h.StudentSignin)
		auth.POST("/admin/signup", h.AdminSignup)
		auth.POST("/admin/signin", h.AdminSignin)
		auth.GET("/verify", append(verifyMiddleware, h.Verify)...)
	}
}

func (h *Handler) StudentSignup(c *gin.Context) {
	var in StudentSignupInput
	_ = c.ShouldBindJSON(&in)

	session, err := h.service.SignupStudent(c.Request.Context(), in)
	switch {
	case errors.Is(err, ErrMissingFields):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Required fields: studentId, firstName, lastName, email, password, college"})
	case errors.Is(err, ErrAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": "Student ID or email already exists"})
	case err != nil:
		h.internalError(c, "Student signup failed", err)
	default:
		c.JSON(http.StatusCreated, gin.H{
			"message": "Student registered successfully",
			"token":   session.Token,
			"student": session.Student,
		})
	}
}

func (h *Handler) StudentSignin(c *gin.Context) {
	var in StudentSigninInput
	_ = c.ShouldBindJSON(&in)

	session, err := h.service.SigninStudent(c.Request.Context(), in)
	switch {
	case errors.Is(err, ErrMissingFields):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Student ID and password are required"})
	case errors.Is(err, ErrUnknownAccount):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials - student not found. Please sign up first."})
	case errors.Is(err, ErrAccountInactive):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Account is not active"})
	case errors.Is(err, ErrWrongPassword):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials - wrong password"})
	case err != nil:
		h.internalError(c, "Student signin failed", err)
	default:
		c.JSON(http.StatusOK, gin.H{
			"message": "Sign in successful",
			"token":   session.Token,
			"student": session.Student,
		})
	}
}

func (h *Handler) AdminSignup(c *gin.Context) {
	var in AdminSignupInput
	_ = c.ShouldBindJSON(&in)

	session, err := h.service.SignupAdmin(c.Request.Context(), in)
	switch {
	case errors.Is(err, ErrMissingFields):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Required fields: adminId, firstName, lastName, email, password"})
	case errors.Is(err, ErrAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": "Admin ID or email already exists"})
	case err != nil:
		h.internalError(c, "Admin signup failed", err)
	default:
		c.JSON(http.StatusCreated, gin.H{
			"message": "Admin registered successfully",
			"token":   session.Token,
			"admin":   session.Admin,
		})
	}
}

// AdminSignin does not reveal whether the account or the password was wrong.
func (h *Handler) AdminSignin(c *gin.Context) {
	var in AdminSigninInput
	_ = c.ShouldBindJSON(&in)

	session, err := h.service.SigninAdmin(c.Request.Context(), in)
	switch {
	case errors.Is(err, ErrMissingFields):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Admin ID and password are required"})
	case errors.Is(err, ErrAccountInactive):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Account is not active"})
	case errors.Is(err, ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
	case err != nil:
		h.internalError(c, "Admin signin failed", err)
	default:
		c.JSON(http.StatusOK, gin.H{
			"message": "Sign in successful",
			"token":   session.Token,
			"admin":   session.Admin,
		})
	}
}

func (h *Handler) Verify(c *gin.Context) {
	token := BearerToken(c.GetHeader("Authorization"))
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No token provided"})
		return
	}

	claims, err := h.service.Verify(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true, "user": claims})
}

func (h *Handler) internalError(c *gin.Context, msg string, err error) {
	logging.FromContext(c.Request.Context(), h.logger).Error(msg, zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" value
func BearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
