package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"hashurl/internal/domain"
	"hashurl/internal/service"
	"hashurl/pkg/logger"
)

// adminSecretHeader carries the audit log secret
const adminSecretHeader = "X-Admin-Secret"

// URLHandler handles HTTP requests for URL shortening operations
type URLHandler struct {
	service service.URLService
	baseURL string
	logger  *logger.Logger
}

// NewURLHandler creates a new URL handler with dependencies
func NewURLHandler(service service.URLService, baseURL string, logger *logger.Logger) *URLHandler {
	return &URLHandler{
		service: service,
		baseURL: baseURL,
		logger:  logger,
	}
}

// ShortenURL handles POST /api/v1/shorten.
// Answers 201 for a new record and 200 when the URL was already shortened.
func (h *URLHandler) ShortenURL(c *gin.Context) {
	var req domain.CreateURLRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, domain.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body: " + err.Error(),
			Code:    http.StatusBadRequest,
		})
		return
	}

	url, created, err := h.service.Shorten(c.Request.Context(), req.URL)
	if err != nil {
		h.handleError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}

	c.JSON(status, domain.CreateURLResponse{
		ID:          url.ID,
		Code:        url.Code,
		ShortURL:    fmt.Sprintf("%s/%s", h.baseURL, url.Code),
		OriginalURL: url.OriginalURL,
		CreatedAt:   url.CreatedAt,
	})
}

// RedirectURL handles GET /:code.
// 302 rather than 301 so browsers come back and every visit is counted.
func (h *URLHandler) RedirectURL(c *gin.Context) {
	originalURL, err := h.service.Resolve(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Redirect(http.StatusFound, originalURL)
}

// GetURLInfo handles GET /api/v1/urls/:code
func (h *URLHandler) GetURLInfo(c *gin.Context) {
	url, err := h.service.Lookup(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, url)
}

// ListURLs handles GET /api/v1/urls?show=all
func (h *URLHandler) ListURLs(c *gin.Context) {
	if c.Query("show") != "all" {
		c.JSON(http.StatusBadRequest, domain.ErrorResponse{
			Error:   "invalid_query",
			Message: "Invalid query parameter",
			Code:    http.StatusBadRequest,
		})
		return
	}

	entries, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, entries)
}

// AuditLog handles GET /api/v1/admin/audit?code=...
func (h *URLHandler) AuditLog(c *gin.Context) {
	secret := c.GetHeader(adminSecretHeader)
	if secret == "" {
		secret = c.Query("secret")
	}

	report, err := h.service.AuditLog(c.Request.Context(), c.Query("code"), secret)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// handleError processes domain errors and returns appropriate HTTP responses
func (h *URLHandler) handleError(c *gin.Context, err error) {
	var appErr *domain.AppError

	switch {
	case errors.Is(err, domain.ErrURLNotFound):
		c.JSON(http.StatusNotFound, domain.ErrorResponse{
			Error:   "not_found",
			Message: "Short code not found",
			Code:    http.StatusNotFound,
		})

	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, domain.ErrorResponse{
			Error:   "unauthorized",
			Message: "Unauthorized Access",
			Code:    http.StatusUnauthorized,
		})

	case errors.Is(err, domain.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, domain.ErrorResponse{
			Error:   "invalid_input",
			Message: err.Error(),
			Code:    http.StatusBadRequest,
		})

	case errors.As(err, &appErr) && !appErr.Internal:
		c.JSON(appErr.StatusCode, domain.ErrorResponse{
			Error:   "client_error",
			Message: appErr.Message,
			Code:    appErr.StatusCode,
		})

	default:
		h.logger.Error("Unexpected error", "error", err, "path", c.Request.URL.Path)
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "internal_error",
			Message: "An unexpected error occurred",
			Code:    http.StatusInternalServerError,
		})
	}
}
