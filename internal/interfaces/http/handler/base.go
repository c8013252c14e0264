// Package handler contains the HTTP handlers. Handlers translate
// between the wire envelope and application services; business rules
// live below this layer.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pharmalink/backend/internal/domain/shared"
	"github.com/pharmalink/backend/internal/interfaces/http/dto"
	"github.com/pharmalink/backend/internal/interfaces/http/middleware"
)

// BaseHandler provides the response helpers shared by all handlers
type BaseHandler struct {
	logger *zap.Logger
}

// NewBaseHandler creates a new BaseHandler
func NewBaseHandler(logger *zap.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// Success writes 200 with data
func (h BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created writes 201 with data
func (h BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent writes 204
func (h BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// List writes 200 with data and pagination meta
func (h BaseHandler) List(c *gin.Context, data any, page, pageSize int, total int64) {
	c.JSON(http.StatusOK, dto.NewListResponse(data, page, pageSize, total))
}

// Error maps an application error onto the wire. Domain errors keep
// their code and get the status the code maps to; anything else is an
// opaque 500 so internals never leak to clients.
func (h BaseHandler) Error(c *gin.Context, err error) {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		c.JSON(dto.GetHTTPStatus(domainErr.Code),
			dto.NewErrorResponse(domainErr.Code, domainErr.Message))
		return
	}

	h.logger.Error("unhandled error",
		zap.String("path", c.Request.URL.Path),
		zap.String("request_id", middleware.GetRequestID(c)),
		zap.Error(err),
	)
	c.JSON(http.StatusInternalServerError,
		dto.NewErrorResponse(dto.ErrCodeInternal, "internal server error"))
}

// BindError writes 400 for a malformed request body or query string
func (h BaseHandler) BindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest,
		dto.NewErrorResponse(dto.ErrCodeValidation, err.Error()))
}

// TenantID returns the tenant resolved by the middleware. A false
// return means the response has already been written.
func (h BaseHandler) TenantID(c *gin.Context) (uuid.UUID, bool) {
	tenantID, ok := middleware.GetTenantID(c)
	if !ok {
		c.JSON(http.StatusBadRequest,
			dto.NewErrorResponse(dto.ErrCodeMissingTenant, "tenant not resolved"))
		return uuid.Nil, false
	}
	return tenantID, true
}

// UUIDParam parses a path parameter as a UUID. A false return means the
// response has already been written.
func (h BaseHandler) UUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest,
			dto.NewErrorResponse(dto.ErrCodeValidation, name+" must be a valid UUID"))
		return uuid.Nil, false
	}
	return id, true
}
