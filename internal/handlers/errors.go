package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/logger"
	"storefront/internal/pricing"
	"storefront/internal/repository"
	"storefront/internal/storage"
)

type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// ValidationError es un error de un campo puntual del body
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// respondError traduce errores de dominio a status HTTP. Lo que no reconoce
// se loguea y sale como 500 con el mensaje genérico.
func respondError(c *gin.Context, err error, internalMsg string) {
	var (
		validation *ValidationError
		quantity   *pricing.InvalidQuantityError
		malformed  *pricing.MalformedPriceInputError
	)

	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, repository.ErrInvalidID):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, repository.ErrInvalidOrder):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, storage.ErrUnsupportedType):
		c.JSON(http.StatusUnsupportedMediaType, ErrorResponse{Error: err.Error()})
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:  "validation failed",
			Fields: map[string]string{validation.Field: validation.Message},
		})
	case errors.As(err, &quantity), errors.As(err, &malformed):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
	case errors.Is(err, pricing.ErrTooManyCombinations):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
	default:
		_ = c.Error(err)
		logger.Error(internalMsg,
			zap.String("request_id", GetRequestID(c)),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: internalMsg})
	}
}
