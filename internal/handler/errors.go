package handler

import (
	"errors"
	"net/http"

	"salons/backend/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrorResponse represents a generic error response.
type ErrorResponse struct {
	Error string `json:"error" example:"Salon introuvable."`
}

// SuccessResponse is returned by actions that have no resource to return.
type SuccessResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message,omitempty" example:"bob a été banni."`
}

var statusByKind = map[models.ErrorKind]int{
	models.KindBadRequest:   http.StatusBadRequest,
	models.KindUnauthorized: http.StatusUnauthorized,
	models.KindForbidden:    http.StatusForbidden,
	models.KindNotFound:     http.StatusNotFound,
	models.KindConflict:     http.StatusConflict,
	models.KindInternal:     http.StatusInternalServerError,
}

// respondError writes err as {"error": ...}. Unclassified errors are reported
// as bad requests with their text.
func respondError(c *gin.Context, err error) {
	var appErr *models.AppError
	switch {
	case errors.As(err, &appErr):
		status, ok := statusByKind[appErr.Kind]
		if !ok {
			status = http.StatusInternalServerError
		}
		if status == http.StatusInternalServerError {
			zap.L().Error("internal error", zap.String("path", c.Request.URL.Path), zap.Error(err))
		}
		c.JSON(status, gin.H{"error": appErr.Message})
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Ressource introuvable."})
	default:
		zap.L().Warn("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}
