package auth

import (
	"errors"
	"net/http"

	"salons/backend/internal/database"
	"salons/backend/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RoomCheck is one of the permission predicates of models.Room,
// e.g. (*models.Room).CanModerate.
type RoomCheck func(room *models.Room, db *gorm.DB, userID uint) (bool, error)

// NotBanned passes users without an active ban in the room.
func NotBanned(room *models.Room, db *gorm.DB, userID uint) (bool, error) {
	banned, err := room.IsBanned(db, userID)
	return !banned, err
}

// RoomPermissionMiddleware loads the room named by the :slug parameter and
// aborts with 403 and the given message unless check passes for the current user.
// It must be used AFTER AuthMiddleware. The loaded room is stored under "room".
func RoomPermissionMiddleware(check RoomCheck, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := CurrentUserID(c)
		if userID == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentification requise."})
			return
		}

		var room models.Room
		if err := database.DB.Where("slug = ?", c.Param("slug")).First(&room).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Salon introuvable."})
				return
			}
			zap.L().Error("load room", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Erreur interne du serveur."})
			return
		}

		allowed, err := check(&room, database.DB, userID)
		if err != nil {
			zap.L().Error("room permission check", zap.Uint("room_id", room.ID), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Erreur interne du serveur."})
			return
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": message})
			return
		}

		c.Set("room", &room)
		c.Next()
	}
}

// RoomFromContext returns the room loaded by RoomPermissionMiddleware.
func RoomFromContext(c *gin.Context) *models.Room {
	if v, ok := c.Get("room"); ok {
		if room, ok := v.(*models.Room); ok {
			return room
		}
	}
	return nil
}
