package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"salons/backend/internal/auth"
	"salons/backend/internal/database"
	"salons/backend/internal/hub"
	"salons/backend/internal/metrics"
	"salons/backend/internal/models"
	"salons/backend/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// region --- DTOs ---

// UserID accepts a JSON number or a numeric string. null, 0 and "" decode to 0.
type UserID uint

func (id *UserID) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*id = 0
		return nil
	}
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = strings.TrimSpace(unquoted)
		if raw == "" {
			*id = 0
			return nil
		}
	}
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return fmt.Errorf("user_id invalide: %s", string(data))
	}
	*id = UserID(n)
	return nil
}

// BanInput is the body of ban and unban requests.
type BanInput struct {
	UserID UserID `json:"user_id" swaggertype:"integer" example:"2"`
	Reason string `json:"reason" example:"spam"`
}

// RoleInput is the body of promote and demote requests.
type RoleInput struct {
	UserID UserID `json:"user_id" swaggertype:"integer" example:"2"`
	Role   string `json:"role" example:"moderator"`
}

// RoomUsersResponse lists the participants of a room.
type RoomUsersResponse struct {
	Users []service.RoomUser `json:"users"`
}

// endregion

// BanUser godoc
// @Summary      Ban a user from a room
// @Description  Moderators only. Banning again reactivates the existing ban.
// @Tags         moderation
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        slug  path string   true "Room slug"
// @Param        input body BanInput true "Target"
// @Success      200 {object} SuccessResponse
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /salon/{slug}/ban/ [post]
func BanUser(c *gin.Context) {
	var input BanInput
	if !bindModerationInput(c, &input) {
		return
	}
	room := auth.RoomFromContext(c)
	actorID := auth.CurrentUserID(c)

	target, err := service.BanUser(c.Request.Context(), database.DB, room, actorID, uint(input.UserID), input.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	moderationDone(c, room, hub.EventUserBanned, target, gin.H{"reason": input.Reason})
	c.JSON(http.StatusOK, SuccessResponse{Success: true, Message: target.Username + " a été banni."})
}

// UnbanUser godoc
// @Summary      Lift a ban
// @Description  Moderators only. The ban row is kept, inactive.
// @Tags         moderation
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        slug  path string   true "Room slug"
// @Param        input body BanInput true "Target"
// @Success      200 {object} SuccessResponse
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /salon/{slug}/unban/ [post]
func UnbanUser(c *gin.Context) {
	var input BanInput
	if !bindModerationInput(c, &input) {
		return
	}
	room := auth.RoomFromContext(c)

	target, err := service.UnbanUser(c.Request.Context(), database.DB, room, uint(input.UserID))
	if err != nil {
		respondError(c, err)
		return
	}

	moderationDone(c, room, hub.EventUserUnbanned, target, nil)
	c.JSON(http.StatusOK, SuccessResponse{Success: true, Message: target.Username + " a été débanni."})
}

// PromoteUser godoc
// @Summary      Promote a user
// @Description  Admins only. Grants the moderator role; promoting twice keeps one role.
// @Tags         moderation
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        slug  path string    true "Room slug"
// @Param        input body RoleInput true "Target and role"
// @Success      200 {object} SuccessResponse
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /salon/{slug}/promote/ [post]
func PromoteUser(c *gin.Context) {
	var input RoleInput
	if !bindModerationInput(c, &input) {
		return
	}
	room := auth.RoomFromContext(c)
	actorID := auth.CurrentUserID(c)

	target, role, err := service.PromoteUser(c.Request.Context(), database.DB, room, actorID, uint(input.UserID), models.RoleName(input.Role))
	if err != nil {
		respondError(c, err)
		return
	}

	moderationDone(c, room, hub.EventUserPromoted, target, gin.H{"role": role})
	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Message: fmt.Sprintf("%s est maintenant %s.", target.Username, role.Display()),
	})
}

// DemoteUser godoc
// @Summary      Demote a user
// @Description  Admins only. Removes the user's role; the creator cannot be demoted.
// @Tags         moderation
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        slug  path string    true "Room slug"
// @Param        input body RoleInput true "Target"
// @Success      200 {object} SuccessResponse
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /salon/{slug}/demote/ [post]
func DemoteUser(c *gin.Context) {
	var input RoleInput
	if !bindModerationInput(c, &input) {
		return
	}
	room := auth.RoomFromContext(c)

	target, err := service.DemoteUser(c.Request.Context(), database.DB, room, uint(input.UserID))
	if err != nil {
		respondError(c, err)
		return
	}

	moderationDone(c, room, hub.EventUserDemoted, target, nil)
	c.JSON(http.StatusOK, SuccessResponse{Success: true, Message: target.Username + " n'est plus modérateur."})
}

// ListRoomUsers godoc
// @Summary      List the participants of a room
// @Description  Creator, message authors (room and channels), role holders and banned users, with their rights.
// @Tags         moderation
// @Produce      json
// @Security     BearerAuth
// @Param        slug path string true "Room slug"
// @Success      200 {object} RoomUsersResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /salon/{slug}/users/ [get]
func ListRoomUsers(c *gin.Context) {
	ctx := c.Request.Context()
	room, err := service.GetRoomBySlug(ctx, database.DB, c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}

	users, err := service.ListRoomUsers(ctx, database.DB, room)
	if err != nil {
		respondError(c, models.NewInternalError(err))
		return
	}
	c.JSON(http.StatusOK, RoomUsersResponse{Users: users})
}

// region --- Helpers ---

// bindModerationInput decodes the JSON body. An empty body counts as {}.
func bindModerationInput(c *gin.Context, input interface{}) bool {
	if err := c.ShouldBindJSON(input); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

func moderationDone(c *gin.Context, room *models.Room, eventType string, target *models.User, extra gin.H) {
	action := strings.TrimPrefix(eventType, "user.")
	metrics.ModerationActions.WithLabelValues(action).Inc()
	zap.L().Info("moderation action",
		zap.String("action", action),
		zap.Uint("room_id", room.ID),
		zap.Uint("actor_id", auth.CurrentUserID(c)),
		zap.Uint("target_id", target.ID),
	)

	payload := gin.H{"user_id": target.ID, "username": target.Username}
	for k, v := range extra {
		payload[k] = v
	}
	hub.GlobalHub.Broadcast(hub.RoomTopic(room.ID), hub.Event{Type: eventType, Payload: payload})
}

// endregion
