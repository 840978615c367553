package handler

import (
	"net/http"
	"time"

	"salons/backend/internal/auth"
	"salons/backend/internal/database"
	"salons/backend/internal/hub"
	"salons/backend/internal/models"
	"salons/backend/internal/service"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

// ChannelInput defines the structure for creating a channel.
type ChannelInput struct {
	Name        string `json:"nom" form:"nom" example:"annonces"`
	Description string `json:"description" form:"description"`
}

// ChannelResponse is the public view of a channel.
type ChannelResponse struct {
	ID          uint      `json:"id" example:"1"`
	Name        string    `json:"nom" example:"annonces"`
	Slug        string    `json:"slug" example:"annonces"`
	Description string    `json:"description"`
	RoomSlug    string    `json:"salon,omitempty" example:"general"`
	CreatedAt   time.Time `json:"date_creation"`
}

func newChannelResponse(channel models.Channel) ChannelResponse {
	return ChannelResponse{
		ID:          channel.ID,
		Name:        channel.Name,
		Slug:        channel.Slug,
		Description: channel.Description,
		RoomSlug:    channel.Room.Slug,
		CreatedAt:   channel.CreatedAt,
	}
}

func newChannelResponses(channels []models.Channel) []ChannelResponse {
	responses := make([]ChannelResponse, 0, len(channels))
	for _, ch := range channels {
		responses = append(responses, newChannelResponse(ch))
	}
	return responses
}

// endregion

// ListChannels godoc
// @Summary      List channels of a room
// @Tags         channels
// @Produce      json
// @Param        slug path string true "Room slug"
// @Success      200 {array} ChannelResponse
// @Failure      404 {object} ErrorResponse
// @Router       /salon/{slug}/channels/ [get]
func ListChannels(c *gin.Context) {
	ctx := c.Request.Context()
	room, err := service.GetRoomBySlug(ctx, database.DB, c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}

	channels, err := service.ListChannels(ctx, database.DB, room)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newChannelResponses(channels))
}

// CreateChannel godoc
// @Summary      Create a channel
// @Description  Creates a channel in the room. The slug is unique within the room.
// @Tags         channels
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        slug  path string       true "Room slug"
// @Param        input body ChannelInput true "Channel Info"
// @Success      201 {object} ChannelResponse
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /salon/{slug}/channels/ [post]
func CreateChannel(c *gin.Context) {
	ctx := c.Request.Context()
	room, err := service.GetRoomBySlug(ctx, database.DB, c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}

	var input ChannelInput
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	channel, err := service.CreateChannel(ctx, database.DB, room, input.Name, input.Description)
	if err != nil {
		respondError(c, err)
		return
	}

	response := newChannelResponse(*channel)
	hub.GlobalHub.Broadcast(hub.RoomTopic(room.ID), hub.Event{Type: hub.EventChannelCreated, Payload: response})
	c.JSON(http.StatusCreated, response)
}

// GetChannel godoc
// @Summary      Get a channel
// @Tags         channels
// @Produce      json
// @Param        slug    path string true "Room slug"
// @Param        channel path string true "Channel slug"
// @Success      200 {object} ChannelResponse
// @Failure      404 {object} ErrorResponse
// @Router       /salon/{slug}/{channel}/ [get]
func GetChannel(c *gin.Context) {
	target, ok := loadTarget(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newChannelResponse(*target.Channel))
}

// DeleteChannel godoc
// @Summary      Delete a channel
// @Description  Deletes the channel and its messages. Room admins only.
// @Tags         channels
// @Produce      json
// @Security     BearerAuth
// @Param        slug    path string true "Room slug"
// @Param        channel path string true "Channel slug"
// @Success      200 {object} SuccessResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /salon/{slug}/{channel}/delete/ [post]
func DeleteChannel(c *gin.Context) {
	target, ok := loadTarget(c)
	if !ok {
		return
	}

	if err := service.DeleteChannel(c.Request.Context(), database.DB, target.Room, target.Channel, auth.CurrentUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	hub.GlobalHub.Broadcast(hub.RoomTopic(target.Room.ID), hub.Event{
		Type:    hub.EventChannelDeleted,
		Payload: gin.H{"slug": target.Channel.Slug},
	})

	c.JSON(http.StatusOK, SuccessResponse{Success: true, Message: "Canal '" + target.Channel.Name + "' supprimé."})
}

// loadTarget resolves :slug and the optional :channel path parameters.
// It writes the error response and returns false when either is unknown.
func loadTarget(c *gin.Context) (service.Target, bool) {
	ctx := c.Request.Context()
	room, err := service.GetRoomBySlug(ctx, database.DB, c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return service.Target{}, false
	}

	target := service.Target{Room: room}
	if channelSlug := c.Param("channel"); channelSlug != "" {
		channel, err := service.GetChannelBySlug(ctx, database.DB, room, channelSlug)
		if err != nil {
			respondError(c, err)
			return service.Target{}, false
		}
		target.Channel = channel
	}
	return target, true
}
