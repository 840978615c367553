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
	"go.uber.org/zap"
)

// region --- DTOs ---

// RoomInput defines the structure for creating a room.
type RoomInput struct {
	Name        string `json:"nom" form:"nom" example:"Général"`
	Description string `json:"description" form:"description" example:"Discussions libres"`
}

// RoomResponse is the public view of a room.
type RoomResponse struct {
	ID          uint      `json:"id" example:"1"`
	Name        string    `json:"nom" example:"Général"`
	Slug        string    `json:"slug" example:"general"`
	Description string    `json:"description"`
	CreatorID   uint      `json:"createur_id" example:"1"`
	CreatedAt   time.Time `json:"date_creation"`
}

// RoomDetailResponse is a room with its channels and the caller's rights in it.
type RoomDetailResponse struct {
	Room        RoomResponse       `json:"salon"`
	Channels    []ChannelResponse  `json:"channels"`
	Permissions models.Permissions `json:"permissions"`
}

// PaginatedRoomResponse defines the structure for a paginated list of rooms.
type PaginatedRoomResponse struct {
	Data []RoomResponse `json:"data"`
	Meta PaginationMeta `json:"meta"`
}

func newRoomResponse(room models.Room) RoomResponse {
	return RoomResponse{
		ID:          room.ID,
		Name:        room.Name,
		Slug:        room.Slug,
		Description: room.Description,
		CreatorID:   room.CreatorID,
		CreatedAt:   room.CreatedAt,
	}
}

// endregion

// ListRooms godoc
// @Summary      List rooms
// @Description  Gets a paginated list of rooms ordered by name.
// @Tags         salons
// @Produce      json
// @Param        page  query int false "Page number" default(1)
// @Param        limit query int false "Items per page" default(20)
// @Success      200 {object} PaginatedRoomResponse
// @Failure      500 {object} ErrorResponse
// @Router       /salons/ [get]
func ListRooms(c *gin.Context) {
	page, limit := parsePagination(c)

	result, err := Paginate[models.Room](database.DB.WithContext(c.Request.Context()).Order("name ASC"), page, limit)
	if err != nil {
		respondError(c, models.NewInternalError(err))
		return
	}

	rooms := make([]RoomResponse, 0, len(result.Data))
	for _, room := range result.Data {
		rooms = append(rooms, newRoomResponse(room))
	}
	c.JSON(http.StatusOK, NewPaginatedResponse(rooms, result.Meta.TotalItems, page, limit))
}

// CreateRoom godoc
// @Summary      Create a room
// @Description  Creates a room owned by the caller. The slug is derived from the name.
// @Tags         salons
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body RoomInput true "Room Info"
// @Success      201 {object} RoomResponse
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /salons/ [post]
func CreateRoom(c *gin.Context) {
	var input RoomInput
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room, err := service.CreateRoom(c.Request.Context(), database.DB, auth.CurrentUserID(c), input.Name, input.Description)
	if err != nil {
		respondError(c, err)
		return
	}
	zap.L().Info("room created", zap.Uint("room_id", room.ID), zap.String("slug", room.Slug))

	c.JSON(http.StatusCreated, newRoomResponse(*room))
}

// GetRoom godoc
// @Summary      Get a room
// @Description  Returns the room, its channels and what the caller may do in it.
// @Tags         salons
// @Produce      json
// @Param        slug path string true "Room slug"
// @Success      200 {object} RoomDetailResponse
// @Failure      404 {object} ErrorResponse
// @Router       /salon/{slug}/ [get]
func GetRoom(c *gin.Context) {
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
	perms, err := room.PermissionsFor(database.DB.WithContext(ctx), auth.CurrentUserID(c))
	if err != nil {
		respondError(c, models.NewInternalError(err))
		return
	}

	c.JSON(http.StatusOK, RoomDetailResponse{
		Room:        newRoomResponse(*room),
		Channels:    newChannelResponses(channels),
		Permissions: perms,
	})
}

// DeleteRoom godoc
// @Summary      Delete a room
// @Description  Deletes the room with its channels, messages, roles and bans. Creator only.
// @Tags         salons
// @Produce      json
// @Security     BearerAuth
// @Param        slug path string true "Room slug"
// @Success      200 {object} SuccessResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /salon/{slug}/delete/ [post]
func DeleteRoom(c *gin.Context) {
	ctx := c.Request.Context()
	room, err := service.GetRoomBySlug(ctx, database.DB, c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}

	if err := service.DeleteRoom(ctx, database.DB, room, auth.CurrentUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	zap.L().Info("room deleted", zap.Uint("room_id", room.ID), zap.Uint("actor_id", auth.CurrentUserID(c)))
	hub.GlobalHub.Broadcast(hub.RoomTopic(room.ID), hub.Event{
		Type:    hub.EventRoomDeleted,
		Payload: gin.H{"slug": room.Slug},
	})

	c.JSON(http.StatusOK, SuccessResponse{Success: true, Message: "Salon '" + room.Name + "' supprimé."})
}
