package handler

import (
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"salons/backend/internal/auth"
	"salons/backend/internal/database"
	"salons/backend/internal/hub"
	"salons/backend/internal/metrics"
	"salons/backend/internal/models"
	"salons/backend/internal/service"
	"salons/backend/internal/storage"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

// MessageInput is the JSON body of send and edit requests. Form posts use the
// same field names, plus the "fichier" file field on send.
type MessageInput struct {
	Content string `json:"contenu" form:"contenu" example:"Bonjour"`
}

// MessageResponse is the serialized form of a message.
type MessageResponse struct {
	ID       uint      `json:"id" example:"1"`
	Author   string    `json:"auteur" example:"alice"`
	Content  string    `json:"contenu" example:"Bonjour"`
	SentAt   time.Time `json:"date_envoi"`
	FileURL  string    `json:"fichier_url,omitempty" example:"/media/chat_files/2024/05/01/photo.png"`
	FileName string    `json:"fichier_nom,omitempty" example:"photo.png"`
}

// MessageListResponse wraps a list of messages.
type MessageListResponse struct {
	Messages []MessageResponse `json:"messages"`
}

func newMessageResponse(msg models.Message) MessageResponse {
	response := MessageResponse{
		ID:      msg.ID,
		Author:  msg.Author.Username,
		Content: msg.Content,
		SentAt:  msg.CreatedAt,
	}
	if msg.HasFile() {
		response.FileURL = storage.Default.URL(msg.File)
		response.FileName = msg.FileName()
	}
	return response
}

// endregion

// ListMessages godoc
// @Summary      List messages
// @Description  Returns the messages of a room, or of one of its channels, oldest first.
// @Tags         messages
// @Produce      json
// @Param        slug    path string true  "Room slug"
// @Param        channel path string false "Channel slug"
// @Success      200 {object} MessageListResponse
// @Failure      404 {object} ErrorResponse
// @Router       /salon/{slug}/messages/ [get]
// @Router       /salon/{slug}/{channel}/messages/ [get]
func ListMessages(c *gin.Context) {
	target, ok := loadTarget(c)
	if !ok {
		return
	}

	messages, err := service.ListMessages(c.Request.Context(), database.DB, target)
	if err != nil {
		respondError(c, models.NewInternalError(err))
		return
	}

	response := MessageListResponse{Messages: make([]MessageResponse, 0, len(messages))}
	for _, msg := range messages {
		response.Messages = append(response.Messages, newMessageResponse(msg))
	}
	c.JSON(http.StatusOK, response)
}

// PostMessage godoc
// @Summary      Send a message
// @Description  Posts a message as JSON {"contenu": ...} or as a form with "contenu" and an optional "fichier" file.
// @Tags         messages
// @Accept       json,mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        slug    path     string       true  "Room slug"
// @Param        channel path     string       false "Channel slug"
// @Param        input   body     MessageInput false "Message"
// @Param        fichier formData file         false "Attachment"
// @Success      200 {object} MessageResponse
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse "Banned from the room"
// @Failure      404 {object} ErrorResponse
// @Failure      429 {object} ErrorResponse
// @Router       /salon/{slug}/messages/send/ [post]
// @Router       /salon/{slug}/{channel}/messages/send/ [post]
func PostMessage(c *gin.Context) {
	target, ok := loadTarget(c)
	if !ok {
		return
	}

	input := service.PostInput{Content: readContent(c), File: readFile(c)}
	msg, err := service.PostMessage(c.Request.Context(), database.DB, storage.Default, target, auth.CurrentUserID(c), input)
	if err != nil {
		respondError(c, err)
		return
	}

	response := newMessageResponse(*msg)
	metrics.MessagesPosted.WithLabelValues(target.Scope(), messageKind(msg)).Inc()
	hub.GlobalHub.Broadcast(target.Topic(), hub.Event{Type: hub.EventMessageCreated, Payload: response})
	c.JSON(http.StatusOK, response)
}

// EditMessage godoc
// @Summary      Edit a message
// @Description  Replaces the text of the caller's own message. The attachment is kept.
// @Tags         messages
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path int          true "Message ID"
// @Param        input body MessageInput true "New content"
// @Success      200 {object} MessageResponse
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /messages/{id}/edit/ [post]
func EditMessage(c *gin.Context) {
	messageID, ok := parseMessageID(c)
	if !ok {
		return
	}

	msg, target, err := service.EditMessage(c.Request.Context(), database.DB, messageID, auth.CurrentUserID(c), readContent(c))
	if err != nil {
		respondError(c, err)
		return
	}

	response := newMessageResponse(*msg)
	hub.GlobalHub.Broadcast(target.Topic(), hub.Event{Type: hub.EventMessageUpdated, Payload: response})
	c.JSON(http.StatusOK, response)
}

// DeleteMessage godoc
// @Summary      Delete a message
// @Description  Deletes a message. Allowed for its author and for moderators of its room.
// @Tags         messages
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Message ID"
// @Success      200 {object} SuccessResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /messages/{id}/delete/ [post]
func DeleteMessage(c *gin.Context) {
	messageID, ok := parseMessageID(c)
	if !ok {
		return
	}

	target, err := service.DeleteMessage(c.Request.Context(), database.DB, messageID, auth.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	hub.GlobalHub.Broadcast(target.Topic(), hub.Event{Type: hub.EventMessageDeleted, Payload: gin.H{"id": messageID}})
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// region --- Helpers ---

// readContent takes "contenu" from a JSON body, falling back to form values
// when the body is not JSON or cannot be decoded.
func readContent(c *gin.Context) string {
	if c.ContentType() == gin.MIMEJSON {
		var input MessageInput
		if err := c.ShouldBindJSON(&input); err == nil && input.Content != "" {
			return input.Content
		}
	}
	return c.PostForm("contenu")
}

func readFile(c *gin.Context) *multipart.FileHeader {
	if c.ContentType() != gin.MIMEMultipartPOSTForm {
		return nil
	}
	file, err := c.FormFile("fichier")
	if err != nil {
		return nil
	}
	return file
}

func parseMessageID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Message introuvable."})
		return 0, false
	}
	return uint(id), true
}

func messageKind(msg *models.Message) string {
	switch {
	case msg.HasFile() && msg.Content != "":
		return "text_file"
	case msg.HasFile():
		return "file"
	default:
		return "text"
	}
}

// endregion
