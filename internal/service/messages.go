package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"

	"salons/backend/internal/hub"
	"salons/backend/internal/models"
	"salons/backend/internal/storage"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Target is where messages are read and posted: a room, or a channel of that room.
type Target struct {
	Room    *models.Room
	Channel *models.Channel // nil for room-level messages
}

// Scope is "room" or "channel".
func (t Target) Scope() string {
	if t.Channel != nil {
		return "channel"
	}
	return "room"
}

// Topic is the hub topic of the target.
func (t Target) Topic() string {
	if t.Channel != nil {
		return hub.ChannelTopic(t.Channel.ID)
	}
	return hub.RoomTopic(t.Room.ID)
}

func (t Target) scope(db *gorm.DB) *gorm.DB {
	if t.Channel != nil {
		return db.Where("channel_id = ?", t.Channel.ID)
	}
	return db.Where("room_id = ?", t.Room.ID)
}

// ListMessages returns the target's messages oldest first, with authors loaded.
func ListMessages(ctx context.Context, db *gorm.DB, target Target) ([]models.Message, error) {
	var messages []models.Message
	if err := target.scope(db.WithContext(ctx)).
		Preload("Author").
		Order(models.MessageOrder).
		Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return messages, nil
}

// PostInput is the content of a new message. Content may be empty only when a
// file is attached.
type PostInput struct {
	Content string
	File    *multipart.FileHeader
}

// PostMessage creates a message in target on behalf of authorID. Users banned from
// the room (bans are room-wide, channels included) are refused.
func PostMessage(ctx context.Context, db *gorm.DB, files *storage.FileStore, target Target, authorID uint, in PostInput) (*models.Message, error) {
	db = db.WithContext(ctx)

	banned, err := target.Room.IsBanned(db, authorID)
	if err != nil {
		return nil, err
	}
	if banned {
		return nil, models.NewForbiddenError("Vous êtes banni de ce salon.")
	}

	if in.Content == "" && in.File == nil {
		return nil, models.NewValidationError("Missing contenu or fichier")
	}

	msg := models.Message{AuthorID: authorID, Content: in.Content}
	if target.Channel != nil {
		msg.ChannelID = &target.Channel.ID
	} else {
		msg.RoomID = &target.Room.ID
	}

	if in.File != nil {
		rel, err := files.Save(in.File)
		if err != nil {
			if errors.Is(err, storage.ErrTooLarge) {
				return nil, models.NewValidationError("Fichier trop volumineux.")
			}
			return nil, fmt.Errorf("store attachment: %w", err)
		}
		msg.File = rel
	}

	if err := db.Create(&msg).Error; err != nil {
		if msg.File != "" {
			if rmErr := files.Remove(msg.File); rmErr != nil {
				zap.L().Warn("failed to remove orphaned attachment", zap.String("file", msg.File), zap.Error(rmErr))
			}
		}
		return nil, fmt.Errorf("create message: %w", err)
	}
	if err := db.First(&msg.Author, authorID).Error; err != nil {
		return nil, fmt.Errorf("load author: %w", err)
	}
	return &msg, nil
}

// GetMessage loads a message with its author.
func GetMessage(ctx context.Context, db *gorm.DB, id uint) (*models.Message, error) {
	var msg models.Message
	if err := db.WithContext(ctx).Preload("Author").First(&msg, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Message introuvable.")
		}
		return nil, fmt.Errorf("load message %d: %w", id, err)
	}
	return &msg, nil
}

// TargetOf resolves the room (and channel) a message belongs to. For channel
// messages the room is the channel's room.
func TargetOf(ctx context.Context, db *gorm.DB, msg *models.Message) (Target, error) {
	db = db.WithContext(ctx)
	switch {
	case msg.RoomID != nil:
		var room models.Room
		if err := db.First(&room, *msg.RoomID).Error; err != nil {
			return Target{}, fmt.Errorf("load room of message %d: %w", msg.ID, err)
		}
		return Target{Room: &room}, nil
	case msg.ChannelID != nil:
		var channel models.Channel
		if err := db.Preload("Room").First(&channel, *msg.ChannelID).Error; err != nil {
			return Target{}, fmt.Errorf("load channel of message %d: %w", msg.ID, err)
		}
		return Target{Room: &channel.Room, Channel: &channel}, nil
	default:
		return Target{}, fmt.Errorf("message %d has neither room nor channel", msg.ID)
	}
}

// EditMessage replaces the text of a message. Only its author may edit it, and
// not while banned from the owning room. The attachment is kept.
func EditMessage(ctx context.Context, db *gorm.DB, messageID, actorID uint, content string) (*models.Message, Target, error) {
	msg, err := GetMessage(ctx, db, messageID)
	if err != nil {
		return nil, Target{}, err
	}
	if msg.AuthorID != actorID {
		return nil, Target{}, models.NewForbiddenError("Vous ne pouvez modifier que vos propres messages.")
	}

	target, err := TargetOf(ctx, db, msg)
	if err != nil {
		return nil, Target{}, err
	}
	banned, err := target.Room.IsBanned(db.WithContext(ctx), actorID)
	if err != nil {
		return nil, Target{}, err
	}
	if banned {
		return nil, Target{}, models.NewForbiddenError("Vous êtes banni de ce salon.")
	}

	if content == "" {
		return nil, Target{}, models.NewValidationError("Missing contenu")
	}

	if err := db.WithContext(ctx).Model(msg).Update("content", content).Error; err != nil {
		return nil, Target{}, fmt.Errorf("update message %d: %w", msg.ID, err)
	}
	msg.Content = content
	return msg, target, nil
}

// DeleteMessage removes a message. The author and the room's moderators may
// delete it, unless the actor is banned from the room. The attachment stays on disk.
func DeleteMessage(ctx context.Context, db *gorm.DB, messageID, actorID uint) (Target, error) {
	msg, err := GetMessage(ctx, db, messageID)
	if err != nil {
		return Target{}, err
	}

	target, err := TargetOf(ctx, db, msg)
	if err != nil {
		return Target{}, err
	}

	if msg.AuthorID != actorID {
		canModerate, err := target.Room.CanModerate(db.WithContext(ctx), actorID)
		if err != nil {
			return Target{}, err
		}
		if !canModerate {
			return Target{}, models.NewForbiddenError("Vous ne pouvez supprimer que vos propres messages ou devez être modérateur.")
		}
	}

	banned, err := target.Room.IsBanned(db.WithContext(ctx), actorID)
	if err != nil {
		return Target{}, err
	}
	if banned {
		return Target{}, models.NewForbiddenError("Vous êtes banni de ce salon.")
	}

	if err := db.WithContext(ctx).Delete(&models.Message{}, msg.ID).Error; err != nil {
		return Target{}, fmt.Errorf("delete message %d: %w", msg.ID, err)
	}
	return target, nil
}
