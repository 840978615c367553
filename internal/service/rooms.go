package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"salons/backend/internal/models"

	"gorm.io/gorm"
)

// GetRoomBySlug loads a room or returns a not-found AppError.
func GetRoomBySlug(ctx context.Context, db *gorm.DB, slug string) (*models.Room, error) {
	var room models.Room
	if err := db.WithContext(ctx).Where("slug = ?", slug).First(&room).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Salon introuvable.")
		}
		return nil, fmt.Errorf("load room %q: %w", slug, err)
	}
	return &room, nil
}

// GetChannelBySlug loads a channel of room or returns a not-found AppError.
func GetChannelBySlug(ctx context.Context, db *gorm.DB, room *models.Room, slug string) (*models.Channel, error) {
	var channel models.Channel
	if err := db.WithContext(ctx).Where("room_id = ? AND slug = ?", room.ID, slug).First(&channel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Canal introuvable.")
		}
		return nil, fmt.Errorf("load channel %q: %w", slug, err)
	}
	channel.Room = *room
	return &channel, nil
}

// CreateRoom creates a room owned by creatorID. The slug derives from the name.
func CreateRoom(ctx context.Context, db *gorm.DB, creatorID uint, name, description string) (*models.Room, error) {
	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)
	if name == "" {
		return nil, models.NewValidationError("Le nom du salon est requis.")
	}
	if utf8.RuneCountInString(name) > 100 {
		return nil, models.NewValidationError("Le nom du salon ne doit pas dépasser 100 caractères.")
	}

	var room models.Room
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Room{}).Where("name = ?", name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return models.NewConflictError("Un salon porte déjà ce nom.")
		}

		slug, err := uniqueSlug(name, "salon", func(candidate string) (bool, error) {
			var n int64
			err := tx.Model(&models.Room{}).Where("slug = ?", candidate).Count(&n).Error
			return n > 0, err
		})
		if err != nil {
			return err
		}

		room = models.Room{Name: name, Slug: slug, Description: description, CreatorID: creatorID}
		return tx.Create(&room).Error
	})
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// DeleteRoom removes the room with its channels, messages, roles and bans.
// Only the creator may delete a room.
func DeleteRoom(ctx context.Context, db *gorm.DB, room *models.Room, actorID uint) error {
	if room.CreatorID != actorID {
		return models.NewForbiddenError("Seul le créateur peut supprimer ce salon.")
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		channelIDs := tx.Model(&models.Channel{}).Select("id").Where("room_id = ?", room.ID)
		if err := tx.Where("channel_id IN (?)", channelIDs).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Where("room_id = ?", room.ID).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Where("room_id = ?", room.ID).Delete(&models.Channel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("room_id = ?", room.ID).Delete(&models.RoomRole{}).Error; err != nil {
			return err
		}
		if err := tx.Where("room_id = ?", room.ID).Delete(&models.Ban{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Room{}, room.ID).Error
	})
}

// ListChannels returns the channels of a room by name.
func ListChannels(ctx context.Context, db *gorm.DB, room *models.Room) ([]models.Channel, error) {
	var channels []models.Channel
	if err := db.WithContext(ctx).Where("room_id = ?", room.ID).Order("name ASC").Find(&channels).Error; err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}
	return channels, nil
}

// Channel slugs share the /api/salon/:slug/ path level with these room routes.
var reservedChannelSlugs = map[string]bool{
	"messages": true, "channels": true, "users": true, "events": true, "delete": true,
	"ban": true, "unban": true, "promote": true, "demote": true,
}

// CreateChannel creates a channel in room. The slug is unique within the room.
func CreateChannel(ctx context.Context, db *gorm.DB, room *models.Room, name, description string) (*models.Channel, error) {
	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)
	if name == "" {
		return nil, models.NewValidationError("Le nom du canal est requis.")
	}
	if utf8.RuneCountInString(name) > 100 {
		return nil, models.NewValidationError("Le nom du canal ne doit pas dépasser 100 caractères.")
	}

	var channel models.Channel
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Channel{}).Where("room_id = ? AND name = ?", room.ID, name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return models.NewConflictError("Un canal porte déjà ce nom dans ce salon.")
		}

		slug, err := uniqueSlug(name, "channel", func(candidate string) (bool, error) {
			if reservedChannelSlugs[candidate] {
				return true, nil
			}
			var n int64
			err := tx.Model(&models.Channel{}).Where("room_id = ? AND slug = ?", room.ID, candidate).Count(&n).Error
			return n > 0, err
		})
		if err != nil {
			return err
		}

		channel = models.Channel{RoomID: room.ID, Name: name, Slug: slug, Description: description}
		return tx.Create(&channel).Error
	})
	if err != nil {
		return nil, err
	}
	channel.Room = *room
	return &channel, nil
}

// DeleteChannel removes a channel and its messages. Room admins only.
func DeleteChannel(ctx context.Context, db *gorm.DB, room *models.Room, channel *models.Channel, actorID uint) error {
	isAdmin, err := room.IsAdmin(db.WithContext(ctx), actorID)
	if err != nil {
		return err
	}
	if !isAdmin {
		return models.NewForbiddenError("Vous devez être administrateur pour supprimer ce canal.")
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("channel_id = ?", channel.ID).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Channel{}, channel.ID).Error
	})
}
