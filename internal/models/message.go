package models

import (
	"path"
	"time"
)

// Message is a post in either a room or one of its channels, never both.
type Message struct {
	ID        uint      `gorm:"primaryKey"`
	RoomID    *uint     `gorm:"index"`
	ChannelID *uint     `gorm:"index"`
	AuthorID  uint      `gorm:"not null;index"`
	Content   string    `gorm:"type:text;not null;default:''"`
	File      string    `gorm:"size:255"` // path relative to the media root, empty when none
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time

	Room    *Room    `gorm:"foreignKey:RoomID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Channel *Channel `gorm:"foreignKey:ChannelID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Author  User     `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// HasFile reports whether an attachment is stored for the message.
func (m *Message) HasFile() bool {
	return m.File != ""
}

// FileName is the base name of the attachment.
func (m *Message) FileName() string {
	if m.File == "" {
		return ""
	}
	return path.Base(m.File)
}

// MessageOrder is the chronological ordering of message lists.
const MessageOrder = "created_at ASC, id ASC"
