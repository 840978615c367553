package models

import "time"

// Channel is a named sub-space of a room. Name and slug are unique within the room.
type Channel struct {
	ID          uint   `gorm:"primaryKey"`
	RoomID      uint   `gorm:"not null;uniqueIndex:idx_channel_room_name;uniqueIndex:idx_channel_room_slug"`
	Name        string `gorm:"size:100;not null;uniqueIndex:idx_channel_room_name"`
	Slug        string `gorm:"size:120;not null;uniqueIndex:idx_channel_room_slug"`
	Description string `gorm:"type:text"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Room Room `gorm:"foreignKey:RoomID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}
