package models

import "time"

// Ban blocks a user from posting, editing and deleting in a room while IsActive.
// Unbanning only clears IsActive, so the row stays as history and a later ban
// reactivates it.
type Ban struct {
	ID         uint      `gorm:"primaryKey"`
	RoomID     uint      `gorm:"not null;uniqueIndex:idx_ban_room_user"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_ban_room_user"`
	BannedByID uint      `gorm:"not null;index"`
	Reason     string    `gorm:"type:text;not null;default:''"`
	BannedAt   time.Time `gorm:"autoCreateTime"`
	IsActive   bool      `gorm:"not null;default:true;index"`
	UpdatedAt  time.Time

	Room     Room `gorm:"foreignKey:RoomID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	User     User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	BannedBy User `gorm:"foreignKey:BannedByID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}
