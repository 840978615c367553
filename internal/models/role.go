package models

import "time"

// RoleName is a room-scoped designation.
type RoleName string

const (
	RoleAdmin     RoleName = "admin"
	RoleModerator RoleName = "moderator"
)

// Display returns the human-readable label of the role.
func (r RoleName) Display() string {
	switch r {
	case RoleAdmin:
		return "Administrateur"
	case RoleModerator:
		return "Modérateur"
	default:
		return string(r)
	}
}

// RoomRole grants a user a role in one room. There is at most one row per (room, user).
// The room creator is admin without a row.
type RoomRole struct {
	ID        uint     `gorm:"primaryKey"`
	RoomID    uint     `gorm:"not null;uniqueIndex:idx_role_room_user"`
	UserID    uint     `gorm:"not null;uniqueIndex:idx_role_room_user"`
	Role      RoleName `gorm:"type:varchar(20);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Room Room `gorm:"foreignKey:RoomID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}
