package models

import (
	"time"

	"gorm.io/gorm"
)

// Room is a top-level chat space ("salon"). Its creator is always an admin.
type Room struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:100;unique;not null"`
	Slug        string `gorm:"size:120;unique;not null"`
	Description string `gorm:"type:text"`
	CreatorID   uint   `gorm:"not null;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Creator  User      `gorm:"foreignKey:CreatorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Channels []Channel `gorm:"foreignKey:RoomID"`
}

// TableName keeps the historical table name.
func (Room) TableName() string {
	return "salons"
}

// The predicates below read the current role and ban rows on every call.
// User ID 0 stands for an anonymous visitor and never holds any right.

// IsAdmin reports whether the user created the room or holds the admin role in it.
func (r *Room) IsAdmin(db *gorm.DB, userID uint) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	if userID == r.CreatorID {
		return true, nil
	}
	return r.hasRole(db, userID, RoleAdmin)
}

// IsModerator reports whether the user is an admin or holds the moderator role.
func (r *Room) IsModerator(db *gorm.DB, userID uint) (bool, error) {
	admin, err := r.IsAdmin(db, userID)
	if err != nil || admin {
		return admin, err
	}
	return r.hasRole(db, userID, RoleModerator)
}

// IsBanned reports whether an active ban exists for the user in the room.
func (r *Room) IsBanned(db *gorm.DB, userID uint) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	var count int64
	err := db.Model(&Ban{}).
		Where("room_id = ? AND user_id = ? AND is_active = ?", r.ID, userID, true).
		Count(&count).Error
	return count > 0, err
}

// CanManageUsers gates role changes. Only admins qualify.
func (r *Room) CanManageUsers(db *gorm.DB, userID uint) (bool, error) {
	return r.IsAdmin(db, userID)
}

// CanModerate gates bans and message removal by others.
func (r *Room) CanModerate(db *gorm.DB, userID uint) (bool, error) {
	return r.IsModerator(db, userID)
}

// RoleOf returns the user's role row, or nil when there is none.
func (r *Room) RoleOf(db *gorm.DB, userID uint) (*RoomRole, error) {
	var roles []RoomRole
	if err := db.Where("room_id = ? AND user_id = ?", r.ID, userID).Limit(1).Find(&roles).Error; err != nil {
		return nil, err
	}
	if len(roles) == 0 {
		return nil, nil
	}
	return &roles[0], nil
}

func (r *Room) hasRole(db *gorm.DB, userID uint, role RoleName) (bool, error) {
	var count int64
	err := db.Model(&RoomRole{}).
		Where("room_id = ? AND user_id = ? AND role = ?", r.ID, userID, role).
		Count(&count).Error
	return count > 0, err
}

// Permissions is the set of rights a user holds in a room.
type Permissions struct {
	IsAdmin     bool `json:"is_admin"`
	IsModerator bool `json:"is_moderator"`
	IsBanned    bool `json:"is_banned"`
}

// PermissionsFor evaluates every predicate for one user.
func (r *Room) PermissionsFor(db *gorm.DB, userID uint) (Permissions, error) {
	var p Permissions
	var err error
	if p.IsAdmin, err = r.IsAdmin(db, userID); err != nil {
		return p, err
	}
	if p.IsModerator, err = r.IsModerator(db, userID); err != nil {
		return p, err
	}
	if p.IsBanned, err = r.IsBanned(db, userID); err != nil {
		return p, err
	}
	return p, nil
}
