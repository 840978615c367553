package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"salons/backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// The moderation actions below expect the caller to have checked the actor's
// right first: CanModerate for ban and unban, CanManageUsers for promote and demote.

func loadTarget(db *gorm.DB, userID uint) (*models.User, error) {
	if userID == 0 {
		return nil, models.NewValidationError("ID utilisateur requis.")
	}
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Utilisateur introuvable.")
		}
		return nil, fmt.Errorf("load user %d: %w", userID, err)
	}
	return &user, nil
}

// BanUser bans targetID from room. An existing ban row is reactivated with the
// new reason and actor in the same upsert instead of adding a second row.
func BanUser(ctx context.Context, db *gorm.DB, room *models.Room, actorID, targetID uint, reason string) (*models.User, error) {
	db = db.WithContext(ctx)

	target, err := loadTarget(db, targetID)
	if err != nil {
		return nil, err
	}
	if target.ID == actorID {
		return nil, models.NewValidationError("Vous ne pouvez pas vous bannir vous-même.")
	}
	isAdmin, err := room.IsAdmin(db, target.ID)
	if err != nil {
		return nil, err
	}
	if isAdmin {
		return nil, models.NewValidationError("Vous ne pouvez pas bannir un administrateur.")
	}

	err = db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "room_id"}, {Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"is_active":    true,
			"reason":       reason,
			"banned_by_id": actorID,
			"updated_at":   time.Now().UTC(),
		}),
	}).Create(&models.Ban{
		RoomID:     room.ID,
		UserID:     target.ID,
		BannedByID: actorID,
		Reason:     reason,
		IsActive:   true,
	}).Error
	if err != nil {
		return nil, fmt.Errorf("ban user %d: %w", target.ID, err)
	}
	return target, nil
}

// UnbanUser deactivates the active ban of targetID. The row is kept as history.
func UnbanUser(ctx context.Context, db *gorm.DB, room *models.Room, targetID uint) (*models.User, error) {
	db = db.WithContext(ctx)

	target, err := loadTarget(db, targetID)
	if err != nil {
		return nil, err
	}

	res := db.Model(&models.Ban{}).
		Where("room_id = ? AND user_id = ? AND is_active = ?", room.ID, target.ID, true).
		Update("is_active", false)
	if res.Error != nil {
		return nil, fmt.Errorf("unban user %d: %w", target.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, models.NewValidationError("Cet utilisateur n'est pas banni.")
	}
	return target, nil
}

// PromoteUser gives targetID the role (moderator when empty). Promoting twice
// leaves a single row holding the last role. Only the creator may promote themself.
func PromoteUser(ctx context.Context, db *gorm.DB, room *models.Room, actorID, targetID uint, role models.RoleName) (*models.User, models.RoleName, error) {
	db = db.WithContext(ctx)

	if targetID == 0 {
		return nil, "", models.NewValidationError("ID utilisateur requis.")
	}
	if role == "" {
		role = models.RoleModerator
	}
	if role != models.RoleModerator {
		return nil, "", models.NewValidationError("Rôle invalide.")
	}

	target, err := loadTarget(db, targetID)
	if err != nil {
		return nil, "", err
	}
	if target.ID == actorID && actorID != room.CreatorID {
		return nil, "", models.NewValidationError("Vous ne pouvez pas vous promouvoir vous-même.")
	}

	err = db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "room_id"}, {Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"role":       role,
			"updated_at": time.Now().UTC(),
		}),
	}).Create(&models.RoomRole{RoomID: room.ID, UserID: target.ID, Role: role}).Error
	if err != nil {
		return nil, "", fmt.Errorf("promote user %d: %w", target.ID, err)
	}
	return target, role, nil
}

// DemoteUser removes the role row of targetID. The creator cannot be demoted.
func DemoteUser(ctx context.Context, db *gorm.DB, room *models.Room, targetID uint) (*models.User, error) {
	db = db.WithContext(ctx)

	target, err := loadTarget(db, targetID)
	if err != nil {
		return nil, err
	}
	if target.ID == room.CreatorID {
		return nil, models.NewValidationError("Vous ne pouvez pas rétrograder le créateur du salon.")
	}

	res := db.Where("room_id = ? AND user_id = ?", room.ID, target.ID).Delete(&models.RoomRole{})
	if res.Error != nil {
		return nil, fmt.Errorf("demote user %d: %w", target.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, models.NewValidationError("Cet utilisateur n'a pas de rôle spécial.")
	}
	return target, nil
}

// RoomUser is a participant of a room with their current rights.
type RoomUser struct {
	ID          uint             `json:"id"`
	Username    string           `json:"username"`
	IsAdmin     bool             `json:"is_admin"`
	IsModerator bool             `json:"is_moderator"`
	IsBanned    bool             `json:"is_banned"`
	Role        *models.RoleName `json:"role"`
}

// ListRoomUsers gathers the creator, authors of room and channel messages, role
// holders and actively banned users, without duplicates, sorted by username.
func ListRoomUsers(ctx context.Context, db *gorm.DB, room *models.Room) ([]RoomUser, error) {
	db = db.WithContext(ctx)

	ids := map[uint]struct{}{room.CreatorID: {}}
	sources := []struct {
		query  *gorm.DB
		column string
	}{
		{db.Model(&models.Message{}).Where("room_id = ?", room.ID), "author_id"},
		{db.Model(&models.Message{}).Where("channel_id IN (?)",
			db.Model(&models.Channel{}).Select("id").Where("room_id = ?", room.ID)), "author_id"},
		{db.Model(&models.RoomRole{}).Where("room_id = ?", room.ID), "user_id"},
		{db.Model(&models.Ban{}).Where("room_id = ? AND is_active = ?", room.ID, true), "user_id"},
	}
	for _, src := range sources {
		var found []uint
		if err := src.query.Distinct().Pluck(src.column, &found).Error; err != nil {
			return nil, fmt.Errorf("collect room users: %w", err)
		}
		for _, id := range found {
			ids[id] = struct{}{}
		}
	}

	userIDs := make([]uint, 0, len(ids))
	for id := range ids {
		userIDs = append(userIDs, id)
	}
	var users []models.User
	if err := db.Where("id IN ?", userIDs).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("load room users: %w", err)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })

	result := make([]RoomUser, 0, len(users))
	for _, u := range users {
		perms, err := room.PermissionsFor(db, u.ID)
		if err != nil {
			return nil, err
		}
		roleRow, err := room.RoleOf(db, u.ID)
		if err != nil {
			return nil, err
		}
		entry := RoomUser{
			ID:          u.ID,
			Username:    u.Username,
			IsAdmin:     perms.IsAdmin,
			IsModerator: perms.IsModerator,
			IsBanned:    perms.IsBanned,
		}
		if roleRow != nil {
			role := roleRow.Role
			entry.Role = &role
		}
		result = append(result, entry)
	}
	return result, nil
}
