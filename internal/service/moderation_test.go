package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"salons/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBanUser_ReBanKeepsOneRow(t *testing.T) {
	db := setupServiceTestDB(t)
	ctx := context.Background()
	alice := mustUser(t, db, "alice")
	mod := mustUser(t, db, "mod")
	bob := mustUser(t, db, "bob")
	room := mustRoom(t, db, "Test", "test", alice)

	target, err := BanUser(ctx, db, room, alice.ID, bob.ID, "spam")
	require.NoError(t, err)
	assert.Equal(t, "bob", target.Username)

	_, err = UnbanUser(ctx, db, room, bob.ID)
	require.NoError(t, err)
	_, err = BanUser(ctx, db, room, mod.ID, bob.ID, "récidive")
	require.NoError(t, err)

	var bans []models.Ban
	require.NoError(t, db.Where("room_id = ? AND user_id = ?", room.ID, bob.ID).Find(&bans).Error)
	require.Len(t, bans, 1)
	assert.True(t, bans[0].IsActive)
	assert.Equal(t, "récidive", bans[0].Reason)
	assert.Equal(t, mod.ID, bans[0].BannedByID)

	banned, err := room.IsBanned(db, bob.ID)
	require.NoError(t, err)
	assert.True(t, banned)
}

func TestBanAndPromote_ConcurrentCallsKeepOneRow(t *testing.T) {
	db := setupServiceTestDB(t)
	ctx := context.Background()
	alice := mustUser(t, db, "alice")
	bob := mustUser(t, db, "bob")
	carol := mustUser(t, db, "carol")
	room := mustRoom(t, db, "Test", "test", alice)

	const workers = 8
	errs := make(chan error, 2*workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_, err := BanUser(ctx, db, room, alice.ID, bob.ID, fmt.Sprintf("spam %d", i))
			errs <- err
		}(i)
		go func() {
			defer wg.Done()
			_, _, err := PromoteUser(ctx, db, room, alice.ID, carol.ID, models.RoleModerator)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}

	var bans int64
	require.NoError(t, db.Model(&models.Ban{}).Where("room_id = ? AND user_id = ?", room.ID, bob.ID).Count(&bans).Error)
	assert.Equal(t, int64(1), bans)
	var roles int64
	require.NoError(t, db.Model(&models.RoomRole{}).Where("room_id = ? AND user_id = ?", room.ID, carol.ID).Count(&roles).Error)
	assert.Equal(t, int64(1), roles)
}

func TestBanUser_Refusals(t *testing.T) {
	db := setupServiceTestDB(t)
	ctx := context.Background()
	alice := mustUser(t, db, "alice")
	admin := mustUser(t, db, "admin")
	mod := mustUser(t, db, "mod")
	room := mustRoom(t, db, "Test", "test", alice)
	require.NoError(t, db.Create(&models.RoomRole{RoomID: room.ID, UserID: admin.ID, Role: models.RoleAdmin}).Error)

	_, err := BanUser(ctx, db, room, mod.ID, 0, "")
	requireKind(t, err, models.KindBadRequest)
	_, err = BanUser(ctx, db, room, mod.ID, 4242, "")
	requireKind(t, err, models.KindNotFound)
	_, err = BanUser(ctx, db, room, mod.ID, mod.ID, "")
	requireKind(t, err, models.KindBadRequest)
	_, err = BanUser(ctx, db, room, mod.ID, alice.ID, "")
	requireKind(t, err, models.KindBadRequest)
	_, err = BanUser(ctx, db, room, mod.ID, admin.ID, "")
	requireKind(t, err, models.KindBadRequest)

	var count int64
	require.NoError(t, db.Model(&models.Ban{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestUnbanUser_NotBanned(t *testing.T) {
	db := setupServiceTestDB(t)
	ctx := context.Background()
	alice := mustUser(t, db, "alice")
	bob := mustUser(t, db, "bob")
	room := mustRoom(t, db, "Test", "test", alice)

	_, err := UnbanUser(ctx, db, room, bob.ID)
	requireKind(t, err, models.KindBadRequest)

	_, err = BanUser(ctx, db, room, alice.ID, bob.ID, "")
	require.NoError(t, err)
	_, err = UnbanUser(ctx, db, room, bob.ID)
	require.NoError(t, err)
	_, err = UnbanUser(ctx, db, room, bob.ID)
	requireKind(t, err, models.KindBadRequest)

	var ban models.Ban
	require.NoError(t, db.Where("room_id = ? AND user_id = ?", room.ID, bob.ID).First(&ban).Error)
	assert.False(t, ban.IsActive)
}

func TestPromoteUser_Idempotent(t *testing.T) {
	db := setupServiceTestDB(t)
	ctx := context.Background()
	alice := mustUser(t, db, "alice")
	bob := mustUser(t, db, "bob")
	room := mustRoom(t, db, "Test", "test", alice)

	for i := 0; i < 2; i++ {
		user, role, err := PromoteUser(ctx, db, room, alice.ID, bob.ID, "")
		require.NoError(t, err)
		assert.Equal(t, "bob", user.Username)
		assert.Equal(t, models.RoleModerator, role)
	}

	var count int64
	require.NoError(t, db.Model(&models.RoomRole{}).Where("room_id = ? AND user_id = ?", room.ID, bob.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	isMod, err := room.IsModerator(db, bob.ID)
	require.NoError(t, err)
	assert.True(t, isMod)
}

func TestPromoteUser_Refusals(t *testing.T) {
	db := setupServiceTestDB(t)
	ctx := context.Background()
	alice := mustUser(t, db, "alice")
	admin := mustUser(t, db, "admin")
	bob := mustUser(t, db, "bob")
	room := mustRoom(t, db, "Test", "test", alice)

	_, _, err := PromoteUser(ctx, db, room, alice.ID, 0, "")
	requireKind(t, err, models.KindBadRequest)
	_, _, err = PromoteUser(ctx, db, room, alice.ID, bob.ID, "owner")
	requireKind(t, err, models.KindBadRequest)
	_, _, err = PromoteUser(ctx, db, room, admin.ID, admin.ID, "")
	requireKind(t, err, models.KindBadRequest)

	_, role, err := PromoteUser(ctx, db, room, alice.ID, alice.ID, models.RoleModerator)
	require.NoError(t, err)
	assert.Equal(t, models.RoleModerator, role)
}

func TestDemoteUser(t *testing.T) {
	db := setupServiceTestDB(t)
	ctx := context.Background()
	alice := mustUser(t, db, "alice")
	bob := mustUser(t, db, "bob")
	room := mustRoom(t, db, "Test", "test", alice)

	_, err := DemoteUser(ctx, db, room, bob.ID)
	requireKind(t, err, models.KindBadRequest)
	var count int64
	require.NoError(t, db.Model(&models.RoomRole{}).Count(&count).Error)
	assert.Zero(t, count)

	_, err = DemoteUser(ctx, db, room, alice.ID)
	requireKind(t, err, models.KindBadRequest)

	_, _, err = PromoteUser(ctx, db, room, alice.ID, bob.ID, "")
	require.NoError(t, err)
	user, err := DemoteUser(ctx, db, room, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, "bob", user.Username)

	isMod, err := room.IsModerator(db, bob.ID)
	require.NoError(t, err)
	assert.False(t, isMod)
}

func TestListRoomUsers(t *testing.T) {
	db := setupServiceTestDB(t)
	ctx := context.Background()
	zoe := mustUser(t, db, "zoe")
	bob := mustUser(t, db, "bob")
	carol := mustUser(t, db, "carol")
	dave := mustUser(t, db, "dave")
	mustUser(t, db, "stranger")
	room := mustRoom(t, db, "Test", "test", zoe)
	channel, err := CreateChannel(ctx, db, room, "Général", "")
	require.NoError(t, err)

	_, err = PostMessage(ctx, db, nil, Target{Room: room}, bob.ID, PostInput{Content: "1"})
	require.NoError(t, err)
	_, err = PostMessage(ctx, db, nil, Target{Room: room}, bob.ID, PostInput{Content: "2"})
	require.NoError(t, err)
	_, err = PostMessage(ctx, db, nil, Target{Room: room, Channel: channel}, carol.ID, PostInput{Content: "3"})
	require.NoError(t, err)
	_, _, err = PromoteUser(ctx, db, room, zoe.ID, carol.ID, "")
	require.NoError(t, err)
	_, err = BanUser(ctx, db, room, zoe.ID, dave.ID, "")
	require.NoError(t, err)

	users, err := ListRoomUsers(ctx, db, room)
	require.NoError(t, err)

	names := make([]string, 0, len(users))
	for _, u := range users {
		names = append(names, u.Username)
	}
	assert.Equal(t, []string{"bob", "carol", "dave", "zoe"}, names)

	byName := map[string]RoomUser{}
	for _, u := range users {
		byName[u.Username] = u
	}
	assert.True(t, byName["zoe"].IsAdmin)
	assert.Nil(t, byName["zoe"].Role)
	assert.True(t, byName["carol"].IsModerator)
	require.NotNil(t, byName["carol"].Role)
	assert.Equal(t, models.RoleModerator, *byName["carol"].Role)
	assert.True(t, byName["dave"].IsBanned)
	assert.False(t, byName["bob"].IsModerator)

	// An unbanned user with no message no longer appears.
	_, err = UnbanUser(ctx, db, room, dave.ID)
	require.NoError(t, err)
	users, err = ListRoomUsers(ctx, db, room)
	require.NoError(t, err)
	assert.Len(t, users, 3)
}
