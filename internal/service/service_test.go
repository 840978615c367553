package service

import (
	"bytes"
	"errors"
	"mime/multipart"
	"testing"

	"salons/backend/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Room{},
		&models.Channel{},
		&models.Message{},
		&models.RoomRole{},
		&models.Ban{},
	))
	return db
}

func mustUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	u := models.User{Username: name, PasswordHash: "x"}
	require.NoError(t, db.Create(&u).Error)
	return &u
}

func mustRoom(t *testing.T, db *gorm.DB, name, slug string, creator *models.User) *models.Room {
	t.Helper()
	room := models.Room{Name: name, Slug: slug, CreatorID: creator.ID}
	require.NoError(t, db.Create(&room).Error)
	return &room
}

func requireKind(t *testing.T, err error, kind models.ErrorKind) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	require.Equal(t, kind, appErr.Kind, appErr.Message)
}

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("fichier", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["fichier"][0]
}
