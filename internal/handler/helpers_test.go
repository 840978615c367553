package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"salons/backend/internal/config"
	"salons/backend/internal/database"
	"salons/backend/internal/router"
	"salons/backend/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testUser struct {
	ID       uint
	Username string
	Token    string
}

func setupTestConfig(t *testing.T) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	config.AppConfig = &config.Config{
		Env:           "test",
		JWTSecret:     "test-secret",
		SessionCookie: "sessionid",
		SessionTTL:    time.Hour,
		MediaURL:      "/media/",
		MaxUploadMB:   1,
	}

	db, err := database.Open("sqlite", ":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	database.DB = db
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	storage.Init(t.TempDir(), "/media/", config.AppConfig.MaxUploadBytes())
}

func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	setupTestConfig(t)
	return router.New(router.Options{Logger: zap.NewNop(), MediaURL: "/media/"})
}

func doJSON(r http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		payload, _ := json.Marshal(b)
		reader = bytes.NewBuffer(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func doMultipart(t *testing.T, r http.Handler, path, token string, fields map[string]string, fileName string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileName != "" {
		part, err := mw.CreateFormFile("fichier", fileName)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func register(t *testing.T, r http.Handler, username string) testUser {
	t.Helper()
	w := doJSON(r, http.MethodPost, "/api/auth/register", "", gin.H{
		"username":         username,
		"password":         "password123",
		"password_confirm": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
		User  struct {
			ID       uint   `json:"id"`
			Username string `json:"username"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return testUser{ID: resp.User.ID, Username: resp.User.Username, Token: resp.Token}
}

func createRoom(t *testing.T, r http.Handler, owner testUser, name string) string {
	t.Helper()
	w := doJSON(r, http.MethodPost, "/api/salons/", owner.Token, gin.H{"nom": name})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode(t, w)["slug"].(string)
}

func sendMessage(t *testing.T, r http.Handler, path string, author testUser, content string) *httptest.ResponseRecorder {
	t.Helper()
	return doJSON(r, http.MethodPost, path, author.Token, gin.H{"contenu": content})
}

func decodeList(t *testing.T, w *httptest.ResponseRecorder) []interface{} {
	t.Helper()
	var out []interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}
