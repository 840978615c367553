package handler_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRooms_CreateListGet(t *testing.T) {
	r := setupTestRouter(t)
	alice := register(t, r, "alice")
	bob := register(t, r, "bob")

	assert.Equal(t, "salon-general", createRoom(t, r, alice, "Salon Général"))
	assert.Equal(t, "test", createRoom(t, r, alice, "Test!"))
	assert.Equal(t, "test-1", createRoom(t, r, bob, "Test?"))

	w := doJSON(r, http.MethodPost, "/api/salons/", alice.Token, gin.H{"nom": "Test!"})
	assert.Equal(t, http.StatusConflict, w.Code)
	w = doJSON(r, http.MethodPost, "/api/salons/", alice.Token, gin.H{"nom": "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = doJSON(r, http.MethodPost, "/api/salons/", "", gin.H{"nom": "Anonyme"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodGet, "/api/salons/?limit=2", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode(t, w)
	assert.Len(t, page["data"], 2)
	meta := page["meta"].(map[string]interface{})
	assert.Equal(t, float64(3), meta["total_items"])
	assert.Equal(t, float64(2), meta["total_pages"])

	w = doJSON(r, http.MethodGet, "/api/salon/test/", alice.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	detail := decode(t, w)
	assert.Equal(t, "Test!", detail["salon"].(map[string]interface{})["nom"])
	perms := detail["permissions"].(map[string]interface{})
	assert.Equal(t, true, perms["is_admin"])
	assert.Equal(t, true, perms["is_moderator"])

	w = doJSON(r, http.MethodGet, "/api/salon/test/", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode(t, w)["permissions"].(map[string]interface{})["is_admin"])

	w = doJSON(r, http.MethodGet, "/api/salon/missing/", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRooms_DeleteCreatorOnly(t *testing.T) {
	r := setupTestRouter(t)
	alice := register(t, r, "alice")
	bob := register(t, r, "bob")
	createRoom(t, r, alice, "Test")
	require.Equal(t, http.StatusOK, sendMessage(t, r, "/api/salon/test/messages/send/", bob, "hello").Code)

	w := doJSON(r, http.MethodPost, "/api/salon/test/delete/", bob.Token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(r, http.MethodPost, "/api/salon/test/delete/", alice.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodGet, "/api/salon/test/messages/", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestChannels_CreateGetDelete(t *testing.T) {
	r := setupTestRouter(t)
	alice := register(t, r, "alice")
	bob := register(t, r, "bob")
	createRoom(t, r, alice, "Test")

	w := doJSON(r, http.MethodPost, "/api/salon/test/channels/", bob.Token, gin.H{"nom": "Général", "description": "tout"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "general", decode(t, w)["slug"])

	w = doJSON(r, http.MethodPost, "/api/salon/test/channels/", bob.Token, gin.H{"nom": "Messages"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "messages-1", decode(t, w)["slug"])

	w = doJSON(r, http.MethodGet, "/api/salon/test/channels/", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeList(t, w), 2)

	w = doJSON(r, http.MethodGet, "/api/salon/test/general/", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode(t, w)
	assert.Equal(t, "Général", got["nom"])
	assert.Equal(t, "test", got["salon"])

	w = doJSON(r, http.MethodPost, "/api/salon/test/general/delete/", bob.Token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Vous devez être administrateur pour supprimer ce canal.", decode(t, w)["error"])

	w = doJSON(r, http.MethodPost, "/api/salon/test/general/delete/", alice.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(r, http.MethodGet, "/api/salon/test/general/", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPing(t *testing.T) {
	r := setupTestRouter(t)
	w := doJSON(r, http.MethodGet, "/ping", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", decode(t, w)["message"])

	w = doJSON(r, http.MethodGet, "/swagger/openapi.json", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/api/salon/{slug}/ban/")
}
