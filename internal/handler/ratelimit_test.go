package handler_test

import (
	"net/http"
	"testing"
	"time"

	"salons/backend/internal/ratelimit"
	"salons/backend/internal/router"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSendRateLimit(t *testing.T) {
	setupTestConfig(t)
	mr := miniredis.RunT(t)
	rdb := ratelimit.NewClient(mr.Addr())
	t.Cleanup(func() { _ = rdb.Close() })

	r := router.New(router.Options{
		Logger:      zap.NewNop(),
		SendLimiter: ratelimit.New(rdb, 2, time.Minute),
	})
	alice := register(t, r, "alice")
	createRoom(t, r, alice, "Test")

	for i := 0; i < 2; i++ {
		w := sendMessage(t, r, "/api/salon/test/messages/send/", alice, "vite")
		require.Equal(t, http.StatusOK, w.Code)
	}
	w := sendMessage(t, r, "/api/salon/test/messages/send/", alice, "trop vite")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "Trop de messages, réessayez plus tard.", decode(t, w)["error"])

	// Reading is not limited.
	w = doJSON(r, http.MethodGet, "/api/salon/test/messages/", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSendRateLimit_BannedUserGetsForbidden(t *testing.T) {
	setupTestConfig(t)
	mr := miniredis.RunT(t)
	rdb := ratelimit.NewClient(mr.Addr())
	t.Cleanup(func() { _ = rdb.Close() })

	r := router.New(router.Options{
		Logger:      zap.NewNop(),
		SendLimiter: ratelimit.New(rdb, 2, time.Minute),
	})
	alice := register(t, r, "alice")
	bob := register(t, r, "bob")
	createRoom(t, r, alice, "Test")

	for i := 0; i < 2; i++ {
		w := sendMessage(t, r, "/api/salon/test/messages/send/", bob, "spam")
		require.Equal(t, http.StatusOK, w.Code)
	}
	w := doJSON(r, http.MethodPost, "/api/salon/test/ban/", alice.Token, gin.H{"user_id": bob.ID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = sendMessage(t, r, "/api/salon/test/messages/send/", bob, "encore")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Vous êtes banni de ce salon.", decode(t, w)["error"])
}
