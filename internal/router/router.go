package router

import (
	"net/http"
	"strings"

	"salons/backend/api"
	"salons/backend/internal/auth"
	"salons/backend/internal/handler"
	"salons/backend/internal/logging"
	"salons/backend/internal/metrics"
	"salons/backend/internal/models"
	"salons/backend/internal/ratelimit"
	"salons/backend/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// Options carries the optional collaborators of the HTTP layer.
type Options struct {
	Logger *zap.Logger
	// SendLimiter throttles message posting when set.
	SendLimiter *ratelimit.Limiter
	// MediaURL is the URL prefix attachments are served under.
	MediaURL string
}

// New builds the HTTP engine. database.DB and storage.Default must be initialized.
func New(opts Options) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.L()
	}

	r := gin.New()
	r.Use(logging.GinLogger(logger), gin.Recovery(), metrics.Middleware())

	// Health check endpoint
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/swagger", func(c *gin.Context) { c.Redirect(http.StatusFound, "/swagger/") })
	r.GET("/swagger/*any", func(c *gin.Context) {
		if strings.TrimPrefix(c.Param("any"), "/") == "openapi.json" {
			c.Data(http.StatusOK, "application/json", api.OpenAPISpec)
			return
		}
		if strings.TrimPrefix(c.Param("any"), "/") == "" {
			c.Request.URL.Path = "/swagger/index.html"
			c.Request.RequestURI = "/swagger/index.html"
		}
		ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/openapi.json"))(c)
	})

	if opts.MediaURL != "" && storage.Default != nil {
		r.Static(strings.TrimSuffix(opts.MediaURL, "/"), storage.Default.Root())
	}

	requireLogin := auth.AuthMiddleware()
	// Banned users get their 403 before the limiter counts the request.
	sendChain := []gin.HandlerFunc{
		requireLogin,
		auth.RoomPermissionMiddleware(auth.NotBanned, "Vous êtes banni de ce salon."),
	}
	if opts.SendLimiter != nil {
		sendChain = append(sendChain, opts.SendLimiter.Middleware("send"))
	}
	sendChain = append(sendChain, handler.PostMessage)

	canModerate := auth.RoomPermissionMiddleware((*models.Room).CanModerate,
		"Vous devez être modérateur pour bannir des utilisateurs.")
	canModerateUnban := auth.RoomPermissionMiddleware((*models.Room).CanModerate,
		"Vous devez être modérateur pour débannir des utilisateurs.")
	canPromote := auth.RoomPermissionMiddleware((*models.Room).CanManageUsers,
		"Vous devez être administrateur pour promouvoir des utilisateurs.")
	canDemote := auth.RoomPermissionMiddleware((*models.Room).CanManageUsers,
		"Vous devez être administrateur pour rétrograder des utilisateurs.")

	apiRoutes := r.Group("/api")
	apiRoutes.Use(auth.OptionalAuthMiddleware())
	{
		// Auth routes
		authRoutes := apiRoutes.Group("/auth")
		{
			authRoutes.POST("/register", handler.RegisterUser)
			authRoutes.POST("/login", handler.LoginUser)
			authRoutes.POST("/logout", handler.LogoutUser)
			authRoutes.GET("/me", requireLogin, handler.GetMe)
		}

		apiRoutes.GET("/salons/", handler.ListRooms)
		apiRoutes.POST("/salons/", requireLogin, handler.CreateRoom)

		apiRoutes.POST("/messages/:id/edit/", requireLogin, handler.EditMessage)
		apiRoutes.POST("/messages/:id/delete/", requireLogin, handler.DeleteMessage)

		// Room routes. Static segments take precedence over :channel.
		roomRoutes := apiRoutes.Group("/salon/:slug")
		{
			roomRoutes.GET("/", handler.GetRoom)
			roomRoutes.POST("/delete/", requireLogin, handler.DeleteRoom)

			roomRoutes.GET("/channels/", handler.ListChannels)
			roomRoutes.POST("/channels/", requireLogin, handler.CreateChannel)

			roomRoutes.GET("/messages/", handler.ListMessages)
			roomRoutes.POST("/messages/send/", sendChain...)

			roomRoutes.GET("/events/", handler.StreamEvents)
			roomRoutes.GET("/events/ws", handler.StreamEventsWS)

			// Moderation routes
			roomRoutes.POST("/ban/", requireLogin, canModerate, handler.BanUser)
			roomRoutes.POST("/unban/", requireLogin, canModerateUnban, handler.UnbanUser)
			roomRoutes.POST("/promote/", requireLogin, canPromote, handler.PromoteUser)
			roomRoutes.POST("/demote/", requireLogin, canDemote, handler.DemoteUser)
			roomRoutes.GET("/users/", requireLogin, handler.ListRoomUsers)

			channelRoutes := roomRoutes.Group("/:channel")
			{
				channelRoutes.GET("/", handler.GetChannel)
				channelRoutes.POST("/delete/", requireLogin, handler.DeleteChannel)
				channelRoutes.GET("/messages/", handler.ListMessages)
				channelRoutes.POST("/messages/send/", sendChain...)
				channelRoutes.GET("/events/", handler.StreamEvents)
				channelRoutes.GET("/events/ws", handler.StreamEventsWS)
			}
		}
	}

	return r
}
