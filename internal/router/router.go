package router

import (
	"time"

	"putping/config"
	"putping/internal/handler"
	"putping/internal/middleware"
	"putping/internal/ping"
	"putping/internal/presence"
	"putping/internal/repository"
	"putping/internal/session"
	"putping/internal/ws"
	"putping/pkg/cloudinary"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

func Setup(
	cfg *config.Config,
	db *gorm.DB,
	cloud cloudinary.Client,
	presenceSvc *presence.Service,
	pings *ping.Channel,
	sessions *session.Manager,
	log zerolog.Logger,
) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(100, 60*time.Second)))

	// Repositories
	profileRepo := repository.NewProfileRepository(db)
	galleryRepo := repository.NewGalleryRepository(db)
	chatRepo := repository.NewChatRepository(db)

	hub := ws.NewHub()
	chatHub := ws.NewChatHub()

	// Handlers
	authHandler := handler.NewAuthHandler(cfg, profileRepo)
	profileHandler := handler.NewProfileHandler(profileRepo, sessions)
	galleryHandler := handler.NewGalleryHandler(galleryRepo, profileRepo, sessions, cloud)
	locationHandler := handler.NewLocationHandler(profileRepo, presenceSvc, sessions)
	mapHandler := handler.NewMapHandler(cfg, presenceSvc)
	pingHandler := handler.NewPingHandler(pings)
	chatHandler := handler.NewChatHandler(chatRepo)

	authMw := middleware.AuthRequired(&cfg.JWT)

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/anonymous", authHandler.Anonymous)
			authGroup.POST("/reclaim", authHandler.Reclaim)
		}

		me := api.Group("/me")
		me.Use(authMw)
		{
			me.GET("/profile", profileHandler.GetProfile)
			me.PUT("/profile", profileHandler.UpdateProfile)
			me.GET("/gallery", galleryHandler.List)
			me.POST("/gallery", galleryHandler.Upload)
			me.PUT("/gallery/order", galleryHandler.Reorder)
			me.DELETE("/gallery/:id", galleryHandler.Delete)
			me.PATCH("/location", locationHandler.UpdateLocation)
		}

		api.GET("/map/markers", authMw, mapHandler.GetMarkers)
		api.POST("/pings/:identity", authMw, pingHandler.Send)
		api.GET("/chats", authMw, chatHandler.ListConversations)
		api.GET("/chats/:identity/messages", authMw, chatHandler.GetMessages)
	}

	r.GET("/ws/map", handler.UpgradeMapWS(cfg, hub, profileRepo, presenceSvc, pings, sessions, log))
	r.GET("/ws/chat", handler.UpgradeChatWS(&cfg.JWT, hub, chatHub, chatRepo, profileRepo))

	return r
}
