package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/intrafeed/intrafeed/config"
	"github.com/intrafeed/intrafeed/controllers"
	"github.com/intrafeed/intrafeed/graph"
	"github.com/intrafeed/intrafeed/middleware"
	"github.com/intrafeed/intrafeed/services"
	"github.com/intrafeed/intrafeed/utils"
)

const sessionName = "intrafeed_session"

// Dependencies are the wired services the HTTP layer needs.
type Dependencies struct {
	DB      *gorm.DB
	Posts   *services.PostService
	Users   *services.UserService
	Feed    *services.FeedService
	Uploads *services.UploadService
	Stats   *services.StatsService
	Graph   *graph.Client
	// Inbox is optional; nil serves an empty notification list.
	Inbox controllers.NotificationStore
}

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(deps Dependencies) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	accessLog := utils.Logger
	if gin.Mode() != gin.TestMode {
		if gl, err := utils.NewRollingFileLogger(cfg, cfg.GinPath); err == nil {
			accessLog = gl
		} else {
			utils.Logger.Warn("gin access log unavailable", zap.Error(err))
		}
	}
	r.Use(ginzap.Ginzap(accessLog, time.RFC3339, true))
	r.Use(ginzap.RecoveryWithZap(accessLog, false))
	r.Use(middleware.Metrics())

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	secret := cfg.SessionSecret
	if secret == "" {
		secret = cfg.JWTSecret
	}
	store := cookie.NewStore([]byte(secret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(utils.TokenTTL / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))

	if cfg.StorageDriver == "local" {
		r.Static(cfg.UploadURLPrefix, cfg.UploadDir)
	}

	health := func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	}
	r.GET("/health", health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authController := controllers.NewAuthController(deps.Users, deps.Graph)
	postController := controllers.NewPostController(deps.Posts)
	feedController := controllers.NewFeedController(deps.Feed, deps.Posts)
	uploadController := controllers.NewUploadController(deps.Uploads)
	adminController := controllers.NewAdminController(deps.Posts, deps.Users, deps.Stats)
	notificationController := controllers.NewNotificationController(deps.Inbox)

	authRequired := middleware.AuthRequired(deps.DB)
	limiter := middleware.RateLimit(cfg.RateLimitPerMinute)

	api := r.Group("/api/v1")
	api.GET("/health", health)

	authGroup := api.Group("/auth")
	authGroup.Use(limiter)
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.GET("/oauth/microsoft/login", authController.OAuthRedirect)
	authGroup.GET("/oauth/microsoft/callback", authController.OAuthCallback)
	authGroup.POST("/logout", authRequired, authController.Logout)
	authGroup.GET("/me", authRequired, authController.Me)
	authGroup.PATCH("/profile", authRequired, authController.UpdateProfile)

	protected := api.Group("")
	protected.Use(authRequired, limiter)
	protected.GET("/feed/general", feedController.General)
	protected.GET("/feed/service/:service", feedController.Service)
	protected.GET("/posts", postController.ListPosts)
	protected.GET("/posts/mine", postController.ListMyPosts)
	protected.GET("/posts/:id", postController.GetPost)
	protected.POST("/posts", postController.CreatePost)
	protected.PUT("/posts/:id", postController.UpdatePost)
	protected.DELETE("/posts/:id", postController.DeletePost)
	protected.POST("/posts/:id/reactions", postController.ToggleReaction)
	protected.POST("/upload", uploadController.Upload)
	protected.GET("/notifications", notificationController.List)
	protected.POST("/notifications/:id/read", notificationController.MarkRead)

	admin := protected.Group("/admin")
	admin.Use(middleware.AdminRequired())
	admin.GET("/posts/pending", adminController.ListPending)
	admin.POST("/posts/:id/approve", adminController.Approve)
	admin.POST("/posts/:id/reject", adminController.Reject)
	admin.POST("/posts/:id/pin", adminController.Pin)
	admin.GET("/posts/:id/history", adminController.History)
	admin.GET("/users", adminController.ListUsers)
	admin.PATCH("/users/:id/admin", adminController.SetAdmin)
	admin.GET("/stats", adminController.Stats)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
