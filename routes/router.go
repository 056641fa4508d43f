package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/soteriahealth/soteria/config"
	"github.com/soteriahealth/soteria/controllers"
	"github.com/soteriahealth/soteria/middleware"
	"github.com/soteriahealth/soteria/services"
	"github.com/soteriahealth/soteria/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(cfg config.AppConfig, db *gorm.DB, engine *services.Engine) *gin.Engine {
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Access log goes to its own rolling file; the app log stays on stdout
	gl, err := utils.NewRollingFileLogger(cfg.GinLogPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(ginzap.Ginzap(gl, time.RFC3339, true))
		r.Use(ginzap.CustomRecoveryWithZap(gl, true, utils.RecoverJSON))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", middleware.AdminKeyHeader},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 0 || (len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*") {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx.Request.Context())
		}
		if err != nil {
			utils.Error(ctx, http.StatusServiceUnavailable, 50300, "database unavailable")
			return
		}
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	progressController := controllers.NewProgressController(engine)
	milestoneController := controllers.NewMilestoneController(engine)
	painController := controllers.NewPainController(engine)
	adminController := controllers.NewAdminController(engine)

	api := r.Group("/api/v1")

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(cfg.JWTSecret), middleware.RateLimitMiddleware(cfg.RateLimitPerMinute))
	protected.POST("/completions", progressController.RecordCompletion)
	protected.GET("/progress/:date", progressController.GetDailyProgress)
	protected.PUT("/progress/:date/:category", progressController.MarkCategoryComplete)
	protected.GET("/stats", progressController.GetStats)
	protected.GET("/avatar", progressController.GetAvatar)
	protected.POST("/sessions/:category", progressController.StartSession)
	protected.DELETE("/sessions/:category", progressController.StopSession)
	protected.POST("/pain-checkins", painController.Create)

	protected.GET("/milestones", milestoneController.Summary)
	protected.POST("/milestones/evaluate", milestoneController.Evaluate)
	protected.GET("/milestones/celebrations", milestoneController.Celebrations)
	protected.POST("/milestones/:id/celebrated", milestoneController.MarkCelebrated)

	admin := api.Group("/admin")
	admin.Use(middleware.RateLimitMiddleware(cfg.RateLimitPerMinute), middleware.AdminRequired(cfg.AdminKeyHash))
	admin.POST("/users/:id/reset", adminController.ResetUser)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
	})

	return r
}
