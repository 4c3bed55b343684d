package routes

import (
	"log/slog"

	"github.com/ArowuTest/raffle-backend/internal/handlers"
	"github.com/ArowuTest/raffle-backend/internal/middleware"
	"github.com/ArowuTest/raffle-backend/pkg/jwt"
	"github.com/gin-gonic/gin"
)

// HandlerDependencies holds every handler the router mounts
type HandlerDependencies struct {
	HealthHandler       *handlers.HealthHandler
	AuthHandler         *handlers.AuthHandler
	LotteryHandler      *handlers.LotteryHandler
	OracleHandler       *handlers.OracleHandler
	NotificationHandler *handlers.NotificationHandler
	BlacklistHandler    *handlers.BlacklistHandler
}

// RouterConfig holds the middleware settings of the router
type RouterConfig struct {
	AllowedOrigins []string
	Tokens         *jwt.TokenService
	Logger         *slog.Logger
}

// SetupRouter sets up the router
func SetupRouter(cfg RouterConfig, deps HandlerDependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(cfg.Logger))
	router.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	authRequired := middleware.JWTAuthMiddleware(cfg.Tokens)
	operatorOnly := middleware.RequireRole(jwt.RoleOperator)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", deps.HealthHandler.Health)

		auth := v1.Group("/auth")
		{
			auth.POST("/login", deps.AuthHandler.Login)
			auth.POST("/token", authRequired, operatorOnly, deps.AuthHandler.IssueToken)
		}

		lottery := v1.Group("/lottery")
		{
			lottery.GET("", deps.LotteryHandler.GetStatus)
			lottery.GET("/players/:index", deps.LotteryHandler.GetPlayer)
			lottery.POST("/enter", middleware.OptionalAuthMiddleware(cfg.Tokens), deps.LotteryHandler.Enter)
			lottery.GET("/upkeep", deps.LotteryHandler.CheckUpkeep)
			lottery.POST("/upkeep", deps.LotteryHandler.PerformUpkeep)
		}

		rounds := v1.Group("/rounds")
		{
			rounds.GET("", deps.LotteryHandler.GetRounds)
			rounds.GET("/:round", deps.LotteryHandler.GetRound)
		}

		notifications := v1.Group("/notifications")
		{
			notifications.GET("", deps.NotificationHandler.GetNotifications)
			notifications.GET("/stream", deps.NotificationHandler.Stream)
		}

		oracle := v1.Group("/oracle")
		oracle.Use(authRequired, middleware.RequireRole(jwt.RoleOracle))
		{
			oracle.POST("/fulfill", deps.OracleHandler.Fulfill)
		}

		blacklist := v1.Group("/blacklist")
		blacklist.Use(authRequired, operatorOnly)
		{
			blacklist.GET("", deps.BlacklistHandler.GetBlacklist)
			blacklist.POST("", deps.BlacklistHandler.AddToBlacklist)
			blacklist.DELETE("/:address", deps.BlacklistHandler.RemoveFromBlacklist)
		}
	}

	return router
}
