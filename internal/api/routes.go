package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"trivia_web/internal/api/handlers"
	"trivia_web/internal/middleware"
	"trivia_web/internal/service"
)

func SetupRoutes(r *gin.Engine, services *service.Services) {
	// 初始化 handlers
	authHandler := handlers.NewAuthHandler(services.Auth)
	gameHandler := handlers.NewGameHandler(services.Game)
	wsHandler := handlers.NewWebSocketHandler(services.WebSocket, services.Game)

	// API 路由群組
	api := r.Group("/api")

	// 處理 404 錯誤
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "找不到該路徑",
		})
	})

	// 公開路由
	{
		// 管理員登入
		api.POST("/admin/login", authHandler.Login)

		// 基本的健康檢查
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status": "ok",
			})
		})

		// WebSocket 連接點（玩家不需要登入，管理員在 admin_join 訊息中驗證）
		api.GET("/games/:id/ws", wsHandler.HandleWebSocket)
	}

	// 需要驗證的路由
	authorized := api.Group("/")
	authorized.Use(middleware.AuthMiddleware())
	{
		// 遊戲設定管理
		games := authorized.Group("/games")
		{
			games.GET("", gameHandler.ListGames)         // 獲取遊戲列表
			games.POST("", gameHandler.CreateGame)       // 建立遊戲
			games.DELETE("/:id", gameHandler.DeleteGame) // 刪除遊戲並解散房間
		}
	}
}
