package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"trivia_web/internal/api"
	"trivia_web/internal/models"
	"trivia_web/internal/repository"
	"trivia_web/internal/service"
	"trivia_web/internal/storage"
	"trivia_web/pkg/config"
)

func main() {
	// 載入應用程式配置
	// 從配置文件中讀取數據庫連接信息、服務器地址與遊戲節奏參數
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化資料庫連接
	db, err := storage.NewPostgresDB(cfg.DB.Host, cfg.DB.User, cfg.DB.Password, cfg.DB.Name, cfg.DB.Port)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	// 確保在程序結束時關閉數據庫連接
	defer db.Close()

	// 自動遷移資料庫結構
	// 這裡遷移管理員、遊戲設定與題庫三個模型
	if err := db.AutoMigrate(&models.Admin{}, &models.GameConfig{}, &models.Question{}); err != nil {
		log.Fatalf("Failed to auto migrate database: %v", err)
	}

	// 初始化 repositories
	repos := repository.NewRepositories(db)

	// 首次啟動時建立預設管理員與範例題庫
	if err := service.SeedDefaults(repos); err != nil {
		log.Fatalf("Failed to seed default data: %v", err)
	}

	// 初始化 services
	services := service.NewServices(repos, cfg)

	// 設置 Gin 路由
	r := gin.Default()
	api.SetupRoutes(r, services)

	// 啟動伺服器
	if err := r.Run(cfg.Server.Address); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
